package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hpctools/sonar/pkg/envelope"
	"github.com/hpctools/sonar/pkg/logging"
	"github.com/hpctools/sonar/pkg/slurm"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Print Slurm partition/node topology as a sonar envelope",
	RunE:  runCluster,
}

func init() {
	clusterCmd.Flags().String("sinfo-command", "sinfo", "path to the sinfo binary")
}

func runCluster(cmd *cobra.Command, _ []string) error {
	cluster, _ := cmd.Flags().GetString("cluster")
	sinfoPath, _ := cmd.Flags().GetString("sinfo-command")

	tools := slurm.NewTools("", "", sinfoPath, logging.WithOperation("cluster"))

	ctx := cmd.Context()
	partRaw, err := tools.RunSinfoPartitions(ctx)
	if err != nil {
		return fmt.Errorf("cluster: %w", err)
	}
	partitions, err := slurm.ParsePartitions(partRaw)
	if err != nil {
		return fmt.Errorf("cluster: %w", err)
	}

	nodeRaw, err := tools.RunSinfoNodes(ctx)
	if err != nil {
		return fmt.Errorf("cluster: %w", err)
	}
	states, err := slurm.ParseNodeStates(nodeRaw)
	if err != nil {
		return fmt.Errorf("cluster: %w", err)
	}

	partitions = slurm.MergeClusterTopology(partitions, states)

	sk, err := resolveOneshotSink(cmd)
	if err != nil {
		return err
	}
	meta := envelope.NewMeta("sonar", Version)
	attrs := envelope.ClusterAttributes{Cluster: cluster, Partitions: partitions}
	env := envelope.Record(meta, envelope.TypeCluster, attrs)
	return emitEnvelope(ctx, sk, "cluster", cluster, env)
}
