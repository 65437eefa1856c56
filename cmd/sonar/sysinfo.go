package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hpctools/sonar/pkg/envelope"
	"github.com/hpctools/sonar/pkg/gpu"
	"github.com/hpctools/sonar/pkg/sysinfo"
)

var sysinfoCmd = &cobra.Command{
	Use:   "sysinfo",
	Short: "Print the node's static hardware/software inventory as a sonar envelope",
	RunE:  runSysinfo,
}

func runSysinfo(cmd *cobra.Command, _ []string) error {
	cluster, _ := cmd.Flags().GetString("cluster")
	node, err := resolveNode(cmd)
	if err != nil {
		return fmt.Errorf("sysinfo: %w", err)
	}

	gpuFacade := gpu.Discover()
	reportGPUBackends(gpuFacade)
	attrs, err := sysinfo.Collect(cluster, node, gpuFacade)
	if err != nil {
		return fmt.Errorf("sysinfo: %w", err)
	}

	sk, err := resolveOneshotSink(cmd)
	if err != nil {
		return err
	}

	meta := envelope.NewMeta("sonar", Version)
	env := envelope.Record(meta, envelope.TypeSysinfo, attrs)
	return emitEnvelope(cmd.Context(), sk, "sysinfo", node, env)
}
