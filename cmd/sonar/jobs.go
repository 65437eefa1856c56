package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hpctools/sonar/pkg/envelope"
	"github.com/hpctools/sonar/pkg/logging"
	"github.com/hpctools/sonar/pkg/slurm"
)

var jobsCmd = &cobra.Command{
	Use:     "jobs",
	Aliases: []string{"slurm"},
	Short:   "Print recent Slurm job/step accounting records as a sonar envelope",
	RunE:    runJobs,
}

func init() {
	jobsCmd.Flags().String("sacct-command", "sacct", "path to the sacct binary")
	jobsCmd.Flags().String("scontrol-command", "scontrol", "path to the scontrol binary")
	jobsCmd.Flags().Duration("since", time.Hour, "how far back to query accounting records")
	jobsCmd.Flags().Int("batch-size", 0, "split output into envelopes of at most this many records (0 = unbounded)")
}

func runJobs(cmd *cobra.Command, _ []string) error {
	cluster, _ := cmd.Flags().GetString("cluster")
	sacctPath, _ := cmd.Flags().GetString("sacct-command")
	scontrolPath, _ := cmd.Flags().GetString("scontrol-command")
	since, _ := cmd.Flags().GetDuration("since")
	batchSize, _ := cmd.Flags().GetInt("batch-size")

	tools := slurm.NewTools(sacctPath, scontrolPath, "", logging.WithOperation("jobs"))

	ctx := cmd.Context()
	raw, err := tools.RunSacct(ctx, time.Now().Add(-since))
	if err != nil {
		return fmt.Errorf("jobs: %w", err)
	}
	records, err := slurm.ParseSacct(raw)
	if err != nil {
		return fmt.Errorf("jobs: %w", err)
	}

	if scRaw, err := tools.RunScontrolShowJob(ctx); err == nil {
		records = slurm.EnrichFromScontrol(records, scRaw)
	}

	sk, err := resolveOneshotSink(cmd)
	if err != nil {
		return err
	}
	meta := envelope.NewMeta("sonar", Version)
	for _, batch := range slurm.Batch(cluster, records, batchSize) {
		env := envelope.Record(meta, envelope.TypeJobs, batch)
		if err := emitEnvelope(ctx, sk, "jobs", cluster, env); err != nil {
			return err
		}
	}
	return nil
}
