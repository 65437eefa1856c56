package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hpctools/sonar/pkg/envelope"
	"github.com/hpctools/sonar/pkg/gpu"
	"github.com/hpctools/sonar/pkg/logging"
	"github.com/hpctools/sonar/pkg/metrics"
	"github.com/hpctools/sonar/pkg/queue"
	"github.com/hpctools/sonar/pkg/sampler"
	"github.com/hpctools/sonar/pkg/sink"
	"github.com/hpctools/sonar/pkg/system/cgroup"
)

var sampleCmd = &cobra.Command{
	Use:     "sample",
	Aliases: []string{"ps"},
	Short:   "Take one process/job sample and print it as a sonar envelope",
	RunE:    runSample,
}

func init() {
	sampleCmd.Flags().Bool("rollup", false, "collapse large sibling process groups into one rolled-up entry")
	sampleCmd.Flags().Bool("batchless", false, "attribute non-Slurm processes to a process-group/node-epoch job identity")
	sampleCmd.Flags().Bool("load", true, "include the node's load average")
	sampleCmd.Flags().Bool("exclude-system-jobs", true, "exclude processes owned by system users (uid < 1000)")
	sampleCmd.Flags().StringSlice("exclude-users", nil, "user names to exclude from the sample")
	sampleCmd.Flags().StringSlice("exclude-commands", nil, "command names to exclude from the sample")
	sampleCmd.Flags().Duration("min-cpu-time", 0, "exclude processes with less cumulative cpu time than this")
}

func runSample(cmd *cobra.Command, _ []string) error {
	cluster, _ := cmd.Flags().GetString("cluster")
	node, err := resolveNode(cmd)
	if err != nil {
		return fmt.Errorf("sample: %w", err)
	}

	rollup, _ := cmd.Flags().GetBool("rollup")
	batchless, _ := cmd.Flags().GetBool("batchless")

	if version, path, err := cgroup.Detect(); err == nil {
		l := logging.WithOperation("sample")
		if version == cgroup.Unsupported && !batchless {
			l.Warn().Msg("no cgroup hierarchy detected; every process will fall back to batchless job identity unless --batchless is set")
		} else {
			l.Debug().Str("cgroup", version.String()).Str("path", path).Msg("cgroup hierarchy detected")
		}
	}

	load, _ := cmd.Flags().GetBool("load")
	excludeSystem, _ := cmd.Flags().GetBool("exclude-system-jobs")
	excludeUsers, _ := cmd.Flags().GetStringSlice("exclude-users")
	excludeCommands, _ := cmd.Flags().GetStringSlice("exclude-commands")
	minCPU, _ := cmd.Flags().GetDuration("min-cpu-time")

	filters := sampler.NewFilters(excludeCommands, excludeUsers, excludeSystem, minCPU)
	gpuFacade := gpu.Discover()
	reportGPUBackends(gpuFacade)

	var pool *sampler.PidPool
	if rollup {
		pool = sampler.NewPidPool(1_900_000_000, 100_000, 2)
	}

	s := sampler.New(cluster, node, filters, rollup, batchless, load, gpuFacade, pool, logging.WithOperation("sample"))

	start := time.Now()
	attrs, errs := s.Sample(time.Now())
	metrics.SampleDuration.Observe(time.Since(start).Seconds())
	metrics.ProcessesObserved.Set(float64(countProcesses(attrs)))

	sk, err := resolveOneshotSink(cmd)
	if err != nil {
		return err
	}

	meta := envelope.NewMeta("sonar", Version)
	var env envelope.Envelope
	if len(errs) > 0 {
		env = envelope.Failure(meta, errs...)
	} else {
		env = envelope.Record(meta, envelope.TypeSample, attrs)
		metrics.SamplesEmitted.WithLabelValues(string(envelope.TypeSample)).Inc()
	}
	return emitEnvelope(cmd.Context(), sk, "sample", node, env)
}

// emitEnvelope JSON-encodes env into a single queue.Message and hands
// it to sk, the shared path every one-shot command uses. The daemon's
// producers use enqueueEnvelope instead.
func emitEnvelope(ctx context.Context, sk sink.Sink, topic, key string, env envelope.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("%s: %w", topic, err)
	}
	msg := queue.Message{Topic: topic, Key: key, Payload: payload, EnqueuedAt: time.Now()}
	if errs := sk.Send(ctx, []queue.Message{msg}); len(errs) > 0 && errs[0] != nil {
		return fmt.Errorf("%s: %w", topic, errs[0])
	}
	return nil
}
