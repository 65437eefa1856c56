package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hpctools/sonar/pkg/config"
	"github.com/hpctools/sonar/pkg/daemon"
	"github.com/hpctools/sonar/pkg/envelope"
	"github.com/hpctools/sonar/pkg/gpu"
	"github.com/hpctools/sonar/pkg/logging"
	"github.com/hpctools/sonar/pkg/metrics"
	"github.com/hpctools/sonar/pkg/queue"
	"github.com/hpctools/sonar/pkg/sampler"
	"github.com/hpctools/sonar/pkg/sink"
	"github.com/hpctools/sonar/pkg/slurm"
	"github.com/hpctools/sonar/pkg/sysinfo"
	"github.com/hpctools/sonar/pkg/system/cgroup"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon <config-file>",
	Short: "Run sonar as a long-lived daemon against an INI configuration file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDaemon,
}

const queueHighWaterMark = 10_000

func init() {
	daemonCmd.Flags().String("metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9090)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return fmt.Errorf("daemon: %w", err)
	}
	logging.Init(logging.Config{Verbose: cfg.Debug.Verbose, Output: os.Stderr})
	log := logging.WithCluster(cfg.Global.Cluster)

	node, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("daemon: %w", err)
	}
	if cfg.Global.HostnameOnly {
		if i := strings.IndexByte(node, '.'); i >= 0 {
			node = node[:i]
		}
	}

	if version, path, err := cgroup.Detect(); err == nil {
		if version == cgroup.Unsupported && !cfg.Sample.Batchless {
			log.Warn().Msg("no cgroup hierarchy detected; every process will fall back to batchless job identity unless sample.batchless is set")
		} else {
			log.Info().Str("cgroup", version.String()).Str("path", path).Msg("cgroup hierarchy detected")
		}
	}

	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		serveMetrics(cmd.Context(), addr, log)
	}

	sk, sinkName, err := buildSink(cfg, log)
	if err != nil {
		return fmt.Errorf("daemon: %w", err)
	}

	q := queue.New(queueHighWaterMark)
	window := queue.NewWindow(q, sk, sendingWindowFor(cfg), ttlFor(cfg), logging.WithSink(sinkName))

	schedulers, err := buildSchedulers(cfg, q, window, node, log)
	if err != nil {
		return fmt.Errorf("daemon: %w", err)
	}
	if len(schedulers) == 0 {
		return usageError{fmt.Errorf("daemon: config enables no operations (need at least one of [sample] [sysinfo] [jobs] [cluster])")}
	}

	if cfg.Debug.TimeLimit > 0 || cfg.Debug.Oneshot {
		for _, s := range schedulers {
			s.TimeLimit = cfg.Debug.TimeLimit
			s.Oneshot = cfg.Debug.Oneshot
		}
	}

	d, err := daemon.New(cfg.Global.LockDir, schedulers, []*queue.Window{window}, log)
	if err != nil {
		return fmt.Errorf("daemon: %w", err)
	}

	code := d.Run(cmd.Context())
	if code != daemon.ExitNormal {
		return fmt.Errorf("daemon: exited with code %d", code)
	}
	return nil
}

// serveMetrics mounts the Prometheus handler on addr and runs it in the
// background, shutting down when ctx is cancelled. A listener failure
// is logged, not fatal: metrics are an observability add-on, never a
// reason to refuse to start sampling.
func serveMetrics(ctx context.Context, addr string, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Str("addr", addr).Msg("metrics listener failed")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

func sendingWindowFor(cfg *config.Config) time.Duration {
	if cfg.Kafka != nil && cfg.Kafka.SendingWindow > 0 {
		return cfg.Kafka.SendingWindow
	}
	return 5 * time.Minute
}

func ttlFor(cfg *config.Config) time.Duration {
	if cfg.Kafka != nil && cfg.Kafka.Timeout > 0 {
		return cfg.Kafka.Timeout
	}
	return 30 * time.Minute
}

// buildSink picks the one active transport from cfg, preferring the
// explicitly configured Kafka/REST or directory transport, and falling
// back to stdio when neither [kafka] nor [directory] is present (e.g.
// while exercising a config under development).
func buildSink(cfg *config.Config, log zerolog.Logger) (sink.Sink, string, error) {
	name, s, err := pickSink(cfg, log)
	if err != nil {
		return nil, name, err
	}
	return sink.Instrument(name, s), name, nil
}

func pickSink(cfg *config.Config, log zerolog.Logger) (string, sink.Sink, error) {
	switch {
	case cfg.HasKafka() && cfg.Kafka.BrokerAddress != "":
		s, err := sink.NewKafkaSink(sink.KafkaConfig{
			BrokerAddress:    cfg.Kafka.BrokerAddress,
			CAFile:           cfg.Kafka.CAFile,
			SASLUser:         cfg.Kafka.SASLUser,
			SASLPassword:     cfg.Kafka.SASLPassword,
			SASLPasswordFile: cfg.Kafka.SASLPasswordFile,
		}, logging.WithSink("kafka"))
		return "kafka", s, err
	case cfg.HasKafka() && cfg.Kafka.RestEndpoint != "":
		curl := cfg.Programs.Curl
		if curl == "" {
			curl = "curl"
		}
		return "http", sink.NewHTTPSink(curl, cfg.Kafka.RestEndpoint, cfg.Kafka.HTTPProxy, "sonar", cfg.Kafka.Timeout, logging.WithSink("http")), nil
	case cfg.HasDirectory():
		return "directory", sink.NewDirectorySink(cfg.Directory.DataDirectory), nil
	default:
		log.Warn().Msg("no [kafka] or [directory] transport configured, defaulting to stdio")
		return "stdio", sink.NewStdioSink(os.Stdout, "sonar"), nil
	}
}

// topicFor applies the configured topic prefix to a record type.
func topicFor(cfg *config.Config, t envelope.RecordType) string {
	if cfg.Global.TopicPrefix == "" {
		return string(t)
	}
	return cfg.Global.TopicPrefix + "-" + string(t)
}

func buildSchedulers(cfg *config.Config, q *queue.Queue, window *queue.Window, node string, log zerolog.Logger) ([]*daemon.Scheduler, error) {
	meta := envelope.NewMeta("sonar", Version)
	var out []*daemon.Scheduler

	var gpuFacade *gpu.Facade
	if cfg.Sample != nil || cfg.Sysinfo != nil {
		gpuFacade = gpu.Discover()
		reportGPUBackends(gpuFacade)
	}

	if cfg.Sample != nil {
		var pool *sampler.PidPool
		if cfg.Sample.Rollup {
			pool = sampler.NewPidPool(1_900_000_000, 100_000, 2)
		}
		filters := sampler.NewFilters(cfg.Sample.ExcludeCommands, cfg.Sample.ExcludeUsers, cfg.Sample.ExcludeSystemJobs, cfg.Sample.MinCPUTime)
		s := sampler.New(cfg.Global.Cluster, node, filters, cfg.Sample.Rollup, cfg.Sample.Batchless, cfg.Sample.Load, gpuFacade, pool, logging.WithOperation("sample"))

		topic := topicFor(cfg, envelope.TypeSample)
		op := daemon.Operation{
			Name:    "sample",
			Cadence: cfg.Sample.Cadence,
			Run: func(ctx context.Context, tick time.Time) error {
				start := time.Now()
				attrs, errs := s.Sample(tick)
				metrics.SampleDuration.Observe(time.Since(start).Seconds())
				metrics.ProcessesObserved.Set(float64(countProcesses(attrs)))

				var env envelope.Envelope
				if len(errs) > 0 {
					env = envelope.Failure(meta, errs...)
				} else {
					env = envelope.Record(meta, envelope.TypeSample, attrs)
					metrics.SamplesEmitted.WithLabelValues(string(envelope.TypeSample)).Inc()
				}
				return enqueueEnvelope(q, window, topic, node, env)
			},
		}
		out = append(out, daemon.NewScheduler(op, log))
	}

	if cfg.Sysinfo != nil {
		topic := topicFor(cfg, envelope.TypeSysinfo)
		op := daemon.Operation{
			Name:      "sysinfo",
			Cadence:   cfg.Sysinfo.Cadence,
			OnStartup: cfg.Sysinfo.OnStartup,
			Run: func(ctx context.Context, tick time.Time) error {
				attrs, err := sysinfo.Collect(cfg.Global.Cluster, node, gpuFacade)
				if err != nil {
					return enqueueEnvelope(q, window, topic, node, envelope.Failure(meta, errorRecord(cfg.Global.Cluster, node, tick, err)))
				}
				return enqueueEnvelope(q, window, topic, node, envelope.Record(meta, envelope.TypeSysinfo, attrs))
			},
		}
		out = append(out, daemon.NewScheduler(op, log))
	}

	if cfg.Jobs != nil {
		tools := slurm.NewTools(cfg.Programs.Sacct, cfg.Programs.Scontrol, "", logging.WithOperation("jobs"))
		topic := topicFor(cfg, envelope.TypeJobs)
		op := daemon.Operation{
			Name:    "jobs",
			Cadence: cfg.Jobs.Cadence,
			Run: func(ctx context.Context, tick time.Time) error {
				raw, err := tools.RunSacct(ctx, tick.Add(-cfg.Jobs.Window))
				if err != nil {
					return enqueueEnvelope(q, window, topic, cfg.Global.Cluster, envelope.Failure(meta, errorRecord(cfg.Global.Cluster, node, tick, err)))
				}
				records, err := slurm.ParseSacct(raw)
				if err != nil {
					return enqueueEnvelope(q, window, topic, cfg.Global.Cluster, envelope.Failure(meta, errorRecord(cfg.Global.Cluster, node, tick, err)))
				}
				if scRaw, err := tools.RunScontrolShowJob(ctx); err == nil {
					records = slurm.EnrichFromScontrol(records, scRaw)
				}
				for _, batch := range slurm.Batch(cfg.Global.Cluster, records, cfg.Jobs.BatchSize) {
					if err := enqueueEnvelope(q, window, topic, cfg.Global.Cluster, envelope.Record(meta, envelope.TypeJobs, batch)); err != nil {
						return err
					}
				}
				return nil
			},
		}
		out = append(out, daemon.NewScheduler(op, log))
	}

	if cfg.Cluster != nil {
		tools := slurm.NewTools("", "", cfg.Programs.Sinfo, logging.WithOperation("cluster"))
		topic := topicFor(cfg, envelope.TypeCluster)
		op := daemon.Operation{
			Name:      "cluster",
			Cadence:   cfg.Cluster.Cadence,
			OnStartup: cfg.Cluster.OnStartup,
			Run: func(ctx context.Context, tick time.Time) error {
				partRaw, err := tools.RunSinfoPartitions(ctx)
				if err != nil {
					return enqueueEnvelope(q, window, topic, cfg.Global.Cluster, envelope.Failure(meta, errorRecord(cfg.Global.Cluster, node, tick, err)))
				}
				partitions, err := slurm.ParsePartitions(partRaw)
				if err != nil {
					return enqueueEnvelope(q, window, topic, cfg.Global.Cluster, envelope.Failure(meta, errorRecord(cfg.Global.Cluster, node, tick, err)))
				}
				nodeRaw, err := tools.RunSinfoNodes(ctx)
				if err == nil {
					if states, err := slurm.ParseNodeStates(nodeRaw); err == nil {
						partitions = slurm.MergeClusterTopology(partitions, states)
					}
				}
				attrs := envelope.ClusterAttributes{Cluster: cfg.Global.Cluster, Partitions: partitions}
				return enqueueEnvelope(q, window, topic, cfg.Global.Cluster, envelope.Record(meta, envelope.TypeCluster, attrs))
			},
		}
		out = append(out, daemon.NewScheduler(op, log))
	}

	return out, nil
}

// countProcesses sums the per-job process counts in a sample, for the
// processes-observed gauge.
func countProcesses(attrs envelope.SampleAttributes) int {
	n := 0
	for _, j := range attrs.Jobs {
		n += len(j.Processes)
	}
	return n
}

// reportGPUBackends sets the gpu-backend-active gauge for every backend
// the facade holds: 1 if it reports devices, 0 otherwise. The facade
// holds only backends that found devices, or the Noop backend alone.
func reportGPUBackends(f *gpu.Facade) {
	if f == nil {
		return
	}
	for _, b := range f.Backends() {
		n, err := b.DeviceCount()
		active := 0.0
		if err == nil && n > 0 {
			active = 1
		}
		metrics.GPUBackendActive.WithLabelValues(b.Name()).Set(active)
	}
}

func errorRecord(cluster, node string, tick time.Time, err error) envelope.ErrorRecord {
	return envelope.ErrorRecord{Time: tick, Detail: err.Error(), Cluster: cluster, Node: node}
}

// enqueueEnvelope marshals env onto q under topic/key and arms window
// if the queue was empty, matching Window.Arm's documented contract.
func enqueueEnvelope(q *queue.Queue, window *queue.Window, topic, key string, env envelope.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("%s: %w", topic, err)
	}
	before := q.Warnings()
	_, wasEmpty := q.Enqueue(topic, key, payload, time.Now())
	if wasEmpty {
		window.Arm()
	}
	metrics.QueueDepth.WithLabelValues(topic).Set(float64(q.Len()))
	if after := q.Warnings(); after > before {
		metrics.QueueWarnings.WithLabelValues(topic).Add(float64(after - before))
	}
	return nil
}
