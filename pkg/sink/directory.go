package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpctools/sonar/pkg/queue"
)

// DirectorySink appends each message's payload, newline-terminated, to
// a dated file under Root: <root>/YYYY/MM/DD/0-<topic>-<key>.json. The
// date comes from the message's EnqueuedAt time, so a batch spanning
// midnight is split across two files. It exists for sites that collect
// node output via a shared filesystem instead of Kafka.
type DirectorySink struct {
	Root string
}

// NewDirectorySink builds a DirectorySink rooted at dir.
func NewDirectorySink(dir string) *DirectorySink { return &DirectorySink{Root: dir} }

// Send appends every message in batch independently, reporting one
// outcome per message: a message already written to disk is never
// retried just because a sibling in the same batch failed. A
// filesystem error is transient per the sink's error taxonomy.
func (s *DirectorySink) Send(_ context.Context, batch []queue.Message) []error {
	outcomes := make([]error, len(batch))
	for i, m := range batch {
		day := m.EnqueuedAt.Format("2006/01/02")
		dir := filepath.Join(s.Root, day)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			outcomes[i] = fmt.Errorf("sink: directory: %w", err)
			continue
		}

		name := filepath.Join(dir, fmt.Sprintf("0-%s-%s.json", m.Topic, filenameHost(m)))
		f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			outcomes[i] = fmt.Errorf("sink: directory: %w", err)
			continue
		}
		_, writeErr := fmt.Fprintf(f, "%s\n", m.Payload)
		closeErr := f.Close()
		if writeErr != nil {
			outcomes[i] = fmt.Errorf("sink: directory: %w", writeErr)
			continue
		}
		if closeErr != nil {
			outcomes[i] = fmt.Errorf("sink: directory: %w", closeErr)
		}
	}
	return outcomes
}

// filenameHost picks the host segment of a directory sink's filename:
// the literal "slurm" for the jobs/cluster topics (the one-shot names
// "jobs"/"cluster" and the daemon's "slurm_jobs"/"slurm_cluster", with
// any "<prefix>-" removed first), since their records describe the whole
// partition/job set, not one node, and Message.Key is the cluster name
// rather than a host; the message's key (the reporting node) for every
// other topic.
func filenameHost(m queue.Message) string {
	topic := m.Topic
	if i := strings.LastIndexByte(topic, '-'); i >= 0 {
		topic = topic[i+1:]
	}
	switch topic {
	case "jobs", "cluster", "slurm_jobs", "slurm_cluster":
		return "slurm"
	default:
		return m.Key
	}
}
