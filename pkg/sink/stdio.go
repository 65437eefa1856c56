package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hpctools/sonar/pkg/queue"
)

// StdioSink writes each message to Writer as one {topic,key,client,value}
// JSON object per line. It backs the one-shot CLI operations
// (sample/sysinfo/jobs/cluster run outside the daemon) and is the
// default sink when no transport is configured.
type StdioSink struct {
	Writer io.Writer
	Client string
}

// NewStdioSink builds a StdioSink writing to w, stamping client on every
// wrapped message.
func NewStdioSink(w io.Writer, client string) *StdioSink {
	return &StdioSink{Writer: w, Client: client}
}

// Send writes every message in order, fatally, so a write failure
// (almost always a closed pipe) never causes a retry loop. Once the
// underlying writer fails, it is presumed permanently broken, so every
// message from that point on is also reported fatal rather than
// retried against the same dead writer.
func (s *StdioSink) Send(_ context.Context, batch []queue.Message) []error {
	outcomes := make([]error, len(batch))
	enc := json.NewEncoder(s.Writer)
	broken := false
	for i, m := range batch {
		if broken {
			outcomes[i] = queue.Fatal(fmt.Errorf("sink: stdio: writer already failed"))
			continue
		}
		if err := enc.Encode(wrapMessage(s.Client, m)); err != nil {
			outcomes[i] = queue.Fatal(err)
			broken = true
		}
	}
	return outcomes
}
