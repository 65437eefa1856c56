package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hpctools/sonar/internal/osexec"
	"github.com/hpctools/sonar/pkg/queue"
)

// HTTPSink relays a whole batch to a REST endpoint in one POST,
// shelling out to curl rather than linking an HTTP client, following
// the program's bounded-subprocess convention.
type HTTPSink struct {
	Endpoint string
	Proxy    string
	Client   string
	Runner   osexec.Runner
	Log      zerolog.Logger
}

// NewHTTPSink builds an HTTPSink that invokes curlPath.
func NewHTTPSink(curlPath, endpoint, proxy, client string, timeout time.Duration, log zerolog.Logger) *HTTPSink {
	return &HTTPSink{
		Endpoint: endpoint,
		Proxy:    proxy,
		Client:   client,
		Runner: osexec.Runner{
			Name:       curlPath,
			Timeout:    timeout,
			MockEnvVar: "SONARTEST_MOCK_CURL",
			Log:        log,
		},
		Log: log,
	}
}

// Send posts the whole batch, wrapped as one JSON array of
// {topic,key,client,value} objects, in a single curl invocation. curl
// reports one outcome for the whole POST, so every message in the
// batch shares it: there is no way to tell, from curl's exit status
// and HTTP response code alone, which individual message in the array
// the endpoint objected to.
func (s *HTTPSink) Send(ctx context.Context, batch []queue.Message) []error {
	err := s.sendBatch(ctx, batch)
	return queue.Replicate(err, len(batch))
}

func (s *HTTPSink) sendBatch(ctx context.Context, batch []queue.Message) error {
	wrapped := make([]wrapper, len(batch))
	for i, m := range batch {
		wrapped[i] = wrapMessage(s.Client, m)
	}
	body, err := json.Marshal(wrapped)
	if err != nil {
		return fmt.Errorf("sink: http: %w", err)
	}

	bodyFile, err := os.CreateTemp("", "sonar-relay-*.json")
	if err != nil {
		return fmt.Errorf("sink: http: %w", err)
	}
	defer os.Remove(bodyFile.Name())
	if _, err := bodyFile.Write(body); err != nil {
		bodyFile.Close()
		return fmt.Errorf("sink: http: %w", err)
	}
	bodyFile.Close()

	args := []string{
		"-sS", "-o", "/dev/null", "-w", "%{http_code}",
		"-X", "POST",
		"-H", "Content-Type: application/json",
		"--data-binary", "@" + bodyFile.Name(),
	}
	if s.Proxy != "" {
		args = append(args, "--proxy", s.Proxy)
	}
	args = append(args, s.Endpoint)

	out, err := s.Runner.Run(ctx, args...)
	if err != nil {
		return fmt.Errorf("sink: http: %w", err)
	}

	code, convErr := strconv.Atoi(strings.TrimSpace(string(out)))
	if convErr != nil {
		return fmt.Errorf("sink: http: unparseable status %q", string(out))
	}
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == 429 || code >= 500:
		return fmt.Errorf("sink: http: status %d", code)
	case code >= 400:
		return queue.Fatal(fmt.Errorf("sink: http: status %d", code))
	default:
		return fmt.Errorf("sink: http: unexpected status %d", code)
	}
}
