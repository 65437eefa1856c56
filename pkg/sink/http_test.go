package sink

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpctools/sonar/pkg/queue"
)

// writeMockStatus arranges for the next curl invocation (intercepted via
// SONARTEST_MOCK_CURL) to behave as if the server answered with code.
func writeMockStatus(t *testing.T, code string) {
	t.Helper()
	f := filepath.Join(t.TempDir(), "status")
	require.NoError(t, os.WriteFile(f, []byte(code), 0o644))
	t.Setenv("SONARTEST_MOCK_CURL", f)
}

func TestHTTPSink_2xxSucceeds(t *testing.T) {
	writeMockStatus(t, "200")
	s := NewHTTPSink("curl", "http://example/ingest", "", "sonar", time.Second, zerolog.Nop())

	errs := s.Send(context.Background(), []queue.Message{{ID: 1, Payload: []byte(`{}`)}})
	assert.NoError(t, errs[0])
}

func TestHTTPSink_5xxIsTransient(t *testing.T) {
	writeMockStatus(t, "503")
	s := NewHTTPSink("curl", "http://example/ingest", "", "sonar", time.Second, zerolog.Nop())

	errs := s.Send(context.Background(), []queue.Message{{ID: 1, Payload: []byte(`{}`)}})
	require.Error(t, errs[0])
	assert.False(t, queue.IsFatal(errs[0]))
}

func TestHTTPSink_4xxIsFatal(t *testing.T) {
	writeMockStatus(t, "400")
	s := NewHTTPSink("curl", "http://example/ingest", "", "sonar", time.Second, zerolog.Nop())

	errs := s.Send(context.Background(), []queue.Message{{ID: 1, Payload: []byte(`{}`)}})
	require.Error(t, errs[0])
	assert.True(t, queue.IsFatal(errs[0]))
}

func TestHTTPSink_429IsTransient(t *testing.T) {
	writeMockStatus(t, "429")
	s := NewHTTPSink("curl", "http://example/ingest", "", "sonar", time.Second, zerolog.Nop())

	errs := s.Send(context.Background(), []queue.Message{{ID: 1, Payload: []byte(`{}`)}})
	require.Error(t, errs[0])
	assert.False(t, queue.IsFatal(errs[0]))
}
