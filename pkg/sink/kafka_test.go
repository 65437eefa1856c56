package sink

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaSink_RequiresBrokerAddress(t *testing.T) {
	_, err := NewKafkaSink(KafkaConfig{}, zerolog.Nop())
	require.Error(t, err)
}

func TestNewKafkaSink_RejectsMissingCAFile(t *testing.T) {
	_, err := NewKafkaSink(KafkaConfig{
		BrokerAddress: "localhost:9092",
		CAFile:        "/nonexistent/ca.pem",
	}, zerolog.Nop())
	require.Error(t, err)
}

func TestNewKafkaSink_BuildsClientForValidConfig(t *testing.T) {
	s, err := NewKafkaSink(KafkaConfig{BrokerAddress: "localhost:9092,localhost:9093"}, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, s)
	defer s.Close()
	assert.NotNil(t, s.client)
}

func TestIsFatalKafkaErr(t *testing.T) {
	assert.True(t, isFatalKafkaErr(errSASL{}))
	assert.False(t, isFatalKafkaErr(errPlain{}))
}

type errSASL struct{}

func (errSASL) Error() string { return "SASL authentication failed" }

type errPlain struct{}

func (errPlain) Error() string { return "connection refused" }
