package envelope

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hpctools/sonar/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_MarshalsDataNotErrors(t *testing.T) {
	meta := NewMeta("sonar", "1.0.0")
	env := Record(meta, TypeSample, SampleAttributes{
		Cluster:    "fox",
		Node:       "c1",
		Time:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		CPUSeconds: []uint64{100, 200},
		UsedMemory: types.Bytes(1024),
		Jobs:       []JobProcesses{},
	})

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))
	assert.Contains(t, generic, "data")
	assert.NotContains(t, generic, "errors")

	d := generic["data"].(map[string]any)
	assert.Equal(t, "sample", d["type"])
}

func TestFailure_MarshalsErrorsNotData(t *testing.T) {
	meta := NewMeta("sonar", "1.0.0")
	env := Failure(meta, ErrorRecord{
		Time:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Detail:  "sacct timed out",
		Cluster: "fox",
		Node:    "c1",
	})

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))
	assert.NotContains(t, generic, "data")
	assert.Contains(t, generic, "errors")
}

func TestMeta_OmitsEmptyOptionalFields(t *testing.T) {
	meta := NewMeta("sonar", "1.0.0")
	data, err := json.Marshal(meta)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "token")
	assert.NotContains(t, string(data), "attrs")
}

func TestSampleAttributes_OmitsDefaultFields(t *testing.T) {
	attrs := SampleAttributes{
		Cluster:    "fox",
		Node:       "c1",
		CPUSeconds: []uint64{1},
		Jobs:       nil,
	}
	data, err := json.Marshal(attrs)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\"load\"")
	assert.NotContains(t, string(data), "\"gpu_cards\"")
}
