package slurm

import (
	"testing"

	"github.com/hpctools/sonar/pkg/envelope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSacct_Basic(t *testing.T) {
	raw := []byte(
		"12345.0|alice|proj1|normal|COMPLETED|2026-01-01T10:00:00|2026-01-01T10:00:05|2026-01-01T10:10:00|c[1-2]|cpu=4,mem=16G|cpu=4,mem=16G\n",
	)
	records, err := ParseSacct(raw)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, int64(12345), r.JobID)
	assert.Equal(t, "0", r.Step)
	assert.Equal(t, "alice", r.User)
	assert.Equal(t, "proj1", r.Account)
	assert.Equal(t, "COMPLETED", r.State)
	assert.Equal(t, "c[1-2]", r.NodeList)
	assert.Equal(t, 4, r.ReqCPUs)
	assert.Equal(t, uint64(16)<<20, r.ReqMemoryKiB)
}

func TestParseSacct_UnknownFieldsOmitted(t *testing.T) {
	raw := []byte(
		"99.batch|bob|Unknown|Unknown|RUNNING|Unknown|Unknown|Unknown|Unknown||\n",
	)
	records, err := ParseSacct(raw)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Account)
	assert.Empty(t, records[0].Partition)
	assert.True(t, records[0].SubmitTime.IsZero())
	assert.True(t, records[0].StartTime.IsZero())
}

func TestParseSacct_SkipsShortLines(t *testing.T) {
	raw := []byte("garbage|line\n")
	records, err := ParseSacct(raw)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseSacct_EmptyInput(t *testing.T) {
	raw := make([]byte, 0)
	all, err := ParseSacct(raw)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestBatch_SplitsAndReassembles(t *testing.T) {
	records := make([]envelope.JobRecord, 301)
	for i := range records {
		records[i] = envelope.JobRecord{JobID: int64(i)}
	}

	batches := Batch("fox", records, 17)
	assert.Len(t, batches, 18)

	var reassembled []envelope.JobRecord
	for _, b := range batches {
		assert.Equal(t, "fox", b.Cluster)
		reassembled = append(reassembled, b.Jobs...)
	}
	assert.Equal(t, records, reassembled)
}

func TestBatch_NoSplitWhenUnderLimit(t *testing.T) {
	records := []envelope.JobRecord{{JobID: 1}, {JobID: 2}}
	batches := Batch("fox", records, 100)
	require.Len(t, batches, 1)
	assert.Equal(t, records, batches[0].Jobs)
}

func TestEnrichFromScontrol(t *testing.T) {
	records := []envelope.JobRecord{{JobID: 42, ReqCPUs: 0}}
	raw := []byte("JobId=42 JobName=test ReqTRES=cpu=8,mem=32G TRES=cpu=8,mem=32G,node=1\n\n")

	enriched := EnrichFromScontrol(records, raw)
	require.Len(t, enriched, 1)
	assert.Equal(t, 8, enriched[0].ReqCPUs)
	assert.Equal(t, "cpu=8,mem=32G,node=1", enriched[0].AllocTRES)
}
