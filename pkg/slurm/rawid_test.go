package slurm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRawID_Plain(t *testing.T) {
	id, err := DecodeRawID("12345")
	require.NoError(t, err)
	assert.Equal(t, RawID{JobID: 12345, Step: ""}, id)
}

func TestDecodeRawID_PlainWithStep(t *testing.T) {
	id, err := DecodeRawID("12345.0")
	require.NoError(t, err)
	assert.Equal(t, RawID{JobID: 12345, Step: "0"}, id)
}

func TestDecodeRawID_ArrayWithExternStep(t *testing.T) {
	id, err := DecodeRawID("1467073_1.extern")
	require.NoError(t, err)
	assert.Equal(t, RawID{
		JobID:       1467074,
		Step:        "extern",
		ArrayJobID:  1467073,
		ArrayTaskID: 1,
	}, id)
}

func TestDecodeRawID_Het(t *testing.T) {
	id, err := DecodeRawID("100+2.batch")
	require.NoError(t, err)
	assert.Equal(t, RawID{
		JobID:        102,
		Step:         "batch",
		HetJobID:     100,
		HetJobOffset: 2,
	}, id)
}

func TestDecodeRawID_Malformed(t *testing.T) {
	cases := []string{"abc", "1_", "_1", "1+", "+1"}
	for _, in := range cases {
		_, err := DecodeRawID(in)
		assert.Error(t, err, "expected error for %q", in)
	}
}

func TestDecodeRawID_ShapeInvariant(t *testing.T) {
	// exactly one of {plain, array, het} populated
	plain, _ := DecodeRawID("5.0")
	assert.Zero(t, plain.ArrayJobID)
	assert.Zero(t, plain.HetJobID)

	arr, _ := DecodeRawID("5_2.0")
	assert.NotZero(t, arr.ArrayJobID)
	assert.Zero(t, arr.HetJobID)

	het, _ := DecodeRawID("5+2.0")
	assert.Zero(t, het.ArrayJobID)
	assert.NotZero(t, het.HetJobID)
}
