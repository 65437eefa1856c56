package slurm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTRES_RoundTrip(t *testing.T) {
	cases := []string{
		"cpu=4,mem=16G,gres/gpu=2",
		"",
		"cpu=1",
		"mem=512M,node=1",
	}
	for _, s := range cases {
		tr, err := ParseTRES(s)
		require.NoError(t, err)
		assert.Equal(t, s, tr.String())
	}
}

func TestTRES_Value(t *testing.T) {
	tr, err := ParseTRES("cpu=4,billing=8")
	require.NoError(t, err)

	v, ok, err := tr.Value("cpu")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)

	_, ok, err = tr.Value("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTRES_ValueBytes(t *testing.T) {
	tr, err := ParseTRES("mem=16G,node=1M,raw=1024")
	require.NoError(t, err)

	v, ok, err := tr.ValueBytes("mem")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(16)<<30, v)

	v, ok, err = tr.ValueBytes("node")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(1)<<20, v)

	v, ok, err = tr.ValueBytes("raw")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(1024), v)
}

func TestParseTRES_Malformed(t *testing.T) {
	_, err := ParseTRES("cpu")
	assert.Error(t, err)
}
