package slurm

import (
	"testing"

	"github.com/hpctools/sonar/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePartitions(t *testing.T) {
	raw := []byte("normal|c[1-3]\ngpu|g[1-2]\n")
	parts, err := ParsePartitions(raw)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, "normal", parts[0].Name)
	assert.Equal(t, types.NodeRange("c[1-3]"), parts[0].Nodes[0].Nodes)
	assert.Equal(t, "gpu", parts[1].Name)
}

func TestParseNodeStates(t *testing.T) {
	raw := []byte("c[1-2]|idle\nc3|down\n")
	states, err := ParseNodeStates(raw)
	require.NoError(t, err)
	assert.Equal(t, "idle", states["c1"])
	assert.Equal(t, "idle", states["c2"])
	assert.Equal(t, "down", states["c3"])
}

func TestMergeClusterTopology(t *testing.T) {
	raw := []byte("normal|c[1-3]\n")
	parts, err := ParsePartitions(raw)
	require.NoError(t, err)

	states, err := ParseNodeStates([]byte("c[1-2]|idle\nc3|down\n"))
	require.NoError(t, err)

	merged := MergeClusterTopology(parts, states)
	require.Len(t, merged, 1)
	assert.Equal(t, "normal", merged[0].Name)

	byState := map[string]types.NodeRange{}
	for _, n := range merged[0].Nodes {
		byState[n.State] = n.Nodes
	}
	assert.Equal(t, types.NodeRange("c[1-2]"), byState["idle"])
	assert.Equal(t, types.NodeRange("c[3]"), byState["down"])
}

func TestMergeClusterTopology_PreservesPartitionOrder(t *testing.T) {
	raw := []byte("b|n1\na|n2\n")
	parts, err := ParsePartitions(raw)
	require.NoError(t, err)

	merged := MergeClusterTopology(parts, map[string]string{"n1": "idle", "n2": "idle"})
	require.Len(t, merged, 2)
	assert.Equal(t, "b", merged[0].Name)
	assert.Equal(t, "a", merged[1].Name)
}
