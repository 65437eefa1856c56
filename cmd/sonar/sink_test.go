package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpctools/sonar/pkg/sink"
)

func newTestCmd(t *testing.T, sinkFlag string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("sink", "stdio", "")
	require.NoError(t, cmd.Flags().Set("sink", sinkFlag))
	return cmd
}

func TestResolveOneshotSink_Stdio(t *testing.T) {
	s, err := resolveOneshotSink(newTestCmd(t, "stdio"))
	require.NoError(t, err)
	_, ok := s.(*sink.StdioSink)
	assert.True(t, ok)
}

func TestResolveOneshotSink_Directory(t *testing.T) {
	dir := t.TempDir()
	s, err := resolveOneshotSink(newTestCmd(t, "directory:"+dir))
	require.NoError(t, err)
	_, ok := s.(*sink.DirectorySink)
	assert.True(t, ok)
}

func TestResolveOneshotSink_DirectoryMissingPath(t *testing.T) {
	_, err := resolveOneshotSink(newTestCmd(t, "directory:"))
	require.Error(t, err)
	assert.True(t, isUsageError(err))
}

func TestResolveOneshotSink_Unrecognized(t *testing.T) {
	_, err := resolveOneshotSink(newTestCmd(t, "carrier-pigeon"))
	require.Error(t, err)
	assert.True(t, isUsageError(err))
}
