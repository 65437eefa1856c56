package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hpctools/sonar/pkg/sink"
)

// resolveOneshotSink builds the sink a one-shot CLI command writes its
// single envelope to, from the shared --sink flag: "stdio" (default)
// or "directory:<path>".
func resolveOneshotSink(cmd *cobra.Command) (sink.Sink, error) {
	spec, _ := cmd.Flags().GetString("sink")
	switch {
	case spec == "" || spec == "stdio":
		return sink.NewStdioSink(os.Stdout, "sonar"), nil
	case strings.HasPrefix(spec, "directory:"):
		dir := strings.TrimPrefix(spec, "directory:")
		if dir == "" {
			return nil, usageError{fmt.Errorf("--sink directory: requires a path")}
		}
		return sink.NewDirectorySink(dir), nil
	default:
		return nil, usageError{fmt.Errorf("unrecognized --sink %q (want stdio or directory:<path>)", spec)}
	}
}
