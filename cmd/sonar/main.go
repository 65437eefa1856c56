// Command sonar is the HPC node-agent: a daemon that periodically
// samples process/job/cluster state and ships it to a transport, plus
// a one-shot CLI mode exposing each sampling operation individually.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags; "dev" otherwise.
var Version = "dev"

const (
	exitSuccess = 0
	exitOp      = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "sonar: %v\n", err)
		if isUsageError(err) {
			return exitUsage
		}
		return exitOp
	}
	return exitSuccess
}

// usageError marks an error as a CLI misuse (bad flags/args) rather
// than an operational failure, so main can pick exit code 2 over 1.
type usageError struct{ err error }

func (u usageError) Error() string { return u.err.Error() }
func (u usageError) Unwrap() error { return u.err }

func isUsageError(err error) bool {
	_, ok := err.(usageError)
	return ok
}

var rootCmd = &cobra.Command{
	Use:     "sonar",
	Short:   "Cluster and per-node telemetry agent for HPC systems",
	Version: Version,
	Long: `sonar samples process, job, and cluster state on an HPC compute
node or cluster master, and ships it to Kafka, a REST relay, a local
directory tree, or stdout.

Run as a long-lived daemon against an INI config file (sonar daemon
<path>), or invoke a single operation from the command line for
scripting and debugging.`,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("sonar version %s\n", Version))

	rootCmd.PersistentFlags().String("cluster", "", "cluster name stamped on every emitted record")
	rootCmd.PersistentFlags().String("node", "", "node name stamped on every emitted record (defaults to the local hostname)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug-level logging")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON instead of console-formatted text")
	rootCmd.PersistentFlags().String("sink", "stdio", "output sink for one-shot commands: stdio or directory:<path>")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(sysinfoCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(clusterCmd)
	rootCmd.AddCommand(daemonCmd)
}
