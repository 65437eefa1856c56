package main

import (
	"os"

	"github.com/hpctools/sonar/pkg/logging"
	"github.com/spf13/cobra"
)

func initLogging() {
	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	asJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")
	logging.Init(logging.Config{Verbose: verbose, JSON: asJSON, Output: os.Stderr})
}

// resolveNode returns the --node flag value, falling back to the local
// hostname when it is unset.
func resolveNode(cmd *cobra.Command) (string, error) {
	node, _ := cmd.Flags().GetString("node")
	if node != "" {
		return node, nil
	}
	return os.Hostname()
}
