package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Persistent flags for all commands
const (
	logLevelFlag = "log-level"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "crontab-synth <command>",
		Short: "Synthesize CronTab (stable.example.com/v1) kubernetes manifests from a values file",
		Long:  "A tool for defining CronTab custom resources from a values file and synthesizing them into kubernetes manifests",
	}
	rootCmd.PersistentFlags().String(logLevelFlag, "info", "Log level (debug, info, warn, or error)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSynthCmd())
	return rootCmd
}

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}
