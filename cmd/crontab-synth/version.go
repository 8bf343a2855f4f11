package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

const (
	versionOutputTemplate        = "%s\n"
	versionOutputTemplateVerbose = "Version:  %s\nSource:   %s\nCommit:   %s\nBuilt at: %s\n"
)

// These get populated by ldflags at build time
var (
	version = ""
	commit  = "none"
	date    = "unknown"
	source  = "release binary"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of crontab-synth",
		RunE:  getVersion,
	}
	cmd.Flags().BoolP("verbose", "v", false, "verbose output")
	return cmd
}

//nolint:revive
func getVersion(cmd *cobra.Command, args []string) error {
	if version == "" {
		// If this was installed via `go install`, we can get the version info from debug
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
			source = "go install"
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					commit = s.Value
				}
				if s.Key == "vcs.time" {
					date = s.Value
				}
			}
		} else {
			version = "dev"
			source = "unknown"
		}
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		fmt.Fprintf(cmd.OutOrStdout(), versionOutputTemplateVerbose, version, source, commit, date)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), versionOutputTemplate, version)
	}
	return nil
}
