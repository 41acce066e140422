// Package main is the ThermaBridge appliance daemon.
//
// It runs the bootstrap sequence: mount the config volume, load the stored
// network credentials, join that network and bring up the diagnostics
// surface, or fall back to an open access point with a captive provisioning
// portal when no usable credentials exist or the network cannot be joined.
// A held reset input erases all persistent state and restarts the device
// from any phase.
package main

import (
	"fmt"
	"os"

	"github.com/muurk/thermabridge/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "thermabridge",
	Short: "ThermaBridge appliance bootstrap daemon",
	Long: `thermabridge brings a ThermaBridge appliance onto the network.

On boot it loads the stored Wi-Fi credentials and joins that network. When
no credentials are stored, or the network cannot be joined within the
connect budget, it opens the provisioning access point and serves the
captive setup portal until credentials are submitted.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("thermabridge %s (commit: %s)\n", version.Version, version.Commit)
	},
}
