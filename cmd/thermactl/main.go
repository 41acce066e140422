// Package main is thermactl, the operator CLI for ThermaBridge devices.
//
// thermactl finds devices over mDNS, reads their status and configuration,
// provisions Wi-Fi credentials through the captive portal and follows a
// running device's mode changes live. Devices it has seen are remembered in
// a YAML registry under the user's config directory so later commands can
// address them by name or nickname.
package main

import (
	"fmt"
	"os"

	"github.com/muurk/thermabridge/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "thermactl",
	Short: "Operate ThermaBridge devices",
	Long: `thermactl talks to ThermaBridge devices over HTTP.

A device is addressed with --device, which accepts an IP address, a
hostname, an advertised device name or a nickname from the registry. Without
--device, thermactl scans the local network and uses the only device it finds.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
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
		fmt.Printf("thermactl %s (commit: %s)\n", version.Version, version.Commit)
	},
}
