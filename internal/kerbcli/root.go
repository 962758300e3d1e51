// Package kerbcli implements the install-lifecycle CLI spec.md §6
// specifies around the editor's engine: info, install, rebuild.
// Grounded on the teacher's internal/cmd/root.go (cobra root command
// wiring a flat subcommand list) and internal/cmd/init.go/status.go for
// the per-subcommand RunE shape.
package kerbcli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command with all subcommands wired.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kerbin",
		Short: "A modal terminal text editor core",
		Long:  "kerbin is a rope-backed, capability-scheduled modal text editor.",
	}

	root.AddCommand(
		newInfoCmd(),
		newInstallCmd(),
		newRebuildCmd(),
	)

	return root
}
