package kerbcli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"kerbin/internal/ipc"
	"kerbin/internal/kerbconfig"
)

// installRoot is where install metadata and built binaries live,
// mirroring the teacher's ConfigDir-relative layout.
func installRoot() string {
	return filepath.Join(kerbconfig.ConfigDir(), "install")
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print installed version and install metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			root := installRoot()
			meta, err := ipc.LoadInstallMetadata(root)
			if err != nil {
				return fmt.Errorf("kerbin is not installed: %w", err)
			}

			binary := filepath.Join(root, "kerbin")
			fmt.Fprintf(cmd.OutOrStdout(), "version:         %s\n", meta.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "config path:     %s\n", meta.ConfigPath)
			fmt.Fprintf(cmd.OutOrStdout(), "install date:    %s\n", meta.InstallDate.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(cmd.OutOrStdout(), "last build date: %s\n", meta.LastBuildDate.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(cmd.OutOrStdout(), "binary location: %s\n", binary)
			return nil
		},
	}
}
