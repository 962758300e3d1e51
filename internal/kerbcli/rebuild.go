package kerbcli

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"kerbin/internal/ipc"
)

func newRebuildCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild kerbin using the existing install's checked-out source",
		RunE: func(cmd *cobra.Command, args []string) error {
			root := installRoot()
			meta, err := ipc.LoadInstallMetadata(root)
			if err != nil {
				return fmt.Errorf("rebuild: no existing install: %w", err)
			}

			src := filepath.Join(root, "src")
			build := exec.Command("go", "build", "-o", filepath.Join(root, "kerbin"), "./cmd/kerbin")
			build.Dir = src
			if out, err := build.CombinedOutput(); err != nil {
				return fmt.Errorf("rebuild: go build: %w: %s", err, out)
			}

			if configPath != "" {
				meta.ConfigPath = configPath
			}
			meta.LastBuildDate = time.Now()
			if err := meta.Save(root); err != nil {
				return fmt.Errorf("rebuild: saving metadata: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "rebuilt kerbin %s\n", meta.Version)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "update the recorded config path")
	return cmd
}
