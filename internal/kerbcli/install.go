package kerbcli

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"kerbin/internal/ipc"
	"kerbin/internal/kerbconfig"
)

// repoURL is the upstream source kerbin is built from. Overridable via
// KERBIN_SOURCE_REPO for testing against a local bare repo.
func repoURL() string {
	if v := os.Getenv("KERBIN_SOURCE_REPO"); v != "" {
		return v
	}
	return "https://github.com/kerbin-editor/kerbin.git"
}

func newInstallCmd() *cobra.Command {
	var nonInteractive string

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Clone, build, and install a kerbin distribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := listRemoteTags(repoURL())
			if err != nil {
				return fmt.Errorf("install: listing versions: %w", err)
			}
			choices := append([]string{"master"}, tags...)

			ref := nonInteractive
			if ref == "" {
				ref, err = promptChoice(cmd, choices)
				if err != nil {
					return fmt.Errorf("install: %w", err)
				}
			}

			root := installRoot()
			if err := cloneAndBuild(repoURL(), ref, root); err != nil {
				return fmt.Errorf("install: %w", err)
			}

			configPath := filepath.Join(kerbconfig.ConfigDir(), "config.yaml")
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				if offerDefaultConfig(cmd) {
					if err := writeDefaultConfig(configPath); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "install: writing default config: %v\n", err)
					}
				}
			}

			now := time.Now()
			meta := &ipc.InstallMetadata{
				Version:       ref,
				ConfigPath:    configPath,
				InstallDate:   now,
				LastBuildDate: now,
			}
			if err := meta.Save(root); err != nil {
				return fmt.Errorf("install: saving metadata: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "installed kerbin %s to %s\n", ref, root)
			return nil
		},
	}

	cmd.Flags().StringVar(&nonInteractive, "ref", "", "install a specific tag or \"master\" without prompting")
	return cmd
}

// listRemoteTags lists a repo's tags plus an implicit "master" entry is
// added by the caller.
func listRemoteTags(repo string) ([]string, error) {
	out, err := exec.Command("git", "ls-remote", "--tags", repo).Output()
	if err != nil {
		return nil, fmt.Errorf("git ls-remote: %w", err)
	}

	var tags []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		ref := strings.TrimPrefix(fields[1], "refs/tags/")
		if strings.HasSuffix(ref, "^{}") {
			continue
		}
		tags = append(tags, ref)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(tags)))
	return tags, nil
}

// promptChoice prints the numbered choices and reads a selection index
// from stdin.
func promptChoice(cmd *cobra.Command, choices []string) (string, error) {
	for i, c := range choices {
		fmt.Fprintf(cmd.OutOrStdout(), "  %d) %s\n", i+1, c)
	}
	fmt.Fprint(cmd.OutOrStdout(), "choose a version: ")

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read choice: %w", err)
	}
	line = strings.TrimSpace(line)

	for i, c := range choices {
		if line == fmt.Sprintf("%d", i+1) || line == c {
			return c, nil
		}
	}
	return "", fmt.Errorf("no such version %q", line)
}

func offerDefaultConfig(cmd *cobra.Command) bool {
	fmt.Fprint(cmd.OutOrStdout(), "copy a default config? [y/N]: ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, _ := reader.ReadString('\n')
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}

func writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, []byte("log_level: info\n"), 0o644)
}

// cloneAndBuild clones repo at ref into root/src and builds the kerbin
// binary into root/kerbin.
func cloneAndBuild(repo, ref, root string) error {
	src := filepath.Join(root, "src")
	os.RemoveAll(src)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create install root: %w", err)
	}

	clone := exec.Command("git", "clone", "--branch", ref, "--depth", "1", repo, src)
	if ref == "master" {
		clone = exec.Command("git", "clone", "--depth", "1", repo, src)
	}
	if out, err := clone.CombinedOutput(); err != nil {
		return fmt.Errorf("git clone: %w: %s", err, out)
	}

	build := exec.Command("go", "build", "-o", filepath.Join(root, "kerbin"), "./cmd/kerbin")
	build.Dir = src
	if out, err := build.CombinedOutput(); err != nil {
		return fmt.Errorf("go build: %w: %s", err, out)
	}
	return nil
}
