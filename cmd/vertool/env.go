package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vertool/vertool/internal/activate"
	"github.com/vertool/vertool/internal/env"
	"github.com/vertool/vertool/internal/lockfile"
	"github.com/vertool/vertool/internal/platform"
)

var (
	envShell  string
	envExport bool
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Output environment variables for shell configuration",
	Long: `Output environment variable statements for the current toolset's
installed tools (spec §4.K, the Activation Layer's Env mode).

Stdout mode (default):
  eval "$(vertool env)"

File export mode:
  vertool env --export
  source ~/.local/share/vertool/env.sh

Shell types:
  --shell posix   POSIX-compatible (bash, zsh) [default]
  --shell fish    fish shell`,
	RunE: runEnv,
}

func init() {
	envCmd.Flags().StringVar(&envShell, "shell", "posix", "Shell type (posix, fish)")
	envCmd.Flags().BoolVar(&envExport, "export", false, "Write to file instead of stdout")
	_ = envCmd.RegisterFlagCompletionFunc("shell", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"posix", "fish"}, cobra.ShellCompDirectiveNoFileComp
	})
}

func runEnv(cmd *cobra.Command, _ []string) error {
	shellType, err := env.ParseShellType(envShell)
	if err != nil {
		return err
	}

	app, err := loadAppContext()
	if err != nil {
		return err
	}

	lock, err := lockfile.New(app.paths.LockfileDir())
	if err != nil {
		return fmt.Errorf("open lockfile: %w", err)
	}
	lockFile, err := lock.Load()
	if err != nil {
		return fmt.Errorf("load lockfile: %w", err)
	}

	platformKey := platform.Current().String()
	activations := make([]activate.ToolActivation, 0, len(app.entries))
	for _, e := range app.entries {
		entry, ok := lockFile.Get(e.Name, platformKey)
		if !ok {
			continue
		}
		activations = append(activations, activate.ToolActivation{
			Name:     e.Name,
			BinPaths: entry.BinPaths,
		})
	}

	plan := activate.BuildPlan(activations)
	lines := activate.Emit(plan, app.paths.UserBinDir(), shellType)

	output := strings.Join(lines, "\n")
	if len(lines) > 0 {
		output += "\n"
	}

	if envExport {
		return writeEnvFile(cmd, output, app.paths.EnvDir(), env.NewFormatter(shellType).Ext())
	}

	fmt.Fprint(cmd.OutOrStdout(), output)
	return nil
}

func writeEnvFile(cmd *cobra.Command, content, envDir, ext string) error {
	if err := os.MkdirAll(envDir, 0o755); err != nil {
		return fmt.Errorf("create env dir: %w", err)
	}

	filePath := filepath.Join(envDir, "env"+ext)
	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write env file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", filePath)
	return nil
}
