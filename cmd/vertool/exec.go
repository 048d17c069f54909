package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vertool/vertool/internal/lockfile"
	"github.com/vertool/vertool/internal/platform"
)

// execCmd is the re-exec target vertool-shim calls: a shim hardlinked or
// copied as <tool> into the shims directory execs "vertool exec -- <tool>
// <args...>", which resolves the tool's installed binary from the lockfile
// and runs it in place. Not part of the CLI surface named alongside
// resolve/plan/install/env/which/uninstall, but required for the shim
// activation mode to work at all.
var execCmd = &cobra.Command{
	Use:                "exec -- <tool> [args...]",
	Short:              "Run an installed tool's binary (used by vertool-shim)",
	DisableFlagParsing: true,
	Args: func(_ *cobra.Command, args []string) error {
		if len(args) < 2 || args[0] != "--" {
			return fmt.Errorf("usage: vertool exec -- <tool> [args...]")
		}
		return nil
	},
	RunE: runExec,
}

func runExec(_ *cobra.Command, args []string) error {
	tool := args[1]
	toolArgs := args[2:]

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

	entry, ok := lockFile.Get(tool, platform.Current().String())
	if !ok {
		return fmt.Errorf("%s is not installed for this platform", tool)
	}

	binPath, err := findExecutable(entry.BinPaths, tool)
	if err != nil {
		return err
	}

	c := exec.Command(binPath, toolArgs...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Env = os.Environ()

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		return fmt.Errorf("exec %s: %w", binPath, err)
	}
	return nil
}

// findExecutable looks for an executable file named tool in each of
// binPaths, in order.
func findExecutable(binPaths []string, tool string) (string, error) {
	for _, dir := range binPaths {
		candidate := filepath.Join(dir, tool)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no executable named %q found under %v", tool, binPaths)
}
