package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vertool/vertool/internal/lockfile"
	"github.com/vertool/vertool/internal/platform"
)

var whichCmd = &cobra.Command{
	Use:     "which <tool>",
	Aliases: []string{"bin-paths"},
	Short:   "Print an installed tool's binary path(s)",
	Args:    cobra.ExactArgs(1),
	RunE:    runWhich,
}

func runWhich(cmd *cobra.Command, args []string) error {
	name := args[0]

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

	entry, ok := lockFile.Get(name, platform.Current().String())
	if !ok {
		return fmt.Errorf("%s is not installed for this platform", name)
	}
	if len(entry.BinPaths) == 0 {
		return fmt.Errorf("%s has no recorded bin paths", name)
	}

	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(entry.BinPaths, "\n"))
	return nil
}
