package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vertool/vertool/internal/lockfile"
	"github.com/vertool/vertool/internal/platform"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <tool>",
	Short: "Remove an installed tool's artifacts and lockfile entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runUninstall,
}

func runUninstall(cmd *cobra.Command, args []string) error {
	name := args[0]

	app, err := loadAppContext()
	if err != nil {
		return err
	}

	lock, err := lockfile.New(app.paths.LockfileDir())
	if err != nil {
		return fmt.Errorf("open lockfile: %w", err)
	}
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire lockfile: %w", err)
	}
	defer lock.Unlock() //nolint:errcheck

	lockFile, err := lock.Load()
	if err != nil {
		return fmt.Errorf("load lockfile: %w", err)
	}

	platformKey := platform.Current().String()
	entry, ok := lockFile.Get(name, platformKey)
	if !ok {
		return fmt.Errorf("%s is not installed for this platform", name)
	}

	installDir := app.paths.ToolInstallDir(name, entry.Version)
	if err := os.RemoveAll(installDir); err != nil {
		return fmt.Errorf("remove %s: %w", installDir, err)
	}

	removeLockEntry(lockFile, name, platformKey)

	if err := lock.Save(lockFile); err != nil {
		return fmt.Errorf("save lockfile: %w", err)
	}

	cmd.Printf("Uninstalled %s@%s\n", name, entry.Version)
	return nil
}

// removeLockEntry drops (name, platformKey) from f, dropping name's whole
// section once its last platform entry is gone.
func removeLockEntry(f *lockfile.File, name, platformKey string) {
	section, ok := f.Tools[name]
	if !ok {
		return
	}
	delete(section, platformKey)
	if len(section) == 0 {
		delete(f.Tools, name)
	}
}
