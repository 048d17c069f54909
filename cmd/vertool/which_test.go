package main

import (
	"bytes"
	"testing"

	"github.com/vertool/vertool/internal/lockfile"
	"github.com/vertool/vertool/internal/platform"
)

func TestRunWhich(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	writeTestConfig(t, dir, "[tools]\nripgrep = \"14.1.1\"\n")

	prevConfigDir := configDir
	configDir = dir
	defer func() { configDir = prevConfigDir }()

	app, err := loadAppContext()
	if err != nil {
		t.Fatalf("loadAppContext: %v", err)
	}

	lock, err := lockfile.New(app.paths.LockfileDir())
	if err != nil {
		t.Fatalf("lockfile.New: %v", err)
	}
	f, err := lock.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f.Set("ripgrep", platform.Current().String(), lockfile.Entry{
		Version:  "14.1.1",
		BinPaths: []string{"/opt/vertool/tools/ripgrep/14.1.1/bin"},
	})
	if err := lock.Save(f); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var buf bytes.Buffer
	whichCmd.SetOut(&buf)

	if err := runWhich(whichCmd, []string{"ripgrep"}); err != nil {
		t.Fatalf("runWhich: %v", err)
	}
	if got := buf.String(); got != "/opt/vertool/tools/ripgrep/14.1.1/bin\n" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestRunWhich_NotInstalled(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	writeTestConfig(t, dir, "[tools]\nripgrep = \"14.1.1\"\n")

	prevConfigDir := configDir
	configDir = dir
	defer func() { configDir = prevConfigDir }()

	var buf bytes.Buffer
	whichCmd.SetOut(&buf)

	if err := runWhich(whichCmd, []string{"ripgrep"}); err == nil {
		t.Fatal("expected error for uninstalled tool")
	}
}

func TestRunWhich_NoBinPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	writeTestConfig(t, dir, "[tools]\nripgrep = \"14.1.1\"\n")

	prevConfigDir := configDir
	configDir = dir
	defer func() { configDir = prevConfigDir }()

	app, err := loadAppContext()
	if err != nil {
		t.Fatalf("loadAppContext: %v", err)
	}
	lock, err := lockfile.New(app.paths.LockfileDir())
	if err != nil {
		t.Fatalf("lockfile.New: %v", err)
	}
	f, err := lock.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f.Set("ripgrep", platform.Current().String(), lockfile.Entry{Version: "14.1.1"})
	if err := lock.Save(f); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var buf bytes.Buffer
	whichCmd.SetOut(&buf)

	if err := runWhich(whichCmd, []string{"ripgrep"}); err == nil {
		t.Fatal("expected error for missing bin paths")
	}
}
