package activate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vertool/vertool/internal/env"
)

func TestEmitPreservesPlanOrderAndDedupesPath(t *testing.T) {
	plan := BuildPlan([]ToolActivation{
		{Name: "node", BinPaths: []string{"/tools/node/20.0.0/bin"}, EnvInstall: map[string]string{"NODE_HOME": "/tools/node/20.0.0"}},
		{Name: "rust", BinPaths: []string{"/tools/rust/1.80.0/bin", "/tools/node/20.0.0/bin"}, EnvInstall: map[string]string{"CARGO_HOME": "/home/user/.cargo"}},
	})

	lines := Emit(plan, "/home/user/.local/bin", env.ShellPosix)
	out := strings.Join(lines, "\n")

	nodeIdx := strings.Index(out, "/tools/node")
	rustIdx := strings.Index(out, "/tools/rust")
	if nodeIdx == -1 || rustIdx == -1 || nodeIdx > rustIdx {
		t.Fatalf("expected node before rust in PATH (plan order), got: %s", out)
	}
	if strings.Count(out, "/tools/node/20.0.0/bin") != 1 {
		t.Errorf("expected node bin dir deduplicated across PATH entries, got: %s", out)
	}
}

func TestRedactionSetMasksDeclaredKeys(t *testing.T) {
	s := NewRedactionSet([]string{"NPM_TOKEN"})
	if got := s.Mask("NPM_TOKEN", "sekrit"); got != "[redacted]" {
		t.Errorf("expected redaction, got %q", got)
	}
	if got := s.Mask("NODE_HOME", "/tools/node"); got != "/tools/node" {
		t.Errorf("expected value unchanged, got %q", got)
	}
}

func TestMaterializeAndPruneShims(t *testing.T) {
	dir := t.TempDir()
	shimSrc := filepath.Join(dir, "vertool-shim")
	if err := os.WriteFile(shimSrc, []byte("#!/bin/sh\necho shim\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	shimsDir := filepath.Join(dir, "shims")
	plan := BuildPlan([]ToolActivation{
		{Name: "ripgrep", Bins: []string{"rg"}},
		{Name: "fd", Bins: []string{"fd", "fdfind"}},
	})

	written, err := MaterializeShims(shimsDir, shimSrc, plan)
	if err != nil {
		t.Fatalf("MaterializeShims: %v", err)
	}
	if len(written) != 3 {
		t.Fatalf("expected 3 shims, got %d: %v", len(written), written)
	}
	for _, name := range []string{"rg", "fd", "fdfind"} {
		if _, err := os.Stat(filepath.Join(shimsDir, name)); err != nil {
			t.Errorf("expected shim %s to exist: %v", name, err)
		}
	}

	if err := PruneShims(shimsDir, []string{"rg"}); err != nil {
		t.Fatalf("PruneShims: %v", err)
	}
	if _, err := os.Stat(filepath.Join(shimsDir, "fd")); !os.IsNotExist(err) {
		t.Errorf("expected fd shim removed, got err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(shimsDir, "rg")); err != nil {
		t.Errorf("expected rg shim kept: %v", err)
	}
}
