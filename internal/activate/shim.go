package activate

import (
	"fmt"
	"os"
	"path/filepath"
)

// MaterializeShims places one shim per binary name across plan in dir,
// each a copy of shimBinary (spec §4.K "Shims" mode: "materialise an
// executable in a single shims directory that, when invoked, re-execs the
// resolver and hands off to the matching version"). A single compiled shim
// binary is reused under every name, the same approach as mise's shim
// helper (see cmd/vertool-shim): the shim determines which tool it is by
// reading its own invoked file name.
func MaterializeShims(dir, shimBinary string, plan *Plan) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create shims dir %s: %w", dir, err)
	}

	var written []string
	seen := make(map[string]struct{})
	for _, t := range plan.Activations {
		for _, bin := range t.Bins {
			if _, ok := seen[bin]; ok {
				continue
			}
			seen[bin] = struct{}{}

			dest := filepath.Join(dir, bin)
			if err := linkShim(shimBinary, dest); err != nil {
				return written, fmt.Errorf("materialise shim %s: %w", bin, err)
			}
			written = append(written, dest)
		}
	}
	return written, nil
}

// linkShim places a copy of shimBinary at dest, replacing whatever is
// already there. A hardlink is tried first since it is near-instant and
// shares disk space with every other shim; copying is the portable
// fallback when the shims directory is on a different filesystem.
func linkShim(shimBinary, dest string) error {
	_ = os.Remove(dest)

	if err := os.Link(shimBinary, dest); err == nil {
		return nil
	}
	return copyFile(shimBinary, dest)
}

func copyFile(src, dest string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o755)
}

// PruneShims removes shims in dir whose name is not in keep, so uninstalled
// tools stop shadowing a system-installed binary of the same name.
func PruneShims(dir string, keep []string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read shims dir %s: %w", dir, err)
	}

	keepSet := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		keepSet[k] = struct{}{}
	}

	for _, e := range entries {
		if _, ok := keepSet[e.Name()]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("remove stale shim %s: %w", e.Name(), err)
		}
	}
	return nil
}
