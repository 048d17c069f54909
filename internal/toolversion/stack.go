package toolversion

import (
	"os"
	"path/filepath"
)

// FindStack walks from dir up to the filesystem root collecting every
// directory that contains a vertool.toml, nearest-to-CWD first, then
// appends the user global config path if it exists. System defaults are
// the caller's responsibility (there is no single "system" directory
// vertool can assume across platforms).
func FindStack(dir, userConfigPath string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for {
		candidate := filepath.Join(abs, FileName)
		if fileExists(candidate) {
			paths = append(paths, candidate)
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			break
		}
		abs = parent
	}

	if userConfigPath != "" && fileExists(userConfigPath) {
		alreadyIncluded := false
		for _, p := range paths {
			if p == userConfigPath {
				alreadyIncluded = true
				break
			}
		}
		if !alreadyIncluded {
			paths = append(paths, userConfigPath)
		}
	}

	return paths, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LoadStack loads every file in paths (ordered nearest-to-CWD first) into a
// ConfigFile stack.
func LoadStack(paths []string) ([]*ConfigFile, error) {
	stack := make([]*ConfigFile, 0, len(paths))
	for _, path := range paths {
		cf, err := Load(path)
		if err != nil {
			return nil, err
		}
		stack = append(stack, cf)
	}
	return stack, nil
}
