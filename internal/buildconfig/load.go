package buildconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	lhcerrors "github.com/mrz1836/lhc/internal/errors"
)

// FileName is the configuration file lhc looks for.
const FileName = ".lhc"

// Find walks upward from dir and returns the path of the first .lhc file found.
func Find(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	for {
		candidate := filepath.Join(abs, FileName)
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %s: %w", candidate, err)
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", lhcerrors.Wrapf(lhcerrors.ErrBuildConfigNotFound, "searched upward from %s", dir)
		}
		abs = parent
	}
}

// Load reads and parses a configuration file.
func Load(path string) (*Configuration, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from Find or explicit user setting
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, lhcerrors.Wrapf(lhcerrors.ErrBuildConfigNotFound, "%s", path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
