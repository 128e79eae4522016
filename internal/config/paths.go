package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrz1836/lhc/internal/constants"
	"github.com/mrz1836/lhc/internal/errors"
)

// GlobalConfigDir returns the lhc home directory, LHC_HOME or ~/.lhc.
//
// Returns an error if the home directory cannot be determined.
func GlobalConfigDir() (string, error) {
	if dir := os.Getenv(constants.EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.LHCHome), nil
}

// GlobalConfigPath returns the full path to the global settings file.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.SettingsFileName), nil
}

// ProjectConfigPath returns the project settings file for a repository root.
func ProjectConfigPath(root string) string {
	return filepath.Join(root, constants.ProjectSettingsDir, constants.SettingsFileName)
}

// LogFilePath returns the path of the CLI log file.
func LogFilePath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.LogsDir, constants.CLILogFileName), nil
}
