package constants

// Log file names.
const (
	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.lhc/logs/lhc.log
	CLILogFileName = "lhc.log"
)

// Configuration file names.
const (
	// SettingsFileName is the name of both the global and the project
	// settings file.
	SettingsFileName = "config.yaml"

	// BuildConfigFileName is the configuration language file searched for
	// upward from the working directory.
	BuildConfigFileName = ".lhc"
)
