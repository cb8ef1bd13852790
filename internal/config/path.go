package config

import (
	"os"
	"path/filepath"
)

// Name is the directory name used under the user's configuration and state
// directories.
const Name = "abacus"

// Path returns the default location of the settings file.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = fallback(".config")
	}
	return filepath.Join(dir, Name, "config.yaml")
}

// StateDir returns the directory for files the commands keep between runs,
// such as REPL history.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, Name)
	}
	return filepath.Join(fallback(filepath.Join(".local", "state")), Name)
}

// fallback returns sub under the home directory, or the working directory
// if there is no home.
func fallback(sub string) string {
	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, sub)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
