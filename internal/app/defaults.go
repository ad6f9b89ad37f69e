package app

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	EnvConfigPath = "LOGTIDY_CONFIG_PATH"
	EnvHome       = "LOGTIDY_HOME"
)

// GetDefaults returns the default locations used when no config file overrides them.
// Keys: config_path, base_dir, log_dir, journal_dir.
//   - LOGTIDY_CONFIG_PATH replaces ~/.config/logtidy.toml
//   - LOGTIDY_HOME replaces ~/.local/share/logtidy
func GetDefaults() (map[string]string, error) {
	configPath, err := fromEnvOrHome(EnvConfigPath, ".config", "logtidy.toml")
	if err != nil {
		return nil, err
	}
	baseDir, err := fromEnvOrHome(EnvHome, ".local", "share", "logtidy")
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"journal_dir": filepath.Join(baseDir, "db"),
	}, nil
}

func fromEnvOrHome(env string, rel ...string) (string, error) {
	if v := os.Getenv(env); v != "" {
		return v, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{homeDir}, rel...)...), nil
}
