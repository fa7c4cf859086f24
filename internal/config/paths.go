package config

import (
	"os"
	"path/filepath"
	"sync"
)

var (
	homeDir string

	pathMu       sync.RWMutex
	pathOverride string
)

func init() {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		homeDir = "~"
	}
}

// Dir returns the plugin-convert config directory path
// ~/.config/plugin-convert/
func Dir() string {
	return filepath.Join(homeDir, ".config", "plugin-convert")
}

// ConfigPath returns the config.json file path
// ~/.config/plugin-convert/config.json unless overridden with SetConfigPath
func ConfigPath() string {
	pathMu.RLock()
	defer pathMu.RUnlock()
	if pathOverride != "" {
		return pathOverride
	}
	return filepath.Join(Dir(), "config.json")
}

// SetConfigPath points Load and Save at another file; "" restores the default
func SetConfigPath(path string) {
	pathMu.Lock()
	defer pathMu.Unlock()
	pathOverride = path
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
