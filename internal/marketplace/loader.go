package marketplace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/egoavara/plugin-convert/internal/fsutil"
)

const (
	// ManifestDir is the directory containing marketplace.json
	ManifestDir = ".claude-plugin"
	// ManifestFile is the marketplace manifest filename
	ManifestFile = "marketplace.json"
	// ReportFile is written into the target directory after a batch run
	ReportFile = "conversion-report.json"
)

// LoadManifest loads a marketplace manifest from the given directory.
// It returns nil without error when the directory has no manifest.
func LoadManifest(marketplacePath string) (*Manifest, error) {
	manifestPath := filepath.Join(marketplacePath, ManifestDir, ManifestFile)

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	return &manifest, nil
}

// SaveManifest writes a marketplace manifest into the given directory
func SaveManifest(marketplacePath string, m *Manifest) error {
	return fsutil.WriteJSON(filepath.Join(marketplacePath, ManifestDir, ManifestFile), m)
}

// FindPlugin finds a plugin by name in the manifest
func (m *Manifest) FindPlugin(name string) *Entry {
	for i := range m.Plugins {
		if m.Plugins[i].Name == name {
			return &m.Plugins[i]
		}
	}
	return nil
}

// PluginSourcePath returns the local path of an entry, or "" for remote entries
func (m *Manifest) PluginSourcePath(marketplacePath string, entry *Entry) string {
	if entry.Source.RemoteURL() != "" {
		return ""
	}

	basePath := marketplacePath
	if m.Metadata != nil && m.Metadata.PluginRoot != "" {
		basePath = filepath.Join(marketplacePath, m.Metadata.PluginRoot)
	}

	return filepath.Join(basePath, filepath.FromSlash(entry.Source.Path))
}
