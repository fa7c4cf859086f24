package engine

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/egoavara/plugin-convert/internal/core"
)

// MissingFingerprint is recorded for paths that do not exist
const MissingFingerprint = "missing"

// Fingerprint returns a fast fingerprint of a file or directory tree.
// It folds the relative path, modification time and size of every regular
// file, so an edit that keeps both mtime and size goes unnoticed.
// The sync-state sidecar and .git directories are ignored.
func Fingerprint(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return MissingFingerprint
	}

	h := xxhash.New()
	if !info.IsDir() {
		writeEntry(h, filepath.Base(path), info)
		return hexSum(h.Sum64())
	}

	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == core.SyncStateFile {
			return nil
		}
		fi, err := d.Info()
		if err != nil || !fi.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return nil
		}
		writeEntry(h, filepath.ToSlash(rel), fi)
		return nil
	})
	return hexSum(h.Sum64())
}

func writeEntry(h *xxhash.Digest, rel string, info os.FileInfo) {
	fmt.Fprintf(h, "%s|%d|%d\n", rel, info.ModTime().UnixNano(), info.Size())
}

func hexSum(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}

// trackedPath is a component-bearing path watched by sync mode
type trackedPath struct {
	Path      string
	Component string
}

var trackedPaths = map[core.Format][]trackedPath{
	core.FormatClaude: {
		{"skills", core.ComponentSkills},
		{"commands", core.ComponentCommands},
		{"agents", core.ComponentAgents},
		{"hooks", core.ComponentHooks},
		{".mcp.json", core.ComponentMCP},
		{".claude-plugin", core.ComponentManifest},
		{"settings.json", core.ComponentSettings},
	},
	core.FormatOpenCode: {
		{"instructions", core.ComponentSkills},
		{"commands", core.ComponentCommands},
		{".opencode/agents", core.ComponentAgents},
		{".opencode/plugins", core.ComponentHooks},
		{"opencode.json", core.ComponentManifest},
		{"opencode.yaml", core.ComponentManifest},
	},
}

// ComponentFingerprints fingerprints each component path of a plugin in the given format
func ComponentFingerprints(root string, format core.Format) map[string]string {
	hashes := make(map[string]string)
	for _, t := range trackedPaths[format] {
		hashes[t.Path] = Fingerprint(filepath.Join(root, filepath.FromSlash(t.Path)))
	}
	return hashes
}

// changedComponents lists tracked paths whose fingerprint differs from the stored one
func changedComponents(format core.Format, stored, current map[string]string) []trackedPath {
	var changed []trackedPath
	for _, t := range trackedPaths[format] {
		if stored[t.Path] != current[t.Path] {
			changed = append(changed, t)
		}
	}
	return changed
}
