package marketplace

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"

	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/fsutil"
	"github.com/egoavara/plugin-convert/internal/validate"
)

// Candidate is a plugin found in a marketplace source
type Candidate struct {
	Name  string
	Path  string
	Entry *Entry
}

// Filter selects plugins by name with include and exclude globs
type Filter struct {
	include []glob.Glob
	exclude []glob.Glob
}

// NewFilter compiles include and exclude patterns
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range include {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", p, err)
		}
		f.include = append(f.include, g)
	}
	for _, p := range exclude {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		f.exclude = append(f.exclude, g)
	}
	return f, nil
}

// Match reports whether a plugin name passes the filter
func (f *Filter) Match(name string) bool {
	if len(f.include) > 0 && !matchAny(f.include, name) {
		return false
	}
	return !matchAny(f.exclude, name)
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Discover lists the plugins of a marketplace directory.
// Entries of a marketplace.json win; otherwise every subdirectory holding a
// plugin of the source format is a candidate. Remote entries are skipped.
func Discover(source string, direction core.Direction, filter *Filter) ([]Candidate, error) {
	manifest, err := LoadManifest(source)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	if manifest != nil && len(manifest.Plugins) > 0 {
		for i := range manifest.Plugins {
			entry := &manifest.Plugins[i]
			path := manifest.PluginSourcePath(source, entry)
			if path == "" || !fsutil.IsDir(path) {
				continue
			}
			candidates = append(candidates, Candidate{Name: entry.Name, Path: path, Entry: entry})
		}
	} else {
		entries, err := fsutil.ReadDir(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", source, err)
		}
		for _, e := range entries {
			if !e.IsDir() || e.Name()[0] == '.' {
				continue
			}
			path := filepath.Join(source, e.Name())
			if isPlugin(path, direction) {
				candidates = append(candidates, Candidate{Name: e.Name(), Path: path})
			}
		}
	}

	// later entries with the same name win, as they share an output directory
	byName := make(map[string]int, len(candidates))
	var selected []Candidate
	for _, c := range candidates {
		if filter != nil && !filter.Match(c.Name) {
			continue
		}
		if i, ok := byName[c.Name]; ok {
			selected[i] = c
			continue
		}
		byName[c.Name] = len(selected)
		selected = append(selected, c)
	}
	sort.SliceStable(selected, func(i, j int) bool { return selected[i].Name < selected[j].Name })
	return selected, nil
}

// isPlugin checks the format markers a plugin of the source format carries
func isPlugin(path string, direction core.Direction) bool {
	switch direction.SourceFormat() {
	case core.FormatClaude:
		return fsutil.IsFile(filepath.Join(path, ".claude-plugin", "plugin.json")) ||
			fsutil.IsDir(filepath.Join(path, "skills")) ||
			fsutil.IsDir(filepath.Join(path, "commands"))
	case core.FormatOpenCode:
		return fsutil.IsFile(filepath.Join(path, "opencode.json")) ||
			fsutil.IsDir(filepath.Join(path, ".opencode", "plugins")) ||
			fsutil.IsDir(filepath.Join(path, "instructions"))
	}
	return validate.DetectFormat(path) != core.FormatUnknown
}
