// Package validate checks converted plugin directories and detects their format.
package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/egoavara/plugin-convert/internal/claude"
	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/fsutil"
	"github.com/egoavara/plugin-convert/internal/opencode"
)

// Result is the outcome of validating one plugin directory
type Result struct {
	Path     string      `json:"path"`
	Format   core.Format `json:"format"`
	Valid    bool        `json:"valid"`
	Errors   []string    `json:"errors"`
	Warnings []string    `json:"warnings"`
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// DetectFormat inspects marker files to decide which format a directory holds
func DetectFormat(root string) core.Format {
	hasClaude := fsutil.IsFile(filepath.Join(root, claude.ManifestDir, claude.ManifestFile))
	hasOpenCode := fsutil.IsFile(filepath.Join(root, opencode.ConfigFile)) ||
		fsutil.IsFile(filepath.Join(root, opencode.ConfigFileYAML))
	hasSkills := fsutil.IsDir(filepath.Join(root, claude.SkillsDir))
	hasInstructions := fsutil.IsDir(filepath.Join(root, opencode.InstructionsDir))

	switch {
	case hasClaude || (hasSkills && !hasOpenCode):
		return core.FormatClaude
	case hasOpenCode || (hasInstructions && !hasClaude):
		return core.FormatOpenCode
	}
	return core.FormatUnknown
}

// Validate checks a plugin directory against the rules of the given format.
// FormatUnknown detects the format first.
func Validate(root string, format core.Format) Result {
	if format == core.FormatUnknown || format == "" {
		format = DetectFormat(root)
	}
	r := Result{Path: root, Format: format}

	if !fsutil.IsDir(root) {
		r.errorf("%s is not a directory", root)
	} else {
		switch format {
		case core.FormatClaude:
			validateClaude(root, &r)
		case core.FormatOpenCode:
			validateOpenCode(root, &r)
		default:
			r.errorf("cannot determine plugin format of %s", root)
		}
	}

	if r.Errors == nil {
		r.Errors = []string{}
	}
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
	r.Valid = len(r.Errors) == 0
	return r
}

func validateClaude(root string, r *Result) {
	manifestPath := filepath.Join(root, claude.ManifestDir, claude.ManifestFile)
	if fsutil.IsFile(manifestPath) {
		var m claude.Manifest
		if err := readJSON(manifestPath, &m); err != nil {
			r.errorf("invalid %s: %v", claude.ManifestFile, err)
		} else if m.Name == "" {
			r.errorf(`%s missing required "name" field`, claude.ManifestFile)
		}
	} else {
		r.warnf("no %s/%s found; plugin will use directory name", claude.ManifestDir, claude.ManifestFile)
	}

	if !anyExists(root, claude.SkillsDir, claude.CommandsDir, claude.AgentsDir, claude.HooksDir, claude.MCPFile) {
		r.warnf("plugin has no components (skills, commands, agents, hooks, or MCP)")
	}

	hooksPath := filepath.Join(root, claude.HooksDir, claude.HooksFile)
	if fsutil.IsFile(hooksPath) {
		var f struct {
			Hooks claude.Hooks `json:"hooks"`
		}
		if err := readJSON(hooksPath, &f); err != nil {
			r.errorf("invalid %s: %v", claude.HooksFile, err)
		} else {
			for event := range f.Hooks {
				if _, ok := core.LookupClaudeEvent(event); !ok {
					r.warnf("hooks.json: unknown hook event '%s'", event)
				}
			}
		}
	}

	mcpPath := filepath.Join(root, claude.MCPFile)
	if fsutil.IsFile(mcpPath) {
		data, err := os.ReadFile(mcpPath)
		if err == nil {
			_, err = claude.ParseMCPJSON(data)
		}
		if err != nil {
			r.errorf("invalid %s: %v", claude.MCPFile, err)
		}
	}

	settingsPath := filepath.Join(root, claude.SettingsFile)
	if fsutil.IsFile(settingsPath) {
		var s claude.Settings
		if err := readJSON(settingsPath, &s); err != nil {
			r.errorf("invalid %s: %v", claude.SettingsFile, err)
		}
	}
}

func validateOpenCode(root string, r *Result) {
	cfg, ok := readOpenCodeConfig(root, r)
	if ok {
		if cfg.Name == "" {
			r.errorf(`%s missing required "name" field`, opencode.ConfigFile)
		}
		for i, raw := range cfg.Hooks {
			var h opencode.Hook
			if err := json.Unmarshal(raw, &h); err != nil {
				r.errorf("hook #%d: %v", i, err)
				continue
			}
			if !core.IsOpenCodeEvent(h.Event) {
				r.warnf("hook #%d: unknown hook event '%s'", i, h.Event)
			}
		}
		for _, name := range sortedNames(cfg.MCPServers) {
			s := cfg.MCPServers[name]
			t := s.EffectiveTransport()
			switch {
			case !t.Valid():
				r.errorf("MCP server '%s': unknown transport '%s'", name, t)
			case t != opencode.TransportStdio && s.URL == "":
				r.errorf("MCP server '%s': %s transport requires a url", name, t)
			case t == opencode.TransportStdio && s.Command == "":
				r.errorf("MCP server '%s': stdio transport requires a command", name)
			}
		}
	}

	plugins := filepath.Join(root, filepath.FromSlash(opencode.PluginsDir))
	agents := filepath.Join(root, filepath.FromSlash(opencode.AgentsDir))
	if !anyExists(root, opencode.InstructionsDir, opencode.CommandsDir) && !fsutil.IsDir(plugins) && !fsutil.IsDir(agents) {
		r.warnf("plugin has no components (instructions, commands, plugins, or agents)")
	}

	if fsutil.IsDir(plugins) {
		entries, _ := fsutil.ReadDir(plugins)
		var modules int
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ".ts") || strings.HasSuffix(e.Name(), ".js") {
				modules++
			}
		}
		if modules == 0 {
			r.warnf("%s/ directory exists but has no TypeScript/JavaScript files", opencode.PluginsDir)
		}
	}
}

type configShape struct {
	Name       string                        `json:"name"`
	Hooks      []json.RawMessage             `json:"hooks"`
	MCPServers map[string]opencode.MCPServer `json:"mcpServers"`
}

func readOpenCodeConfig(root string, r *Result) (*configShape, bool) {
	var cfg configShape
	jsonPath := filepath.Join(root, opencode.ConfigFile)
	if fsutil.IsFile(jsonPath) {
		if err := readJSON(jsonPath, &cfg); err != nil {
			r.errorf("invalid %s: %v", opencode.ConfigFile, err)
			return nil, false
		}
		return &cfg, true
	}

	yamlPath := filepath.Join(root, opencode.ConfigFileYAML)
	if fsutil.IsFile(yamlPath) {
		data, err := os.ReadFile(yamlPath)
		if err == nil {
			var encoded []byte
			if encoded, err = opencode.YAMLToJSON(data); err == nil {
				err = json.Unmarshal(encoded, &cfg)
			}
		}
		if err != nil {
			r.errorf("invalid %s: %v", opencode.ConfigFileYAML, err)
			return nil, false
		}
		return &cfg, true
	}

	r.warnf("no %s found; plugin may not be properly configured", opencode.ConfigFile)
	return nil, false
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func anyExists(root string, names ...string) bool {
	for _, n := range names {
		if fsutil.Exists(filepath.Join(root, n)) {
			return true
		}
	}
	return false
}

func sortedNames(m map[string]opencode.MCPServer) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
