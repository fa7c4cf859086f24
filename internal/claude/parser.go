package claude

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/fsutil"
	"github.com/egoavara/plugin-convert/internal/markdown"
)

// Parse reads a Claude Code plugin directory.
// It never fails: missing pieces become empty collections and malformed
// files are skipped with a warning.
func Parse(root string) (*Plugin, []core.Warning) {
	p := NewPlugin(filepath.Base(filepath.Clean(root)))
	p.RootPath = root

	var warnings []core.Warning
	skip := func(component, path string, err error) {
		warnings = append(warnings, core.Warn(component,
			fmt.Sprintf("skipped malformed %s: %v", relPath(root, path), err)))
	}

	manifestPath := filepath.Join(root, ManifestDir, ManifestFile)
	if data, err := os.ReadFile(manifestPath); err == nil {
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			skip(core.ComponentManifest, manifestPath, err)
		} else {
			if m.Name == "" {
				m.Name = p.Manifest.Name
			}
			p.Manifest = m
		}
	}

	warnings = append(warnings, parseSkills(p, root)...)
	warnings = append(warnings, parseCommands(p, root)...)
	warnings = append(warnings, parseAgents(p, root)...)

	hooksPath := filepath.Join(root, HooksDir, HooksFile)
	if data, err := os.ReadFile(hooksPath); err == nil {
		var hf hooksFile
		if err := json.Unmarshal(data, &hf); err != nil {
			skip(core.ComponentHooks, hooksPath, err)
		} else {
			for event, matchers := range hf.Hooks {
				p.Hooks[event] = matchers
			}
		}
	}

	settingsPath := filepath.Join(root, SettingsFile)
	if data, err := os.ReadFile(settingsPath); err == nil {
		var s Settings
		if err := json.Unmarshal(data, &s); err != nil {
			skip(core.ComponentSettings, settingsPath, err)
		} else {
			// settings.json wins per event
			for event, matchers := range s.Hooks {
				p.Hooks[event] = matchers
			}
			p.Settings = &s
		}
	}

	mcpPath := filepath.Join(root, MCPFile)
	if data, err := os.ReadFile(mcpPath); err == nil {
		servers, err := ParseMCPJSON(data)
		if err != nil {
			skip(core.ComponentMCP, mcpPath, err)
		} else {
			p.MCPServers = servers
		}
	}

	return p, warnings
}

func parseSkills(p *Plugin, root string) []core.Warning {
	dir := filepath.Join(root, SkillsDir)
	entries, err := fsutil.ReadDir(dir)
	if err != nil {
		return []core.Warning{core.Warn(core.ComponentSkills, fmt.Sprintf("failed to read %s: %v", SkillsDir, err))}
	}

	var warnings []core.Warning
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		var skill Skill

		switch {
		case entry.IsDir():
			skillPath := filepath.Join(full, SkillFile)
			data, err := os.ReadFile(skillPath)
			if err != nil {
				continue
			}
			skill = Skill{
				Name:       entry.Name(),
				Path:       relPath(root, skillPath),
				Content:    string(data),
				References: listReferences(full),
			}
		case strings.HasSuffix(entry.Name(), ".md"):
			data, err := os.ReadFile(full)
			if err != nil {
				warnings = append(warnings, core.Warn(core.ComponentSkills, fmt.Sprintf("skipped unreadable %s: %v", relPath(root, full), err)))
				continue
			}
			skill = Skill{
				Name:    strings.TrimSuffix(entry.Name(), ".md"),
				Path:    relPath(root, full),
				Content: string(data),
			}
		default:
			continue
		}

		if !core.ValidName(skill.Name) {
			warnings = append(warnings, core.InvalidNameWarning(core.ComponentSkills, skill.Name, skill.Path))
			continue
		}

		var replaced bool
		p.Skills, replaced = core.Upsert(p.Skills, skill, func(s Skill) string { return s.Name })
		if replaced {
			warnings = append(warnings, duplicateWarning(core.ComponentSkills, skill.Name, skill.Path))
		}
	}
	return warnings
}

func listReferences(skillDir string) []string {
	entries, err := fsutil.ReadDir(filepath.Join(skillDir, ReferenceDir))
	if err != nil {
		return nil
	}
	var refs []string
	for _, e := range entries {
		refs = append(refs, filepath.ToSlash(filepath.Join(ReferenceDir, e.Name())))
	}
	return refs
}

func parseCommands(p *Plugin, root string) []core.Warning {
	var warnings []core.Warning
	for _, f := range markdownFiles(filepath.Join(root, CommandsDir)) {
		data, err := os.ReadFile(f)
		if err != nil {
			warnings = append(warnings, core.Warn(core.ComponentCommands, fmt.Sprintf("skipped unreadable %s: %v", relPath(root, f), err)))
			continue
		}

		doc := markdown.Parse(string(data))
		cmd := Command{
			Name:        doc.String("name"),
			Aliases:     doc.List("aliases"),
			Description: doc.String("description"),
			Examples:    doc.List("examples"),
			Parameters:  parseParameters(doc.Records("parameters")),
			Content:     doc.Body,
			Path:        relPath(root, f),
		}
		if cmd.Name == "" {
			cmd.Name = strings.TrimSuffix(filepath.Base(f), ".md")
		}
		if !core.ValidName(cmd.Name) {
			warnings = append(warnings, core.InvalidNameWarning(core.ComponentCommands, cmd.Name, cmd.Path))
			continue
		}

		var replaced bool
		p.Commands, replaced = core.Upsert(p.Commands, cmd, func(c Command) string { return c.Name })
		if replaced {
			warnings = append(warnings, duplicateWarning(core.ComponentCommands, cmd.Name, cmd.Path))
		}
	}
	return warnings
}

func parseAgents(p *Plugin, root string) []core.Warning {
	var warnings []core.Warning
	for _, f := range markdownFiles(filepath.Join(root, AgentsDir)) {
		data, err := os.ReadFile(f)
		if err != nil {
			warnings = append(warnings, core.Warn(core.ComponentAgents, fmt.Sprintf("skipped unreadable %s: %v", relPath(root, f), err)))
			continue
		}
		agent := Agent{
			Name:    strings.TrimSuffix(filepath.Base(f), ".md"),
			Path:    relPath(root, f),
			Content: string(data),
		}
		if !core.ValidName(agent.Name) {
			warnings = append(warnings, core.InvalidNameWarning(core.ComponentAgents, agent.Name, agent.Path))
			continue
		}
		p.Agents, _ = core.Upsert(p.Agents, agent, func(a Agent) string { return a.Name })
	}
	return warnings
}

// parseParameters converts front-matter records into parameters
func parseParameters(records []map[string]string) []core.Parameter {
	if len(records) == 0 {
		return nil
	}
	params := make([]core.Parameter, 0, len(records))
	for _, r := range records {
		if r["name"] == "" {
			continue
		}
		required, _ := strconv.ParseBool(r["required"])
		params = append(params, core.Parameter{
			Name:        r["name"],
			Type:        r["type"],
			Description: r["description"],
			Required:    required,
		})
	}
	return params
}

// markdownFiles lists *.md files directly inside dir, sorted
func markdownFiles(dir string) []string {
	entries, err := fsutil.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files
}

func duplicateWarning(component, name, path string) core.Warning {
	return core.Info(component, fmt.Sprintf("duplicate name '%s'; %s replaces the earlier entry", name, path))
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
