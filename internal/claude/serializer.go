package claude

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/fsutil"
	"github.com/egoavara/plugin-convert/internal/markdown"
)

// GeneratedPaths are removed from out before every write
var GeneratedPaths = []string{SkillsDir, CommandsDir, AgentsDir, HooksDir + "/" + HooksFile, MCPFile, SettingsFile}

// Serialize writes the plugin as a Claude Code directory at out.
// Component paths left by an earlier run are removed first.
func Serialize(p *Plugin, out string) error {
	if err := checkNames(p); err != nil {
		return err
	}
	if err := fsutil.RemovePaths(out, GeneratedPaths...); err != nil {
		return err
	}
	for _, dir := range []string{ManifestDir, SkillsDir, CommandsDir, AgentsDir, HooksDir} {
		if err := fsutil.EnsureDir(filepath.Join(out, dir)); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if err := fsutil.WriteJSON(filepath.Join(out, ManifestDir, ManifestFile), p.Manifest); err != nil {
		return err
	}

	for _, s := range p.Skills {
		if err := fsutil.WriteFile(filepath.Join(out, SkillsDir, s.Name, SkillFile), []byte(s.Content)); err != nil {
			return err
		}
	}

	for _, c := range p.Commands {
		if err := fsutil.WriteFile(filepath.Join(out, CommandsDir, c.Name+".md"), []byte(RenderCommand(c))); err != nil {
			return err
		}
	}

	for _, a := range p.Agents {
		if err := fsutil.WriteFile(filepath.Join(out, AgentsDir, a.Name+".md"), []byte(a.Content)); err != nil {
			return err
		}
	}

	if len(p.Hooks) > 0 {
		if err := fsutil.WriteJSON(filepath.Join(out, HooksDir, HooksFile), hooksFile{Hooks: p.Hooks}); err != nil {
			return err
		}
	}

	if len(p.MCPServers) > 0 {
		data, err := MarshalMCPJSON(p.MCPServers)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", MCPFile, err)
		}
		if err := fsutil.WriteFile(filepath.Join(out, MCPFile), data); err != nil {
			return err
		}
	}

	// Hooks live in hooks/hooks.json; settings.json only carries the rest
	if p.Settings != nil && len(p.Settings.Env) > 0 {
		if err := fsutil.WriteJSON(filepath.Join(out, SettingsFile), Settings{Env: p.Settings.Env}); err != nil {
			return err
		}
	}

	return nil
}

func checkNames(p *Plugin) error {
	for _, s := range p.Skills {
		if err := core.CheckName(core.ComponentSkills, s.Name); err != nil {
			return err
		}
	}
	for _, c := range p.Commands {
		if err := core.CheckName(core.ComponentCommands, c.Name); err != nil {
			return err
		}
	}
	for _, a := range p.Agents {
		if err := core.CheckName(core.ComponentAgents, a.Name); err != nil {
			return err
		}
	}
	return nil
}

// RenderCommand renders a command as markdown with front matter
func RenderCommand(c Command) string {
	var fm markdown.FrontMatter
	fm.Set("name", c.Name)
	fm.SetList("aliases", c.Aliases)
	fm.Set("description", c.Description)
	fm.SetList("examples", c.Examples)

	if len(c.Parameters) > 0 {
		records := make([][]markdown.Field, 0, len(c.Parameters))
		for _, param := range c.Parameters {
			records = append(records, parameterFields(param))
		}
		fm.SetRecords("parameters", records)
	}

	return fm.Render(c.Content)
}

func parameterFields(p core.Parameter) []markdown.Field {
	fields := []markdown.Field{{Key: "name", Value: p.Name}}
	if p.Type != "" {
		fields = append(fields, markdown.Field{Key: "type", Value: p.Type})
	}
	if p.Description != "" {
		fields = append(fields, markdown.Field{Key: "description", Value: p.Description})
	}
	return append(fields, markdown.Field{Key: "required", Value: strconv.FormatBool(p.Required)})
}
