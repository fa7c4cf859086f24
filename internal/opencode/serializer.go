package opencode

import (
	"fmt"
	"path/filepath"

	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/fsutil"
	"github.com/egoavara/plugin-convert/internal/markdown"
)

// GeneratedPaths are removed from out before every write
var GeneratedPaths = []string{InstructionsDir, CommandsDir, AgentsDir, PluginsDir + "/" + HooksPluginFile}

// Serialize writes the plugin as an OpenCode directory at out.
// Component paths left by an earlier run are removed first.
func Serialize(p *Plugin, out string) error {
	if err := checkNames(p); err != nil {
		return err
	}
	if err := fsutil.RemovePaths(out, GeneratedPaths...); err != nil {
		return err
	}
	for _, dir := range []string{InstructionsDir, CommandsDir, AgentsDir, PluginsDir} {
		if err := fsutil.EnsureDir(filepath.Join(out, filepath.FromSlash(dir))); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if err := fsutil.WriteJSON(filepath.Join(out, ConfigFile), BuildConfig(p)); err != nil {
		return err
	}

	for _, inst := range p.Instructions {
		path := filepath.Join(out, InstructionsDir, inst.Name, InstructionFile)
		if err := fsutil.WriteFile(path, []byte(RenderInstruction(inst))); err != nil {
			return err
		}
	}

	for _, c := range p.Commands {
		stub, err := GenerateCommandStub(c)
		if err != nil {
			return err
		}
		if err := fsutil.WriteFile(filepath.Join(out, CommandsDir, c.Name+".ts"), []byte(stub)); err != nil {
			return err
		}
	}

	for _, a := range p.Agents {
		path := filepath.Join(out, filepath.FromSlash(AgentsDir), a.Name+".md")
		if err := fsutil.WriteFile(path, []byte(a.Instructions)); err != nil {
			return err
		}
	}

	if len(p.Hooks) > 0 {
		src, err := GenerateHooksPlugin(p.Hooks)
		if err != nil {
			return err
		}
		path := filepath.Join(out, filepath.FromSlash(PluginsDir), HooksPluginFile)
		if err := fsutil.WriteFile(path, []byte(src)); err != nil {
			return err
		}
	}

	return nil
}

func checkNames(p *Plugin) error {
	for _, inst := range p.Instructions {
		if err := core.CheckName(core.ComponentSkills, inst.Name); err != nil {
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

// BuildConfig assembles opencode.json from the plugin's components.
// Agent instructions live in their markdown files and are left out.
func BuildConfig(p *Plugin) Config {
	cfg := p.Config
	cfg.Hooks = p.Hooks
	cfg.Commands = p.Commands
	cfg.MCPServers = nil
	if len(p.MCPServers) > 0 {
		cfg.MCPServers = p.MCPServers
	}
	cfg.Agents = nil
	if len(p.Agents) > 0 {
		cfg.Agents = make(map[string]AgentConfig, len(p.Agents))
		for _, a := range p.Agents {
			cfg.Agents[a.Name] = AgentConfig{
				Description: a.Description,
				Provider:    a.Provider,
				Model:       a.Model,
				Tools:       a.Tools,
				MCPServers:  a.MCPServers,
			}
		}
	}
	return cfg
}

// RenderInstruction returns the file content for an instruction.
// Triggers are written as front matter unless the content already has some.
func RenderInstruction(inst Instruction) string {
	if len(inst.Triggers) == 0 || markdown.Parse(inst.Content).HasFrontMatter {
		return inst.Content
	}
	var fm markdown.FrontMatter
	fm.SetList("triggers", inst.Triggers)
	return fm.Render(inst.Content)
}
