package convert

import (
	"fmt"
	"maps"
	"strings"

	"github.com/egoavara/plugin-convert/internal/claude"
	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/opencode"
)

// Options tunes whole-plugin conversion
type Options struct {
	Agents AgentDefaults
}

// ToOpenCode runs every component converter over a Claude Code plugin
func ToOpenCode(src *claude.Plugin, opts Options) (*opencode.Plugin, []core.Warning) {
	dst := opencode.NewPlugin(src.Manifest.Name)
	dst.Config.Version = src.Manifest.Version
	dst.Config.Description = src.Manifest.Description
	dst.Config.Author = src.Manifest.Author

	var warnings []core.Warning
	if dropped := droppedManifestFields(src.Manifest); len(dropped) > 0 {
		warnings = append(warnings, core.Info(core.ComponentManifest,
			fmt.Sprintf("manifest fields not represented in opencode.json: %s", strings.Join(dropped, ", "))))
	}
	if src.Settings != nil && len(src.Settings.Env) > 0 {
		dst.Config.Environment = maps.Clone(src.Settings.Env)
	}

	var ws []core.Warning
	dst.Hooks, ws = HooksToOpenCode(src.Hooks)
	warnings = append(warnings, ws...)
	dst.MCPServers, ws = MCPToOpenCode(src.MCPServers)
	warnings = append(warnings, ws...)
	dst.Instructions, ws = SkillsToOpenCode(src.Skills)
	warnings = append(warnings, ws...)
	dst.Commands, ws = CommandsToOpenCode(src.Commands)
	warnings = append(warnings, ws...)
	dst.Agents, ws = AgentsToOpenCode(src.Agents, opts.Agents)
	warnings = append(warnings, ws...)

	return dst, warnings
}

// ToClaude runs every component converter over an OpenCode plugin
func ToClaude(src *opencode.Plugin) (*claude.Plugin, []core.Warning) {
	dst := claude.NewPlugin(src.Config.Name)
	dst.Manifest.Version = src.Config.Version
	dst.Manifest.Description = src.Config.Description
	dst.Manifest.Author = src.Config.Author
	if len(src.Config.Environment) > 0 {
		dst.Settings = &claude.Settings{Env: maps.Clone(src.Config.Environment)}
	}

	var warnings []core.Warning
	if src.Config.DefaultProvider != "" || src.Config.DefaultModel != "" {
		warnings = append(warnings, core.Info(core.ComponentManifest,
			fmt.Sprintf("default provider %s and model %s dropped", src.Config.DefaultProvider, src.Config.DefaultModel)))
	}

	var ws []core.Warning
	dst.Hooks, ws = HooksToClaude(src.Hooks)
	warnings = append(warnings, ws...)
	dst.MCPServers, ws = MCPToClaude(src.MCPServers)
	warnings = append(warnings, ws...)
	dst.Skills, ws = SkillsToClaude(src.Instructions)
	warnings = append(warnings, ws...)
	dst.Commands, ws = CommandsToClaude(src.Commands)
	warnings = append(warnings, ws...)
	dst.Agents, ws = AgentsToClaude(src.Agents)
	warnings = append(warnings, ws...)

	return dst, warnings
}

func droppedManifestFields(m claude.Manifest) []string {
	var dropped []string
	if m.Homepage != "" {
		dropped = append(dropped, "homepage")
	}
	if m.Repository != "" {
		dropped = append(dropped, "repository")
	}
	if m.License != "" {
		dropped = append(dropped, "license")
	}
	if len(m.Keywords) > 0 {
		dropped = append(dropped, "keywords")
	}
	return dropped
}
