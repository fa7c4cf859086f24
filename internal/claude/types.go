// Package claude models the Claude Code plugin layout on disk.
package claude

import (
	"github.com/egoavara/plugin-convert/internal/core"
)

// Well-known paths inside a Claude Code plugin
const (
	ManifestDir  = ".claude-plugin"
	ManifestFile = "plugin.json"
	SkillsDir    = "skills"
	SkillFile    = "SKILL.md"
	ReferenceDir = "references"
	CommandsDir  = "commands"
	AgentsDir    = "agents"
	HooksDir     = "hooks"
	HooksFile    = "hooks.json"
	MCPFile      = ".mcp.json"
	SettingsFile = "settings.json"
)

// PluginRootVar is the placeholder Claude Code expands to the plugin directory
const PluginRootVar = "${CLAUDE_PLUGIN_ROOT}"

// Manifest represents the .claude-plugin/plugin.json structure
type Manifest struct {
	Name        string       `json:"name"`
	Version     string       `json:"version,omitempty"`
	Description string       `json:"description,omitempty"`
	Author      *core.Author `json:"author,omitempty"`
	Homepage    string       `json:"homepage,omitempty"`
	Repository  string       `json:"repository,omitempty"`
	License     string       `json:"license,omitempty"`
	Keywords    []string     `json:"keywords,omitempty"`
}

// HookCommand is a single shell action run by a hook
type HookCommand struct {
	Type    string `json:"type"` // always "command"
	Command string `json:"command"`
	Timeout *int   `json:"timeout,omitempty"`
}

// HookMatcher pairs a tool-name pattern with its actions
type HookMatcher struct {
	Matcher string        `json:"matcher,omitempty"`
	Hooks   []HookCommand `json:"hooks"`
}

// Hooks maps an event name to its matchers
type Hooks map[string][]HookMatcher

// hooksFile represents hooks/hooks.json
type hooksFile struct {
	Hooks Hooks `json:"hooks"`
}

// MCPServer represents a single MCP server configuration from .mcp.json
type MCPServer struct {
	Type    string            `json:"type,omitempty"`
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	URL     string            `json:"url,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Timeout *int              `json:"timeout,omitempty"`
}

// MapStrings applies fn to every non-empty string-bearing field
func (s MCPServer) MapStrings(fn func(string) string) MCPServer {
	out := s
	out.Command = core.MapString(s.Command, fn)
	out.URL = core.MapString(s.URL, fn)
	out.Args = core.MapSlice(s.Args, fn)
	out.Env = core.MapValues(s.Env, fn)
	return out
}

// Settings represents the subset of settings.json a plugin carries
type Settings struct {
	Env   map[string]string `json:"env,omitempty"`
	Hooks Hooks             `json:"hooks,omitempty"`
}

// Skill is a markdown knowledge document under skills/
type Skill struct {
	Name       string
	Path       string
	Content    string
	References []string
}

// Command is a user-invocable slash command under commands/
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Examples    []string
	Parameters  []core.Parameter
	Content     string
	Path        string
}

// Agent is a subagent definition under agents/
type Agent struct {
	Name    string
	Path    string
	Content string
}

// Plugin is the in-memory form of a Claude Code plugin directory
type Plugin struct {
	Manifest   Manifest
	Hooks      Hooks
	MCPServers map[string]MCPServer
	Skills     []Skill
	Commands   []Command
	Agents     []Agent
	Settings   *Settings
	RootPath   string
}

// NewPlugin creates an empty plugin with initialized collections
func NewPlugin(name string) *Plugin {
	return &Plugin{
		Manifest:   Manifest{Name: name},
		Hooks:      make(Hooks),
		MCPServers: make(map[string]MCPServer),
	}
}

// HookCount returns the number of actions across all events
func (p *Plugin) HookCount() int {
	n := 0
	for _, matchers := range p.Hooks {
		for _, m := range matchers {
			n += len(m.Hooks)
		}
	}
	return n
}
