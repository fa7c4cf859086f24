// Package opencode models the OpenCode plugin layout on disk.
package opencode

import (
	"encoding/json"
	"fmt"

	"github.com/egoavara/plugin-convert/internal/core"
)

// Well-known paths inside an OpenCode plugin
const (
	ConfigFile      = "opencode.json"
	ConfigFileYAML  = "opencode.yaml"
	InstructionsDir = "instructions"
	InstructionFile = "README.md"
	CommandsDir     = "commands"
	AgentsDir       = ".opencode/agents"
	PluginsDir      = ".opencode/plugins"
	HooksPluginFile = "hooks.ts"
)

// PluginRootVar is the placeholder OpenCode expands to the plugin directory
const PluginRootVar = "${OPENCODE_PLUGIN_ROOT}"

// Transport is the MCP server transport kind
type Transport string

const (
	TransportStdio     Transport = "stdio"
	TransportHTTP      Transport = "http"
	TransportWebSocket Transport = "websocket"
)

// Valid reports whether t is a known transport
func (t Transport) Valid() bool {
	switch t {
	case TransportStdio, TransportHTTP, TransportWebSocket:
		return true
	}
	return false
}

// MCPServer describes an MCP server in opencode.json
type MCPServer struct {
	Command   string            `json:"command,omitempty"`
	Args      []string          `json:"args,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
	Timeout   *int              `json:"timeout,omitempty"`
	Transport Transport         `json:"transport,omitempty"`
	URL       string            `json:"url,omitempty"`
}

// EffectiveTransport returns the transport, defaulting to stdio
func (s MCPServer) EffectiveTransport() Transport {
	if s.Transport == "" {
		return TransportStdio
	}
	return s.Transport
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

// ActionKind distinguishes hook actions
type ActionKind string

const (
	ActionCommand ActionKind = "command"
	ActionHandler ActionKind = "handler"
)

// HookAction is either a shell command or a handler module reference
type HookAction struct {
	Kind  ActionKind
	Value string
}

// CommandAction creates a shell command action
func CommandAction(command string) HookAction {
	return HookAction{Kind: ActionCommand, Value: command}
}

// HandlerAction creates a handler reference action
func HandlerAction(ref string) HookAction {
	return HookAction{Kind: ActionHandler, Value: ref}
}

// Hook is one entry of the opencode.json hooks array
type Hook struct {
	Event       string
	Pattern     string
	Action      HookAction
	Timeout     *int
	Environment map[string]string
}

type hookJSON struct {
	Event       string            `json:"event"`
	Pattern     string            `json:"pattern,omitempty"`
	Command     string            `json:"command,omitempty"`
	Script      string            `json:"script,omitempty"`
	Handler     string            `json:"handler,omitempty"`
	Timeout     *int              `json:"timeout,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (h Hook) MarshalJSON() ([]byte, error) {
	j := hookJSON{
		Event:       h.Event,
		Pattern:     h.Pattern,
		Timeout:     h.Timeout,
		Environment: h.Environment,
	}
	switch h.Action.Kind {
	case ActionHandler:
		j.Handler = h.Action.Value
	default:
		j.Command = h.Action.Value
	}
	return json.Marshal(j)
}

// UnmarshalJSON implements json.Unmarshaler.
// A script path is treated as a command.
func (h *Hook) UnmarshalJSON(data []byte) error {
	var j hookJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*h = Hook{
		Event:       j.Event,
		Pattern:     j.Pattern,
		Timeout:     j.Timeout,
		Environment: j.Environment,
	}
	switch {
	case j.Command != "":
		h.Action = CommandAction(j.Command)
	case j.Script != "":
		h.Action = CommandAction(j.Script)
	case j.Handler != "":
		h.Action = HandlerAction(j.Handler)
	default:
		return fmt.Errorf("hook for event '%s' has no command, script or handler", j.Event)
	}
	return nil
}

// Command is a user-invocable command
type Command struct {
	Name        string           `json:"name"`
	Aliases     []string         `json:"aliases,omitempty"`
	Description string           `json:"description,omitempty"`
	Handler     string           `json:"handler,omitempty"`
	Parameters  []core.Parameter `json:"parameters,omitempty"`
}

// AgentConfig is an agent entry in opencode.json
type AgentConfig struct {
	Description  string   `json:"description,omitempty"`
	Provider     string   `json:"provider,omitempty"`
	Model        string   `json:"model,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
	Tools        []string `json:"tools,omitempty"`
	MCPServers   []string `json:"mcpServers,omitempty"`
}

// Agent is a named persona
type Agent struct {
	Name         string
	Description  string
	Provider     string
	Model        string
	Instructions string
	Tools        []string
	MCPServers   []string
}

// Config represents opencode.json
type Config struct {
	Name            string                 `json:"name"`
	Version         string                 `json:"version,omitempty"`
	Description     string                 `json:"description,omitempty"`
	Author          *core.Author           `json:"author,omitempty"`
	DefaultProvider string                 `json:"defaultProvider,omitempty"`
	DefaultModel    string                 `json:"defaultModel,omitempty"`
	Hooks           []Hook                 `json:"hooks,omitempty"`
	MCPServers      map[string]MCPServer   `json:"mcpServers,omitempty"`
	Commands        []Command              `json:"commands,omitempty"`
	Agents          map[string]AgentConfig `json:"agents,omitempty"`
	Environment     map[string]string      `json:"environment,omitempty"`
}

// Instruction is a markdown knowledge document under instructions/
type Instruction struct {
	Name     string
	Path     string
	Content  string
	Triggers []string
}

// Plugin is the in-memory form of an OpenCode plugin directory.
// Hooks, MCPServers, Commands and Agents are authoritative; the
// matching Config fields are rebuilt from them on serialization.
type Plugin struct {
	Config       Config
	Instructions []Instruction
	Commands     []Command
	Hooks        []Hook
	MCPServers   map[string]MCPServer
	Agents       []Agent
	RootPath     string
}

// NewPlugin creates an empty plugin with initialized collections
func NewPlugin(name string) *Plugin {
	return &Plugin{
		Config:     Config{Name: name},
		MCPServers: make(map[string]MCPServer),
	}
}
