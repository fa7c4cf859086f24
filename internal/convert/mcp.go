package convert

import (
	"fmt"
	"sort"
	"strings"

	"github.com/egoavara/plugin-convert/internal/claude"
	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/opencode"
)

// RootVarReplacer returns a string transform swapping one plugin-root placeholder for another
func RootVarReplacer(from, to string) func(string) string {
	return func(s string) string {
		return strings.ReplaceAll(s, from, to)
	}
}

// MCPToOpenCode converts Claude Code MCP servers into OpenCode servers
func MCPToOpenCode(servers map[string]claude.MCPServer) (map[string]opencode.MCPServer, []core.Warning) {
	out := make(map[string]opencode.MCPServer, len(servers))
	var warnings []core.Warning
	swap := RootVarReplacer(claude.PluginRootVar, opencode.PluginRootVar)

	for _, name := range sortedKeys(servers) {
		s := servers[name].MapStrings(swap)
		target := opencode.MCPServer{
			Command:   s.Command,
			Args:      s.Args,
			Env:       s.Env,
			Timeout:   s.Timeout,
			Transport: opencode.TransportStdio,
			URL:       s.URL,
		}

		switch strings.ToLower(s.Type) {
		case "", "stdio":
			if looksRemote(s) {
				target.Transport = opencode.TransportHTTP
				if target.URL == "" {
					target.URL = firstURL(s.Args)
				}
				warnings = append(warnings, core.Info(core.ComponentMCP,
					fmt.Sprintf("MCP server '%s' looks like an HTTP server; transport set to http", name)).
					WithSuggestion("verify the transport and url in opencode.json"))
			}
		case "http", "streamable-http":
			target.Transport = opencode.TransportHTTP
		case "sse":
			target.Transport = opencode.TransportHTTP
			warnings = append(warnings, core.Info(core.ComponentMCP,
				fmt.Sprintf("MCP server '%s' uses sse; mapped to http", name)))
		case "ws", "websocket":
			target.Transport = opencode.TransportWebSocket
		default:
			warnings = append(warnings, core.Warn(core.ComponentMCP,
				fmt.Sprintf("MCP server '%s' has unknown type '%s'; treated as stdio", name, s.Type)))
		}

		if target.Transport != opencode.TransportStdio && target.URL == "" {
			warnings = append(warnings, core.Warn(core.ComponentMCP,
				fmt.Sprintf("MCP server '%s' uses %s transport but has no url", name, target.Transport)))
		}
		out[name] = target
	}
	return out, warnings
}

// MCPToClaude converts OpenCode MCP servers into Claude Code servers.
// Claude Code plugins launch servers over stdio, so other transports raise a warning.
func MCPToClaude(servers map[string]opencode.MCPServer) (map[string]claude.MCPServer, []core.Warning) {
	out := make(map[string]claude.MCPServer, len(servers))
	var warnings []core.Warning
	swap := RootVarReplacer(opencode.PluginRootVar, claude.PluginRootVar)

	for _, name := range sortedKeys(servers) {
		s := servers[name].MapStrings(swap)
		target := claude.MCPServer{
			Command: s.Command,
			Args:    s.Args,
			Env:     s.Env,
			Timeout: s.Timeout,
		}

		transport := s.EffectiveTransport()
		if !transport.Valid() {
			warnings = append(warnings, core.Warn(core.ComponentMCP,
				fmt.Sprintf("MCP server '%s' has unknown transport '%s'", name, transport)))
		}
		if transport != opencode.TransportStdio {
			w := core.Warn(core.ComponentMCP,
				fmt.Sprintf("MCP server '%s' uses %s transport; Claude Code plugins only launch stdio servers", name, transport))
			if target.Command == "" && s.URL != "" {
				target.Command = "npx"
				target.Args = []string{"-y", "mcp-remote", s.URL}
				w = w.WithSuggestion("bridged through mcp-remote; check that the proxy reaches " + s.URL)
			} else {
				w = w.WithSuggestion("wrap the endpoint with a stdio proxy such as mcp-remote")
			}
			warnings = append(warnings, w)
		}
		if target.Command == "" {
			warnings = append(warnings, core.Warn(core.ComponentMCP,
				fmt.Sprintf("MCP server '%s' has no command", name)))
		}
		out[name] = target
	}
	return out, warnings
}

// looksRemote applies the http substring heuristic to the launch command and arguments
func looksRemote(s claude.MCPServer) bool {
	if strings.Contains(s.Command, "http") {
		return true
	}
	for _, a := range s.Args {
		if strings.Contains(a, "http") {
			return true
		}
	}
	return false
}

func firstURL(args []string) string {
	for _, a := range args {
		if strings.HasPrefix(a, "http://") || strings.HasPrefix(a, "https://") {
			return a
		}
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
