package convert

import (
	"fmt"
	"path"
	"strings"

	"github.com/egoavara/plugin-convert/internal/claude"
	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/markdown"
	"github.com/egoavara/plugin-convert/internal/opencode"
)

// AgentDefaults is the provider and model assigned to agents that carry none
type AgentDefaults struct {
	Provider string
	Model    string
}

// DefaultAgentDefaults is used when no configuration overrides it
var DefaultAgentDefaults = AgentDefaults{
	Provider: "anthropic",
	Model:    "claude-sonnet-4-20250514",
}

const maxDescription = 200

// AgentsToOpenCode converts agent markdown into OpenCode agents.
// A provider comment left by an earlier conversion is restored; otherwise defaults apply.
func AgentsToOpenCode(agents []claude.Agent, defaults AgentDefaults) ([]opencode.Agent, []core.Warning) {
	if defaults.Provider == "" {
		defaults.Provider = DefaultAgentDefaults.Provider
	}
	if defaults.Model == "" {
		defaults.Model = DefaultAgentDefaults.Model
	}

	var out []opencode.Agent
	var warnings []core.Warning

	for _, a := range agents {
		target := opencode.Agent{Name: a.Name, Instructions: a.Content}

		if groups, rest, ok := takeLeadingComment(a.Content, providerComment); ok {
			target.Provider, target.Model = groups[0], groups[1]
			target.Instructions = rest
		} else {
			target.Provider, target.Model = defaults.Provider, defaults.Model
			warnings = append(warnings, core.Info(core.ComponentAgents,
				fmt.Sprintf("agent '%s' defaulted to %s/%s", a.Name, defaults.Provider, defaults.Model)).
				WithSuggestion("set provider and model for the agent in opencode.json"))
		}

		doc := markdown.Parse(target.Instructions)
		target.Description = doc.String("description")
		if target.Description == "" {
			target.Description = summarize(doc.Body)
		}
		for _, t := range doc.List("tools") {
			target.Tools = append(target.Tools, splitList(t)...)
		}

		out = append(out, target)
	}
	return out, warnings
}

// AgentsToClaude converts OpenCode agents into agent markdown.
// Provider and model are preserved in a leading comment.
func AgentsToClaude(agents []opencode.Agent) ([]claude.Agent, []core.Warning) {
	var out []claude.Agent
	var warnings []core.Warning

	for _, a := range agents {
		content := a.Instructions
		if content == "" && a.Description != "" {
			content = a.Description + "\n"
		}
		if a.Provider != "" || a.Model != "" {
			content = insertLeadingComment(content,
				fmt.Sprintf("<!-- Original provider: %s, model: %s -->", a.Provider, a.Model))
			warnings = append(warnings, core.Info(core.ComponentAgents,
				fmt.Sprintf("agent '%s': provider %s and model %s kept as a comment", a.Name, a.Provider, a.Model)))
		}
		if len(a.Tools) > 0 {
			warnings = append(warnings, core.Info(core.ComponentAgents,
				fmt.Sprintf("agent '%s' restricts tools to [%s]; this is not enforced", a.Name, strings.Join(a.Tools, ", "))).
				WithSuggestion("enforce the restriction with a PreToolUse hook"))
		}
		if len(a.MCPServers) > 0 {
			warnings = append(warnings, core.Info(core.ComponentAgents,
				fmt.Sprintf("agent '%s' MCP server scoping [%s] dropped", a.Name, strings.Join(a.MCPServers, ", "))))
		}

		out = append(out, claude.Agent{
			Name:    a.Name,
			Path:    path.Join(claude.AgentsDir, a.Name+".md"),
			Content: content,
		})
	}
	return out, warnings
}

// summarize returns the first heading or paragraph of body, trimmed to maxDescription runes
func summarize(body string) string {
	var para []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "" || strings.HasPrefix(line, "<!--"):
			if len(para) > 0 {
				return truncate(strings.Join(para, " "))
			}
		case strings.HasPrefix(line, "#"):
			if len(para) > 0 {
				return truncate(strings.Join(para, " "))
			}
			return truncate(strings.TrimSpace(strings.TrimLeft(line, "#")))
		default:
			para = append(para, line)
		}
	}
	return truncate(strings.Join(para, " "))
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxDescription {
		return s
	}
	return string(r[:maxDescription-3]) + "..."
}
