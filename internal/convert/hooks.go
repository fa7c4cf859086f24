// Package convert holds the per-component converters between the Claude Code
// and OpenCode plugin models. Every converter is a pure function returning
// the converted collection together with the warnings it raised.
package convert

import (
	"fmt"
	"sort"
	"strings"

	"github.com/egoavara/plugin-convert/internal/claude"
	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/opencode"
)

// HooksToOpenCode translates Claude Code hooks into OpenCode hook entries.
// Known events are emitted in table order, unknown ones are dropped with an info warning.
func HooksToOpenCode(hooks claude.Hooks) ([]opencode.Hook, []core.Warning) {
	var out []opencode.Hook
	var warnings []core.Warning

	for _, event := range orderedClaudeEvents(hooks) {
		matchers := hooks[event]

		m, ok := core.LookupClaudeEvent(event)
		if !ok {
			warnings = append(warnings, unmappedEvent(event, countActions(matchers), core.OpenCodeEvents(), "OpenCode"))
			continue
		}
		if !m.Bidirectional {
			warnings = append(warnings, core.Info(core.ComponentHooks,
				fmt.Sprintf("hook event '%s' mapped to '%s'; it converts back as '%s'", event, m.OpenCode, reverseName(m.OpenCode))))
		}

		for _, matcher := range matchers {
			for _, h := range matcher.Hooks {
				if h.Command == "" {
					warnings = append(warnings, core.Warn(core.ComponentHooks,
						fmt.Sprintf("skipped '%s' hook of type '%s' without a command", event, h.Type)))
					continue
				}
				out = append(out, opencode.Hook{
					Event:   m.OpenCode,
					Pattern: matcher.Matcher,
					Action:  opencode.CommandAction(h.Command),
					Timeout: h.Timeout,
				})
			}
		}
	}
	return out, warnings
}

// HooksToClaude translates OpenCode hook entries into Claude Code hooks.
// Consecutive entries sharing an event and pattern are grouped under one matcher.
func HooksToClaude(hooks []opencode.Hook) (claude.Hooks, []core.Warning) {
	out := make(claude.Hooks)
	var warnings []core.Warning

	for _, h := range hooks {
		m, ok := core.LookupOpenCodeEvent(h.Event)
		if !ok {
			warnings = append(warnings, unmappedEvent(h.Event, 1, core.ClaudeEvents(), "Claude Code"))
			continue
		}

		command := h.Action.Value
		if h.Action.Kind == opencode.ActionHandler {
			command = handlerWrapper(h.Action.Value)
			warnings = append(warnings, core.Info(core.ComponentHooks,
				fmt.Sprintf("'%s' handler %s replaced by a placeholder command", h.Event, h.Action.Value)).
				WithSuggestion("port the handler logic to a shell script and reference it from hooks.json"))
		}
		if len(h.Environment) > 0 {
			command = envPrefix(h.Environment) + command
			warnings = append(warnings, core.Info(core.ComponentHooks,
				fmt.Sprintf("'%s' hook environment inlined into its command", h.Event)))
		}

		action := claude.HookCommand{Type: "command", Command: command, Timeout: h.Timeout}
		matchers := out[m.Claude]
		if n := len(matchers); n > 0 && matchers[n-1].Matcher == h.Pattern {
			matchers[n-1].Hooks = append(matchers[n-1].Hooks, action)
		} else {
			matchers = append(matchers, claude.HookMatcher{Matcher: h.Pattern, Hooks: []claude.HookCommand{action}})
		}
		out[m.Claude] = matchers
	}
	return out, warnings
}

// orderedClaudeEvents returns table events first, then unknown events sorted
func orderedClaudeEvents(hooks claude.Hooks) []string {
	var events []string
	for _, e := range core.ClaudeEvents() {
		if _, ok := hooks[e]; ok {
			events = append(events, e)
		}
	}
	var unknown []string
	for e := range hooks {
		if _, ok := core.LookupClaudeEvent(e); !ok {
			unknown = append(unknown, e)
		}
	}
	sort.Strings(unknown)
	return append(events, unknown...)
}

func unmappedEvent(event string, actions int, candidates []string, target string) core.Warning {
	w := core.Info(core.ComponentHooks,
		fmt.Sprintf("hook event '%s' has no %s equivalent; %d action(s) dropped", event, target, actions))
	if s, ok := ClosestEvent(event, candidates); ok {
		w = w.WithSuggestion(fmt.Sprintf("did you mean '%s'?", s))
	}
	return w
}

func reverseName(openCodeEvent string) string {
	if m, ok := core.LookupOpenCodeEvent(openCodeEvent); ok {
		return m.Claude
	}
	return openCodeEvent
}

func countActions(matchers []claude.HookMatcher) int {
	n := 0
	for _, m := range matchers {
		n += len(m.Hooks)
	}
	return n
}

// handlerWrapper produces a shell command that records the original handler reference
func handlerWrapper(ref string) string {
	return fmt.Sprintf("echo %s >&2", shellQuote("plugin-convert: port OpenCode handler "+ref))
}

// envPrefix renders KEY='value' assignments, sorted by key
func envPrefix(env map[string]string) string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(shellQuote(env[k]))
		b.WriteByte(' ')
	}
	return b.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
