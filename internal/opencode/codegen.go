package opencode

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// GeneratedMarker tags files written by the serializer so the parser can
// tell them apart from hand-written plugin modules.
const GeneratedMarker = "// @generated by plugin-convert"

// sdkEvents maps hook events to the OpenCode SDK event names a plugin subscribes to
var sdkEvents = map[string]string{
	"beforeTool":      "tool.execute.before",
	"afterTool":       "tool.execute.after",
	"afterToolError":  "session.error",
	"sessionStart":    "session.created",
	"sessionEnd":      "session.deleted",
	"idle":            "session.idle",
	"permissionCheck": "permission.asked",
	"notification":    "tui.toast.show",
	"beforePrompt":    "tui.prompt.append",
	"beforeCompact":   "context.compact.before",
	"afterCompact":    "context.compact.after",
	"taskComplete":    "task.complete",
}

// extractable lists the SDK events recognised in hand-written plugin modules
var extractable = []struct {
	sdk   string
	event string
}{
	{"tool.execute.before", "beforeTool"},
	{"tool.execute.after", "afterTool"},
	{"session.created", "sessionStart"},
	{"session.idle", "idle"},
	{"session.error", "afterToolError"},
	{"permission.asked", "permissionCheck"},
}

var descriptionPattern = regexp.MustCompile(`["']?description["']?\s*:\s*["'](.+?)["']`)

// SDKEvent returns the SDK event name for a hook event
func SDKEvent(event string) (string, bool) {
	e, ok := sdkEvents[event]
	return e, ok
}

// ExtractHooks finds SDK event subscriptions in a plugin module.
// Each match becomes a handler hook pointing at ref.
func ExtractHooks(source, ref string) []Hook {
	var hooks []Hook
	for _, x := range extractable {
		if strings.Contains(source, x.sdk) {
			hooks = append(hooks, Hook{
				Event:  x.event,
				Action: HandlerAction(ref + "#" + x.sdk),
			})
		}
	}
	return hooks
}

// ExtractDescription pulls a description literal out of a command module
func ExtractDescription(source string) string {
	if m := descriptionPattern.FindStringSubmatch(source); m != nil {
		return m[1]
	}
	return ""
}

// IsGenerated reports whether source was written by GenerateHooksPlugin or GenerateCommandStub
func IsGenerated(source string) bool {
	return strings.HasPrefix(source, GeneratedMarker)
}

// GenerateCommandStub renders a TypeScript module for a command.
// Every dynamic value is emitted as a JSON literal.
func GenerateCommandStub(c Command) (string, error) {
	meta := struct {
		Name        string   `json:"name"`
		Aliases     []string `json:"aliases,omitempty"`
		Description string   `json:"description"`
		Parameters  any      `json:"parameters,omitempty"`
	}{c.Name, c.Aliases, c.Description, nil}
	if len(c.Parameters) > 0 {
		meta.Parameters = c.Parameters
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode command %s: %w", c.Name, err)
	}

	var sb strings.Builder
	sb.WriteString(GeneratedMarker + "\n")
	sb.WriteString("/*\n * " + commentSafe(firstNonEmpty(c.Description, c.Name)) + "\n")
	sb.WriteString(" *\n * Converted command stub. Implement the command logic in execute().\n */\n\n")
	sb.WriteString("const meta = " + string(data) + ";\n\n")
	sb.WriteString("export default {\n")
	sb.WriteString("  ...meta,\n")
	sb.WriteString("  async execute(args: Record<string, unknown>) {\n")
	sb.WriteString("    console.log(`Command ${meta.name} called with:`, args);\n")
	sb.WriteString("  },\n")
	sb.WriteString("};\n")
	return sb.String(), nil
}

type generatedHook struct {
	Event       string            `json:"event"`
	SDKEvent    string            `json:"sdkEvent"`
	Pattern     string            `json:"pattern,omitempty"`
	Command     string            `json:"command,omitempty"`
	Handler     string            `json:"handler,omitempty"`
	Timeout     *int              `json:"timeout,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
}

// GenerateHooksPlugin renders the plugin module that runs converted hooks.
// Hook data is embedded as JSON and dispatched by a fixed runtime.
func GenerateHooksPlugin(hooks []Hook) (string, error) {
	table := make([]generatedHook, 0, len(hooks))
	subscribed := make(map[string]bool)
	for _, h := range hooks {
		sdk, ok := SDKEvent(h.Event)
		if !ok {
			continue
		}
		g := generatedHook{
			Event:       h.Event,
			SDKEvent:    sdk,
			Pattern:     h.Pattern,
			Timeout:     h.Timeout,
			Environment: h.Environment,
		}
		if h.Action.Kind == ActionHandler {
			g.Handler = h.Action.Value
		} else {
			g.Command = h.Action.Value
		}
		table = append(table, g)
		subscribed[sdk] = true
	}

	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode hooks: %w", err)
	}

	events := make([]string, 0, len(subscribed))
	for e := range subscribed {
		events = append(events, e)
	}
	sort.Strings(events)
	eventsJSON, err := json.Marshal(events)
	if err != nil {
		return "", fmt.Errorf("failed to encode hook events: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(GeneratedMarker + "\n")
	sb.WriteString(hooksPluginHeader)
	sb.WriteString("const hooks: ConvertedHook[] = " + string(data) + ";\n\n")
	sb.WriteString("const events: string[] = " + string(eventsJSON) + ";\n\n")
	sb.WriteString(hooksPluginRuntime)
	return sb.String(), nil
}

const hooksPluginHeader = `/*
 * Converted hooks. Each entry runs when its SDK event fires and the
 * optional pattern matches the tool name.
 */
import type { Plugin } from "@opencode-ai/plugin";

interface ConvertedHook {
  event: string;
  sdkEvent: string;
  pattern?: string;
  command?: string;
  handler?: string;
  timeout?: number;
  environment?: Record<string, string>;
}

`

const hooksPluginRuntime = `function matches(pattern: string | undefined, tool: unknown): boolean {
  if (!pattern || pattern === "*") return true;
  if (typeof tool !== "string") return false;
  try {
    return new RegExp("^(?:" + pattern + ")$").test(tool);
  } catch {
    return pattern === tool;
  }
}

async function run(hook: ConvertedHook, payload: unknown): Promise<void> {
  if (hook.command) {
    const { execSync } = await import("node:child_process");
    execSync(hook.command, {
      env: { ...process.env, ...hook.environment, OPENCODE_EVENT: JSON.stringify(payload) },
      stdio: "pipe",
      timeout: hook.timeout ? hook.timeout * 1000 : undefined,
    });
    return;
  }
  if (hook.handler) {
    const [path] = hook.handler.split("#");
    const mod = await import(path);
    await mod.default?.(payload);
  }
}

export const ConvertedHooks: Plugin = async () => {
  const handlers: Record<string, (input: any, output?: any) => Promise<void>> = {};
  for (const sdkEvent of events) {
    handlers[sdkEvent] = async (input: any) => {
      for (const hook of hooks) {
        if (hook.sdkEvent === sdkEvent && matches(hook.pattern, input?.tool)) {
          await run(hook, input);
        }
      }
    };
  }
  return handlers;
};

export default ConvertedHooks;
`

func commentSafe(s string) string {
	s = strings.ReplaceAll(s, "*/", "* /")
	return strings.ReplaceAll(s, "\n", " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
