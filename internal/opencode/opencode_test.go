package opencode

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

const sampleConfig = `{
  "name": "sample",
  "version": "0.2.0",
  "author": "Someone",
  "hooks": [
    {"event": "beforeTool", "pattern": "Bash", "command": "echo pre", "timeout": 5},
    {"event": "sessionStart", "script": "./start.sh"},
    {"event": "idle", "handler": "./idle.ts"},
    {"event": "broken"}
  ],
  "mcpServers": {
    "remote": {"command": "npx", "args": ["mcp-remote", "https://example.com/mcp"], "transport": "http", "url": "https://example.com/mcp"}
  },
  "commands": [
    {"name": "deploy", "description": "Deploy it", "parameters": [{"name": "env", "type": "string", "required": true}]}
  ],
  "agents": {
    "reviewer": {"provider": "openai", "model": "gpt-4o", "tools": ["read"]}
  }
}`

func TestParse_ConfigAndFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ConfigFile, sampleConfig)
	writeFile(t, root, "instructions/style/README.md", "---\ntriggers: [style, lint]\n---\nUse tabs.\n")
	writeFile(t, root, "instructions/notes.md", "Notes\n")
	writeFile(t, root, "commands/deploy.ts", `export default { description: "ignored" }`)
	writeFile(t, root, "commands/greet.ts", `export default { name: "greet", description: 'Say hi' }`)
	writeFile(t, root, ".opencode/agents/reviewer.md", "You review code.\n")
	writeFile(t, root, ".opencode/agents/writer.md", "You write.\n")
	writeFile(t, root, ".opencode/plugins/guard.ts", `export default async () => ({ "tool.execute.before": async () => {} })`)

	p, warnings := Parse(root)

	require.Len(t, warnings, 1)
	assert.Equal(t, core.SeverityWarning, warnings[0].Severity)
	assert.Contains(t, warnings[0].Message, "hook #3")

	assert.Equal(t, "sample", p.Config.Name)
	require.NotNil(t, p.Config.Author)
	assert.Equal(t, "Someone", p.Config.Author.Name)

	require.Len(t, p.Hooks, 4)
	assert.Equal(t, CommandAction("echo pre"), p.Hooks[0].Action)
	assert.Equal(t, "Bash", p.Hooks[0].Pattern)
	assert.Equal(t, CommandAction("./start.sh"), p.Hooks[1].Action)
	assert.Equal(t, HandlerAction("./idle.ts"), p.Hooks[2].Action)
	assert.Equal(t, "beforeTool", p.Hooks[3].Event)
	assert.Equal(t, ActionHandler, p.Hooks[3].Action.Kind)
	assert.Equal(t, ".opencode/plugins/guard.ts#tool.execute.before", p.Hooks[3].Action.Value)

	require.Contains(t, p.MCPServers, "remote")
	assert.Equal(t, TransportHTTP, p.MCPServers["remote"].EffectiveTransport())

	require.Len(t, p.Instructions, 2)
	assert.Equal(t, "notes", p.Instructions[0].Name)
	assert.Equal(t, []string{"style", "lint"}, p.Instructions[1].Triggers)

	require.Len(t, p.Commands, 2)
	assert.Equal(t, "Deploy it", p.Commands[0].Description)
	assert.Equal(t, "commands/deploy.ts", p.Commands[0].Handler)
	assert.Len(t, p.Commands[0].Parameters, 1)
	assert.Equal(t, "Say hi", p.Commands[1].Description)

	require.Len(t, p.Agents, 2)
	assert.Equal(t, "reviewer", p.Agents[0].Name)
	assert.Equal(t, "openai", p.Agents[0].Provider)
	assert.Equal(t, "You review code.\n", p.Agents[0].Instructions)
	assert.Equal(t, DefaultAgentModel, p.Agents[1].Provider)
}

func TestParse_YAMLFallback(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ConfigFileYAML, "name: yaml-plugin\nhooks:\n  - event: afterTool\n    command: echo done\nmcpServers:\n  local:\n    command: ./server\n")

	p, warnings := Parse(root)
	assert.Empty(t, warnings)
	assert.Equal(t, "yaml-plugin", p.Config.Name)
	require.Len(t, p.Hooks, 1)
	assert.Equal(t, CommandAction("echo done"), p.Hooks[0].Action)
	assert.Equal(t, "./server", p.MCPServers["local"].Command)
}

func TestParse_MalformedConfigFallsBackToDirName(t *testing.T) {
	root := filepath.Join(t.TempDir(), "fallback")
	writeFile(t, root, ConfigFile, "{")

	p, warnings := Parse(root)
	require.Len(t, warnings, 1)
	assert.Equal(t, "fallback", p.Config.Name)
}

func TestSerialize_RoundTripAndIdempotent(t *testing.T) {
	timeout := 10
	p := NewPlugin("demo")
	p.Hooks = []Hook{
		{Event: "beforeTool", Pattern: "Bash", Action: CommandAction(`echo "pre" */`), Timeout: &timeout},
		{Event: "idle", Action: HandlerAction("./idle.ts")},
	}
	p.MCPServers["db"] = MCPServer{Command: "db", Transport: TransportStdio}
	p.Instructions = []Instruction{
		{Name: "demo-skill", Content: "# Demo\n"},
		{Name: "triggered", Content: "Body\n", Triggers: []string{"a", "b"}},
	}
	p.Commands = []Command{{Name: "review", Description: "Review */ code", Handler: "commands/review.ts",
		Parameters: []core.Parameter{{Name: "file", Type: "string", Description: "Target", Required: true}}}}
	p.Agents = []Agent{{Name: "helper", Provider: "anthropic", Model: "m", Instructions: "Help.\n", Tools: []string{"read"}}}

	out := t.TempDir()
	require.NoError(t, Serialize(p, out))
	firstConfig := readFile(t, out, ConfigFile)
	firstHooks := readFile(t, out, ".opencode/plugins/hooks.ts")
	require.NoError(t, Serialize(p, out))
	assert.Equal(t, firstConfig, readFile(t, out, ConfigFile))
	assert.Equal(t, firstHooks, readFile(t, out, ".opencode/plugins/hooks.ts"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(firstConfig), &decoded))
	assert.NotContains(t, firstConfig, "null")
	assert.NotContains(t, firstConfig, "instructions")

	assert.Equal(t, "# Demo\n", readFile(t, out, "instructions/demo-skill/README.md"))
	assert.True(t, strings.HasPrefix(readFile(t, out, "instructions/triggered/README.md"), "---\ntriggers: [a, b]\n---\n"))

	back, warnings := Parse(out)
	assert.Empty(t, warnings)
	assert.Equal(t, p.Hooks, back.Hooks)
	assert.Equal(t, p.MCPServers, back.MCPServers)
	require.Len(t, back.Commands, 1)
	assert.Equal(t, p.Commands[0].Parameters, back.Commands[0].Parameters)
	assert.Equal(t, "commands/review.ts", back.Commands[0].Handler)
	require.Len(t, back.Agents, 1)
	assert.Equal(t, p.Agents[0], back.Agents[0])
	assert.Equal(t, []string{"a", "b"}, back.Instructions[1].Triggers)
}

func TestGenerateCommandStub_EscapesComments(t *testing.T) {
	src, err := GenerateCommandStub(Command{Name: "x", Description: "ends */ here\nnext"})
	require.NoError(t, err)
	assert.True(t, IsGenerated(src))
	assert.Greater(t, strings.Index(src, "*/"), strings.Index(src, "Converted command stub"))
	assert.Equal(t, "ends */ here\\nnext", ExtractDescription(src))
}

func TestGenerateHooksPlugin_SkipsEventsWithoutSDKMapping(t *testing.T) {
	src, err := GenerateHooksPlugin([]Hook{
		{Event: "afterPrompt", Action: CommandAction("nope")},
		{Event: "sessionEnd", Action: CommandAction("bye")},
	})
	require.NoError(t, err)
	assert.Contains(t, src, `"session.deleted"`)
	assert.NotContains(t, src, "nope")
}

func TestHook_JSONShape(t *testing.T) {
	data, err := json.Marshal(Hook{Event: "idle", Action: HandlerAction("./h.ts")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"idle","handler":"./h.ts"}`, string(data))

	var h Hook
	assert.Error(t, json.Unmarshal([]byte(`{"event":"idle"}`), &h))
}

func TestParse_NonLocalNamesAreSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ConfigFile, `{
  "name": "sample",
  "commands": [{"name": "../../escaped"}, {"name": "ok"}],
  "agents": {"../evil": {"description": "x"}, "good": {"description": "y"}}
}`)

	p, warnings := Parse(root)
	require.Len(t, p.Commands, 1)
	assert.Equal(t, "ok", p.Commands[0].Name)
	require.Len(t, p.Agents, 1)
	assert.Equal(t, "good", p.Agents[0].Name)

	var skipped int
	for _, w := range warnings {
		if w.Severity == core.SeverityWarning && strings.Contains(w.Message, "not a single path segment") {
			skipped++
		}
	}
	assert.Equal(t, 2, skipped)
}

func TestSerialize_RejectsNonLocalNames(t *testing.T) {
	p := NewPlugin("demo")
	p.Agents = []Agent{{Name: "../../escaped"}}
	out := filepath.Join(t.TempDir(), "work", "out")

	err := Serialize(p, out)
	require.ErrorIs(t, err, core.ErrInvalidName)
	assert.NoFileExists(t, filepath.Join(out, "..", "escaped.md"))
}

func TestSerialize_RemovesStaleComponents(t *testing.T) {
	out := t.TempDir()
	p := NewPlugin("demo")
	p.Instructions = []Instruction{{Name: "keep", Content: "keep"}, {Name: "gone", Content: "gone"}}
	p.Commands = []Command{{Name: "old"}}
	p.Hooks = []Hook{{Event: "beforeTool", Action: CommandAction("echo")}}
	require.NoError(t, Serialize(p, out))
	writeFile(t, out, ".opencode/plugins/custom.ts", "export {}\n")
	writeFile(t, out, core.SyncStateFile, "{}")

	next := NewPlugin("demo")
	next.Instructions = []Instruction{{Name: "keep", Content: "keep"}}
	require.NoError(t, Serialize(next, out))

	assert.FileExists(t, filepath.Join(out, InstructionsDir, "keep", InstructionFile))
	assert.NoDirExists(t, filepath.Join(out, InstructionsDir, "gone"))
	assert.NoFileExists(t, filepath.Join(out, CommandsDir, "old.ts"))
	assert.NoFileExists(t, filepath.Join(out, ".opencode/plugins/hooks.ts"))
	assert.FileExists(t, filepath.Join(out, ".opencode/plugins/custom.ts"))
	assert.FileExists(t, filepath.Join(out, core.SyncStateFile))
}
