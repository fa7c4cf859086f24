package claude

import (
	"os"
	"path/filepath"
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

func samplePlugin(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, ".claude-plugin/plugin.json", `{"name":"demo","version":"1.0.0","author":{"name":"Dev"}}`)
	writeFile(t, root, "skills/demo-skill/SKILL.md", "# Demo\n")
	writeFile(t, root, "skills/demo-skill/references/api.md", "ref")
	writeFile(t, root, "commands/review.md", "---\nname: review\ndescription: Review code\naliases: [rv]\nparameters:\n  - name: file\n    type: string\n    description: Target file\n    required: true\n---\nReview the file.\n")
	writeFile(t, root, "agents/helper.md", "# Helper\nHelps.\n")
	writeFile(t, root, "hooks/hooks.json", `{"hooks":{"PreToolUse":[{"matcher":"Bash","hooks":[{"type":"command","command":"echo pre"}]}]}}`)
	writeFile(t, root, ".mcp.json", `{"mcpServers":{"db":{"command":"${CLAUDE_PLUGIN_ROOT}/bin/db","args":["--port","5432"]}}}`)
	return root
}

func TestParse_FullPlugin(t *testing.T) {
	root := samplePlugin(t)

	p, warnings := Parse(root)
	assert.Empty(t, warnings)

	assert.Equal(t, "demo", p.Manifest.Name)
	require.NotNil(t, p.Manifest.Author)
	assert.Equal(t, "Dev", p.Manifest.Author.Name)

	require.Len(t, p.Skills, 1)
	assert.Equal(t, "demo-skill", p.Skills[0].Name)
	assert.Equal(t, "# Demo\n", p.Skills[0].Content)
	assert.Equal(t, []string{"references/api.md"}, p.Skills[0].References)

	require.Len(t, p.Commands, 1)
	cmd := p.Commands[0]
	assert.Equal(t, "review", cmd.Name)
	assert.Equal(t, []string{"rv"}, cmd.Aliases)
	assert.Equal(t, "Review the file.\n", cmd.Content)
	assert.Equal(t, []core.Parameter{{Name: "file", Type: "string", Description: "Target file", Required: true}}, cmd.Parameters)

	require.Len(t, p.Agents, 1)
	assert.Equal(t, "helper", p.Agents[0].Name)

	require.Len(t, p.Hooks["PreToolUse"], 1)
	assert.Equal(t, "Bash", p.Hooks["PreToolUse"][0].Matcher)
	assert.Equal(t, 1, p.HookCount())

	require.Contains(t, p.MCPServers, "db")
	assert.Equal(t, []string{"--port", "5432"}, p.MCPServers["db"].Args)
}

func TestParse_MissingManifestFallsBackToDirName(t *testing.T) {
	root := filepath.Join(t.TempDir(), "my-plugin")
	require.NoError(t, os.MkdirAll(root, 0755))

	p, warnings := Parse(root)
	assert.Empty(t, warnings)
	assert.Equal(t, "my-plugin", p.Manifest.Name)
	assert.Empty(t, p.Skills)
	assert.Empty(t, p.Hooks)
}

func TestParse_MalformedFilesAreSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".claude-plugin/plugin.json", `{"name":`)
	writeFile(t, root, "hooks/hooks.json", `not json`)
	writeFile(t, root, "skills/ok/SKILL.md", "ok")

	p, warnings := Parse(root)
	require.Len(t, warnings, 2)
	for _, w := range warnings {
		assert.Equal(t, core.SeverityWarning, w.Severity)
	}
	assert.Equal(t, filepath.Base(root), p.Manifest.Name)
	require.Len(t, p.Skills, 1)
}

func TestParse_DuplicateSkillLastWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "skills/dup/SKILL.md", "first")
	writeFile(t, root, "skills/dup.md", "second")

	p, _ := Parse(root)
	require.Len(t, p.Skills, 1)
	assert.Equal(t, "second", p.Skills[0].Content)
}

func TestParse_SettingsHooksOverrideHooksFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "hooks/hooks.json", `{"hooks":{"Stop":[{"hooks":[{"type":"command","command":"a"}]}]}}`)
	writeFile(t, root, "settings.json", `{"env":{"K":"V"},"hooks":{"Stop":[{"hooks":[{"type":"command","command":"b"}]}]}}`)

	p, _ := Parse(root)
	require.Len(t, p.Hooks["Stop"], 1)
	assert.Equal(t, "b", p.Hooks["Stop"][0].Hooks[0].Command)
	require.NotNil(t, p.Settings)
	assert.Equal(t, "V", p.Settings.Env["K"])
}

func TestParseMCPJSON_DirectFormat(t *testing.T) {
	servers, err := ParseMCPJSON([]byte(`{"a":{"command":"run"},"mcpServers":{}}`))
	require.NoError(t, err)
	assert.Len(t, servers, 1)
	assert.Equal(t, "run", servers["a"].Command)

	_, err = ParseMCPJSON([]byte(`[`))
	assert.Error(t, err)
}

func TestSerialize_RoundTripAndIdempotent(t *testing.T) {
	src := samplePlugin(t)
	p, _ := Parse(src)
	p.Settings = &Settings{Env: map[string]string{"A": "1"}}

	out := t.TempDir()
	require.NoError(t, Serialize(p, out))
	first := map[string]string{
		".claude-plugin/plugin.json": readFile(t, out, ".claude-plugin/plugin.json"),
		"hooks/hooks.json":           readFile(t, out, "hooks/hooks.json"),
		".mcp.json":                  readFile(t, out, ".mcp.json"),
		"settings.json":              readFile(t, out, "settings.json"),
		"commands/review.md":         readFile(t, out, "commands/review.md"),
	}

	require.NoError(t, Serialize(p, out))
	for rel, content := range first {
		assert.Equal(t, content, readFile(t, out, rel), rel)
	}

	back, warnings := Parse(out)
	assert.Empty(t, warnings)
	assert.Equal(t, p.Manifest, back.Manifest)
	assert.Equal(t, p.Commands[0].Parameters, back.Commands[0].Parameters)
	assert.Equal(t, p.Commands[0].Content, back.Commands[0].Content)
	assert.Equal(t, p.Hooks, back.Hooks)
	assert.Equal(t, p.MCPServers, back.MCPServers)
	assert.Equal(t, "# Demo\n", back.Skills[0].Content)
}

func TestSerialize_EmptyPluginWritesSkeletonOnly(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, Serialize(NewPlugin("empty"), out))

	for _, dir := range []string{ManifestDir, SkillsDir, CommandsDir, AgentsDir, HooksDir} {
		assert.DirExists(t, filepath.Join(out, dir))
	}
	assert.NoFileExists(t, filepath.Join(out, HooksDir, HooksFile))
	assert.NoFileExists(t, filepath.Join(out, MCPFile))
	assert.JSONEq(t, `{"name":"empty"}`, readFile(t, out, ".claude-plugin/plugin.json"))
}

func TestMCPServer_MapStringsCoversEveryField(t *testing.T) {
	s := MCPServer{Command: "x", Args: []string{"x"}, Env: map[string]string{"k": "x"}, URL: "x"}
	got := s.MapStrings(func(v string) string { return v + "!" })
	assert.Equal(t, "x!", got.Command)
	assert.Equal(t, []string{"x!"}, got.Args)
	assert.Equal(t, "x!", got.Env["k"])
	assert.Equal(t, "x!", got.URL)
	assert.Equal(t, "x", s.Args[0])
}

func TestParse_CommandNameOutsideDirectoryIsSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "commands/x.md", "---\nname: ../../../escaped\n---\nBody\n")
	writeFile(t, root, "commands/ok.md", "Body\n")

	p, warnings := Parse(root)
	require.Len(t, p.Commands, 1)
	assert.Equal(t, "ok", p.Commands[0].Name)
	require.Len(t, warnings, 1)
	assert.Equal(t, core.SeverityWarning, warnings[0].Severity)
	assert.Contains(t, warnings[0].Message, "../../../escaped")
}

func TestSerialize_RejectsNonLocalNames(t *testing.T) {
	for _, name := range []string{"../escaped", "a/b", `a\b`, "..", ""} {
		p := NewPlugin("demo")
		p.Commands = []Command{{Name: name}}
		out := filepath.Join(t.TempDir(), "work", "out")

		err := Serialize(p, out)
		assert.ErrorIs(t, err, core.ErrInvalidName, name)
		assert.NoFileExists(t, filepath.Join(out, "..", "escaped.md"))
	}
}

func TestSerialize_RemovesStaleComponents(t *testing.T) {
	out := t.TempDir()
	p := NewPlugin("demo")
	p.Skills = []Skill{{Name: "keep", Content: "keep"}, {Name: "gone", Content: "gone"}}
	p.Agents = []Agent{{Name: "old", Content: "old"}}
	p.Hooks["Stop"] = []HookMatcher{{Hooks: []HookCommand{{Type: "command", Command: "x"}}}}
	p.MCPServers["db"] = MCPServer{Command: "db"}
	require.NoError(t, Serialize(p, out))
	writeFile(t, out, core.SyncStateFile, "{}")

	next := NewPlugin("demo")
	next.Skills = []Skill{{Name: "keep", Content: "keep"}}
	require.NoError(t, Serialize(next, out))

	assert.FileExists(t, filepath.Join(out, SkillsDir, "keep", SkillFile))
	assert.NoDirExists(t, filepath.Join(out, SkillsDir, "gone"))
	assert.NoFileExists(t, filepath.Join(out, AgentsDir, "old.md"))
	assert.NoFileExists(t, filepath.Join(out, HooksDir, HooksFile))
	assert.NoFileExists(t, filepath.Join(out, MCPFile))
	assert.FileExists(t, filepath.Join(out, core.SyncStateFile))
}
