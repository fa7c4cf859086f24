package validate

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

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  core.Format
	}{
		{"claude manifest", map[string]string{".claude-plugin/plugin.json": `{"name":"x"}`}, core.FormatClaude},
		{"skills only", map[string]string{"skills/a/SKILL.md": "a"}, core.FormatClaude},
		{"opencode config", map[string]string{"opencode.json": `{"name":"x"}`}, core.FormatOpenCode},
		{"opencode yaml", map[string]string{"opencode.yaml": "name: x"}, core.FormatOpenCode},
		{"instructions only", map[string]string{"instructions/a.md": "a"}, core.FormatOpenCode},
		{"both markers", map[string]string{".claude-plugin/plugin.json": "{}", "opencode.json": "{}"}, core.FormatClaude},
		{"empty", nil, core.FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for rel, content := range tt.files {
				writeFile(t, root, rel, content)
			}
			assert.Equal(t, tt.want, DetectFormat(root))
		})
	}
}

func TestValidate_Claude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".claude-plugin/plugin.json", `{"version":"1"}`)
	writeFile(t, root, "hooks/hooks.json", `{"hooks":{"Bogus":[]}}`)
	writeFile(t, root, ".mcp.json", `{`)

	r := Validate(root, core.FormatClaude)
	assert.False(t, r.Valid)
	assert.Len(t, r.Errors, 2)
	assert.Contains(t, r.Errors[0], `"name"`)
	assert.Contains(t, r.Warnings, "hooks.json: unknown hook event 'Bogus'")
}

func TestValidate_OpenCode(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "opencode.json", `{
  "name": "x",
  "hooks": [{"event": "beforeTool", "command": "a"}, {"event": "nope", "command": "b"}, {"event": "idle"}],
  "mcpServers": {"api": {"transport": "http"}, "ok": {"command": "run"}}
}`)
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".opencode", "plugins"), 0755))

	r := Validate(root, core.FormatUnknown)
	assert.Equal(t, core.FormatOpenCode, r.Format)
	assert.False(t, r.Valid)
	assert.Len(t, r.Errors, 2)
	assert.Contains(t, r.Errors[1], "'api'")
	assert.Len(t, r.Warnings, 2)
}

func TestValidate_UnknownFormat(t *testing.T) {
	r := Validate(t.TempDir(), core.FormatUnknown)
	assert.False(t, r.Valid)
	assert.NotNil(t, r.Warnings)
}
