package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/engine"
	"github.com/egoavara/plugin-convert/internal/marketplace"
	"github.com/egoavara/plugin-convert/internal/validate"
)

func TestResult_ListsWarningsAndChanges(t *testing.T) {
	r := (&core.Result{
		Direction:  core.ClaudeToOpenCode,
		Mode:       core.ModeFull,
		SourcePath: "src",
		OutputPath: "out",
		Warnings: []core.Warning{
			core.Info(core.ComponentHooks, "hook event 'Stop' maps one-way").WithSuggestion("use SessionEnd"),
			core.Error(core.ComponentPlugin, "failed to write output"),
		},
		ChangesApplied: []core.ChangeRecord{
			{Type: core.ChangeAdded, Component: core.ComponentSkills, TargetPath: "out/instructions", Description: "2 skills written"},
		},
	}).Finish()

	var buf bytes.Buffer
	Result(&buf, r)
	out := buf.String()

	assert.Contains(t, out, "hook event 'Stop' maps one-way")
	assert.Contains(t, out, "use SessionEnd")
	assert.Contains(t, out, "[plugin]")
	assert.Contains(t, out, "2 skills written")
	assert.Contains(t, out, "out/instructions")
}

func TestBatch_Summary(t *testing.T) {
	ok := (&core.Result{Direction: core.ClaudeToOpenCode}).Finish()
	failed := (&core.Result{Warnings: []core.Warning{core.Error(core.ComponentPlugin, "boom")}}).Finish()

	var buf bytes.Buffer
	Batch(&buf, &marketplace.Report{
		Target:       "dist",
		TotalPlugins: 3,
		Converted:    1,
		Failed:       1,
		Skipped:      1,
		DurationMS:   1500,
		SourceCommit: "0123456789abcdef",
		Results: []marketplace.PluginReport{
			{Plugin: "alpha", Result: ok, Validation: &validate.Result{Valid: false, Errors: []string{"opencode.json: name is required"}}},
			{Plugin: "beta", Result: failed},
			{Plugin: "gamma", Skipped: true},
		},
	})
	out := buf.String()

	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "name is required")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "gamma")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "0123456")
}

func TestValidationAndStatus(t *testing.T) {
	var buf bytes.Buffer
	Validation(&buf, validate.Result{Path: "p", Valid: false, Errors: []string{"bad manifest"}, Warnings: []string{"no components"}})
	assert.Contains(t, buf.String(), "bad manifest")
	assert.Contains(t, buf.String(), "no components")

	buf.Reset()
	last := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	Status(&buf, &engine.Status{
		Direction: core.OpenCodeToClaude,
		HasState:  true,
		LastSync:  &last,
		Changed:   []core.ChangeRecord{{Type: core.ChangeModified, Component: core.ComponentCommands, Description: "commands changed"}},
	})
	assert.Contains(t, buf.String(), "opencode-to-claude")
	assert.Contains(t, buf.String(), "commands changed")
}

func TestEvents(t *testing.T) {
	var buf bytes.Buffer
	Events(&buf, core.HookEventMappings)
	out := buf.String()
	assert.Contains(t, out, "PreToolUse")
	assert.Contains(t, out, "beforeTool")
	assert.Contains(t, out, "→")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, map[string]int{"a": 1}))
	var decoded map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 1, decoded["a"])
}
