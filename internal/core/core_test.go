package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHookEventMappings_ReverseLookupPrefersBidirectional(t *testing.T) {
	m, ok := LookupOpenCodeEvent("sessionEnd")
	require.True(t, ok)
	assert.Equal(t, "SessionEnd", m.Claude)

	stop, ok := LookupClaudeEvent("Stop")
	require.True(t, ok)
	assert.False(t, stop.Bidirectional)
	assert.Equal(t, "sessionEnd", stop.OpenCode)
}

func TestHookEventMappings_EveryRowResolves(t *testing.T) {
	for _, m := range HookEventMappings {
		got, ok := LookupClaudeEvent(m.Claude)
		require.True(t, ok, m.Claude)
		assert.Equal(t, m.OpenCode, got.OpenCode)

		_, ok = LookupOpenCodeEvent(m.OpenCode)
		assert.True(t, ok, m.OpenCode)
		assert.True(t, IsOpenCodeEvent(m.OpenCode))
	}

	_, ok := LookupOpenCodeEvent("afterPrompt")
	assert.False(t, ok)
	assert.True(t, IsOpenCodeEvent("afterPrompt"))
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"claude-to-opencode", ClaudeToOpenCode, false},
		{"opencode-to-claude", OpenCodeToClaude, false},
		{"", DirectionAuto, false},
		{"sideways", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	assert.Equal(t, FormatOpenCode, ClaudeToOpenCode.TargetFormat())
	assert.Equal(t, FormatClaude, ClaudeToOpenCode.SourceFormat())
	assert.Equal(t, OpenCodeToClaude, DirectionFrom(FormatOpenCode))
}

func TestAuthor_UnmarshalStringOrObject(t *testing.T) {
	var a Author
	require.NoError(t, json.Unmarshal([]byte(`"Jane"`), &a))
	assert.Equal(t, "Jane", a.Name)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"Jo","email":"jo@example.com"}`), &a))
	assert.Equal(t, Author{Name: "Jo", Email: "jo@example.com"}, a)
}

func TestResult_Finish(t *testing.T) {
	r := &Result{}
	r.AddWarnings(Info(ComponentHooks, "note"), Warn(ComponentMCP, "lossy"))
	assert.True(t, r.Finish().Success)
	assert.NotNil(t, r.ChangesApplied)

	r.AddWarnings(Error(ComponentPlugin, "boom"))
	assert.False(t, r.Finish().Success)
	assert.Equal(t, 1, CountBySeverity(r.Warnings)[SeverityError])
}

func TestUpsert_LastWriteWins(t *testing.T) {
	type item struct{ name, value string }
	key := func(i item) string { return i.name }

	items, replaced := Upsert(nil, item{"a", "1"}, key)
	assert.False(t, replaced)
	items, _ = Upsert(items, item{"b", "2"}, key)
	items, replaced = Upsert(items, item{"a", "3"}, key)

	assert.True(t, replaced)
	require.Len(t, items, 2)
	assert.Equal(t, "3", items[0].value)
}
