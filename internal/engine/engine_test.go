package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/egoavara/plugin-convert/internal/claude"
	"github.com/egoavara/plugin-convert/internal/core"
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

func quietEngine(opts ...Option) *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(append([]Option{WithLogger(logger)}, opts...)...)
}

func demoPlugin(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "demo-src")
	writeFile(t, root, ".claude-plugin/plugin.json", `{"name":"demo"}`)
	writeFile(t, root, "hooks/hooks.json", `{"hooks":{"PreToolUse":[{"matcher":"Bash","hooks":[{"type":"command","command":"echo pre"}]}]}}`)
	writeFile(t, root, "skills/demo-skill/SKILL.md", "# Demo\n")
	return root
}

func hasInfo(ws []core.Warning, text string) bool {
	for _, w := range ws {
		if w.Severity == core.SeverityInfo && strings.Contains(w.Message, text) {
			return true
		}
	}
	return false
}

func TestConvert_DemoScenario(t *testing.T) {
	src := demoPlugin(t)
	out := filepath.Join(t.TempDir(), "out")

	res := quietEngine().Convert(context.Background(), Request{Source: src, Output: out, Direction: core.ClaudeToOpenCode, Mode: core.ModeFull})
	require.True(t, res.Success, "%+v", res.Warnings)
	assert.NotEmpty(t, res.RunID)

	var cfg struct {
		Name  string `json:"name"`
		Hooks []struct {
			Event   string `json:"event"`
			Pattern string `json:"pattern"`
			Command string `json:"command"`
		} `json:"hooks"`
	}
	require.NoError(t, json.Unmarshal([]byte(readFile(t, out, "opencode.json")), &cfg))
	assert.Equal(t, "demo", cfg.Name)
	require.Len(t, cfg.Hooks, 1)
	assert.Equal(t, "beforeTool", cfg.Hooks[0].Event)
	assert.Equal(t, "Bash", cfg.Hooks[0].Pattern)
	assert.Equal(t, "echo pre", cfg.Hooks[0].Command)
	assert.Equal(t, "# Demo\n", readFile(t, out, "instructions/demo-skill/README.md"))
	assert.FileExists(t, filepath.Join(out, core.SyncStateFile))

	state, err := StoreFor(out).Load()
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, core.ClaudeToOpenCode, state.Direction)
	assert.Equal(t, Fingerprint(src), state.SourceHash)
}

func TestConvert_DiffHasNoSideEffects(t *testing.T) {
	src := demoPlugin(t)
	out := filepath.Join(t.TempDir(), "out")

	res := quietEngine().Convert(context.Background(), Request{Source: src, Output: out, Direction: core.ClaudeToOpenCode, Mode: core.ModeDiff})
	assert.True(t, res.Success)
	assert.NoDirExists(t, out)
	require.Len(t, res.ChangesApplied, 2)
	assert.Equal(t, core.ComponentHooks, res.ChangesApplied[0].Component)
	assert.Equal(t, core.ComponentSkills, res.ChangesApplied[1].Component)
	assert.Contains(t, res.ChangesApplied[1].Description, "instructions")
}

func TestConvert_SyncWithoutStateMatchesFull(t *testing.T) {
	src := demoPlugin(t)
	fullOut := filepath.Join(t.TempDir(), "full")
	syncOut := filepath.Join(t.TempDir(), "sync")
	e := quietEngine()

	full := e.Convert(context.Background(), Request{Source: src, Output: fullOut, Direction: core.ClaudeToOpenCode, Mode: core.ModeFull})
	sync := e.Convert(context.Background(), Request{Source: src, Output: syncOut, Direction: core.ClaudeToOpenCode, Mode: core.ModeSync})

	assert.True(t, sync.Success)
	assert.True(t, hasInfo(sync.Warnings, "no previous sync state"))
	assert.Equal(t, readFile(t, fullOut, "opencode.json"), readFile(t, syncOut, "opencode.json"))
	assert.Equal(t, len(full.ChangesApplied), len(sync.ChangesApplied))
}

func TestConvert_SyncUnchangedIsNoop(t *testing.T) {
	src := demoPlugin(t)
	out := filepath.Join(t.TempDir(), "out")
	e := quietEngine()

	require.True(t, e.Convert(context.Background(), Request{Source: src, Output: out, Direction: core.ClaudeToOpenCode}).Success)
	res := e.Convert(context.Background(), Request{Source: src, Output: out, Direction: core.ClaudeToOpenCode, Mode: core.ModeSync})

	assert.True(t, res.Success)
	assert.Empty(t, res.ChangesApplied)
	assert.True(t, hasInfo(res.Warnings, "nothing to do"))
}

func TestConvert_SyncReportsChangedComponents(t *testing.T) {
	src := demoPlugin(t)
	out := filepath.Join(t.TempDir(), "out")
	e := quietEngine()

	require.True(t, e.Convert(context.Background(), Request{Source: src, Output: out, Direction: core.ClaudeToOpenCode}).Success)

	skill := filepath.Join(src, "skills", "demo-skill", "SKILL.md")
	require.NoError(t, os.WriteFile(skill, []byte("# Demo, revised\n"), 0644))
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(skill, later, later))

	st, err := e.Status(src, out, core.DirectionAuto)
	require.NoError(t, err)
	assert.False(t, st.UpToDate)
	require.Len(t, st.Changed, 1)
	assert.Equal(t, core.ComponentSkills, st.Changed[0].Component)

	res := e.Convert(context.Background(), Request{Source: src, Output: out, Direction: core.ClaudeToOpenCode, Mode: core.ModeSync})
	require.True(t, res.Success)
	require.NotEmpty(t, res.ChangesApplied)
	assert.Equal(t, core.ChangeModified, res.ChangesApplied[0].Type)
	assert.Equal(t, core.ComponentSkills, res.ChangesApplied[0].Component)
	assert.Equal(t, "# Demo, revised\n", readFile(t, out, "instructions/demo-skill/README.md"))

	st, err = e.Status(src, out, core.DirectionAuto)
	require.NoError(t, err)
	assert.True(t, st.UpToDate)
}

func TestConvert_AutoDirectionAndFailures(t *testing.T) {
	src := demoPlugin(t)
	res := quietEngine().Convert(context.Background(), Request{Source: src, Output: filepath.Join(t.TempDir(), "o"), Mode: core.ModeDiff})
	assert.Equal(t, core.ClaudeToOpenCode, res.Direction)

	empty := t.TempDir()
	_, _, err := ResolveDirection(empty, core.DirectionAuto)
	assert.True(t, errors.Is(err, ErrUnknownFormat))

	res = quietEngine().Convert(context.Background(), Request{Source: empty, Output: t.TempDir()})
	assert.False(t, res.Success)

	_, _, err = ResolveDirection(filepath.Join(empty, "nope"), core.ClaudeToOpenCode)
	assert.True(t, errors.Is(err, ErrSourceNotFound))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res = quietEngine().Convert(ctx, Request{Source: src, Output: t.TempDir()})
	assert.False(t, res.Success)
}

func TestConvert_CommandParametersRoundTrip(t *testing.T) {
	src := filepath.Join(t.TempDir(), "cmds")
	writeFile(t, src, ".claude-plugin/plugin.json", `{"name":"cmds"}`)
	writeFile(t, src, "commands/review.md", "---\nname: review\ndescription: Review a file\nparameters:\n  - name: file\n    type: string\n    description: Target file\n    required: true\n  - name: depth\n    type: number\n---\nReview it.\n")

	e := quietEngine()
	mid := filepath.Join(t.TempDir(), "mid")
	back := filepath.Join(t.TempDir(), "back")
	require.True(t, e.Convert(context.Background(), Request{Source: src, Output: mid, Direction: core.ClaudeToOpenCode}).Success)
	require.True(t, e.Convert(context.Background(), Request{Source: mid, Output: back, Direction: core.OpenCodeToClaude}).Success)

	original, _ := claude.Parse(src)
	converted, _ := claude.Parse(back)
	require.Len(t, converted.Commands, 1)
	assert.Equal(t, original.Commands[0].Parameters, converted.Commands[0].Parameters)
	assert.Equal(t, "cmds", converted.Manifest.Name)
}

type mockOverlay struct {
	mock.Mock
}

func (m *mockOverlay) Enhance(ctx context.Context, req OverlayRequest) (*OverlayResult, error) {
	args := m.Called(ctx, req)
	out, _ := args.Get(0).(*OverlayResult)
	return out, args.Error(1)
}

func TestConvert_OverlayFilesAndWarnings(t *testing.T) {
	src := demoPlugin(t)
	out := filepath.Join(t.TempDir(), "out")

	o := new(mockOverlay)
	o.On("Enhance", mock.Anything, mock.MatchedBy(func(r OverlayRequest) bool {
		return r.Direction == core.ClaudeToOpenCode && assert.ObjectsAreEqual([]string{core.ComponentHooks, core.ComponentSkills}, r.Components)
	})).Return(&OverlayResult{
		Files: map[string][]byte{
			".opencode/plugins/hooks.ts": []byte("// enhanced\n"),
			"../escape.txt":              []byte("no"),
		},
		Warnings: []core.Warning{core.Info(core.ComponentHooks, "enhanced hooks")},
	}, nil).Once()

	res := quietEngine(WithOverlay(o)).Convert(context.Background(), Request{Source: src, Output: out, Direction: core.ClaudeToOpenCode})
	o.AssertExpectations(t)

	assert.True(t, res.Success)
	assert.Equal(t, "// enhanced\n", readFile(t, out, ".opencode/plugins/hooks.ts"))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(out), "escape.txt"))
	assert.True(t, hasInfo(res.Warnings, "enhanced hooks"))
}

func TestConvert_OverlayFailureKeepsBaseOutput(t *testing.T) {
	src := demoPlugin(t)
	out := filepath.Join(t.TempDir(), "out")

	o := new(mockOverlay)
	o.On("Enhance", mock.Anything, mock.Anything).Return(nil, errors.New("provider unavailable"))

	res := quietEngine(WithOverlay(o)).Convert(context.Background(), Request{Source: src, Output: out, Direction: core.ClaudeToOpenCode})
	assert.True(t, res.Success)
	assert.FileExists(t, filepath.Join(out, "opencode.json"))

	var found bool
	for _, w := range res.Warnings {
		found = found || (w.Severity == core.SeverityWarning && strings.Contains(w.Message, "provider unavailable"))
	}
	assert.True(t, found)
}

func TestFingerprint(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, MissingFingerprint, Fingerprint(filepath.Join(root, "nope")))

	writeFile(t, root, "a.txt", "a")
	before := Fingerprint(root)
	writeFile(t, root, core.SyncStateFile, "{}")
	assert.Equal(t, before, Fingerprint(root))

	writeFile(t, root, "b.txt", "b")
	assert.NotEqual(t, before, Fingerprint(root))
}

func TestConvert_RemovedSkillIsDeletedFromOutput(t *testing.T) {
	for _, mode := range []core.Mode{core.ModeFull, core.ModeSync} {
		t.Run(string(mode), func(t *testing.T) {
			src := demoPlugin(t)
			writeFile(t, src, "skills/gone/SKILL.md", "# Gone\n")
			out := filepath.Join(t.TempDir(), "out")
			e := quietEngine()

			require.True(t, e.Convert(context.Background(), Request{Source: src, Output: out, Direction: core.ClaudeToOpenCode}).Success)
			require.FileExists(t, filepath.Join(out, "instructions", "gone", "README.md"))

			require.NoError(t, os.RemoveAll(filepath.Join(src, "skills", "gone")))
			res := e.Convert(context.Background(), Request{Source: src, Output: out, Direction: core.ClaudeToOpenCode, Mode: mode})
			require.True(t, res.Success, "%+v", res.Warnings)

			assert.NoDirExists(t, filepath.Join(out, "instructions", "gone"))
			assert.FileExists(t, filepath.Join(out, "instructions", "demo-skill", "README.md"))
			assert.FileExists(t, filepath.Join(out, core.SyncStateFile))
		})
	}
}

func TestConvert_NamesCannotEscapeOutput(t *testing.T) {
	src := demoPlugin(t)
	writeFile(t, src, "commands/x.md", "---\nname: ../../../escaped\n---\nBody\n")
	base := t.TempDir()
	out := filepath.Join(base, "work", "out")

	res := quietEngine().Convert(context.Background(), Request{Source: src, Output: out, Direction: core.ClaudeToOpenCode})
	require.True(t, res.Success)
	assert.NoFileExists(t, filepath.Join(base, "escaped.ts"))
	assert.NoFileExists(t, filepath.Join(out, "commands", "escaped.ts"))

	var skipped bool
	for _, w := range res.Warnings {
		if w.Severity == core.SeverityWarning && strings.Contains(w.Message, "escaped") {
			skipped = true
		}
	}
	assert.True(t, skipped)
}

func TestConvert_OutputEqualToSourceFails(t *testing.T) {
	src := demoPlugin(t)
	res := quietEngine().Convert(context.Background(), Request{Source: src, Output: src, Direction: core.ClaudeToOpenCode})
	assert.False(t, res.Success)
	assert.FileExists(t, filepath.Join(src, "skills", "demo-skill", "SKILL.md"))
}

func TestConvert_QuietAtInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	src := demoPlugin(t)

	res := New(WithLogger(logger)).Convert(context.Background(), Request{Source: src, Output: filepath.Join(t.TempDir(), "out"), Direction: core.ClaudeToOpenCode})
	require.True(t, res.Success)
	assert.Empty(t, buf.String())
}
