// Package engine runs plugin conversions in full, sync and diff modes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/egoavara/plugin-convert/internal/claude"
	"github.com/egoavara/plugin-convert/internal/convert"
	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/fsutil"
	"github.com/egoavara/plugin-convert/internal/opencode"
	"github.com/egoavara/plugin-convert/internal/validate"
)

var (
	// ErrUnknownFormat is returned when the source format cannot be detected
	ErrUnknownFormat = errors.New("unable to detect plugin format")
	// ErrSourceNotFound is returned when the source directory does not exist
	ErrSourceNotFound = errors.New("source directory not found")
)

// Request is a single conversion job
type Request struct {
	Source    string
	Output    string
	Direction core.Direction
	Mode      core.Mode
}

// Engine converts plugins. It keeps no per-run state and is safe for concurrent use.
type Engine struct {
	logger  *slog.Logger
	overlay Overlay
	options convert.Options
	now     func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithOverlay installs an enhanced-conversion overlay
func WithOverlay(o Overlay) Option {
	return func(e *Engine) {
		e.overlay = o
	}
}

// WithAgentDefaults sets the provider and model given to agents that have none
func WithAgentDefaults(d convert.AgentDefaults) Option {
	return func(e *Engine) {
		e.options.Agents = d
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:  slog.Default(),
		options: convert.Options{Agents: convert.DefaultAgentDefaults},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Convert runs one conversion with a default engine
func Convert(ctx context.Context, source, output string, direction core.Direction, mode core.Mode) *core.Result {
	return New().Convert(ctx, Request{Source: source, Output: output, Direction: direction, Mode: mode})
}

// Convert runs one conversion. Problems are reported on the result, never returned.
func (e *Engine) Convert(ctx context.Context, req Request) *core.Result {
	if req.Mode == "" {
		req.Mode = core.ModeFull
	}
	res := &core.Result{
		RunID:      uuid.NewString(),
		Direction:  req.Direction,
		Mode:       req.Mode,
		SourcePath: req.Source,
		OutputPath: req.Output,
		Timestamp:  e.now().UTC(),
	}
	log := e.logger.With("run", res.RunID, "source", req.Source)

	direction, ws, err := ResolveDirection(req.Source, req.Direction)
	res.AddWarnings(ws...)
	if err != nil {
		res.AddWarnings(core.Error(core.ComponentPlugin, err.Error()))
		return res.Finish()
	}
	res.Direction = direction
	req.Direction = direction
	log.Debug("conversion started", "direction", direction, "mode", req.Mode, "output", req.Output)

	if err := ctx.Err(); err != nil {
		res.AddWarnings(core.Error(core.ComponentPlugin, fmt.Sprintf("conversion cancelled: %v", err)))
		return res.Finish()
	}

	switch req.Mode {
	case core.ModeDiff:
		e.diff(res, req)
	case core.ModeSync:
		e.sync(ctx, res, req)
	case core.ModeFull:
		e.full(ctx, res, req)
	default:
		res.AddWarnings(core.Error(core.ComponentPlugin, fmt.Sprintf("unknown mode '%s'", req.Mode)))
	}

	res.Finish()
	log.Debug("conversion finished", "success", res.Success, "warnings", len(res.Warnings), "changes", len(res.ChangesApplied))
	return res
}

// ResolveDirection checks the source directory and resolves the auto direction.
// An explicit direction that disagrees with the detected format yields a warning.
func ResolveDirection(source string, d core.Direction) (core.Direction, []core.Warning, error) {
	if !fsutil.IsDir(source) {
		return d, nil, fmt.Errorf("%w: %s", ErrSourceNotFound, source)
	}

	detected := validate.DetectFormat(source)
	if d == "" || d == core.DirectionAuto {
		if detected == core.FormatUnknown {
			return d, nil, fmt.Errorf("%w: %s", ErrUnknownFormat, source)
		}
		return core.DirectionFrom(detected), nil, nil
	}

	var ws []core.Warning
	if detected != core.FormatUnknown && detected != d.SourceFormat() {
		ws = append(ws, core.Warn(core.ComponentPlugin,
			fmt.Sprintf("source looks like a %s plugin but direction is %s", detected, d)))
	}
	return d, ws, nil
}

// build is an assembled target model
type build struct {
	claude   *claude.Plugin
	opencode *opencode.Plugin
}

func (b *build) name() string {
	if b.claude != nil {
		return b.claude.Manifest.Name
	}
	return b.opencode.Config.Name
}

func (b *build) model() any {
	if b.claude != nil {
		return b.claude
	}
	return b.opencode
}

func (b *build) counts() map[string]int {
	if b.claude != nil {
		return claudeCounts(b.claude)
	}
	return openCodeCounts(b.opencode)
}

func (b *build) serialize(out string) error {
	if b.claude != nil {
		return claude.Serialize(b.claude, out)
	}
	return opencode.Serialize(b.opencode, out)
}

// assemble parses the source and runs every component converter
func (e *Engine) assemble(source string, d core.Direction) (*build, []core.Warning) {
	if d == core.OpenCodeToClaude {
		src, ws := opencode.Parse(source)
		dst, cws := convert.ToClaude(src)
		return &build{claude: dst}, append(ws, cws...)
	}
	src, ws := claude.Parse(source)
	dst, cws := convert.ToOpenCode(src, e.options)
	return &build{opencode: dst}, append(ws, cws...)
}

func (e *Engine) full(ctx context.Context, res *core.Result, req Request) {
	b, ws := e.assemble(req.Source, req.Direction)
	res.AddWarnings(ws...)
	counts := b.counts()

	if samePath(req.Source, req.Output) {
		res.AddWarnings(core.Error(core.ComponentPlugin, "output directory must differ from the source directory"))
		return
	}
	if err := b.serialize(req.Output); err != nil {
		res.AddWarnings(core.Error(core.ComponentPlugin, fmt.Sprintf("failed to write output: %v", err)))
		return
	}

	target := req.Direction.TargetFormat()
	res.AddChanges(core.ChangeRecord{
		Type:        core.ChangeAdded,
		Component:   core.ComponentPlugin,
		SourcePath:  req.Source,
		TargetPath:  req.Output,
		Description: fmt.Sprintf("converted plugin '%s' to %s", b.name(), target),
	})
	for _, c := range componentOrder {
		if counts[c] == 0 {
			continue
		}
		res.AddChanges(core.ChangeRecord{
			Type:        core.ChangeAdded,
			Component:   c,
			SourcePath:  req.Source,
			TargetPath:  joinRel(req.Output, componentTargets[target][c]),
			Description: fmt.Sprintf("%d %s written", counts[c], c),
		})
	}

	if e.overlay != nil {
		e.applyOverlay(ctx, res, OverlayRequest{
			Direction:  req.Direction,
			Source:     req.Source,
			Output:     req.Output,
			Components: nonEmpty(counts),
			Target:     b.model(),
		})
	}

	state := &core.SyncState{
		LastSyncTimestamp: e.now().UTC(),
		SourceHash:        Fingerprint(req.Source),
		TargetHash:        Fingerprint(req.Output),
		Direction:         req.Direction,
		ComponentHashes:   ComponentFingerprints(req.Source, req.Direction.SourceFormat()),
	}
	if err := StoreFor(req.Output).Save(state); err != nil {
		res.AddWarnings(core.Warn(core.ComponentSync, fmt.Sprintf("failed to record sync state: %v", err)))
	}
}

func (e *Engine) sync(ctx context.Context, res *core.Result, req Request) {
	state, err := StoreFor(req.Output).Load()
	switch {
	case err != nil:
		res.AddWarnings(core.Info(core.ComponentSync, fmt.Sprintf("unreadable sync state (%v); performing full conversion", err)))
		e.full(ctx, res, req)
		return
	case state == nil:
		res.AddWarnings(core.Info(core.ComponentSync, "no previous sync state found; performing full conversion"))
		e.full(ctx, res, req)
		return
	case state.Direction != req.Direction:
		res.AddWarnings(core.Info(core.ComponentSync,
			fmt.Sprintf("previous sync ran %s; performing full conversion", state.Direction)))
		e.full(ctx, res, req)
		return
	}

	if Fingerprint(req.Source) == state.SourceHash {
		res.AddWarnings(core.Info(core.ComponentSync, "source has not changed since last sync; nothing to do"))
		return
	}

	current := ComponentFingerprints(req.Source, req.Direction.SourceFormat())
	changed := changedComponents(req.Direction.SourceFormat(), state.ComponentHashes, current)
	if len(changed) == 0 {
		res.AddWarnings(core.Info(core.ComponentSync, "no component-level changes detected"))
		return
	}

	if Fingerprint(req.Output) != state.TargetHash {
		res.AddWarnings(core.Warn(core.ComponentSync, "output changed since last sync; manual edits will be overwritten").
			WithSuggestion("edit the source plugin instead of the converted output"))
	}

	for _, t := range changed {
		res.AddChanges(core.ChangeRecord{
			Type:        core.ChangeModified,
			Component:   t.Component,
			SourcePath:  joinRel(req.Source, t.Path),
			TargetPath:  req.Output,
			Description: fmt.Sprintf("synced changes to %s", t.Path),
		})
	}
	e.logger.Debug("components changed", "count", len(changed))
	e.full(ctx, res, req)
}

func (e *Engine) diff(res *core.Result, req Request) {
	var counts map[string]int
	if req.Direction == core.OpenCodeToClaude {
		p, ws := opencode.Parse(req.Source)
		res.AddWarnings(ws...)
		counts = openCodeCounts(p)
	} else {
		p, ws := claude.Parse(req.Source)
		res.AddWarnings(ws...)
		counts = claudeCounts(p)
	}

	source, target := req.Direction.SourceFormat(), req.Direction.TargetFormat()
	for _, c := range componentOrder {
		if counts[c] == 0 {
			continue
		}
		res.AddChanges(core.ChangeRecord{
			Type:        core.ChangeAdded,
			Component:   c,
			SourcePath:  joinRel(req.Source, componentTargets[source][c]),
			TargetPath:  joinRel(req.Output, componentTargets[target][c]),
			Description: fmt.Sprintf("%d %s → %s", counts[c], c, componentTargets[target][c]),
		})
	}
}

// Status reports what a sync run would do without writing anything
type Status struct {
	Direction   core.Direction      `json:"direction"`
	HasState    bool                `json:"hasState"`
	LastSync    *time.Time          `json:"lastSync,omitempty"`
	UpToDate    bool                `json:"upToDate"`
	OutputDrift bool                `json:"outputDrift"`
	Changed     []core.ChangeRecord `json:"changed"`
}

// Status compares the source against the recorded sync state of output
func (e *Engine) Status(source, output string, d core.Direction) (*Status, error) {
	direction, _, err := ResolveDirection(source, d)
	if err != nil {
		return nil, err
	}
	st := &Status{Direction: direction, Changed: []core.ChangeRecord{}}

	state, err := StoreFor(output).Load()
	if err != nil {
		return nil, err
	}
	if state == nil || state.Direction != direction {
		return st, nil
	}
	st.HasState = true
	last := state.LastSyncTimestamp
	st.LastSync = &last
	st.OutputDrift = Fingerprint(output) != state.TargetHash

	if Fingerprint(source) == state.SourceHash {
		st.UpToDate = true
		return st, nil
	}
	current := ComponentFingerprints(source, direction.SourceFormat())
	for _, t := range changedComponents(direction.SourceFormat(), state.ComponentHashes, current) {
		st.Changed = append(st.Changed, core.ChangeRecord{
			Type:        core.ChangeModified,
			Component:   t.Component,
			SourcePath:  joinRel(source, t.Path),
			TargetPath:  output,
			Description: fmt.Sprintf("%s changed", t.Path),
		})
	}
	st.UpToDate = len(st.Changed) == 0
	return st, nil
}

var componentOrder = []string{
	core.ComponentHooks,
	core.ComponentMCP,
	core.ComponentSkills,
	core.ComponentCommands,
	core.ComponentAgents,
}

// componentTargets names where each component lives in each format
var componentTargets = map[core.Format]map[string]string{
	core.FormatClaude: {
		core.ComponentHooks:    "hooks/hooks.json",
		core.ComponentMCP:      ".mcp.json",
		core.ComponentSkills:   "skills",
		core.ComponentCommands: "commands",
		core.ComponentAgents:   "agents",
	},
	core.FormatOpenCode: {
		core.ComponentHooks:    "opencode.json",
		core.ComponentMCP:      "opencode.json",
		core.ComponentSkills:   "instructions",
		core.ComponentCommands: "commands",
		core.ComponentAgents:   ".opencode/agents",
	},
}

func claudeCounts(p *claude.Plugin) map[string]int {
	return map[string]int{
		core.ComponentHooks:    p.HookCount(),
		core.ComponentMCP:      len(p.MCPServers),
		core.ComponentSkills:   len(p.Skills),
		core.ComponentCommands: len(p.Commands),
		core.ComponentAgents:   len(p.Agents),
	}
}

func openCodeCounts(p *opencode.Plugin) map[string]int {
	return map[string]int{
		core.ComponentHooks:    len(p.Hooks),
		core.ComponentMCP:      len(p.MCPServers),
		core.ComponentSkills:   len(p.Instructions),
		core.ComponentCommands: len(p.Commands),
		core.ComponentAgents:   len(p.Agents),
	}
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

func joinRel(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

func nonEmpty(counts map[string]int) []string {
	var names []string
	for _, c := range componentOrder {
		if counts[c] > 0 {
			names = append(names, c)
		}
	}
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
