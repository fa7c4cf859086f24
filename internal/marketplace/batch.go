package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/egoavara/plugin-convert/internal/claude"
	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/engine"
	"github.com/egoavara/plugin-convert/internal/fsutil"
	"github.com/egoavara/plugin-convert/internal/git"
	"github.com/egoavara/plugin-convert/internal/validate"
)

// errStopped cancels the remaining jobs after a failure
var errStopped = errors.New("batch stopped after a failed plugin")

// Converter runs batch conversions over a marketplace directory
type Converter struct {
	engine *engine.Engine
	git    git.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewConverter creates a Converter; nil arguments get defaults
func NewConverter(eng *engine.Engine, client git.Client, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	if eng == nil {
		eng = engine.New(engine.WithLogger(logger))
	}
	if client == nil {
		client = git.NewClient()
	}
	return &Converter{engine: eng, git: client, logger: logger, now: time.Now}
}

// Convert converts every plugin of cfg.Source into cfg.Target.
// Per-plugin problems are recorded in the report; the error is reserved for
// failures that prevent the batch from running at all.
func (c *Converter) Convert(ctx context.Context, cfg Config) (*Report, error) {
	start := c.now()
	report := &Report{
		RunID:     uuid.NewString(),
		Source:    cfg.Source,
		Target:    cfg.Target,
		Direction: cfg.Direction,
		Results:   []PluginReport{},
	}
	if report.Direction == "" {
		report.Direction = core.DirectionAuto
	}
	log := c.logger.With("run", report.RunID, "source", cfg.Source)

	source, cleanup, err := c.fetch(ctx, cfg.Source)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if c.git.IsGitRepository(source) {
		commit, err := c.git.GetCurrentCommit(source)
		if err != nil {
			log.Warn("failed to read source commit", "error", err)
		} else {
			report.SourceCommit = commit
			log.Info("source commit", "commit", commit)
		}
	}

	if !fsutil.IsDir(source) {
		return nil, fmt.Errorf("%w: %s", engine.ErrSourceNotFound, cfg.Source)
	}
	filter, err := NewFilter(cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, err
	}
	candidates, err := Discover(source, report.Direction, filter)
	if err != nil {
		return nil, err
	}
	if err := fsutil.EnsureDir(cfg.Target); err != nil {
		return nil, fmt.Errorf("failed to create target directory: %w", err)
	}
	log.Info("marketplace conversion started", "plugins", len(candidates), "target", cfg.Target)

	report.TotalPlugins = len(candidates)
	report.Results = c.run(ctx, cfg, report.Direction, candidates)

	for _, r := range report.Results {
		switch {
		case r.Skipped:
			report.Skipped++
		case r.Result.Success:
			report.Converted++
		default:
			report.Failed++
		}
		if r.Result != nil {
			report.Warnings += len(r.Result.Warnings)
		}
	}

	report.Timestamp = c.now().UTC()

	if cfg.Validate {
		for i := range report.Results {
			r := &report.Results[i]
			if r.Skipped || r.Result == nil {
				continue
			}
			v := validate.Validate(r.Result.OutputPath, r.Result.Direction.TargetFormat())
			r.Validation = &v
			if !v.Valid {
				log.Warn("converted plugin failed validation", "plugin", r.Plugin, "errors", len(v.Errors))
			}
		}
	}

	if cfg.GenerateDocs && cfg.Mode != core.ModeDiff {
		if err := WriteDocs(cfg.Target, report); err != nil {
			return nil, err
		}
	}

	if cfg.Mode != core.ModeDiff {
		if err := c.writeTargetManifest(source, cfg.Target, report); err != nil {
			return nil, err
		}
	}

	report.DurationMS = c.now().Sub(start).Milliseconds()
	if err := fsutil.WriteJSON(filepath.Join(cfg.Target, ReportFile), report); err != nil {
		return nil, fmt.Errorf("failed to write conversion report: %w", err)
	}

	log.Info("marketplace conversion finished",
		"converted", report.Converted, "failed", report.Failed, "skipped", report.Skipped)
	return report, nil
}

// run converts candidates on a bounded worker pool. Results keep discovery order.
func (c *Converter) run(ctx context.Context, cfg Config, direction core.Direction, candidates []Candidate) []PluginReport {
	parallel := cfg.Parallel
	if parallel <= 0 {
		parallel = DefaultParallel
	}
	mode := cfg.Mode
	if mode == "" {
		mode = core.ModeFull
	}

	results := make([]PluginReport, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i, cand := range candidates {
		g.Go(func() error {
			results[i] = PluginReport{Plugin: cand.Name, Source: cand.Path}
			if gctx.Err() != nil {
				results[i].Skipped = true
				return nil
			}

			res := c.engine.Convert(ctx, engine.Request{
				Source:    cand.Path,
				Output:    filepath.Join(cfg.Target, cand.Name),
				Direction: direction,
				Mode:      mode,
			})
			results[i].Result = res

			if !res.Success {
				c.logger.Warn("plugin conversion failed", "plugin", cand.Name)
				if !cfg.ContinueOnError {
					return fmt.Errorf("%w: %s", errStopped, cand.Name)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// fetch clones remote sources into a temporary directory
func (c *Converter) fetch(ctx context.Context, source string) (string, func(), error) {
	if !git.IsRemote(source) {
		return source, func() {}, nil
	}

	tmp, err := os.MkdirTemp("", "plugin-convert-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create clone directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(tmp) }

	dest := filepath.Join(tmp, "marketplace")
	c.logger.Info("cloning marketplace source", "url", source)
	if err := c.git.Clone(ctx, source, dest); err != nil {
		cleanup()
		return "", nil, err
	}
	return dest, cleanup, nil
}

// writeTargetManifest lists converted Claude Code plugins in a marketplace.json
func (c *Converter) writeTargetManifest(source, target string, report *Report) error {
	var entries []Entry
	for _, r := range report.Results {
		if r.Skipped || r.Result == nil || !r.Result.Success {
			continue
		}
		if r.Result.Direction.TargetFormat() != core.FormatClaude {
			continue
		}
		entry := Entry{Name: r.Plugin, Source: EntrySource{Path: "./" + r.Plugin}}
		if m, err := readPluginManifest(r.Result.OutputPath); err == nil {
			entry.Version = m.Version
			entry.Description = m.Description
			entry.Author = m.Author
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil
	}

	manifest := &Manifest{
		Name:    filepath.Base(filepath.Clean(target)),
		Owner:   Owner{Name: "plugin-convert"},
		Plugins: entries,
	}
	if src, err := LoadManifest(source); err == nil && src != nil {
		manifest.Name = src.Name
		manifest.Owner = src.Owner
	}
	if err := SaveManifest(target, manifest); err != nil {
		return fmt.Errorf("failed to write marketplace manifest: %w", err)
	}
	return nil
}

func readPluginManifest(root string) (*claude.Manifest, error) {
	data, err := os.ReadFile(filepath.Join(root, ".claude-plugin", "plugin.json"))
	if err != nil {
		return nil, err
	}
	var m claude.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ValidateDir validates every plugin directory directly under dir
func ValidateDir(dir string, format core.Format) ([]validate.Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	var results []validate.Result
	for _, e := range entries {
		if !e.IsDir() || e.Name()[0] == '.' {
			continue
		}
		path := filepath.Join(dir, e.Name())
		f := format
		if f == core.FormatUnknown {
			f = validate.DetectFormat(path)
			if f == core.FormatUnknown {
				continue
			}
		}
		results = append(results, validate.Validate(path, f))
	}
	return results, nil
}
