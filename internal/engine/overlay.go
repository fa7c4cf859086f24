package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/fsutil"
)

// OverlayRequest describes a finished base conversion
type OverlayRequest struct {
	Direction  core.Direction
	Source     string
	Output     string
	Components []string
	// Target is the assembled *opencode.Plugin or *claude.Plugin
	Target any
}

// OverlayResult carries replacement files and extra diagnostics
type OverlayResult struct {
	// Files maps a path relative to the output directory to its new content
	Files    map[string][]byte
	Warnings []core.Warning
	Changes  []core.ChangeRecord
}

// Overlay re-generates selected outputs after the rule-based conversion.
// The base output stays in place when Enhance fails.
type Overlay interface {
	Enhance(ctx context.Context, req OverlayRequest) (*OverlayResult, error)
}

// applyOverlay runs the overlay and writes its files, folding everything into the result
func (e *Engine) applyOverlay(ctx context.Context, res *core.Result, req OverlayRequest) {
	out, err := e.overlay.Enhance(ctx, req)
	if err != nil {
		res.AddWarnings(core.Warn(core.ComponentPlugin, fmt.Sprintf("enhanced conversion skipped: %v", err)))
		return
	}
	if out == nil {
		return
	}

	for _, rel := range sortedKeys(out.Files) {
		if !filepath.IsLocal(rel) {
			res.AddWarnings(core.Warn(core.ComponentPlugin, fmt.Sprintf("enhanced conversion wrote outside the output directory: %s", rel)))
			continue
		}
		if err := fsutil.WriteFile(filepath.Join(req.Output, filepath.FromSlash(rel)), out.Files[rel]); err != nil {
			res.AddWarnings(core.Warn(core.ComponentPlugin, err.Error()))
			continue
		}
		e.logger.Debug("overlay file written", "path", rel)
	}
	res.AddWarnings(out.Warnings...)
	res.AddChanges(out.Changes...)
}
