// Package report renders conversion results for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/engine"
	"github.com/egoavara/plugin-convert/internal/i18n"
	"github.com/egoavara/plugin-convert/internal/marketplace"
	"github.com/egoavara/plugin-convert/internal/validate"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

// JSON writes v as indented JSON
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func severityLabel(s core.Severity) string {
	switch s {
	case core.SeverityError:
		return errorStyle.Render("error")
	case core.SeverityWarning:
		return warningStyle.Render("warn ")
	}
	return infoStyle.Render("info ")
}

func changeLabel(t core.ChangeType) string {
	switch t {
	case core.ChangeAdded:
		return successStyle.Render("+")
	case core.ChangeRemoved:
		return errorStyle.Render("-")
	case core.ChangeRenamed:
		return warningStyle.Render(">")
	}
	return warningStyle.Render("~")
}

// Warnings prints one line per warning with its suggestion underneath
func Warnings(w io.Writer, ws []core.Warning) {
	for _, warning := range ws {
		fmt.Fprintf(w, "  %s %s %s\n", severityLabel(warning.Severity), dimStyle.Render("["+warning.Component+"]"), warning.Message)
		if warning.Suggestion != "" {
			fmt.Fprintf(w, "        %s\n", suggestionStyle.Render("→ "+warning.Suggestion))
		}
	}
}

// Changes prints change records
func Changes(w io.Writer, cs []core.ChangeRecord) {
	for _, c := range cs {
		line := c.Description
		if c.TargetPath != "" {
			line += " " + dimStyle.Render(c.TargetPath)
		}
		fmt.Fprintf(w, "  %s %s %s\n", changeLabel(c.Type), dimStyle.Render("["+c.Component+"]"), line)
	}
}

// Result prints a single conversion result
func Result(w io.Writer, r *core.Result) {
	data := map[string]any{
		"Source":    r.SourcePath,
		"Output":    r.OutputPath,
		"Direction": r.Direction,
		"Mode":      r.Mode,
	}
	if r.Success {
		fmt.Fprintln(w, successStyle.Render("✓ "+i18n.T("ConvertSuccess", data)))
	} else {
		fmt.Fprintln(w, errorStyle.Render("✗ "+i18n.T("ConvertFailed", data)))
	}

	if len(r.ChangesApplied) > 0 {
		header := "ChangesHeader"
		if r.Mode == core.ModeDiff {
			header = "DiffHeader"
		}
		fmt.Fprintln(w, titleStyle.Render(i18n.T(header, map[string]any{"Count": len(r.ChangesApplied)}, len(r.ChangesApplied))))
		Changes(w, r.ChangesApplied)
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, titleStyle.Render(i18n.T("WarningsHeader", map[string]any{"Count": len(r.Warnings)}, len(r.Warnings))))
		Warnings(w, r.Warnings)
	}
}

// Batch prints a marketplace report
func Batch(w io.Writer, r *marketplace.Report) {
	for _, p := range r.Results {
		switch {
		case p.Skipped:
			fmt.Fprintf(w, "%s %s\n", dimStyle.Render("-"), dimStyle.Render(p.Plugin+" "+i18n.T("PluginSkipped", nil)))
		case p.Result.Success:
			fmt.Fprintf(w, "%s %s %s\n", successStyle.Render("✓"), p.Plugin,
				dimStyle.Render(i18n.T("WarningCount", map[string]any{"Count": len(p.Result.Warnings)}, len(p.Result.Warnings))))
		default:
			fmt.Fprintf(w, "%s %s\n", errorStyle.Render("✗"), p.Plugin)
			Warnings(w, errorsOnly(p.Result.Warnings))
		}
		if p.Validation != nil && !p.Validation.Valid {
			for _, e := range p.Validation.Errors {
				fmt.Fprintf(w, "    %s %s\n", errorStyle.Render("invalid"), e)
			}
		}
	}

	summary := i18n.T("BatchSummary", map[string]any{
		"Total":     r.TotalPlugins,
		"Converted": r.Converted,
		"Failed":    r.Failed,
		"Skipped":   r.Skipped,
		"Warnings":  r.Warnings,
	})
	footer := r.Target + " · " + (time.Duration(r.DurationMS) * time.Millisecond).String()
	if len(r.SourceCommit) >= 7 {
		footer += " · " + r.SourceCommit[:7]
	}
	fmt.Fprintln(w, summaryStyle.Render(summary+"\n"+dimStyle.Render(footer)))
}

func errorsOnly(ws []core.Warning) []core.Warning {
	var out []core.Warning
	for _, w := range ws {
		if w.Severity == core.SeverityError {
			out = append(out, w)
		}
	}
	return out
}

// Validation prints a validator result
func Validation(w io.Writer, r validate.Result) {
	data := map[string]any{"Path": r.Path, "Format": r.Format, "Count": len(r.Errors)}
	if r.Valid {
		fmt.Fprintln(w, successStyle.Render("✓ "+i18n.T("ValidationPassed", data)))
	} else {
		fmt.Fprintln(w, errorStyle.Render("✗ "+i18n.T("ValidationFailed", data, len(r.Errors))))
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s %s\n", severityLabel(core.SeverityError), e)
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "  %s %s\n", severityLabel(core.SeverityWarning), warning)
	}
}

// Status prints what a sync would do
func Status(w io.Writer, s *engine.Status) {
	fmt.Fprintln(w, titleStyle.Render(string(s.Direction)))
	if !s.HasState {
		fmt.Fprintln(w, warningStyle.Render(i18n.T("StatusNoState", nil)))
		return
	}
	fmt.Fprintln(w, dimStyle.Render(i18n.T("StatusLastSync", map[string]any{"Time": s.LastSync.Local().Format(time.RFC3339)})))
	if s.UpToDate {
		fmt.Fprintln(w, successStyle.Render(i18n.T("StatusUpToDate", nil)))
	} else {
		Changes(w, s.Changed)
	}
	if s.OutputDrift {
		fmt.Fprintln(w, warningStyle.Render(i18n.T("StatusDrift", nil)))
	}
}

// Events prints the hook event mapping table
func Events(w io.Writer, mappings []core.HookEventMapping) {
	width := 0
	for _, m := range mappings {
		width = max(width, len(m.Claude))
	}
	column := lipgloss.NewStyle().Width(width + 2)
	fmt.Fprintln(w, titleStyle.Render(column.Render("Claude Code")+"    OpenCode"))
	for _, m := range mappings {
		arrow := "↔"
		if !m.Bidirectional {
			arrow = "→"
		}
		fmt.Fprintf(w, "%s %s  %s %s\n", column.Render(m.Claude), arrow,
			lipgloss.NewStyle().Width(16).Render(m.OpenCode), dimStyle.Render(m.Description))
	}
}
