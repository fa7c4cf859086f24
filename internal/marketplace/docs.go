package marketplace

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/fsutil"
)

// NotesFile is written next to each converted plugin that produced warnings
const NotesFile = "CONVERSION_NOTES.md"

var funcs = template.FuncMap{
	"upper": strings.ToUpper,
	"status": func(r PluginReport) string {
		switch {
		case r.Skipped:
			return "Skipped"
		case r.Result != nil && r.Result.Success:
			return "Converted"
		}
		return "Failed"
	},
	"warnings": func(r PluginReport) int {
		if r.Result == nil {
			return 0
		}
		return len(r.Result.Warnings)
	},
}

var readmeTemplate = template.Must(template.New("readme").Funcs(funcs).Parse(`# {{.Target}} Plugin Marketplace

This marketplace was converted from a {{.Source}} plugin marketplace with plugin-convert.

## Plugins

| Plugin | Status | Warnings |
|--------|--------|----------|
{{- range .Report.Results}}
| {{.Plugin}} | {{status .}} | {{warnings .}} |
{{- end}}

## Statistics

- **Total plugins:** {{.Report.TotalPlugins}}
- **Successfully converted:** {{.Report.Converted}}
- **Failed:** {{.Report.Failed}}
- **Skipped:** {{.Report.Skipped}}
- **Generated:** {{.Report.Timestamp.Format "2006-01-02T15:04:05Z07:00"}}

## Usage
{{if eq .Target "OpenCode"}}
` + "```bash" + `
# Add to your opencode.json
# Or place plugins in .opencode/plugins/
` + "```" + `
{{else}}
` + "```bash" + `
claude plugin marketplace add <this-repo>
claude plugin install <plugin-name>@<marketplace>
` + "```" + `
{{end}}
## Conversion Notes

Plugins with conversion warnings carry a ` + "`" + NotesFile + "`" + ` file describing manual adjustments.
`))

var notesTemplate = template.Must(template.New("notes").Funcs(funcs).Parse(`# Conversion Notes: {{.Plugin}}

**Direction:** {{.Result.Direction}}
**Converted:** {{.Result.Timestamp.Format "2006-01-02T15:04:05Z07:00"}}

## Warnings
{{range .Result.Warnings}}
### {{upper (print .Severity)}}: {{.Component}}

{{.Message}}
{{if .Suggestion}}
**Suggestion:** {{.Suggestion}}
{{end}}{{end}}
## Changes Applied
{{range .Result.ChangesApplied}}
- **{{.Type}}** ({{.Component}}): {{.Description}}
{{- end}}
`))

// WriteDocs writes the marketplace README and per-plugin conversion notes
func WriteDocs(target string, report *Report) error {
	source, dest := "Claude Code", "OpenCode"
	if formatOf(report) == core.FormatClaude {
		source, dest = "OpenCode", "Claude Code"
	}

	var buf bytes.Buffer
	if err := readmeTemplate.Execute(&buf, map[string]any{
		"Source": source,
		"Target": dest,
		"Report": report,
	}); err != nil {
		return fmt.Errorf("failed to render README: %w", err)
	}
	if err := fsutil.WriteFile(filepath.Join(target, "README.md"), buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write README: %w", err)
	}

	for _, r := range report.Results {
		if r.Result == nil || len(r.Result.Warnings) == 0 || !fsutil.IsDir(r.Result.OutputPath) {
			continue
		}
		buf.Reset()
		if err := notesTemplate.Execute(&buf, r); err != nil {
			return fmt.Errorf("failed to render notes for %s: %w", r.Plugin, err)
		}
		if err := fsutil.WriteFile(filepath.Join(r.Result.OutputPath, NotesFile), buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write notes for %s: %w", r.Plugin, err)
		}
	}
	return nil
}

// formatOf returns the target format of a batch, resolving auto from the results
func formatOf(report *Report) core.Format {
	if f := report.Direction.TargetFormat(); f != core.FormatUnknown {
		return f
	}
	for _, r := range report.Results {
		if r.Result != nil {
			if f := r.Result.Direction.TargetFormat(); f != core.FormatUnknown {
				return f
			}
		}
	}
	return core.FormatOpenCode
}
