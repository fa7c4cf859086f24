package core

import "time"

// Severity of a conversion warning
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Component tags used on warnings and change records
const (
	ComponentManifest = "manifest"
	ComponentHooks    = "hooks"
	ComponentMCP      = "mcp"
	ComponentSkills   = "skills"
	ComponentCommands = "commands"
	ComponentAgents   = "agents"
	ComponentSettings = "settings"
	ComponentPlugin   = "plugin"
	ComponentSync     = "sync"
)

// Warning is a single accumulated conversion diagnostic
type Warning struct {
	Severity   Severity `json:"severity"`
	Component  string   `json:"component"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Info creates an info-severity warning
func Info(component, message string) Warning {
	return Warning{Severity: SeverityInfo, Component: component, Message: message}
}

// Warn creates a warning-severity warning
func Warn(component, message string) Warning {
	return Warning{Severity: SeverityWarning, Component: component, Message: message}
}

// Error creates an error-severity warning
func Error(component, message string) Warning {
	return Warning{Severity: SeverityError, Component: component, Message: message}
}

// WithSuggestion returns a copy of the warning carrying a suggestion
func (w Warning) WithSuggestion(suggestion string) Warning {
	w.Suggestion = suggestion
	return w
}

// ChangeType is the kind of a change record
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
	ChangeRenamed  ChangeType = "renamed"
)

// ChangeRecord describes an applied or previewed change
type ChangeRecord struct {
	Type        ChangeType `json:"type"`
	Component   string     `json:"component"`
	SourcePath  string     `json:"sourcePath,omitempty"`
	TargetPath  string     `json:"targetPath,omitempty"`
	Description string     `json:"description"`
}

// Result is the outcome of one conversion run
type Result struct {
	RunID          string         `json:"runId"`
	Success        bool           `json:"success"`
	Direction      Direction      `json:"direction"`
	Mode           Mode           `json:"mode"`
	SourcePath     string         `json:"sourcePath"`
	OutputPath     string         `json:"outputPath"`
	Warnings       []Warning      `json:"warnings"`
	ChangesApplied []ChangeRecord `json:"changesApplied"`
	Timestamp      time.Time      `json:"timestamp"`
}

// AddWarnings appends warnings to the result
func (r *Result) AddWarnings(ws ...Warning) {
	r.Warnings = append(r.Warnings, ws...)
}

// AddChanges appends change records to the result
func (r *Result) AddChanges(cs ...ChangeRecord) {
	r.ChangesApplied = append(r.ChangesApplied, cs...)
}

// HasErrors reports whether any error-severity warning was recorded
func (r *Result) HasErrors() bool {
	return HasErrors(r.Warnings)
}

// Finish computes Success from the accumulated warnings
func (r *Result) Finish() *Result {
	if r.Warnings == nil {
		r.Warnings = []Warning{}
	}
	if r.ChangesApplied == nil {
		r.ChangesApplied = []ChangeRecord{}
	}
	r.Success = !r.HasErrors()
	return r
}

// HasErrors reports whether the list contains an error-severity warning
func HasErrors(ws []Warning) bool {
	for _, w := range ws {
		if w.Severity == SeverityError {
			return true
		}
	}
	return false
}

// CountBySeverity tallies warnings per severity
func CountBySeverity(ws []Warning) map[Severity]int {
	counts := make(map[Severity]int, 3)
	for _, w := range ws {
		counts[w.Severity]++
	}
	return counts
}
