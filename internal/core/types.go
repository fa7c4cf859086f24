package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// SyncStateFile is the sidecar written into every converted output directory
const SyncStateFile = ".plugin-sync-state.json"

// Direction is the conversion direction
type Direction string

const (
	// ClaudeToOpenCode converts a Claude Code plugin into an OpenCode plugin
	ClaudeToOpenCode Direction = "claude-to-opencode"
	// OpenCodeToClaude converts an OpenCode plugin into a Claude Code plugin
	OpenCodeToClaude Direction = "opencode-to-claude"
	// DirectionAuto resolves the direction from the detected source format
	DirectionAuto Direction = "auto"
)

// ParseDirection parses a direction flag value
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case ClaudeToOpenCode, OpenCodeToClaude, DirectionAuto:
		return Direction(s), nil
	case "":
		return DirectionAuto, nil
	}
	return "", fmt.Errorf("invalid direction '%s'. Valid values: %s, %s, %s", s, ClaudeToOpenCode, OpenCodeToClaude, DirectionAuto)
}

// SourceFormat returns the format read by this direction
func (d Direction) SourceFormat() Format {
	switch d {
	case ClaudeToOpenCode:
		return FormatClaude
	case OpenCodeToClaude:
		return FormatOpenCode
	}
	return FormatUnknown
}

// TargetFormat returns the format written by this direction
func (d Direction) TargetFormat() Format {
	switch d {
	case ClaudeToOpenCode:
		return FormatOpenCode
	case OpenCodeToClaude:
		return FormatClaude
	}
	return FormatUnknown
}

// DirectionFrom returns the direction that reads the given source format
func DirectionFrom(source Format) Direction {
	switch source {
	case FormatClaude:
		return ClaudeToOpenCode
	case FormatOpenCode:
		return OpenCodeToClaude
	}
	return DirectionAuto
}

// Format identifies a plugin format on disk
type Format string

const (
	FormatClaude   Format = "claude-code"
	FormatOpenCode Format = "opencode"
	FormatUnknown  Format = "unknown"
)

// ParseFormat parses a format flag value
func ParseFormat(s string) (Format, error) {
	switch s {
	case "claude-code", "claude":
		return FormatClaude, nil
	case "opencode":
		return FormatOpenCode, nil
	case "", "auto":
		return FormatUnknown, nil
	}
	return "", fmt.Errorf("invalid format '%s'. Valid values: claude-code, opencode, auto", s)
}

// Mode selects how the engine treats an existing output directory
type Mode string

const (
	ModeFull Mode = "full"
	ModeSync Mode = "sync"
	ModeDiff Mode = "diff"
)

// ParseMode parses a mode flag value
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFull, ModeSync, ModeDiff:
		return Mode(s), nil
	case "":
		return ModeFull, nil
	}
	return "", fmt.Errorf("invalid mode '%s'. Valid values: full, sync, diff", s)
}

// Parameter is a typed command parameter shared by both formats
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Author represents plugin author information.
// Accepts either a bare string or an object when decoding.
type Author struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	URL   string `json:"url,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Author) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*a = Author{Name: name}
		return nil
	}

	type plain Author
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Author(p)
	return nil
}

// SyncState is the persisted record of the last successful conversion
type SyncState struct {
	LastSyncTimestamp time.Time         `json:"lastSyncTimestamp"`
	SourceHash        string            `json:"sourceHash"`
	TargetHash        string            `json:"targetHash"`
	Direction         Direction         `json:"direction"`
	ComponentHashes   map[string]string `json:"componentHashes"`
}
