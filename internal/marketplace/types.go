package marketplace

import (
	"encoding/json"
	"time"

	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/validate"
)

// Manifest represents the .claude-plugin/marketplace.json structure
type Manifest struct {
	Name     string    `json:"name"`
	Owner    Owner     `json:"owner"`
	Metadata *Metadata `json:"metadata,omitempty"`
	Plugins  []Entry   `json:"plugins"`
}

// Owner represents the marketplace owner information
type Owner struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Metadata contains optional metadata for the marketplace
type Metadata struct {
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
	PluginRoot  string `json:"pluginRoot,omitempty"`
}

// Entry represents a plugin entry in the marketplace
type Entry struct {
	Name        string       `json:"name"`
	Source      EntrySource  `json:"source"`
	Version     string       `json:"version,omitempty"`
	Description string       `json:"description,omitempty"`
	Author      *core.Author `json:"author,omitempty"`
	Homepage    string       `json:"homepage,omitempty"`
	Repository  string       `json:"repository,omitempty"`
	License     string       `json:"license,omitempty"`
	Keywords    []string     `json:"keywords,omitempty"`
	Category    string       `json:"category,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Strict      bool         `json:"strict,omitempty"`
}

// EntrySource is where a marketplace entry lives.
// A bare string is a relative path; objects name a remote source.
type EntrySource struct {
	Type string `json:"source,omitempty"` // "url", "github"
	URL  string `json:"url,omitempty"`
	Repo string `json:"repo,omitempty"`
	Path string `json:"path,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler
func (s *EntrySource) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		*s = EntrySource{Path: path}
		return nil
	}
	type plain EntrySource
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = EntrySource(p)
	return nil
}

// MarshalJSON writes path-only sources as a bare string
func (s EntrySource) MarshalJSON() ([]byte, error) {
	if s.Type == "" && s.URL == "" && s.Repo == "" {
		return json.Marshal(s.Path)
	}
	type plain EntrySource
	return json.Marshal(plain(s))
}

// RemoteURL returns the clone URL of a remote source, or "" for local paths
func (s EntrySource) RemoteURL() string {
	switch {
	case s.URL != "":
		return s.URL
	case s.Repo != "":
		return "https://github.com/" + s.Repo + ".git"
	}
	return ""
}

// Config describes one batch conversion
type Config struct {
	Source          string
	Target          string
	Direction       core.Direction
	Mode            core.Mode
	Include         []string
	Exclude         []string
	Parallel        int
	ContinueOnError bool
	GenerateDocs    bool
	Validate        bool
}

// DefaultParallel is used when Config.Parallel is not positive
const DefaultParallel = 4

// PluginReport is the outcome for one plugin
type PluginReport struct {
	Plugin     string           `json:"plugin"`
	Source     string           `json:"source"`
	Skipped    bool             `json:"skipped,omitempty"`
	Result     *core.Result     `json:"result,omitempty"`
	Validation *validate.Result `json:"validation,omitempty"`
}

// Report summarizes a batch conversion; it is written as conversion-report.json
type Report struct {
	RunID        string         `json:"runId"`
	Source       string         `json:"source"`
	SourceCommit string         `json:"sourceCommit,omitempty"` // HEAD of git sources
	Target       string         `json:"target"`
	Direction    core.Direction `json:"direction"`
	TotalPlugins int            `json:"totalPlugins"`
	Converted    int            `json:"converted"`
	Failed       int            `json:"failed"`
	Skipped      int            `json:"skipped"`
	Warnings     int            `json:"warnings"`
	Results      []PluginReport `json:"results"`
	Timestamp    time.Time      `json:"timestamp"`
	DurationMS   int64          `json:"durationMs"`
}
