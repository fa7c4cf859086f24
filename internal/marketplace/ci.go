package marketplace

import (
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/fsutil"
)

// WorkflowsDir is where GitHub Actions workflows live
var WorkflowsDir = filepath.Join(".github", "workflows")

const installCommand = "go install github.com/egoavara/plugin-convert@latest"

// Workflow is the subset of a GitHub Actions workflow that gets generated
type Workflow struct {
	Name string         `yaml:"name"`
	On   map[string]any `yaml:"on"`
	Jobs map[string]Job `yaml:"jobs"`
}

// Job is a workflow job
type Job struct {
	RunsOn string `yaml:"runs-on"`
	Steps  []Step `yaml:"steps"`
}

// Step is a workflow step
type Step struct {
	Name string            `yaml:"name,omitempty"`
	Uses string            `yaml:"uses,omitempty"`
	With map[string]string `yaml:"with,omitempty"`
	Run  string            `yaml:"run,omitempty"`
}

var setupSteps = []Step{
	{Uses: "actions/checkout@v4"},
	{Name: "Setup Go", Uses: "actions/setup-go@v5", With: map[string]string{"go-version": "stable"}},
	{Name: "Install plugin-convert", Run: installCommand},
}

// SyncWorkflow re-converts the source marketplace on a schedule and opens a PR
func SyncWorkflow(direction core.Direction) Workflow {
	from := "Claude Code"
	if direction.SourceFormat() == core.FormatOpenCode {
		from = "OpenCode"
	}
	steps := append([]Step{}, setupSteps...)
	steps = append(steps,
		Step{Name: "Clone source marketplace", Run: "git clone ${{ secrets.SOURCE_MARKETPLACE_URL }} /tmp/source-marketplace\n"},
		Step{Name: "Run sync", Run: fmt.Sprintf(
			"plugin-convert marketplace sync \\\n  --source /tmp/source-marketplace \\\n  --target ./plugins \\\n  --direction %s\n", direction)},
		Step{Name: "Create PR if changes", Uses: "peter-evans/create-pull-request@v6", With: map[string]string{
			"title":          "sync: update from source marketplace",
			"body":           "Automated sync from source marketplace",
			"branch":         "sync/update",
			"commit-message": "sync: update converted plugins",
		}},
	)
	return Workflow{
		Name: "Sync from " + from + " Marketplace",
		On: map[string]any{
			"schedule":          []map[string]string{{"cron": "0 */6 * * *"}},
			"workflow_dispatch": map[string]any{},
		},
		Jobs: map[string]Job{"sync": {RunsOn: "ubuntu-latest", Steps: steps}},
	}
}

// ValidateWorkflow validates every converted plugin on push and pull request
func ValidateWorkflow(direction core.Direction) Workflow {
	steps := append([]Step{}, setupSteps...)
	steps = append(steps, Step{Name: "Validate all plugins", Run: fmt.Sprintf(
		"plugin-convert marketplace validate \\\n  --dir ./plugins \\\n  --format %s\n", direction.TargetFormat())})
	return Workflow{
		Name: "Validate Plugins",
		On: map[string]any{
			"push":         map[string]any{},
			"pull_request": map[string]any{},
		},
		Jobs: map[string]Job{"validate": {RunsOn: "ubuntu-latest", Steps: steps}},
	}
}

// GenerateCIWorkflows writes the sync and validate workflows under target
func GenerateCIWorkflows(target string, direction core.Direction) ([]string, error) {
	if direction.SourceFormat() == core.FormatUnknown {
		return nil, fmt.Errorf("workflows need an explicit direction, got '%s'", direction)
	}
	dir := filepath.Join(target, WorkflowsDir)
	files := []struct {
		name string
		wf   Workflow
	}{
		{"sync.yaml", SyncWorkflow(direction)},
		{"validate.yaml", ValidateWorkflow(direction)},
	}

	var written []string
	for _, f := range files {
		data, err := yaml.Marshal(f.wf)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", f.name, err)
		}
		path := filepath.Join(dir, f.name)
		if err := fsutil.WriteFile(path, data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}
