package opencode

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/fsutil"
	"github.com/egoavara/plugin-convert/internal/markdown"
)

// DefaultAgentModel is recorded for agents that do not name a provider or model
const DefaultAgentModel = "default"

// rawConfig decodes hooks individually so one bad entry does not discard the file
type rawConfig struct {
	Config
	Hooks []json.RawMessage `json:"hooks,omitempty"`
}

// Parse reads an OpenCode plugin directory.
// It never fails: missing pieces become empty collections and malformed
// files or entries are skipped with a warning.
func Parse(root string) (*Plugin, []core.Warning) {
	p := NewPlugin(filepath.Base(filepath.Clean(root)))
	p.RootPath = root

	var warnings []core.Warning

	cfg, ws := readConfig(root)
	warnings = append(warnings, ws...)
	if cfg != nil {
		if cfg.Name == "" {
			cfg.Name = p.Config.Name
		}
		p.Config = cfg.Config
		for i, raw := range cfg.Hooks {
			var h Hook
			if err := json.Unmarshal(raw, &h); err != nil {
				warnings = append(warnings, core.Warn(core.ComponentHooks, fmt.Sprintf("skipped hook #%d in %s: %v", i, ConfigFile, err)))
				continue
			}
			p.Hooks = append(p.Hooks, h)
		}
		for name, s := range cfg.MCPServers {
			p.MCPServers[name] = s
		}
	}
	p.Config.Hooks = nil
	p.Config.MCPServers = nil

	warnings = append(warnings, parseInstructions(p, root)...)
	warnings = append(warnings, parseCommands(p, root)...)
	warnings = append(warnings, parsePluginHooks(p, root)...)
	warnings = append(warnings, parseAgents(p, root)...)

	p.Config.Commands = nil
	p.Config.Agents = nil
	return p, warnings
}

// readConfig loads opencode.json, falling back to opencode.yaml
func readConfig(root string) (*rawConfig, []core.Warning) {
	jsonPath := filepath.Join(root, ConfigFile)
	if data, err := os.ReadFile(jsonPath); err == nil {
		var cfg rawConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, []core.Warning{core.Warn(core.ComponentManifest, fmt.Sprintf("skipped malformed %s: %v", ConfigFile, err))}
		}
		return &cfg, nil
	}

	yamlPath := filepath.Join(root, ConfigFileYAML)
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		return nil, nil
	}
	cfg, err := decodeYAMLConfig(data)
	if err != nil {
		return nil, []core.Warning{core.Warn(core.ComponentManifest, fmt.Sprintf("skipped malformed %s: %v", ConfigFileYAML, err))}
	}
	return cfg, nil
}

// decodeYAMLConfig reuses the JSON decoders by re-encoding the YAML tree
func decodeYAMLConfig(data []byte) (*rawConfig, error) {
	encoded, err := YAMLToJSON(data)
	if err != nil {
		return nil, err
	}
	var cfg rawConfig
	if err := json.Unmarshal(encoded, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// YAMLToJSON converts an opencode.yaml document into equivalent JSON
func YAMLToJSON(data []byte) ([]byte, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}

func parseInstructions(p *Plugin, root string) []core.Warning {
	dir := filepath.Join(root, InstructionsDir)
	entries, err := fsutil.ReadDir(dir)
	if err != nil {
		return []core.Warning{core.Warn(core.ComponentSkills, fmt.Sprintf("failed to read %s: %v", InstructionsDir, err))}
	}

	var warnings []core.Warning
	for _, entry := range entries {
		var name, path string
		switch {
		case entry.IsDir():
			name, path = entry.Name(), filepath.Join(dir, entry.Name(), InstructionFile)
		case strings.HasSuffix(entry.Name(), ".md"):
			name, path = strings.TrimSuffix(entry.Name(), ".md"), filepath.Join(dir, entry.Name())
		default:
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if !core.ValidName(name) {
			warnings = append(warnings, core.InvalidNameWarning(core.ComponentSkills, name, relPath(root, path)))
			continue
		}
		content := string(data)
		inst := Instruction{
			Name:     name,
			Path:     relPath(root, path),
			Content:  content,
			Triggers: markdown.Parse(content).List("triggers"),
		}

		var replaced bool
		p.Instructions, replaced = core.Upsert(p.Instructions, inst, func(i Instruction) string { return i.Name })
		if replaced {
			warnings = append(warnings, duplicateWarning(core.ComponentSkills, name, inst.Path))
		}
	}
	return warnings
}

func parseCommands(p *Plugin, root string) []core.Warning {
	var warnings []core.Warning
	for _, c := range p.Config.Commands {
		if c.Name == "" {
			warnings = append(warnings, core.Warn(core.ComponentCommands, fmt.Sprintf("skipped unnamed command in %s", ConfigFile)))
			continue
		}
		if !core.ValidName(c.Name) {
			warnings = append(warnings, core.InvalidNameWarning(core.ComponentCommands, c.Name, ConfigFile))
			continue
		}
		var replaced bool
		p.Commands, replaced = core.Upsert(p.Commands, c, func(c Command) string { return c.Name })
		if replaced {
			warnings = append(warnings, duplicateWarning(core.ComponentCommands, c.Name, ConfigFile))
		}
	}

	for _, f := range moduleFiles(filepath.Join(root, CommandsDir)) {
		data, err := os.ReadFile(f)
		if err != nil {
			warnings = append(warnings, core.Warn(core.ComponentCommands, fmt.Sprintf("skipped unreadable %s: %v", relPath(root, f), err)))
			continue
		}
		name := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		handler := relPath(root, f)
		if !core.ValidName(name) {
			warnings = append(warnings, core.InvalidNameWarning(core.ComponentCommands, name, handler))
			continue
		}

		if i := indexOf(p.Commands, name, func(c Command) string { return c.Name }); i >= 0 {
			// config entry owns the metadata; the module supplies the handler
			if p.Commands[i].Handler == "" {
				p.Commands[i].Handler = handler
			}
			if p.Commands[i].Description == "" {
				p.Commands[i].Description = ExtractDescription(string(data))
			}
			continue
		}
		p.Commands = append(p.Commands, Command{
			Name:        name,
			Description: ExtractDescription(string(data)),
			Handler:     handler,
		})
	}
	return warnings
}

func parsePluginHooks(p *Plugin, root string) []core.Warning {
	var warnings []core.Warning
	for _, f := range moduleFiles(filepath.Join(root, filepath.FromSlash(PluginsDir))) {
		data, err := os.ReadFile(f)
		if err != nil {
			warnings = append(warnings, core.Warn(core.ComponentHooks, fmt.Sprintf("skipped unreadable %s: %v", relPath(root, f), err)))
			continue
		}
		source := string(data)
		if IsGenerated(source) {
			continue
		}
		p.Hooks = append(p.Hooks, ExtractHooks(source, relPath(root, f))...)
	}
	return warnings
}

func parseAgents(p *Plugin, root string) []core.Warning {
	var warnings []core.Warning
	names := make([]string, 0, len(p.Config.Agents))
	for name := range p.Config.Agents {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !core.ValidName(name) {
			warnings = append(warnings, core.InvalidNameWarning(core.ComponentAgents, name, ConfigFile))
			continue
		}
		ac := p.Config.Agents[name]
		p.Agents = append(p.Agents, Agent{
			Name:         name,
			Description:  ac.Description,
			Provider:     ac.Provider,
			Model:        ac.Model,
			Instructions: ac.Instructions,
			Tools:        ac.Tools,
			MCPServers:   ac.MCPServers,
		})
	}

	dir := filepath.Join(root, filepath.FromSlash(AgentsDir))
	entries, err := fsutil.ReadDir(dir)
	if err != nil {
		return append(warnings, core.Warn(core.ComponentAgents, fmt.Sprintf("failed to read %s: %v", AgentsDir, err)))
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			warnings = append(warnings, core.Warn(core.ComponentAgents, fmt.Sprintf("skipped unreadable %s: %v", relPath(root, path), err)))
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".md")
		if !core.ValidName(name) {
			warnings = append(warnings, core.InvalidNameWarning(core.ComponentAgents, name, relPath(root, path)))
			continue
		}
		content := string(data)

		if i := indexOf(p.Agents, name, func(a Agent) string { return a.Name }); i >= 0 {
			p.Agents[i].Instructions = content
			continue
		}

		doc := markdown.Parse(content)
		p.Agents = append(p.Agents, Agent{
			Name:         name,
			Description:  doc.String("description"),
			Provider:     doc.String("provider"),
			Model:        doc.String("model"),
			Instructions: content,
			Tools:        doc.List("tools"),
		})
	}

	for i := range p.Agents {
		if p.Agents[i].Provider == "" {
			p.Agents[i].Provider = firstNonEmpty(p.Config.DefaultProvider, DefaultAgentModel)
		}
		if p.Agents[i].Model == "" {
			p.Agents[i].Model = firstNonEmpty(p.Config.DefaultModel, DefaultAgentModel)
		}
	}
	return warnings
}

// moduleFiles lists *.ts and *.js files directly inside dir, sorted
func moduleFiles(dir string) []string {
	entries, err := fsutil.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if !e.IsDir() && (ext == ".ts" || ext == ".js") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files
}

func indexOf[T any](items []T, name string, key func(T) string) int {
	for i := range items {
		if key(items[i]) == name {
			return i
		}
	}
	return -1
}

func duplicateWarning(component, name, path string) core.Warning {
	return core.Info(component, fmt.Sprintf("duplicate name '%s'; %s replaces the earlier entry", name, path))
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
