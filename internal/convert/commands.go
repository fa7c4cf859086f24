package convert

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/egoavara/plugin-convert/internal/claude"
	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/opencode"
)

// CommandsToOpenCode converts markdown commands into TypeScript command entries.
// Parameters carry over unchanged.
func CommandsToOpenCode(cmds []claude.Command) ([]opencode.Command, []core.Warning) {
	var out []opencode.Command
	var warnings []core.Warning

	for _, c := range cmds {
		out = append(out, opencode.Command{
			Name:        c.Name,
			Aliases:     slices.Clone(c.Aliases),
			Description: c.Description,
			Handler:     path.Join(opencode.CommandsDir, c.Name+".ts"),
			Parameters:  slices.Clone(c.Parameters),
		})

		w := core.Info(core.ComponentCommands,
			fmt.Sprintf("command '%s': prompt text became a TypeScript stub; implement execute() by hand", c.Name))
		if len(c.Examples) > 0 {
			w = w.WithSuggestion(fmt.Sprintf("%d usage example(s) were not carried over", len(c.Examples)))
		}
		warnings = append(warnings, w)
	}
	return out, warnings
}

// CommandsToClaude converts TypeScript command entries into markdown commands.
// Parameters carry over unchanged; the body documents them.
func CommandsToClaude(cmds []opencode.Command) ([]claude.Command, []core.Warning) {
	var out []claude.Command
	var warnings []core.Warning

	for _, c := range cmds {
		out = append(out, claude.Command{
			Name:        c.Name,
			Aliases:     slices.Clone(c.Aliases),
			Description: c.Description,
			Parameters:  slices.Clone(c.Parameters),
			Content:     commandBody(c),
			Path:        path.Join(claude.CommandsDir, c.Name+".md"),
		})
		warnings = append(warnings, core.Info(core.ComponentCommands,
			fmt.Sprintf("command '%s': handler logic must be rewritten as prompt text", c.Name)))
	}
	return out, warnings
}

func commandBody(c opencode.Command) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.Name)
	if c.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", c.Description)
	}
	if len(c.Parameters) > 0 {
		b.WriteString("## Parameters\n\n")
		for _, p := range c.Parameters {
			fmt.Fprintf(&b, "- `%s`", p.Name)
			if p.Type != "" {
				fmt.Fprintf(&b, " (%s)", p.Type)
			}
			if p.Required {
				b.WriteString(" required")
			}
			if p.Description != "" {
				fmt.Fprintf(&b, ": %s", p.Description)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if c.Handler != "" {
		fmt.Fprintf(&b, "<!-- Converted from OpenCode handler: %s -->\n", c.Handler)
	}
	return b.String()
}
