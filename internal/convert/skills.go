package convert

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/egoavara/plugin-convert/internal/claude"
	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/opencode"
)

// namespacedRef matches /plugin:skill references at a word boundary
var namespacedRef = regexp.MustCompile("(^|[\\s(`])/([A-Za-z0-9][\\w.-]*):([A-Za-z0-9][\\w.-]*)")

// RewriteReferences replaces namespaced slash references with bare ones.
// It returns the rewritten text and the number of references changed.
func RewriteReferences(content string) (string, int) {
	n := 0
	out := namespacedRef.ReplaceAllStringFunc(content, func(match string) string {
		n++
		sub := namespacedRef.FindStringSubmatch(match)
		return sub[1] + "/" + sub[3]
	})
	return out, n
}

// SkillsToOpenCode converts skills into instructions
func SkillsToOpenCode(skills []claude.Skill) ([]opencode.Instruction, []core.Warning) {
	var out []opencode.Instruction
	var warnings []core.Warning

	for _, s := range skills {
		content, n := RewriteReferences(s.Content)
		if n > 0 {
			warnings = append(warnings, core.Info(core.ComponentSkills,
				fmt.Sprintf("skill '%s': %d namespaced reference(s) rewritten to bare form", s.Name, n)))
		}
		if len(s.References) > 0 {
			warnings = append(warnings, core.Info(core.ComponentSkills,
				fmt.Sprintf("skill '%s' has %d reference file(s) that were not copied: %s",
					s.Name, len(s.References), strings.Join(s.References, ", "))).
				WithSuggestion("copy the reference files next to the instruction manually"))
		}

		var triggers []string
		if groups, rest, ok := takeLeadingComment(content, triggersComment); ok {
			triggers = splitList(groups[0])
			content = rest
		}

		out = append(out, opencode.Instruction{
			Name:     s.Name,
			Path:     path.Join(opencode.InstructionsDir, s.Name, opencode.InstructionFile),
			Content:  content,
			Triggers: triggers,
		})
	}
	return out, warnings
}

// SkillsToClaude converts instructions into skills.
// Triggers survive as a leading HTML comment.
func SkillsToClaude(instructions []opencode.Instruction) ([]claude.Skill, []core.Warning) {
	var out []claude.Skill
	var warnings []core.Warning

	for _, inst := range instructions {
		content := inst.Content
		if len(inst.Triggers) > 0 {
			content = insertLeadingComment(content, "<!-- OpenCode triggers: "+strings.Join(inst.Triggers, ", ")+" -->")
			warnings = append(warnings, core.Info(core.ComponentSkills,
				fmt.Sprintf("instruction '%s': triggers kept as a comment; Claude Code has no activation keywords", inst.Name)).
				WithSuggestion("describe when to use the skill in its description instead"))
		}
		out = append(out, claude.Skill{
			Name:    inst.Name,
			Path:    path.Join(claude.SkillsDir, inst.Name, claude.SkillFile),
			Content: content,
		})
	}
	return out, warnings
}

func splitList(s string) []string {
	var items []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
