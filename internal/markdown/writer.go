package markdown

import (
	"strconv"
	"strings"
)

// Field is one ordered key/value pair inside a record
type Field struct {
	Key   string
	Value string
}

// FrontMatter builds front matter in insertion order
type FrontMatter struct {
	lines []string
}

// Set adds a scalar; empty values are skipped
func (f *FrontMatter) Set(key, value string) {
	if value == "" {
		return
	}
	f.lines = append(f.lines, key+": "+quote(value))
}

// SetList adds a list, inline when every item is simple, block otherwise
func (f *FrontMatter) SetList(key string, items []string) {
	if len(items) == 0 {
		return
	}
	inline := true
	for _, item := range items {
		if strings.ContainsAny(item, ",[]\"'") || item != strings.TrimSpace(item) || item == "" {
			inline = false
			break
		}
	}
	if inline {
		f.lines = append(f.lines, key+": ["+strings.Join(items, ", ")+"]")
		return
	}
	f.lines = append(f.lines, key+":")
	for _, item := range items {
		f.lines = append(f.lines, "  - "+strconv.Quote(item))
	}
}

// SetRecords adds a block list of records
func (f *FrontMatter) SetRecords(key string, records [][]Field) {
	if len(records) == 0 {
		return
	}
	f.lines = append(f.lines, key+":")
	for _, rec := range records {
		for i, field := range rec {
			prefix := "    "
			if i == 0 {
				prefix = "  - "
			}
			f.lines = append(f.lines, prefix+field.Key+": "+quote(field.Value))
		}
	}
}

// Empty reports whether nothing was added
func (f *FrontMatter) Empty() bool {
	return len(f.lines) == 0
}

// Render prepends the front matter to body
func (f *FrontMatter) Render(body string) string {
	if f.Empty() {
		return body
	}
	var sb strings.Builder
	sb.WriteString(delimiter + "\n")
	for _, l := range f.lines {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	sb.WriteString(delimiter + "\n")
	sb.WriteString(body)
	return sb.String()
}

// quote wraps values the parser would otherwise misread
func quote(value string) string {
	needs := value != strings.TrimSpace(value) ||
		strings.Contains(value, ": ") ||
		strings.ContainsAny(value, "\n\"#") ||
		strings.HasPrefix(value, "[") ||
		strings.HasPrefix(value, "'") ||
		strings.HasPrefix(value, "- ") ||
		strings.HasSuffix(value, ":")
	if needs {
		return strconv.Quote(value)
	}
	return value
}
