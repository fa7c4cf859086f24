// Package markdown reads and writes the small front-matter dialect used by
// plugin markdown files. It is line oriented and deliberately not YAML:
// scalars, inline lists, block lists and block lists of flat records.
package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

const delimiter = "---"

var keyPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_-]*):\s*(.*)$`)

// Document is a parsed markdown file
type Document struct {
	HasFrontMatter bool
	Body           string

	scalars map[string]string
	lists   map[string][]string
	records map[string][]map[string]string
}

// Parse splits content into front matter and body.
// Content without a leading delimiter is returned whole as Body.
func Parse(content string) Document {
	doc := Document{
		Body:    content,
		scalars: make(map[string]string),
		lists:   make(map[string][]string),
		records: make(map[string][]map[string]string),
	}

	front, body, ok := split(content)
	if !ok {
		return doc
	}
	doc.HasFrontMatter = true
	doc.Body = body

	var (
		blockKey string
		current  map[string]string
	)
	for _, raw := range strings.Split(front, "\n") {
		line := strings.TrimRight(raw, " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		indented := line != strings.TrimLeft(line, " \t")

		if !indented && !strings.HasPrefix(trimmed, "- ") {
			m := keyPattern.FindStringSubmatch(trimmed)
			if m == nil {
				blockKey, current = "", nil
				continue
			}
			key, value := m[1], strings.TrimSpace(m[2])
			blockKey, current = "", nil
			switch {
			case value == "":
				blockKey = key
			case strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]"):
				doc.lists[key] = parseInlineList(value)
			default:
				doc.scalars[key] = unquote(value)
			}
			continue
		}

		if blockKey == "" {
			continue
		}

		if item, ok := strings.CutPrefix(trimmed, "- "); ok || trimmed == "-" {
			item = strings.TrimSpace(item)
			if m := keyPattern.FindStringSubmatch(item); m != nil && !isQuoted(item) {
				current = map[string]string{m[1]: unquote(strings.TrimSpace(m[2]))}
				doc.records[blockKey] = append(doc.records[blockKey], current)
				continue
			}
			current = nil
			doc.lists[blockKey] = append(doc.lists[blockKey], unquote(item))
			continue
		}

		if current != nil {
			if m := keyPattern.FindStringSubmatch(trimmed); m != nil {
				current[m[1]] = unquote(strings.TrimSpace(m[2]))
			}
		}
	}

	return doc
}

// String returns a scalar field
func (d Document) String(key string) string {
	return d.scalars[key]
}

// List returns a list field; a scalar is promoted to a single-item list
func (d Document) List(key string) []string {
	if l, ok := d.lists[key]; ok {
		return l
	}
	if s, ok := d.scalars[key]; ok && s != "" {
		return []string{s}
	}
	return nil
}

// Records returns a block list of records
func (d Document) Records(key string) []map[string]string {
	return d.records[key]
}

// Has reports whether the key appeared in the front matter
func (d Document) Has(key string) bool {
	_, s := d.scalars[key]
	_, l := d.lists[key]
	_, r := d.records[key]
	return s || l || r
}

func split(content string) (front, body string, ok bool) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, delimiter+"\n") {
		return "", content, false
	}

	rest := normalized[len(delimiter)+1:]
	if strings.HasPrefix(rest, delimiter+"\n") || rest == delimiter {
		return "", strings.TrimPrefix(strings.TrimPrefix(rest, delimiter), "\n"), true
	}

	end := strings.Index(rest, "\n"+delimiter+"\n")
	if end < 0 {
		if strings.HasSuffix(rest, "\n"+delimiter) {
			return rest[:len(rest)-len(delimiter)-1], "", true
		}
		return "", content, false
	}
	return rest[:end], rest[end+len(delimiter)+2:], true
}

func parseInlineList(value string) []string {
	inner := strings.TrimSpace(value[1 : len(value)-1])
	if inner == "" {
		return []string{}
	}
	parts := strings.Split(inner, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, unquote(p))
		}
	}
	return items
}

func isQuoted(s string) bool {
	return len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'')
}

func unquote(s string) string {
	if !isQuoted(s) {
		return s
	}
	if s[0] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
	}
	return s[1 : len(s)-1]
}
