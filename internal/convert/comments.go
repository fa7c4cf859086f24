package convert

import (
	"regexp"
	"strings"

	"github.com/egoavara/plugin-convert/internal/markdown"
)

var (
	providerComment = regexp.MustCompile(`^<!-- Original provider: (.*?), model: (.*?) -->\n*`)
	triggersComment = regexp.MustCompile(`^<!-- OpenCode triggers: (.*?) -->\n*`)
)

// splitFrontMatter returns the raw front-matter block (delimiters included) and the rest
func splitFrontMatter(content string) (string, string) {
	doc := markdown.Parse(content)
	if !doc.HasFrontMatter || !strings.HasSuffix(content, doc.Body) {
		return "", content
	}
	return content[:len(content)-len(doc.Body)], doc.Body
}

// insertLeadingComment places comment at the top of the body, after any front matter
func insertLeadingComment(content, comment string) string {
	front, body := splitFrontMatter(content)
	return front + comment + "\n\n" + body
}

// takeLeadingComment removes a leading comment matching re and returns its submatches
func takeLeadingComment(content string, re *regexp.Regexp) ([]string, string, bool) {
	front, body := splitFrontMatter(content)
	m := re.FindStringSubmatch(body)
	if m == nil {
		return nil, content, false
	}
	return m[1:], front + body[len(m[0]):], true
}
