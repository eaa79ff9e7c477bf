package profile

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/seqlab/prospect/internal/textnorm"
)

// parseMarkdown reads a profile written as Markdown with YAML frontmatter.
// Identity fields come from the frontmatter; section bodies are mapped onto
// text fields by their (normalized) heading titles.
func parseMarkdown(content []byte) (Record, error) {
	front, body := splitFrontmatter(content)

	var r Record
	if len(front) > 0 {
		var data map[string]any
		if err := yaml.Unmarshal(front, &data); err == nil {
			r = fromMap(data)
		}
	}

	for title, text := range markdownSections(body) {
		switch textnorm.Normalize(title) {
		case "palavras-chave", "palavras chave", "keywords":
			r.Keywords = joinField(r.Keywords, text)
		case "linhas de pesquisa", "research lines":
			r.ResearchLines = joinField(r.ResearchLines, text)
		case "tecnicas utilizadas", "tecnicas", "techniques":
			r.Techniques = joinField(r.Techniques, text)
		}
	}

	return r, nil
}

func joinField(existing, addition string) string {
	addition = strings.TrimSpace(addition)
	if existing == "" {
		return addition
	}
	if addition == "" {
		return existing
	}
	return existing + " " + addition
}

// splitFrontmatter separates YAML frontmatter between --- delimiters from
// the document body. Returns a nil frontmatter when absent.
func splitFrontmatter(content []byte) (front, body []byte) {
	s := string(content)
	if !strings.HasPrefix(s, "---") {
		return nil, content
	}

	rest := s[3:]
	end := strings.Index(rest, "\n---")
	if end == -1 {
		return nil, content
	}

	front = []byte(strings.TrimSpace(rest[:end]))
	remaining := rest[end+4:]
	remaining = strings.TrimPrefix(remaining, "\n")
	return front, []byte(remaining)
}

// markdownSections walks the goldmark AST and returns each heading's title
// mapped to the text under it (up to the next heading of any level).
func markdownSections(body []byte) map[string]string {
	md := goldmark.New()
	reader := text.NewReader(body)
	doc := md.Parser().Parse(reader)

	sections := make(map[string]string)
	lines := strings.Split(string(body), "\n")

	type heading struct {
		title string
		line  int
	}
	var headings []heading

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			line := 1
			if h.Lines().Len() > 0 {
				seg := h.Lines().At(0)
				line = bytes.Count(body[:seg.Start], []byte("\n")) + 1
			}
			headings = append(headings, heading{
				title: string(h.Text(body)),
				line:  line,
			})
		}
		return ast.WalkContinue, nil
	})

	for i, h := range headings {
		start := h.line // content begins on the line after the heading
		end := len(lines)
		if i+1 < len(headings) {
			end = headings[i+1].line - 1
		}
		if start > end {
			continue
		}
		sections[h.title] = strings.TrimSpace(strings.Join(lines[start:end], "\n"))
	}

	return sections
}
