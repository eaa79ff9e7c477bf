// Package evidence implements the retrieval half of the classification
// pipeline: exact normalized-substring keyword search over a record's text
// fields, with bounded context windows per hit.
package evidence

import (
	"strings"

	"github.com/seqlab/prospect/internal/profile"
	"github.com/seqlab/prospect/internal/rubric"
	"github.com/seqlab/prospect/internal/textnorm"
)

const (
	// ContextWindow is how many characters of context are captured on each
	// side of a keyword hit.
	ContextWindow = 250

	// MaxSnippetLen bounds the final snippet length.
	MaxSnippetLen = 500
)

// Snippet is one piece of supporting text for a criterion, tagged with the
// original (non-normalized) keyword for readability.
type Snippet struct {
	Keyword string
	Context string
}

// String renders the snippet the way it appears in prompts.
func (s Snippet) String() string {
	return "[" + s.Keyword + "]: " + s.Context
}

// Retrieve scans the record's text fields for every rubric keyword and
// returns snippets grouped by criterion code. Every code is present in the
// result; criteria with no keyword hit map to an empty list. Retrieval
// never fabricates evidence.
//
// Matching is exact substring over normalized text. Only the first
// occurrence of each keyword is captured. No stemming or fuzzy matching;
// that is a known limitation of the rubric keywords, not something to fix
// here.
func Retrieve(r *profile.Record) map[string][]Snippet {
	var buf strings.Builder
	for _, f := range r.EvidenceFields() {
		buf.WriteString(" ")
		buf.WriteString(f.Value)
	}
	text := textnorm.Normalize(buf.String())

	found := make(map[string][]Snippet, len(rubric.Codes()))
	for _, crit := range rubric.Criteria() {
		var snippets []Snippet
		for _, keyword := range crit.Keywords {
			normalized := textnorm.Normalize(keyword)
			if normalized == "" {
				continue
			}
			if ctx := contextAround(text, normalized); ctx != "" {
				snippets = append(snippets, Snippet{Keyword: keyword, Context: ctx})
			}
		}
		found[crit.Code] = snippets
	}
	return found
}

// contextAround extracts a whitespace-collapsed window of ContextWindow
// characters on each side of the first occurrence of keyword in text.
// Returns "" when the keyword does not occur.
func contextAround(text, keyword string) string {
	pos := strings.Index(text, keyword)
	if pos == -1 {
		return ""
	}

	start := pos - ContextWindow
	if start < 0 {
		start = 0
	}
	end := pos + len(keyword) + ContextWindow
	if end > len(text) {
		end = len(text)
	}

	ctx := strings.Join(strings.Fields(text[start:end]), " ")
	if len(ctx) > MaxSnippetLen {
		ctx = ctx[:MaxSnippetLen]
	}
	return ctx
}
