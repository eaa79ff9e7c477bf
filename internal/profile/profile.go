// Package profile defines the researcher record produced by the external
// extraction stage and loads it from a directory of profile documents.
// Records are read-only to the classification core; derived results are
// attached elsewhere, never written back here.
package profile

import (
	"fmt"
	"strconv"
	"strings"
)

// placeholders are extractor outputs that mean "no data"; they must not be
// fed to evidence retrieval as if they were text.
var placeholders = map[string]bool{
	"":              true,
	"não informado": true,
	"nao informado": true,
	"n/a":           true,
}

// IsPlaceholder reports whether a field value carries no real content.
func IsPlaceholder(v string) bool {
	return placeholders[strings.ToLower(strings.TrimSpace(v))]
}

// Record is one researcher profile as produced by the extractor.
type Record struct {
	Name          string `json:"nome_completo" yaml:"nome_completo"`
	Institution   string `json:"instituicao_vinculo" yaml:"instituicao_vinculo"`
	Title         string `json:"titulacao_atual" yaml:"titulacao_atual"`
	ResearchLines string `json:"linhas_pesquisa" yaml:"linhas_pesquisa"`
	Keywords      string `json:"palavras_chave" yaml:"palavras_chave"`
	Techniques    string `json:"tecnicas_utilizadas" yaml:"tecnicas_utilizadas"`
	Email         string `json:"email,omitempty" yaml:"email,omitempty"`
	LattesURL     string `json:"curriculo_lattes,omitempty" yaml:"curriculo_lattes,omitempty"`

	// Extra carries unrecognized extractor fields through untouched.
	Extra map[string]string `json:"-" yaml:"-"`
}

// TextField is one named free-text attribute used for evidence retrieval.
type TextField struct {
	Name  string
	Value string
}

// EvidenceFields returns the record's text fields in the fixed order the
// retriever concatenates them. Placeholder values are excluded.
func (r *Record) EvidenceFields() []TextField {
	fields := []TextField{
		{Name: "palavras_chave", Value: r.Keywords},
		{Name: "linhas_pesquisa", Value: r.ResearchLines},
		{Name: "tecnicas_utilizadas", Value: r.Techniques},
	}

	out := make([]TextField, 0, len(fields))
	for _, f := range fields {
		if !IsPlaceholder(f.Value) {
			out = append(out, f)
		}
	}
	return out
}

// knownKeys maps extractor field names (and aliases) to setter functions.
func (r *Record) setField(key, value string) bool {
	switch key {
	case "nome_completo", "nome", "name":
		r.Name = value
	case "instituicao_vinculo", "instituicao", "institution":
		r.Institution = value
	case "titulacao_atual", "titulacao":
		r.Title = value
	case "linhas_pesquisa", "research_lines":
		r.ResearchLines = value
	case "palavras_chave", "keywords":
		r.Keywords = value
	case "tecnicas_utilizadas", "tecnicas", "techniques":
		r.Techniques = value
	case "email":
		r.Email = value
	case "curriculo_lattes", "link_lattes", "lattes":
		// First writer wins so curriculo_lattes beats the link_lattes alias.
		if r.LattesURL == "" {
			r.LattesURL = value
		}
	default:
		return false
	}
	return true
}

// fromMap populates a Record from a decoded key/value document, routing
// unknown keys into Extra.
func fromMap(data map[string]any) Record {
	var r Record
	for key, raw := range data {
		value := coerceString(raw)
		if r.setField(strings.ToLower(key), value) {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]string)
		}
		r.Extra[key] = value
	}
	return r
}

// coerceString flattens extractor values: lists become comma-joined text,
// scalars are rendered the obvious way.
func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}
