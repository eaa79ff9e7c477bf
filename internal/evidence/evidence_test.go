package evidence

import (
	"strings"
	"testing"

	"github.com/seqlab/prospect/internal/profile"
	"github.com/seqlab/prospect/internal/rubric"
)

func TestRetrieveFindsNormalizedKeyword(t *testing.T) {
	r := &profile.Record{
		Name:          "Pesquisadora",
		ResearchLines: "Expressão de Proteína recombinante em E. coli",
	}

	found := Retrieve(r)

	pa1 := found["PA1"]
	if len(pa1) == 0 {
		t.Fatal("expected PA1 evidence for 'proteina recombinante'")
	}

	var hit bool
	for _, s := range pa1 {
		if s.Keyword == "proteina recombinante" {
			hit = true
			if !strings.Contains(s.Context, "proteina recombinante") {
				t.Errorf("context %q does not contain the keyword", s.Context)
			}
		}
	}
	if !hit {
		t.Errorf("PA1 snippets missing 'proteina recombinante': %v", pa1)
	}
}

func TestRetrieveNeverInventsEvidence(t *testing.T) {
	r := &profile.Record{
		Name:          "Teórico",
		ResearchLines: "filosofia da linguagem e semiótica",
	}

	found := Retrieve(r)

	// Every criterion code must be present, all with empty evidence.
	for _, code := range rubric.Codes() {
		snippets, ok := found[code]
		if !ok {
			t.Errorf("criterion %s missing from retrieval result", code)
		}
		if len(snippets) != 0 {
			t.Errorf("criterion %s has fabricated evidence: %v", code, snippets)
		}
	}
}

func TestRetrieveFirstOccurrenceOnly(t *testing.T) {
	r := &profile.Record{
		Name:     "Repetida",
		Keywords: "elisa e mais elisa e ainda elisa",
	}

	found := Retrieve(r)

	count := 0
	for _, s := range found["PA3"] {
		if s.Keyword == "elisa" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("keyword 'elisa' captured %d times, want 1 (first occurrence only)", count)
	}
}

func TestRetrieveSnippetBounds(t *testing.T) {
	long := strings.Repeat("contexto extenso sobre biotecnologia industrial ", 40)
	r := &profile.Record{
		Name:          "Longa",
		ResearchLines: long + " biocatalise " + long,
	}

	found := Retrieve(r)
	if len(found["PA2"]) == 0 {
		t.Fatal("expected PA2 evidence for 'biocatalise'")
	}
	for _, s := range found["PA2"] {
		if len(s.Context) > MaxSnippetLen {
			t.Errorf("snippet length %d exceeds cap %d", len(s.Context), MaxSnippetLen)
		}
	}
}

func TestRetrieveSkipsPlaceholderFields(t *testing.T) {
	r := &profile.Record{
		Name:       "Vazio",
		Keywords:   "Não informado",
		Techniques: "N/A",
	}

	found := Retrieve(r)
	for code, snippets := range found {
		if len(snippets) != 0 {
			t.Errorf("placeholder fields yielded evidence for %s: %v", code, snippets)
		}
	}
}
