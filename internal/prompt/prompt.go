// Package prompt renders the instruction payloads sent to the LLM backend.
// Rendering is deterministic: the same records and evidence always produce
// byte-identical prompts, which both the tests and the result cache rely on.
package prompt

import (
	"fmt"
	"strings"

	"github.com/seqlab/prospect/internal/evidence"
	"github.com/seqlab/prospect/internal/profile"
	"github.com/seqlab/prospect/internal/rubric"
)

const (
	// MaxSnippetsPerRecord bounds total evidence per record in batch mode.
	MaxSnippetsPerRecord = 10

	// MaxSnippetsPerCriterion bounds evidence per criterion in batch mode.
	MaxSnippetsPerCriterion = 2

	// maxSnippetsIndividual is the per-criterion cap in individual mode,
	// where the whole prompt carries a single record.
	maxSnippetsIndividual = 3

	// batchSnippetTextCap truncates snippet text in batch mode to keep the
	// prompt within token limits.
	batchSnippetTextCap = 150
)

// Entry pairs one record with its retrieved evidence.
type Entry struct {
	Record   *profile.Record
	Evidence map[string][]evidence.Snippet
}

// Persona is the system preamble sent with every classification request.
const Persona = "Você é um especialista em biotecnologia que classifica pesquisadores " +
	"com pensamento analítico. Pense sobre cada evidência antes de classificar."

// Batch renders the prompt for a batch of records. The response schema
// demands one item per record, in input order.
func Batch(entries []Entry) string {
	n := len(entries)

	var b strings.Builder
	fmt.Fprintf(&b, "SISTEMA DE CLASSIFICAÇÃO EM BATCH - %d PESQUISADORES\n\n", n)
	b.WriteString(`INSTRUÇÕES CRÍTICAS:
- Analise CADA pesquisador individualmente
- Classifique CADA critério como true/false baseado em evidências CLARAS
- Seja RIGOROSO: só marque true se houver evidência DIRETA
- Responda com JSON válido para TODOS os pesquisadores

`)
	writeRubric(&b)

	b.WriteString("\nPESQUISADORES PARA ANÁLISE:\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "\n=== PESQUISADOR %d: %s ===\n", i+1, e.Record.Name)
		fmt.Fprintf(&b, "INSTITUIÇÃO: %s\n", e.Record.Institution)
		fmt.Fprintf(&b, "ÁREA: %s\n", e.Record.ResearchLines)
		b.WriteString("\nEVIDÊNCIAS ENCONTRADAS:\n")
		writeEvidence(&b, e.Evidence, MaxSnippetsPerCriterion, MaxSnippetsPerRecord, batchSnippetTextCap)
	}

	b.WriteString("\nRESPOSTA REQUERIDA:\n")
	b.WriteString("Responda APENAS em formato JSON válido com esta estrutura exata:\n\n")
	writeBatchSchema(&b, n)
	fmt.Fprintf(&b, `
CRÍTICO:
- Inclua TODOS os %d pesquisadores na resposta
- Use APENAS true/false (minúsculas)
- Mantenha a ordem dos pesquisadores (1, 2, 3...)
- JSON deve ser válido e completo
`, n)

	return b.String()
}

// Individual renders the prompt for a single record, used by the per-item
// fallback path.
func Individual(e Entry) string {
	var b strings.Builder
	b.WriteString("SISTEMA DE CLASSIFICAÇÃO DE PESQUISADORES BIOTECNOLÓGICOS\n\n")
	fmt.Fprintf(&b, "PESQUISADOR: %s\n", e.Record.Name)
	fmt.Fprintf(&b, "INSTITUIÇÃO: %s\n", e.Record.Institution)
	fmt.Fprintf(&b, "ÁREA: %s\n\n", e.Record.ResearchLines)
	b.WriteString(`INSTRUÇÕES:
Analise as evidências encontradas e classifique CADA critério como true/false.
Seja RIGOROSO: só marque true se houver evidência CLARA e DIRETA.

`)
	writeRubric(&b)

	b.WriteString("\nEVIDÊNCIAS ENCONTRADAS:\n")
	writeEvidence(&b, e.Evidence, maxSnippetsIndividual, 0, 0)

	b.WriteString("\nRESPOSTA REQUERIDA:\n")
	b.WriteString("Responda APENAS em formato JSON válido:\n\n{\n")
	codes := rubric.Codes()
	for i, code := range codes {
		sep := ","
		if i == len(codes)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "    %q: true/false%s\n", code, sep)
	}
	b.WriteString("}\n\nIMPORTANTE: Responda APENAS o JSON, sem explicações adicionais.\n")

	return b.String()
}

// writeRubric renders the full criterion table: every category with its
// criteria and weights, then the negative factors.
func writeRubric(b *strings.Builder) {
	b.WriteString("CRITÉRIOS DE CLASSIFICAÇÃO:\n")

	for _, cat := range rubric.Categories() {
		fmt.Fprintf(b, "\n=== CATEGORIA %s: %s ===\n", cat.Code(), cat.Title())
		crits := rubric.CategoryCriteria(cat)
		showWeight := false
		for _, c := range crits {
			if c.Weight != 1 {
				showWeight = true
			}
		}
		for _, c := range crits {
			if showWeight {
				fmt.Fprintf(b, "%s (Peso %d): %s\n", c.Code, c.Weight, c.Description)
			} else {
				fmt.Fprintf(b, "%s: %s\n", c.Code, c.Description)
			}
		}
	}

	b.WriteString("\n=== FATORES NEGATIVOS ===\n")
	for _, c := range rubric.Criteria() {
		if c.Negative {
			fmt.Fprintf(b, "%s: %s\n", c.Code, c.Description)
		}
	}
}

// writeEvidence emits snippets grouped by criterion code in canonical order.
// perCriterion caps snippets per criterion; perRecord caps the total when
// positive; textCap truncates snippet text when positive.
func writeEvidence(b *strings.Builder, ev map[string][]evidence.Snippet, perCriterion, perRecord, textCap int) {
	written := 0
	for _, code := range rubric.Codes() {
		snippets := ev[code]
		if len(snippets) == 0 {
			continue
		}
		if perRecord > 0 && written >= perRecord {
			break
		}

		fmt.Fprintf(b, "\n%s:\n", code)
		for i, s := range snippets {
			if i >= perCriterion {
				break
			}
			if perRecord > 0 && written >= perRecord {
				break
			}
			text := s.String()
			if textCap > 0 && len(text) > textCap {
				text = text[:textCap] + "..."
			}
			fmt.Fprintf(b, "  - %s\n", text)
			written++
		}
	}
}

// writeBatchSchema renders the required JSON response shape for n records.
func writeBatchSchema(b *strings.Builder, n int) {
	b.WriteString("{\n    \"pesquisadores\": [\n")

	codes := rubric.Codes()
	for i := 1; i <= n; i++ {
		b.WriteString("        {\n")
		fmt.Fprintf(b, "            \"pesquisador_id\": %d,\n", i)
		fmt.Fprintf(b, "            \"nome\": \"Nome do Pesquisador %d\",\n", i)
		for j, code := range codes {
			sep := ","
			if j == len(codes)-1 {
				sep = ""
			}
			fmt.Fprintf(b, "            %q: true/false%s\n", code, sep)
		}
		if i < n {
			b.WriteString("        },\n")
		} else {
			b.WriteString("        }\n")
		}
	}

	b.WriteString("    ]\n}\n")
}
