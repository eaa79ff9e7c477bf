// Package scoring turns a criterion set into category scores, tiers, the
// final commercial label and a one-line justification. Everything here is
// pure and deterministic; the thresholds and override rules are commercial
// policy, not tuning knobs.
package scoring

import (
	"fmt"

	"github.com/seqlab/prospect/internal/rubric"
)

// Final client labels, ordered weakest to strongest.
const (
	LabelInadequado      = "CLIENTE INADEQUADO"
	LabelBaixaPrioridade = "CLIENTE BAIXA PRIORIDADE"
	LabelRegular         = "CLIENTE REGULAR"
	LabelPrioritario     = "CLIENTE PRIORITÁRIO"
	LabelEstrategico     = "CLIENTE ESTRATÉGICO"
)

// labelRank orders labels so negative-factor caps can be applied with min.
var labelRank = map[string]int{
	LabelInadequado:      0,
	LabelBaixaPrioridade: 1,
	LabelRegular:         2,
	LabelPrioritario:     3,
	LabelEstrategico:     4,
}

// CategoryResult is the per-category outcome: a 0–10 score and the tier
// after negative-factor overrides.
type CategoryResult struct {
	Score float64
	Tier  rubric.Tier
}

// Result is the full scoring outcome for one record.
type Result struct {
	Categories    map[rubric.Category]CategoryResult
	Mean          float64
	Altas         int
	N1            bool
	N2            bool
	Label         string
	Justification string
}

// Negative reports whether either disqualifying factor fired.
func (r Result) Negative() bool {
	return r.N1 || r.N2
}

// Score evaluates a criterion set through the full pipeline: category
// scores, tier assignment with negative overrides, final label with caps,
// and the justification line.
func Score(set rubric.CriterionSet) Result {
	r := Result{
		Categories: make(map[rubric.Category]CategoryResult, 4),
		N1:         set["N1"],
		N2:         set["N2"],
	}

	var total float64
	for _, cat := range rubric.Categories() {
		score := categoryScore(cat, set)
		r.Categories[cat] = CategoryResult{
			Score: score,
			Tier:  categoryTier(cat, score, set),
		}
		total += score
	}
	r.Mean = total / 4

	for _, cr := range r.Categories {
		if cr.Tier == rubric.TierAlta {
			r.Altas++
		}
	}

	r.Label = finalLabel(r.Altas, r.Mean, r.N1, r.N2)
	r.Justification = justification(r)
	return r
}

// categoryScore is the weighted fraction of true criteria scaled to 0–10.
func categoryScore(cat rubric.Category, set rubric.CriterionSet) float64 {
	raw := 0
	for _, c := range rubric.CategoryCriteria(cat) {
		if set[c.Code] {
			raw += c.Weight
		}
	}
	return float64(raw) / float64(rubric.CategoryWeightSum(cat)) * 10
}

// categoryTier applies the per-category threshold rules and the negative
// overrides. N1 (no direct recombinant-protein use) zeroes PA and C and caps
// S; N2 (field unrelated to biotechnology) zeroes S and caps PA and C;
// either one caps F.
func categoryTier(cat rubric.Category, score float64, set rubric.CriterionSet) rubric.Tier {
	n1, n2 := set["N1"], set["N2"]

	switch cat {
	case rubric.CategoryPA:
		if n1 {
			return rubric.TierBaixa
		}
		t := tierPA(score, set)
		if n2 {
			t = t.Min(rubric.TierModerada)
		}
		return t

	case rubric.CategoryS:
		if n2 {
			return rubric.TierBaixa
		}
		t := tierByThreshold(score, 6.67, 3.33)
		if n1 {
			t = t.Min(rubric.TierModerada)
		}
		return t

	case rubric.CategoryC:
		if n1 {
			return rubric.TierBaixa
		}
		t := tierByThreshold(score, 4.0, 2.0)
		if n2 {
			t = t.Min(rubric.TierModerada)
		}
		return t

	default: // CategoryF
		t := tierByThreshold(score, 5.0, 2.5)
		if n1 || n2 {
			t = t.Min(rubric.TierModerada)
		}
		return t
	}
}

// tierPA gates ALTA on having both a core signal (PA1 or PA2) and a
// supporting technique (PA3 or PA4); the score alone cannot reach ALTA.
func tierPA(score float64, set rubric.CriterionSet) rubric.Tier {
	core := set["PA1"] || set["PA2"]
	support := set["PA3"] || set["PA4"]
	if core && support {
		return rubric.TierAlta
	}
	if score >= 3.33 {
		return rubric.TierModerada
	}
	return rubric.TierBaixa
}

func tierByThreshold(score, alta, moderada float64) rubric.Tier {
	switch {
	case score >= alta:
		return rubric.TierAlta
	case score >= moderada:
		return rubric.TierModerada
	default:
		return rubric.TierBaixa
	}
}

// finalLabel combines ALTA count and mean score into the client label, then
// applies the negative-factor caps. Both negatives together short-circuit
// to INADEQUADO.
func finalLabel(altas int, mean float64, n1, n2 bool) string {
	if n1 && n2 {
		return LabelInadequado
	}

	label := baseLabel(altas, mean)
	if n2 {
		label = capLabel(label, LabelRegular)
	} else if n1 {
		label = capLabel(label, LabelPrioritario)
	}
	return label
}

func baseLabel(altas int, mean float64) string {
	switch {
	case altas >= 2 && mean >= 6.0:
		return LabelEstrategico
	case altas >= 1 && mean >= 5.0:
		return LabelPrioritario
	case mean >= 3.0:
		return LabelRegular
	default:
		return LabelBaixaPrioridade
	}
}

func capLabel(label, cap string) string {
	if labelRank[label] > labelRank[cap] {
		return cap
	}
	return label
}

// justification renders the one-line Portuguese explanation for the label.
// The wording is fixed commercial copy.
func justification(r Result) string {
	switch r.Label {
	case LabelInadequado:
		return "Cliente inadequado: sem uso de proteínas recombinantes e área não correlata à biotecnologia"
	case LabelEstrategico:
		return fmt.Sprintf("Cliente estratégico: %d categoria(s) ALTA, pontuação média %.1f, perfil ideal para produtos",
			r.Altas, r.Mean)
	case LabelPrioritario:
		if r.N1 {
			return fmt.Sprintf("Cliente prioritário: %d categoria(s) ALTA mas limitado por não usar proteínas recombinantes diretamente",
				r.Altas)
		}
		return fmt.Sprintf("Cliente prioritário: %d categoria(s) ALTA, pontuação média %.1f, bom potencial",
			r.Altas, r.Mean)
	case LabelRegular:
		if r.N2 {
			return fmt.Sprintf("Cliente regular: área parcialmente correlata, pontuação média %.1f, potencial limitado", r.Mean)
		}
		return fmt.Sprintf("Cliente regular: pontuação média %.1f, algumas categorias relevantes", r.Mean)
	default:
		return fmt.Sprintf("Cliente baixa prioridade: pontuação média %.1f, poucas categorias relevantes", r.Mean)
	}
}
