package reporter

import (
	"encoding/json"
	"io"

	"github.com/seqlab/prospect/internal/rubric"
)

// JSONReporter outputs run results as JSON
type JSONReporter struct {
	w io.Writer
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{w: w}
}

// JSONOutput represents the JSON output format
type JSONOutput struct {
	Results []JSONResult `json:"results"`
	Summary JSONSummary  `json:"summary"`
	Files   []JSONFile   `json:"files,omitempty"`
}

// JSONResult represents one classified profile in JSON format
type JSONResult struct {
	Name          string             `json:"nome"`
	SourceFile    string             `json:"arquivo_origem"`
	Label         string             `json:"classificacao_final"`
	Justification string             `json:"justificativa"`
	Mean          float64            `json:"pontuacao_media"`
	Scores        map[string]float64 `json:"pontuacoes"`
	Tiers         map[string]string  `json:"classificacoes"`
	Criteria      map[string]bool    `json:"criterios"`
	FromCache     bool               `json:"cache"`
	AllFalse      bool               `json:"sem_resposta_valida,omitempty"`
}

// JSONSummary represents the aggregate block in JSON format
type JSONSummary struct {
	Total         int                `json:"total"`
	Viable        int                `json:"viaveis"`
	MeanScore     float64            `json:"pontuacao_media_geral"`
	Labels        map[string]int     `json:"distribuicao"`
	CategoryMeans map[string]float64 `json:"medias_por_categoria"`
	N1Count       int                `json:"fator_N1"`
	N2Count       int                `json:"fator_N2"`
	CacheHits     int                `json:"cache_hits"`
	Batches       int                `json:"batches"`
	Fallbacks     int                `json:"fallbacks"`
}

// JSONFile represents one generated list in JSON format
type JSONFile struct {
	Description string `json:"descricao"`
	Base        string `json:"arquivo_base"`
	Count       int    `json:"total"`
}

// Report outputs the run as JSON
func (r *JSONReporter) Report(run Run) error {
	summary := ComputeSummary(run.Items)

	output := JSONOutput{
		Results: make([]JSONResult, 0, len(run.Items)),
		Summary: JSONSummary{
			Total:         summary.Total,
			Viable:        summary.Viable,
			MeanScore:     summary.MeanScore,
			Labels:        summary.Labels,
			CategoryMeans: summary.CategoryMeans,
			N1Count:       summary.N1Count,
			N2Count:       summary.N2Count,
			CacheHits:     run.Stats.CacheHits,
			Batches:       run.Stats.Batches,
			Fallbacks:     run.Stats.Fallbacks,
		},
	}

	for _, item := range run.Items {
		scores := make(map[string]float64, 4)
		tiers := make(map[string]string, 4)
		for cat, cr := range item.Score.Categories {
			scores[cat.Code()] = cr.Score
			tiers[cat.Code()] = cr.Tier.String()
		}

		criteria := make(map[string]bool, len(rubric.Codes()))
		for _, code := range rubric.Codes() {
			criteria[code] = item.Criteria[code]
		}

		output.Results = append(output.Results, JSONResult{
			Name:          item.Source.Record.Name,
			SourceFile:    item.Source.Path,
			Label:         item.Score.Label,
			Justification: item.Score.Justification,
			Mean:          item.Score.Mean,
			Scores:        scores,
			Tiers:         tiers,
			Criteria:      criteria,
			FromCache:     item.FromCache,
			AllFalse:      item.AllFalse,
		})
	}

	for _, file := range run.Files {
		output.Files = append(output.Files, JSONFile{
			Description: file.Description,
			Base:        file.Base,
			Count:       file.Count,
		})
	}

	encoder := json.NewEncoder(r.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
