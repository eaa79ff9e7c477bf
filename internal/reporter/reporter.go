package reporter

import (
	"sort"

	"github.com/seqlab/prospect/internal/classify"
	"github.com/seqlab/prospect/internal/export"
	"github.com/seqlab/prospect/internal/profile"
	"github.com/seqlab/prospect/internal/rubric"
	"github.com/seqlab/prospect/internal/scoring"
)

// Run bundles everything a classification run produced, for reporting.
type Run struct {
	Items     []classify.Item
	Stats     classify.Stats
	Files     []export.File
	Skipped   []profile.Skipped
	Model     string
	BatchSize int
}

// Reporter defines the interface for outputting run results.
type Reporter interface {
	// Report outputs the run results
	Report(run Run) error
}

// Summary holds aggregate statistics for a run.
type Summary struct {
	Total         int
	Viable        int
	MeanScore     float64
	Labels        map[string]int
	CategoryMeans map[string]float64
	N1Count       int
	N2Count       int
}

// LabelOrder is the display order for final labels, strongest first.
var LabelOrder = []string{
	scoring.LabelEstrategico,
	scoring.LabelPrioritario,
	scoring.LabelRegular,
	scoring.LabelBaixaPrioridade,
	scoring.LabelInadequado,
}

// ComputeSummary computes aggregate statistics from classified items.
func ComputeSummary(items []classify.Item) Summary {
	s := Summary{
		Total:         len(items),
		Labels:        make(map[string]int),
		CategoryMeans: make(map[string]float64),
	}

	var meanTotal float64
	catTotals := make(map[rubric.Category]float64)
	for _, item := range items {
		meanTotal += item.Score.Mean
		s.Labels[item.Score.Label]++
		for cat, cr := range item.Score.Categories {
			catTotals[cat] += cr.Score
		}
		if item.Criteria["N1"] {
			s.N1Count++
		}
		if item.Criteria["N2"] {
			s.N2Count++
		}
		if !item.Score.Negative() {
			s.Viable++
		}
	}

	if len(items) > 0 {
		s.MeanScore = meanTotal / float64(len(items))
		for cat, total := range catTotals {
			s.CategoryMeans[cat.Code()] = total / float64(len(items))
		}
	}
	return s
}

// topItems returns up to n items ordered by mean score descending.
func topItems(items []classify.Item, n int) []classify.Item {
	sorted := make([]classify.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score.Mean > sorted[j].Score.Mean
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
