package reporter

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// TerminalReporter outputs run results to the terminal with colors
type TerminalReporter struct {
	w io.Writer
}

// NewTerminalReporter creates a new terminal reporter
func NewTerminalReporter(w io.Writer) *TerminalReporter {
	return &TerminalReporter{w: w}
}

const rule = "──────────────────────────────────────────────────────────────────────"

// Report prints the statistics and segmentation blocks for a run
func (r *TerminalReporter) Report(run Run) error {
	summary := ComputeSummary(run.Items)

	fmt.Fprintln(r.w, rule)
	color.New(color.FgWhite, color.Bold).Fprintln(r.w, "RESULTADOS DA CLASSIFICAÇÃO")
	color.New(color.FgHiBlack).Fprintf(r.w, "Modelo: %s | Batch Size: %d\n", run.Model, run.BatchSize)
	fmt.Fprintln(r.w, rule)

	fmt.Fprintf(r.w, "Total processado: %d\n", summary.Total)
	fmt.Fprintf(r.w, "Pontuação média geral: %.1f/10\n", summary.MeanScore)
	if len(run.Skipped) > 0 {
		color.New(color.FgYellow).Fprintf(r.w, "Arquivos ignorados: %d\n", len(run.Skipped))
	}

	fmt.Fprintln(r.w, "\nCLASSIFICAÇÃO FINAL:")
	for _, label := range LabelOrder {
		count := summary.Labels[label]
		pct := 0.0
		if summary.Total > 0 {
			pct = float64(count) / float64(summary.Total) * 100
		}
		line := fmt.Sprintf("  %-25s: %3d (%4.1f%%)", label, count, pct)
		if count > 0 {
			fmt.Fprintln(r.w, line)
		} else {
			color.New(color.FgHiBlack).Fprintln(r.w, line)
		}
	}

	fmt.Fprintln(r.w, "\nPONTUAÇÕES MÉDIAS POR CATEGORIA (0-10):")
	fmt.Fprintf(r.w, "  PA (Produção Proteína):  %.1f\n", summary.CategoryMeans["PA"])
	fmt.Fprintf(r.w, "  S  (Síntese Gene):       %.1f\n", summary.CategoryMeans["S"])
	fmt.Fprintf(r.w, "  C  (CFPS):               %.1f\n", summary.CategoryMeans["C"])
	fmt.Fprintf(r.w, "  F  (Fatores Crescim.):   %.1f\n", summary.CategoryMeans["F"])

	r.printTop(run)
	r.printNegatives(summary)
	r.printEfficiency(run)
	r.printFiles(run, summary)

	return nil
}

func (r *TerminalReporter) printTop(run Run) {
	top := topItems(run.Items, 15)
	if len(top) == 0 {
		return
	}

	fmt.Fprintf(r.w, "\nTOP %d PESQUISADORES:\n", len(top))
	for i, item := range top {
		name := item.Source.Record.Name
		if len(name) > 35 {
			name = name[:35]
		}
		fmt.Fprintf(r.w, "  %2d. %-35s | %4.1f | %s\n",
			i+1, name, item.Score.Mean, item.Score.Label)
	}
}

func (r *TerminalReporter) printNegatives(summary Summary) {
	fmt.Fprintln(r.w, "\nFATORES NEGATIVOS:")
	fmt.Fprintf(r.w, "  N1 (Sem uso proteínas):  %3d\n", summary.N1Count)
	fmt.Fprintf(r.w, "  N2 (Área não correlata): %3d\n", summary.N2Count)
}

func (r *TerminalReporter) printEfficiency(run Run) {
	fmt.Fprintln(r.w, "\nEFICIÊNCIA:")
	fmt.Fprintf(r.w, "  Cache: %d de %d resultados reaproveitados\n", run.Stats.CacheHits, run.Stats.Records)
	fmt.Fprintf(r.w, "  Chamadas em batch: %d\n", run.Stats.Batches)
	if run.Stats.Fallbacks > 0 {
		color.New(color.FgYellow).Fprintf(r.w, "  Batches degradados para modo individual: %d\n", run.Stats.Fallbacks)
	}
	if run.Stats.AllFalse > 0 {
		color.New(color.FgRed).Fprintf(r.w, "  Perfis sem resposta válida (todos critérios false): %d\n", run.Stats.AllFalse)
	}
	if saved := run.Stats.APICallsSaved(run.BatchSize); saved > 0 {
		color.New(color.FgGreen).Fprintf(r.w, "  Economia estimada: %d chamada(s) de API evitadas pelo cache\n", saved)
	}
}

func (r *TerminalReporter) printFiles(run Run, summary Summary) {
	if len(run.Files) == 0 {
		return
	}

	fmt.Fprintln(r.w, "\nLISTAS GERADAS:")
	for _, file := range run.Files {
		pct := 0.0
		if summary.Total > 0 {
			pct = float64(file.Count) / float64(summary.Total) * 100
		}
		fmt.Fprintf(r.w, "  %-35s: %3d (%4.1f%%) → %s.[csv, json, xlsx]\n",
			file.Description, file.Count, pct, file.Base)
	}
	color.New(color.FgGreen).Fprintln(r.w, "\n✓ Segmentação concluída")
}
