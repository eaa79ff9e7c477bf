// Package export writes classification results to disk: the general ranked
// table, the per-category contact lists, and the consolidated viable list,
// each in CSV, JSON and Excel form.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/seqlab/prospect/internal/classify"
	"github.com/seqlab/prospect/internal/rubric"
	"github.com/seqlab/prospect/internal/segment"
)

const (
	// maxResearchLinesLen and maxJustificationLen cap long text columns so
	// spreadsheet cells stay readable.
	maxResearchLinesLen = 300
	maxJustificationLen = 500
	viableListBase      = "lista_clientes_viaveis"
	generalListBase     = "classificacao_geral"
	negativeListSlug    = "fatores_negativos"
	negativeListDesc    = "Fatores Negativos (Não Viáveis)"
	viableListDesc      = "Clientes Viáveis (Consolidado)"
	defaultSheetName    = "Sheet1"
	classificationSheet = "Classificação"
)

// Timestamp formats t the way every exported filename embeds it.
func Timestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// File describes one written list.
type File struct {
	Description string
	Base        string
	Count       int
}

// row is one export line. The criterion verdicts are flattened into
// individual CSV columns; in JSON they nest under "criterios".
type row struct {
	Rank          int                  `json:"rank"`
	Name          string               `json:"nome"`
	Institution   string               `json:"instituicao"`
	Title         string               `json:"titulacao"`
	ResearchLines string               `json:"linhas_pesquisa"`
	ScorePA       float64              `json:"pontuacao_PA"`
	TierPA        string               `json:"classificacao_PA"`
	ScoreS        float64              `json:"pontuacao_S"`
	TierS         string               `json:"classificacao_S"`
	ScoreC        float64              `json:"pontuacao_C"`
	TierC         string               `json:"classificacao_C"`
	ScoreF        float64              `json:"pontuacao_F"`
	TierF         string               `json:"classificacao_F"`
	Mean          float64              `json:"pontuacao_media"`
	Criteria      rubric.CriterionSet  `json:"criterios"`
	Label         string               `json:"classificacao_final"`
	Justification string               `json:"justificativa_classificacao"`
	LattesURL     string               `json:"curriculo_lattes"`
	SourceFile    string               `json:"arquivo_origem"`
}

func buildRow(item classify.Item, rank int) row {
	r := item.Source.Record
	score := item.Score

	cat := func(c rubric.Category) (float64, string) {
		cr := score.Categories[c]
		return cr.Score, cr.Tier.String()
	}
	scorePA, tierPA := cat(rubric.CategoryPA)
	scoreS, tierS := cat(rubric.CategoryS)
	scoreC, tierC := cat(rubric.CategoryC)
	scoreF, tierF := cat(rubric.CategoryF)

	return row{
		Rank:          rank,
		Name:          r.Name,
		Institution:   r.Institution,
		Title:         r.Title,
		ResearchLines: truncate(r.ResearchLines, maxResearchLinesLen),
		ScorePA:       scorePA,
		TierPA:        tierPA,
		ScoreS:        scoreS,
		TierS:         tierS,
		ScoreC:        scoreC,
		TierC:         tierC,
		ScoreF:        scoreF,
		TierF:         tierF,
		Mean:          score.Mean,
		Criteria:      item.Criteria,
		Label:         score.Label,
		Justification: truncate(score.Justification, maxJustificationLen),
		LattesURL:     r.LattesURL,
		SourceFile:    filepath.Base(item.Source.Path),
	}
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

// header returns the CSV/Excel column names in export order.
func header() []string {
	cols := []string{
		"rank", "nome", "instituicao", "titulacao", "linhas_pesquisa",
		"pontuacao_PA", "classificacao_PA",
		"pontuacao_S", "classificacao_S",
		"pontuacao_C", "classificacao_C",
		"pontuacao_F", "classificacao_F",
		"pontuacao_media",
	}
	cols = append(cols, rubric.Codes()...)
	return append(cols,
		"classificacao_final", "justificativa_classificacao",
		"curriculo_lattes", "arquivo_origem")
}

// values flattens a row in header order.
func (r row) values() []string {
	vals := []string{
		fmt.Sprintf("%d", r.Rank), r.Name, r.Institution, r.Title, r.ResearchLines,
		fmt.Sprintf("%.2f", r.ScorePA), r.TierPA,
		fmt.Sprintf("%.2f", r.ScoreS), r.TierS,
		fmt.Sprintf("%.2f", r.ScoreC), r.TierC,
		fmt.Sprintf("%.2f", r.ScoreF), r.TierF,
		fmt.Sprintf("%.2f", r.Mean),
	}
	for _, code := range rubric.Codes() {
		vals = append(vals, fmt.Sprintf("%v", r.Criteria[code]))
	}
	return append(vals, r.Label, r.Justification, r.LattesURL, r.SourceFile)
}

// WriteGeneral writes the full ranked table as
// {dir}/classificacao_geral_{ts}.{csv,json,xlsx}. Every profile is ranked
// by mean score descending, negative records included in place.
func WriteGeneral(dir, ts string, items []classify.Item) (File, error) {
	ranked := make([]classify.Item, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score.Mean > ranked[j].Score.Mean
	})

	rows := make([]row, len(ranked))
	for i, item := range ranked {
		rows[i] = buildRow(item, i+1)
	}

	base := fmt.Sprintf("%s_%s", generalListBase, ts)
	if err := writeAllFormats(dir, base, rows); err != nil {
		return File{}, err
	}
	return File{Description: "Classificação Geral", Base: base, Count: len(rows)}, nil
}

// WriteLists writes the five per-category lists plus the consolidated
// viable list. Empty lists produce no files. Returned in a fixed order:
// categories, negative, viable.
func WriteLists(dir, ts string, segments segment.Segments, items []classify.Item) ([]File, error) {
	var files []File

	for _, cat := range rubric.Categories() {
		list := segments.Categories[cat]
		if len(list) == 0 {
			continue
		}
		rows := make([]row, len(list))
		for i, a := range list {
			rows[i] = buildRow(a.Item, a.Rank)
		}
		base := fmt.Sprintf("lista_%s_%s_%s", cat.Code(), cat.Slug(), ts)
		if err := writeAllFormats(dir, base, rows); err != nil {
			return files, err
		}
		files = append(files, File{Description: cat.Title(), Base: base, Count: len(rows)})
	}

	if len(segments.Negative) > 0 {
		rows := make([]row, len(segments.Negative))
		for i, a := range segments.Negative {
			rows[i] = buildRow(a.Item, a.Rank)
		}
		base := fmt.Sprintf("lista_N_%s_%s", negativeListSlug, ts)
		if err := writeAllFormats(dir, base, rows); err != nil {
			return files, err
		}
		files = append(files, File{Description: negativeListDesc, Base: base, Count: len(rows)})
	}

	viable := segment.Viable(items)
	if len(viable) > 0 {
		rows := make([]row, len(viable))
		for i, item := range viable {
			rows[i] = buildRow(item, i+1)
		}
		base := fmt.Sprintf("%s_%s", viableListBase, ts)
		if err := writeAllFormats(dir, base, rows); err != nil {
			return files, err
		}
		files = append(files, File{Description: viableListDesc, Base: base, Count: len(rows)})
	}

	return files, nil
}

func writeAllFormats(dir, base string, rows []row) error {
	if err := writeCSV(filepath.Join(dir, base+".csv"), rows); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, base+".json"), rows); err != nil {
		return err
	}
	return writeXLSX(filepath.Join(dir, base+".xlsx"), rows)
}

func writeCSV(path string, rows []row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header()); err != nil {
		return fmt.Errorf("writing header to %s: %w", path, err)
	}
	for _, r := range rows {
		if err := w.Write(r.values()); err != nil {
			return fmt.Errorf("writing row to %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}

func writeJSON(path string, rows []row) error {
	data, err := json.MarshalIndent(rows, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeXLSX(path string, rows []row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheetName, classificationSheet); err != nil {
		return fmt.Errorf("preparing workbook for %s: %w", path, err)
	}

	if err := setStringRow(f, classificationSheet, 1, header()); err != nil {
		return fmt.Errorf("writing header to %s: %w", path, err)
	}
	for i, r := range rows {
		if err := setStringRow(f, classificationSheet, i+2, r.values()); err != nil {
			return fmt.Errorf("writing row to %s: %w", path, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func setStringRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheet, cell, &cells)
}
