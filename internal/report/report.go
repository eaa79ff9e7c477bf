// Package report builds the consolidated analysis workbook from a previous
// classification run: it locates the viable and negative CSV lists in an
// output directory and combines them into one multi-sheet Excel file.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	sheetCombined = "Análise Completa"
	sheetViable   = "Clientes Viáveis"
	sheetNegative = "Fatores Negativos"
	sheetStats    = "Estatísticas"

	originColumn   = "origem_dataset"
	originViable   = "Clientes Viáveis"
	originNegative = "Fatores Negativos"
)

// viablePatterns and negativePatterns are tried in order; the first glob
// with a match wins. Accented and plain spellings both occur in the wild.
var viablePatterns = []string{
	"*clientes*viáveis*.csv",
	"*clientes*viaveis*.csv",
	"*lista_clientes_viaveis*.csv",
	"*viaveis*.csv",
}

var negativePatterns = []string{
	"*fatores*negativos*.csv",
	"*lista_N*fatores*.csv",
	"*N_fatores*.csv",
	"*negativos*.csv",
}

// Inputs is the located CSV pair.
type Inputs struct {
	Viable   string
	Negative string
}

// FindInputs locates the viable and negative list CSVs in dir. When either
// is missing the error lists the CSV files that are present, so the caller
// can see what the directory actually holds.
func FindInputs(dir string) (Inputs, error) {
	viable := firstMatch(dir, viablePatterns)
	negative := firstMatch(dir, negativePatterns)

	if viable == "" || negative == "" {
		available, _ := filepath.Glob(filepath.Join(dir, "*.csv"))
		sort.Strings(available)
		names := make([]string, len(available))
		for i, p := range available {
			names[i] = filepath.Base(p)
		}
		missing := []string{}
		if viable == "" {
			missing = append(missing, "clientes viáveis")
		}
		if negative == "" {
			missing = append(missing, "fatores negativos")
		}
		return Inputs{}, fmt.Errorf("lista de %s não encontrada em %s (CSVs disponíveis: %s)",
			strings.Join(missing, " e "), dir, strings.Join(names, ", "))
	}

	return Inputs{Viable: viable, Negative: negative}, nil
}

func firstMatch(dir string, patterns []string) string {
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil || len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		return matches[0]
	}
	return ""
}

// Build locates the input CSVs in dir and writes the consolidated workbook
// to outDir, returning its path.
func Build(dir, outDir string, now time.Time) (string, error) {
	inputs, err := FindInputs(dir)
	if err != nil {
		return "", err
	}

	viable, err := readCSV(inputs.Viable)
	if err != nil {
		return "", err
	}
	negative, err := readCSV(inputs.Negative)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(outDir, fmt.Sprintf("analise_consolidada_%s.xlsx", now.Format("20060102_150405")))

	if err := writeWorkbook(path, viable, negative, now); err != nil {
		return "", err
	}
	return path, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	return records, nil
}

func writeWorkbook(path string, viable, negative [][]string, now time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetCombined); err != nil {
		return fmt.Errorf("preparing workbook: %w", err)
	}
	for _, name := range []string{sheetViable, sheetNegative, sheetStats} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	if err := writeSheet(f, sheetCombined, combine(viable, negative)); err != nil {
		return err
	}
	if err := writeSheet(f, sheetViable, viable); err != nil {
		return err
	}
	if err := writeSheet(f, sheetNegative, negative); err != nil {
		return err
	}

	stats := [][]string{
		{"Métrica", "Valor"},
		{"Total de Registros", fmt.Sprintf("%d", len(viable)-1+len(negative)-1)},
		{"Clientes Viáveis", fmt.Sprintf("%d", len(viable)-1)},
		{"Fatores Negativos", fmt.Sprintf("%d", len(negative)-1)},
		{"Data de Processamento", now.Format("02/01/2006 15:04:05")},
	}
	if err := writeSheet(f, sheetStats, stats); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// combine merges the two lists under a shared header, tagging every row
// with its dataset of origin.
func combine(viable, negative [][]string) [][]string {
	header := append(append([]string{}, viable[0]...), originColumn)
	out := [][]string{header}

	for _, row := range viable[1:] {
		out = append(out, append(append([]string{}, row...), originViable))
	}
	for _, row := range negative[1:] {
		out = append(out, append(append([]string{}, row...), originNegative))
	}
	return out
}

func writeSheet(f *excelize.File, sheet string, rows [][]string) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("writing sheet %s: %w", sheet, err)
		}
	}
	return nil
}
