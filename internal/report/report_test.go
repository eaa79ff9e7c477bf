package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

const viableCSV = "rank,nome,pontuacao_media\n1,Alice,7.50\n2,Bruno,5.00\n"
const negativeCSV = "rank,nome,pontuacao_media\n1,Carla,6.00\n"

func TestFindInputsByPattern(t *testing.T) {
	dir := t.TempDir()
	wantViable := writeFile(t, dir, "lista_clientes_viaveis_20260829_120000.csv", viableCSV)
	wantNegative := writeFile(t, dir, "lista_N_fatores_negativos_20260829_120000.csv", negativeCSV)
	// Decoys that match neither pattern set.
	writeFile(t, dir, "lista_S_sintese_gene_20260829_120000.csv", viableCSV)

	inputs, err := FindInputs(dir)
	if err != nil {
		t.Fatalf("FindInputs: %v", err)
	}
	if inputs.Viable != wantViable {
		t.Errorf("Viable = %s, want %s", inputs.Viable, wantViable)
	}
	if inputs.Negative != wantNegative {
		t.Errorf("Negative = %s, want %s", inputs.Negative, wantNegative)
	}
}

func TestFindInputsMissingListsAvailable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "alguma_outra_lista.csv", viableCSV)

	_, err := FindInputs(dir)
	if err == nil {
		t.Fatal("expected error when lists are missing")
	}
	if !strings.Contains(err.Error(), "alguma_outra_lista.csv") {
		t.Errorf("error does not list available CSVs: %v", err)
	}
}

func TestBuildWorkbook(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	writeFile(t, dir, "lista_clientes_viaveis_ts.csv", viableCSV)
	writeFile(t, dir, "lista_N_fatores_negativos_ts.csv", negativeCSV)

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	path, err := Build(dir, outDir, now)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if filepath.Base(path) != "analise_consolidada_20260829_120000.xlsx" {
		t.Errorf("workbook name = %s", filepath.Base(path))
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{sheetCombined, sheetViable, sheetNegative, sheetStats} {
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			t.Errorf("missing sheet %q", sheet)
		}
	}

	rows, err := f.GetRows(sheetCombined)
	if err != nil {
		t.Fatalf("reading combined sheet: %v", err)
	}
	// Header + 2 viable + 1 negative.
	if len(rows) != 4 {
		t.Fatalf("combined sheet has %d rows, want 4", len(rows))
	}
	head := rows[0]
	if head[len(head)-1] != originColumn {
		t.Errorf("combined header missing origin column: %v", head)
	}
	last := rows[3]
	if last[len(last)-1] != originNegative {
		t.Errorf("negative row not tagged: %v", last)
	}

	stats, err := f.GetRows(sheetStats)
	if err != nil {
		t.Fatalf("reading stats sheet: %v", err)
	}
	if stats[1][1] != "3" {
		t.Errorf("total records = %q, want 3", stats[1][1])
	}
}
