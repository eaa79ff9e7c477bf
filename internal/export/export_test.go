package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/seqlab/prospect/internal/classify"
	"github.com/seqlab/prospect/internal/profile"
	"github.com/seqlab/prospect/internal/rubric"
	"github.com/seqlab/prospect/internal/scoring"
	"github.com/seqlab/prospect/internal/segment"
)

func item(name string, trueCodes ...string) classify.Item {
	set := rubric.AllFalse()
	for _, code := range trueCodes {
		set[code] = true
	}
	return classify.Item{
		Source: profile.Source{
			Path:   "perfil_" + strings.ToLower(name) + ".json",
			Record: profile.Record{Name: name, Institution: "UFES", ResearchLines: "biotecnologia"},
		},
		Criteria: set,
		Score:    scoring.Score(set),
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parsing %s: %v", path, err)
	}
	return records
}

func TestWriteListsProducesAllFormats(t *testing.T) {
	dir := t.TempDir()
	items := []classify.Item{
		item("Alice", "S1", "S2", "S3"),
		item("Bruno", "N1", "N2"),
	}
	segments := segment.Split(items)

	files, err := WriteLists(dir, "20260829_120000", segments, items)
	if err != nil {
		t.Fatalf("WriteLists: %v", err)
	}

	// S list, negative list, viable consolidated.
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3: %+v", len(files), files)
	}

	for _, file := range files {
		for _, ext := range []string{".csv", ".json", ".xlsx"} {
			path := filepath.Join(dir, file.Base+ext)
			if _, err := os.Stat(path); err != nil {
				t.Errorf("missing %s: %v", path, err)
			}
		}
	}

	wantBases := []string{
		"lista_S_sintese_gene_20260829_120000",
		"lista_N_fatores_negativos_20260829_120000",
		"lista_clientes_viaveis_20260829_120000",
	}
	for i, file := range files {
		if file.Base != wantBases[i] {
			t.Errorf("file %d base = %q, want %q", i, file.Base, wantBases[i])
		}
	}
}

func TestCSVHeaderAndRowContent(t *testing.T) {
	dir := t.TempDir()
	items := []classify.Item{item("Alice", "PA1", "PA3", "S1")}

	_, err := WriteGeneral(dir, "ts", items)
	if err != nil {
		t.Fatalf("WriteGeneral: %v", err)
	}

	records := readCSV(t, filepath.Join(dir, "classificacao_geral_ts.csv"))
	if len(records) != 2 {
		t.Fatalf("got %d CSV lines, want 2", len(records))
	}

	head := records[0]
	if head[0] != "rank" || head[1] != "nome" {
		t.Errorf("unexpected header start: %v", head[:2])
	}
	for _, code := range rubric.Codes() {
		if !contains(head, code) {
			t.Errorf("header missing criterion column %s", code)
		}
	}

	rowVals := records[1]
	if len(rowVals) != len(head) {
		t.Fatalf("row has %d columns, header has %d", len(rowVals), len(head))
	}
	if rowVals[0] != "1" || rowVals[1] != "Alice" {
		t.Errorf("row start = %v", rowVals[:2])
	}
	if !contains(rowVals, "ALTA") {
		t.Error("row missing PA tier ALTA")
	}
	if !hasPrefixAny(rowVals, "CLIENTE") {
		t.Error("row missing final label")
	}
}

func TestJSONCarriesNestedCriteria(t *testing.T) {
	dir := t.TempDir()
	items := []classify.Item{item("Alice", "PA1")}

	if _, err := WriteGeneral(dir, "ts", items); err != nil {
		t.Fatalf("WriteGeneral: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "classificacao_geral_ts.json"))
	if err != nil {
		t.Fatalf("reading JSON: %v", err)
	}

	var rows []struct {
		Name     string          `json:"nome"`
		Criteria map[string]bool `json:"criterios"`
		Label    string          `json:"classificacao_final"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatalf("parsing JSON: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Name != "Alice" || !rows[0].Criteria["PA1"] || rows[0].Criteria["N1"] {
		t.Errorf("row content wrong: %+v", rows[0])
	}
	if !strings.HasPrefix(rows[0].Label, "CLIENTE") {
		t.Errorf("label = %q", rows[0].Label)
	}
}

func TestXLSXWorkbookReadable(t *testing.T) {
	dir := t.TempDir()
	items := []classify.Item{item("Alice", "S1")}

	if _, err := WriteGeneral(dir, "ts", items); err != nil {
		t.Fatalf("WriteGeneral: %v", err)
	}

	f, err := excelize.OpenFile(filepath.Join(dir, "classificacao_geral_ts.xlsx"))
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue(classificationSheet, "B2")
	if err != nil {
		t.Fatalf("reading cell: %v", err)
	}
	if got != "Alice" {
		t.Errorf("B2 = %q, want Alice", got)
	}
}

func TestLongTextTruncated(t *testing.T) {
	long := strings.Repeat("pesquisa em biotecnologia ", 30)
	it := item("Alice", "S1")
	it.Source.Record.ResearchLines = long

	r := buildRow(it, 1)
	if len(r.ResearchLines) > maxResearchLinesLen {
		t.Errorf("research lines length %d exceeds cap %d", len(r.ResearchLines), maxResearchLinesLen)
	}
}

func TestGeneralSortedByMeanDescending(t *testing.T) {
	dir := t.TempDir()
	// The general table ranks by mean alone: a high-scoring record with
	// negative factors sits above a weak viable one.
	items := []classify.Item{
		item("Fraca"),
		item("Inadequada", "PA1", "PA2", "PA3", "PA4", "S1", "S2", "S3", "N1", "N2"),
		item("Forte", "PA1", "PA2", "PA3", "PA4", "S1", "S2", "S3", "C1", "C2"),
	}

	file, err := WriteGeneral(dir, "ts", items)
	if err != nil {
		t.Fatalf("WriteGeneral: %v", err)
	}
	if file.Count != 3 {
		t.Errorf("Count = %d, want 3", file.Count)
	}

	records := readCSV(t, filepath.Join(dir, "classificacao_geral_ts.csv"))
	names := []string{records[1][1], records[2][1], records[3][1]}
	want := []string{"Forte", "Inadequada", "Fraca"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("rank %d = %s, want %s", i+1, names[i], want[i])
		}
	}
	for i := 1; i <= 3; i++ {
		if records[i][0] != fmt.Sprintf("%d", i) {
			t.Errorf("row %d has rank %s", i, records[i][0])
		}
	}
}

func contains(vals []string, want string) bool {
	for _, v := range vals {
		if v == want {
			return true
		}
	}
	return false
}

func hasPrefixAny(vals []string, prefix string) bool {
	for _, v := range vals {
		if strings.HasPrefix(v, prefix) {
			return true
		}
	}
	return false
}
