// Package merge folds contact emails from a curated CSV back into the
// profile JSON files, producing an enriched copy of each matched profile
// plus a log of what happened to every row.
package merge

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/seqlab/prospect/internal/textnorm"
)

const notFound = "Não encontrado"

// genericPrefixes are institutional mailbox prefixes, never a researcher's
// personal address.
var genericPrefixes = []string{
	"secretaria@", "diretoria@", "contato@", "info@", "admin@",
	"atendimento@", "administracao@", "departamento@", "depto@",
	"webmaster@", "suporte@", "geral@", "coordenacao@",
	"pos-graduacao@", "posgrad@",
}

// Row statuses recorded in the merge log.
const (
	StatusUpdated    = "email_adicionado"
	StatusAlreadySet = "email_ja_existia"
	StatusRejected   = "email_generico_rejeitado"
	StatusNoMatch    = "perfil_nao_encontrado"
	StatusNoEmail    = "sem_email"
)

// Options configures a merge run.
type Options struct {
	// CSVPath is the contact list: a CSV with at least a "nome" column and
	// an "email" column.
	CSVPath string

	// ProfilesDir holds the profile JSON files to enrich.
	ProfilesDir string

	// OutDir receives the enriched copies and the merge log.
	OutDir string
}

// Stats summarizes a merge run.
type Stats struct {
	Rows       int
	Updated    int
	AlreadySet int
	Rejected   int
	NoMatch    int
	NoEmail    int
}

// LogEntry records the outcome for one CSV row.
type LogEntry struct {
	Name   string `json:"nome"`
	Email  string `json:"email"`
	File   string `json:"arquivo"`
	Status string `json:"status"`
}

// profileFile is a loaded profile JSON kept as raw structure so enrichment
// preserves fields the record model does not know about.
type profileFile struct {
	path           string
	data           map[string]any
	normalizedName string
}

// Run merges the CSV into the profiles and writes the results. The merge
// log is written to OutDir as merge_log_{ts}.json.
func Run(opts Options, now time.Time) (Stats, []LogEntry, error) {
	rows, err := loadCSV(opts.CSVPath)
	if err != nil {
		return Stats{}, nil, err
	}

	profiles, err := loadProfiles(opts.ProfilesDir)
	if err != nil {
		return Stats{}, nil, err
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return Stats{}, nil, fmt.Errorf("creating output directory: %w", err)
	}

	ts := now.Format("20060102_150405")
	stats := Stats{Rows: len(rows)}
	entries := make([]LogEntry, 0, len(rows))

	for _, row := range rows {
		entry := mergeRow(row, profiles, opts.OutDir, ts, now)
		entries = append(entries, entry)

		switch entry.Status {
		case StatusUpdated:
			stats.Updated++
		case StatusAlreadySet:
			stats.AlreadySet++
		case StatusRejected:
			stats.Rejected++
		case StatusNoMatch:
			stats.NoMatch++
		case StatusNoEmail:
			stats.NoEmail++
		}
	}

	if err := writeLog(opts.OutDir, ts, entries); err != nil {
		return stats, entries, err
	}
	return stats, entries, nil
}

type csvRow struct {
	name  string
	email string
}

// loadCSV reads the contact list, locating the name and email columns by
// header (case-insensitive).
func loadCSV(path string) ([]csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening contact list: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing contact list: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("contact list %s is empty", path)
	}

	nameIdx, emailIdx := -1, -1
	for i, col := range records[0] {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "nome", "nome_completo":
			if nameIdx == -1 {
				nameIdx = i
			}
		case "email", "email_contato":
			if emailIdx == -1 {
				emailIdx = i
			}
		}
	}
	if nameIdx == -1 {
		return nil, fmt.Errorf("contact list %s has no 'nome' column (columns: %s)",
			path, strings.Join(records[0], ", "))
	}

	var rows []csvRow
	for _, rec := range records[1:] {
		if nameIdx >= len(rec) {
			continue
		}
		row := csvRow{name: strings.TrimSpace(rec[nameIdx])}
		if emailIdx != -1 && emailIdx < len(rec) {
			row.email = strings.TrimSpace(rec[emailIdx])
		}
		if row.name != "" {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func loadProfiles(dir string) ([]profileFile, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading profiles directory: %w", err)
	}

	var profiles []profileFile
	for _, de := range dirEntries {
		if de.IsDir() || !strings.EqualFold(filepath.Ext(de.Name()), ".json") {
			continue
		}
		path := filepath.Join(dir, de.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var data map[string]any
		if err := json.Unmarshal(raw, &data); err != nil {
			continue
		}
		name := profileName(data)
		if name == "" {
			continue
		}
		profiles = append(profiles, profileFile{
			path:           path,
			data:           data,
			normalizedName: textnorm.Normalize(name),
		})
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].path < profiles[j].path })
	return profiles, nil
}

func profileName(data map[string]any) string {
	inner := data
	if dados, ok := data["dados"].(map[string]any); ok {
		inner = dados
	}
	if name, ok := inner["nome_completo"].(string); ok {
		return name
	}
	if name, ok := inner["nome"].(string); ok {
		return name
	}
	return ""
}

func mergeRow(row csvRow, profiles []profileFile, outDir, ts string, now time.Time) LogEntry {
	entry := LogEntry{Name: row.name, Email: row.email}

	match := findProfile(profiles, row.name)
	if match == nil {
		entry.Status = StatusNoMatch
		return entry
	}
	entry.File = filepath.Base(match.path)

	current := currentEmail(match.data)
	if current != "" {
		entry.Email = current
		entry.Status = StatusAlreadySet
		entry.File = writeEnriched(match, current, outDir, ts, now)
		return entry
	}

	switch {
	case row.email == "" || row.email == notFound || !strings.Contains(row.email, "@"):
		entry.Status = StatusNoEmail
		entry.File = writeEnriched(match, notFound, outDir, ts, now)
	case isGeneric(row.email):
		entry.Status = StatusRejected
		entry.File = writeEnriched(match, notFound, outDir, ts, now)
	default:
		entry.Status = StatusUpdated
		entry.File = writeEnriched(match, row.email, outDir, ts, now)
	}
	return entry
}

// findProfile matches by name: every significant word of the CSV name must
// occur in the profile's normalized name. Word order and accents are
// ignored.
func findProfile(profiles []profileFile, name string) *profileFile {
	words := significantWords(name)
	if len(words) == 0 {
		return nil
	}

	for i := range profiles {
		if containsAllWords(profiles[i].normalizedName, words) {
			return &profiles[i]
		}
	}
	return nil
}

func significantWords(name string) []string {
	var words []string
	for _, w := range strings.Fields(textnorm.Normalize(name)) {
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}

func containsAllWords(haystack string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(haystack, w) {
			return false
		}
	}
	return true
}

func currentEmail(data map[string]any) string {
	inner := data
	if dados, ok := data["dados"].(map[string]any); ok {
		inner = dados
	}
	email, _ := inner["email_contato"].(string)
	if email == "" || email == notFound || !strings.Contains(email, "@") {
		return ""
	}
	return email
}

func isGeneric(email string) bool {
	lower := strings.ToLower(email)
	for _, prefix := range genericPrefixes {
		if strings.Contains(lower, prefix) {
			return true
		}
	}
	return false
}

// writeEnriched writes the profile copy with the email and merge metadata
// set, returning the written filename (empty on failure; the log entry
// still records the attempt).
func writeEnriched(p *profileFile, email, outDir, ts string, now time.Time) string {
	data := cloneMap(p.data)

	dados, ok := data["dados"].(map[string]any)
	if !ok {
		dados = make(map[string]any)
		data["dados"] = dados
	}
	dados["email_contato"] = email

	meta, ok := data["metadados"].(map[string]any)
	if !ok {
		meta = make(map[string]any)
		data["metadados"] = meta
	}
	meta["email_processado_em"] = now.Format(time.RFC3339)
	meta["email_encontrado_com_sucesso"] = email != notFound

	name := fmt.Sprintf("%s_email_%s.json", safeFileName(profileName(p.data)), ts)
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return ""
	}
	if err := os.WriteFile(filepath.Join(outDir, name), raw, 0o644); err != nil {
		return ""
	}
	return name
}

func cloneMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		if m, ok := v.(map[string]any); ok {
			out[k] = cloneMap(m)
			continue
		}
		out[k] = v
	}
	return out
}

var unsafeChars = regexp.MustCompile(`[^\w\s-]`)
var spaceRun = regexp.MustCompile(`\s+`)

// safeFileName strips characters that do not belong in filenames and caps
// the length.
func safeFileName(name string) string {
	clean := unsafeChars.ReplaceAllString(name, "")
	clean = spaceRun.ReplaceAllString(strings.TrimSpace(clean), "_")
	if len(clean) > 50 {
		clean = clean[:50]
	}
	return clean
}

func writeLog(outDir, ts string, entries []LogEntry) error {
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding merge log: %w", err)
	}
	path := filepath.Join(outDir, fmt.Sprintf("merge_log_%s.json", ts))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing merge log: %w", err)
	}
	return nil
}
