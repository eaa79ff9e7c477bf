package profile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source is one loadable profile document: the decoded record plus the raw
// bytes it came from. The hash keys the result cache, so it is computed over
// the exact file bytes.
type Source struct {
	Path   string
	Hash   string
	Record Record
}

// Skipped describes a document that could not be loaded. Skips are
// per-record: they never abort the rest of the run.
type Skipped struct {
	Path   string
	Reason error
}

// loadableExts are the profile document formats the extractor stage emits.
var loadableExts = map[string]bool{
	".json":     true,
	".yaml":     true,
	".yml":      true,
	".md":       true,
	".markdown": true,
}

// LoadDir reads every profile document in dir (non-recursive, sorted by
// filename for deterministic batch composition). Unreadable or invalid
// documents and records without a name are returned as Skipped.
func LoadDir(dir string) ([]Source, []Skipped, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading profile directory: %w", err)
	}

	var sources []Source
	var skipped []Skipped

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !loadableExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		src, err := Load(path)
		if err != nil {
			skipped = append(skipped, Skipped{Path: path, Reason: err})
			continue
		}
		sources = append(sources, src)
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Path < sources[j].Path
	})

	if len(sources) == 0 && len(skipped) == 0 {
		return nil, nil, fmt.Errorf("no profile documents found in %s", dir)
	}
	return sources, skipped, nil
}

// Load reads and validates a single profile document.
func Load(path string) (Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}

	record, err := Parse(path, content)
	if err != nil {
		return Source{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	if strings.TrimSpace(record.Name) == "" {
		return Source{}, fmt.Errorf("%s: profile has no name", filepath.Base(path))
	}

	sum := sha256.Sum256(content)
	return Source{
		Path:   path,
		Hash:   hex.EncodeToString(sum[:]),
		Record: record,
	}, nil
}
