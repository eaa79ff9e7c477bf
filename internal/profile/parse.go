package profile

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes one profile document. The extractor writes JSON with a
// "dados" envelope; flat JSON, YAML, and Markdown with YAML frontmatter are
// accepted as well.
func Parse(path string, content []byte) (Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return parseJSON(content)
	case ".yaml", ".yml":
		return parseYAML(content)
	case ".md", ".markdown":
		return parseMarkdown(content)
	default:
		return Record{}, fmt.Errorf("unsupported profile format %q", filepath.Ext(path))
	}
}

func parseJSON(content []byte) (Record, error) {
	var data map[string]any
	if err := json.Unmarshal(content, &data); err != nil {
		return Record{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return fromEnvelope(data), nil
}

func parseYAML(content []byte) (Record, error) {
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return Record{}, fmt.Errorf("invalid YAML: %w", err)
	}
	return fromEnvelope(data), nil
}

// fromEnvelope unwraps the extractor's {"dados": {...}} envelope when
// present; top-level siblings of "dados" are kept as Extra passthrough.
func fromEnvelope(data map[string]any) Record {
	inner, ok := data["dados"].(map[string]any)
	if !ok {
		return fromMap(data)
	}

	r := fromMap(inner)
	for key, raw := range data {
		if key == "dados" {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]string)
		}
		r.Extra[key] = coerceString(raw)
	}
	return r
}
