// Package ingest turns raw report records into block maps.
package ingest

import (
	"strings"

	"CommodityPulse/internal/domain/models"
	"CommodityPulse/pkg/jsonx"
)

// Ingested is a record whose JSON-looking string fields have been parsed.
// Blocks keeps the record's field order; the date field is not included.
type Ingested struct {
	Date   string
	Blocks *jsonx.Object
}

// Record parses every non-date string field that looks like a JSON object or
// array. A field that fails to parse keeps its original string. Never fails.
func Record(rec *models.RawRecord) Ingested {
	out := Ingested{Blocks: jsonx.NewObject()}
	if rec == nil {
		return out
	}
	out.Date = rec.DateText()

	for _, f := range rec.Fields {
		if f.Name == models.DateField {
			continue
		}
		out.Blocks.Set(f.Name, parseField(f.Value))
	}
	return out
}

func parseField(v any) any {
	s, ok := v.(string)
	if !ok || !LooksLikeJSON(s) {
		return v
	}
	parsed, err := jsonx.Decode([]byte(strings.TrimSpace(s)))
	if err != nil {
		return v
	}
	return parsed
}

// LooksLikeJSON reports whether the trimmed string is wrapped in {} or [].
func LooksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return (first == '{' && last == '}') || (first == '[' && last == ']')
}
