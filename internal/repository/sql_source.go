package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"CommodityPulse/internal/domain/models"
	"CommodityPulse/internal/domain/repository"
	"CommodityPulse/pkg/jsonx"
)

// SQLSource reads the newest row of a report table. Each column becomes a
// record field in column order; JSON text columns are parsed later by ingest.
type SQLSource struct {
	name    string
	db      *sql.DB
	query   string
	dateCol string
}

// NewSQLSource creates a source selecting the row with the greatest dateCol from table.
func NewSQLSource(name string, db *sql.DB, table, dateCol string) repository.RecordSource {
	q := fmt.Sprintf("SELECT * FROM %s ORDER BY %s DESC LIMIT 1", quoteIdent(table), quoteIdent(dateCol))
	return &SQLSource{name: name, db: db, query: q, dateCol: dateCol}
}

func (s *SQLSource) Name() string { return s.name }
func (s *SQLSource) Type() string { return "sql" }

func (s *SQLSource) Fetch(ctx context.Context) (*models.RawRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", s.name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%s: columns: %w", s.name, err)
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		return nil, fmt.Errorf("%s: %w", s.name, ErrNoRecord)
	}

	values := make([]any, len(cols))
	scans := make([]any, len(cols))
	for i := range values {
		scans[i] = &values[i]
	}
	if err := rows.Scan(scans...); err != nil {
		return nil, fmt.Errorf("%s: scan: %w", s.name, err)
	}

	obj := jsonx.NewObject()
	for i, col := range cols {
		name := col
		if strings.EqualFold(col, s.dateCol) {
			name = models.DateField
		}
		obj.Set(name, normalizeValue(values[i]))
	}
	return models.RecordFromObject(obj), nil
}

// normalizeValue maps driver values onto the JSON-like values the rest of
// the pipeline understands.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format(time.DateOnly)
		}
		return t.Format(time.RFC3339)
	case *string:
		if t == nil {
			return nil
		}
		return *t
	case sql.NullString:
		if !t.Valid {
			return nil
		}
		return t.String
	default:
		return v
	}
}

// quoteIdent quotes each dot-separated part, so "db.table" stays qualified.
func quoteIdent(s string) string {
	parts := strings.Split(s, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}
