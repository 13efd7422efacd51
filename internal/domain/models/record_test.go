package models

import (
	"encoding/json"
	"testing"
)

func TestRawRecordKeepsFieldOrder(t *testing.T) {
	var rec RawRecord
	if err := json.Unmarshal([]byte(`{"zz":"1","date":"2025-08-01","aa":{"x":1},"mm":null}`), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.DateText() != "2025-08-01" {
		t.Fatalf("unexpected date %q", rec.DateText())
	}
	if len(rec.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(rec.Fields))
	}
	names := []string{rec.Fields[0].Name, rec.Fields[1].Name, rec.Fields[2].Name}
	if names[0] != "zz" || names[1] != "aa" || names[2] != "mm" {
		t.Fatalf("unexpected order %v", names)
	}
}

func TestRawRecordNullDate(t *testing.T) {
	var rec RawRecord
	if err := json.Unmarshal([]byte(`{"date":null,"a":"b"}`), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.Date != nil {
		t.Fatalf("expected nil date, got %q", *rec.Date)
	}
	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"date":null,"a":"b"}` {
		t.Fatalf("unexpected json %s", out)
	}
}

func TestRawRecordRejectsNonObject(t *testing.T) {
	var rec RawRecord
	if err := json.Unmarshal([]byte(`[1,2]`), &rec); err == nil {
		t.Fatalf("expected error")
	}
}

func TestTableRowMarshalFlat(t *testing.T) {
	v := 105.0
	row := TableRow{Key: "2025-07-08", Date: "2025-07-08"}
	row.Set("Port A", &v)
	row.Set("Port B", nil)
	out, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"key":"2025-07-08","date":"2025-07-08","Port A":105,"Port B":null}`
	if string(out) != want {
		t.Fatalf("expected %s, got %s", want, out)
	}
}

func TestTableRowSetReplaces(t *testing.T) {
	a, b := 1.0, 2.0
	var row TableRow
	row.Set("x", &a)
	row.Set("x", &b)
	if len(row.Series) != 1 {
		t.Fatalf("expected single series, got %d", len(row.Series))
	}
	if got, ok := row.Value("x"); !ok || *got != 2 {
		t.Fatalf("expected last value, got %v", got)
	}
}

func TestReservedSeriesName(t *testing.T) {
	cases := map[string]string{"date": "_date", "key": "_key", "Port A": "Port A", "_date": "_date"}
	for in, want := range cases {
		if got := ReservedSeriesName(in); got != want {
			t.Errorf("ReservedSeriesName(%q) = %q, want %q", in, got, want)
		}
	}
}
