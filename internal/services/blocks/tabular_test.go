package blocks

import (
	"encoding/json"
	"reflect"
	"testing"

	"CommodityPulse/internal/domain/models"
	"CommodityPulse/internal/services/ingest"
	"CommodityPulse/pkg/jsonx"
)

const exampleBlock = `{"DataTitle":"X","DataClass":[{"ClassName":"Port A(Q3600)","keyName":"portA"}],` +
	`"DataChart":[{"Date":"2025-07-01","portA":100},{"Date":"2025-07-08","portA":105}],` +
	`"DataForm":[{"Date":"2025-07-08","portA":105},{"Date":"2025-07-01","portA":100},{"Date":"WoW","portA":5}]}`

func mustObject(t *testing.T, s string) *jsonx.Object {
	t.Helper()
	v, err := jsonx.Decode([]byte(s))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	obj, ok := v.(*jsonx.Object)
	if !ok {
		t.Fatalf("expected object, got %T", v)
	}
	return obj
}

func TestBuildTabularExample(t *testing.T) {
	rec := models.NewRawRecord("2025-08-01", models.Field{Name: "block", Value: exampleBlock})
	in := ingest.Record(rec)
	block, ok := in.Blocks.Object("block")
	if !ok {
		t.Fatalf("expected parsed block")
	}

	m := BuildTabular(block)

	if m.Title != "X" {
		t.Errorf("unexpected title %q", m.Title)
	}
	if !reflect.DeepEqual(m.Dates, []string{"2025-07-01", "2025-07-08"}) {
		t.Errorf("unexpected dates %v", m.Dates)
	}
	if !reflect.DeepEqual(m.Stacks, []models.Stack{{Name: "Port A", Values: []float64{100, 105}}}) {
		t.Errorf("unexpected stacks %+v", m.Stacks)
	}
	wantCols := []models.ColumnMeta{{ClassName: "Port A(Q3600)", Name: "Port A", Key: "portA", Badge: "Q3600"}}
	if !reflect.DeepEqual(m.ColumnsMeta, wantCols) {
		t.Errorf("unexpected columns %+v", m.ColumnsMeta)
	}

	rows, err := json.Marshal(m.TableRows)
	if err != nil {
		t.Fatalf("marshal rows: %v", err)
	}
	wantRows := `[{"key":"2025-07-08","date":"2025-07-08","Port A":105},{"key":"2025-07-01","date":"2025-07-01","Port A":100}]`
	if string(rows) != wantRows {
		t.Errorf("unexpected table rows %s", rows)
	}

	if m.ComparisonRow == nil {
		t.Fatalf("expected comparison row")
	}
	cmp, err := json.Marshal(m.ComparisonRow)
	if err != nil {
		t.Fatalf("marshal comparison: %v", err)
	}
	if string(cmp) != `{"key":"WoW","date":"WoW","Port A":5}` {
		t.Errorf("unexpected comparison row %s", cmp)
	}
	if len(m.TableRowsAll) != 3 {
		t.Errorf("expected 3 rows, got %d", len(m.TableRowsAll))
	}
}

func TestBuildTabularInvalidValues(t *testing.T) {
	block := mustObject(t, `{
		"DataClass":[{"ClassName":"A","keyName":"a"},{"ClassName":"B","keyName":"b"}],
		"DataChart":[{"Date":"d1","a":"x","b":2},{"Date":"d2","a":1}],
		"DataForm":[{"Date":"d2","a":"n/a","b":null}]
	}`)
	m := BuildTabular(block)

	if !reflect.DeepEqual(m.Stacks[0].Values, []float64{0, 1}) {
		t.Errorf("chart values should coerce to 0, got %v", m.Stacks[0].Values)
	}
	if !reflect.DeepEqual(m.Stacks[1].Values, []float64{2, 0}) {
		t.Errorf("missing chart values should be 0, got %v", m.Stacks[1].Values)
	}
	row := m.TableRowsAll[0]
	if v, ok := row.Value("A"); !ok || v != nil {
		t.Errorf("table value should be nil, got %v", v)
	}
	if v, ok := row.Value("B"); !ok || v != nil {
		t.Errorf("table null should be nil, got %v", v)
	}
	if m.ComparisonRow != nil {
		t.Errorf("no comparison row expected with a single form row")
	}
	if !reflect.DeepEqual(m.LegendOrder, []string{"A", "B"}) {
		t.Errorf("unexpected legend order %v", m.LegendOrder)
	}
}

func TestBuildTabularStacksAlignWithDates(t *testing.T) {
	block := mustObject(t, `{
		"DataClass":[{"ClassName":"A","keyName":"a"},{"ClassName":"B(t)","keyName":"b"}],
		"DataChart":[{"Date":"d1","a":1},{"Date":"","a":2},{"a":3},"junk",{"Date":"d4","b":4},{"Date":"d5"}]
	}`)
	m := BuildTabular(block)

	if !reflect.DeepEqual(m.Dates, []string{"d1", "d4", "d5"}) {
		t.Fatalf("unexpected dates %v", m.Dates)
	}
	for _, s := range m.Stacks {
		if len(s.Values) != len(m.Dates) {
			t.Errorf("stack %q has %d values for %d dates", s.Name, len(s.Values), len(m.Dates))
		}
	}
}

func TestBuildTabularRowKeysUnique(t *testing.T) {
	block := mustObject(t, `{
		"DataClass":[{"ClassName":"A","keyName":"a"}],
		"DataForm":[{"Date":"d1","a":1},{"Date":"d1","a":2},{"Date":"","a":3},{"a":4},{"Date":"row-2"},{"Date":"row-1"}]
	}`)
	m := BuildTabular(block)

	seen := map[string]bool{}
	for _, r := range m.TableRowsAll {
		if r.Key == "" {
			t.Fatalf("empty key in %+v", r)
		}
		if seen[r.Key] {
			t.Fatalf("duplicate key %q", r.Key)
		}
		seen[r.Key] = true
	}
	if m.TableRowsAll[1].Key != "row-1" || m.TableRowsAll[1].Date != "d1" {
		t.Errorf("duplicate date should fall back to positional key, got %+v", m.TableRowsAll[1])
	}
	if m.TableRowsAll[2].Key != "row-2" {
		t.Errorf("empty date should use positional key, got %q", m.TableRowsAll[2].Key)
	}

	again := BuildTabular(block)
	for i := range m.TableRowsAll {
		if again.TableRowsAll[i].Key != m.TableRowsAll[i].Key {
			t.Fatalf("row keys are not deterministic")
		}
	}
}

func TestBuildTabularDuplicateKeyLastWins(t *testing.T) {
	block := mustObject(t, `{
		"DataClass":[{"ClassName":"First","keyName":"a"},{"ClassName":"Second","keyName":"a"}],
		"DataChart":[{"Date":"d1","a":7}]
	}`)
	m := BuildTabular(block)

	if len(m.ColumnsMeta) != 2 {
		t.Fatalf("columns keep every declaration, got %d", len(m.ColumnsMeta))
	}
	if len(m.Stacks) != 1 || m.Stacks[0].Name != "Second" {
		t.Fatalf("expected last declaration to win, got %+v", m.Stacks)
	}
}

func TestBuildTabularEmpty(t *testing.T) {
	m := BuildTabular(jsonx.NewObject())
	if m.Dates != nil || m.Stacks != nil || m.LegendOrder != nil || m.TableRows != nil || m.ComparisonRow != nil {
		t.Fatalf("expected empty model, got %+v", m)
	}
	if m.ColumnsMeta == nil || m.TableRowsAll == nil {
		t.Fatalf("columnsMeta and tableRowsAll should be empty, not nil")
	}
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"columnsMeta":[],"tableRowsAll":[]}` {
		t.Fatalf("unexpected json %s", out)
	}
	if got := BuildTabular(nil); got.Title != "" || len(got.ColumnsMeta) != 0 {
		t.Fatalf("nil block should build an empty model")
	}
}

func TestBuildTabularRenamesReservedSeries(t *testing.T) {
	block := mustObject(t, `{
		"DataClass":[{"ClassName":"date","keyName":"d"},{"ClassName":"key(t)","keyName":"k"}],
		"DataChart":[{"Date":"2025-07-01","d":3,"k":4}],
		"DataForm":[{"Date":"2025-07-01","d":3,"k":4}]
	}`)

	m := BuildTabular(block)

	want := []string{"_date", "_key"}
	if !reflect.DeepEqual(m.LegendOrder, want) {
		t.Fatalf("expected legend %v, got %v", want, m.LegendOrder)
	}
	if m.ColumnsMeta[0].ClassName != "date" || m.ColumnsMeta[1].Badge != "t" {
		t.Errorf("original header should be kept, got %+v", m.ColumnsMeta)
	}
	if len(m.Stacks) != 2 || m.Stacks[0].Name != "_date" {
		t.Fatalf("unexpected stacks %+v", m.Stacks)
	}

	b, err := json.Marshal(m.TableRowsAll[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(b); got != `{"key":"2025-07-01","date":"2025-07-01","_date":3,"_key":4}` {
		t.Fatalf("unexpected row %s", got)
	}
}
