package blocks

import (
	"fmt"

	"CommodityPulse/internal/domain/models"
	"CommodityPulse/pkg/jsonx"
	"CommodityPulse/pkg/util"
)

// Tabular block fields.
const (
	FieldTitle     = "DataTitle"
	FieldUnit      = "DataUnit"
	FieldSource    = "DataSource"
	FieldChartLine = "ChartLine"
	FieldClass     = "DataClass"
	FieldChart     = "DataChart"
	FieldForm      = "DataForm"

	fieldClassName = "ClassName"
	fieldKeyName   = "keyName"
	fieldEntryDate = "Date"
)

// DataForm conventionally carries the current period, the previous period and
// their delta, in that order.
const recentRows = 2

// BuildTabular turns a tabular block into its chart/table model.
//
// Chart values that are not numbers become 0; table values that are not
// numbers become nil. Chart entries without a date are skipped so every stack
// stays aligned with Dates. Never fails: missing parts are left empty.
func BuildTabular(block *jsonx.Object) models.ParsedBlockModel {
	m := models.ParsedBlockModel{
		Title:        block.Text(FieldTitle),
		Unit:         block.Text(FieldUnit),
		Source:       block.Text(FieldSource),
		ChartLine:    block.Text(FieldChartLine),
		ColumnsMeta:  columnsMeta(block),
		TableRowsAll: []models.TableRow{},
	}

	if len(m.ColumnsMeta) > 0 {
		m.LegendOrder = make([]string, len(m.ColumnsMeta))
		for i, c := range m.ColumnsMeta {
			m.LegendOrder[i] = c.Name
		}
	}

	if chart, ok := block.Array(FieldChart); ok {
		entries := datedEntries(chart)
		if len(entries) > 0 {
			m.Dates = make([]string, len(entries))
			for i, e := range entries {
				m.Dates[i] = e.Text(fieldEntryDate)
			}
			m.Stacks = buildStacks(m.ColumnsMeta, entries)
		}
	}

	if form, ok := block.Array(FieldForm); ok {
		m.TableRowsAll = buildTableRows(m.ColumnsMeta, form)
	}

	if n := len(m.TableRowsAll); n > 0 {
		m.TableRows = m.TableRowsAll[:min(recentRows, n)]
		if n > recentRows {
			row := m.TableRowsAll[recentRows]
			m.ComparisonRow = &row
		}
	}

	return m
}

// ClassPairs reads the DataClass declarations of a block.
func ClassPairs(block *jsonx.Object) []models.ClassPair {
	arr, _ := block.Array(FieldClass)
	pairs := make([]models.ClassPair, 0, len(arr))
	for _, v := range arr {
		obj, ok := v.(*jsonx.Object)
		if !ok {
			continue
		}
		pairs = append(pairs, models.ClassPair{
			ClassName: firstText(obj, fieldClassName, "className"),
			Key:       firstText(obj, fieldKeyName, "key"),
		})
	}
	return pairs
}

// columnsMeta derives one column per class pair. A name that collides with a
// table row's own key or date field is renamed everywhere it is used, so
// stacks, legend and table rows stay in agreement.
func columnsMeta(block *jsonx.Object) []models.ColumnMeta {
	pairs := ClassPairs(block)
	cols := make([]models.ColumnMeta, len(pairs))
	for i, p := range pairs {
		h := SplitHeader(p.ClassName)
		cols[i] = models.ColumnMeta{
			ClassName: p.ClassName,
			Name:      models.ReservedSeriesName(h.Name),
			Key:       p.Key,
			Badge:     h.Badge,
		}
	}
	return cols
}

func datedEntries(chart []any) []*jsonx.Object {
	out := make([]*jsonx.Object, 0, len(chart))
	for _, v := range chart {
		obj, ok := v.(*jsonx.Object)
		if !ok || obj.Text(fieldEntryDate) == "" {
			continue
		}
		out = append(out, obj)
	}
	return out
}

// buildStacks emits one stack per series key; a repeated key overwrites the
// earlier stack in place.
func buildStacks(cols []models.ColumnMeta, entries []*jsonx.Object) []models.Stack {
	if len(cols) == 0 {
		return nil
	}
	stacks := make([]models.Stack, 0, len(cols))
	byKey := make(map[string]int, len(cols))
	for _, c := range cols {
		values := make([]float64, len(entries))
		for i, e := range entries {
			v, _ := e.Get(c.Key)
			values[i] = util.FloatOrZero(v)
		}
		s := models.Stack{Name: c.Name, Values: values}
		if idx, ok := byKey[c.Key]; ok {
			stacks[idx] = s
			continue
		}
		byKey[c.Key] = len(stacks)
		stacks = append(stacks, s)
	}
	return stacks
}

func buildTableRows(cols []models.ColumnMeta, form []any) []models.TableRow {
	rows := make([]models.TableRow, 0, len(form))
	used := make(map[string]bool, len(form))
	for i, v := range form {
		obj, _ := v.(*jsonx.Object)
		date := obj.Text(fieldEntryDate)
		row := models.TableRow{
			Key:    rowKey(date, i, used),
			Date:   date,
			Series: make([]models.SeriesValue, 0, len(cols)),
		}
		for _, c := range cols {
			val, _ := obj.Get(c.Key)
			row.Set(c.Name, util.FloatPtr(val))
		}
		rows = append(rows, row)
	}
	return rows
}

// rowKey uses the date when it is non-empty and unused, else "row-<index>".
func rowKey(date string, index int, used map[string]bool) string {
	key := date
	if key == "" || used[key] {
		key = fmt.Sprintf("row-%d", index)
		for n := 1; used[key]; n++ {
			key = fmt.Sprintf("row-%d-%d", index, n)
		}
	}
	used[key] = true
	return key
}

func firstText(obj *jsonx.Object, keys ...string) string {
	for _, k := range keys {
		if s := obj.Text(k); s != "" {
			return s
		}
	}
	return ""
}
