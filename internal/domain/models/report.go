package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// ClassPair declares one series of a tabular block.
type ClassPair struct {
	ClassName string `json:"className"`
	Key       string `json:"key"`
}

// ColumnMeta describes a series column derived from a ClassPair.
type ColumnMeta struct {
	ClassName string `json:"className"`
	Name      string `json:"name"`
	Key       string `json:"key"`
	Badge     string `json:"badge,omitempty"`
}

// Stack is a named series aligned to the block's date axis.
type Stack struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// SeriesValue is one cell of a table row; nil means no data.
type SeriesValue struct {
	Name  string
	Value *float64
}

// TableRow is one period of a tabular block.
// It marshals flat: {"key":..,"date":..,"<series>":number|null,...}.
// A series named like a reserved field is not marshaled; builders rename such
// series with ReservedSeriesName first.
type TableRow struct {
	Key    string
	Date   string
	Series []SeriesValue
}

// Set stores a series value, replacing an earlier value of the same name in place.
func (r *TableRow) Set(name string, v *float64) {
	for i := range r.Series {
		if r.Series[i].Name == name {
			r.Series[i].Value = v
			return
		}
	}
	r.Series = append(r.Series, SeriesValue{Name: name, Value: v})
}

// Value returns the value of a series.
func (r TableRow) Value(name string) (*float64, bool) {
	for _, s := range r.Series {
		if s.Name == name {
			return s.Value, true
		}
	}
	return nil, false
}

const (
	rowFieldKey  = "key"
	rowFieldDate = "date"
)

// IsReservedRowField reports whether name is one of TableRow's own fields.
func IsReservedRowField(name string) bool {
	return name == rowFieldKey || name == rowFieldDate
}

// ReservedSeriesName returns name, prefixed with "_" until it no longer
// collides with a reserved row field.
func ReservedSeriesName(name string) string {
	for IsReservedRowField(name) {
		name = "_" + name
	}
	return name
}

func (r TableRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(k string, v any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return nil
	}
	if err := write(rowFieldKey, r.Key); err != nil {
		return nil, err
	}
	if err := write(rowFieldDate, r.Date); err != nil {
		return nil, err
	}
	for _, s := range r.Series {
		if IsReservedRowField(s.Name) {
			continue
		}
		if err := write(s.Name, s.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParsedBlockModel is the chart/table view of one tabular block.
type ParsedBlockModel struct {
	Title         string       `json:"title,omitempty"`
	Unit          string       `json:"unit,omitempty"`
	Source        string       `json:"source,omitempty"`
	ChartLine     string       `json:"chartLine,omitempty"`
	Dates         []string     `json:"dates,omitempty"`
	Stacks        []Stack      `json:"stacks,omitempty"`
	LegendOrder   []string     `json:"legendOrder,omitempty"`
	ColumnsMeta   []ColumnMeta `json:"columnsMeta"`
	TableRowsAll  []TableRow   `json:"tableRowsAll"`
	TableRows     []TableRow   `json:"tableRows,omitempty"`
	ComparisonRow *TableRow    `json:"comparisonRow,omitempty"`
}

// PriceRow is one product line of a price-analysis block.
// Numeric fields are nil when the backend value is not a finite number.
type PriceRow struct {
	Title         string   `json:"title"`
	PriceIndex    string   `json:"priceIndex,omitempty"`
	LastAvgPrice  *float64 `json:"lastAvgPrice"`
	LastWoW       *float64 `json:"lastWoW"`
	LastTitle     string   `json:"lastTitle,omitempty"`
	LastChain     string   `json:"lastChain,omitempty"`
	LastDate      string   `json:"lastDate,omitempty"`
	ForecastPrice *float64 `json:"forecastPrice"`
	ForecastWoW   *float64 `json:"forecastWoW"`
	ForecastTitle string   `json:"forecastTitle,omitempty"`
	ForecastChain string   `json:"forecastChain,omitempty"`
	ForecastDate  string   `json:"forecastDate,omitempty"`
	Unit          string   `json:"unit,omitempty"`
	Disabled      bool     `json:"disabled,omitempty"`
}

// PriceSection is the summary-card view of a report.
type PriceSection struct {
	Title string     `json:"title,omitempty"`
	Rows  []PriceRow `json:"rows"`
}

// NamedBlock pairs a tabular block model with the field it came from.
type NamedBlock struct {
	Key   string           `json:"key"`
	Model ParsedBlockModel `json:"model"`
}

// Report is everything derived from one fetch of one source.
type Report struct {
	Source    string       `json:"source"`
	Date      string       `json:"date,omitempty"`
	FetchedAt time.Time    `json:"fetchedAt"`
	Blocks    []NamedBlock `json:"blocks"`
	PriceKey  string       `json:"priceKey,omitempty"`
	Price     PriceSection `json:"price"`
}

// Block returns the tabular block stored under key.
func (r *Report) Block(key string) (ParsedBlockModel, bool) {
	for _, b := range r.Blocks {
		if b.Key == key {
			return b.Model, true
		}
	}
	return ParsedBlockModel{}, false
}

// BlockKeys lists the tabular block keys in record order.
func (r *Report) BlockKeys() []string {
	keys := make([]string, len(r.Blocks))
	for i, b := range r.Blocks {
		keys[i] = b.Key
	}
	return keys
}
