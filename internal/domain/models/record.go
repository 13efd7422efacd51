package models

import (
	"encoding/json"
	"fmt"

	"CommodityPulse/pkg/jsonx"
)

// DateField is the reserved record field holding the report date.
const DateField = "date"

// Field is one named value of a raw record.
type Field struct {
	Name  string
	Value any
}

// RawRecord is a report record as delivered by a backend: a date plus an open
// set of fields, kept in the order the backend sent them.
type RawRecord struct {
	Date   *string
	Fields []Field
}

// NewRawRecord builds a record with the given date text.
func NewRawRecord(date string, fields ...Field) *RawRecord {
	return &RawRecord{Date: &date, Fields: fields}
}

// RecordFromObject splits a decoded object into the reserved date and the remaining fields.
func RecordFromObject(obj *jsonx.Object) *RawRecord {
	rec := &RawRecord{Fields: make([]Field, 0, obj.Len())}
	for _, k := range obj.Keys() {
		v, _ := obj.Get(k)
		if k == DateField {
			if v != nil {
				s := jsonx.Text(v)
				rec.Date = &s
			}
			continue
		}
		rec.Fields = append(rec.Fields, Field{Name: k, Value: v})
	}
	return rec
}

// DateText returns the record date or "".
func (r *RawRecord) DateText() string {
	if r == nil || r.Date == nil {
		return ""
	}
	return *r.Date
}

// UnmarshalJSON decodes a record object, preserving field order.
func (r *RawRecord) UnmarshalJSON(data []byte) error {
	v, err := jsonx.Decode(data)
	if err != nil {
		return err
	}
	obj, ok := v.(*jsonx.Object)
	if !ok {
		return fmt.Errorf("record: expected object, got %T", v)
	}
	*r = *RecordFromObject(obj)
	return nil
}

// MarshalJSON writes the date first, then the fields in order.
func (r RawRecord) MarshalJSON() ([]byte, error) {
	obj := jsonx.NewObject()
	if r.Date != nil {
		obj.Set(DateField, *r.Date)
	} else {
		obj.Set(DateField, nil)
	}
	for _, f := range r.Fields {
		obj.Set(f.Name, f.Value)
	}
	return json.Marshal(obj)
}
