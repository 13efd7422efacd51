package repository

import (
	"errors"
	"fmt"

	"CommodityPulse/internal/domain/models"
	"CommodityPulse/pkg/jsonx"
)

// ErrNoRecord is returned when an upstream answered without any record.
var ErrNoRecord = errors.New("no record available")

// decodeRecord accepts a single record object or an array of record objects.
// From an array the record with the greatest date wins; ties keep the first.
func decodeRecord(body []byte) (*models.RawRecord, error) {
	v, err := jsonx.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}

	switch t := v.(type) {
	case *jsonx.Object:
		return models.RecordFromObject(t), nil
	case []any:
		var latest *models.RawRecord
		for i, item := range t {
			obj, ok := item.(*jsonx.Object)
			if !ok {
				return nil, fmt.Errorf("decode record: element %d is %T, not an object", i, item)
			}
			rec := models.RecordFromObject(obj)
			if latest == nil || rec.DateText() > latest.DateText() {
				latest = rec
			}
		}
		if latest == nil {
			return nil, ErrNoRecord
		}
		return latest, nil
	case nil:
		return nil, ErrNoRecord
	default:
		return nil, fmt.Errorf("decode record: unexpected %T", v)
	}
}
