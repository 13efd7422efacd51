package blocks

import (
	"strings"

	"CommodityPulse/internal/domain/models"
	"CommodityPulse/pkg/jsonx"
	"CommodityPulse/pkg/util"
)

// Price-analysis block fields.
const (
	FieldPriceTitle = "title"
	FieldProduct    = "product"
	FieldMetrics    = "metrics"
	FieldCurrent    = "current"
	FieldNext       = "next"

	fieldPeriodDate      = "date"
	fieldPeriodTitle     = "title"
	fieldPeriodValue     = "value"
	fieldPeriodUnit      = "unit"
	fieldComparisonLabel = "comparisonLabel"
	fieldComparisonValue = "comparisonValue"
)

// PriceTitleMarkers identify a price-analysis block by its title (ASCII is matched case-insensitively).
var PriceTitleMarkers = []string{"价格分析", "price analysis"}

// PricePolicy picks the price-analysis block out of a block map.
type PricePolicy func(blocks *jsonx.Object) (key string, block *jsonx.Object, ok bool)

// FirstMatchPolicy returns the first block, in record field order, that
// IsPriceBlock accepts. Later candidates are ignored.
func FirstMatchPolicy(blocks *jsonx.Object) (string, *jsonx.Object, bool) {
	for _, k := range blocks.Keys() {
		obj, ok := blocks.Object(k)
		if ok && IsPriceBlock(obj) {
			return k, obj, true
		}
	}
	return "", nil, false
}

// KeyPolicy selects the price block stored under a fixed field name.
func KeyPolicy(key string) PricePolicy {
	return func(blocks *jsonx.Object) (string, *jsonx.Object, bool) {
		obj, ok := blocks.Object(key)
		if !ok {
			return "", nil, false
		}
		return key, obj, true
	}
}

// IsPriceBlock reports whether obj has a price-analysis title marker or a
// sub-section exposing a current or next period object.
func IsPriceBlock(obj *jsonx.Object) bool {
	title := strings.ToLower(obj.Text(FieldPriceTitle))
	for _, m := range PriceTitleMarkers {
		if title != "" && strings.Contains(title, m) {
			return true
		}
	}
	for _, k := range obj.Keys() {
		if k == FieldPriceTitle {
			continue
		}
		sub, ok := obj.Object(k)
		if !ok {
			continue
		}
		if _, ok := sub.Object(FieldCurrent); ok {
			return true
		}
		if _, ok := sub.Object(FieldNext); ok {
			return true
		}
	}
	return false
}

// DetectPriceSection finds the price-analysis block with policy (FirstMatchPolicy
// when nil) and maps each object sub-section into a PriceRow. No match yields
// an empty section.
func DetectPriceSection(blocks *jsonx.Object, policy PricePolicy) models.PriceSection {
	pb, ok := DetectPriceBlock(blocks, policy)
	if !ok {
		return models.PriceSection{Rows: []models.PriceRow{}}
	}
	return pb.Section()
}

// DetectPriceBlock returns the block policy (FirstMatchPolicy when nil) selects.
func DetectPriceBlock(blocks *jsonx.Object, policy PricePolicy) (PriceBlock, bool) {
	if policy == nil {
		policy = FirstMatchPolicy
	}
	key, block, ok := policy(blocks)
	if !ok {
		return PriceBlock{}, false
	}
	return PriceBlock{key: key, raw: block}, true
}

// PriceSectionOf maps a known price-analysis block into rows.
func PriceSectionOf(block *jsonx.Object) models.PriceSection {
	section := models.PriceSection{
		Title: block.Text(FieldPriceTitle),
		Rows:  []models.PriceRow{},
	}
	for _, k := range block.Keys() {
		if k == FieldPriceTitle {
			continue
		}
		sub, ok := block.Object(k)
		if !ok {
			continue
		}
		section.Rows = append(section.Rows, priceRow(k, sub))
	}
	return section
}

func priceRow(name string, sub *jsonx.Object) models.PriceRow {
	cur, _ := sub.Object(FieldCurrent)
	next, _ := sub.Object(FieldNext)

	row := models.PriceRow{
		Title:         name,
		PriceIndex:    sub.Text(FieldMetrics),
		LastAvgPrice:  number(cur, fieldPeriodValue),
		LastWoW:       number(cur, fieldComparisonValue),
		LastTitle:     cur.Text(fieldPeriodTitle),
		LastChain:     cur.Text(fieldComparisonLabel),
		LastDate:      cur.Text(fieldPeriodDate),
		ForecastPrice: number(next, fieldPeriodValue),
		ForecastWoW:   number(next, fieldComparisonValue),
		ForecastTitle: next.Text(fieldPeriodTitle),
		ForecastChain: next.Text(fieldComparisonLabel),
		ForecastDate:  next.Text(fieldPeriodDate),
		Unit:          cur.Text(fieldPeriodUnit),
	}
	if p := sub.Text(FieldProduct); p != "" {
		row.Title = p
	}
	if row.Unit == "" {
		row.Unit = next.Text(fieldPeriodUnit)
	}
	row.Disabled = row.LastAvgPrice == nil || row.LastWoW == nil ||
		row.ForecastPrice == nil || row.ForecastWoW == nil
	return row
}

func number(obj *jsonx.Object, key string) *float64 {
	v, _ := obj.Get(key)
	return util.FloatPtr(v)
}
