package blocks

import (
	"testing"

	"CommodityPulse/internal/domain/models"
	"CommodityPulse/internal/services/ingest"
)

const priceBlock = `{
	"title":"Weekly Price Analysis",
	"coal5500":{"product":"Coal 5500","metrics":"CCI","current":{"date":"2025-07-25","title":"Last week avg","value":"812.5","unit":"CNY/t","comparisonLabel":"WoW","comparisonValue":-3.5},
		"next":{"date":"2025-08-01","title":"Forecast","value":815,"comparisonLabel":"WoW","comparisonValue":2.5}},
	"coal5000":{"current":{"value":700,"comparisonValue":"n/a"},"next":{"value":705,"comparisonValue":5,"unit":"CNY/t"}},
	"note":"ignored"
}`

func TestDetectPriceSection(t *testing.T) {
	rec := models.NewRawRecord("2025-08-01",
		models.Field{Name: "other", Value: `{"title":"Inventory"}`},
		models.Field{Name: "price", Value: priceBlock},
	)
	section := DetectPriceSection(ingest.Record(rec).Blocks, nil)

	if section.Title != "Weekly Price Analysis" {
		t.Fatalf("unexpected title %q", section.Title)
	}
	if len(section.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(section.Rows))
	}

	first := section.Rows[0]
	if first.Title != "Coal 5500" || first.PriceIndex != "CCI" {
		t.Errorf("unexpected row identity %+v", first)
	}
	if first.LastAvgPrice == nil || *first.LastAvgPrice != 812.5 {
		t.Errorf("unexpected last price %v", first.LastAvgPrice)
	}
	if first.ForecastWoW == nil || *first.ForecastWoW != 2.5 {
		t.Errorf("unexpected forecast wow %v", first.ForecastWoW)
	}
	if first.LastChain != "WoW" || first.LastDate != "2025-07-25" || first.ForecastTitle != "Forecast" {
		t.Errorf("unexpected labels %+v", first)
	}
	if first.Unit != "CNY/t" || first.Disabled {
		t.Errorf("unexpected unit/disabled %+v", first)
	}

	second := section.Rows[1]
	if second.Title != "coal5000" {
		t.Errorf("row title should fall back to the sub-section key, got %q", second.Title)
	}
	if !second.Disabled || second.LastWoW != nil {
		t.Errorf("row with a non-numeric field must be disabled, got %+v", second)
	}
	if second.Unit != "CNY/t" {
		t.Errorf("unit should fall back to next period, got %q", second.Unit)
	}
}

func TestPriceRowDisabling(t *testing.T) {
	cases := []struct {
		name     string
		sub      string
		disabled bool
	}{
		{"all numbers", `{"current":{"value":1,"comparisonValue":2},"next":{"value":3,"comparisonValue":4}}`, false},
		{"numeric strings", `{"current":{"value":"1","comparisonValue":"-2"},"next":{"value":"3.5","comparisonValue":"0"}}`, false},
		{"missing next", `{"current":{"value":1,"comparisonValue":2}}`, true},
		{"blank value", `{"current":{"value":"","comparisonValue":2},"next":{"value":3,"comparisonValue":4}}`, true},
		{"null wow", `{"current":{"value":1,"comparisonValue":null},"next":{"value":3,"comparisonValue":4}}`, true},
		{"bool price", `{"current":{"value":1,"comparisonValue":2},"next":{"value":true,"comparisonValue":4}}`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := priceRow("p", mustObject(t, tc.sub))
			if row.Disabled != tc.disabled {
				t.Fatalf("disabled = %v, want %v (%+v)", row.Disabled, tc.disabled, row)
			}
		})
	}
}

func TestFirstMatchPolicyOrder(t *testing.T) {
	blocks := mustObject(t, `{
		"a":{"title":"plain"},
		"b":{"title":"价格分析 A","x":{"current":{"value":1}}},
		"c":{"title":"Price Analysis B"}
	}`)
	key, _, ok := FirstMatchPolicy(blocks)
	if !ok || key != "b" {
		t.Fatalf("expected first match b, got %q %v", key, ok)
	}

	key, _, ok = KeyPolicy("c")(blocks)
	if !ok || key != "c" {
		t.Fatalf("key policy should select c, got %q", key)
	}
	if section := DetectPriceSection(blocks, KeyPolicy("c")); section.Title != "Price Analysis B" || len(section.Rows) != 0 {
		t.Fatalf("unexpected section %+v", section)
	}
}

func TestIsPriceBlockBySubFields(t *testing.T) {
	if !IsPriceBlock(mustObject(t, `{"x":{"next":{"value":1}}}`)) {
		t.Fatalf("sub-section with next should qualify")
	}
	if IsPriceBlock(mustObject(t, `{"title":"Inventory","x":{"current":"nope"}}`)) {
		t.Fatalf("non-object current should not qualify")
	}
}

func TestDetectPriceSectionNoMatch(t *testing.T) {
	section := DetectPriceSection(mustObject(t, `{"a":"text","b":[1,2],"c":{"DataClass":[]}}`), nil)
	if section.Title != "" || section.Rows == nil || len(section.Rows) != 0 {
		t.Fatalf("expected empty section, got %+v", section)
	}
}
