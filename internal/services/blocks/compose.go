package blocks

import (
	"time"

	"CommodityPulse/internal/domain/models"
	"CommodityPulse/internal/services/ingest"
)

// Compose builds the report of one ingested record: every tabular block in
// record order plus the price section chosen by policy. The price block is
// never listed among the tabular blocks, even when a KeyPolicy picks a block
// that also carries series.
func Compose(source string, in ingest.Ingested, policy PricePolicy, fetchedAt time.Time) *models.Report {
	r := &models.Report{
		Source:    source,
		Date:      in.Date,
		FetchedAt: fetchedAt,
		Blocks:    []models.NamedBlock{},
		Price:     models.PriceSection{Rows: []models.PriceRow{}},
	}
	pb, priced := DetectPriceBlock(in.Blocks, policy)
	if priced {
		r.PriceKey = pb.Key()
		r.Price = pb.Section()
	}
	for _, b := range ClassifyAll(in.Blocks) {
		tb, ok := b.(TabularBlock)
		if !ok || (priced && tb.Key() == pb.Key()) {
			continue
		}
		r.Blocks = append(r.Blocks, models.NamedBlock{Key: tb.Key(), Model: tb.Model()})
	}
	return r
}
