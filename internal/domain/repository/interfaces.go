package repository

import (
	"context"

	"CommodityPulse/internal/domain/models"
)

// RecordSource loads the latest raw report record from one upstream feed.
type RecordSource interface {
	Name() string
	Type() string
	Fetch(ctx context.Context) (*models.RawRecord, error)
}

// ReportPublisher fans a freshly composed report out to downstream consumers.
type ReportPublisher interface {
	Backend() string
	Publish(ctx context.Context, r *models.Report) error
	Close() error
}

type Metrics interface {
	RecordPublished(backend, source string)
	RecordError(kind string)
	RecordPriceRows(source string, total, disabled int)
}
