package repository

import (
	"context"

	"CommodityPulse/internal/domain/models"
	"CommodityPulse/internal/domain/repository"
)

// MessageWriter is the slice of the Kafka producer the publisher needs.
type MessageWriter interface {
	PublishJSON(ctx context.Context, key string, value any) error
	Close() error
}

// KafkaPublisher implements ReportPublisher for Kafka. Messages are keyed by
// source so every report of one source lands on the same partition.
type KafkaPublisher struct {
	producer MessageWriter
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer MessageWriter) repository.ReportPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Backend() string { return "kafka" }

func (p *KafkaPublisher) Publish(ctx context.Context, r *models.Report) error {
	return p.producer.PublishJSON(ctx, r.Source, r)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopPublisher drops reports; used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Backend() string                               { return "" }
func (NopPublisher) Publish(context.Context, *models.Report) error { return nil }
func (NopPublisher) Close() error                                  { return nil }
