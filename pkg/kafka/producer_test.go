package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestNewProducerRequiresBrokersAndTopic(t *testing.T) {
	if _, err := NewProducer(WithTopic("reports")); err == nil {
		t.Fatalf("expected error without brokers")
	}
	if _, err := NewProducer(WithBrokers([]string{"localhost:9092"})); err == nil {
		t.Fatalf("expected error without topic")
	}
}

func TestNewProducerAppliesOptions(t *testing.T) {
	p, err := NewProducer(
		WithBrokers([]string{"localhost:9092"}),
		WithTopic("reports"),
		WithCompression("zstd"),
		WithHashByKey(false),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	if p.Topic() != "reports" || p.writer.Topic != "reports" {
		t.Fatalf("unexpected topic %q", p.writer.Topic)
	}
	if p.writer.Compression != kafka.Zstd {
		t.Fatalf("expected zstd compression")
	}
	if _, ok := p.writer.Balancer.(*kafka.LeastBytes); !ok {
		t.Fatalf("expected least-bytes balancer, got %T", p.writer.Balancer)
	}
}

func TestParseCompressionDefaultsToGzip(t *testing.T) {
	if parseCompression("brotli") != kafka.Gzip {
		t.Fatalf("unknown compression should fall back to gzip")
	}
}
