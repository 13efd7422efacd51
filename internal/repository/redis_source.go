package repository

import (
	"context"
	"errors"
	"fmt"

	"CommodityPulse/internal/domain/models"
	"CommodityPulse/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

// RedisSource reads a report record stored as JSON under a Redis key.
type RedisSource struct {
	name   string
	key    string
	client redis.UniversalClient
}

// NewRedisSource creates a Redis-backed record source.
func NewRedisSource(name, key string, client redis.UniversalClient) repository.RecordSource {
	return &RedisSource{name: name, key: key, client: client}
}

func (s *RedisSource) Name() string { return s.name }
func (s *RedisSource) Type() string { return "redis" }

func (s *RedisSource) Fetch(ctx context.Context) (*models.RawRecord, error) {
	body, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: key %q: %w", s.name, s.key, ErrNoRecord)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: redis get: %w", s.name, err)
	}
	rec, err := decodeRecord(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	return rec, nil
}
