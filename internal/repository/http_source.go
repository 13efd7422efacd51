package repository

import (
	"context"
	"fmt"

	"CommodityPulse/internal/domain/models"
	"CommodityPulse/internal/domain/repository"
	xhttp "CommodityPulse/pkg/http"
)

// HTTPSource pulls the latest report record from a JSON endpoint.
type HTTPSource struct {
	name   string
	url    string
	client *xhttp.Client
}

// NewHTTPSource creates an HTTP-backed record source.
func NewHTTPSource(name, url string, client *xhttp.Client) repository.RecordSource {
	return &HTTPSource{name: name, url: url, client: client}
}

func (s *HTTPSource) Name() string { return s.name }
func (s *HTTPSource) Type() string { return "http" }

func (s *HTTPSource) Fetch(ctx context.Context) (*models.RawRecord, error) {
	body, err := s.client.Fetch(ctx, &xhttp.RequestOptions{URL: s.url})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	rec, err := decodeRecord(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	return rec, nil
}
