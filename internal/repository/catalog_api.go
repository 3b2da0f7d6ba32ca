package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rxcart/rxcart/internal/config"
	"github.com/rxcart/rxcart/internal/domain/catalog"
	ierr "github.com/rxcart/rxcart/internal/errors"
	"github.com/rxcart/rxcart/internal/httpclient"
	"github.com/rxcart/rxcart/internal/logger"
)

type catalogAPIRepository struct {
	client  httpclient.Client
	baseURL string
	logger  *logger.Logger
}

// NewCatalogRepository returns a catalog.Repository backed by the ledger
// service's catalog endpoints
func NewCatalogRepository(client httpclient.Client, cfg *config.Configuration, logger *logger.Logger) catalog.Repository {
	return &catalogAPIRepository{
		client:  client,
		baseURL: cfg.Backend.BaseURL,
		logger:  logger,
	}
}

func (r *catalogAPIRepository) Search(ctx context.Context, query string) ([]*catalog.Entry, error) {
	resp, err := r.client.Send(ctx, &httpclient.Request{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/catalog/search?q=%s", r.baseURL, url.QueryEscape(query)),
	})
	if err != nil {
		return nil, err
	}

	var entries []*catalog.Entry
	if err := json.Unmarshal(resp.Body, &entries); err != nil {
		return nil, ierr.WithError(err).
			WithHint("The catalog service returned an unreadable response").
			Mark(ierr.ErrHTTPClient)
	}
	return entries, nil
}

func (r *catalogAPIRepository) CheckAvailability(ctx context.Context, entryID int64, quantity int) (bool, error) {
	resp, err := r.client.Send(ctx, &httpclient.Request{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/catalog/%d/availability?quantity=%d", r.baseURL, entryID, quantity),
	})
	if err != nil {
		return false, err
	}

	var result struct {
		Available bool `json:"available"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return false, ierr.WithError(err).
			WithHint("The catalog service returned an unreadable response").
			Mark(ierr.ErrHTTPClient)
	}
	return result.Available, nil
}
