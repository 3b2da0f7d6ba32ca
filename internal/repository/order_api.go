package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rxcart/rxcart/internal/config"
	"github.com/rxcart/rxcart/internal/domain/order"
	ierr "github.com/rxcart/rxcart/internal/errors"
	"github.com/rxcart/rxcart/internal/httpclient"
	"github.com/rxcart/rxcart/internal/logger"
)

type orderAPIRepository struct {
	client  httpclient.Client
	baseURL string
	logger  *logger.Logger
}

// NewOrderRepository returns an order.Repository backed by the ledger
// service's order item endpoints
func NewOrderRepository(client httpclient.Client, cfg *config.Configuration, logger *logger.Logger) order.Repository {
	return &orderAPIRepository{
		client:  client,
		baseURL: cfg.Backend.BaseURL,
		logger:  logger,
	}
}

func (r *orderAPIRepository) ListItems(ctx context.Context, orderID string) ([]*order.LineItem, error) {
	resp, err := r.client.Send(ctx, &httpclient.Request{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/orders/%s/items", r.baseURL, url.PathEscape(orderID)),
	})
	if err != nil {
		return nil, err
	}

	var items []*order.LineItem
	if err := json.Unmarshal(resp.Body, &items); err != nil {
		return nil, ierr.WithError(err).
			WithHint("The ledger service returned an unreadable response").
			Mark(ierr.ErrHTTPClient)
	}
	return items, nil
}

func (r *orderAPIRepository) DeleteItem(ctx context.Context, itemID int64) error {
	_, err := r.client.Send(ctx, &httpclient.Request{
		Method: http.MethodDelete,
		URL:    fmt.Sprintf("%s/items/%d", r.baseURL, itemID),
	})
	return err
}

func (r *orderAPIRepository) UpsertItems(ctx context.Context, orderID string, items []order.LineItemInput) ([]*order.LineItem, error) {
	body, err := json.Marshal(items)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Could not encode the items to save").
			Mark(ierr.ErrSystem)
	}

	resp, err := r.client.Send(ctx, &httpclient.Request{
		Method: http.MethodPut,
		URL:    fmt.Sprintf("%s/orders/%s/items", r.baseURL, url.PathEscape(orderID)),
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	var canonical []*order.LineItem
	if err := json.Unmarshal(resp.Body, &canonical); err != nil {
		return nil, ierr.WithError(err).
			WithHint("The ledger service returned an unreadable response").
			Mark(ierr.ErrHTTPClient)
	}
	return canonical, nil
}
