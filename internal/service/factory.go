package service

import (
	"github.com/rxcart/rxcart/internal/config"
	"github.com/rxcart/rxcart/internal/domain/catalog"
	"github.com/rxcart/rxcart/internal/domain/order"
	"github.com/rxcart/rxcart/internal/logger"
	"github.com/rxcart/rxcart/internal/pubsub"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Repositories
	CatalogRepo catalog.Repository
	OrderRepo   order.Repository

	// Eventing
	Publisher pubsub.Publisher
}
