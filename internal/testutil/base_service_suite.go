package testutil

import (
	"context"

	"github.com/rxcart/rxcart/internal/config"
	"github.com/rxcart/rxcart/internal/domain/catalog"
	"github.com/rxcart/rxcart/internal/domain/order"
	"github.com/rxcart/rxcart/internal/logger"
	"github.com/rxcart/rxcart/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds the repository interfaces for testing
type Stores struct {
	CatalogRepo catalog.Repository
	OrderRepo   order.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	pubsub *InMemoryPubSub
	logger *logger.Logger
	config *config.Configuration
}

// SetupSuite initializes shared resources
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()
}

// SetupTest prepares fresh state for each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.logger = logger.NewNop()
	s.config = config.GetDefaultConfig()
	s.pubsub = NewInMemoryPubSub()
	s.stores = Stores{
		CatalogRepo: NewInMemoryCatalogStore(),
		OrderRepo:   NewInMemoryOrderStore(),
	}
}

// TearDownTest cleans up after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.ClearStores()
}

// ClearStores resets all in-memory stores
func (s *BaseServiceTestSuite) ClearStores() {
	if store, ok := s.stores.CatalogRepo.(*InMemoryCatalogStore); ok {
		store.Clear()
	}
	if store, ok := s.stores.OrderRepo.(*InMemoryOrderStore); ok {
		store.Clear()
	}
	if s.pubsub != nil {
		s.pubsub.Clear()
	}
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetPubSub() *InMemoryPubSub {
	return s.pubsub
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}
