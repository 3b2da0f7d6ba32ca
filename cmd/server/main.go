package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rxcart/rxcart/internal/api"
	v1 "github.com/rxcart/rxcart/internal/api/v1"
	"github.com/rxcart/rxcart/internal/config"
	"github.com/rxcart/rxcart/internal/domain/catalog"
	"github.com/rxcart/rxcart/internal/domain/order"
	"github.com/rxcart/rxcart/internal/httpclient"
	"github.com/rxcart/rxcart/internal/logger"
	"github.com/rxcart/rxcart/internal/pubsub"
	"github.com/rxcart/rxcart/internal/pubsub/memory"
	"github.com/rxcart/rxcart/internal/repository"
	"github.com/rxcart/rxcart/internal/service"
	"github.com/rxcart/rxcart/internal/validator"
	"go.uber.org/fx"

	validatorv10 "github.com/go-playground/validator/v10"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			newLogger,

			// HTTP client for the backend ledger
			newHTTPClient,

			// PubSub
			memory.NewPubSub,
			providePublisher,

			// Repositories
			repository.NewCatalogRepository,
			repository.NewOrderRepository,

			// Services
			service.NewPricingService,
			newStockService,
			newCommitService,
			newDraftService,
			service.NewCatalogSearchService,

			// Handlers
			v1.NewDraftHandler,
			v1.NewCatalogHandler,
			newRouter,
		),
		fx.Invoke(initValidator),
		fx.Invoke(startServer),
	)

	app.Run()
}

// initValidator forces construction of the shared request validator before
// any request is served
func initValidator(_ *validatorv10.Validate) {}

func newLogger(cfg *config.Configuration) (*logger.Logger, error) {
	return logger.NewLogger(cfg.Logging.Level)
}

func newHTTPClient(cfg *config.Configuration) httpclient.Client {
	return httpclient.NewDefaultClient(cfg.Backend.Timeout)
}

func providePublisher(ps pubsub.PubSub) pubsub.Publisher {
	return ps
}

func newStockService(catalogRepo catalog.Repository, publisher pubsub.Publisher, log *logger.Logger) service.StockService {
	return service.NewStockService(catalogRepo, publisher, log)
}

func newCommitService(orderRepo order.Repository, pricingService service.PricingService, log *logger.Logger) service.CommitService {
	return service.NewCommitService(orderRepo, pricingService, log)
}

func newDraftService(
	cfg *config.Configuration,
	log *logger.Logger,
	catalogRepo catalog.Repository,
	orderRepo order.Repository,
	publisher pubsub.Publisher,
	pricingService service.PricingService,
	stockService service.StockService,
	commitService service.CommitService,
) (service.DraftService, error) {
	return service.NewDraftService(service.ServiceParams{
		Logger:      log,
		Config:      cfg,
		CatalogRepo: catalogRepo,
		OrderRepo:   orderRepo,
		Publisher:   publisher,
	}, pricingService, stockService, commitService)
}

func newRouter(draftHandler *v1.DraftHandler, catalogHandler *v1.CatalogHandler) *gin.Engine {
	return api.NewRouter(api.Handlers{
		Draft:   draftHandler,
		Catalog: catalogHandler,
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	router *gin.Engine,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := router.Run(cfg.Server.Address); err != nil {
					log.Fatalf("failed to start server: %v", err)
				}
			}()
			log.Infow("server started", "address", cfg.Server.Address)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("server stopping")
			return nil
		},
	})
}
