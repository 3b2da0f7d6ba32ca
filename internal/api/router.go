package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/rxcart/rxcart/internal/api/v1"
	"github.com/rxcart/rxcart/internal/rest/middleware"
)

type Handlers struct {
	Draft   *v1.DraftHandler
	Catalog *v1.CatalogHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.ErrorHandler())

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Draft routes
	drafts := router.Group("/drafts")
	{
		drafts.POST("", handlers.Draft.OpenDraft)
		drafts.GET("/:id", handlers.Draft.GetDraft)
		drafts.DELETE("/:id", handlers.Draft.CloseDraft)

		drafts.POST("/:id/items", handlers.Draft.AddItem)
		drafts.PUT("/:id/items/:index/selection", handlers.Draft.SelectEntry)
		drafts.DELETE("/:id/items/:index/selection", handlers.Draft.ClearSelection)
		drafts.PUT("/:id/items/:index/quantity", handlers.Draft.SetQuantity)
		drafts.PUT("/:id/items/:index/price", handlers.Draft.SetUnitPrice)
		drafts.PUT("/:id/items/:index/fields", handlers.Draft.SetFreeText)
		drafts.DELETE("/:id/items/:index", handlers.Draft.RemoveItem)

		drafts.POST("/:id/quote", handlers.Draft.Quote)
		drafts.POST("/:id/commit", handlers.Draft.Commit)
	}

	// Catalog routes
	catalog := router.Group("/catalog")
	{
		catalog.GET("/search", handlers.Catalog.Search)
	}
}
