package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rxcart/rxcart/internal/logger"
	"github.com/rxcart/rxcart/internal/service"
)

type CatalogHandler struct {
	searchService service.CatalogSearchService
	logger        *logger.Logger
}

func NewCatalogHandler(searchService service.CatalogSearchService, logger *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		searchService: searchService,
		logger:        logger,
	}
}

// Search runs a debounced catalog lookup. Rapid successive calls supersede
// each other; a superseded call returns its generation with a warning instead
// of stale entries.
func (h *CatalogHandler) Search(c *gin.Context) {
	query := c.Query("q")

	result, ok := h.searchService.SearchAndWait(c.Request.Context(), query)
	if !ok {
		result.Warning = "superseded by a newer search"
	}

	c.JSON(http.StatusOK, result)
}
