package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rxcart/rxcart/internal/api/dto"
	ierr "github.com/rxcart/rxcart/internal/errors"
	"github.com/rxcart/rxcart/internal/logger"
	"github.com/rxcart/rxcart/internal/service"
)

type DraftHandler struct {
	draftService service.DraftService
	logger       *logger.Logger
}

func NewDraftHandler(draftService service.DraftService, logger *logger.Logger) *DraftHandler {
	return &DraftHandler{
		draftService: draftService,
		logger:       logger,
	}
}

// OpenDraft opens an editing session for an order or walk-in bill
func (h *DraftHandler) OpenDraft(c *gin.Context) {
	var req dto.OpenDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.draftService.Open(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetDraft returns the current draft view with its running totals
func (h *DraftHandler) GetDraft(c *gin.Context) {
	resp, err := h.draftService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CloseDraft discards an editing session
func (h *DraftHandler) CloseDraft(c *gin.Context) {
	if err := h.draftService.Close(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddItem appends a blank, unselected row to the draft
func (h *DraftHandler) AddItem(c *gin.Context) {
	resp, err := h.draftService.AddBlankItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// SelectEntry binds a row to a catalog entry chosen from search results
func (h *DraftHandler) SelectEntry(c *gin.Context) {
	index, ok := h.itemIndex(c)
	if !ok {
		return
	}

	var req dto.SelectEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.draftService.SelectCatalogEntry(c.Request.Context(), c.Param("id"), index, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ClearSelection reverts a row to the unselected state
func (h *DraftHandler) ClearSelection(c *gin.Context) {
	index, ok := h.itemIndex(c)
	if !ok {
		return
	}

	resp, err := h.draftService.ClearSelection(c.Request.Context(), c.Param("id"), index)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SetQuantity updates a row's quantity
func (h *DraftHandler) SetQuantity(c *gin.Context) {
	index, ok := h.itemIndex(c)
	if !ok {
		return
	}

	var req dto.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.draftService.SetQuantity(c.Request.Context(), c.Param("id"), index, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SetUnitPrice overrides a row's unit price
func (h *DraftHandler) SetUnitPrice(c *gin.Context) {
	index, ok := h.itemIndex(c)
	if !ok {
		return
	}

	var req dto.SetUnitPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.draftService.SetUnitPrice(c.Request.Context(), c.Param("id"), index, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SetFreeText updates dosage, frequency or instructions on a row
func (h *DraftHandler) SetFreeText(c *gin.Context) {
	index, ok := h.itemIndex(c)
	if !ok {
		return
	}

	var req dto.SetFreeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.draftService.SetFreeText(c.Request.Context(), c.Param("id"), index, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RemoveItem drops a row, tombstoning it when it was already persisted
func (h *DraftHandler) RemoveItem(c *gin.Context) {
	index, ok := h.itemIndex(c)
	if !ok {
		return
	}

	resp, err := h.draftService.RemoveItem(c.Request.Context(), c.Param("id"), index)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Quote returns settlement totals with optional discount and cash received
func (h *DraftHandler) Quote(c *gin.Context) {
	var req dto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	breakdown, err := h.draftService.Quote(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

// Commit drains the draft into the backend ledger
func (h *DraftHandler) Commit(c *gin.Context) {
	resp, err := h.draftService.Commit(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	status := http.StatusOK
	if len(resp.FailedDeletes) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, resp)
}

func (h *DraftHandler) itemIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.Error(ierr.NewError("invalid line item index").
			WithHint("The line item position must be a number").
			Mark(ierr.ErrValidation))
		return 0, false
	}
	return index, true
}
