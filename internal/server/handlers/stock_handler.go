package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/service/ledger"
)

// Ledger is the write side used by StockHandler.
type Ledger interface {
	ApplyStockChange(ctx context.Context, change ledger.StockChange) (ledger.ChangeResult, error)
	RegisterItemBrand(ctx context.Context, reg ledger.Registration) (models.StockRecord, error)
	RemoveStockRecord(ctx context.Context, itemID, brandID string) (bool, error)
}

// StockReader reads single stock records.
type StockReader interface {
	GetStock(ctx context.Context, itemID, brandID string) (models.StockRecord, error)
}

// StockHandler exposes stock changes, registration and removal.
type StockHandler struct {
	ledger Ledger
	reader StockReader
	logger *zap.Logger
}

// NewStockHandler constructs the stock HTTP adapter.
func NewStockHandler(ledger Ledger, reader StockReader, logger *zap.Logger) *StockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockHandler{ledger: ledger, reader: reader, logger: logger}
}

// ChangeResponse is returned by ApplyChange.
type ChangeResponse struct {
	ledger.ChangeResult
	InvoiceURL string `json:"invoiceUrl"`
}

// ApplyChange adds or removes stock on behalf of the authenticated user.
func (h *StockHandler) ApplyChange(c *gin.Context) {
	var change ledger.StockChange
	if err := c.ShouldBindJSON(&change); err != nil {
		writeError(c, h.logger, badRequest("body", "Invalid JSON body"))
		return
	}
	change.UserID = CurrentUser(c)

	result, err := h.ledger.ApplyStockChange(c.Request.Context(), change)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, ChangeResponse{
		ChangeResult: result,
		InvoiceURL:   InvoicePath(result.Entry.ID),
	})
}

// Register creates an item/brand pair with its opening quantity.
func (h *StockHandler) Register(c *gin.Context) {
	var reg ledger.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		writeError(c, h.logger, badRequest("body", "Invalid JSON body"))
		return
	}

	record, err := h.ledger.RegisterItemBrand(c.Request.Context(), reg)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// Get returns one stock record.
func (h *StockHandler) Get(c *gin.Context) {
	record, err := h.reader.GetStock(c.Request.Context(), c.Param("itemId"), c.Param("brandId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// Delete removes one stock record. Removing an absent record succeeds with
// removed=false.
func (h *StockHandler) Delete(c *gin.Context) {
	removed, err := h.ledger.RemoveStockRecord(c.Request.Context(), c.Param("itemId"), c.Param("brandId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
