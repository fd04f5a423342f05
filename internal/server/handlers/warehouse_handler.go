package handlers

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/scheduler"
	"github.com/mamadbah2/stockledger/internal/service/warehouse"
)

// Warehouse lists catalog and stock rows.
type Warehouse interface {
	List(ctx context.Context, filter models.StockFilter) ([]warehouse.Row, error)
	Items(ctx context.Context) ([]models.Item, error)
	Brands(ctx context.Context, itemID string) ([]models.Brand, error)
}

// Watcher pushes warehouse snapshots as they change.
type Watcher interface {
	Subscribe(fn func(warehouse.Snapshot)) *scheduler.Subscription
}

// WarehouseHandler serves catalog pickers, the stock table and its live stream.
type WarehouseHandler struct {
	view    Warehouse
	watcher Watcher
	logger  *zap.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewWarehouseHandler constructs the warehouse HTTP adapter.
func NewWarehouseHandler(view Warehouse, watcher Watcher, logger *zap.Logger) *WarehouseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WarehouseHandler{view: view, watcher: watcher, logger: logger, done: make(chan struct{})}
}

// Close ends every open stream. It is meant for http.Server.RegisterOnShutdown.
func (h *WarehouseHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Items lists every item.
func (h *WarehouseHandler) Items(c *gin.Context) {
	items, err := h.view.Items(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Brands lists brands, optionally only those of ?itemId=.
func (h *WarehouseHandler) Brands(c *gin.Context) {
	brands, err := h.view.Brands(c.Request.Context(), c.Query("itemId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, brands)
}

// List returns stock rows filtered by ?itemId= or ?brandId=.
func (h *WarehouseHandler) List(c *gin.Context) {
	filter := models.StockFilter{ItemID: c.Query("itemId"), BrandID: c.Query("brandId")}

	rows, err := h.view.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Stream sends a "snapshot" server-sent event on every warehouse change until
// the client disconnects or Close is called.
func (h *WarehouseHandler) Stream(c *gin.Context) {
	updates := make(chan warehouse.Snapshot, 1)
	sub := h.watcher.Subscribe(func(s warehouse.Snapshot) {
		// Keep only the newest pending snapshot for slow readers.
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- s:
		default:
		}
	})
	defer sub.Close()

	h.logger.Debug("warehouse stream opened", zap.String("user", CurrentUser(c)))

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-h.done:
			return false
		case snap := <-updates:
			c.SSEvent("snapshot", snap)
			return true
		}
	})

	h.logger.Debug("warehouse stream closed", zap.String("user", CurrentUser(c)))
}
