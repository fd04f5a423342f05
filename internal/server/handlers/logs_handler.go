package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/service/invoice"
	"github.com/mamadbah2/stockledger/internal/service/logs"
)

// LogReader pages through the operation log.
type LogReader interface {
	FetchLogPage(ctx context.Context, cursor string, pageSize int) (logs.Page, error)
	GetEntry(ctx context.Context, id string) (models.LogEntry, error)
	DefaultPageSize() int
}

// InvoiceRenderer writes the PDF invoice of one log entry.
type InvoiceRenderer interface {
	Render(w io.Writer, entry models.LogEntry) error
}

// LogsHandler serves the log pages and invoice downloads.
type LogsHandler struct {
	logs     LogReader
	invoices InvoiceRenderer
	logger   *zap.Logger
}

// NewLogsHandler constructs the logs HTTP adapter.
func NewLogsHandler(reader LogReader, invoices InvoiceRenderer, logger *zap.Logger) *LogsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogsHandler{logs: reader, invoices: invoices, logger: logger}
}

// InvoicePath is the download path of the invoice for log entry id.
func InvoicePath(id string) string {
	return "/api/v1/logs/" + id + "/invoice"
}

// List returns one newest-first page. pageSize defaults to the configured size.
func (h *LogsHandler) List(c *gin.Context) {
	size := h.logs.DefaultPageSize()
	if raw := c.Query("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, h.logger, badRequest("pageSize", "Must be an integer"))
			return
		}
		size = n
	}

	page, err := h.logs.FetchLogPage(c.Request.Context(), c.Query("cursor"), size)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Invoice renders the bill of one log entry as a PDF attachment.
func (h *LogsHandler) Invoice(c *gin.Context) {
	entry, err := h.logs.GetEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := h.invoices.Render(&buf, entry); err != nil {
		writeError(c, h.logger, fmt.Errorf("render invoice %s: %w", entry.ID, err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", invoice.FileName(entry.PartyName)))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
