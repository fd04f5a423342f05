package logs

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/repository"
)

// Page is one newest-first slice of the operation log.
type Page struct {
	Entries    []models.LogEntry `json:"entries"`
	NextCursor string            `json:"nextCursor,omitempty"`
	// HasMore is true whenever the page came back full, so a final page that
	// fills pageSize exactly is followed by one empty fetch.
	HasMore bool `json:"hasMore"`
}

// Paginator serves cursor pages over the log collection.
type Paginator struct {
	store       repository.LogStore
	defaultSize int
	maxSize     int
	logger      *zap.Logger
}

// NewPaginator builds a paginator. Non-positive sizes fall back to 20 and 100.
func NewPaginator(store repository.LogStore, defaultSize, maxSize int, logger *zap.Logger) *Paginator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxSize <= 0 {
		maxSize = 100
	}
	if defaultSize <= 0 || defaultSize > maxSize {
		defaultSize = min(20, maxSize)
	}
	return &Paginator{store: store, defaultSize: defaultSize, maxSize: maxSize, logger: logger}
}

// DefaultPageSize is used when a caller does not ask for a size.
func (p *Paginator) DefaultPageSize() int { return p.defaultSize }

// FetchLogPage returns up to pageSize entries strictly after cursor. An empty
// cursor starts from the newest entry.
func (p *Paginator) FetchLogPage(ctx context.Context, cursor string, pageSize int) (Page, error) {
	if pageSize <= 0 || pageSize > p.maxSize {
		return Page{}, models.NewValidationError("pageSize", "Must be between 1 and "+strconv.Itoa(p.maxSize))
	}

	var after *models.LogCursor
	if c := strings.TrimSpace(cursor); c != "" {
		decoded, err := DecodeCursor(c)
		if err != nil {
			return Page{}, err
		}
		after = &decoded
	}

	entries, err := p.store.QueryLogs(ctx, after, pageSize)
	if err != nil {
		return Page{}, fmt.Errorf("fetch log page: %w", err)
	}

	page := Page{Entries: entries, HasMore: len(entries) == pageSize}
	if page.Entries == nil {
		page.Entries = []models.LogEntry{}
	}
	if n := len(entries); n > 0 {
		page.NextCursor = EncodeCursor(models.CursorOf(entries[n-1]))
	}

	p.logger.Debug("log page served",
		zap.Int("size", len(entries)),
		zap.Bool("has_more", page.HasMore),
		zap.Bool("first_page", after == nil))
	return page, nil
}

// GetEntry loads one log entry by id.
func (p *Paginator) GetEntry(ctx context.Context, id string) (models.LogEntry, error) {
	if strings.TrimSpace(id) == "" {
		return models.LogEntry{}, models.NewValidationError("id", "This field is required")
	}
	entry, err := p.store.GetLog(ctx, id)
	if err != nil {
		return models.LogEntry{}, fmt.Errorf("get log entry: %w", err)
	}
	return entry, nil
}
