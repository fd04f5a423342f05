// Package repository declares the document-store contract shared by the
// MongoDB adapter and the in-memory adapter.
package repository

import (
	"context"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// CatalogStore persists items and brands.
type CatalogStore interface {
	GetItem(ctx context.Context, id string) (models.Item, error)
	// CreateItemIfAbsent inserts the item unless one with the same id exists.
	// It reports whether an insert happened.
	CreateItemIfAbsent(ctx context.Context, item models.Item) (bool, error)
	ListItems(ctx context.Context) ([]models.Item, error)

	GetBrand(ctx context.Context, id string) (models.Brand, error)
	PutBrand(ctx context.Context, brand models.Brand) error
	// ListBrands returns every brand, or only the brands of itemID when it is non-empty.
	ListBrands(ctx context.Context, itemID string) ([]models.Brand, error)
}

// StockStore persists inventory records keyed by "itemId_brandId".
type StockStore interface {
	GetStock(ctx context.Context, itemID, brandID string) (models.StockRecord, error)
	// PutStock replaces the whole record. There is no concurrency token.
	PutStock(ctx context.Context, rec models.StockRecord) error
	// DeleteStock reports whether a record existed.
	DeleteStock(ctx context.Context, itemID, brandID string) (bool, error)
	ListStock(ctx context.Context, filter models.StockFilter) ([]models.StockRecord, error)
}

// LogStore is the append-only operation log.
type LogStore interface {
	// AppendLog assigns ID, Timestamp and Seq and returns the stored entry.
	AppendLog(ctx context.Context, entry models.LogEntry) (models.LogEntry, error)
	GetLog(ctx context.Context, id string) (models.LogEntry, error)
	// QueryLogs returns up to limit entries newest first, strictly after the
	// cursor when one is given.
	QueryLogs(ctx context.Context, after *models.LogCursor, limit int) ([]models.LogEntry, error)
}

// Store is the full set of collections the service needs.
type Store interface {
	CatalogStore
	StockStore
	LogStore
}
