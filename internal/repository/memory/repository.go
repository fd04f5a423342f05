// Package memory is an in-process Store used by tests and STORE_DRIVER=memory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/repository"
)

var _ repository.Store = (*Repository)(nil)

// Repository keeps every collection in maps guarded by one mutex.
type Repository struct {
	mu     sync.RWMutex
	items  map[string]models.Item
	brands map[string]models.Brand
	stock  map[string]models.StockRecord
	logs   []models.LogEntry
	seq    int64
	now    func() time.Time
}

// Option customizes a Repository.
type Option func(*Repository)

// WithClock overrides the timestamp source for appended log entries.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// NewRepository returns an empty store.
func NewRepository(opts ...Option) *Repository {
	r := &Repository{
		items:  make(map[string]models.Item),
		brands: make(map[string]models.Brand),
		stock:  make(map[string]models.StockRecord),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) GetItem(ctx context.Context, id string) (models.Item, error) {
	if err := ctx.Err(); err != nil {
		return models.Item{}, unavailable(err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return models.Item{}, fmt.Errorf("item %s: %w", id, models.ErrNotFound)
	}
	return item, nil
}

func (r *Repository) CreateItemIfAbsent(ctx context.Context, item models.Item) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, unavailable(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; ok {
		return false, nil
	}
	r.items[item.ID] = item
	return true, nil
}

func (r *Repository) ListItems(ctx context.Context) ([]models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Item, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Repository) GetBrand(ctx context.Context, id string) (models.Brand, error) {
	if err := ctx.Err(); err != nil {
		return models.Brand{}, unavailable(err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	brand, ok := r.brands[id]
	if !ok {
		return models.Brand{}, fmt.Errorf("brand %s: %w", id, models.ErrNotFound)
	}
	return brand, nil
}

func (r *Repository) PutBrand(ctx context.Context, brand models.Brand) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.brands[brand.ID] = brand
	return nil
}

func (r *Repository) ListBrands(ctx context.Context, itemID string) ([]models.Brand, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Brand, 0, len(r.brands))
	for _, brand := range r.brands {
		if itemID != "" && brand.ItemID != itemID {
			continue
		}
		out = append(out, brand)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Repository) GetStock(ctx context.Context, itemID, brandID string) (models.StockRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.StockRecord{}, unavailable(err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := models.StockKey(itemID, brandID)
	rec, ok := r.stock[key]
	if !ok {
		return models.StockRecord{}, fmt.Errorf("inventory %s: %w", key, models.ErrNotFound)
	}
	return rec, nil
}

func (r *Repository) PutStock(ctx context.Context, rec models.StockRecord) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stock[rec.Key()] = rec
	return nil
}

func (r *Repository) DeleteStock(ctx context.Context, itemID, brandID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, unavailable(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := models.StockKey(itemID, brandID)
	_, ok := r.stock[key]
	delete(r.stock, key)
	return ok, nil
}

func (r *Repository) ListStock(ctx context.Context, filter models.StockFilter) ([]models.StockRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.StockRecord, 0, len(r.stock))
	for _, rec := range r.stock {
		if filter.Match(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out, nil
}

func (r *Repository) AppendLog(ctx context.Context, entry models.LogEntry) (models.LogEntry, error) {
	if err := ctx.Err(); err != nil {
		return models.LogEntry{}, unavailable(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	entry.ID = uuid.NewString()
	entry.Seq = r.seq
	entry.Timestamp = r.now().UTC().Truncate(time.Millisecond)
	r.logs = append(r.logs, entry)
	return entry, nil
}

func (r *Repository) GetLog(ctx context.Context, id string) (models.LogEntry, error) {
	if err := ctx.Err(); err != nil {
		return models.LogEntry{}, unavailable(err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.logs {
		if entry.ID == id {
			return entry, nil
		}
	}
	return models.LogEntry{}, fmt.Errorf("log %s: %w", id, models.ErrNotFound)
}

func (r *Repository) QueryLogs(ctx context.Context, after *models.LogCursor, limit int) ([]models.LogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	r.mu.RLock()
	sorted := make([]models.LogEntry, len(r.logs))
	copy(sorted, r.logs)
	r.mu.RUnlock()

	sort.Slice(sorted, func(i, j int) bool { return models.NewerFirst(sorted[i], sorted[j]) })

	out := make([]models.LogEntry, 0, limit)
	for _, entry := range sorted {
		if len(out) == limit {
			break
		}
		if after != nil && !after.Before(entry) {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
}
