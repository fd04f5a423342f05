package warehouse

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/repository"
)

// Store is the subset of repository.Store the warehouse view reads.
type Store interface {
	repository.CatalogStore
	repository.StockStore
}

// Row is one inventory record joined with its item and brand names.
type Row struct {
	ID        string `json:"id"`
	ItemID    string `json:"itemId"`
	BrandID   string `json:"brandId"`
	ItemName  string `json:"itemName"`
	BrandName string `json:"brandName"`
	Quantity  int64  `json:"quantity"`
}

// Snapshot is the full state a live warehouse viewer renders.
type Snapshot struct {
	Items []models.Item `json:"items"`
	Rows  []Row         `json:"rows"`
}

// Service exposes read-only warehouse listings.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService wires a warehouse service instance.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// List returns stock rows matching filter. Names fall back to ids when the
// item or brand document is missing.
func (s *Service) List(ctx context.Context, filter models.StockFilter) ([]Row, error) {
	records, err := s.store.ListStock(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}

	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	brands, err := s.store.ListBrands(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}

	return join(records, items, brands), nil
}

// Snapshot loads items and every stock row in one pass.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	records, err := s.store.ListStock(ctx, models.StockFilter{})
	if err != nil {
		return Snapshot{}, fmt.Errorf("list stock: %w", err)
	}
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list items: %w", err)
	}
	brands, err := s.store.ListBrands(ctx, "")
	if err != nil {
		return Snapshot{}, fmt.Errorf("list brands: %w", err)
	}

	return Snapshot{Items: items, Rows: join(records, items, brands)}, nil
}

// Items lists every item for pickers.
func (s *Service) Items(ctx context.Context) ([]models.Item, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// Brands lists brands, only those of itemID when it is set.
func (s *Service) Brands(ctx context.Context, itemID string) ([]models.Brand, error) {
	brands, err := s.store.ListBrands(ctx, strings.TrimSpace(itemID))
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return brands, nil
}

// GetStock reads a single inventory record.
func (s *Service) GetStock(ctx context.Context, itemID, brandID string) (models.StockRecord, error) {
	rec, err := s.store.GetStock(ctx, itemID, brandID)
	if err != nil {
		return models.StockRecord{}, fmt.Errorf("get stock: %w", err)
	}
	return rec, nil
}

func join(records []models.StockRecord, items []models.Item, brands []models.Brand) []Row {
	itemNames := make(map[string]string, len(items))
	for _, item := range items {
		itemNames[item.ID] = item.Name
	}
	brandNames := make(map[string]string, len(brands))
	for _, brand := range brands {
		brandNames[brand.ID] = brand.Name
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Row{
			ID:        rec.Key(),
			ItemID:    rec.ItemID,
			BrandID:   rec.BrandID,
			ItemName:  nameOr(itemNames, rec.ItemID),
			BrandName: nameOr(brandNames, rec.BrandID),
			Quantity:  rec.Quantity,
		})
	}
	return rows
}

func nameOr(names map[string]string, id string) string {
	if name := names[id]; name != "" {
		return name
	}
	return id
}
