package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/repository"
	pkgvalidator "github.com/mamadbah2/stockledger/pkg/validator"
)

// Outcome labels reported to Metrics.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

const defaultTimeout = 10 * time.Second

// StockChange is one add/remove transaction requested by a user.
type StockChange struct {
	ItemID    string           `json:"itemId" validate:"notblank"`
	BrandID   string           `json:"brandId" validate:"notblank"`
	Operation models.Operation `json:"operation" validate:"oneof=add remove"`
	Quantity  int64            `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal  `json:"unitPrice"`
	PartyName string           `json:"partyName" validate:"notblank"`
	UserID    string           `json:"userId" validate:"notblank"`
}

// ChangeResult is the state after a successful StockChange.
type ChangeResult struct {
	Stock models.StockRecord `json:"stock"`
	Entry models.LogEntry    `json:"entry"`
}

// Registration creates an item/brand pair with an opening quantity.
type Registration struct {
	ItemID          string `json:"itemId" validate:"notblank"`
	BrandID         string `json:"brandId" validate:"notblank"`
	InitialQuantity int64  `json:"initialQuantity" validate:"gt=0"`
	ItemName        string `json:"itemName,omitempty"`
	BrandName       string `json:"brandName,omitempty"`
}

// Observer receives every log entry once it has been recorded.
type Observer interface {
	EntryRecorded(ctx context.Context, entry models.LogEntry)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, entry models.LogEntry)

// EntryRecorded calls f.
func (f ObserverFunc) EntryRecorded(ctx context.Context, entry models.LogEntry) { f(ctx, entry) }

// Metrics counts stock change outcomes.
type Metrics interface {
	ObserveStockChange(op models.Operation, outcome string)
}

// Service applies stock transactions against the document store.
type Service struct {
	store     repository.Store
	observers []Observer
	metrics   Metrics
	timeout   time.Duration
	logger    *zap.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithTimeout bounds every ledger operation.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithObserver registers an observer of recorded entries.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithMetrics sets the outcome counter.
func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService wires a ledger service.
func NewService(store repository.Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{store: store, timeout: defaultTimeout, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplyStockChange reads the current record, applies the signed delta and,
// unless the result would be negative, writes the record and appends one log
// entry. The two writes are not atomic: when the append fails after the stock
// write, the error is returned together with the already written record.
func (s *Service) ApplyStockChange(ctx context.Context, change StockChange) (ChangeResult, error) {
	if err := validateChange(change); err != nil {
		s.observe(change.Operation, OutcomeRejected)
		return ChangeResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	item, err := s.store.GetItem(ctx, change.ItemID)
	if err != nil {
		s.observe(change.Operation, outcomeOf(err))
		return ChangeResult{}, fmt.Errorf("resolve item: %w", err)
	}
	brand, err := s.store.GetBrand(ctx, change.BrandID)
	if err != nil {
		s.observe(change.Operation, outcomeOf(err))
		return ChangeResult{}, fmt.Errorf("resolve brand: %w", err)
	}

	current, err := s.store.GetStock(ctx, change.ItemID, change.BrandID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		current = models.StockRecord{ItemID: change.ItemID, BrandID: change.BrandID}
	case err != nil:
		s.observe(change.Operation, OutcomeFailed)
		return ChangeResult{}, fmt.Errorf("read stock: %w", err)
	}

	next := current.Quantity + change.Operation.Sign()*change.Quantity
	if next < 0 {
		s.observe(change.Operation, OutcomeRejected)
		return ChangeResult{}, fmt.Errorf("%w: %s holds %d, cannot remove %d",
			models.ErrInsufficientStock, current.Key(), current.Quantity, change.Quantity)
	}

	updated := models.StockRecord{ItemID: change.ItemID, BrandID: change.BrandID, Quantity: next}
	if err := s.store.PutStock(ctx, updated); err != nil {
		s.observe(change.Operation, OutcomeFailed)
		return ChangeResult{}, fmt.Errorf("write stock: %w", err)
	}

	entry, err := s.store.AppendLog(ctx, models.LogEntry{
		UserID:    change.UserID,
		Operation: change.Operation,
		Item:      item.Name,
		Brand:     brand.Name,
		Quantity:  change.Quantity,
		Price:     change.UnitPrice,
		Amount:    change.UnitPrice.Mul(decimal.NewFromInt(change.Quantity)),
		PartyName: change.PartyName,
	})
	if err != nil {
		s.observe(change.Operation, OutcomeFailed)
		s.logger.Error("stock written without log entry",
			zap.String("key", updated.Key()),
			zap.Int64("previous_quantity", current.Quantity),
			zap.Int64("quantity", updated.Quantity),
			zap.String("user", change.UserID),
			zap.Error(err))
		return ChangeResult{Stock: updated}, fmt.Errorf("append log: %w", err)
	}

	s.observe(change.Operation, OutcomeApplied)
	s.logger.Info("stock change applied",
		zap.String("key", updated.Key()),
		zap.String("operation", string(change.Operation)),
		zap.Int64("delta", change.Quantity),
		zap.Int64("quantity", updated.Quantity),
		zap.String("log_id", entry.ID))

	for _, o := range s.observers {
		o.EntryRecorded(ctx, entry)
	}

	return ChangeResult{Stock: updated, Entry: entry}, nil
}

// RegisterItemBrand creates the item when absent, (re)writes the brand and
// sets the opening quantity. It records no log entry.
func (s *Service) RegisterItemBrand(ctx context.Context, reg Registration) (models.StockRecord, error) {
	if err := pkgvalidator.Validate(&reg); err != nil {
		return models.StockRecord{}, toValidationError(err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	item := models.Item{ID: reg.ItemID, Name: firstNonEmpty(reg.ItemName, reg.ItemID)}
	created, err := s.store.CreateItemIfAbsent(ctx, item)
	if err != nil {
		return models.StockRecord{}, fmt.Errorf("create item: %w", err)
	}

	brand := models.Brand{ID: reg.BrandID, Name: firstNonEmpty(reg.BrandName, reg.BrandID), ItemID: reg.ItemID}
	if err := s.store.PutBrand(ctx, brand); err != nil {
		return models.StockRecord{}, fmt.Errorf("write brand: %w", err)
	}

	rec := models.StockRecord{ItemID: reg.ItemID, BrandID: reg.BrandID, Quantity: reg.InitialQuantity}
	if err := s.store.PutStock(ctx, rec); err != nil {
		return models.StockRecord{}, fmt.Errorf("write stock: %w", err)
	}

	s.logger.Info("item brand registered",
		zap.String("key", rec.Key()),
		zap.Bool("item_created", created),
		zap.Int64("quantity", rec.Quantity))
	return rec, nil
}

// RemoveStockRecord deletes one inventory record. Removing an absent record
// is not an error; removed reports whether anything was deleted.
func (s *Service) RemoveStockRecord(ctx context.Context, itemID, brandID string) (bool, error) {
	fields := map[string]string{}
	if isBlank(itemID) {
		fields["itemId"] = "This field is required"
	}
	if isBlank(brandID) {
		fields["brandId"] = "This field is required"
	}
	if len(fields) > 0 {
		return false, &models.ValidationError{Fields: fields}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	removed, err := s.store.DeleteStock(ctx, itemID, brandID)
	if err != nil {
		return false, fmt.Errorf("delete stock: %w", err)
	}

	s.logger.Info("stock record removed",
		zap.String("key", models.StockKey(itemID, brandID)),
		zap.Bool("existed", removed))
	return removed, nil
}

func (s *Service) observe(op models.Operation, outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveStockChange(op, outcome)
	}
}

func outcomeOf(err error) string {
	if errors.Is(err, models.ErrNotFound) {
		return OutcomeRejected
	}
	return OutcomeFailed
}
