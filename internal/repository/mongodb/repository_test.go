package mongodb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

func TestWrap(t *testing.T) {
	if !errors.Is(wrap(mongo.ErrNoDocuments), models.ErrNotFound) {
		t.Error("ErrNoDocuments should map to ErrNotFound")
	}
	if !errors.Is(wrap(fmt.Errorf("find: %w", context.DeadlineExceeded)), models.ErrStoreUnavailable) {
		t.Error("deadline should map to ErrStoreUnavailable")
	}
	other := errors.New("duplicate key")
	if wrap(other) != other {
		t.Error("unrelated errors should pass through")
	}
}

func TestLogDocumentKeepsDecimalPrecision(t *testing.T) {
	in := models.LogEntry{
		Operation: models.OperationAdd,
		Quantity:  3,
		Price:     decimal.RequireFromString("19.99"),
		Amount:    decimal.RequireFromString("59.97"),
		Timestamp: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		Seq:       7,
	}

	doc, err := toLogDocument(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := doc.entry()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Price.Equal(in.Price) || !out.Amount.Equal(in.Amount) {
		t.Errorf("price/amount = %s/%s, want %s/%s", out.Price, out.Amount, in.Price, in.Amount)
	}
}

// newTestRepository connects to MONGODB_TEST_URI and uses a throwaway database.
func newTestRepository(t *testing.T) *MongoDBRepository {
	t.Helper()

	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbName := "stockledger_test_" + uuid.NewString()[:8]
	r, err := NewMongoDBRepository(ctx, uri, dbName, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = r.db.Drop(ctx)
		_ = r.Close(ctx)
	})
	return r
}

func TestIntegration_catalogAndStock(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()

	created, err := r.CreateItemIfAbsent(ctx, models.Item{ID: "Soap", Name: "Soap"})
	if err != nil || !created {
		t.Fatalf("create item = %v, %v", created, err)
	}
	created, err = r.CreateItemIfAbsent(ctx, models.Item{ID: "Soap", Name: "Renamed"})
	if err != nil || created {
		t.Fatalf("second create = %v, %v; want false", created, err)
	}
	item, err := r.GetItem(ctx, "Soap")
	if err != nil || item.Name != "Soap" {
		t.Fatalf("item = %+v, %v; name must not be overwritten", item, err)
	}

	if err := r.PutBrand(ctx, models.Brand{ID: "Lux", Name: "Lux", ItemID: "Soap"}); err != nil {
		t.Fatalf("put brand: %v", err)
	}
	brands, err := r.ListBrands(ctx, "Soap")
	if err != nil || len(brands) != 1 {
		t.Fatalf("brands = %+v, %v", brands, err)
	}

	if _, err := r.GetStock(ctx, "Soap", "Lux"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := r.PutStock(ctx, models.StockRecord{ItemID: "Soap", BrandID: "Lux", Quantity: 100}); err != nil {
		t.Fatalf("put stock: %v", err)
	}
	if err := r.PutStock(ctx, models.StockRecord{ItemID: "Soap", BrandID: "Lux", Quantity: 120}); err != nil {
		t.Fatalf("overwrite stock: %v", err)
	}
	rec, err := r.GetStock(ctx, "Soap", "Lux")
	if err != nil || rec.Quantity != 120 {
		t.Fatalf("stock = %+v, %v", rec, err)
	}

	rows, err := r.ListStock(ctx, models.StockFilter{BrandID: "Lux"})
	if err != nil || len(rows) != 1 {
		t.Fatalf("list stock = %+v, %v", rows, err)
	}

	for _, want := range []bool{true, false} {
		removed, err := r.DeleteStock(ctx, "Soap", "Lux")
		if err != nil || removed != want {
			t.Fatalf("delete = %v, %v; want %v", removed, err, want)
		}
	}
}

func TestIntegration_logsNewestFirst(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()

	fixed := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	for i := 1; i <= 5; i++ {
		_, err := r.AppendLog(ctx, models.LogEntry{
			UserID:    "user1",
			Operation: models.OperationAdd,
			Quantity:  int64(i),
			Price:     decimal.NewFromInt(2),
			Amount:    decimal.NewFromInt(int64(2 * i)),
			PartyName: "Acme",
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	first, err := r.QueryLogs(ctx, nil, 3)
	if err != nil || len(first) != 3 {
		t.Fatalf("first page = %d, %v", len(first), err)
	}
	if first[0].Quantity != 5 || first[2].Quantity != 3 {
		t.Errorf("same-timestamp entries not ordered by sequence: %d..%d", first[0].Quantity, first[2].Quantity)
	}

	cursor := models.CursorOf(first[2])
	rest, err := r.QueryLogs(ctx, &cursor, 3)
	if err != nil || len(rest) != 2 {
		t.Fatalf("second page = %d, %v", len(rest), err)
	}
	if rest[0].Quantity != 2 || rest[1].Quantity != 1 {
		t.Errorf("second page = %d, %d; want 2, 1", rest[0].Quantity, rest[1].Quantity)
	}

	got, err := r.GetLog(ctx, first[0].ID)
	if err != nil || !got.Amount.Equal(decimal.NewFromInt(10)) {
		t.Errorf("get log = %+v, %v", got, err)
	}
	if _, err := r.GetLog(ctx, "not-an-object-id"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound for malformed id, got %v", err)
	}
}
