package inventory_test

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/repository/memory"
	"github.com/mamadbah2/stockledger/internal/scheduler"
	"github.com/mamadbah2/stockledger/internal/server/handlers"
	"github.com/mamadbah2/stockledger/internal/server/router"
	"github.com/mamadbah2/stockledger/internal/service/auth"
	"github.com/mamadbah2/stockledger/internal/service/invoice"
	"github.com/mamadbah2/stockledger/internal/service/ledger"
	"github.com/mamadbah2/stockledger/internal/service/logs"
	"github.com/mamadbah2/stockledger/internal/service/warehouse"
	"github.com/mamadbah2/stockledger/pkg/clients/inventory"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	store := memory.NewRepository()
	view := warehouse.NewService(store, nil)
	h := handlers.Handlers{
		Auth: handlers.NewAuthHandler(auth.NewService(config.AuthConfig{
			Users:     map[string]string{"user1": string(hash)},
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
		}, nil), nil),
		Stock:     handlers.NewStockHandler(ledger.NewService(store, nil), view, nil),
		Logs:      handlers.NewLogsHandler(logs.NewPaginator(store, 2, 10, nil), invoice.NewFormatter(config.InvoiceConfig{}), nil),
		Warehouse: handlers.NewWarehouseHandler(view, scheduler.NewWatcher(view, "@every 1h", nil), nil),
	}

	srv := httptest.NewServer(router.New(h, router.Options{}, nil))
	t.Cleanup(srv.Close)
	return srv
}

func loggedIn(t *testing.T) *inventory.Client {
	t.Helper()
	c := inventory.NewClient(newServer(t).URL, 5*time.Second)
	if _, err := c.Login(context.Background(), "user1", "s3cret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	return c
}

func addChange(qty int64, party string) ledger.StockChange {
	return ledger.StockChange{
		ItemID:    "Soap",
		BrandID:   "Lux",
		Operation: models.OperationAdd,
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString("2.50"),
		PartyName: party,
	}
}

func TestClient_loginRejected(t *testing.T) {
	c := inventory.NewClient(newServer(t).URL, 5*time.Second)

	_, err := c.Login(context.Background(), "user1", "nope")
	var apiErr *inventory.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 401 {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
}

func TestClient_stockAndLogs(t *testing.T) {
	c := loggedIn(t)
	ctx := context.Background()

	if _, err := c.RegisterItemBrand(ctx, ledger.Registration{ItemID: "Soap", BrandID: "Lux", InitialQuantity: 10}); err != nil {
		t.Fatalf("register: %v", err)
	}

	var last handlers.ChangeResponse
	for i := 1; i <= 5; i++ {
		res, err := c.ApplyStockChange(ctx, addChange(int64(i), "Acme"))
		if err != nil {
			t.Fatalf("change %d: %v", i, err)
		}
		last = res
	}
	if last.Stock.Quantity != 25 {
		t.Errorf("quantity = %d, want 25", last.Stock.Quantity)
	}
	if last.Entry.UserID != "user1" {
		t.Errorf("user = %q, want user1", last.Entry.UserID)
	}

	rec, err := c.GetStock(ctx, "Soap", "Lux")
	if err != nil || rec.Quantity != 25 {
		t.Fatalf("get stock = %+v, %v", rec, err)
	}

	remove := addChange(1000, "Acme")
	remove.Operation = models.OperationRemove
	if _, err := c.ApplyStockChange(ctx, remove); !errors.Is(err, models.ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock, got %v", err)
	}

	page, err := c.FetchLogPage(ctx, "", 0)
	if err != nil {
		t.Fatalf("fetch page: %v", err)
	}
	if len(page.Entries) != 2 || !page.HasMore {
		t.Errorf("default page = %d entries hasMore=%v, want 2 and true", len(page.Entries), page.HasMore)
	}

	all, err := c.AllLogs(ctx, 2)
	if err != nil {
		t.Fatalf("all logs: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("got %d entries, want 5", len(all))
	}
	if all[0].ID != last.Entry.ID || all[0].Quantity != 5 {
		t.Errorf("newest entry = %+v, want the last change", all[0])
	}

	pdf, name, err := c.DownloadInvoice(ctx, last.Entry.ID)
	if err != nil {
		t.Fatalf("download invoice: %v", err)
	}
	if name != "Acme_bill.pdf" || !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Errorf("invoice = %q (%d bytes)", name, len(pdf))
	}

	rows, err := c.Warehouse(ctx, models.StockFilter{BrandID: "Lux"})
	if err != nil || len(rows) != 1 {
		t.Fatalf("warehouse = %+v, %v", rows, err)
	}

	for _, want := range []bool{true, false} {
		removed, err := c.RemoveStockRecord(ctx, "Soap", "Lux")
		if err != nil || removed != want {
			t.Errorf("remove = %v, %v; want %v", removed, err, want)
		}
	}
	if _, err := c.GetStock(ctx, "Soap", "Lux"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound after removal, got %v", err)
	}
}

func TestClient_validationFields(t *testing.T) {
	c := loggedIn(t)

	_, err := c.ApplyStockChange(context.Background(), ledger.StockChange{ItemID: "Soap"})
	var apiErr *inventory.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	for _, field := range []string{"brandId", "quantity", "unitPrice", "partyName"} {
		if _, ok := apiErr.Fields[field]; !ok {
			t.Errorf("fields %v missing %s", apiErr.Fields, field)
		}
	}
}
