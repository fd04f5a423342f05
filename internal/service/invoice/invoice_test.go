package invoice

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/domain/models"
)

func sampleEntry() models.LogEntry {
	return models.LogEntry{
		ID:        "65f0c0ffee",
		UserID:    "user1",
		Operation: models.OperationAdd,
		Item:      "Soap",
		Brand:     "Lux",
		Quantity:  20,
		Price:     decimal.RequireFromString("10"),
		Amount:    decimal.RequireFromString("200"),
		PartyName: "Acmé Traders",
		Timestamp: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestRender_producesPDF(t *testing.T) {
	f := NewFormatter(config.InvoiceConfig{CompanyName: "Mamta Enterprises", CompanyAddress: "Samastipur, Bihar", TaxID: "GSTIN: X"})

	var buf bytes.Buffer
	if err := f.Render(&buf, sampleEntry()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header: %q", buf.Bytes()[:min(16, buf.Len())])
	}
	if !bytes.Contains(buf.Bytes(), []byte("%%EOF")) {
		t.Error("output has no PDF trailer")
	}
}

func TestMoney_defaultCurrency(t *testing.T) {
	f := NewFormatter(config.InvoiceConfig{})
	if got := f.money(decimal.RequireFromString("12.5")); got != "Rs. 12.50" {
		t.Errorf("money = %q, want %q", got, "Rs. 12.50")
	}
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"Acme":      "Acme_bill.pdf",
		" Acme Co ": "Acme Co_bill.pdf",
		"a/b\\c":    "a_b_c_bill.pdf",
		`say "hi"`:  "say _hi__bill.pdf",
		"":          "invoice_bill.pdf",
	}
	for in, want := range tests {
		if got := FileName(in); got != want {
			t.Errorf("FileName(%q) = %q, want %q", in, got, want)
		}
	}
}
