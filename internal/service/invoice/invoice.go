package invoice

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/domain/models"
)

const (
	dateLayout = "02 Jan 2006 15:04:05 MST"
	pageWidth  = 210.0
	tableLeft  = 10.0
	tableWidth = 190.0
	rowHeight  = 10.0
)

var (
	brandBlue    = [3]int{25, 118, 210}
	columnStarts = [5]float64{15, 55, 95, 125, 165}
)

// Formatter renders the single-item bill of one ledger transaction.
type Formatter struct {
	company config.InvoiceConfig
}

// NewFormatter builds a formatter printing the given business details.
func NewFormatter(company config.InvoiceConfig) *Formatter {
	if company.Currency == "" {
		company.Currency = "Rs."
	}
	return &Formatter{company: company}
}

// FileName returns "{partyName}_bill.pdf" with path and quote characters replaced.
func FileName(partyName string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', '\'', ':', '*', '?', '<', '>', '|', '\n', '\r':
			return '_'
		}
		return r
	}, strings.TrimSpace(partyName))
	if clean == "" {
		clean = "invoice"
	}
	return clean + "_bill.pdf"
}

// Render writes the PDF for entry to w. Every value printed, including the
// document dates, comes from entry and the configured company.
func (f *Formatter) Render(w io.Writer, entry models.LogEntry) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreator(f.company.CompanyName, true)
	pdf.SetTitle(fmt.Sprintf("%s bill", entry.PartyName), true)
	pdf.SetCreationDate(entry.Timestamp)
	pdf.SetModificationDate(entry.Timestamp)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// header band
	pdf.SetFillColor(brandBlue[0], brandBlue[1], brandBlue[2])
	pdf.Rect(0, 0, pageWidth, 25, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "", 22)
	textCentered(pdf, tr(f.company.CompanyName), pageWidth/2, 15)
	pdf.SetFontSize(11)
	textCentered(pdf, tr(f.company.CompanyAddress), pageWidth/2, 22)
	pdf.SetTextColor(0, 0, 0)

	pdf.SetFontSize(10)
	pdf.Text(10, 32, tr(f.company.TaxID))
	pdf.SetFontSize(16)
	textRight(pdf, "Tax Invoice", 200, 32)

	pdf.SetFontSize(11)
	pdf.Text(10, 42, tr("Party Name: "+entry.PartyName))
	pdf.Text(10, 48, "Date: "+entry.Timestamp.Format(dateLayout))
	pdf.Text(150, 42, tr("User: "+entry.UserID))
	pdf.Text(150, 48, "Operation: "+strings.ToUpper(string(entry.Operation)))

	y := 58.0
	pdf.SetFontSize(12)
	pdf.SetDrawColor(brandBlue[0], brandBlue[1], brandBlue[2])
	pdf.SetLineWidth(0.5)
	tableRow(pdf, y, [5]string{"Item", "Brand", "Qty", "Price", "Amount"})

	y += rowHeight
	pdf.SetFontSize(11)
	tableRow(pdf, y, [5]string{
		tr(entry.Item),
		tr(entry.Brand),
		fmt.Sprintf("%d", entry.Quantity),
		f.money(entry.Price),
		f.money(entry.Amount),
	})

	y += 2 * rowHeight
	pdf.SetFontSize(14)
	pdf.SetTextColor(brandBlue[0], brandBlue[1], brandBlue[2])
	textRight(pdf, "Total Amount: "+f.money(entry.Amount), 200, y)
	pdf.SetTextColor(0, 0, 0)

	y += 15
	pdf.SetFontSize(12)
	textCentered(pdf, "Thank you for your business!", pageWidth/2, y)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render invoice for log %s: %w", entry.ID, err)
	}
	return nil
}

func (f *Formatter) money(d decimal.Decimal) string {
	return f.company.Currency + " " + d.StringFixed(2)
}

func tableRow(pdf *fpdf.Fpdf, y float64, cells [5]string) {
	pdf.Rect(tableLeft, y, tableWidth, rowHeight, "D")
	for i, cell := range cells {
		pdf.Text(columnStarts[i], y+7, cell)
	}
}

func textCentered(pdf *fpdf.Fpdf, s string, x, y float64) {
	pdf.Text(x-pdf.GetStringWidth(s)/2, y, s)
}

func textRight(pdf *fpdf.Fpdf, s string, x, y float64) {
	pdf.Text(x-pdf.GetStringWidth(s), y, s)
}
