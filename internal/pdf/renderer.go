// Package pdf renders an aggregated invoice document into a PDF byte
// stream. Labels come from the i18n tables; the layout is a fixed A4
// portrait page with a session table and a payment details block.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/jodli/Vereinsknete/internal/i18n"
	"github.com/jodli/Vereinsknete/internal/models"
)

const invoiceNumberToken = "{invoice_number}"

// Render produces the invoice PDF for the given language.
func Render(doc *models.InvoiceDocument, lang i18n.Language) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Invoice %s", doc.InvoiceNumber), true)
	pdf.AddPage()

	label := func(key string) string {
		return i18n.Translate(lang, "invoice", key)
	}

	// Header
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(40, 10, tr(fmt.Sprintf("%s #%s", label("invoice"), doc.InvoiceNumber)))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(40, 6, tr(fmt.Sprintf("%s: %s", label("date"), FormatDate(doc.Date, lang))))
	pdf.Ln(12)

	// Sender
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 6, tr(label("from")+":"))
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 11)
	writeLines(pdf, tr, doc.UserProfile.Name)
	writeLines(pdf, tr, doc.UserProfile.Address)
	if doc.UserProfile.TaxID != nil {
		writeLines(pdf, tr, fmt.Sprintf("%s: %s", label("tax_id"), *doc.UserProfile.TaxID))
	}
	pdf.Ln(6)

	// Recipient
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 6, tr(label("to")+":"))
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 11)
	writeLines(pdf, tr, doc.Client.Name)
	writeLines(pdf, tr, doc.Client.Address)
	if doc.Client.ContactPerson != nil {
		writeLines(pdf, tr, fmt.Sprintf("%s: %s", label("contact"), *doc.Client.ContactPerson))
	}
	pdf.Ln(8)

	// Session table
	widths := []float64{62, 28, 20, 20, 20, 30}
	headers := []string{
		label("service"), label("date"), label("start"),
		label("end"), label("hours"), label("amount"),
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(220, 220, 220)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, item := range doc.Items {
		pdf.CellFormat(widths[0], 6, tr(item.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, FormatDate(item.Date, lang), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, item.StartTime, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, item.EndTime, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", item.DurationHours), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, tr(fmt.Sprintf("€%.2f", item.Amount)), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	// Totals
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(130, 6, tr(label("total_hours")+":"))
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(50, 6, fmt.Sprintf("%.2f", doc.TotalHours), "", 0, "R", false, 0, "")
	pdf.Ln(7)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(130, 6, tr(label("total_amount")+":"))
	pdf.CellFormat(50, 6, tr(fmt.Sprintf("€%.2f", doc.TotalAmount)), "", 0, "R", false, 0, "")
	pdf.Ln(12)

	// Payment details
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 6, tr(label("payment_details")+":"))
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 11)
	for _, line := range PaymentLines(doc.UserProfile.BankDetails, doc.InvoiceNumber, lang) {
		writeLines(pdf, tr, line)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatDate localizes an ISO date: German uses DD.MM.YYYY, every other
// language keeps the ISO form. Unparseable input is passed through.
func FormatDate(isoDate string, lang i18n.Language) string {
	if lang != i18n.German {
		return isoDate
	}
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return isoDate
	}
	return t.Format("02.01.2006")
}

// PaymentLines resolves the payment details paragraph. The literal
// {invoice_number} token in the profile's bank details is replaced with
// the generated number; the text is then split into one line per
// newline-separated segment. A missing bank-details field yields the
// localized fallback message.
func PaymentLines(bankDetails *string, invoiceNumber string, lang i18n.Language) []string {
	if bankDetails == nil || strings.TrimSpace(*bankDetails) == "" {
		return []string{i18n.Translate(lang, "invoice", "no_payment_details")}
	}
	text := strings.ReplaceAll(*bankDetails, invoiceNumberToken, invoiceNumber)
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimRight(l, "\r"); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func writeLines(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	for _, line := range strings.Split(text, "\n") {
		pdf.Cell(40, 6, tr(line))
		pdf.Ln(6)
	}
}
