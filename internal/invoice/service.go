// Package invoice implements the invoice generation and numbering
// engine: session aggregation, gap-free per-year sequence numbers,
// PDF rendering and the invoice lifecycle.
package invoice

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jodli/Vereinsknete/internal/apperr"
	"github.com/jodli/Vereinsknete/internal/i18n"
	"github.com/jodli/Vereinsknete/internal/models"
	"github.com/jodli/Vereinsknete/internal/pdf"
	"github.com/jodli/Vereinsknete/internal/profile"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	maxRangeDays = 365
	dueDays      = 30
)

// nowFunc is swapped out in tests; invoices are always dated and
// numbered by issuance time, never by the billed period.
var nowFunc = time.Now

// Generate aggregates the client's sessions in the requested range into
// an invoice, assigns the next sequence number for the current year,
// renders and stores the PDF and persists the invoice row. The sequence
// read and the row insert run in one transaction so concurrent
// generations cannot produce duplicate or skipped numbers.
func Generate(db *gorm.DB, lg *zap.SugaredLogger, invoiceDir string, req models.InvoiceRequest) ([]byte, int, string, error) {
	if req.ClientID <= 0 {
		lg.Warnw("invoice generation with invalid client ID", "client_id", req.ClientID)
		return nil, 0, "", apperr.BadRequest("invalid client ID")
	}
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, 0, "", apperr.Validation("start date must be in YYYY-MM-DD format")
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, 0, "", apperr.Validation("end date must be in YYYY-MM-DD format")
	}
	if !endDate.After(startDate) {
		lg.Warnw("invoice generation with invalid date range", "start", req.StartDate, "end", req.EndDate)
		return nil, 0, "", apperr.Validation("end date must be after start date")
	}
	if days := int(endDate.Sub(startDate).Hours() / 24); days > maxRangeDays {
		lg.Warnw("invoice generation with too long date range", "days", days)
		return nil, 0, "", apperr.Validation("date range cannot exceed 1 year")
	}

	lg.Infow("generating invoice",
		"client_id", req.ClientID, "start", req.StartDate, "end", req.EndDate)

	operator, err := profile.Get(db, lg)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, 0, "", apperr.NotFound("user profile not found - please create a user profile first")
		}
		return nil, 0, "", err
	}

	var clientData models.Client
	if err := db.First(&clientData, "id = ?", req.ClientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, "", apperr.NotFound("client not found")
		}
		return nil, 0, "", apperr.Internal("failed to fetch client", err)
	}

	var sessions []models.Session
	if err := db.Where("client_id = ? AND date >= ? AND date <= ?",
		req.ClientID, req.StartDate, req.EndDate).
		Order("date asc, start_time asc").
		Find(&sessions).Error; err != nil {
		return nil, 0, "", apperr.Internal("failed to fetch sessions", err)
	}
	if len(sessions) == 0 {
		lg.Warnw("no sessions in invoice range",
			"client_id", req.ClientID, "start", req.StartDate, "end", req.EndDate)
		return nil, 0, "", apperr.Validation("no sessions found in the specified date range")
	}

	if clientData.DefaultHourlyRate <= 0 {
		lg.Errorw("client has invalid hourly rate",
			"client_id", clientData.ID, "rate", clientData.DefaultHourlyRate)
		return nil, 0, "", apperr.Validation("client has invalid hourly rate")
	}

	items, totalHours, totalAmount := buildLineItems(sessions, clientData.DefaultHourlyRate)
	if totalAmount <= 0 {
		lg.Warnw("invoice would have non-positive amount", "amount", totalAmount)
		return nil, 0, "", apperr.Validation("invoice amount must be positive")
	}

	now := nowFunc().UTC()
	lang := i18n.German
	if req.Language != nil {
		lang = i18n.Parse(*req.Language)
	}

	var (
		pdfBytes      []byte
		invoiceID     int
		invoiceNumber string
	)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		seq, err := nextSequenceNumber(tx, now.Year())
		if err != nil {
			return err
		}
		invoiceNumber = fmt.Sprintf("%d-%04d", now.Year(), seq)
		lg.Infow("assigned invoice number", "invoice_number", invoiceNumber)

		doc := models.InvoiceDocument{
			InvoiceNumber: invoiceNumber,
			Date:          now.Format(dateLayout),
			UserProfile:   *operator,
			Client:        clientData,
			Items:         items,
			TotalHours:    totalHours,
			TotalAmount:   totalAmount,
		}
		pdfBytes, err = pdf.Render(&doc, lang)
		if err != nil {
			return apperr.Internal("failed to generate PDF", err)
		}

		// The artifact is written before the insert: a failed insert
		// leaves an orphaned file, never a row without a file.
		if err := os.MkdirAll(invoiceDir, 0o755); err != nil {
			return apperr.Internal("failed to create invoice directory", err)
		}
		pdfPath := ArtifactPath(invoiceDir, invoiceNumber)
		if err := os.WriteFile(pdfPath, pdfBytes, 0o644); err != nil {
			return apperr.Internal("failed to save PDF file", err)
		}

		dueDate := now.AddDate(0, 0, dueDays).Format(dateLayout)
		inv := models.Invoice{
			InvoiceNumber:  invoiceNumber,
			ClientID:       req.ClientID,
			Date:           now.Format(dateLayout),
			TotalAmount:    totalAmount,
			PDFPath:        pdfPath,
			Status:         models.InvoiceStatusCreated,
			DueDate:        &dueDate,
			Year:           now.Year(),
			SequenceNumber: seq,
		}
		if err := tx.Create(&inv).Error; err != nil {
			return apperr.Internal("failed to save invoice", err)
		}
		invoiceID = inv.ID
		return nil
	})
	if txErr != nil {
		return nil, 0, "", txErr
	}

	lg.Infow("invoice generated",
		"invoice_id", invoiceID, "invoice_number", invoiceNumber,
		"total_hours", totalHours, "total_amount", totalAmount)
	return pdfBytes, invoiceID, invoiceNumber, nil
}

// nextSequenceNumber returns 1 + max(sequence_number) for the year,
// treating an empty year as zero. Must run inside the transaction that
// inserts the new row.
func nextSequenceNumber(tx *gorm.DB, year int) (int, error) {
	var maxSeq int
	err := tx.Model(&models.Invoice{}).
		Where("year = ?", year).
		Select("COALESCE(MAX(sequence_number), 0)").
		Scan(&maxSeq).Error
	if err != nil {
		return 0, apperr.Internal("failed to get max sequence number", err)
	}
	return maxSeq + 1, nil
}

// buildLineItems converts sessions into billable line items. The total
// amount is the sum of the line amounts rather than totalHours*rate, so
// the printed lines always add up to the printed total.
func buildLineItems(sessions []models.Session, hourlyRate float64) ([]models.InvoiceLineItem, float64, float64) {
	items := make([]models.InvoiceLineItem, 0, len(sessions))
	var totalHours, totalAmount float64
	for _, s := range sessions {
		hours := durationHours(s.StartTime, s.EndTime)
		amount := hours * hourlyRate
		items = append(items, models.InvoiceLineItem{
			Name:          s.Name,
			Date:          s.Date,
			StartTime:     s.StartTime,
			EndTime:       s.EndTime,
			DurationHours: hours,
			Amount:        amount,
		})
		totalHours += hours
		totalAmount += amount
	}
	return items, totalHours, totalAmount
}

// durationHours parses wall-clock times; an end before the start is
// treated as crossing midnight. Unparseable times count as 00:00
// instead of failing the whole invoice.
func durationHours(startTime, endTime string) float64 {
	start, err := time.Parse(timeLayout, startTime)
	if err != nil {
		start, _ = time.Parse(timeLayout, "00:00")
	}
	end, err := time.Parse(timeLayout, endTime)
	if err != nil {
		end, _ = time.Parse(timeLayout, "00:00")
	}
	d := end.Sub(start)
	if d < 0 {
		d += 24 * time.Hour
	}
	return d.Minutes() / 60.0
}

// ArtifactPath is the durable path convention for rendered invoices.
// It is recomputed from the invoice number at retrieval and deletion.
func ArtifactPath(invoiceDir, invoiceNumber string) string {
	return filepath.Join(invoiceDir, fmt.Sprintf("invoice_%s.pdf", invoiceNumber))
}
