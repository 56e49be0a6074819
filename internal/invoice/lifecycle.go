package invoice

import (
	"errors"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jodli/Vereinsknete/internal/apperr"
	"github.com/jodli/Vereinsknete/internal/models"
)

// List returns all invoices joined with their client name, newest first.
func List(db *gorm.DB, lg *zap.SugaredLogger) ([]models.InvoiceListItem, error) {
	var items []models.InvoiceListItem
	err := db.Model(&models.Invoice{}).
		Select("invoices.id, invoices.invoice_number, clients.name AS client_name, invoices.date, invoices.total_amount, invoices.status, invoices.due_date, invoices.paid_date, invoices.created_at").
		Joins("JOIN clients ON clients.id = invoices.client_id").
		Order("invoices.created_at desc").
		Scan(&items).Error
	if err != nil {
		lg.Errorw("listing invoices failed", "error", err)
		return nil, apperr.Internal("failed to list invoices", err)
	}
	return items, nil
}

// UpdateStatus moves an invoice to a new lifecycle state. The status
// set is closed and "paid" requires a paid date. No further transition
// ordering is enforced.
func UpdateStatus(db *gorm.DB, lg *zap.SugaredLogger, id int, req models.UpdateInvoiceStatusRequest) error {
	if id <= 0 {
		return apperr.BadRequest("invalid invoice ID")
	}
	if !models.ValidInvoiceStatus(req.Status) {
		lg.Warnw("invalid invoice status", "invoice_id", id, "status", req.Status)
		return apperr.Validation("invalid status, must be one of: created, sent, paid, overdue, cancelled")
	}
	if req.Status == models.InvoiceStatusPaid {
		if req.PaidDate == nil {
			lg.Warnw("paid status without paid date", "invoice_id", id)
			return apperr.Validation("paid date is required when marking invoice as paid")
		}
		if _, err := time.Parse(dateLayout, *req.PaidDate); err != nil {
			return apperr.Validation("paid date must be in YYYY-MM-DD format")
		}
	}

	res := db.Model(&models.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": req.Status, "paid_date": req.PaidDate})
	if res.Error != nil {
		lg.Errorw("updating invoice status failed", "invoice_id", id, "error", res.Error)
		return apperr.Internal("failed to update invoice status", res.Error)
	}
	if res.RowsAffected == 0 {
		lg.Warnw("status update for unknown invoice", "invoice_id", id)
		return apperr.NotFound("invoice not found")
	}
	lg.Infow("invoice status updated", "invoice_id", id, "status", req.Status)
	return nil
}

// GetPDF loads the rendered artifact for an invoice. A missing row and
// a missing file are distinct failures; the latter means the store and
// the filesystem have drifted apart.
func GetPDF(db *gorm.DB, lg *zap.SugaredLogger, id int) ([]byte, string, error) {
	if id <= 0 {
		return nil, "", apperr.BadRequest("invalid invoice ID")
	}
	var inv models.Invoice
	if err := db.First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperr.NotFound("invoice not found")
		}
		return nil, "", apperr.Internal("failed to query invoice", err)
	}

	pdfBytes, err := os.ReadFile(inv.PDFPath)
	if err != nil {
		lg.Errorw("invoice PDF file missing or unreadable",
			"invoice_id", id, "invoice_number", inv.InvoiceNumber, "pdf_path", inv.PDFPath, "error", err)
		return nil, "", apperr.Internal("invoice PDF file not found", err)
	}
	return pdfBytes, inv.InvoiceNumber, nil
}

// Delete removes an invoice and its PDF artifact. A file that is
// already gone is tolerated; the originating sessions are untouched.
func Delete(db *gorm.DB, lg *zap.SugaredLogger, invoiceDir string, id int) error {
	if id <= 0 {
		return apperr.BadRequest("invalid invoice ID")
	}
	var inv models.Invoice
	if err := db.First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("invoice not found")
		}
		return apperr.Internal("failed to query invoice", err)
	}

	pdfPath := ArtifactPath(invoiceDir, inv.InvoiceNumber)
	if err := os.Remove(pdfPath); err != nil && !os.IsNotExist(err) {
		lg.Errorw("deleting invoice PDF failed", "invoice_id", id, "pdf_path", pdfPath, "error", err)
		return apperr.Internal("failed to delete PDF file", err)
	}

	if err := db.Delete(&models.Invoice{}, "id = ?", id).Error; err != nil {
		lg.Errorw("deleting invoice failed", "invoice_id", id, "error", err)
		return apperr.Internal("failed to delete invoice", err)
	}
	lg.Infow("invoice deleted", "invoice_id", id, "invoice_number", inv.InvoiceNumber)
	return nil
}
