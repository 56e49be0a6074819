package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jodli/Vereinsknete/internal/apperr"
	"github.com/jodli/Vereinsknete/internal/invoice"
	"github.com/jodli/Vereinsknete/internal/models"
)

func GenerateInvoice(db *gorm.DB, lg *zap.SugaredLogger, invoiceDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.InvoiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, lg, apperr.BadRequest("invalid request body"))
			return
		}
		pdfBytes, id, number, err := invoice.Generate(db, lg, invoiceDir, req)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, http.StatusCreated, map[string]any{
			"invoice_id":     id,
			"invoice_number": number,
			"pdf_base64":     base64.StdEncoding.EncodeToString(pdfBytes),
		})
	}
}

func ListInvoices(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := invoice.List(db, lg)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, items)
	}
}

func UpdateInvoiceStatus(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			respondError(w, lg, err)
			return
		}
		var req models.UpdateInvoiceStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, lg, apperr.BadRequest("invalid request body"))
			return
		}
		if err := invoice.UpdateStatus(db, lg, id, req); err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"updated": true})
	}
}

func GetInvoicePDF(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			respondError(w, lg, err)
			return
		}
		pdfBytes, number, err := invoice.GetPDF(db, lg, id)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=\"invoice_%s.pdf\"", number))
		_, _ = w.Write(pdfBytes)
	}
}

func DeleteInvoice(db *gorm.DB, lg *zap.SugaredLogger, invoiceDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if err := invoice.Delete(db, lg, invoiceDir, id); err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
	}
}

func DashboardMetrics(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query := models.DashboardQuery{Period: q.Get("period")}
		year, err := strconv.Atoi(q.Get("year"))
		if err != nil {
			respondError(w, lg, apperr.BadRequest("invalid year"))
			return
		}
		query.Year = year
		if v := q.Get("month"); v != "" {
			month, err := strconv.Atoi(v)
			if err != nil {
				respondError(w, lg, apperr.BadRequest("invalid month"))
				return
			}
			query.Month = &month
		}
		metrics, err := invoice.DashboardMetrics(db, lg, query)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, metrics)
	}
}
