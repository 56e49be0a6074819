package invoice

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jodli/Vereinsknete/internal/apperr"
	"github.com/jodli/Vereinsknete/internal/models"
)

// DashboardMetrics aggregates invoices into the dashboard figures.
// Revenue is windowed by the requested period; the pending amount and
// all counts are all-time. That asymmetry matches the shipped behavior
// and is kept deliberately.
func DashboardMetrics(db *gorm.DB, lg *zap.SugaredLogger, query models.DashboardQuery) (*models.DashboardMetrics, error) {
	now := nowFunc().UTC()
	if query.Year < 2000 || query.Year > now.Year()+1 {
		return nil, apperr.BadRequest("invalid year")
	}
	if query.Month != nil && (*query.Month < 1 || *query.Month > 12) {
		return nil, apperr.BadRequest("invalid month")
	}

	startDate, endDate, err := periodWindow(query, int(now.Month()))
	if err != nil {
		return nil, err
	}
	lg.Debugw("dashboard metrics window",
		"period", query.Period, "start", startDate, "end", endDate)

	var metrics models.DashboardMetrics
	err = db.Model(&models.Invoice{}).
		Where("status = ? AND date >= ? AND date < ?", models.InvoiceStatusPaid, startDate, endDate).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&metrics.TotalRevenuePeriod).Error
	if err != nil {
		return nil, apperr.Internal("failed to sum paid invoices", err)
	}

	err = db.Model(&models.Invoice{}).
		Where("status = ?", models.InvoiceStatusSent).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&metrics.PendingInvoicesAmount).Error
	if err != nil {
		return nil, apperr.Internal("failed to sum pending invoices", err)
	}

	var total, paid, pending int64
	if err := db.Model(&models.Invoice{}).Count(&total).Error; err != nil {
		return nil, apperr.Internal("failed to count invoices", err)
	}
	if err := db.Model(&models.Invoice{}).
		Where("status = ?", models.InvoiceStatusPaid).Count(&paid).Error; err != nil {
		return nil, apperr.Internal("failed to count paid invoices", err)
	}
	if err := db.Model(&models.Invoice{}).
		Where("status = ?", models.InvoiceStatusSent).Count(&pending).Error; err != nil {
		return nil, apperr.Internal("failed to count pending invoices", err)
	}
	metrics.TotalInvoicesCount = int(total)
	metrics.PaidInvoicesCount = int(paid)
	metrics.PendingInvoicesCount = int(pending)

	return &metrics, nil
}

// periodWindow computes the half-open [start, end) date window for a
// period. The month defaults to the current one when omitted; quarters
// are derived from the (given or current) month.
func periodWindow(query models.DashboardQuery, currentMonth int) (string, string, error) {
	month := currentMonth
	if query.Month != nil {
		month = *query.Month
	}
	switch query.Period {
	case "month":
		start := fmt.Sprintf("%d-%02d-01", query.Year, month)
		if month == 12 {
			return start, fmt.Sprintf("%d-01-01", query.Year+1), nil
		}
		return start, fmt.Sprintf("%d-%02d-01", query.Year, month+1), nil
	case "quarter":
		quarter := (month-1)/3 + 1
		startMonth := (quarter-1)*3 + 1
		start := fmt.Sprintf("%d-%02d-01", query.Year, startMonth)
		if quarter == 4 {
			return start, fmt.Sprintf("%d-01-01", query.Year+1), nil
		}
		return start, fmt.Sprintf("%d-%02d-01", query.Year, startMonth+3), nil
	case "year":
		return fmt.Sprintf("%d-01-01", query.Year), fmt.Sprintf("%d-01-01", query.Year+1), nil
	default:
		return "", "", apperr.BadRequest("invalid period, use 'month', 'quarter' or 'year'")
	}
}
