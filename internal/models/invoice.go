package models

import "time"

// InvoiceRequest is the body of POST /invoices/generate.
type InvoiceRequest struct {
	ClientID  int     `json:"client_id"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Language  *string `json:"language,omitempty"`
}

// InvoiceLineItem is one billable session on the rendered invoice.
// Line items are derived on every generation and never persisted.
type InvoiceLineItem struct {
	Name          string  `json:"name"`
	Date          string  `json:"date"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	DurationHours float64 `json:"duration_hours"`
	Amount        float64 `json:"amount"`
}

// InvoiceDocument is the aggregated invoice handed to the PDF renderer.
type InvoiceDocument struct {
	InvoiceNumber string            `json:"invoice_number"`
	Date          string            `json:"date"`
	UserProfile   UserProfile       `json:"user_profile"`
	Client        Client            `json:"client"`
	Items         []InvoiceLineItem `json:"sessions"`
	TotalHours    float64           `json:"total_hours"`
	TotalAmount   float64           `json:"total_amount"`
}

// InvoiceListItem is one row of GET /invoices, joined with the client name.
type InvoiceListItem struct {
	ID            int       `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	ClientName    string    `json:"client_name"`
	Date          string    `json:"date"`
	TotalAmount   float64   `json:"total_amount"`
	Status        string    `json:"status"`
	DueDate       *string   `json:"due_date,omitempty"`
	PaidDate      *string   `json:"paid_date,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type UpdateInvoiceStatusRequest struct {
	Status   string  `json:"status"`
	PaidDate *string `json:"paid_date,omitempty"`
}

type DashboardQuery struct {
	Period string
	Year   int
	Month  *int
}

type DashboardMetrics struct {
	TotalRevenuePeriod    float64 `json:"total_revenue_period"`
	PendingInvoicesAmount float64 `json:"pending_invoices_amount"`
	TotalInvoicesCount    int     `json:"total_invoices_count"`
	PaidInvoicesCount     int     `json:"paid_invoices_count"`
	PendingInvoicesCount  int     `json:"pending_invoices_count"`
}
