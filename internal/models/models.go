package models

import "time"

// Calendar fields are stored as plain strings ("2006-01-02" dates,
// "15:04" wall-clock times). Date range queries rely on the
// lexicographic order of the ISO form.

type Client struct {
	ID                int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name              string    `gorm:"uniqueIndex;not null" json:"name"`
	Address           string    `gorm:"not null" json:"address"`
	ContactPerson     *string   `json:"contact_person,omitempty"`
	DefaultHourlyRate float64   `gorm:"not null" json:"default_hourly_rate"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type Session struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID  int       `gorm:"index;not null" json:"client_id"`
	Name      string    `gorm:"not null" json:"name"`
	Date      string    `gorm:"not null;size:10" json:"date"`
	StartTime string    `gorm:"not null;size:5" json:"start_time"`
	EndTime   string    `gorm:"not null;size:5" json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}

// UserProfile is the operator's billing identity. The table holds at
// most one row; the profile service rejects a second insert.
type UserProfile struct {
	ID          int     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	Address     string  `gorm:"not null" json:"address"`
	TaxID       *string `json:"tax_id,omitempty"`
	BankDetails *string `json:"bank_details,omitempty"`
}

const (
	InvoiceStatusCreated   = "created"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

// ValidInvoiceStatus reports whether s is one of the five lifecycle states.
func ValidInvoiceStatus(s string) bool {
	switch s {
	case InvoiceStatusCreated, InvoiceStatusSent, InvoiceStatusPaid,
		InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

type Invoice struct {
	ID             int       `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceNumber  string    `gorm:"uniqueIndex;not null" json:"invoice_number"`
	ClientID       int       `gorm:"index;not null" json:"client_id"`
	Date           string    `gorm:"not null;size:10" json:"date"`
	TotalAmount    float64   `gorm:"not null" json:"total_amount"`
	PDFPath        string    `gorm:"column:pdf_path;not null" json:"pdf_path"`
	Status         string    `gorm:"not null;default:created" json:"status"`
	DueDate        *string   `gorm:"size:10" json:"due_date,omitempty"`
	PaidDate       *string   `gorm:"size:10" json:"paid_date,omitempty"`
	Year           int       `gorm:"not null;uniqueIndex:idx_invoices_year_seq" json:"year"`
	SequenceNumber int       `gorm:"not null;uniqueIndex:idx_invoices_year_seq" json:"sequence_number"`
	CreatedAt      time.Time `json:"created_at"`
}
