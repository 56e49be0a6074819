package invoice

import (
	"bytes"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jodli/Vereinsknete/internal/apperr"
	"github.com/jodli/Vereinsknete/internal/models"
)

var dbCounter atomic.Uint32

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("file:invoice_test_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Client{}, &models.Session{}, &models.UserProfile{}, &models.Invoice{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func fixedNow(t *testing.T, iso string) {
	t.Helper()
	fixed, err := time.Parse("2006-01-02", iso)
	if err != nil {
		t.Fatalf("parse fixed time: %v", err)
	}
	prev := nowFunc
	nowFunc = func() time.Time { return fixed }
	t.Cleanup(func() { nowFunc = prev })
}

func insertProfile(t *testing.T, db *gorm.DB) {
	t.Helper()
	bank := "Musterbank\nIBAN DE00 1234\nReference: {invoice_number}"
	p := models.UserProfile{Name: "Alice", Address: "Addr 1", BankDetails: &bank}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("insert profile: %v", err)
	}
}

func insertClient(t *testing.T, db *gorm.DB, name string, rate float64) int {
	t.Helper()
	c := models.Client{Name: name, Address: "Client Addr", DefaultHourlyRate: rate}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("insert client: %v", err)
	}
	return c.ID
}

func insertSession(t *testing.T, db *gorm.DB, clientID int, date, start, end string) {
	t.Helper()
	s := models.Session{ClientID: clientID, Name: "Work", Date: date, StartTime: start, EndTime: end}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("insert session: %v", err)
	}
}

func countInvoices(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Invoice{}).Count(&n).Error; err != nil {
		t.Fatalf("count invoices: %v", err)
	}
	return n
}

func TestGenerateInvoiceEndToEnd(t *testing.T) {
	db := setupTestDB(t)
	lg := zap.NewNop().Sugar()
	dir := t.TempDir()
	fixedNow(t, "2025-06-15")

	insertProfile(t, db)
	clientID := insertClient(t, db, "Acme", 100.0)
	insertSession(t, db, clientID, "2025-01-10", "09:00", "11:00")
	insertSession(t, db, clientID, "2025-01-15", "10:00", "11:00")

	req := models.InvoiceRequest{ClientID: clientID, StartDate: "2025-01-01", EndDate: "2025-01-31"}
	pdfBytes, id, number, err := Generate(db, lg, dir, req)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if number != "2025-0001" {
		t.Fatalf("expected invoice number 2025-0001, got %s", number)
	}
	if !bytes.HasPrefix(pdfBytes, []byte("%PDF")) {
		t.Fatalf("expected PDF output, got %q", pdfBytes[:8])
	}

	var inv models.Invoice
	if err := db.First(&inv, "id = ?", id).Error; err != nil {
		t.Fatalf("load invoice: %v", err)
	}
	if inv.TotalAmount != 300.0 {
		t.Fatalf("expected total 300.0, got %v", inv.TotalAmount)
	}
	if inv.Status != models.InvoiceStatusCreated {
		t.Fatalf("expected status created, got %s", inv.Status)
	}
	if inv.Year != 2025 || inv.SequenceNumber != 1 {
		t.Fatalf("expected year/seq 2025/1, got %d/%d", inv.Year, inv.SequenceNumber)
	}
	if inv.DueDate == nil || *inv.DueDate != "2025-07-15" {
		t.Fatalf("expected due date 2025-07-15, got %v", inv.DueDate)
	}
	if _, err := os.Stat(ArtifactPath(dir, number)); err != nil {
		t.Fatalf("expected PDF artifact on disk: %v", err)
	}

	// Second invoice in the same year gets the next number.
	_, _, number2, err := Generate(db, lg, dir, req)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if number2 != "2025-0002" {
		t.Fatalf("expected 2025-0002, got %s", number2)
	}
}

func TestGenerateInvoiceSequenceScopedToYear(t *testing.T) {
	db := setupTestDB(t)
	lg := zap.NewNop().Sugar()
	dir := t.TempDir()
	fixedNow(t, "2026-01-02")

	insertProfile(t, db)
	clientID := insertClient(t, db, "Acme", 50.0)
	insertSession(t, db, clientID, "2025-12-30", "09:00", "10:00")

	// An invoice from a prior year does not feed this year's sequence.
	prev := models.Invoice{
		InvoiceNumber: "2025-0007", ClientID: clientID, Date: "2025-12-01",
		TotalAmount: 10, PDFPath: "x", Status: models.InvoiceStatusCreated,
		Year: 2025, SequenceNumber: 7,
	}
	if err := db.Create(&prev).Error; err != nil {
		t.Fatalf("insert prior invoice: %v", err)
	}

	req := models.InvoiceRequest{ClientID: clientID, StartDate: "2025-12-01", EndDate: "2025-12-31"}
	_, _, number, err := Generate(db, lg, dir, req)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if number != "2026-0001" {
		t.Fatalf("expected 2026-0001, got %s", number)
	}
}

func TestDurationHours(t *testing.T) {
	cases := []struct {
		name  string
		start string
		end   string
		want  float64
	}{
		{"regular day", "09:00", "17:30", 8.5},
		{"crosses midnight", "23:00", "01:00", 2.0},
		{"one minute", "12:00", "12:01", 1.0 / 60.0},
		{"identical times", "10:00", "10:00", 0},
		{"unparseable start", "bogus", "01:00", 1.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := durationHours(tc.start, tc.end)
			if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("expected %v got %v", tc.want, got)
			}
		})
	}
}

func TestBuildLineItems(t *testing.T) {
	sessions := []models.Session{
		{Name: "A", Date: "2025-01-10", StartTime: "09:00", EndTime: "11:00"},
		{Name: "B", Date: "2025-01-15", StartTime: "10:00", EndTime: "11:00"},
	}
	items, hours, amount := buildLineItems(sessions, 100.0)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if hours != 3.0 {
		t.Fatalf("expected 3.0 hours, got %v", hours)
	}
	if amount != 300.0 {
		t.Fatalf("expected 300.0 amount, got %v", amount)
	}
	if items[0].Amount != 200.0 || items[1].Amount != 100.0 {
		t.Fatalf("unexpected line amounts: %v, %v", items[0].Amount, items[1].Amount)
	}
}

func TestGenerateInvoiceRejections(t *testing.T) {
	lg := zap.NewNop().Sugar()
	fixedNow(t, "2025-06-15")

	cases := []struct {
		name     string
		prepare  func(t *testing.T, db *gorm.DB) models.InvoiceRequest
		wantKind apperr.Kind
	}{
		{
			name: "invalid client id",
			prepare: func(t *testing.T, db *gorm.DB) models.InvoiceRequest {
				return models.InvoiceRequest{ClientID: 0, StartDate: "2025-01-01", EndDate: "2025-01-31"}
			},
			wantKind: apperr.KindBadRequest,
		},
		{
			name: "end date not after start",
			prepare: func(t *testing.T, db *gorm.DB) models.InvoiceRequest {
				return models.InvoiceRequest{ClientID: 1, StartDate: "2025-01-31", EndDate: "2025-01-01"}
			},
			wantKind: apperr.KindValidation,
		},
		{
			name: "range too long",
			prepare: func(t *testing.T, db *gorm.DB) models.InvoiceRequest {
				return models.InvoiceRequest{ClientID: 1, StartDate: "2024-01-01", EndDate: "2025-06-01"}
			},
			wantKind: apperr.KindValidation,
		},
		{
			name: "missing profile",
			prepare: func(t *testing.T, db *gorm.DB) models.InvoiceRequest {
				id := insertClient(t, db, "Acme", 100.0)
				insertSession(t, db, id, "2025-01-10", "09:00", "11:00")
				return models.InvoiceRequest{ClientID: id, StartDate: "2025-01-01", EndDate: "2025-01-31"}
			},
			wantKind: apperr.KindNotFound,
		},
		{
			name: "missing client",
			prepare: func(t *testing.T, db *gorm.DB) models.InvoiceRequest {
				insertProfile(t, db)
				return models.InvoiceRequest{ClientID: 99, StartDate: "2025-01-01", EndDate: "2025-01-31"}
			},
			wantKind: apperr.KindNotFound,
		},
		{
			name: "no sessions in range",
			prepare: func(t *testing.T, db *gorm.DB) models.InvoiceRequest {
				insertProfile(t, db)
				id := insertClient(t, db, "Acme", 100.0)
				return models.InvoiceRequest{ClientID: id, StartDate: "2025-02-01", EndDate: "2025-02-28"}
			},
			wantKind: apperr.KindValidation,
		},
		{
			name: "invalid hourly rate",
			prepare: func(t *testing.T, db *gorm.DB) models.InvoiceRequest {
				insertProfile(t, db)
				id := insertClient(t, db, "Acme", 0.0)
				insertSession(t, db, id, "2025-01-10", "09:00", "11:00")
				return models.InvoiceRequest{ClientID: id, StartDate: "2025-01-01", EndDate: "2025-01-31"}
			},
			wantKind: apperr.KindValidation,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupTestDB(t)
			dir := t.TempDir()
			req := tc.prepare(t, db)
			_, _, _, err := Generate(db, lg, dir, req)
			if err == nil {
				t.Fatal("expected generation to fail")
			}
			if got := apperr.KindOf(err); got != tc.wantKind {
				t.Fatalf("expected kind %v, got %v (%v)", tc.wantKind, got, err)
			}
			if n := countInvoices(t, db); n != 0 {
				t.Fatalf("expected no invoice rows, got %d", n)
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Fatalf("expected no files written, got %d", len(entries))
			}
		})
	}
}

func TestUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	lg := zap.NewNop().Sugar()
	dir := t.TempDir()
	fixedNow(t, "2025-06-15")

	insertProfile(t, db)
	clientID := insertClient(t, db, "Acme", 100.0)
	insertSession(t, db, clientID, "2025-01-10", "09:00", "11:00")
	_, id, _, err := Generate(db, lg, dir, models.InvoiceRequest{
		ClientID: clientID, StartDate: "2025-01-01", EndDate: "2025-01-31",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	err = UpdateStatus(db, lg, id, models.UpdateInvoiceStatusRequest{Status: "weird"})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}

	err = UpdateStatus(db, lg, id, models.UpdateInvoiceStatusRequest{Status: models.InvoiceStatusPaid})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for paid without date, got %v", err)
	}

	if err := UpdateStatus(db, lg, id, models.UpdateInvoiceStatusRequest{Status: models.InvoiceStatusSent}); err != nil {
		t.Fatalf("sent transition: %v", err)
	}
	paidDate := "2024-01-15"
	if err := UpdateStatus(db, lg, id, models.UpdateInvoiceStatusRequest{
		Status: models.InvoiceStatusPaid, PaidDate: &paidDate,
	}); err != nil {
		t.Fatalf("paid transition: %v", err)
	}

	var inv models.Invoice
	if err := db.First(&inv, "id = ?", id).Error; err != nil {
		t.Fatalf("load invoice: %v", err)
	}
	if inv.Status != models.InvoiceStatusPaid || inv.PaidDate == nil || *inv.PaidDate != paidDate {
		t.Fatalf("expected paid with date %s, got %s/%v", paidDate, inv.Status, inv.PaidDate)
	}

	err = UpdateStatus(db, lg, 9999, models.UpdateInvoiceStatusRequest{Status: models.InvoiceStatusSent})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found for unknown invoice, got %v", err)
	}
}

func TestDeleteInvoiceCleansUpArtifact(t *testing.T) {
	db := setupTestDB(t)
	lg := zap.NewNop().Sugar()
	dir := t.TempDir()
	fixedNow(t, "2025-06-15")

	insertProfile(t, db)
	clientID := insertClient(t, db, "Acme", 100.0)
	insertSession(t, db, clientID, "2025-01-10", "09:00", "11:00")
	_, id, number, err := Generate(db, lg, dir, models.InvoiceRequest{
		ClientID: clientID, StartDate: "2025-01-01", EndDate: "2025-01-31",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	pdfPath := ArtifactPath(dir, number)
	if _, err := os.Stat(pdfPath); err != nil {
		t.Fatalf("artifact should exist before deletion: %v", err)
	}
	if err := Delete(db, lg, dir, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(pdfPath); !os.IsNotExist(err) {
		t.Fatalf("artifact should be removed, stat err: %v", err)
	}
	if n := countInvoices(t, db); n != 0 {
		t.Fatalf("expected invoice row gone, have %d", n)
	}
}

func TestDeleteInvoiceToleratesMissingFile(t *testing.T) {
	db := setupTestDB(t)
	lg := zap.NewNop().Sugar()
	dir := t.TempDir()
	fixedNow(t, "2025-06-15")

	insertProfile(t, db)
	clientID := insertClient(t, db, "Acme", 100.0)
	insertSession(t, db, clientID, "2025-01-10", "09:00", "11:00")
	_, id, number, err := Generate(db, lg, dir, models.InvoiceRequest{
		ClientID: clientID, StartDate: "2025-01-01", EndDate: "2025-01-31",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := os.Remove(ArtifactPath(dir, number)); err != nil {
		t.Fatalf("remove artifact: %v", err)
	}
	if err := Delete(db, lg, dir, id); err != nil {
		t.Fatalf("delete with missing file should succeed: %v", err)
	}
	if n := countInvoices(t, db); n != 0 {
		t.Fatalf("expected invoice row gone, have %d", n)
	}
}

func TestGetPDF(t *testing.T) {
	db := setupTestDB(t)
	lg := zap.NewNop().Sugar()
	dir := t.TempDir()
	fixedNow(t, "2025-06-15")

	insertProfile(t, db)
	clientID := insertClient(t, db, "Acme", 100.0)
	insertSession(t, db, clientID, "2025-01-10", "09:00", "11:00")
	pdfBytes, id, number, err := Generate(db, lg, dir, models.InvoiceRequest{
		ClientID: clientID, StartDate: "2025-01-01", EndDate: "2025-01-31",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	got, gotNumber, err := GetPDF(db, lg, id)
	if err != nil {
		t.Fatalf("get pdf: %v", err)
	}
	if gotNumber != number {
		t.Fatalf("expected number %s, got %s", number, gotNumber)
	}
	if !bytes.Equal(got, pdfBytes) {
		t.Fatal("stored PDF differs from generated PDF")
	}

	if _, _, err := GetPDF(db, lg, 9999); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found for unknown invoice, got %v", err)
	}

	// Removing the artifact behind the row is storage drift.
	if err := os.Remove(ArtifactPath(dir, number)); err != nil {
		t.Fatalf("remove artifact: %v", err)
	}
	if _, _, err := GetPDF(db, lg, id); apperr.KindOf(err) != apperr.KindInternal {
		t.Fatalf("expected internal error for missing artifact, got %v", err)
	}
}

func TestListInvoices(t *testing.T) {
	db := setupTestDB(t)
	lg := zap.NewNop().Sugar()
	dir := t.TempDir()
	fixedNow(t, "2025-06-15")

	insertProfile(t, db)
	clientID := insertClient(t, db, "Acme", 100.0)
	insertSession(t, db, clientID, "2025-01-10", "09:00", "11:00")
	_, _, _, err := Generate(db, lg, dir, models.InvoiceRequest{
		ClientID: clientID, StartDate: "2025-01-01", EndDate: "2025-01-31",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	items, err := List(db, lg)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 invoice, got %d", len(items))
	}
	if items[0].ClientName != "Acme" {
		t.Fatalf("expected joined client name Acme, got %s", items[0].ClientName)
	}
	if items[0].InvoiceNumber != "2025-0001" {
		t.Fatalf("unexpected invoice number %s", items[0].InvoiceNumber)
	}
}
