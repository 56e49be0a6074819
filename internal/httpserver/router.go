package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jodli/Vereinsknete/internal/config"
	"github.com/jodli/Vereinsknete/internal/httpserver/handlers"
)

func NewRouter(db *gorm.DB, lg *zap.SugaredLogger, cfg config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)
	r.Use(securityHeaders)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}).Handler)

	r.Post("/clients", handlers.CreateClient(db, lg))
	r.Get("/clients", handlers.ListClients(db, lg))
	r.Get("/clients/{id}", handlers.GetClient(db, lg))
	r.Put("/clients/{id}", handlers.UpdateClient(db, lg))
	r.Delete("/clients/{id}", handlers.DeleteClient(db, lg))
	r.Get("/clients/{id}/sessions", handlers.ListClientSessions(db, lg))

	r.Post("/sessions", handlers.CreateSession(db, lg))
	r.Get("/sessions", handlers.ListSessions(db, lg))
	r.Get("/sessions/{id}", handlers.GetSession(db, lg))
	r.Put("/sessions/{id}", handlers.UpdateSession(db, lg))
	r.Delete("/sessions/{id}", handlers.DeleteSession(db, lg))

	r.Get("/profile", handlers.GetProfile(db, lg))
	r.Post("/profile", handlers.CreateProfile(db, lg))
	r.Put("/profile", handlers.UpdateProfile(db, lg))

	r.Post("/invoices/generate", handlers.GenerateInvoice(db, lg, cfg.InvoiceDir))
	r.Get("/invoices", handlers.ListInvoices(db, lg))
	r.Patch("/invoices/{id}/status", handlers.UpdateInvoiceStatus(db, lg))
	r.Get("/invoices/{id}/pdf", handlers.GetInvoicePDF(db, lg))
	r.Delete("/invoices/{id}", handlers.DeleteInvoice(db, lg, cfg.InvoiceDir))

	r.Get("/dashboard/metrics", handlers.DashboardMetrics(db, lg))

	r.Get("/health", handlers.Health(db, lg))
	return r
}
