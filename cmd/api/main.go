package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jodli/Vereinsknete/internal/config"
	"github.com/jodli/Vereinsknete/internal/httpserver"
	"github.com/jodli/Vereinsknete/internal/i18n"
	"github.com/jodli/Vereinsknete/internal/logger"
	"github.com/jodli/Vereinsknete/internal/models"
)

func main() {
	_ = godotenv.Load()
	lg := logger.New()
	defer lg.Sync()
	i18n.SetLogger(lg)

	cfg := config.FromEnv()
	lg.Infow("starting vereinsknete",
		"port", cfg.Port, "database", cfg.DatabasePath, "invoice_dir", cfg.InvoiceDir)

	if err := os.MkdirAll(cfg.InvoiceDir, 0o755); err != nil {
		lg.Fatalw("failed to create invoice directory", "dir", cfg.InvoiceDir, "error", err)
	}
	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			lg.Fatalw("failed to create database directory", "dir", dir, "error", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	if err := db.AutoMigrate(&models.Client{}, &models.Session{}, &models.UserProfile{}, &models.Invoice{}); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}

	router := httpserver.NewRouter(db, lg, cfg)
	lg.Infow("listening", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
