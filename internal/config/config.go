package config

import (
	"os"
	"strings"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port         string
	DatabasePath string
	InvoiceDir   string
	CORSOrigins  []string
}

func FromEnv() Config {
	cfg := Config{
		Port:         getenv("PORT", "8080"),
		DatabasePath: getenv("DATABASE_PATH", "vereinsknete.db"),
		InvoiceDir:   getenv("INVOICE_DIR", "invoices"),
	}
	origins := getenv("CORS_ORIGINS", "*")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
