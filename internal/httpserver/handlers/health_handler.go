package handlers

import (
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Health(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbStatus := "connected"
		status := http.StatusOK
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			lg.Errorw("database ping failed", "error", err)
			dbStatus = "unavailable"
			status = http.StatusServiceUnavailable
		}
		respondJSON(w, status, map[string]string{
			"status":   "ok",
			"database": dbStatus,
		})
	}
}
