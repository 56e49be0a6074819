package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jodli/Vereinsknete/internal/apperr"
	"github.com/jodli/Vereinsknete/internal/session"
)

func CreateSession(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req session.NewSession
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, lg, apperr.BadRequest("invalid request body"))
			return
		}
		s, err := session.Create(db, lg, req)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, http.StatusCreated, s)
	}
}

func ListSessions(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter session.FilterParams
		q := r.URL.Query()
		if v := q.Get("client_id"); v != "" {
			id, err := strconv.Atoi(v)
			if err != nil {
				respondError(w, lg, apperr.BadRequest("invalid client_id filter"))
				return
			}
			filter.ClientID = &id
		}
		if v := q.Get("start_date"); v != "" {
			filter.StartDate = &v
		}
		if v := q.Get("end_date"); v != "" {
			filter.EndDate = &v
		}
		rows, err := session.List(db, lg, filter)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, rows)
	}
}

func GetSession(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			respondError(w, lg, err)
			return
		}
		s, err := session.GetByID(db, lg, id)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, s)
	}
}

func UpdateSession(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			respondError(w, lg, err)
			return
		}
		var req session.NewSession
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, lg, apperr.BadRequest("invalid request body"))
			return
		}
		s, err := session.Update(db, lg, id, req)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, s)
	}
}

func DeleteSession(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if err := session.Delete(db, lg, id); err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
	}
}
