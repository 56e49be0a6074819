// Package session implements work session management. Sessions are the
// raw material for invoice line items.
package session

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jodli/Vereinsknete/internal/apperr"
	"github.com/jodli/Vereinsknete/internal/models"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type NewSession struct {
	ClientID  int    `json:"client_id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type FilterParams struct {
	ClientID  *int
	StartDate *string
	EndDate   *string
}

// SessionWithDuration is the list representation, carrying the client
// name and the computed duration in minutes.
type SessionWithDuration struct {
	models.Session  `gorm:"embedded"`
	ClientName      string `json:"client_name"`
	DurationMinutes int    `json:"duration_minutes"`
}

func validate(db *gorm.DB, req NewSession) error {
	if req.ClientID <= 0 {
		return apperr.BadRequest("invalid client ID")
	}
	if req.Name == "" {
		return apperr.Validation("session name cannot be empty")
	}
	if _, err := time.Parse(dateLayout, req.Date); err != nil {
		return apperr.Validation("date must be in YYYY-MM-DD format")
	}
	start, err := time.Parse(timeLayout, req.StartTime)
	if err != nil {
		return apperr.Validation("start time must be in HH:MM format")
	}
	end, err := time.Parse(timeLayout, req.EndTime)
	if err != nil {
		return apperr.Validation("end time must be in HH:MM format")
	}
	if !end.After(start) {
		return apperr.Validation("end time must be after start time")
	}
	var count int64
	if err := db.Model(&models.Client{}).Where("id = ?", req.ClientID).Count(&count).Error; err != nil {
		return apperr.Internal("failed to check client", err)
	}
	if count == 0 {
		return apperr.NotFound("client not found")
	}
	return nil
}

func Create(db *gorm.DB, lg *zap.SugaredLogger, req NewSession) (*models.Session, error) {
	if err := validate(db, req); err != nil {
		return nil, err
	}
	s := models.Session{
		ClientID:  req.ClientID,
		Name:      req.Name,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if err := db.Create(&s).Error; err != nil {
		lg.Errorw("creating session failed", "client_id", req.ClientID, "error", err)
		return nil, apperr.Internal("failed to create session", err)
	}
	lg.Infow("session created", "session_id", s.ID, "client_id", s.ClientID, "date", s.Date)
	return &s, nil
}

// List returns sessions joined with client names, optionally filtered
// by client and inclusive date range, newest date first.
func List(db *gorm.DB, lg *zap.SugaredLogger, filter FilterParams) ([]SessionWithDuration, error) {
	q := db.Model(&models.Session{}).
		Select("sessions.*, clients.name AS client_name").
		Joins("JOIN clients ON clients.id = sessions.client_id")
	if filter.ClientID != nil {
		if *filter.ClientID <= 0 {
			return nil, apperr.BadRequest("invalid client ID filter")
		}
		q = q.Where("sessions.client_id = ?", *filter.ClientID)
	}
	if filter.StartDate != nil {
		q = q.Where("sessions.date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("sessions.date <= ?", *filter.EndDate)
	}

	var rows []SessionWithDuration
	if err := q.Order("sessions.date desc, sessions.start_time desc").Scan(&rows).Error; err != nil {
		lg.Errorw("listing sessions failed", "error", err)
		return nil, apperr.Internal("failed to list sessions", err)
	}
	for i := range rows {
		rows[i].DurationMinutes = DurationMinutes(rows[i].StartTime, rows[i].EndTime)
	}
	return rows, nil
}

func GetByID(db *gorm.DB, lg *zap.SugaredLogger, id int) (*models.Session, error) {
	if id <= 0 {
		return nil, apperr.BadRequest("invalid session ID")
	}
	var s models.Session
	if err := db.First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("session not found")
		}
		lg.Errorw("fetching session failed", "session_id", id, "error", err)
		return nil, apperr.Internal("failed to fetch session", err)
	}
	return &s, nil
}

func Update(db *gorm.DB, lg *zap.SugaredLogger, id int, req NewSession) (*models.Session, error) {
	s, err := GetByID(db, lg, id)
	if err != nil {
		return nil, err
	}
	if err := validate(db, req); err != nil {
		return nil, err
	}
	s.ClientID = req.ClientID
	s.Name = req.Name
	s.Date = req.Date
	s.StartTime = req.StartTime
	s.EndTime = req.EndTime
	if err := db.Save(s).Error; err != nil {
		lg.Errorw("updating session failed", "session_id", id, "error", err)
		return nil, apperr.Internal("failed to update session", err)
	}
	lg.Infow("session updated", "session_id", id)
	return s, nil
}

func Delete(db *gorm.DB, lg *zap.SugaredLogger, id int) error {
	if id <= 0 {
		return apperr.BadRequest("invalid session ID")
	}
	res := db.Delete(&models.Session{}, "id = ?", id)
	if res.Error != nil {
		lg.Errorw("deleting session failed", "session_id", id, "error", res.Error)
		return apperr.Internal("failed to delete session", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("session not found")
	}
	lg.Infow("session deleted", "session_id", id)
	return nil
}

// DurationMinutes computes the wall-clock span of a session. An end
// time before the start is treated as crossing midnight.
func DurationMinutes(startTime, endTime string) int {
	start, err := time.Parse(timeLayout, startTime)
	if err != nil {
		return 0
	}
	end, err := time.Parse(timeLayout, endTime)
	if err != nil {
		return 0
	}
	d := end.Sub(start)
	if d < 0 {
		d += 24 * time.Hour
	}
	return int(d.Minutes())
}
