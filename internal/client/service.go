// Package client implements client management. Clients carry the
// hourly rate used at invoice time.
package client

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jodli/Vereinsknete/internal/apperr"
	"github.com/jodli/Vereinsknete/internal/models"
)

type NewClient struct {
	Name              string  `json:"name"`
	Address           string  `json:"address"`
	ContactPerson     *string `json:"contact_person,omitempty"`
	DefaultHourlyRate float64 `json:"default_hourly_rate"`
}

type UpdateClient struct {
	Name              *string  `json:"name,omitempty"`
	Address           *string  `json:"address,omitempty"`
	ContactPerson     *string  `json:"contact_person,omitempty"`
	DefaultHourlyRate *float64 `json:"default_hourly_rate,omitempty"`
}

func List(db *gorm.DB, lg *zap.SugaredLogger) ([]models.Client, error) {
	var clients []models.Client
	if err := db.Order("name asc").Find(&clients).Error; err != nil {
		lg.Errorw("listing clients failed", "error", err)
		return nil, apperr.Internal("failed to list clients", err)
	}
	return clients, nil
}

func GetByID(db *gorm.DB, lg *zap.SugaredLogger, id int) (*models.Client, error) {
	if id <= 0 {
		return nil, apperr.BadRequest("invalid client ID")
	}
	var c models.Client
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("client not found")
		}
		lg.Errorw("fetching client failed", "client_id", id, "error", err)
		return nil, apperr.Internal("failed to fetch client", err)
	}
	return &c, nil
}

func Create(db *gorm.DB, lg *zap.SugaredLogger, req NewClient) (*models.Client, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, apperr.Validation("client name cannot be empty")
	}
	if req.DefaultHourlyRate < 0 {
		return nil, apperr.Validation("hourly rate cannot be negative")
	}

	var count int64
	if err := db.Model(&models.Client{}).Where("name = ?", req.Name).Count(&count).Error; err != nil {
		return nil, apperr.Internal("failed to check client name", err)
	}
	if count > 0 {
		return nil, apperr.Validation("client name already exists")
	}

	c := models.Client{
		Name:              req.Name,
		Address:           req.Address,
		ContactPerson:     req.ContactPerson,
		DefaultHourlyRate: req.DefaultHourlyRate,
	}
	if err := db.Create(&c).Error; err != nil {
		lg.Errorw("creating client failed", "name", req.Name, "error", err)
		return nil, apperr.Internal("failed to create client", err)
	}
	lg.Infow("client created", "client_id", c.ID, "name", c.Name)
	return &c, nil
}

func Update(db *gorm.DB, lg *zap.SugaredLogger, id int, req UpdateClient) (*models.Client, error) {
	c, err := GetByID(db, lg, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.Validation("client name cannot be empty")
		}
		var count int64
		if err := db.Model(&models.Client{}).
			Where("name = ? AND id <> ?", name, id).Count(&count).Error; err != nil {
			return nil, apperr.Internal("failed to check client name", err)
		}
		if count > 0 {
			return nil, apperr.Validation("client name already exists")
		}
		c.Name = name
	}
	if req.Address != nil {
		c.Address = *req.Address
	}
	if req.ContactPerson != nil {
		c.ContactPerson = req.ContactPerson
	}
	if req.DefaultHourlyRate != nil {
		if *req.DefaultHourlyRate < 0 {
			return nil, apperr.Validation("hourly rate cannot be negative")
		}
		c.DefaultHourlyRate = *req.DefaultHourlyRate
	}
	if err := db.Save(c).Error; err != nil {
		lg.Errorw("updating client failed", "client_id", id, "error", err)
		return nil, apperr.Internal("failed to update client", err)
	}
	lg.Infow("client updated", "client_id", id)
	return c, nil
}

// Delete removes a client. Clients with logged sessions cannot be
// deleted; the sessions keep their history.
func Delete(db *gorm.DB, lg *zap.SugaredLogger, id int) error {
	if id <= 0 {
		return apperr.BadRequest("invalid client ID")
	}
	var sessionCount int64
	if err := db.Model(&models.Session{}).Where("client_id = ?", id).Count(&sessionCount).Error; err != nil {
		return apperr.Internal("failed to count client sessions", err)
	}
	if sessionCount > 0 {
		return apperr.Validation(fmt.Sprintf("cannot delete client with %d associated sessions", sessionCount))
	}
	res := db.Delete(&models.Client{}, "id = ?", id)
	if res.Error != nil {
		lg.Errorw("deleting client failed", "client_id", id, "error", res.Error)
		return apperr.Internal("failed to delete client", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("client not found")
	}
	lg.Infow("client deleted", "client_id", id)
	return nil
}
