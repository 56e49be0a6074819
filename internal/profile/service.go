// Package profile manages the operator's billing identity. The system
// is single-operator: the user_profiles table holds at most one row,
// enforced here at creation time.
package profile

import (
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jodli/Vereinsknete/internal/apperr"
	"github.com/jodli/Vereinsknete/internal/models"
)

type NewProfile struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	TaxID       *string `json:"tax_id,omitempty"`
	BankDetails *string `json:"bank_details,omitempty"`
}

type UpdateProfile struct {
	Name        *string `json:"name,omitempty"`
	Address     *string `json:"address,omitempty"`
	TaxID       *string `json:"tax_id,omitempty"`
	BankDetails *string `json:"bank_details,omitempty"`
}

// Get returns the profile, or a not-found error when none has been
// created yet.
func Get(db *gorm.DB, lg *zap.SugaredLogger) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := db.First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user profile not found")
		}
		lg.Errorw("fetching profile failed", "error", err)
		return nil, apperr.Internal("failed to fetch profile", err)
	}
	return &p, nil
}

func Create(db *gorm.DB, lg *zap.SugaredLogger, req NewProfile) (*models.UserProfile, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.Validation("profile name cannot be empty")
	}
	if strings.TrimSpace(req.Address) == "" {
		return nil, apperr.Validation("profile address cannot be empty")
	}
	var count int64
	if err := db.Model(&models.UserProfile{}).Count(&count).Error; err != nil {
		return nil, apperr.Internal("failed to check existing profile", err)
	}
	if count > 0 {
		return nil, apperr.Validation("user profile already exists")
	}
	p := models.UserProfile{
		Name:        req.Name,
		Address:     req.Address,
		TaxID:       req.TaxID,
		BankDetails: req.BankDetails,
	}
	if err := db.Create(&p).Error; err != nil {
		lg.Errorw("creating profile failed", "error", err)
		return nil, apperr.Internal("failed to create profile", err)
	}
	lg.Infow("profile created", "profile_id", p.ID, "name", p.Name)
	return &p, nil
}

func Update(db *gorm.DB, lg *zap.SugaredLogger, req UpdateProfile) (*models.UserProfile, error) {
	p, err := Get(db, lg)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperr.Validation("profile name cannot be empty")
		}
		p.Name = *req.Name
	}
	if req.Address != nil {
		if strings.TrimSpace(*req.Address) == "" {
			return nil, apperr.Validation("profile address cannot be empty")
		}
		p.Address = *req.Address
	}
	if req.TaxID != nil {
		p.TaxID = req.TaxID
	}
	if req.BankDetails != nil {
		p.BankDetails = req.BankDetails
	}
	if err := db.Save(p).Error; err != nil {
		lg.Errorw("updating profile failed", "error", err)
		return nil, apperr.Internal("failed to update profile", err)
	}
	lg.Infow("profile updated", "profile_id", p.ID)
	return p, nil
}
