package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "ledger/internal/errors"
	"ledger/internal/models"
)

// periodService handles billing periods and date-to-period resolution.
type periodService struct {
	db     *gorm.DB
	strict bool
}

// NewPeriodService creates a new PeriodServicer. With strict set, resolving a
// date covered by more than one period fails instead of returning the
// earliest-starting match.
func NewPeriodService(db *gorm.DB, strict bool) PeriodServicer {
	return &periodService{db: db, strict: strict}
}

// Resolve returns the period containing date.
func (s *periodService) Resolve(ctx context.Context, date models.Date) (*models.Period, error) {
	return s.ResolveTx(s.db.WithContext(ctx), date)
}

// ResolveTx returns the period whose inclusive [start, end] range contains
// date. Overlapping periods resolve to the one with the earliest start date,
// then the lowest id.
func (s *periodService) ResolveTx(tx *gorm.DB, date models.Date) (*models.Period, error) {
	if date.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
	}

	var periods []models.Period
	if err := tx.Where("start_date <= ? AND end_date >= ?", date, date).
		Order("start_date ASC, id ASC").
		Limit(2).
		Find(&periods).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	switch {
	case len(periods) == 0:
		return nil, apperrors.WithMessage(apperrors.ErrPeriodNotFound, "No period contains "+date.String())
	case len(periods) > 1 && s.strict:
		return nil, apperrors.WithMessage(apperrors.ErrAmbiguousPeriod, "More than one period contains "+date.String())
	}
	return &periods[0], nil
}

// CreatePeriod creates a new billing period
func (s *periodService) CreatePeriod(ctx context.Context, name string, start, end models.Date) (*models.Period, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if err := validateBounds(start, end); err != nil {
		return nil, err
	}

	period := &models.Period{Name: name, StartDate: start, EndDate: end}
	if err := s.db.WithContext(ctx).Create(period).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return period, nil
}

// ListPeriods returns all periods, earliest first
func (s *periodService) ListPeriods(ctx context.Context) ([]models.Period, error) {
	periods := []models.Period{}
	if err := s.db.WithContext(ctx).Order("start_date ASC, id ASC").Find(&periods).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return periods, nil
}

// GetPeriodByID retrieves a period by ID
func (s *periodService) GetPeriodByID(ctx context.Context, id uint) (*models.Period, error) {
	return findPeriod(s.db.WithContext(ctx), id)
}

// UpdatePeriod applies a partial update. The name can always change; the
// bounds are frozen once obligations reference the period.
func (s *periodService) UpdatePeriod(ctx context.Context, id uint, update PeriodUpdate) (*models.Period, error) {
	if !update.Name.Set && !update.StartDate.Set && !update.EndDate.Set {
		return nil, apperrors.ErrNoFieldsToUpdate
	}

	var result *models.Period
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		period, err := findPeriod(tx, id)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}

		if name, ok := update.Name.Get(); ok {
			name = strings.TrimSpace(name)
			if name == "" {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "name cannot be empty")
			}
			updates["name"] = name
		}

		start := update.StartDate.Or(period.StartDate)
		end := update.EndDate.Or(period.EndDate)
		if !start.Equal(period.StartDate) || !end.Equal(period.EndDate) {
			if err := validateBounds(start, end); err != nil {
				return err
			}
			inUse, err := periodHasObligations(tx, period.ID)
			if err != nil {
				return err
			}
			if inUse {
				return apperrors.WithMessage(apperrors.ErrPeriodInUse, "Cannot change the dates of a period that has obligations")
			}
			updates["start_date"] = start
			updates["end_date"] = end
		}

		if len(updates) > 0 {
			if err := tx.Model(period).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		result, err = findPeriod(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeletePeriod removes a period that no obligation references
func (s *periodService) DeletePeriod(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		period, err := findPeriod(tx, id)
		if err != nil {
			return err
		}

		inUse, err := periodHasObligations(tx, period.ID)
		if err != nil {
			return err
		}
		if inUse {
			return apperrors.ErrPeriodInUse
		}

		if err := tx.Delete(period).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

func validateBounds(start, end models.Date) error {
	if start.IsZero() || end.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "start_date and end_date are required")
	}
	if !start.Before(end) {
		return apperrors.ErrInvalidPeriod
	}
	return nil
}

func periodHasObligations(tx *gorm.DB, periodID uint) (bool, error) {
	var count int64
	if err := tx.Model(&models.Obligation{}).Where("period_id = ?", periodID).Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

func findPeriod(db *gorm.DB, id uint) (*models.Period, error) {
	var period models.Period
	if err := db.First(&period, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrPeriodNotFound, "Period not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &period, nil
}
