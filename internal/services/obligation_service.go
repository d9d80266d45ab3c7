package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"ledger/internal/clock"
	apperrors "ledger/internal/errors"
	"ledger/internal/logger"
	"ledger/internal/models"
)

// obligationService handles obligation ("must-pay") records.
type obligationService struct {
	db      *gorm.DB
	periods PeriodResolver
	clock   clock.Clock
}

// NewObligationService creates a new ObligationServicer.
func NewObligationService(db *gorm.DB, periods PeriodResolver, c clock.Clock) ObligationServicer {
	return &obligationService{db: db, periods: periods, clock: c}
}

// CreateObligation records a planned amount owed by a person within a period
func (s *obligationService) CreateObligation(ctx context.Context, input CreateObligationInput) (*models.Obligation, error) {
	if input.PersonID == 0 || input.PeriodID == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "person_id and period_id are required")
	}
	if input.Amount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}

	var result *models.Obligation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findPerson(tx, input.PersonID); err != nil {
			return err
		}
		if _, err := findPeriod(tx, input.PeriodID); err != nil {
			return err
		}

		ob := &models.Obligation{
			PersonID:    input.PersonID,
			PeriodID:    input.PeriodID,
			Description: input.Description,
			Amount:      input.Amount,
		}
		if err := tx.Create(ob).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		result = ob
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetObligationByID retrieves an obligation by ID
func (s *obligationService) GetObligationByID(ctx context.Context, id uint) (*models.Obligation, error) {
	return findObligation(s.db.WithContext(ctx), id)
}

// ListObligations returns the obligations of the period containing date
// (today when nil).
func (s *obligationService) ListObligations(ctx context.Context, date *models.Date) (*ObligationList, error) {
	d := clock.Today(s.clock)
	if date != nil {
		d = *date
	}

	period, err := s.periods.Resolve(ctx, d)
	if err != nil {
		return nil, err
	}

	records := []models.Obligation{}
	if err := s.db.WithContext(ctx).
		Where("period_id = ?", period.ID).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &ObligationList{Period: period, Records: records}, nil
}

// UpdateObligation applies a partial update. Changing Amount overwrites the
// outstanding amount directly; it does not go through the ledger.
func (s *obligationService) UpdateObligation(ctx context.Context, id uint, update ObligationUpdate) (*models.Obligation, error) {
	if !update.PersonID.Set && !update.PeriodID.Set && !update.Description.Set && !update.Amount.Set {
		return nil, apperrors.ErrNoFieldsToUpdate
	}

	var result *models.Obligation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ob, err := findObligation(tx, id)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if personID, ok := update.PersonID.Get(); ok {
			if _, err := findPerson(tx, personID); err != nil {
				return err
			}
			updates["person_id"] = personID
		}
		if periodID, ok := update.PeriodID.Get(); ok {
			if _, err := findPeriod(tx, periodID); err != nil {
				return err
			}
			updates["period_id"] = periodID
		}
		if desc, ok := update.Description.Get(); ok {
			updates["description"] = desc
		}
		if amount, ok := update.Amount.Get(); ok {
			if amount < 0 {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
			}
			updates["amount"] = amount
		}

		if err := tx.Model(ob).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		result, err = findObligation(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteObligation removes an obligation and unlinks any payments that were
// applied against it. The payments themselves are kept.
func (s *obligationService) DeleteObligation(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ob, err := findObligation(tx, id)
		if err != nil {
			return err
		}

		res := tx.Model(&models.Transaction{}).
			Where("obligation_id = ?", ob.ID).
			Update("obligation_id", nil)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected > 0 {
			logger.Get().Infow("unlinked payments from deleted obligation",
				"obligation_id", ob.ID,
				"count", res.RowsAffected,
			)
		}

		if err := tx.Delete(ob).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

func findObligation(db *gorm.DB, id uint) (*models.Obligation, error) {
	var ob models.Obligation
	if err := db.First(&ob, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrObligationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &ob, nil
}
