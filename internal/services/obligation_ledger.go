package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "ledger/internal/errors"
	"ledger/internal/logger"
	"ledger/internal/metrics"
	"ledger/internal/models"
)

// obligationLedger adjusts outstanding obligation amounts.
//
// Applying a payment clamps the outstanding amount at zero; reversing adds
// the full payment back with no upper bound. Reversing an overpayment can
// therefore leave the obligation above what was outstanding before the
// payment was applied.
type obligationLedger struct {
	metrics *metrics.Metrics
}

// NewObligationLedger creates a new ObligationLedger. m may be nil.
func NewObligationLedger(m *metrics.Metrics) ObligationLedger {
	return &obligationLedger{metrics: m}
}

// ApplyPayment reduces the outstanding amount by amount, never below zero.
func (l *obligationLedger) ApplyPayment(tx *gorm.DB, obligationID uint, amount int64) (*LedgerAdjustment, error) {
	return l.adjust(tx, obligationID, "apply", func(prev int64) int64 {
		return max(0, prev-amount)
	})
}

// ReversePayment adds amount back to the outstanding amount.
func (l *obligationLedger) ReversePayment(tx *gorm.DB, obligationID uint, amount int64) (*LedgerAdjustment, error) {
	return l.adjust(tx, obligationID, "reverse", func(prev int64) int64 {
		return prev + amount
	})
}

func (l *obligationLedger) adjust(tx *gorm.DB, obligationID uint, kind string, next func(int64) int64) (*LedgerAdjustment, error) {
	ob, err := lockObligation(tx, obligationID)
	if err != nil {
		return nil, err
	}

	adj := &LedgerAdjustment{
		ObligationID:   ob.ID,
		PreviousAmount: ob.Amount,
		NewAmount:      next(ob.Amount),
		Description:    ob.Description,
	}

	if err := tx.Model(ob).Update("amount", adj.NewAmount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	l.metrics.ObserveAdjustment(kind)
	logger.Get().Infow("obligation adjusted",
		"kind", kind,
		"obligation_id", adj.ObligationID,
		"previous_amount", adj.PreviousAmount,
		"new_amount", adj.NewAmount,
	)
	return adj, nil
}

// lockObligation reads the obligation row for update. Postgres takes a row
// lock; SQLite already serializes writers for the whole transaction.
func lockObligation(tx *gorm.DB, id uint) (*models.Obligation, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var ob models.Obligation
	if err := q.First(&ob, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrObligationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &ob, nil
}
