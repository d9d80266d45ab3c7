package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"ledger/internal/clock"
	apperrors "ledger/internal/errors"
	"ledger/internal/logger"
	"ledger/internal/metrics"
	"ledger/internal/models"
)

// transactionService records payments and keeps linked obligations in step.
// Every mutation runs in a single database transaction spanning the
// transactions and obligations tables.
type transactionService struct {
	db            *gorm.DB
	periods       PeriodResolver
	ledger        ObligationLedger
	clock         clock.Clock
	metrics       *metrics.Metrics
	primaryPerson string
}

// NewTransactionService creates a new TransactionServicer. primaryPerson is
// the name used for reconciliation entries when no person is given.
func NewTransactionService(db *gorm.DB, periods PeriodResolver, ledger ObligationLedger, c clock.Clock, m *metrics.Metrics, primaryPerson string) TransactionServicer {
	return &transactionService{
		db:            db,
		periods:       periods,
		ledger:        ledger,
		clock:         c,
		metrics:       m,
		primaryPerson: primaryPerson,
	}
}

// CreateTransaction records a payment. When linked to an obligation the
// payment is applied against it and, if no description was given, the
// obligation's description is adopted.
func (s *transactionService) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*models.Transaction, error) {
	if input.PersonID == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "person_id is required")
	}
	if input.WalletID == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "wallet_id is required")
	}

	// An obligation id of 0 means unlinked.
	if input.ObligationID != nil && *input.ObligationID == 0 {
		input.ObligationID = nil
	}

	date := s.dateOrToday(input.Date)
	description := ""
	if input.Description != nil {
		description = *input.Description
	}

	var result *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.periods.ResolveTx(tx, date); err != nil {
			return err
		}
		if _, err := findPerson(tx, input.PersonID); err != nil {
			return err
		}
		if _, err := findWallet(tx, input.WalletID); err != nil {
			return err
		}

		if input.ObligationID != nil {
			adj, err := s.ledger.ApplyPayment(tx, *input.ObligationID, input.Amount)
			if err != nil {
				return err
			}
			if description == "" {
				description = adj.Description
			}
		}

		t := &models.Transaction{
			PersonID:     input.PersonID,
			WalletID:     input.WalletID,
			ObligationID: input.ObligationID,
			Date:         date,
			Description:  description,
			Amount:       input.Amount,
		}
		if err := tx.Create(t).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetTransactionByID retrieves a payment by ID
func (s *transactionService) GetTransactionByID(ctx context.Context, id uint) (*models.Transaction, error) {
	return findTransaction(s.db.WithContext(ctx), id)
}

// ListTransactions returns the payments dated within the period containing
// date (today when nil), newest first.
func (s *transactionService) ListTransactions(ctx context.Context, date *models.Date) (*TransactionList, error) {
	period, err := s.periods.Resolve(ctx, s.dateOrToday(date))
	if err != nil {
		return nil, err
	}

	records := []models.Transaction{}
	if err := inPeriod(s.db.WithContext(ctx), period).
		Order("created_at DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &TransactionList{
		PeriodID:     period.ID,
		PeriodName:   period.Name,
		TotalRecords: len(records),
		Records:      records,
	}, nil
}

// UpdateTransaction applies a partial update. If the linked obligation or the
// amount changes, the old amount is first reversed on the old obligation and
// the new amount is then applied to the new one.
func (s *transactionService) UpdateTransaction(ctx context.Context, id uint, update TransactionUpdate) (*models.Transaction, error) {
	if update.IsEmpty() {
		return nil, apperrors.ErrNoFieldsToUpdate
	}

	var result *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findTransaction(tx, id)
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
		if walletID, ok := update.WalletID.Get(); ok {
			if _, err := findWallet(tx, walletID); err != nil {
				return err
			}
			updates["wallet_id"] = walletID
		}
		if date, ok := update.Date.Get(); ok {
			if _, err := s.periods.ResolveTx(tx, date); err != nil {
				return err
			}
			updates["date"] = date
		}

		desc, descSupplied := update.Description.Get()
		if descSupplied {
			updates["description"] = desc
		}

		newObligation := existing.ObligationID
		if ref, ok := update.ObligationID.Get(); ok {
			if ref != nil && *ref == 0 {
				ref = nil
			}
			newObligation = ref
		}
		newAmount := update.Amount.Or(existing.Amount)

		relinked := !sameObligation(existing.ObligationID, newObligation)
		reamounted := newAmount != existing.Amount
		if relinked || reamounted {
			if existing.IsLinked() {
				if err := s.reverse(tx, existing); err != nil {
					return err
				}
			}
			if newObligation != nil {
				adj, err := s.ledger.ApplyPayment(tx, *newObligation, newAmount)
				if err != nil {
					return err
				}
				if desc == "" && adj.Description != "" {
					updates["description"] = adj.Description
				}
				updates["obligation_id"] = *newObligation
			} else {
				updates["obligation_id"] = nil
			}
			updates["amount"] = newAmount
		}

		if len(updates) > 0 {
			if err := tx.Model(existing).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		result, err = findTransaction(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteTransaction removes a payment, first reversing it on its linked
// obligation. The deleted record is returned.
func (s *transactionService) DeleteTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	var deleted *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findTransaction(tx, id)
		if err != nil {
			return err
		}

		if existing.IsLinked() {
			if err := s.reverse(tx, existing); err != nil {
				return err
			}
		}

		if err := tx.Delete(existing).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		deleted = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// Reconcile inserts one balancing payment per wallet so that the absolute
// sum of the wallet's payments in the period equals the stated remaining
// balance. Wallets already in balance are skipped.
func (s *transactionService) Reconcile(ctx context.Context, input ReconcileInput) ([]models.Transaction, error) {
	if len(input.Wallets) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one wallet balance is required")
	}
	date := s.dateOrToday(input.Date)

	created := []models.Transaction{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		period, err := s.periods.ResolveTx(tx, date)
		if err != nil {
			return err
		}

		personID := input.PersonID
		if personID == 0 {
			var person models.Person
			if err := tx.Where("name = ?", s.primaryPerson).First(&person).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.WithMessage(apperrors.ErrPersonNotFound, "Person '"+s.primaryPerson+"' not found")
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			personID = person.ID
		} else if _, err := findPerson(tx, personID); err != nil {
			return err
		}

		for _, w := range input.Wallets {
			wallet, err := findWallet(tx, w.WalletID)
			if err != nil {
				return err
			}

			current, err := sumAmounts(inPeriod(tx, period).Where("wallet_id = ?", wallet.ID))
			if err != nil {
				return err
			}

			adjustment := -w.Remaining - current
			if adjustment == 0 {
				continue
			}

			t := models.Transaction{
				PersonID:    personID,
				WalletID:    wallet.ID,
				Date:        date,
				Description: strings.ToLower(wallet.Name) + " reconciliation",
				Amount:      adjustment,
			}
			if err := tx.Create(&t).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			logger.Get().Infow("wallet reconciled",
				"wallet", wallet.Name,
				"period_id", period.ID,
				"previous_sum", current,
				"adjustment", adjustment,
			)
			created = append(created, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// reverse undoes t's effect on its linked obligation. A missing obligation is
// skipped so that a payment can still be edited or removed after its
// obligation is gone.
func (s *transactionService) reverse(tx *gorm.DB, t *models.Transaction) error {
	_, err := s.ledger.ReversePayment(tx, *t.ObligationID, t.Amount)
	if errors.Is(err, apperrors.ErrObligationNotFound) {
		s.metrics.ObserveSkippedReversal()
		logger.Get().Warnw("skipping reversal for missing obligation",
			"transaction_id", t.ID,
			"obligation_id", *t.ObligationID,
			"amount", t.Amount,
		)
		return nil
	}
	return err
}

func (s *transactionService) dateOrToday(d *models.Date) models.Date {
	if d != nil && !d.IsZero() {
		return *d
	}
	return clock.Today(s.clock)
}

func sameObligation(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// inPeriod scopes a transactions query to payments dated within period.
func inPeriod(db *gorm.DB, period *models.Period) *gorm.DB {
	return db.Model(&models.Transaction{}).
		Where("date >= ? AND date <= ?", period.StartDate, period.EndDate)
}

// sumAmounts returns SUM(amount) for the query, treating no rows as zero.
func sumAmounts(q *gorm.DB) (int64, error) {
	var total int64
	if err := q.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

func findTransaction(db *gorm.DB, id uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &t, nil
}
