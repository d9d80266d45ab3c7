package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"ledger/internal/clock"
	"ledger/internal/config"
	apperrors "ledger/internal/errors"
	"ledger/internal/mirror"
	"ledger/internal/models"
)

// summaryService computes period reports from payments and obligations.
type summaryService struct {
	db        *gorm.DB
	periods   PeriodResolver
	clock     clock.Clock
	cfg       config.LedgerConfig
	publisher *mirror.Publisher
}

// NewSummaryService creates a new SummaryServicer. publisher may be nil.
func NewSummaryService(db *gorm.DB, periods PeriodResolver, c clock.Clock, cfg config.LedgerConfig, publisher *mirror.Publisher) SummaryServicer {
	return &summaryService{db: db, periods: periods, clock: c, cfg: cfg, publisher: publisher}
}

// Summarize builds the personal report for the period containing date.
//
//	remaining = |spent + obligations|
//	dayLeft   = days from date to the end of the period's end month plus GraceDays
//	perDay    = remaining - DailyBaseline * (dayLeft - 1)
//
// Obligations count every person in the period; wallet balances are not
// filtered by person.
func (s *summaryService) Summarize(ctx context.Context, personID uint, date *models.Date) (*Summary, error) {
	d := s.dateOrToday(date)

	var sum *Summary
	var personName string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		person, err := s.person(tx, personID, s.cfg.PrimaryPerson)
		if err != nil {
			return err
		}
		personName = person.Name

		period, err := s.periods.ResolveTx(tx, d)
		if err != nil {
			return err
		}

		spent, err := sumAmounts(inPeriod(tx, period).Where("person_id = ?", person.ID))
		if err != nil {
			return err
		}
		obligations, err := sumAmounts(tx.Model(&models.Obligation{}).Where("period_id = ?", period.ID))
		if err != nil {
			return err
		}
		wallets, err := walletBalances(tx, period)
		if err != nil {
			return err
		}

		remaining := abs(spent + obligations)
		dayLeft := daysLeft(d, period.EndDate, s.cfg.GraceDays)

		sum = &Summary{
			PersonID:        person.ID,
			PeriodID:        period.ID,
			PeriodName:      period.Name,
			Date:            d,
			TotalAmount:     abs(spent),
			ObligationTotal: obligations,
			RemainingAmount: remaining,
			DayLeft:         dayLeft,
			PerDayAmount:    perDayAmount(remaining, s.cfg.DailyBaseline, dayLeft),
			Wallets:         wallets,
		}
		for _, w := range wallets {
			switch w.WalletName {
			case s.cfg.BankWallet:
				sum.BankRemaining = w.Remaining
			case s.cfg.CashWallet:
				sum.CashRemaining = w.Remaining
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if personName == s.cfg.PrimaryPerson {
		s.publisher.PerDay(ctx, sum.PerDayAmount)
	}
	return sum, nil
}

// SummarizeObligations reports one person's obligations for the period
// containing date: what is outstanding, what they paid, and the difference.
func (s *summaryService) SummarizeObligations(ctx context.Context, personID uint, date *models.Date) (*ObligationSummary, error) {
	d := s.dateOrToday(date)

	var sum *ObligationSummary
	var personName string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		person, err := s.person(tx, personID, s.cfg.ObligationPerson)
		if err != nil {
			return err
		}
		personName = person.Name

		period, err := s.periods.ResolveTx(tx, d)
		if err != nil {
			return err
		}

		total, err := sumAmounts(tx.Model(&models.Obligation{}).
			Where("period_id = ? AND person_id = ?", period.ID, person.ID))
		if err != nil {
			return err
		}
		paid, err := sumAmounts(inPeriod(tx, period).Where("person_id = ?", person.ID))
		if err != nil {
			return err
		}

		sum = &ObligationSummary{
			PersonID:        person.ID,
			PeriodID:        period.ID,
			PeriodName:      period.Name,
			Date:            d,
			TotalAmount:     total,
			PaidAmount:      paid,
			RemainingAmount: total - paid,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if personName == s.cfg.ObligationPerson {
		s.publisher.ObligationRemaining(ctx, sum.RemainingAmount)
	}
	return sum, nil
}

// person resolves an explicit id, or the configured default name when id is 0.
func (s *summaryService) person(tx *gorm.DB, id uint, defaultName string) (*models.Person, error) {
	if id != 0 {
		return findPerson(tx, id)
	}
	var person models.Person
	if err := tx.Where("name = ?", defaultName).First(&person).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrPersonNotFound, "Person '"+defaultName+"' not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &person, nil
}

func (s *summaryService) dateOrToday(d *models.Date) models.Date {
	if d != nil && !d.IsZero() {
		return *d
	}
	return clock.Today(s.clock)
}

// walletBalances lists every wallet with the absolute sum of its payments in
// period. Wallets without payments report zero.
func walletBalances(tx *gorm.DB, period *models.Period) ([]WalletBalance, error) {
	var wallets []models.Wallet
	if err := tx.Order("name ASC").Find(&wallets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rows []struct {
		WalletID uint
		Total    int64
	}
	if err := inPeriod(tx, period).
		Select("wallet_id, COALESCE(SUM(amount), 0) AS total").
		Group("wallet_id").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	totals := make(map[uint]int64, len(rows))
	for _, r := range rows {
		totals[r.WalletID] = r.Total
	}

	out := make([]WalletBalance, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, WalletBalance{
			WalletID:   w.ID,
			WalletName: w.Name,
			Remaining:  abs(totals[w.ID]),
		})
	}
	return out, nil
}

// daysLeft counts whole days from date to the grace boundary: the last day
// of periodEnd's month plus graceDays.
func daysLeft(date, periodEnd models.Date, graceDays int) int {
	return date.DaysUntil(periodEnd.EndOfMonth().AddDays(graceDays))
}

// perDayAmount reserves baseline for every remaining day after today.
func perDayAmount(remaining, baseline int64, dayLeft int) int64 {
	return remaining - baseline*int64(dayLeft-1)
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
