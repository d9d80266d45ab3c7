package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"ledger/internal/clock"
	"ledger/internal/config"
	"ledger/internal/logger"
	"ledger/internal/mirror"
	"ledger/internal/models"
	"ledger/internal/testutil"
)

func init() {
	logger.Init("test", "")
}

// ledgerEnv wires the services the way cmd/api does, over a fresh database
// with one period (2025-10-28..2025-11-27), the default people and wallets,
// and a clock frozen inside the period.
type ledgerEnv struct {
	db           *gorm.DB
	cfg          config.LedgerConfig
	clock        clock.Clock
	periods      PeriodServicer
	ledger       ObligationLedger
	obligations  ObligationServicer
	transactions TransactionServicer
	summaries    SummaryServicer

	period *models.Period
	me     *models.Person
	nhi    *models.Person
	cash   *models.Wallet
	bank   *models.Wallet
}

func newLedgerEnv(t *testing.T, publisher *mirror.Publisher) *ledgerEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	cfg, _ := config.Defaults()
	c := clock.Frozen(time.Date(2025, 11, 10, 9, 30, 0, 0, time.FixedZone("UTC+7", 7*3600)))
	periods := NewPeriodService(db, cfg.StrictPeriods)
	ledger := NewObligationLedger(nil)

	return &ledgerEnv{
		db:           db,
		cfg:          cfg,
		clock:        c,
		periods:      periods,
		ledger:       ledger,
		obligations:  NewObligationService(db, periods, c),
		transactions: NewTransactionService(db, periods, ledger, c, nil, cfg.PrimaryPerson),
		summaries:    NewSummaryService(db, periods, c, cfg, publisher),

		period: testutil.CreateTestPeriod(t, db, "2025-10-28", "2025-11-27"),
		me:     testutil.CreateTestPersonNamed(t, db, cfg.PrimaryPerson),
		nhi:    testutil.CreateTestPersonNamed(t, db, cfg.ObligationPerson),
		cash:   testutil.CreateTestWallet(t, db, cfg.CashWallet),
		bank:   testutil.CreateTestWallet(t, db, cfg.BankWallet),
	}
}

func datePtr(s string) *models.Date {
	d := models.MustParseDate(s)
	return &d
}

func strPtr(s string) *string { return &s }

func uintPtr(n uint) *uint { return &n }
