package services

import (
	"context"
	"testing"

	"golang.org/x/sync/errgroup"

	"ledger/internal/models"
	"ledger/internal/optional"
	"ledger/internal/testutil"
)

func TestCreateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("unlinked_defaults_to_today", func(t *testing.T) {
		env := newLedgerEnv(t, nil)

		tx, err := env.transactions.CreateTransaction(ctx, CreateTransactionInput{
			PersonID:    env.me.ID,
			WalletID:    env.cash.ID,
			Description: strPtr("Coffee"),
			Amount:      -45,
		})
		testutil.AssertNoError(t, err)

		if tx.Date.String() != "2025-11-10" {
			t.Errorf("expected today's date in UTC+7, got %s", tx.Date)
		}
		if tx.IsLinked() || tx.Description != "Coffee" {
			t.Errorf("unexpected transaction %+v", tx)
		}
	})

	t.Run("linked_applies_payment_and_adopts_description", func(t *testing.T) {
		env := newLedgerEnv(t, nil)
		ob := testutil.CreateTestObligation(t, env.db, env.nhi.ID, env.period.ID, 48000)

		tx, err := env.transactions.CreateTransaction(ctx, CreateTransactionInput{
			PersonID:     env.nhi.ID,
			WalletID:     env.bank.ID,
			ObligationID: &ob.ID,
			Date:         datePtr("2025-11-01"),
			Amount:       6500,
		})
		testutil.AssertNoError(t, err)

		if tx.Description != ob.Description {
			t.Errorf("expected description %q, got %q", ob.Description, tx.Description)
		}
		if tx.ObligationID == nil || *tx.ObligationID != ob.ID {
			t.Errorf("expected link to obligation %d", ob.ID)
		}
		if got := testutil.ObligationAmount(t, env.db, ob.ID); got != 41500 {
			t.Errorf("expected obligation 41500, got %d", got)
		}
	})

	t.Run("explicit_description_wins", func(t *testing.T) {
		env := newLedgerEnv(t, nil)
		ob := testutil.CreateTestObligation(t, env.db, env.nhi.ID, env.period.ID, 100)

		tx, err := env.transactions.CreateTransaction(ctx, CreateTransactionInput{
			PersonID:     env.nhi.ID,
			WalletID:     env.bank.ID,
			ObligationID: &ob.ID,
			Description:  strPtr("Rent, first half"),
			Amount:       50,
		})
		testutil.AssertNoError(t, err)
		if tx.Description != "Rent, first half" {
			t.Errorf("expected caller description, got %q", tx.Description)
		}
	})

	t.Run("period_not_found_aborts", func(t *testing.T) {
		env := newLedgerEnv(t, nil)
		ob := testutil.CreateTestObligation(t, env.db, env.nhi.ID, env.period.ID, 1000)

		_, err := env.transactions.CreateTransaction(ctx, CreateTransactionInput{
			PersonID:     env.me.ID,
			WalletID:     env.cash.ID,
			ObligationID: &ob.ID,
			Date:         datePtr("2026-01-15"),
			Amount:       100,
		})
		testutil.AssertAppError(t, err, "PERIOD_NOT_FOUND")

		if got := testutil.ObligationAmount(t, env.db, ob.ID); got != 1000 {
			t.Errorf("obligation must be untouched, got %d", got)
		}
	})

	t.Run("obligation_not_found_aborts", func(t *testing.T) {
		env := newLedgerEnv(t, nil)

		_, err := env.transactions.CreateTransaction(ctx, CreateTransactionInput{
			PersonID:     env.me.ID,
			WalletID:     env.cash.ID,
			ObligationID: uintPtr(999),
			Amount:       100,
		})
		testutil.AssertAppError(t, err, "OBLIGATION_NOT_FOUND")

		var count int64
		env.db.Model(&models.Transaction{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no transaction rows, got %d", count)
		}
	})

	t.Run("wallet_not_found_rolls_back", func(t *testing.T) {
		env := newLedgerEnv(t, nil)
		ob := testutil.CreateTestObligation(t, env.db, env.nhi.ID, env.period.ID, 1000)

		_, err := env.transactions.CreateTransaction(ctx, CreateTransactionInput{
			PersonID:     env.me.ID,
			WalletID:     777,
			ObligationID: &ob.ID,
			Amount:       100,
		})
		testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")
		if got := testutil.ObligationAmount(t, env.db, ob.ID); got != 1000 {
			t.Errorf("obligation must be untouched, got %d", got)
		}
	})

	t.Run("missing_ids", func(t *testing.T) {
		env := newLedgerEnv(t, nil)

		_, err := env.transactions.CreateTransaction(ctx, CreateTransactionInput{WalletID: env.cash.ID, Amount: 1})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, err = env.transactions.CreateTransaction(ctx, CreateTransactionInput{PersonID: env.me.ID, Amount: 1})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestUpdateTransaction(t *testing.T) {
	ctx := context.Background()

	// O1=150, O2=80. Pay 100 against O1, then move the payment to O2.
	t.Run("relink_reverses_old_and_applies_new", func(t *testing.T) {
		env := newLedgerEnv(t, nil)
		o1 := testutil.CreateTestObligation(t, env.db, env.nhi.ID, env.period.ID, 150)
		o2 := testutil.CreateTestObligation(t, env.db, env.nhi.ID, env.period.ID, 80)

		tx, err := env.transactions.CreateTransaction(ctx, CreateTransactionInput{
			PersonID:     env.nhi.ID,
			WalletID:     env.bank.ID,
			ObligationID: &o1.ID,
			Amount:       100,
		})
		testutil.AssertNoError(t, err)
		if got := testutil.ObligationAmount(t, env.db, o1.ID); got != 50 {
			t.Fatalf("expected O1 at 50 after payment, got %d", got)
		}

		updated, err := env.transactions.UpdateTransaction(ctx, tx.ID, TransactionUpdate{
			ObligationID: optional.Of(&o2.ID),
		})
		testutil.AssertNoError(t, err)

		if got := testutil.ObligationAmount(t, env.db, o1.ID); got != 150 {
			t.Errorf("expected O1 restored to 150, got %d", got)
		}
		if got := testutil.ObligationAmount(t, env.db, o2.ID); got != 0 {
			t.Errorf("expected O2 clamped to 0, got %d", got)
		}
		if updated.ObligationID == nil || *updated.ObligationID != o2.ID {
			t.Errorf("expected link to O2, got %v", updated.ObligationID)
		}
		if updated.Description != o2.Description {
			t.Errorf("expected O2 description adopted, got %q", updated.Description)
		}
	})

	t.Run("reamount_same_obligation", func(t *testing.T) {
		env := newLedgerEnv(t, nil)
		ob := testutil.CreateTestObligation(t, env.db, env.nhi.ID, env.period.ID, 1000)

		tx, err := env.transactions.CreateTransaction(ctx, CreateTransactionInput{
			PersonID: env.nhi.ID, WalletID: env.bank.ID, ObligationID: &ob.ID, Amount: 300,
		})
		testutil.AssertNoError(t, err)

		updated, err := env.transactions.UpdateTransaction(ctx, tx.ID, TransactionUpdate{Amount: optional.Of(int64(450))})
		testutil.AssertNoError(t, err)

		if updated.Amount != 450 {
			t.Errorf("expected amount 450, got %d", updated.Amount)
		}
		if got := testutil.ObligationAmount(t, env.db, ob.ID); got != 550 {
			t.Errorf("expected 1000-450=550, got %d", got)
		}
	})

	t.Run("unlink_with_null", func(t *testing.T) {
		env := newLedgerEnv(t, nil)
		ob := testutil.CreateTestObligation(t, env.db, env.nhi.ID, env.period.ID, 1000)

		tx, err := env.transactions.CreateTransaction(ctx, CreateTransactionInput{
			PersonID: env.nhi.ID, WalletID: env.bank.ID, ObligationID: &ob.ID, Amount: 300,
		})
		testutil.AssertNoError(t, err)

		updated, err := env.transactions.UpdateTransaction(ctx, tx.ID, TransactionUpdate{
			ObligationID: optional.Of[*uint](nil),
		})
		testutil.AssertNoError(t, err)

		if updated.IsLinked() {
			t.Error("expected payment to be unlinked")
		}
		if got := testutil.ObligationAmount(t, env.db, ob.ID); got != 1000 {
			t.Errorf("expected obligation restored to 1000, got %d", got)
		}
	})

	t.Run("link_previously_unlinked", func(t *testing.T) {
		env := newLedgerEnv(t, nil)
		ob := testutil.CreateTestObligation(t, env.db, env.nhi.ID, env.period.ID, 1000)
		tx := testutil.CreateTestTransaction(t, env.db, env.nhi.ID, env.bank.ID, "2025-11-02", 200)

		_, err := env.transactions.UpdateTransaction(ctx, tx.ID, TransactionUpdate{ObligationID: optional.Of(&ob.ID)})
		testutil.AssertNoError(t, err)
		if got := testutil.ObligationAmount(t, env.db, ob.ID); got != 800 {
			t.Errorf("expected 800, got %d", got)
		}
	})

	t.Run("non_ledger_fields_skip_ledger", func(t *testing.T) {
		env := newLedgerEnv(t, nil)
		ob := testutil.CreateTestObligation(t, env.db, env.nhi.ID, env.period.ID, 1000)

		tx, err := env.transactions.CreateTransaction(ctx, CreateTransactionInput{
			PersonID: env.nhi.ID, WalletID: env.bank.ID, ObligationID: &ob.ID, Amount: 300,
		})
		testutil.AssertNoError(t, err)

		updated, err := env.transactions.UpdateTransaction(ctx, tx.ID, TransactionUpdate{
			Description:  optional.Of("Renamed"),
			WalletID:     optional.Of(env.cash.ID),
			Date:         optional.Of(models.MustParseDate("2025-11-20")),
			ObligationID: optional.Of(&ob.ID),
			Amount:       optional.Of(int64(300)),
		})
		testutil.AssertNoError(t, err)

		if updated.Description != "Renamed" || updated.WalletID != env.cash.ID || updated.Date.String() != "2025-11-20" {
			t.Errorf("unexpected update result %+v", updated)
		}
		if got := testutil.ObligationAmount(t, env.db, ob.ID); got != 700 {
			t.Errorf("expected obligation untouched at 700, got %d", got)
		}
	})

	t.Run("new_obligation_missing_rolls_back", func(t *testing.T) {
		env := newLedgerEnv(t, nil)
		ob := testutil.CreateTestObligation(t, env.db, env.nhi.ID, env.period.ID, 1000)

		tx, err := env.transactions.CreateTransaction(ctx, CreateTransactionInput{
			PersonID: env.nhi.ID, WalletID: env.bank.ID, ObligationID: &ob.ID, Amount: 300,
		})
		testutil.AssertNoError(t, err)

		_, err = env.transactions.UpdateTransaction(ctx, tx.ID, TransactionUpdate{ObligationID: optional.Of(uintPtr(999))})
		testutil.AssertAppError(t, err, "OBLIGATION_NOT_FOUND")

		if got := testutil.ObligationAmount(t, env.db, ob.ID); got != 700 {
			t.Errorf("expected reversal rolled back (700), got %d", got)
		}
		reloaded, err := env.transactions.GetTransactionByID(ctx, tx.ID)
		testutil.AssertNoError(t, err)
		if reloaded.ObligationID == nil || *reloaded.ObligationID != ob.ID {
			t.Error("expected original link to survive")
		}
	})

	t.Run("date_outside_periods", func(t *testing.T) {
		env := newLedgerEnv(t, nil)
		tx := testutil.CreateTestTransaction(t, env.db, env.me.ID, env.cash.ID, "2025-11-02", -10)

		_, err := env.transactions.UpdateTransaction(ctx, tx.ID, TransactionUpdate{Date: optional.Of(models.MustParseDate("2024-01-01"))})
		testutil.AssertAppError(t, err, "PERIOD_NOT_FOUND")
	})

	t.Run("no_fields", func(t *testing.T) {
		env := newLedgerEnv(t, nil)
		tx := testutil.CreateTestTransaction(t, env.db, env.me.ID, env.cash.ID, "2025-11-02", -10)

		_, err := env.transactions.UpdateTransaction(ctx, tx.ID, TransactionUpdate{})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("not_found", func(t *testing.T) {
		env := newLedgerEnv(t, nil)

		_, err := env.transactions.UpdateTransaction(ctx, 12345, TransactionUpdate{Amount: optional.Of(int64(1))})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("linked_reverses_payment", func(t *testing.T) {
		env := newLedgerEnv(t, nil)
		ob := testutil.CreateTestObligation(t, env.db, env.nhi.ID, env.period.ID, 700)

		tx, err := env.transactions.CreateTransaction(ctx, CreateTransactionInput{
			PersonID: env.nhi.ID, WalletID: env.bank.ID, ObligationID: &ob.ID, Amount: 250,
		})
		testutil.AssertNoError(t, err)

		deleted, err := env.transactions.DeleteTransaction(ctx, tx.ID)
		testutil.AssertNoError(t, err)
		if deleted.ID != tx.ID {
			t.Errorf("expected deleted record %d, got %d", tx.ID, deleted.ID)
		}
		if got := testutil.ObligationAmount(t, env.db, ob.ID); got != 700 {
			t.Errorf("expected obligation restored by 250 to 700, got %d", got)
		}

		_, err = env.transactions.GetTransactionByID(ctx, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("missing_obligation_is_skipped", func(t *testing.T) {
		env := newLedgerEnv(t, nil)
		tx := testutil.CreateTestTransaction(t, env.db, env.nhi.ID, env.bank.ID, "2025-11-02", 100)
		env.db.Model(tx).Update("obligation_id", 4242)

		_, err := env.transactions.DeleteTransaction(ctx, tx.ID)
		testutil.AssertNoError(t, err)
	})

	t.Run("not_found", func(t *testing.T) {
		env := newLedgerEnv(t, nil)

		_, err := env.transactions.DeleteTransaction(ctx, 5)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

// Obligation of 48000; a 6500 payment leaves 41500; deleting the payment
// restores 48000.
func TestObligationPaymentScenario(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv(t, nil)

	ob, err := env.obligations.CreateObligation(ctx, CreateObligationInput{
		PersonID:    env.nhi.ID,
		PeriodID:    env.period.ID,
		Description: "Tuition",
		Amount:      48000,
	})
	testutil.AssertNoError(t, err)

	tx, err := env.transactions.CreateTransaction(ctx, CreateTransactionInput{
		PersonID:     env.nhi.ID,
		WalletID:     env.bank.ID,
		ObligationID: &ob.ID,
		Amount:       6500,
	})
	testutil.AssertNoError(t, err)
	if got := testutil.ObligationAmount(t, env.db, ob.ID); got != 41500 {
		t.Fatalf("expected 41500 after payment, got %d", got)
	}

	_, err = env.transactions.DeleteTransaction(ctx, tx.ID)
	testutil.AssertNoError(t, err)
	if got := testutil.ObligationAmount(t, env.db, ob.ID); got != 48000 {
		t.Errorf("expected 48000 after delete, got %d", got)
	}
}

func TestListTransactions(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv(t, nil)
	testutil.CreateTestPeriod(t, env.db, "2025-11-28", "2025-12-27")

	first := testutil.CreateTestTransaction(t, env.db, env.me.ID, env.cash.ID, "2025-10-28", -10)
	second := testutil.CreateTestTransaction(t, env.db, env.nhi.ID, env.bank.ID, "2025-11-27", -20)
	testutil.CreateTestTransaction(t, env.db, env.me.ID, env.cash.ID, "2025-11-28", -30)

	list, err := env.transactions.ListTransactions(ctx, nil)
	testutil.AssertNoError(t, err)

	if list.PeriodID != env.period.ID || list.PeriodName != env.period.Name {
		t.Errorf("unexpected period %d %q", list.PeriodID, list.PeriodName)
	}
	if list.TotalRecords != 2 {
		t.Fatalf("expected 2 records in period, got %d", list.TotalRecords)
	}
	if list.Records[0].ID != second.ID || list.Records[1].ID != first.ID {
		t.Errorf("expected newest first, got %d then %d", list.Records[0].ID, list.Records[1].ID)
	}

	_, err = env.transactions.ListTransactions(ctx, datePtr("2030-01-01"))
	testutil.AssertAppError(t, err, "PERIOD_NOT_FOUND")
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("balances_each_wallet", func(t *testing.T) {
		env := newLedgerEnv(t, nil)
		testutil.CreateTestTransaction(t, env.db, env.me.ID, env.cash.ID, "2025-11-01", -300)
		testutil.CreateTestTransaction(t, env.db, env.nhi.ID, env.cash.ID, "2025-11-02", -200)
		testutil.CreateTestTransaction(t, env.db, env.me.ID, env.bank.ID, "2025-11-03", -1000)

		created, err := env.transactions.Reconcile(ctx, ReconcileInput{
			Wallets: []WalletRemaining{
				{WalletID: env.cash.ID, Remaining: 450},
				{WalletID: env.bank.ID, Remaining: 1000},
			},
		})
		testutil.AssertNoError(t, err)

		if len(created) != 1 {
			t.Fatalf("expected only the cash wallet to need an adjustment, got %d", len(created))
		}
		adj := created[0]
		if adj.WalletID != env.cash.ID || adj.Amount != 50 || adj.PersonID != env.me.ID {
			t.Errorf("unexpected adjustment %+v", adj)
		}
		if adj.Description != "cash reconciliation" {
			t.Errorf("unexpected description %q", adj.Description)
		}

		sum, err := env.summaries.Summarize(ctx, 0, nil)
		testutil.AssertNoError(t, err)
		if sum.CashRemaining != 450 || sum.BankRemaining != 1000 {
			t.Errorf("expected wallets at 450/1000, got %d/%d", sum.CashRemaining, sum.BankRemaining)
		}
	})

	t.Run("unknown_wallet_rolls_back", func(t *testing.T) {
		env := newLedgerEnv(t, nil)

		_, err := env.transactions.Reconcile(ctx, ReconcileInput{
			Wallets: []WalletRemaining{
				{WalletID: env.cash.ID, Remaining: 100},
				{WalletID: 999, Remaining: 100},
			},
		})
		testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")

		var count int64
		env.db.Model(&models.Transaction{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no rows after rollback, got %d", count)
		}
	})

	t.Run("requires_wallets", func(t *testing.T) {
		env := newLedgerEnv(t, nil)

		_, err := env.transactions.Reconcile(ctx, ReconcileInput{})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestZeroObligationID(t *testing.T) {
	ctx := context.Background()

	t.Run("create_with_zero_is_unlinked", func(t *testing.T) {
		env := newLedgerEnv(t, nil)

		tx, err := env.transactions.CreateTransaction(ctx, CreateTransactionInput{
			PersonID:     env.me.ID,
			WalletID:     env.cash.ID,
			ObligationID: uintPtr(0),
			Description:  strPtr("Lunch"),
			Amount:       -60,
		})
		testutil.AssertNoError(t, err)
		if tx.IsLinked() {
			t.Errorf("expected unlinked transaction, got obligation %v", *tx.ObligationID)
		}
	})

	t.Run("update_with_zero_unlinks", func(t *testing.T) {
		env := newLedgerEnv(t, nil)
		ob := testutil.CreateTestObligation(t, env.db, env.nhi.ID, env.period.ID, 1000)

		tx, err := env.transactions.CreateTransaction(ctx, CreateTransactionInput{
			PersonID:     env.nhi.ID,
			WalletID:     env.bank.ID,
			ObligationID: &ob.ID,
			Amount:       300,
		})
		testutil.AssertNoError(t, err)

		updated, err := env.transactions.UpdateTransaction(ctx, tx.ID, TransactionUpdate{
			ObligationID: optional.Of(uintPtr(0)),
		})
		testutil.AssertNoError(t, err)
		if updated.IsLinked() {
			t.Error("expected transaction to be unlinked")
		}
		if got := testutil.ObligationAmount(t, env.db, ob.ID); got != 1000 {
			t.Errorf("expected obligation restored to 1000, got %d", got)
		}
	})
}

func TestConcurrentPayments(t *testing.T) {
	ctx := context.Background()

	t.Run("concurrent_payments_do_not_lose_updates", func(t *testing.T) {
		env := newLedgerEnv(t, nil)

		// SQLite has no row locks; writers are serialized by the single
		// connection. Pin it so the assertion holds whatever the pool default.
		sqlDB, err := env.db.DB()
		testutil.AssertNoError(t, err)
		sqlDB.SetMaxOpenConns(1)

		const (
			start    = int64(100000)
			payments = 20
			amount   = int64(100)
		)
		ob := testutil.CreateTestObligation(t, env.db, env.nhi.ID, env.period.ID, start)

		var g errgroup.Group
		for i := 0; i < payments; i++ {
			g.Go(func() error {
				_, err := env.transactions.CreateTransaction(ctx, CreateTransactionInput{
					PersonID:     env.nhi.ID,
					WalletID:     env.bank.ID,
					ObligationID: &ob.ID,
					Amount:       amount,
				})
				return err
			})
		}
		testutil.AssertNoError(t, g.Wait())

		if got, want := testutil.ObligationAmount(t, env.db, ob.ID), start-payments*amount; got != want {
			t.Errorf("expected obligation %d after %d payments, got %d", want, payments, got)
		}

		var count int64
		testutil.AssertNoError(t, env.db.Model(&models.Transaction{}).Where("obligation_id = ?", ob.ID).Count(&count).Error)
		if count != payments {
			t.Errorf("expected %d linked payments, got %d", payments, count)
		}
	})
}
