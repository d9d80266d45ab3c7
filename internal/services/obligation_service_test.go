package services

import (
	"context"
	"testing"

	"ledger/internal/models"
	"ledger/internal/optional"
	"ledger/internal/testutil"
)

func TestCreateObligation(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv(t, nil)

	t.Run("success", func(t *testing.T) {
		ob, err := env.obligations.CreateObligation(ctx, CreateObligationInput{
			PersonID:    env.nhi.ID,
			PeriodID:    env.period.ID,
			Description: "Rent",
			Amount:      12000,
		})
		testutil.AssertNoError(t, err)
		if ob.ID == 0 || ob.Amount != 12000 || ob.Description != "Rent" {
			t.Errorf("unexpected obligation %+v", ob)
		}
	})

	t.Run("zero_amount_allowed", func(t *testing.T) {
		_, err := env.obligations.CreateObligation(ctx, CreateObligationInput{
			PersonID: env.nhi.ID, PeriodID: env.period.ID, Amount: 0,
		})
		testutil.AssertNoError(t, err)
	})

	t.Run("negative_amount", func(t *testing.T) {
		_, err := env.obligations.CreateObligation(ctx, CreateObligationInput{
			PersonID: env.nhi.ID, PeriodID: env.period.ID, Amount: -1,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_person", func(t *testing.T) {
		_, err := env.obligations.CreateObligation(ctx, CreateObligationInput{
			PersonID: 404, PeriodID: env.period.ID, Amount: 10,
		})
		testutil.AssertAppError(t, err, "PERSON_NOT_FOUND")
	})

	t.Run("unknown_period", func(t *testing.T) {
		_, err := env.obligations.CreateObligation(ctx, CreateObligationInput{
			PersonID: env.nhi.ID, PeriodID: 404, Amount: 10,
		})
		testutil.AssertAppError(t, err, "PERIOD_NOT_FOUND")
	})

	t.Run("missing_ids", func(t *testing.T) {
		_, err := env.obligations.CreateObligation(ctx, CreateObligationInput{Amount: 10})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestListObligations(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv(t, nil)
	next := testutil.CreateTestPeriod(t, env.db, "2025-11-28", "2025-12-27")

	a := testutil.CreateTestObligation(t, env.db, env.nhi.ID, env.period.ID, 100)
	b := testutil.CreateTestObligation(t, env.db, env.me.ID, env.period.ID, 200)
	testutil.CreateTestObligation(t, env.db, env.nhi.ID, next.ID, 300)

	t.Run("defaults_to_today", func(t *testing.T) {
		list, err := env.obligations.ListObligations(ctx, nil)
		testutil.AssertNoError(t, err)

		if list.Period.ID != env.period.ID {
			t.Errorf("expected period %d, got %d", env.period.ID, list.Period.ID)
		}
		if len(list.Records) != 2 || list.Records[0].ID != a.ID || list.Records[1].ID != b.ID {
			t.Errorf("unexpected records %+v", list.Records)
		}
	})

	t.Run("explicit_date", func(t *testing.T) {
		list, err := env.obligations.ListObligations(ctx, datePtr("2025-12-01"))
		testutil.AssertNoError(t, err)
		if list.Period.ID != next.ID || len(list.Records) != 1 {
			t.Errorf("expected one obligation in the next period, got %d", len(list.Records))
		}
	})

	t.Run("no_period", func(t *testing.T) {
		_, err := env.obligations.ListObligations(ctx, datePtr("2031-06-01"))
		testutil.AssertAppError(t, err, "PERIOD_NOT_FOUND")
	})
}

func TestUpdateObligation(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv(t, nil)
	ob := testutil.CreateTestObligation(t, env.db, env.nhi.ID, env.period.ID, 500)

	t.Run("partial", func(t *testing.T) {
		updated, err := env.obligations.UpdateObligation(ctx, ob.ID, ObligationUpdate{
			Description: optional.Of("Tuition"),
			Amount:      optional.Of(int64(750)),
		})
		testutil.AssertNoError(t, err)
		if updated.Description != "Tuition" || updated.Amount != 750 || updated.PersonID != env.nhi.ID {
			t.Errorf("unexpected obligation %+v", updated)
		}
	})

	t.Run("negative_amount", func(t *testing.T) {
		_, err := env.obligations.UpdateObligation(ctx, ob.ID, ObligationUpdate{Amount: optional.Of(int64(-5))})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_period", func(t *testing.T) {
		_, err := env.obligations.UpdateObligation(ctx, ob.ID, ObligationUpdate{PeriodID: optional.Of(uint(99))})
		testutil.AssertAppError(t, err, "PERIOD_NOT_FOUND")
	})

	t.Run("no_fields", func(t *testing.T) {
		_, err := env.obligations.UpdateObligation(ctx, ob.ID, ObligationUpdate{})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := env.obligations.UpdateObligation(ctx, 999, ObligationUpdate{Amount: optional.Of(int64(1))})
		testutil.AssertAppError(t, err, "OBLIGATION_NOT_FOUND")
	})
}

func TestDeleteObligation(t *testing.T) {
	ctx := context.Background()

	t.Run("unlinks_payments", func(t *testing.T) {
		env := newLedgerEnv(t, nil)
		ob := testutil.CreateTestObligation(t, env.db, env.nhi.ID, env.period.ID, 500)

		tx, err := env.transactions.CreateTransaction(ctx, CreateTransactionInput{
			PersonID: env.nhi.ID, WalletID: env.bank.ID, ObligationID: &ob.ID, Amount: 200,
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, env.obligations.DeleteObligation(ctx, ob.ID))

		_, err = env.obligations.GetObligationByID(ctx, ob.ID)
		testutil.AssertAppError(t, err, "OBLIGATION_NOT_FOUND")

		kept, err := env.transactions.GetTransactionByID(ctx, tx.ID)
		testutil.AssertNoError(t, err)
		if kept.IsLinked() {
			t.Error("expected payment to be unlinked")
		}
		if kept.Amount != 200 {
			t.Errorf("expected payment amount kept, got %d", kept.Amount)
		}

		// The payment no longer touches any obligation.
		_, err = env.transactions.DeleteTransaction(ctx, tx.ID)
		testutil.AssertNoError(t, err)

		var count int64
		env.db.Model(&models.Obligation{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no obligations, got %d", count)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		env := newLedgerEnv(t, nil)
		testutil.AssertAppError(t, env.obligations.DeleteObligation(ctx, 1), "OBLIGATION_NOT_FOUND")
	})
}
