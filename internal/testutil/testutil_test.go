package testutil_test

import (
	"testing"

	"ledger/internal/errors"
	"ledger/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"people", "wallets", "periods", "obligations", "transactions", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDBIsolated(t *testing.T) {
	a := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, a)
	b := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, b)

	testutil.CreateTestPersonNamed(t, a, "Me")

	var count int64
	if err := b.Table("people").Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected second database to be empty, got %d people", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	person := testutil.CreateTestPerson(t, db)
	if person.ID == 0 {
		t.Fatal("person should have a non-zero ID")
	}

	wallet := testutil.CreateTestWallet(t, db, "Cash")
	period := testutil.CreateTestPeriod(t, db, "2025-10-28", "2025-11-27")
	if period.StartDate.String() != "2025-10-28" {
		t.Errorf("unexpected start date %s", period.StartDate)
	}

	ob := testutil.CreateTestObligation(t, db, person.ID, period.ID, 48000)
	if got := testutil.ObligationAmount(t, db, ob.ID); got != 48000 {
		t.Errorf("expected amount 48000, got %d", got)
	}

	tx := testutil.CreateTestTransaction(t, db, person.ID, wallet.ID, "2025-11-01", -616)
	if tx.IsLinked() {
		t.Error("fixture transaction should be unlinked")
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrObligationNotFound, "custom message")
	testutil.AssertAppError(t, err, "OBLIGATION_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
