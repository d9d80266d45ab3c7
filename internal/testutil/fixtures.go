package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"ledger/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestPerson creates a person with a unique name.
func CreateTestPerson(t *testing.T, db *gorm.DB) *models.Person {
	t.Helper()
	return CreateTestPersonNamed(t, db, fmt.Sprintf("Person %d", nextID()))
}

// CreateTestPersonNamed creates a person with the given name.
func CreateTestPersonNamed(t *testing.T, db *gorm.DB, name string) *models.Person {
	t.Helper()

	person := &models.Person{Name: name}
	if err := db.Create(person).Error; err != nil {
		t.Fatalf("failed to create test person: %v", err)
	}
	return person
}

// CreateTestWallet creates a wallet with the given name.
func CreateTestWallet(t *testing.T, db *gorm.DB, name string) *models.Wallet {
	t.Helper()

	wallet := &models.Wallet{Name: name}
	if err := db.Create(wallet).Error; err != nil {
		t.Fatalf("failed to create test wallet: %v", err)
	}
	return wallet
}

// CreateTestPeriod creates a period spanning start..end (YYYY-MM-DD, inclusive).
func CreateTestPeriod(t *testing.T, db *gorm.DB, start, end string) *models.Period {
	t.Helper()

	period := &models.Period{
		Name:      fmt.Sprintf("Period %d", nextID()),
		StartDate: models.MustParseDate(start),
		EndDate:   models.MustParseDate(end),
	}
	if err := db.Create(period).Error; err != nil {
		t.Fatalf("failed to create test period: %v", err)
	}
	return period
}

// CreateTestObligation creates an obligation with the given outstanding amount.
func CreateTestObligation(t *testing.T, db *gorm.DB, personID, periodID uint, amount int64) *models.Obligation {
	t.Helper()

	ob := &models.Obligation{
		PersonID:    personID,
		PeriodID:    periodID,
		Description: fmt.Sprintf("Obligation %d", nextID()),
		Amount:      amount,
	}
	if err := db.Create(ob).Error; err != nil {
		t.Fatalf("failed to create test obligation: %v", err)
	}
	return ob
}

// CreateTestTransaction inserts a payment row directly, without touching any
// obligation.
func CreateTestTransaction(t *testing.T, db *gorm.DB, personID, walletID uint, date string, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		PersonID:    personID,
		WalletID:    walletID,
		Date:        models.MustParseDate(date),
		Description: "Test transaction",
		Amount:      amount,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// ObligationAmount reloads an obligation's outstanding amount.
func ObligationAmount(t *testing.T, db *gorm.DB, id uint) int64 {
	t.Helper()

	var ob models.Obligation
	if err := db.First(&ob, id).Error; err != nil {
		t.Fatalf("failed to reload obligation %d: %v", id, err)
	}
	return ob.Amount
}
