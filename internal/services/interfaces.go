package services

import (
	"context"

	"gorm.io/gorm"

	"ledger/internal/models"
	"ledger/internal/optional"
)

// DirectoryServicer manages the people and wallets payments are attributed to.
type DirectoryServicer interface {
	CreatePerson(ctx context.Context, name string) (*models.Person, error)
	ListPeople(ctx context.Context) ([]models.Person, error)
	GetPersonByID(ctx context.Context, id uint) (*models.Person, error)
	GetPersonByName(ctx context.Context, name string) (*models.Person, error)
	CreateWallet(ctx context.Context, name string) (*models.Wallet, error)
	ListWallets(ctx context.Context) ([]models.Wallet, error)
	GetWalletByID(ctx context.Context, id uint) (*models.Wallet, error)
	GetWalletByName(ctx context.Context, name string) (*models.Wallet, error)
}

// PeriodResolver maps a calendar date to the period containing it.
type PeriodResolver interface {
	Resolve(ctx context.Context, date models.Date) (*models.Period, error)
	// ResolveTx resolves within an open database transaction.
	ResolveTx(tx *gorm.DB, date models.Date) (*models.Period, error)
}

// PeriodUpdate lists the period fields a caller may change. Unset fields are
// left alone.
type PeriodUpdate struct {
	Name      optional.Field[string]      `json:"name"`
	StartDate optional.Field[models.Date] `json:"start_date"`
	EndDate   optional.Field[models.Date] `json:"end_date"`
}

// PeriodServicer defines the contract for billing period management.
type PeriodServicer interface {
	PeriodResolver
	CreatePeriod(ctx context.Context, name string, start, end models.Date) (*models.Period, error)
	ListPeriods(ctx context.Context) ([]models.Period, error)
	GetPeriodByID(ctx context.Context, id uint) (*models.Period, error)
	UpdatePeriod(ctx context.Context, id uint, update PeriodUpdate) (*models.Period, error)
	DeletePeriod(ctx context.Context, id uint) error
}

// LedgerAdjustment describes one change to an obligation's outstanding amount.
type LedgerAdjustment struct {
	ObligationID   uint   `json:"obligation_id"`
	PreviousAmount int64  `json:"previous_amount"`
	NewAmount      int64  `json:"new_amount"`
	Description    string `json:"description"`
}

// ObligationLedger moves an obligation's outstanding amount as payments are
// applied and reversed. Both operations must run inside the caller's
// database transaction.
type ObligationLedger interface {
	ApplyPayment(tx *gorm.DB, obligationID uint, amount int64) (*LedgerAdjustment, error)
	ReversePayment(tx *gorm.DB, obligationID uint, amount int64) (*LedgerAdjustment, error)
}

// CreateObligationInput holds the fields of a new obligation.
type CreateObligationInput struct {
	PersonID    uint
	PeriodID    uint
	Description string
	Amount      int64
}

// ObligationUpdate lists the obligation fields a caller may change.
type ObligationUpdate struct {
	PersonID    optional.Field[uint]   `json:"person_id"`
	PeriodID    optional.Field[uint]   `json:"period_id"`
	Description optional.Field[string] `json:"description"`
	Amount      optional.Field[int64]  `json:"amount"`
}

// ObligationList is the set of obligations belonging to one period.
type ObligationList struct {
	Period  *models.Period      `json:"period"`
	Records []models.Obligation `json:"records"`
}

// ObligationServicer defines the contract for obligation management.
type ObligationServicer interface {
	CreateObligation(ctx context.Context, input CreateObligationInput) (*models.Obligation, error)
	GetObligationByID(ctx context.Context, id uint) (*models.Obligation, error)
	ListObligations(ctx context.Context, date *models.Date) (*ObligationList, error)
	UpdateObligation(ctx context.Context, id uint, update ObligationUpdate) (*models.Obligation, error)
	DeleteObligation(ctx context.Context, id uint) error
}

// CreateTransactionInput holds the fields of a new payment. A nil Date means
// today; a nil or empty Description on a linked payment adopts the
// obligation's description.
type CreateTransactionInput struct {
	PersonID     uint
	WalletID     uint
	ObligationID *uint
	Date         *models.Date
	Description  *string
	Amount       int64
}

// TransactionUpdate lists the payment fields a caller may change. Setting
// ObligationID to null unlinks the payment.
type TransactionUpdate struct {
	PersonID     optional.Field[uint]        `json:"person_id"`
	WalletID     optional.Field[uint]        `json:"wallet_id"`
	ObligationID optional.Field[*uint]       `json:"obligation_id"`
	Date         optional.Field[models.Date] `json:"date"`
	Description  optional.Field[string]      `json:"description"`
	Amount       optional.Field[int64]       `json:"amount"`
}

// IsEmpty reports whether no field was supplied.
func (u TransactionUpdate) IsEmpty() bool {
	return !u.PersonID.Set && !u.WalletID.Set && !u.ObligationID.Set &&
		!u.Date.Set && !u.Description.Set && !u.Amount.Set
}

// TransactionList is the set of payments dated within one period.
type TransactionList struct {
	PeriodID     uint                 `json:"period_id"`
	PeriodName   string               `json:"period_name"`
	TotalRecords int                  `json:"total_records"`
	Records      []models.Transaction `json:"records"`
}

// WalletRemaining is the real balance left in a wallet, as counted by hand.
type WalletRemaining struct {
	WalletID  uint  `json:"wallet_id" binding:"required"`
	Remaining int64 `json:"remaining"`
}

// ReconcileInput asks for balancing payments so that each wallet's ledger
// balance matches the stated remaining amount. Zero PersonID means the
// primary person; nil Date means today.
type ReconcileInput struct {
	PersonID uint
	Date     *models.Date
	Wallets  []WalletRemaining
}

// TransactionServicer defines the contract for payment recording and its
// obligation side effects.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, input CreateTransactionInput) (*models.Transaction, error)
	GetTransactionByID(ctx context.Context, id uint) (*models.Transaction, error)
	ListTransactions(ctx context.Context, date *models.Date) (*TransactionList, error)
	UpdateTransaction(ctx context.Context, id uint, update TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id uint) (*models.Transaction, error)
	Reconcile(ctx context.Context, input ReconcileInput) ([]models.Transaction, error)
}

// WalletBalance is the absolute sum of a wallet's payments within a period.
type WalletBalance struct {
	WalletID   uint   `json:"wallet_id"`
	WalletName string `json:"wallet_name"`
	Remaining  int64  `json:"remaining"`
}

// Summary is the personal report for the period containing Date.
type Summary struct {
	PersonID        uint            `json:"person_id"`
	PeriodID        uint            `json:"period_id"`
	PeriodName      string          `json:"period_name"`
	Date            models.Date     `json:"date"`
	TotalAmount     int64           `json:"total_amount"`
	ObligationTotal int64           `json:"obligation_total"`
	RemainingAmount int64           `json:"remaining_amount"`
	DayLeft         int             `json:"day_left"`
	PerDayAmount    int64           `json:"per_day_amount"`
	BankRemaining   int64           `json:"bank_remaining"`
	CashRemaining   int64           `json:"cash_remaining"`
	Wallets         []WalletBalance `json:"wallets"`
}

// ObligationSummary is one person's obligation report for a period.
type ObligationSummary struct {
	PersonID        uint        `json:"person_id"`
	PeriodID        uint        `json:"period_id"`
	PeriodName      string      `json:"period_name"`
	Date            models.Date `json:"date"`
	TotalAmount     int64       `json:"total_amount"`
	PaidAmount      int64       `json:"paid_amount"`
	RemainingAmount int64       `json:"remaining_amount"`
}

// SummaryServicer computes period reports. Zero personID selects the
// configured default person; nil date means today.
type SummaryServicer interface {
	Summarize(ctx context.Context, personID uint, date *models.Date) (*Summary, error)
	SummarizeObligations(ctx context.Context, personID uint, date *models.Date) (*ObligationSummary, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(ctx context.Context, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
