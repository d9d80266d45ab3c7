package models

// Transaction is an actual payment. Amounts are signed minor units; expenses
// are negative.
//
// ObligationID is a weak reference: it only records which obligation the
// payment was applied against so the effect can be reversed or re-applied.
// The transaction is not owned by the obligation.
type Transaction struct {
	Base
	PersonID     uint   `gorm:"not null;index" json:"person_id"`
	WalletID     uint   `gorm:"not null;index" json:"wallet_id"`
	ObligationID *uint  `gorm:"index" json:"obligation_id"`
	Date         Date   `gorm:"type:date;not null;index" json:"date"`
	Description  string `json:"description"`
	Amount       int64  `gorm:"type:bigint;not null" json:"amount"`
}

// IsLinked reports whether the payment was applied against an obligation.
func (t *Transaction) IsLinked() bool {
	return t.ObligationID != nil
}
