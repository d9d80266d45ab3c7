package models

// Obligation is a planned amount a person owes within a period (a "must-pay"
// transaction). Amount is the outstanding part: it starts at the planned value
// and moves toward zero as payments are applied.
type Obligation struct {
	Base
	PersonID    uint   `gorm:"not null;index" json:"person_id"`
	PeriodID    uint   `gorm:"not null;index" json:"period_id"`
	Description string `json:"description"`
	Amount      int64  `gorm:"type:bigint;not null" json:"amount"`
}
