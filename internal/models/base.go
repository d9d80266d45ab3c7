package models

import "time"

// Base contains common columns for all tables
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// All returns every model in migration order. Used by AutoMigrate for
// SQLite stores and test databases.
func All() []interface{} {
	return []interface{}{
		&Person{},
		&Wallet{},
		&Period{},
		&Obligation{},
		&Transaction{},
		&AuditLog{},
	}
}
