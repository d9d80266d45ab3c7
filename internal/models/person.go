package models

// Person is someone payments and obligations are attributed to.
type Person struct {
	Base
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

func (Person) TableName() string { return "people" }

// Wallet is where money is paid from, e.g. Cash or Bank.
type Wallet struct {
	Base
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}
