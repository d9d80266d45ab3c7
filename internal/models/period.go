package models

// Period is a named billing range ("month") that obligations belong to and
// payments are grouped by. Both bounds are inclusive and need not align with
// calendar months.
type Period struct {
	Base
	Name      string `gorm:"not null" json:"name"`
	StartDate Date   `gorm:"type:date;not null;index" json:"start_date"`
	EndDate   Date   `gorm:"type:date;not null" json:"end_date"`
}

// Contains reports whether d falls within the period, inclusive on both ends.
func (p *Period) Contains(d Date) bool {
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}
