// Package clock supplies the current time in the ledger's fixed local offset.
package clock

import (
	"strconv"
	"time"

	"ledger/internal/models"
)

// Clock reports the current instant.
type Clock interface {
	Now() time.Time
}

type offsetClock struct {
	loc *time.Location
}

// Offset returns the system clock viewed in a fixed UTC offset, e.g. 7 for UTC+7.
func Offset(hours int) Clock {
	return offsetClock{loc: time.FixedZone(zoneName(hours), hours*3600)}
}

func (c offsetClock) Now() time.Time { return time.Now().In(c.loc) }

type frozenClock struct {
	t time.Time
}

// Frozen returns a clock that always reports t.
func Frozen(t time.Time) Clock {
	return frozenClock{t: t}
}

func (c frozenClock) Now() time.Time { return c.t }

// Today returns the current calendar day as seen by c.
func Today(c Clock) models.Date {
	return models.DateOf(c.Now())
}

func zoneName(hours int) string {
	if hours == 0 {
		return "UTC"
	}
	sign := "+"
	if hours < 0 {
		sign = "-"
		hours = -hours
	}
	return "UTC" + sign + strconv.Itoa(hours)
}
