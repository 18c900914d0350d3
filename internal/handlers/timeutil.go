package handlers

import (
	"fmt"
	"time"
)

// America/New_York for all display formatting
var tzLocal *time.Location

func init() {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		tzLocal = time.UTC
		return
	}
	tzLocal = loc
}

// Date-only friendly string, e.g. "Mon, 02 Jan 2006"
func fmtDate(d time.Time) string {
	return d.In(tzLocal).Format("Mon, 02 Jan 2006")
}

// Date and time, e.g. "Mon, 02 Jan 2006 15:04"
func fmtDateTime(d time.Time) string {
	return d.In(tzLocal).Format("Mon, 02 Jan 2006 15:04")
}

// Dollar string from cents, display only.
func fmtCents(cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
