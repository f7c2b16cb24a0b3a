// Package recurring holds the scheduling and projection rules for recurring
// financial movements. Everything here is pure: callers pass the records and
// the current time, nothing is read from or written to storage.
//
// All cadences advance by a fixed number of days. A "monthly" schedule is a
// 30 day schedule and drifts against the calendar month; there is no
// calendar-unit arithmetic anywhere in the package.
package recurring

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Periodicity is a fixed-length recurrence cadence.
type Periodicity string

const (
	Weekly    Periodicity = "7 day"
	Biweekly  Periodicity = "15 day"
	Monthly   Periodicity = "30 day"
	Quarterly Periodicity = "90 day"
	Yearly    Periodicity = "365 day"
)

// ErrInvalidPeriodicity is returned for descriptors outside the supported set.
var ErrInvalidPeriodicity = errors.New("invalid periodicity")

type periodicityInfo struct {
	days  int
	label string
	// monthly equivalent of one occurrence is amount * mul / div
	mul decimal.Decimal
	div decimal.Decimal
}

var periodicities = map[Periodicity]periodicityInfo{
	Weekly:    {days: 7, label: "weekly", mul: decimal.RequireFromString("4.33"), div: decimal.NewFromInt(1)},
	Biweekly:  {days: 15, label: "biweekly", mul: decimal.NewFromInt(2), div: decimal.NewFromInt(1)},
	Monthly:   {days: 30, label: "monthly", mul: decimal.NewFromInt(1), div: decimal.NewFromInt(1)},
	Quarterly: {days: 90, label: "quarterly", mul: decimal.NewFromInt(1), div: decimal.NewFromInt(3)},
	Yearly:    {days: 365, label: "yearly", mul: decimal.NewFromInt(1), div: decimal.NewFromInt(12)},
}

var periodicityAliases = map[string]Periodicity{
	"7 days":    Weekly,
	"weekly":    Weekly,
	"week":      Weekly,
	"15 days":   Biweekly,
	"biweekly":  Biweekly,
	"30 days":   Monthly,
	"monthly":   Monthly,
	"month":     Monthly,
	"90 days":   Quarterly,
	"quarterly": Quarterly,
	"365 days":  Yearly,
	"yearly":    Yearly,
	"annual":    Yearly,
	"annually":  Yearly,
}

// Supported returns the supported periodicities, shortest first.
func Supported() []Periodicity {
	return []Periodicity{Weekly, Biweekly, Monthly, Quarterly, Yearly}
}

// ParsePeriodicity maps a descriptor or frequency label onto a Periodicity.
// "30 day", "30 days" and "monthly" all resolve to Monthly.
func ParsePeriodicity(raw string) (Periodicity, error) {
	normalized := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	if _, ok := periodicities[Periodicity(normalized)]; ok {
		return Periodicity(normalized), nil
	}
	if p, ok := periodicityAliases[normalized]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriodicity, raw)
}

func (p Periodicity) info() (periodicityInfo, error) {
	info, ok := periodicities[p]
	if !ok {
		return periodicityInfo{}, fmt.Errorf("%w: %q", ErrInvalidPeriodicity, string(p))
	}
	return info, nil
}

// Days returns the cadence length in days.
func (p Periodicity) Days() (int, error) {
	info, err := p.info()
	if err != nil {
		return 0, err
	}
	return info.days, nil
}

// Delta returns the cadence length as a duration.
func (p Periodicity) Delta() (time.Duration, error) {
	days, err := p.Days()
	if err != nil {
		return 0, err
	}
	return time.Duration(days) * 24 * time.Hour, nil
}

// Label returns the human name of the cadence, or the raw descriptor when unknown.
func (p Periodicity) Label() string {
	if info, ok := periodicities[p]; ok {
		return info.label
	}
	return string(p)
}

// MonthlyEquivalent normalizes a per-occurrence amount to an approximate
// monthly amount.
func (p Periodicity) MonthlyEquivalent(amount decimal.Decimal) (decimal.Decimal, error) {
	info, err := p.info()
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(info.mul).Div(info.div), nil
}
