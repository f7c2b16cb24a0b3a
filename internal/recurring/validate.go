package recurring

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Candidate is a schedule configuration awaiting validation.
type Candidate struct {
	StartDate     time.Time
	EndDate       *time.Time
	Periodicity   string
	Amount        decimal.Decimal
	MaxExecutions *int
}

// ValidateScheduleConfiguration returns every problem found in c; an empty
// result means the configuration is valid. A start date anywhere within the
// current day is accepted.
func ValidateScheduleConfiguration(c Candidate, now time.Time) []string {
	problems := make([]string, 0)

	if c.StartDate.IsZero() {
		problems = append(problems, "start date is required")
	} else if c.StartDate.Before(startOfDay(now)) {
		problems = append(problems, "start date must not be in the past")
	}
	if c.EndDate != nil && !c.EndDate.After(c.StartDate) {
		problems = append(problems, "end date must be after start date")
	}
	if _, err := ParsePeriodicity(c.Periodicity); err != nil {
		problems = append(problems, fmt.Sprintf("unsupported periodicity %q", c.Periodicity))
	}
	if !c.Amount.IsPositive() {
		problems = append(problems, "amount must be a positive number")
	}
	if c.MaxExecutions != nil && *c.MaxExecutions <= 0 {
		problems = append(problems, "max executions must be a positive integer")
	}
	return problems
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
