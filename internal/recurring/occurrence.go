package recurring

import (
	"time"

	"github.com/Dan9191/recurring-service/internal/models"
)

// NextOccurrence returns the fire time that follows s.NextOccurrence. The
// boolean is false when the schedule has no next occurrence and cannot be
// scheduled. The schedule itself is never modified.
func NextOccurrence(s models.RecurringSchedule) (time.Time, bool, error) {
	if s.NextOccurrence == nil {
		return time.Time{}, false, nil
	}
	p, err := ParsePeriodicity(s.Periodicity)
	if err != nil {
		return time.Time{}, false, err
	}
	delta, err := p.Delta()
	if err != nil {
		return time.Time{}, false, err
	}
	return s.NextOccurrence.Add(delta), true, nil
}
