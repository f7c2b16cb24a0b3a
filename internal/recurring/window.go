package recurring

import (
	"time"

	"github.com/Dan9191/recurring-service/internal/models"
)

// CountOccurrencesInWindow counts how many times s would fire inside
// [windowStart, windowEnd]. The window is narrowed to start no earlier than
// the schedule's next occurrence and to end no later than its end date; both
// boundary fires count. The result never exceeds the remaining execution
// headroom and is never negative.
func CountOccurrencesInWindow(s models.RecurringSchedule, windowStart, windowEnd time.Time) (int, error) {
	p, err := ParsePeriodicity(s.Periodicity)
	if err != nil {
		return 0, err
	}
	delta, err := p.Delta()
	if err != nil {
		return 0, err
	}
	if s.NextOccurrence == nil {
		return 0, nil
	}

	start := windowStart
	if s.NextOccurrence.After(start) {
		start = *s.NextOccurrence
	}
	end := windowEnd
	if s.EndDate != nil && s.EndDate.Before(end) {
		end = *s.EndDate
	}
	if !start.Before(end) {
		return 0, nil
	}

	count := int(end.Sub(start)/delta) + 1
	if s.MaxExecutions != nil {
		headroom := *s.MaxExecutions - s.ExecutionCount
		if headroom < 0 {
			headroom = 0
		}
		count = min(count, headroom)
	}
	return count, nil
}
