package recurring

import (
	"fmt"
	"strings"
	"time"

	"github.com/Dan9191/recurring-service/internal/models"
)

// DetectScheduleConflicts audits each schedule against itself and the rest of
// the collection. Reports come out in discovery order and are not
// deduplicated: two identical schedules produce one duplicate report each.
func DetectScheduleConflicts(schedules []models.RecurringSchedule, now time.Time) []models.ConflictReport {
	reports := make([]models.ConflictReport, 0)

	// schedules sharing a configuration key, in input order
	groups := make(map[string][]int, len(schedules))
	for i, s := range schedules {
		key := configurationKey(s)
		groups[key] = append(groups[key], i)
	}

	for i, s := range schedules {
		for _, j := range groups[configurationKey(s)] {
			other := schedules[j]
			if j == i || other.ID == s.ID {
				continue
			}
			reports = append(reports, models.ConflictReport{
				Kind:       models.ConflictDuplicate,
				ScheduleID: s.ID,
				RelatedID:  other.ID,
				Message:    fmt.Sprintf("schedule %q duplicates schedule %s", s.Description, other.ID),
			})
		}

		if s.EndDate != nil && s.EndDate.Before(now) {
			reports = append(reports, models.ConflictReport{
				Kind:       models.ConflictExpired,
				ScheduleID: s.ID,
				Message:    fmt.Sprintf("schedule %q ended on %s", s.Description, s.EndDate.Format("2006-01-02")),
			})
		}

		if !s.Active && readiness(s, now).Eligible {
			reports = append(reports, models.ConflictReport{
				Kind:       models.ConflictInconsistentState,
				ScheduleID: s.ID,
				Message:    fmt.Sprintf("schedule %q is inactive but due since %s", s.Description, s.NextOccurrence.Format("2006-01-02")),
			})
		}
	}
	return reports
}

func configurationKey(s models.RecurringSchedule) string {
	periodicity := s.Periodicity
	if p, err := ParsePeriodicity(s.Periodicity); err == nil {
		periodicity = string(p)
	}
	category := "-"
	if s.CategoryID != nil {
		category = "=" + *s.CategoryID
	}
	return strings.Join([]string{s.Description, s.Amount.String(), category, periodicity}, "\x00")
}
