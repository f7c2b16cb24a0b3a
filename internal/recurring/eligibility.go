package recurring

import (
	"time"

	"github.com/Dan9191/recurring-service/internal/models"
)

// Reason explains an eligibility verdict.
type Reason string

const (
	ReasonDue         Reason = "due"
	ReasonInactive    Reason = "inactive"
	ReasonExpired     Reason = "expired"
	ReasonUnscheduled Reason = "unscheduled"
	ReasonNotDue      Reason = "not_due"
	ReasonCapReached  Reason = "cap_reached"
)

// Verdict is the outcome of evaluating a schedule against the current time.
type Verdict struct {
	Eligible bool   `json:"eligible"`
	Reason   Reason `json:"reason"`
}

// Evaluate decides whether s should fire at now. Checks run in a fixed
// order and the first failing one supplies the reason.
func Evaluate(s models.RecurringSchedule, now time.Time) Verdict {
	if !s.Active {
		return Verdict{Reason: ReasonInactive}
	}
	return readiness(s, now)
}

// readiness applies every eligibility rule except the active flag.
func readiness(s models.RecurringSchedule, now time.Time) Verdict {
	if Expired(s, now) {
		return Verdict{Reason: ReasonExpired}
	}
	if s.NextOccurrence == nil {
		return Verdict{Reason: ReasonUnscheduled}
	}
	if now.Before(*s.NextOccurrence) {
		return Verdict{Reason: ReasonNotDue}
	}
	if Exhausted(s) {
		return Verdict{Reason: ReasonCapReached}
	}
	return Verdict{Eligible: true, Reason: ReasonDue}
}

// ShouldExecute reports whether s is due to fire at now.
func ShouldExecute(s models.RecurringSchedule, now time.Time) bool {
	return Evaluate(s, now).Eligible
}

// PendingExecutions returns the schedules due at now, in input order.
func PendingExecutions(schedules []models.RecurringSchedule, now time.Time) []models.RecurringSchedule {
	pending := make([]models.RecurringSchedule, 0, len(schedules))
	for _, s := range schedules {
		if ShouldExecute(s, now) {
			pending = append(pending, s)
		}
	}
	return pending
}

// Expired reports whether the schedule's end date has passed.
func Expired(s models.RecurringSchedule, now time.Time) bool {
	return s.EndDate != nil && now.After(*s.EndDate)
}

// Exhausted reports whether the schedule has used up its execution cap.
func Exhausted(s models.RecurringSchedule) bool {
	return s.MaxExecutions != nil && s.ExecutionCount >= *s.MaxExecutions
}
