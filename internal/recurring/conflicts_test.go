package recurring

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Dan9191/recurring-service/internal/models"
)

func TestDetectScheduleConflicts(t *testing.T) {
	t.Parallel()
	now := date(2024, 1, 1)

	a := newSchedule("a", Monthly, date(2024, 2, 1))
	a.CategoryID = strPtr("housing")
	b := newSchedule("b", Monthly, date(2024, 3, 1))
	b.CategoryID = strPtr("housing")
	b.Amount = decimal.RequireFromString("500.00")
	otherCategory := newSchedule("c", Monthly, date(2024, 2, 1))
	otherCategory.CategoryID = strPtr("leisure")

	ended := newSchedule("d", Monthly, date(2023, 12, 1))
	ended.Description = "Gym"
	ended.EndDate = timePtr(date(2023, 12, 31))

	dormant := newSchedule("e", Weekly, date(2023, 12, 20))
	dormant.Description = "Streaming"
	dormant.Active = false

	sleeping := newSchedule("f", Weekly, date(2024, 2, 1))
	sleeping.Description = "Newspaper"
	sleeping.Active = false

	reports := DetectScheduleConflicts([]models.RecurringSchedule{a, b, otherCategory, ended, dormant, sleeping}, now)
	want := []struct {
		kind      models.ConflictKind
		schedule  string
		relatedID string
	}{
		{kind: models.ConflictDuplicate, schedule: "a", relatedID: "b"},
		{kind: models.ConflictDuplicate, schedule: "b", relatedID: "a"},
		{kind: models.ConflictExpired, schedule: "d"},
		{kind: models.ConflictInconsistentState, schedule: "e"},
	}
	if len(reports) != len(want) {
		t.Fatalf("expected %d reports, got %d: %+v", len(want), len(reports), reports)
	}
	for i, w := range want {
		got := reports[i]
		if got.Kind != w.kind || got.ScheduleID != w.schedule || got.RelatedID != w.relatedID {
			t.Fatalf("report %d = %+v, want kind=%s schedule=%s related=%s", i, got, w.kind, w.schedule, w.relatedID)
		}
		if got.Message == "" {
			t.Fatalf("report %d has no message", i)
		}
	}
}

func TestDetectScheduleConflictsExpiredWhileInactive(t *testing.T) {
	t.Parallel()
	s := newSchedule("s1", Monthly, date(2023, 11, 1))
	s.Active = false
	s.EndDate = timePtr(date(2023, 12, 31))

	reports := DetectScheduleConflicts([]models.RecurringSchedule{s}, date(2024, 1, 1))
	if len(reports) != 1 || reports[0].Kind != models.ConflictExpired {
		t.Fatalf("expected a single expired report, got %+v", reports)
	}
}

func TestDetectScheduleConflictsReportsEveryDuplicate(t *testing.T) {
	t.Parallel()
	next := date(2024, 2, 1)
	schedules := []models.RecurringSchedule{
		newSchedule("x", Monthly, next),
		newSchedule("y", Periodicity("monthly"), next),
		newSchedule("z", Monthly, next),
	}

	reports := DetectScheduleConflicts(schedules, date(2024, 1, 1))
	if len(reports) != 6 {
		t.Fatalf("expected 6 duplicate reports, got %d", len(reports))
	}
	if reports[0].ScheduleID != "x" || reports[0].RelatedID != "y" || reports[1].RelatedID != "z" {
		t.Fatalf("unexpected discovery order: %+v", reports[:2])
	}
}

func TestDetectScheduleConflictsEmpty(t *testing.T) {
	t.Parallel()
	if reports := DetectScheduleConflicts(nil, date(2024, 1, 1)); len(reports) != 0 {
		t.Fatalf("expected no reports, got %+v", reports)
	}
}
