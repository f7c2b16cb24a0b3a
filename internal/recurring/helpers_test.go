package recurring

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dan9191/recurring-service/internal/models"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time { return &t }

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

func newSchedule(id string, p Periodicity, next time.Time) models.RecurringSchedule {
	return models.RecurringSchedule{
		ID:             id,
		OwnerID:        "owner-1",
		MovementType:   models.MovementExpense,
		Regularity:     models.RegularityStatic,
		Description:    "Rent",
		Amount:         decimal.NewFromInt(500),
		Periodicity:    string(p),
		NextOccurrence: timePtr(next),
		Active:         true,
	}
}
