package recurring

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Dan9191/recurring-service/internal/models"
)

func TestCalculateScheduledImpactEmpty(t *testing.T) {
	t.Parallel()
	for _, horizon := range []int{0, 1, 12} {
		result := CalculateScheduledImpact(nil, horizon, date(2024, 1, 1))
		if !result.ProjectedIncome.IsZero() || !result.ProjectedExpenses.IsZero() || !result.ProjectedBalance.IsZero() {
			t.Fatalf("expected zero totals for horizon %d, got %+v", horizon, result)
		}
		if result.ExecutionCount != 0 {
			t.Fatalf("expected 0 executions for horizon %d, got %d", horizon, result.ExecutionCount)
		}
	}
}

func TestCalculateScheduledImpactSingleIncome(t *testing.T) {
	t.Parallel()
	now := date(2024, 1, 1)
	salary := newSchedule("salary", Monthly, date(2024, 1, 2))
	salary.MovementType = models.MovementIncome
	salary.Amount = decimal.NewFromInt(100)

	result := CalculateScheduledImpact([]models.RecurringSchedule{salary}, 1, now)
	if !result.ProjectedIncome.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected projected income 200, got %s", result.ProjectedIncome)
	}
	if !result.ProjectedExpenses.IsZero() {
		t.Fatalf("expected no projected expenses, got %s", result.ProjectedExpenses)
	}
	if !result.ProjectedBalance.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected projected balance 200, got %s", result.ProjectedBalance)
	}
	if result.ExecutionCount != 2 {
		t.Fatalf("expected 2 executions, got %d", result.ExecutionCount)
	}
	if !result.To.Equal(date(2024, 2, 1)) {
		t.Fatalf("expected horizon end 2024-02-01, got %s", result.To)
	}
}

func TestCalculateScheduledImpactMixed(t *testing.T) {
	t.Parallel()
	now := date(2024, 1, 1)

	salary := newSchedule("salary", Monthly, date(2024, 1, 2))
	salary.MovementType = models.MovementIncome
	salary.Amount = decimal.NewFromInt(100)

	groceries := newSchedule("groceries", Weekly, now)
	groceries.Amount = decimal.NewFromInt(50)

	paused := newSchedule("paused", Weekly, now)
	paused.Active = false

	exhausted := newSchedule("exhausted", Weekly, now)
	exhausted.MaxExecutions = intPtr(1)
	exhausted.ExecutionCount = 1

	broken := newSchedule("broken", Periodicity("bogus"), now)

	result := CalculateScheduledImpact([]models.RecurringSchedule{salary, groceries, paused, exhausted, broken}, 1, now)
	if !result.ProjectedIncome.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected projected income 200, got %s", result.ProjectedIncome)
	}
	if !result.ProjectedExpenses.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected projected expenses 250, got %s", result.ProjectedExpenses)
	}
	if !result.ProjectedBalance.Equal(decimal.NewFromInt(-50)) {
		t.Fatalf("expected projected balance -50, got %s", result.ProjectedBalance)
	}
	if result.ExecutionCount != 7 {
		t.Fatalf("expected 7 executions, got %d", result.ExecutionCount)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != "broken" {
		t.Fatalf("expected broken schedule to be skipped, got %v", result.Skipped)
	}
}

func TestGenerateScheduleSummary(t *testing.T) {
	t.Parallel()
	now := date(2024, 1, 1)

	salary := newSchedule("salary", Monthly, now)
	salary.MovementType = models.MovementIncome
	salary.Amount = decimal.NewFromInt(1000)

	insurance := newSchedule("insurance", Yearly, now)
	insurance.Amount = decimal.NewFromInt(1200)

	groceries := newSchedule("groceries", Weekly, now)
	groceries.Amount = decimal.NewFromInt(100)

	bonus := newSchedule("bonus", Quarterly, now)
	bonus.MovementType = models.MovementIncome
	bonus.Active = false

	summary := GenerateScheduleSummary([]models.RecurringSchedule{salary, insurance, groceries, bonus})
	if summary.Total != 4 || summary.Active != 3 || summary.Inactive != 1 {
		t.Fatalf("unexpected counts: total=%d active=%d inactive=%d", summary.Total, summary.Active, summary.Inactive)
	}
	if summary.ByPeriodicity[string(Monthly)] != 1 || summary.ByPeriodicity[string(Yearly)] != 1 || summary.ByPeriodicity[string(Weekly)] != 1 {
		t.Fatalf("unexpected periodicity breakdown: %v", summary.ByPeriodicity)
	}
	if _, ok := summary.ByPeriodicity[string(Quarterly)]; ok {
		t.Fatal("inactive schedules must not appear in the periodicity breakdown")
	}
	if summary.ByMovementType[models.MovementIncome] != 1 || summary.ByMovementType[models.MovementExpense] != 2 {
		t.Fatalf("unexpected movement breakdown: %v", summary.ByMovementType)
	}
	if !summary.MonthlyNetImpact.Equal(decimal.NewFromInt(467)) {
		t.Fatalf("expected monthly net impact 467, got %s", summary.MonthlyNetImpact)
	}
}

func TestGenerateScheduleSummarySkipsUnknownMovementType(t *testing.T) {
	t.Parallel()
	now := date(2024, 1, 1)

	rent := newSchedule("rent", Monthly, now)
	transfer := newSchedule("transfer", Monthly, now)
	transfer.MovementType = "transfer"

	schedules := []models.RecurringSchedule{rent, transfer}
	summary := GenerateScheduleSummary(schedules)
	projection := CalculateScheduledImpact(schedules, 1, now)

	if summary.Active != 2 {
		t.Fatalf("expected both schedules counted as active, got %d", summary.Active)
	}
	if _, ok := summary.ByMovementType["transfer"]; ok {
		t.Fatalf("unknown movement type must not be counted: %v", summary.ByMovementType)
	}
	if summary.ByPeriodicity[string(Monthly)] != 1 {
		t.Fatalf("expected only rent in the periodicity breakdown, got %v", summary.ByPeriodicity)
	}
	if !summary.MonthlyNetImpact.Equal(decimal.NewFromInt(-500)) {
		t.Fatalf("expected monthly net impact -500, got %s", summary.MonthlyNetImpact)
	}
	if len(summary.Skipped) != 1 || summary.Skipped[0] != "transfer" {
		t.Fatalf("expected transfer to be skipped, got %v", summary.Skipped)
	}
	if len(projection.Skipped) != 1 || projection.Skipped[0] != summary.Skipped[0] {
		t.Fatalf("summary and projection disagree on skipped schedules: %v vs %v", summary.Skipped, projection.Skipped)
	}
}

func TestGenerateScheduleSummaryEmpty(t *testing.T) {
	t.Parallel()
	summary := GenerateScheduleSummary(nil)
	if summary.Total != 0 || !summary.MonthlyNetImpact.IsZero() {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
}
