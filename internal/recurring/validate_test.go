package recurring

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestValidateScheduleConfigurationValid(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)
	c := Candidate{
		StartDate:     date(2024, 1, 10),
		EndDate:       timePtr(date(2024, 12, 31)),
		Periodicity:   "monthly",
		Amount:        decimal.RequireFromString("12.50"),
		MaxExecutions: intPtr(12),
	}

	if problems := ValidateScheduleConfiguration(c, now); len(problems) != 0 {
		t.Fatalf("expected no problems, got %v", problems)
	}
}

func TestValidateScheduleConfigurationReportsEveryProblem(t *testing.T) {
	t.Parallel()
	now := date(2024, 1, 10)
	c := Candidate{
		StartDate:     date(2024, 1, 9),
		EndDate:       timePtr(date(2024, 1, 1)),
		Periodicity:   "daily",
		Amount:        decimal.NewFromInt(-5),
		MaxExecutions: intPtr(0),
	}

	problems := ValidateScheduleConfiguration(c, now)
	want := []string{
		"start date must not be in the past",
		"end date must be after start date",
		`unsupported periodicity "daily"`,
		"amount must be a positive number",
		"max executions must be a positive integer",
	}
	if len(problems) != len(want) {
		t.Fatalf("expected %d problems, got %d: %v", len(want), len(problems), problems)
	}
	for i := range want {
		if problems[i] != want[i] {
			t.Fatalf("problem %d = %q, want %q", i, problems[i], want[i])
		}
	}
}

func TestValidateScheduleConfigurationEdgeCases(t *testing.T) {
	t.Parallel()
	now := date(2024, 1, 10)
	tests := []struct {
		name string
		c    Candidate
		want string
	}{
		{name: "missing start", c: Candidate{Periodicity: "7 day", Amount: decimal.NewFromInt(1)}, want: "start date is required"},
		{name: "end equals start", c: Candidate{StartDate: now, EndDate: timePtr(now), Periodicity: "7 day", Amount: decimal.NewFromInt(1)}, want: "end date must be after start date"},
		{name: "zero amount", c: Candidate{StartDate: now, Periodicity: "7 day"}, want: "amount must be a positive number"},
	}
	for _, tt := range tests {
		problems := ValidateScheduleConfiguration(tt.c, now)
		if len(problems) != 1 || problems[0] != tt.want {
			t.Fatalf("%s: problems = %v, want [%s]", tt.name, problems, tt.want)
		}
	}
}
