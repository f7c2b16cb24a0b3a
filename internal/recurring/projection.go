package recurring

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dan9191/recurring-service/internal/models"
)

// CalculateScheduledImpact projects the income and expenses produced by the
// active schedules between now and now+horizonMonths. Schedules carrying an
// unrecognized periodicity or movement type contribute nothing and are listed
// in Skipped.
func CalculateScheduledImpact(schedules []models.RecurringSchedule, horizonMonths int, now time.Time) models.ProjectionResult {
	end := now.AddDate(0, horizonMonths, 0)
	result := models.ProjectionResult{
		ProjectedIncome:   decimal.Zero,
		ProjectedExpenses: decimal.Zero,
		ProjectedBalance:  decimal.Zero,
		HorizonMonths:     horizonMonths,
		From:              now,
		To:                end,
	}

	for _, s := range schedules {
		if !s.Active {
			continue
		}
		if !s.MovementType.Valid() {
			result.Skipped = append(result.Skipped, s.ID)
			continue
		}
		n, err := CountOccurrencesInWindow(s, now, end)
		if err != nil {
			result.Skipped = append(result.Skipped, s.ID)
			continue
		}
		if n == 0 {
			continue
		}
		total := s.Amount.Mul(decimal.NewFromInt(int64(n)))
		if s.MovementType == models.MovementIncome {
			result.ProjectedIncome = result.ProjectedIncome.Add(total)
		} else {
			result.ProjectedExpenses = result.ProjectedExpenses.Add(total)
		}
		result.ExecutionCount += n
	}

	result.ProjectedBalance = result.ProjectedIncome.Sub(result.ProjectedExpenses)
	return result
}

// GenerateScheduleSummary builds portfolio statistics. Periodicity and
// movement type breakdowns as well as the monthly net impact cover active
// schedules only; active schedules with an unrecognized movement type or
// periodicity are counted as active and listed in Skipped.
func GenerateScheduleSummary(schedules []models.RecurringSchedule) models.PortfolioSummary {
	summary := models.PortfolioSummary{
		ByPeriodicity:    make(map[string]int),
		ByMovementType:   make(map[models.MovementType]int),
		MonthlyNetImpact: decimal.Zero,
	}

	for _, s := range schedules {
		summary.Total++
		if !s.Active {
			summary.Inactive++
			continue
		}
		summary.Active++
		if !s.MovementType.Valid() {
			summary.Skipped = append(summary.Skipped, s.ID)
			continue
		}
		summary.ByMovementType[s.MovementType]++

		p, err := ParsePeriodicity(s.Periodicity)
		if err != nil {
			summary.Skipped = append(summary.Skipped, s.ID)
			continue
		}
		summary.ByPeriodicity[string(p)]++

		monthly, err := p.MonthlyEquivalent(s.Amount)
		if err != nil {
			summary.Skipped = append(summary.Skipped, s.ID)
			continue
		}
		switch s.MovementType {
		case models.MovementIncome:
			summary.MonthlyNetImpact = summary.MonthlyNetImpact.Add(monthly)
		case models.MovementExpense:
			summary.MonthlyNetImpact = summary.MonthlyNetImpact.Sub(monthly)
		}
	}

	summary.MonthlyNetImpact = summary.MonthlyNetImpact.Round(2)
	return summary
}
