package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectionResult represents the projected impact of active schedules over a horizon
type ProjectionResult struct {
	ProjectedIncome   decimal.Decimal `json:"projected_income"`
	ProjectedExpenses decimal.Decimal `json:"projected_expenses"`
	ProjectedBalance  decimal.Decimal `json:"projected_balance"`
	ExecutionCount    int             `json:"execution_count"`
	HorizonMonths     int             `json:"horizon_months"`
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	Skipped           []string        `json:"skipped,omitempty"` // ids with an unrecognized periodicity
}

// PortfolioSummary represents portfolio-level schedule statistics
type PortfolioSummary struct {
	Total            int                  `json:"total"`
	Active           int                  `json:"active"`
	Inactive         int                  `json:"inactive"`
	ByPeriodicity    map[string]int       `json:"by_periodicity"`
	ByMovementType   map[MovementType]int `json:"by_movement_type"`
	MonthlyNetImpact decimal.Decimal      `json:"monthly_net_impact"` // approximate, income positive
	Skipped          []string             `json:"skipped,omitempty"`
}

// ConflictKind classifies a configuration anomaly
type ConflictKind string

const (
	ConflictDuplicate         ConflictKind = "duplicate"
	ConflictExpired           ConflictKind = "expired"
	ConflictInconsistentState ConflictKind = "inconsistent_state"
)

// ConflictReport describes one anomaly found for a schedule
type ConflictReport struct {
	Kind       ConflictKind `json:"kind"`
	ScheduleID string       `json:"schedule_id"`
	RelatedID  string       `json:"related_id,omitempty"` // the other schedule for duplicates
	Message    string       `json:"message"`
}

// FireFailure records a schedule that could not be fired during a batch run
type FireFailure struct {
	ScheduleID string `json:"schedule_id"`
	OwnerID    string `json:"owner_id"`
	Error      string `json:"error"`
}

// BatchReport summarizes one run of the due-schedule batch
type BatchReport struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Evaluated  int           `json:"evaluated"`
	Due        int           `json:"due"`
	Fired      int           `json:"fired"`
	Skipped    int           `json:"skipped"` // already advanced by a concurrent run
	Failures   []FireFailure `json:"failures,omitempty"`
}
