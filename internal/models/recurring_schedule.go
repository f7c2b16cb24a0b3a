package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tells whether a schedule adds or removes money
type MovementType string

const (
	MovementIncome  MovementType = "income"
	MovementExpense MovementType = "expense"
)

// Valid reports whether m is a known movement type
func (m MovementType) Valid() bool {
	return m == MovementIncome || m == MovementExpense
}

// Regularity is a classification tag; it plays no part in scheduling
type Regularity string

const (
	RegularityStatic   Regularity = "static"
	RegularityVariable Regularity = "variable"
)

// Valid reports whether r is a known regularity tag
func (r Regularity) Valid() bool {
	return r == RegularityStatic || r == RegularityVariable
}

// RecurringSchedule represents a recurring financial movement definition
type RecurringSchedule struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"owner_id"`
	CategoryID     *string         `json:"category_id,omitempty"`
	MovementType   MovementType    `json:"movement_type"`
	Regularity     Regularity      `json:"regularity"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	Periodicity    string          `json:"periodicity"`
	NextOccurrence *time.Time      `json:"next_occurrence,omitempty"`
	EndDate        *time.Time      `json:"end_date,omitempty"`
	Active         bool            `json:"active"`
	ExecutionCount int             `json:"execution_count"`
	MaxExecutions  *int            `json:"max_executions,omitempty"`
	LastExecutedAt *time.Time      `json:"last_executed_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ScheduleInput carries user-supplied fields for creating or editing a schedule
type ScheduleInput struct {
	CategoryID    *string         `json:"category_id,omitempty"`
	MovementType  MovementType    `json:"movement_type"`
	Regularity    Regularity      `json:"regularity"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Periodicity   string          `json:"periodicity"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       *time.Time      `json:"end_date,omitempty"`
	MaxExecutions *int            `json:"max_executions,omitempty"`
}
