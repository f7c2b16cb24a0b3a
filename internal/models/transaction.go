package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is the materialized result of one schedule fire
type LedgerEntry struct {
	ID           string          `json:"id"`
	ScheduleID   string          `json:"schedule_id"`
	OwnerID      string          `json:"owner_id"`
	MovementType MovementType    `json:"movement_type"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	OccurredAt   time.Time       `json:"occurred_at"`
	CreatedAt    time.Time       `json:"created_at"`
}
