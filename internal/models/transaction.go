package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction statuses as persisted.
const (
	StatusSuccess = "Success"
	StatusFailed  = "failed"
)

// Transaction represents one processed transfer request, successful or not.
// Records are immutable once persisted.
type Transaction struct {
	ID            int64           `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	SourceID      int64           `json:"source_id"`
	DestinationID int64           `json:"destination_id"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	Time          time.Time       `json:"time"`
}
