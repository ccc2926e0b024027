package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a balance-holding account subject to blacklisting.
// Username, Password, Email, TransactionPassword and Balance are kept
// codec-encoded at rest; the service layer decodes them on read.
type Account struct {
	ID                  int64           `json:"id"`
	Username            string          `json:"username"`
	Password            string          `json:"-"` // Not serialized
	Email               string          `json:"email"`
	TransactionPassword string          `json:"-"` // Not serialized
	Balance             decimal.Decimal `json:"balance"`
	Blacklisted         bool            `json:"blacklisted"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// AccountPatch enumerates the updatable account fields for partial updates.
// A nil field is left unchanged.
type AccountPatch struct {
	Username            *string          `json:"username,omitempty"`
	Email               *string          `json:"email,omitempty"`
	TransactionPassword *string          `json:"transaction_password,omitempty"`
	Balance             *decimal.Decimal `json:"balance,omitempty"`
	Blacklisted         *bool            `json:"blacklisted,omitempty"`
}
