package models

import "github.com/shopspring/decimal"

// FraudRecord ties a risk score to a transaction. One is created only when
// the score reaches the reporting threshold.
type FraudRecord struct {
	ID            int64           `json:"id"`
	TransactionID int64           `json:"transaction_id"`
	RiskScore     decimal.Decimal `json:"risk_score"`
}

// FraudDetail is a fraud record joined with its transaction for responses.
type FraudDetail struct {
	FraudRecord
	Transaction Transaction `json:"transaction"`
}
