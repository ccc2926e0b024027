package service

import (
	"context"
	"fmt"

	"github.com/ezpay/settlement-service/internal/models"
)

// GetTransactionByID returns the decoded transaction with the given id.
func (s *Service) GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	txn, err := s.store.FindTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decodeTransaction(txn)
}

// ListTransactions returns all transactions, decoded.
func (s *Service) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	encoded, err := s.store.FindAllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	out := make([]*models.Transaction, 0, len(encoded))
	for _, txn := range encoded {
		dec, err := s.decodeTransaction(txn)
		if err != nil {
			return nil, err
		}
		out = append(out, dec)
	}
	return out, nil
}

// GetFraudRecordByID returns the decoded fraud record joined with its
// transaction.
func (s *Service) GetFraudRecordByID(ctx context.Context, id int64) (*models.FraudDetail, error) {
	record, err := s.store.FindFraudRecordByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.fraudDetail(ctx, record)
}

// ListFraudTransactions returns all fraud records joined with their
// transactions, decoded.
func (s *Service) ListFraudTransactions(ctx context.Context) ([]*models.FraudDetail, error) {
	records, err := s.store.FindAllFraudRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list fraud records: %w", err)
	}
	out := make([]*models.FraudDetail, 0, len(records))
	for _, record := range records {
		detail, err := s.fraudDetail(ctx, record)
		if err != nil {
			return nil, err
		}
		out = append(out, detail)
	}
	return out, nil
}

func (s *Service) fraudDetail(ctx context.Context, record *models.FraudRecord) (*models.FraudDetail, error) {
	txn, err := s.GetTransactionByID(ctx, record.TransactionID)
	if err != nil {
		return nil, err
	}
	return &models.FraudDetail{
		FraudRecord: models.FraudRecord{
			ID:            record.ID,
			TransactionID: record.TransactionID,
			RiskScore:     s.codec.DecodeDecimal(record.RiskScore),
		},
		Transaction: *txn,
	}, nil
}
