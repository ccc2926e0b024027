package service

import (
	"context"
	"fmt"

	"github.com/ezpay/settlement-service/internal/models"
	"github.com/shopspring/decimal"
)

// Every string and decimal field passes through the codec before a store
// call; identifiers and timestamps stay plain because the stores query by
// them. Values read back are decoded before use.

func (s *Service) encodeAccount(account *models.Account) *models.Account {
	enc := *account
	enc.Username = s.codec.EncodeText(account.Username)
	enc.Password = s.codec.EncodeText(account.Password)
	enc.Email = s.codec.EncodeText(account.Email)
	enc.TransactionPassword = s.codec.EncodeText(account.TransactionPassword)
	enc.Balance = s.codec.EncodeDecimal(account.Balance)
	return &enc
}

func (s *Service) decodeAccount(account *models.Account) (*models.Account, error) {
	dec := *account
	var err error
	if dec.Username, err = s.codec.DecodeText(account.Username); err != nil {
		return nil, fmt.Errorf("failed to decode account %d: %w", account.ID, err)
	}
	if dec.Password, err = s.codec.DecodeText(account.Password); err != nil {
		return nil, fmt.Errorf("failed to decode account %d: %w", account.ID, err)
	}
	if dec.Email, err = s.codec.DecodeText(account.Email); err != nil {
		return nil, fmt.Errorf("failed to decode account %d: %w", account.ID, err)
	}
	if dec.TransactionPassword, err = s.codec.DecodeText(account.TransactionPassword); err != nil {
		return nil, fmt.Errorf("failed to decode account %d: %w", account.ID, err)
	}
	dec.Balance = s.codec.DecodeDecimal(account.Balance)
	return &dec, nil
}

func (s *Service) encodeTransaction(txn *models.Transaction) *models.Transaction {
	enc := *txn
	enc.Amount = s.codec.EncodeDecimal(txn.Amount)
	enc.Type = s.codec.EncodeText(txn.Type)
	enc.Status = s.codec.EncodeText(txn.Status)
	return &enc
}

func (s *Service) decodeTransaction(txn *models.Transaction) (*models.Transaction, error) {
	dec := *txn
	var err error
	if dec.Type, err = s.codec.DecodeText(txn.Type); err != nil {
		return nil, fmt.Errorf("failed to decode transaction %d: %w", txn.ID, err)
	}
	if dec.Status, err = s.codec.DecodeText(txn.Status); err != nil {
		return nil, fmt.Errorf("failed to decode transaction %d: %w", txn.ID, err)
	}
	dec.Amount = s.codec.DecodeDecimal(txn.Amount)
	return &dec, nil
}

// persistTransaction stores the encoded copy and carries the generated id
// back onto the plaintext record.
func (s *Service) persistTransaction(ctx context.Context, txn *models.Transaction) error {
	enc := s.encodeTransaction(txn)
	if err := s.store.CreateTransaction(ctx, enc); err != nil {
		return fmt.Errorf("failed to persist transaction: %w", err)
	}
	txn.ID = enc.ID
	return nil
}

func (s *Service) persistFraudRecord(ctx context.Context, transactionID int64, score decimal.Decimal) error {
	record := &models.FraudRecord{
		TransactionID: transactionID,
		RiskScore:     s.codec.EncodeDecimal(score),
	}
	if err := s.store.CreateFraudRecord(ctx, record); err != nil {
		return fmt.Errorf("failed to persist fraud record: %w", err)
	}
	return nil
}

func (s *Service) saveAccount(ctx context.Context, account *models.Account) error {
	if err := s.store.SaveAccount(ctx, s.encodeAccount(account)); err != nil {
		return fmt.Errorf("failed to save account %d: %w", account.ID, err)
	}
	return nil
}
