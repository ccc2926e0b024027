package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ezpay/settlement-service/internal/codec"
	"github.com/ezpay/settlement-service/internal/models"
	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory store implementation for tests and demos. It
// holds the same encoded-at-rest representation as the Postgres repository.
type MemoryStore struct {
	codec        *codec.Codec
	accounts     map[int64]*models.Account
	transactions map[int64]*models.Transaction
	frauds       map[int64]*models.FraudRecord
	nextID       int64
	mu           sync.RWMutex
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore(cdc *codec.Codec) *MemoryStore {
	return &MemoryStore{
		codec:        cdc,
		accounts:     make(map[int64]*models.Account),
		transactions: make(map[int64]*models.Transaction),
		frauds:       make(map[int64]*models.FraudRecord),
	}
}

func (m *MemoryStore) nextSequence() int64 {
	m.nextID++
	return m.nextID
}

func (m *MemoryStore) CreateAccount(_ context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account.ID = m.nextSequence()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	cp := *account
	m.accounts[account.ID] = &cp
	return nil
}

func (m *MemoryStore) FindAccountByID(_ context.Context, id int64) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account: %w", ErrNotFound)
	}
	cp := *account
	return &cp, nil
}

func (m *MemoryStore) FindAccountByUsername(_ context.Context, username string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, account := range m.accounts {
		if account.Username == username {
			cp := *account
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("account: %w", ErrNotFound)
}

func (m *MemoryStore) SaveAccount(_ context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; !ok {
		return fmt.Errorf("account: %w", ErrNotFound)
	}
	account.UpdatedAt = time.Now()
	cp := *account
	m.accounts[account.ID] = &cp
	return nil
}

func (m *MemoryStore) SetBlacklisted(_ context.Context, id int64, blacklisted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return fmt.Errorf("account: %w", ErrNotFound)
	}
	account.Blacklisted = blacklisted
	account.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) DeleteAccount(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return fmt.Errorf("account: %w", ErrNotFound)
	}
	delete(m.accounts, id)
	return nil
}

// ApplyTransfer mirrors the Postgres implementation: one critical section
// covering decode, adjust and re-encode of both balances.
func (m *MemoryStore) ApplyTransfer(_ context.Context, sourceID, destID int64, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	source, ok := m.accounts[sourceID]
	if !ok {
		return fmt.Errorf("account %d: %w", sourceID, ErrNotFound)
	}
	dest, ok := m.accounts[destID]
	if !ok {
		return fmt.Errorf("account %d: %w", destID, ErrNotFound)
	}

	newSource := m.codec.DecodeDecimal(source.Balance).Sub(amount)
	if newSource.IsNegative() {
		return fmt.Errorf("transfer would overdraw account %d", sourceID)
	}
	newDest := m.codec.DecodeDecimal(dest.Balance).Add(amount)

	source.Balance = m.codec.EncodeDecimal(newSource)
	dest.Balance = m.codec.EncodeDecimal(newDest)
	source.UpdatedAt = time.Now()
	dest.UpdatedAt = source.UpdatedAt
	return nil
}

func (m *MemoryStore) CreateTransaction(_ context.Context, txn *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn.ID = m.nextSequence()
	cp := *txn
	m.transactions[txn.ID] = &cp
	return nil
}

func (m *MemoryStore) FindTransactionByID(_ context.Context, id int64) (*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	txn, ok := m.transactions[id]
	if !ok {
		return nil, fmt.Errorf("transaction: %w", ErrNotFound)
	}
	cp := *txn
	return &cp, nil
}

func (m *MemoryStore) FindAllTransactions(_ context.Context) ([]*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Transaction, 0, len(m.transactions))
	for _, txn := range m.transactions {
		cp := *txn
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) FindSamePairSameDay(_ context.Context, sourceID, destID int64, day time.Time) ([]*models.Transaction, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Transaction
	for _, txn := range m.transactions {
		if txn.SourceID != sourceID || txn.DestinationID != destID {
			continue
		}
		if txn.Time.Before(start) || !txn.Time.Before(end) {
			continue
		}
		cp := *txn
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func (m *MemoryStore) CreateFraudRecord(_ context.Context, record *models.FraudRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record.ID = m.nextSequence()
	cp := *record
	m.frauds[record.ID] = &cp
	return nil
}

func (m *MemoryStore) FindFraudRecordByID(_ context.Context, id int64) (*models.FraudRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.frauds[id]
	if !ok {
		return nil, fmt.Errorf("fraud record: %w", ErrNotFound)
	}
	cp := *record
	return &cp, nil
}

func (m *MemoryStore) FindAllFraudRecords(_ context.Context) ([]*models.FraudRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.FraudRecord, 0, len(m.frauds))
	for _, record := range m.frauds {
		cp := *record
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
