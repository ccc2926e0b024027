package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ezpay/settlement-service/internal/codec"
	"github.com/ezpay/settlement-service/internal/models"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// Repository provides database operations. Field values are stored exactly
// as handed in, i.e. codec-encoded by the service layer; the codec handle is
// only used inside ApplyTransfer, which must do balance arithmetic on
// decoded values under row locks.
type Repository struct {
	db    *sql.DB
	codec *codec.Codec
}

// NewRepository initializes a new repository.
func NewRepository(db *sql.DB, cdc *codec.Codec) *Repository {
	return &Repository{db: db, codec: cdc}
}

// CreateAccount creates a new account in the database.
func (r *Repository) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO ezpay.accounts (username, password, email, transaction_password, balance, blacklisted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		account.Username, account.Password, account.Email, account.TransactionPassword,
		account.Balance, account.Blacklisted).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// FindAccountByID retrieves an account by id.
func (r *Repository) FindAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `
		SELECT id, username, password, email, transaction_password, balance, blacklisted, created_at, updated_at
		FROM ezpay.accounts
		WHERE id = $1`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, id))
}

// FindAccountByUsername retrieves an account by its encoded username.
func (r *Repository) FindAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `
		SELECT id, username, password, email, transaction_password, balance, blacklisted, created_at, updated_at
		FROM ezpay.accounts
		WHERE username = $1`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, username))
}

func (r *Repository) scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(&account.ID, &account.Username, &account.Password, &account.Email,
		&account.TransactionPassword, &account.Balance, &account.Blacklisted,
		&account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

// SaveAccount updates an existing account.
func (r *Repository) SaveAccount(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE ezpay.accounts
		SET username = $2, password = $3, email = $4, transaction_password = $5,
		    balance = $6, blacklisted = $7, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		account.ID, account.Username, account.Password, account.Email,
		account.TransactionPassword, account.Balance, account.Blacklisted)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("account: %w", ErrNotFound)
	}
	return nil
}

// SetBlacklisted updates only the blacklist flag, leaving the balance and
// credential columns untouched.
func (r *Repository) SetBlacklisted(ctx context.Context, id int64, blacklisted bool) error {
	query := `UPDATE ezpay.accounts SET blacklisted = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, blacklisted)
	if err != nil {
		return fmt.Errorf("failed to set blacklist flag: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("account: %w", ErrNotFound)
	}
	return nil
}

// DeleteAccount removes an account by id.
func (r *Repository) DeleteAccount(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ezpay.accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("account: %w", ErrNotFound)
	}
	return nil
}

// ApplyTransfer atomically moves amount from the source balance to the
// destination balance. Both rows are locked in ascending id order so that
// concurrent opposite-direction transfers cannot deadlock, and the balances
// are decoded, adjusted and re-encoded inside the same transaction.
func (r *Repository) ApplyTransfer(ctx context.Context, sourceID, destID int64, amount decimal.Decimal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transfer: %w", err)
	}
	defer tx.Rollback()

	lockOrder := []int64{sourceID, destID}
	if destID < sourceID {
		lockOrder[0], lockOrder[1] = destID, sourceID
	}

	balances := make(map[int64]decimal.Decimal, 2)
	for _, id := range lockOrder {
		var encoded decimal.Decimal
		err := tx.QueryRowContext(ctx,
			`SELECT balance FROM ezpay.accounts WHERE id = $1 FOR UPDATE`, id).
			Scan(&encoded)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("account %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to lock account %d: %w", id, err)
		}
		balances[id] = r.codec.DecodeDecimal(encoded)
	}

	newSource := balances[sourceID].Sub(amount)
	if newSource.IsNegative() {
		return fmt.Errorf("transfer would overdraw account %d", sourceID)
	}
	newDest := balances[destID].Add(amount)

	update := `UPDATE ezpay.accounts SET balance = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	if _, err := tx.ExecContext(ctx, update, sourceID, r.codec.EncodeDecimal(newSource)); err != nil {
		return fmt.Errorf("failed to update source balance: %w", err)
	}
	if _, err := tx.ExecContext(ctx, update, destID, r.codec.EncodeDecimal(newDest)); err != nil {
		return fmt.Errorf("failed to update destination balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transfer: %w", err)
	}
	return nil
}

// CreateTransaction creates a new transaction record.
func (r *Repository) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO ezpay.transactions (amount, source_id, destination_id, type, status, transaction_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		txn.Amount, txn.SourceID, txn.DestinationID, txn.Type, txn.Status, txn.Time).
		Scan(&txn.ID)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// FindTransactionByID retrieves a transaction by id.
func (r *Repository) FindTransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	query := `
		SELECT id, amount, source_id, destination_id, type, status, transaction_time
		FROM ezpay.transactions
		WHERE id = $1`
	txn := &models.Transaction{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&txn.ID, &txn.Amount, &txn.SourceID, &txn.DestinationID, &txn.Type, &txn.Status, &txn.Time)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return txn, nil
}

// FindAllTransactions retrieves every transaction record.
func (r *Repository) FindAllTransactions(ctx context.Context) ([]*models.Transaction, error) {
	query := `
		SELECT id, amount, source_id, destination_id, type, status, transaction_time
		FROM ezpay.transactions
		ORDER BY id`
	return r.queryTransactions(ctx, query)
}

// FindSamePairSameDay retrieves the transactions between the exact ordered
// (source, destination) pair on the given local day.
func (r *Repository) FindSamePairSameDay(ctx context.Context, sourceID, destID int64, day time.Time) ([]*models.Transaction, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	query := `
		SELECT id, amount, source_id, destination_id, type, status, transaction_time
		FROM ezpay.transactions
		WHERE source_id = $1 AND destination_id = $2
		  AND transaction_time >= $3 AND transaction_time < $4
		ORDER BY transaction_time`
	return r.queryTransactions(ctx, query, sourceID, destID, start, end)
}

func (r *Repository) queryTransactions(ctx context.Context, query string, args ...any) ([]*models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var out []*models.Transaction
	for rows.Next() {
		txn := &models.Transaction{}
		if err := rows.Scan(&txn.ID, &txn.Amount, &txn.SourceID, &txn.DestinationID,
			&txn.Type, &txn.Status, &txn.Time); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return out, nil
}

// CreateFraudRecord creates a new fraud record.
func (r *Repository) CreateFraudRecord(ctx context.Context, record *models.FraudRecord) error {
	query := `
		INSERT INTO ezpay.fraud_records (transaction_id, risk_score)
		VALUES ($1, $2)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query, record.TransactionID, record.RiskScore).
		Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to create fraud record: %w", err)
	}
	return nil
}

// FindFraudRecordByID retrieves a fraud record by id.
func (r *Repository) FindFraudRecordByID(ctx context.Context, id int64) (*models.FraudRecord, error) {
	query := `SELECT id, transaction_id, risk_score FROM ezpay.fraud_records WHERE id = $1`
	record := &models.FraudRecord{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&record.ID, &record.TransactionID, &record.RiskScore)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("fraud record: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find fraud record: %w", err)
	}
	return record, nil
}

// FindAllFraudRecords retrieves every fraud record.
func (r *Repository) FindAllFraudRecords(ctx context.Context) ([]*models.FraudRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, transaction_id, risk_score FROM ezpay.fraud_records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fraud records: %w", err)
	}
	defer rows.Close()

	var out []*models.FraudRecord
	for rows.Next() {
		record := &models.FraudRecord{}
		if err := rows.Scan(&record.ID, &record.TransactionID, &record.RiskScore); err != nil {
			return nil, fmt.Errorf("failed to scan fraud record: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fraud records: %w", err)
	}
	return out, nil
}
