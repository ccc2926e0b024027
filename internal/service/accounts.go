package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ezpay/settlement-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

// ErrInvalidCredentials is returned when authentication fails. The cause is
// deliberately not distinguished.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CreateAccount registers a new account with an initial balance.
func (s *Service) CreateAccount(ctx context.Context, username, password, email, transactionPassword string, balance decimal.Decimal) (*models.Account, error) {
	if username == "" {
		return nil, fmt.Errorf("username must not be empty")
	}
	account := &models.Account{
		Username:            username,
		Password:            password,
		Email:               email,
		TransactionPassword: transactionPassword,
		Balance:             balance,
	}
	enc := s.encodeAccount(account)
	if err := s.store.CreateAccount(ctx, enc); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	account.ID = enc.ID
	account.CreatedAt = enc.CreatedAt
	account.UpdatedAt = enc.UpdatedAt

	s.log.Infof("account created: %d", account.ID)
	return account, nil
}

// GetAccount returns the decoded account with the given id.
func (s *Service) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	account, err := s.store.FindAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decodeAccount(account)
}

// GetAccountByUsername looks an account up by its plaintext username. The
// codec is deterministic, so the lookup compares encoded usernames.
func (s *Service) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	account, err := s.store.FindAccountByUsername(ctx, s.codec.EncodeText(username))
	if err != nil {
		return nil, err
	}
	return s.decodeAccount(account)
}

// UpdateAccount applies a typed partial update and returns the new state.
func (s *Service) UpdateAccount(ctx context.Context, id int64, patch models.AccountPatch) (*models.Account, error) {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Username != nil {
		account.Username = *patch.Username
	}
	if patch.Email != nil {
		account.Email = *patch.Email
	}
	if patch.TransactionPassword != nil {
		account.TransactionPassword = *patch.TransactionPassword
	}
	if patch.Balance != nil {
		account.Balance = *patch.Balance
	}
	if patch.Blacklisted != nil {
		account.Blacklisted = *patch.Blacklisted
	}

	if err := s.saveAccount(ctx, account); err != nil {
		return nil, err
	}
	s.log.Infof("account updated: %d", id)
	return account, nil
}

// DeleteAccount removes an account.
func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		return err
	}
	s.log.Infof("account deleted: %d", id)
	return nil
}

// Login authenticates by username and password and returns a JWT.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	account, err := s.GetAccountByUsername(ctx, username)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if account.Password != password {
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", account.ID),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("account logged in: %d", account.ID)
	return tokenString, nil
}
