package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ezpay/settlement-service/internal/codec"
	"github.com/ezpay/settlement-service/internal/config"
	"github.com/ezpay/settlement-service/internal/models"
	"github.com/ezpay/settlement-service/internal/risk"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// AccountStore persists accounts. Implementations receive and return values
// as stored, i.e. codec-encoded; the service does all encoding and decoding
// except inside ApplyTransfer.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	FindAccountByID(ctx context.Context, id int64) (*models.Account, error)
	FindAccountByUsername(ctx context.Context, username string) (*models.Account, error)
	SaveAccount(ctx context.Context, account *models.Account) error
	// SetBlacklisted flips only the blacklist flag. Balance writes stay
	// confined to ApplyTransfer, so flagging an account can never overwrite
	// a concurrent transfer.
	SetBlacklisted(ctx context.Context, id int64, blacklisted bool) error
	DeleteAccount(ctx context.Context, id int64) error
	// ApplyTransfer atomically moves amount (plaintext decimal) from the
	// source balance to the destination balance. It must never be split into
	// separate read and write calls by the caller.
	ApplyTransfer(ctx context.Context, sourceID, destID int64, amount decimal.Decimal) error
}

// TransactionStore persists transaction records.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	FindTransactionByID(ctx context.Context, id int64) (*models.Transaction, error)
	FindAllTransactions(ctx context.Context) ([]*models.Transaction, error)
	FindSamePairSameDay(ctx context.Context, sourceID, destID int64, day time.Time) ([]*models.Transaction, error)
}

// FraudStore persists fraud records.
type FraudStore interface {
	CreateFraudRecord(ctx context.Context, record *models.FraudRecord) error
	FindFraudRecordByID(ctx context.Context, id int64) (*models.FraudRecord, error)
	FindAllFraudRecords(ctx context.Context) ([]*models.FraudRecord, error)
}

// Store bundles the three collaborator stores behind one handle.
type Store interface {
	AccountStore
	TransactionStore
	FraudStore
}

// Mailer sends fraud notifications. A nil mailer disables alerting.
type Mailer interface {
	SendFraudAlert(to string, txn *models.Transaction, score decimal.Decimal) error
	SendFraudDigest(to string, day time.Time, details []models.FraudDetail) error
}

// Service handles settlement business logic.
type Service struct {
	store  Store
	codec  *codec.Codec
	scorer *risk.Scorer
	mailer Mailer
	log    *logrus.Logger
	config *config.Config
	now    func() time.Time
}

// NewService initializes a new service.
func NewService(store Store, cdc *codec.Codec, scorer *risk.Scorer, mailer Mailer, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		store:  store,
		codec:  cdc,
		scorer: scorer,
		mailer: mailer,
		log:    log,
		config: cfg,
		now:    time.Now,
	}
}

// Disposition is the terminal outcome of one settlement.
type Disposition string

const (
	// DispositionRejected means a guard clause failed.
	DispositionRejected Disposition = "rejected"
	// DispositionBlocked means the risk score reached the reject threshold.
	DispositionBlocked Disposition = "blocked"
	// DispositionFlagged means the transfer went through but was reported.
	DispositionFlagged Disposition = "approved_flagged"
	// DispositionApproved is a clean approval.
	DispositionApproved Disposition = "approved"
)

// TransferRequest is a proposed transfer between two accounts.
type TransferRequest struct {
	SourceID            int64           `json:"source_id"`
	DestinationID       int64           `json:"destination_id"`
	Amount              decimal.Decimal `json:"amount"`
	Type                string          `json:"type"`
	TransactionPassword string          `json:"transaction_password"`
}

// SettlementResult reports the outcome of one settlement call. Guard and
// risk rejections are values here, never errors.
type SettlementResult struct {
	Disposition Disposition         `json:"disposition"`
	Approved    bool                `json:"approved"`
	RiskScore   decimal.Decimal     `json:"risk_score"`
	Transaction *models.Transaction `json:"transaction"`
}

var hardAmountCeiling = decimal.NewFromInt(100_000)

// FlagTransaction validates, scores and settles one transfer. Every request
// produces exactly one persisted transaction record, rejected ones included.
func (s *Service) FlagTransaction(ctx context.Context, req TransferRequest) (*SettlementResult, error) {
	source, err := s.GetAccount(ctx, req.SourceID)
	if err != nil {
		return nil, err
	}
	dest := source
	if req.DestinationID != req.SourceID {
		dest, err = s.GetAccount(ctx, req.DestinationID)
		if err != nil {
			return nil, err
		}
	}

	txn := &models.Transaction{
		Amount:        req.Amount,
		SourceID:      req.SourceID,
		DestinationID: req.DestinationID,
		Type:          req.Type,
		Status:        models.StatusFailed,
		Time:          s.now(),
	}

	if reason := s.failedGuard(req, source); reason != "" {
		s.log.Warnf("transfer %d->%d rejected: %s", req.SourceID, req.DestinationID, reason)
		if err := s.persistTransaction(ctx, txn); err != nil {
			return nil, err
		}
		return &SettlementResult{
			Disposition: DispositionRejected,
			RiskScore:   decimal.Zero,
			Transaction: txn,
		}, nil
	}

	priors, err := s.samePairSameDayAmounts(ctx, req.SourceID, req.DestinationID, txn.Time)
	if err != nil {
		return nil, err
	}

	score := s.scorer.Score(risk.Candidate{
		Amount:        req.Amount,
		SourceID:      req.SourceID,
		DestinationID: req.DestinationID,
		Timestamp:     txn.Time,
	}, risk.History{
		PriorAmounts:           priors,
		SourceBlacklisted:      source.Blacklisted,
		DestinationBlacklisted: dest.Blacklisted,
	})

	switch {
	case score.GreaterThanOrEqual(risk.RejectThreshold):
		return s.settleBlocked(ctx, txn, score)
	case score.GreaterThanOrEqual(risk.ReportThreshold):
		return s.settleApproved(ctx, txn, score, true)
	default:
		return s.settleApproved(ctx, txn, score, false)
	}
}

// failedGuard evaluates the guard clauses in order and returns the reason of
// the first failing one, or "" when all pass.
func (s *Service) failedGuard(req TransferRequest, source *models.Account) string {
	switch {
	case req.SourceID == req.DestinationID:
		return "source equals destination"
	case req.Amount.GreaterThan(source.Balance):
		return "amount exceeds source balance"
	case req.Amount.IsNegative():
		return "negative amount"
	case req.Amount.GreaterThanOrEqual(hardAmountCeiling):
		return "amount at or above the hard ceiling"
	case req.TransactionPassword != source.TransactionPassword:
		return "transaction password mismatch"
	case source.Balance.IsNegative():
		return "source balance is negative"
	}
	return ""
}

func (s *Service) settleBlocked(ctx context.Context, txn *models.Transaction, score decimal.Decimal) (*SettlementResult, error) {
	txn.Status = models.StatusFailed
	if err := s.persistTransaction(ctx, txn); err != nil {
		return nil, err
	}

	if err := s.store.SetBlacklisted(ctx, txn.SourceID, true); err != nil {
		return nil, fmt.Errorf("failed to blacklist account %d: %w", txn.SourceID, err)
	}

	if err := s.persistFraudRecord(ctx, txn.ID, score); err != nil {
		return nil, err
	}

	s.log.Warnf("transfer %d->%d blocked with risk score %s, source blacklisted", txn.SourceID, txn.DestinationID, score)
	s.sendAlert(txn, score)

	return &SettlementResult{
		Disposition: DispositionBlocked,
		RiskScore:   score,
		Transaction: txn,
	}, nil
}

func (s *Service) settleApproved(ctx context.Context, txn *models.Transaction, score decimal.Decimal, flagged bool) (*SettlementResult, error) {
	txn.Status = models.StatusSuccess
	if err := s.persistTransaction(ctx, txn); err != nil {
		return nil, err
	}

	if err := s.store.ApplyTransfer(ctx, txn.SourceID, txn.DestinationID, txn.Amount); err != nil {
		return nil, fmt.Errorf("failed to apply transfer: %w", err)
	}

	disposition := DispositionApproved
	if flagged {
		if err := s.persistFraudRecord(ctx, txn.ID, score); err != nil {
			return nil, err
		}
		disposition = DispositionFlagged
		s.log.Warnf("transfer %d->%d approved with flag, risk score %s", txn.SourceID, txn.DestinationID, score)
	} else {
		s.log.Infof("transfer %d->%d approved, risk score %s", txn.SourceID, txn.DestinationID, score)
	}

	return &SettlementResult{
		Disposition: disposition,
		Approved:    true,
		RiskScore:   score,
		Transaction: txn,
	}, nil
}

// samePairSameDayAmounts returns the decoded amounts of today's prior
// transfers between the exact ordered pair.
func (s *Service) samePairSameDayAmounts(ctx context.Context, sourceID, destID int64, day time.Time) ([]decimal.Decimal, error) {
	priors, err := s.store.FindSamePairSameDay(ctx, sourceID, destID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load same-day history: %w", err)
	}
	amounts := make([]decimal.Decimal, 0, len(priors))
	for _, p := range priors {
		amounts = append(amounts, s.codec.DecodeDecimal(p.Amount))
	}
	return amounts, nil
}

func (s *Service) sendAlert(txn *models.Transaction, score decimal.Decimal) {
	if s.mailer == nil || s.config.AlertEmail == "" {
		return
	}
	if err := s.mailer.SendFraudAlert(s.config.AlertEmail, txn, score); err != nil {
		s.log.Errorf("failed to send fraud alert for transaction %d: %v", txn.ID, err)
	}
}
