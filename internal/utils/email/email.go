package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/ezpay/settlement-service/internal/config"
	"github.com/ezpay/settlement-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendFraudAlert notifies the ops address that a transfer was blocked and
// its source account blacklisted.
func (s *Sender) SendFraudAlert(to string, txn *models.Transaction, score decimal.Decimal) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Blocked transaction %d", txn.ID)

	body := fmt.Sprintf(
		"Transaction %d from account %d to account %d was blocked.\n"+
			"Amount: %s\n"+
			"Risk score: %s\n"+
			"Time: %s\n"+
			"The source account has been blacklisted.\n",
		txn.ID, txn.SourceID, txn.DestinationID,
		txn.Amount.StringFixed(2), score,
		txn.Time.Format("2006-01-02 15:04:05"),
	)
	e.Text = []byte(body)

	return s.send(e)
}

// SendFraudDigest mails the daily summary of fraud records.
func (s *Sender) SendFraudDigest(to string, day time.Time, details []models.FraudDetail) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Fraud digest for %s", day.Format("2006-01-02"))

	body := fmt.Sprintf("Fraud records created on %s: %d\n\n", day.Format("2006-01-02"), len(details))
	for _, d := range details {
		body += fmt.Sprintf(
			"- fraud %d: transaction %d (%d -> %d), amount %s, status %s, risk score %s\n",
			d.ID, d.TransactionID, d.Transaction.SourceID, d.Transaction.DestinationID,
			d.Transaction.Amount.StringFixed(2), d.Transaction.Status, d.RiskScore,
		)
	}
	e.Text = []byte(body)

	return s.send(e)
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %v: %v", e.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %v: %s", e.To, e.Subject)
	return nil
}
