package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ezpay/settlement-service/internal/models"
	"github.com/ezpay/settlement-service/internal/repository"
)

// WatchlistFetcher yields account ids reported by the external watchlist
// feed.
type WatchlistFetcher interface {
	FetchBlacklistedIDs() ([]int64, error)
}

// SyncWatchlist flags every account named by the watchlist feed. Unknown ids
// are skipped; the feed may reference accounts held elsewhere.
func (s *Service) SyncWatchlist(ctx context.Context, fetcher WatchlistFetcher) error {
	ids, err := fetcher.FetchBlacklistedIDs()
	if err != nil {
		return fmt.Errorf("failed to fetch watchlist: %w", err)
	}

	flagged := 0
	for _, id := range ids {
		account, err := s.GetAccount(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if account.Blacklisted {
			continue
		}
		if err := s.store.SetBlacklisted(ctx, id, true); err != nil {
			return fmt.Errorf("failed to flag account %d: %w", id, err)
		}
		flagged++
	}

	s.log.Infof("watchlist sync completed: %d ids received, %d accounts flagged", len(ids), flagged)
	return nil
}

// SendDailyFraudDigest mails a summary of the fraud records whose
// transactions happened on the given day.
func (s *Service) SendDailyFraudDigest(ctx context.Context, day time.Time) error {
	if s.mailer == nil || s.config.AlertEmail == "" {
		return nil
	}

	details, err := s.ListFraudTransactions(ctx)
	if err != nil {
		return err
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var todays []models.FraudDetail
	for _, d := range details {
		if !d.Transaction.Time.Before(start) && d.Transaction.Time.Before(end) {
			todays = append(todays, *d)
		}
	}
	if len(todays) == 0 {
		s.log.Infof("no fraud records for %s, digest skipped", start.Format("2006-01-02"))
		return nil
	}

	if err := s.mailer.SendFraudDigest(s.config.AlertEmail, start, todays); err != nil {
		return fmt.Errorf("failed to send fraud digest: %w", err)
	}
	return nil
}
