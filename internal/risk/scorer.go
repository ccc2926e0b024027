// Package risk computes the fraud-risk score for a candidate transfer from
// same-day history between the same ordered account pair and account flags.
//
// Scores are additive decimals. Callers compare the result against the
// reporting threshold (25) and the reject threshold (100); sums above 100 are
// possible and carry no extra meaning.
package risk

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Thresholds applied by the settlement processor.
var (
	// ReportThreshold is the minimum score that produces a fraud record.
	ReportThreshold = decimal.NewFromInt(25)
	// RejectThreshold blocks the transfer and blacklists the source.
	RejectThreshold = decimal.NewFromInt(100)
)

var (
	largeAmountLimit = decimal.NewFromInt(50_000)
	dailyVolumeLimit = decimal.NewFromInt(200_000)

	scoreBlacklisted = decimal.NewFromInt(100)
	scoreDestListed  = decimal.NewFromInt(50)
	scoreLargeAmount = decimal.NewFromInt(25)
	scoreDailyVolume = decimal.NewFromInt(75)
)

// Odd-hours window: local time of day in [00:00, 05:00).
const oddHoursEnd = 5

// Candidate is the transfer under evaluation.
type Candidate struct {
	Amount        decimal.Decimal
	SourceID      int64
	DestinationID int64
	Timestamp     time.Time
}

// History is the decoded same-day prior activity between the exact ordered
// (source, destination) pair, plus the blacklist flags of both accounts.
type History struct {
	PriorAmounts           []decimal.Decimal
	SourceBlacklisted      bool
	DestinationBlacklisted bool
}

// Scorer computes risk scores. It is stateless; every call returns a fresh
// value and nothing is cached between calls.
type Scorer struct {
	log *logrus.Logger
}

// NewScorer creates a scorer.
func NewScorer(log *logrus.Logger) *Scorer {
	return &Scorer{log: log}
}

// Score evaluates a candidate transfer against its same-day history.
//
// A blacklisted source short-circuits to exactly 100, discarding any sum
// accumulated so far and skipping the remaining rules.
func (s *Scorer) Score(c Candidate, h History) decimal.Decimal {
	score := decimal.Zero
	priorCount := len(h.PriorAmounts)

	if oddHours(c.Timestamp) {
		score = score.Add(oddHoursTier(priorCount))
	} else {
		score = score.Add(normalHoursTier(priorCount))
	}

	if c.Amount.GreaterThan(largeAmountLimit) {
		score = score.Add(scoreLargeAmount)
	}

	if h.SourceBlacklisted {
		s.log.Infof("source account %d is blacklisted, forcing score to %s", c.SourceID, scoreBlacklisted)
		return scoreBlacklisted
	}
	if h.DestinationBlacklisted {
		score = score.Add(scoreDestListed)
	}

	total := c.Amount
	for _, amount := range h.PriorAmounts {
		total = total.Add(amount)
	}
	if total.GreaterThan(dailyVolumeLimit) {
		score = score.Add(scoreDailyVolume)
	}

	s.log.Debugf("scored transfer %d->%d: %s (%d same-day priors)", c.SourceID, c.DestinationID, score, priorCount)
	return score
}

func oddHours(ts time.Time) bool {
	return ts.Hour() < oddHoursEnd
}

// oddHoursTier maps the same-day prior count to a surcharge inside the odd
// hours window. Counts above 2 have no defined tier and add nothing.
func oddHoursTier(count int) decimal.Decimal {
	switch count {
	case 1:
		return decimal.NewFromInt(50)
	case 2:
		return decimal.NewFromInt(100)
	default:
		return decimal.Zero
	}
}

// normalHoursTier maps the prior count outside odd hours. Count 1 yields
// zero; the gap versus the odd-hours table is intentional and kept as-is.
func normalHoursTier(count int) decimal.Decimal {
	switch count {
	case 2:
		return decimal.NewFromInt(25)
	case 3:
		return decimal.NewFromInt(50)
	case 4:
		return decimal.NewFromInt(75)
	case 5:
		return decimal.NewFromInt(100)
	default:
		return decimal.Zero
	}
}
