package risk

import (
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testScorer() *Scorer {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewScorer(log)
}

func at(hour, min int) time.Time {
	return time.Date(2024, 9, 2, hour, min, 0, 0, time.Local)
}

func amounts(vals ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(vals))
	for _, v := range vals {
		out = append(out, decimal.NewFromInt(v))
	}
	return out
}

func TestScoreTimeTiers(t *testing.T) {
	s := testScorer()
	cases := []struct {
		name   string
		ts     time.Time
		priors []decimal.Decimal
		want   int64
	}{
		{"odd hours, no priors", at(2, 0), nil, 0},
		{"odd hours, one prior", at(2, 0), amounts(100), 50},
		{"odd hours, two priors", at(2, 0), amounts(100, 100), 100},
		{"odd hours, three priors has no tier", at(2, 0), amounts(100, 100, 100), 0},
		{"midnight is inside the odd window", at(0, 0), amounts(100), 50},
		{"five o'clock is outside the odd window", at(5, 0), amounts(100), 0},
		{"normal hours, no priors", at(14, 30), nil, 0},
		{"normal hours, one prior is the literal gap", at(14, 30), amounts(100), 0},
		{"normal hours, two priors", at(14, 30), amounts(100, 100), 25},
		{"normal hours, three priors", at(14, 30), amounts(100, 100, 100), 50},
		{"normal hours, four priors", at(14, 30), amounts(100, 100, 100, 100), 75},
		{"normal hours, five priors", at(14, 30), amounts(100, 100, 100, 100, 100), 100},
		{"normal hours, six priors has no tier", at(14, 30), amounts(100, 100, 100, 100, 100, 100), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Score(Candidate{
				Amount:        decimal.NewFromInt(1000),
				SourceID:      1,
				DestinationID: 2,
				Timestamp:     tc.ts,
			}, History{PriorAmounts: tc.priors})
			assert.True(t, got.Equal(decimal.NewFromInt(tc.want)), "got %s, want %d", got, tc.want)
		})
	}
}

func TestScoreLargeAmountSurcharge(t *testing.T) {
	s := testScorer()
	c := Candidate{SourceID: 1, DestinationID: 2, Timestamp: at(12, 0)}

	c.Amount = decimal.NewFromInt(50_000)
	assert.True(t, s.Score(c, History{}).IsZero(), "50000 is not above the limit")

	c.Amount = decimal.RequireFromString("50000.01")
	got := s.Score(c, History{})
	assert.True(t, got.Equal(decimal.NewFromInt(25)), "got %s", got)
}

func TestScoreBlacklistedSourceShortCircuits(t *testing.T) {
	s := testScorer()
	// Everything stacked: odd hours with two priors, huge amount, huge volume.
	// A blacklisted source still returns exactly 100.
	got := s.Score(Candidate{
		Amount:        decimal.NewFromInt(99_999),
		SourceID:      1,
		DestinationID: 2,
		Timestamp:     at(3, 0),
	}, History{
		PriorAmounts:           amounts(150_000, 150_000),
		SourceBlacklisted:      true,
		DestinationBlacklisted: true,
	})
	assert.True(t, got.Equal(decimal.NewFromInt(100)), "got %s", got)
}

func TestScoreBlacklistedDestination(t *testing.T) {
	s := testScorer()
	got := s.Score(Candidate{
		Amount:        decimal.NewFromInt(1000),
		SourceID:      1,
		DestinationID: 2,
		Timestamp:     at(12, 0),
	}, History{DestinationBlacklisted: true})
	assert.True(t, got.Equal(decimal.NewFromInt(50)), "got %s", got)
}

func TestScoreDailyVolume(t *testing.T) {
	s := testScorer()
	c := Candidate{SourceID: 1, DestinationID: 2, Timestamp: at(12, 0)}

	// Priors + candidate exactly at the limit add nothing.
	c.Amount = decimal.NewFromInt(50_000)
	got := s.Score(c, History{PriorAmounts: amounts(150_000)})
	assert.True(t, got.IsZero(), "got %s", got)

	// One cent over the limit adds 75.
	c.Amount = decimal.RequireFromString("50000.01")
	got = s.Score(c, History{PriorAmounts: amounts(150_000)})
	// 75 volume + 25 large amount (50000.01 > 50000).
	assert.True(t, got.Equal(decimal.NewFromInt(100)), "got %s", got)
}

func TestScoreStacksAbove100(t *testing.T) {
	s := testScorer()
	got := s.Score(Candidate{
		Amount:        decimal.NewFromInt(99_000),
		SourceID:      1,
		DestinationID: 2,
		Timestamp:     at(2, 0),
	}, History{
		PriorAmounts:           amounts(150_000, 150_000),
		DestinationBlacklisted: true,
	})
	// 100 (odd hours, two priors) + 25 (large) + 50 (dest) + 75 (volume).
	assert.True(t, got.Equal(decimal.NewFromInt(250)), "got %s", got)
}
