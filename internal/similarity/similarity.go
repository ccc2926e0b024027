// Package similarity provides the character-overlap score used by the fraud
// comparator and exposed standalone.
package similarity

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrDegenerateInput is returned when the overlap leaves nothing to divide by
// (union equals intersection, e.g. fully overlapping short strings).
var ErrDegenerateInput = errors.New("similarity: degenerate input, zero divisor")

// overlap counts runes of a that occur anywhere in b. Each occurrence in a
// counts once, regardless of how often it repeats in b.
func overlap(a, b string) (intersection, union int) {
	runesA := []rune(a)
	for _, r := range runesA {
		if strings.ContainsRune(b, r) {
			intersection++
		}
	}
	union = len(runesA) + len([]rune(b))
	return intersection, union
}

// Score returns intersection / (union - intersection) as a raw float64.
func Score(a, b string) (float64, error) {
	intersection, union := overlap(a, b)
	divisor := union - intersection
	if divisor == 0 {
		return 0, ErrDegenerateInput
	}
	return float64(intersection) / float64(divisor), nil
}

// ScoreDecimal returns the same ratio as a decimal rounded half-up to two
// fractional digits.
func ScoreDecimal(a, b string) (decimal.Decimal, error) {
	intersection, union := overlap(a, b)
	divisor := union - intersection
	if divisor == 0 {
		return decimal.Zero, ErrDegenerateInput
	}
	return decimal.NewFromInt(int64(intersection)).
		DivRound(decimal.NewFromInt(int64(divisor)), 2), nil
}
