package similarity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"abc", "abc", 1.0},
		{"abc", "xyz", 0.0},
		// Multiset-over-a semantics: both 'a's in a match the single 'a' in b.
		{"aa", "a", 2.0},
		{"abcd", "ab", 0.5},
		{"kathy", "cathy", 4.0 / 6.0},
	}
	for _, tc := range cases {
		got, err := Score(tc.a, tc.b)
		require.NoError(t, err, "Score(%q, %q)", tc.a, tc.b)
		assert.InDelta(t, tc.want, got, 1e-12, "Score(%q, %q)", tc.a, tc.b)
	}
}

func TestScoreDegenerate(t *testing.T) {
	// Empty inputs: union == intersection == 0.
	_, err := Score("", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDegenerateInput))

	_, err = ScoreDecimal("", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDegenerateInput))
}

func TestScoreDecimal(t *testing.T) {
	cases := []struct {
		a, b string
		want string
	}{
		{"abc", "abc", "1"},
		{"abc", "xyz", "0"},
		{"abcd", "ab", "0.5"},
		// 4/6 rounds half-up to 0.67.
		{"kathy", "cathy", "0.67"},
		// 1/3 rounds to 0.33.
		{"a", "abb", "0.33"},
	}
	for _, tc := range cases {
		got, err := ScoreDecimal(tc.a, tc.b)
		require.NoError(t, err, "ScoreDecimal(%q, %q)", tc.a, tc.b)
		assert.Equal(t, tc.want, got.String(), "ScoreDecimal(%q, %q)", tc.a, tc.b)
	}
}
