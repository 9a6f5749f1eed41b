package striche

import (
	"testing"

	"github.com/bfeurer/jass-stats-service/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_Bands(t *testing.T) {
	testCases := []struct {
		name     string
		total    int
		expected Breakdown
	}{
		{name: "zero", total: 0, expected: Breakdown{}},
		{name: "remainder only", total: 19, expected: Breakdown{Remainder: 19}},
		{name: "single twenty", total: 20, expected: Breakdown{Twenties: 1}},
		{name: "twenties with remainder", total: 45, expected: Breakdown{Twenties: 2, Remainder: 5}},
		{name: "fifty band", total: 50, expected: Breakdown{Fifties: 1}},
		{name: "fifty band upper edge", total: 59, expected: Breakdown{Fifties: 1, Remainder: 9}},
		{name: "sixty band", total: 60, expected: Breakdown{Twenties: 3}},
		{name: "seventy band", total: 70, expected: Breakdown{Fifties: 1, Twenties: 1}},
		{name: "eighty band", total: 80, expected: Breakdown{Twenties: 4}},
		{name: "just below ninety band", total: 89, expected: Breakdown{Twenties: 4, Remainder: 9}},
		{name: "ninety band", total: 90, expected: Breakdown{Fifties: 1, Twenties: 2}},
		{name: "ninety band with remainder", total: 99, expected: Breakdown{Fifties: 1, Twenties: 2, Remainder: 9}},
		{name: "plain hundred", total: 100, expected: Breakdown{Hundreds: 1}},
		{name: "hundreds with eighty band", total: 189, expected: Breakdown{Hundreds: 1, Twenties: 4, Remainder: 9}},
		{name: "large total", total: 1257, expected: Breakdown{Hundreds: 12, Fifties: 1, Remainder: 7}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Convert(tc.total)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, b)
		})
	}
}

func TestConvert_TotalReconstruction(t *testing.T) {
	for total := 0; total <= 2500; total++ {
		b, err := Convert(total)
		require.NoError(t, err)

		assert.Equal(t, total, b.Total(), "total %d does not survive round-trip", total)
		assert.Less(t, b.Remainder, 20, "remainder of %d must stay below a twenty", total)
	}
}

func TestConvert_NegativeInput(t *testing.T) {
	_, err := Convert(-1)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNegativeScore)
}

func TestDiff(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     int
		expected int
	}{
		{name: "equal totals", a: 157, b: 157, expected: 0},
		{name: "winner ahead", a: 300, b: 100, expected: 2},
		{name: "loser perspective", a: 100, b: 300, expected: -2},
		{name: "band difference", a: 90, b: 89, expected: -1}, // 90 draws 3 marks, 89 draws 4
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Diff(tc.a, tc.b)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, d)
		})
	}
}

func TestDiff_NegativeInput(t *testing.T) {
	_, err := Diff(-5, 10)
	assert.ErrorIs(t, err, apperrors.ErrNegativeScore)

	_, err = Diff(10, -5)
	assert.ErrorIs(t, err, apperrors.ErrNegativeScore)
}
