// Package striche converts raw Jass point totals into the Swiss tally-mark
// (Striche) notation: units of 100, 50 and 20 plus a remainder below 20.
//
// The conversion is not a change-making algorithm. The 90/80/70/60/50 bands
// below are fixed scoring-sheet rules and the order of the checks matters
// because the bands overlap arithmetically.
package striche

import (
	"github.com/bfeurer/jass-stats-service/internal/apperrors"
)

// Breakdown is the tally representation of a point total.
type Breakdown struct {
	Hundreds  int
	Fifties   int
	Twenties  int
	Remainder int
}

// Total reconstructs the original point total.
func (b Breakdown) Total() int {
	return b.Hundreds*100 + b.Fifties*50 + b.Twenties*20 + b.Remainder
}

// Units is the number of tally marks drawn on the sheet, remainder excluded.
func (b Breakdown) Units() int {
	return b.Hundreds + b.Fifties + b.Twenties
}

// Convert breaks a non-negative point total into Striche units. Negative
// input is a contract violation and returns apperrors.ErrNegativeScore.
func Convert(total int) (Breakdown, error) {
	if total < 0 {
		return Breakdown{}, apperrors.ErrNegativeScore
	}

	b := Breakdown{Hundreds: total / 100}
	rest := total % 100

	switch {
	case rest >= 90:
		b.Fifties = 1
		b.Twenties = 2
		rest -= 90
	case rest >= 80:
		b.Twenties = 4
		rest -= 80
	case rest >= 70:
		b.Fifties = 1
		b.Twenties = 1
		rest -= 70
	case rest >= 60:
		b.Twenties = 3
		rest -= 60
	case rest >= 50:
		b.Fifties = 1
		rest -= 50
	case rest >= 20:
		b.Twenties = rest / 20
		rest %= 20
	}

	b.Remainder = rest

	return b, nil
}

// Diff returns the signed difference in tally units between two point
// totals. It feeds the scores history and the striche_diff chart metric.
func Diff(a, b int) (int, error) {
	ba, err := Convert(a)
	if err != nil {
		return 0, err
	}

	bb, err := Convert(b)
	if err != nil {
		return 0, err
	}

	return ba.Units() - bb.Units(), nil
}
