package replay

import (
	"testing"
	"time"

	"github.com/bfeurer/jass-stats-service/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestOrder_TieBreakChain(t *testing.T) {
	t1 := time.Date(2024, 1, 5, 20, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	matches := []domain.Match{
		{ID: "z", Number: 1, CompletedAt: t2},
		{ID: "b", Number: 2, CompletedAt: t1},
		{ID: "a", Number: 2, CompletedAt: t1},
		{ID: "c", Number: 1, CompletedAt: t1},
	}

	ordered := Order(matches)

	ids := make([]string, len(ordered))
	for i, m := range ordered {
		ids[i] = m.ID
	}

	// Timestamp first, then match number, then ID.
	assert.Equal(t, []string{"c", "a", "b", "z"}, ids)
}

func TestOrder_IsStableAcrossRuns(t *testing.T) {
	ts := time.Date(2024, 1, 5, 20, 0, 0, 0, time.UTC)

	matches := []domain.Match{
		{ID: "m3", Number: 3, CompletedAt: ts},
		{ID: "m1", Number: 1, CompletedAt: ts},
		{ID: "m2", Number: 2, CompletedAt: ts},
	}

	first := Order(matches)

	for range 10 {
		assert.Equal(t, first, Order(matches))
	}
}

func TestOrder_DoesNotMutateInput(t *testing.T) {
	ts := time.Date(2024, 1, 5, 20, 0, 0, 0, time.UTC)

	matches := []domain.Match{
		{ID: "m2", Number: 2, CompletedAt: ts},
		{ID: "m1", Number: 1, CompletedAt: ts},
	}

	_ = Order(matches)

	assert.Equal(t, "m2", matches[0].ID)
}
