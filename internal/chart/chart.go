// Package chart builds the denormalized per-group time-series documents the
// statistics views render. A document is one metric for one group: an
// ordered list of date labels and one series per player aligned to those
// labels.
package chart

import (
	"sort"
	"time"

	"github.com/bfeurer/jass-stats-service/internal/domain"
)

// DateLayout is the label format of the chart x-axis.
const DateLayout = "2006-01-02"

// Build derives both chart documents for one group from its replayed
// histories. The inputs must already be in replay order.
//
// Labels are the distinct completion dates of the group's matches, sorted
// ascending. A player's series holds their last value of each date. Dates
// before a player's first match are null, so late joiners do not flatline at
// a fabricated value; dates without a match for that player carry the last
// known value forward.
func Build(groupID string, ratings []domain.RatingEntry, scores []domain.ScoreEntry) []domain.ChartDoc {
	ratingSeries := newSeriesBuilder()
	for _, e := range ratings {
		if e.GroupID != groupID {
			continue
		}

		ratingSeries.set(e.PlayerID, e.PlayedAt, e.Rating)
	}

	stricheSeries := newSeriesBuilder()
	running := make(map[string]int)

	for _, e := range scores {
		if e.GroupID != groupID {
			continue
		}

		running[e.PlayerID] += e.StricheDiff
		stricheSeries.set(e.PlayerID, e.PlayedAt, float64(running[e.PlayerID]))
	}

	return []domain.ChartDoc{
		ratingSeries.doc(groupID, domain.MetricRating),
		stricheSeries.doc(groupID, domain.MetricStricheDiff),
	}
}

// seriesBuilder collects per-player values keyed by date label and resolves
// them into null-padded series over the union of all labels.
type seriesBuilder struct {
	values  map[string]map[string]float64 // player -> label -> last value of that date
	players []string
	labels  map[string]struct{}
}

func newSeriesBuilder() *seriesBuilder {
	return &seriesBuilder{
		values: make(map[string]map[string]float64),
		labels: make(map[string]struct{}),
	}
}

func (b *seriesBuilder) set(playerID string, at time.Time, value float64) {
	label := at.UTC().Format(DateLayout)
	b.labels[label] = struct{}{}

	byLabel, ok := b.values[playerID]
	if !ok {
		byLabel = make(map[string]float64)
		b.values[playerID] = byLabel
		b.players = append(b.players, playerID)
	}

	// Later entries of the same date win, matching replay order.
	byLabel[label] = value
}

func (b *seriesBuilder) doc(groupID string, metric domain.ChartMetric) domain.ChartDoc {
	labels := make([]string, 0, len(b.labels))
	for label := range b.labels {
		labels = append(labels, label)
	}

	sort.Strings(labels)

	players := make([]string, len(b.players))
	copy(players, b.players)
	sort.Strings(players)

	series := make(map[string][]*float64, len(players))

	for _, playerID := range players {
		byLabel := b.values[playerID]
		points := make([]*float64, len(labels))

		var last *float64

		for i, label := range labels {
			if v, ok := byLabel[label]; ok {
				value := v
				last = &value
			}

			if last != nil {
				value := *last
				points[i] = &value
			}
		}

		series[playerID] = points
	}

	return domain.ChartDoc{
		GroupID: groupID,
		Metric:  metric,
		Labels:  labels,
		Series:  series,
	}
}
