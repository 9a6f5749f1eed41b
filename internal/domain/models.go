package domain

import "time"

// Side identifies one of the two opposing teams in a match.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideTop {
		return SideBottom
	}

	return SideTop
}

// Outcome is a session- or match-level result from the perspective of the
// record itself, not of a particular player. Draw is a distinct outcome,
// not the absence of a winner.
type Outcome string

const (
	OutcomeTop    Outcome = "top"
	OutcomeBottom Outcome = "bottom"
	OutcomeDraw   Outcome = "draw"
)

// SessionKind distinguishes the two historical payload shapes.
type SessionKind string

const (
	SessionRegular    SessionKind = "regular"
	SessionTournament SessionKind = "tournament"
)

// SessionStatus mirrors the lifecycle of the scorekeeping flow. Only
// completed sessions take part in replay.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

type Group struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

type Player struct {
	ID          string `db:"id"`
	DisplayName string `db:"display_name"`
}

// Session is the raw store record. Payload carries the shape-specific
// document and is decoded by the extract package.
type Session struct {
	ID          string        `db:"id"`
	GroupID     string        `db:"group_id"`
	Kind        SessionKind   `db:"kind"`
	Status      SessionStatus `db:"status"`
	CompletedAt time.Time     `db:"completed_at"`
	Payload     []byte        `db:"payload"`
}

// SideResult holds one side's totals for a single match.
type SideResult struct {
	Players      [2]string `validate:"required,dive,required"`
	Points       int       `validate:"gte=0"`
	WeisPoints   int       `validate:"gte=0"`
	Matsch       int       `validate:"gte=0"`
	Schneider    int       `validate:"gte=0"`
	Kontermatsch int       `validate:"gte=0"`
}

// Match is the canonical record every downstream component consumes. The
// extract package produces it from either session shape; after extraction
// nothing knows which shape it came from.
type Match struct {
	ID        string `validate:"required"`
	SessionID string `validate:"required"`
	GroupID   string `validate:"required"`
	Number    int    `validate:"gte=1"` // position within the session

	Top    SideResult
	Bottom SideResult

	Winner Outcome `validate:"required,oneof=top bottom draw"`
	// SessionOutcome is the session's own recorded result, carried on every
	// match so the accumulator never re-derives it.
	SessionOutcome Outcome   `validate:"required,oneof=top bottom draw"`
	CompletedAt    time.Time `validate:"required"`
	// EventsInferred is set when matsch/schneider counts were reconstructed
	// from the score breakdown instead of read from the record.
	EventsInferred bool
}

// Participants returns all four player IDs, top side first.
func (m *Match) Participants() [4]string {
	return [4]string{m.Top.Players[0], m.Top.Players[1], m.Bottom.Players[0], m.Bottom.Players[1]}
}

// SideOf returns the side a player was on, or false if the player did not
// take part in the match.
func (m *Match) SideOf(playerID string) (Side, bool) {
	if m.Top.Players[0] == playerID || m.Top.Players[1] == playerID {
		return SideTop, true
	}

	if m.Bottom.Players[0] == playerID || m.Bottom.Players[1] == playerID {
		return SideBottom, true
	}

	return "", false
}

// Result returns one side's totals.
func (m *Match) Result(side Side) SideResult {
	if side == SideTop {
		return m.Top
	}

	return m.Bottom
}

// PlayerRating is the persisted current rating of a player.
type PlayerRating struct {
	PlayerID      string    `db:"player_id" json:"player_id"`
	Rating        float64   `db:"rating" json:"rating"`
	MatchesPlayed int       `db:"matches_played" json:"matches_played"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// RatingEntry is one rating-history row: the rating resulting from a match
// and the signed delta that produced it.
type RatingEntry struct {
	PlayerID    string    `db:"player_id" json:"player_id"`
	GroupID     string    `db:"group_id" json:"group_id"`
	SessionID   string    `db:"session_id" json:"session_id"`
	MatchID     string    `db:"match_id" json:"match_id"`
	MatchNumber int       `db:"match_number" json:"match_number"`
	Rating      float64   `db:"rating" json:"rating"`
	Delta       float64   `db:"delta" json:"delta"`
	PlayedAt    time.Time `db:"played_at" json:"played_at"`
}

// ScoreEntry is one scores-history row, the per-match contribution to a
// player's score time series.
type ScoreEntry struct {
	PlayerID    string    `db:"player_id" json:"player_id"`
	GroupID     string    `db:"group_id" json:"group_id"`
	SessionID   string    `db:"session_id" json:"session_id"`
	MatchID     string    `db:"match_id" json:"match_id"`
	StricheDiff int       `db:"striche_diff" json:"striche_diff"`
	PointsDiff  int       `db:"points_diff" json:"points_diff"`
	PlayedAt    time.Time `db:"played_at" json:"played_at"`
}

// PairRelation distinguishes the two kinds of counterpart aggregates.
type PairRelation string

const (
	RelationPartner  PairRelation = "partner"
	RelationOpponent PairRelation = "opponent"
)

// PairStat aggregates one player's record with or against one counterpart.
type PairStat struct {
	PlayerID      string       `db:"player_id" json:"player_id"`
	CounterpartID string       `db:"counterpart_id" json:"counterpart_id"`
	Relation      PairRelation `db:"relation" json:"relation"`

	MatchesPlayed int `db:"matches_played" json:"matches_played"`
	MatchesWon    int `db:"matches_won" json:"matches_won"`
	MatchesLost   int `db:"matches_lost" json:"matches_lost"`
	MatchesDrawn  int `db:"matches_drawn" json:"matches_drawn"`

	SessionsPlayed int `db:"sessions_played" json:"sessions_played"`
	SessionsWon    int `db:"sessions_won" json:"sessions_won"`
	SessionsLost   int `db:"sessions_lost" json:"sessions_lost"`
	SessionsDrawn  int `db:"sessions_drawn" json:"sessions_drawn"`

	PointsDiff  int `db:"points_diff" json:"points_diff"`
	StricheDiff int `db:"striche_diff" json:"striche_diff"`

	MatschMade           int `db:"matsch_made" json:"matsch_made"`
	MatschReceived       int `db:"matsch_received" json:"matsch_received"`
	SchneiderMade        int `db:"schneider_made" json:"schneider_made"`
	SchneiderReceived    int `db:"schneider_received" json:"schneider_received"`
	KontermatschMade     int `db:"kontermatsch_made" json:"kontermatsch_made"`
	KontermatschReceived int `db:"kontermatsch_received" json:"kontermatsch_received"`

	// EventsInferred is true if any contributing match carried inferred
	// rather than recorded event counts.
	EventsInferred bool `db:"events_inferred" json:"events_inferred"`
}

// PlayerStat is the global aggregate across all groups, one row per player.
type PlayerStat struct {
	PlayerID string `db:"player_id" json:"player_id"`

	MatchesPlayed int `db:"matches_played" json:"matches_played"`
	MatchesWon    int `db:"matches_won" json:"matches_won"`
	MatchesLost   int `db:"matches_lost" json:"matches_lost"`
	MatchesDrawn  int `db:"matches_drawn" json:"matches_drawn"`

	SessionsPlayed int `db:"sessions_played" json:"sessions_played"`
	SessionsWon    int `db:"sessions_won" json:"sessions_won"`
	SessionsLost   int `db:"sessions_lost" json:"sessions_lost"`
	SessionsDrawn  int `db:"sessions_drawn" json:"sessions_drawn"`

	PointsDiff  int `db:"points_diff" json:"points_diff"`
	StricheDiff int `db:"striche_diff" json:"striche_diff"`

	MatschMade           int `db:"matsch_made" json:"matsch_made"`
	MatschReceived       int `db:"matsch_received" json:"matsch_received"`
	SchneiderMade        int `db:"schneider_made" json:"schneider_made"`
	SchneiderReceived    int `db:"schneider_received" json:"schneider_received"`
	KontermatschMade     int `db:"kontermatsch_made" json:"kontermatsch_made"`
	KontermatschReceived int `db:"kontermatsch_received" json:"kontermatsch_received"`

	EventsInferred bool `db:"events_inferred" json:"events_inferred"`
}

// GroupStat is the per-group flavor of the same tallies, one row per
// (player, group).
type GroupStat struct {
	PlayerID string `db:"player_id" json:"player_id"`
	GroupID  string `db:"group_id" json:"group_id"`

	MatchesPlayed int `db:"matches_played" json:"matches_played"`
	MatchesWon    int `db:"matches_won" json:"matches_won"`
	MatchesLost   int `db:"matches_lost" json:"matches_lost"`
	MatchesDrawn  int `db:"matches_drawn" json:"matches_drawn"`

	SessionsPlayed int `db:"sessions_played" json:"sessions_played"`
	SessionsWon    int `db:"sessions_won" json:"sessions_won"`
	SessionsLost   int `db:"sessions_lost" json:"sessions_lost"`
	SessionsDrawn  int `db:"sessions_drawn" json:"sessions_drawn"`

	PointsDiff  int `db:"points_diff" json:"points_diff"`
	StricheDiff int `db:"striche_diff" json:"striche_diff"`

	MatschMade           int `db:"matsch_made" json:"matsch_made"`
	MatschReceived       int `db:"matsch_received" json:"matsch_received"`
	SchneiderMade        int `db:"schneider_made" json:"schneider_made"`
	SchneiderReceived    int `db:"schneider_received" json:"schneider_received"`
	KontermatschMade     int `db:"kontermatsch_made" json:"kontermatsch_made"`
	KontermatschReceived int `db:"kontermatsch_received" json:"kontermatsch_received"`

	EventsInferred bool `db:"events_inferred" json:"events_inferred"`
}

// ChartMetric names a group chart document.
type ChartMetric string

const (
	MetricRating      ChartMetric = "rating"
	MetricStricheDiff ChartMetric = "striche_diff"
)

// ChartDoc is a denormalized time series for one group and metric: ordered
// date labels and one series per player, null-padded for dates the player
// has no data.
type ChartDoc struct {
	GroupID string                `json:"group_id"`
	Metric  ChartMetric           `json:"metric"`
	Labels  []string              `json:"labels"`
	Series  map[string][]*float64 `json:"series"`
}
