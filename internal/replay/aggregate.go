package replay

import (
	"fmt"
	"sort"

	"github.com/bfeurer/jass-stats-service/internal/domain"
	"github.com/bfeurer/jass-stats-service/internal/striche"
)

// Accumulator walks the same ordered match stream as the rating engine and
// tallies win/loss/draw counts, score differentials and event counts at
// four scopes: global, per group, per partner and per opponent.
//
// Aggregates are caches rebuilt from scratch on every run. The accumulator
// therefore exposes no way to patch prior state: Apply the full stream,
// then read the totals once via Totals.
type Accumulator struct {
	global map[string]*domain.PlayerStat
	groups map[groupKey]*domain.GroupStat
	pairs  map[pairKey]*domain.PairStat
	scores []domain.ScoreEntry

	// Session-level outcomes are settled in Totals, after the last match of
	// every session has been seen: a tournament player can switch sides
	// between passes, so the side that counts is the one from the player's
	// final match of the session.
	sessions     map[string]*sessionTrack
	sessionOrder []string
}

type groupKey struct {
	playerID string
	groupID  string
}

type pairKey struct {
	playerID      string
	counterpartID string
	relation      domain.PairRelation
}

type sessionTrack struct {
	groupID   string
	outcome   domain.Outcome
	lastSides map[string]domain.Side  // player -> side of their last match
	pairSides map[pairKey]domain.Side // pairing -> player's side of their last shared match
	pairOrder []pairKey
	players   []string
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		global:   make(map[string]*domain.PlayerStat),
		groups:   make(map[groupKey]*domain.GroupStat),
		pairs:    make(map[pairKey]*domain.PairStat),
		sessions: make(map[string]*sessionTrack),
	}
}

// Totals is the final, fully-derived output of one accumulation pass. All
// slices are sorted so that identical input produces identical output.
type Totals struct {
	Players []domain.PlayerStat
	Groups  []domain.GroupStat
	Pairs   []domain.PairStat
	Scores  []domain.ScoreEntry
}

// Apply tallies one match for all four participants. Matches must arrive in
// global chronological order so the per-session side tracking settles on
// each player's final side.
func (a *Accumulator) Apply(m domain.Match) error {
	for _, playerID := range m.Participants() {
		side, ok := m.SideOf(playerID)
		if !ok {
			return fmt.Errorf("match '%s': player '%s' has no side", m.ID, playerID)
		}

		if err := a.applyForPlayer(m, playerID, side); err != nil {
			return err
		}
	}

	a.trackSession(m)

	return nil
}

func (a *Accumulator) applyForPlayer(m domain.Match, playerID string, side domain.Side) error {
	own := m.Result(side)
	opp := m.Result(side.Opposite())

	stricheDiff, err := striche.Diff(own.Points, opp.Points)
	if err != nil {
		return fmt.Errorf("match '%s': %w", m.ID, err)
	}

	pointsDiff := own.Points - opp.Points
	res := resultFor(side, m.Winner)

	g := a.globalStat(playerID)
	applyTally(&g.MatchesPlayed, &g.MatchesWon, &g.MatchesLost, &g.MatchesDrawn, res)
	g.PointsDiff += pointsDiff
	g.StricheDiff += stricheDiff
	applyEvents(&g.MatschMade, &g.MatschReceived, &g.SchneiderMade, &g.SchneiderReceived, &g.KontermatschMade, &g.KontermatschReceived, own, opp)
	g.EventsInferred = g.EventsInferred || m.EventsInferred

	gs := a.groupStat(playerID, m.GroupID)
	applyTally(&gs.MatchesPlayed, &gs.MatchesWon, &gs.MatchesLost, &gs.MatchesDrawn, res)
	gs.PointsDiff += pointsDiff
	gs.StricheDiff += stricheDiff
	applyEvents(&gs.MatschMade, &gs.MatschReceived, &gs.SchneiderMade, &gs.SchneiderReceived, &gs.KontermatschMade, &gs.KontermatschReceived, own, opp)
	gs.EventsInferred = gs.EventsInferred || m.EventsInferred

	partnerID := partnerOf(own, playerID)
	ps := a.pairStat(playerID, partnerID, domain.RelationPartner)
	applyTally(&ps.MatchesPlayed, &ps.MatchesWon, &ps.MatchesLost, &ps.MatchesDrawn, res)
	ps.PointsDiff += pointsDiff
	ps.StricheDiff += stricheDiff
	applyEvents(&ps.MatschMade, &ps.MatschReceived, &ps.SchneiderMade, &ps.SchneiderReceived, &ps.KontermatschMade, &ps.KontermatschReceived, own, opp)
	ps.EventsInferred = ps.EventsInferred || m.EventsInferred

	for _, opponentID := range opp.Players {
		os := a.pairStat(playerID, opponentID, domain.RelationOpponent)
		applyTally(&os.MatchesPlayed, &os.MatchesWon, &os.MatchesLost, &os.MatchesDrawn, res)
		os.PointsDiff += pointsDiff
		os.StricheDiff += stricheDiff
		applyEvents(&os.MatschMade, &os.MatschReceived, &os.SchneiderMade, &os.SchneiderReceived, &os.KontermatschMade, &os.KontermatschReceived, own, opp)
		os.EventsInferred = os.EventsInferred || m.EventsInferred
	}

	a.scores = append(a.scores, domain.ScoreEntry{
		PlayerID:    playerID,
		GroupID:     m.GroupID,
		SessionID:   m.SessionID,
		MatchID:     m.ID,
		StricheDiff: stricheDiff,
		PointsDiff:  pointsDiff,
		PlayedAt:    m.CompletedAt,
	})

	return nil
}

func (a *Accumulator) trackSession(m domain.Match) {
	track, ok := a.sessions[m.SessionID]
	if !ok {
		track = &sessionTrack{
			groupID:   m.GroupID,
			outcome:   m.SessionOutcome,
			lastSides: make(map[string]domain.Side),
			pairSides: make(map[pairKey]domain.Side),
		}
		a.sessions[m.SessionID] = track
		a.sessionOrder = append(a.sessionOrder, m.SessionID)
	}

	for _, playerID := range m.Participants() {
		side, _ := m.SideOf(playerID)

		if _, seen := track.lastSides[playerID]; !seen {
			track.players = append(track.players, playerID)
		}

		track.lastSides[playerID] = side

		own := m.Result(side)
		opp := m.Result(side.Opposite())

		partnerKey := pairKey{playerID, partnerOf(own, playerID), domain.RelationPartner}
		if _, seen := track.pairSides[partnerKey]; !seen {
			track.pairOrder = append(track.pairOrder, partnerKey)
		}
		track.pairSides[partnerKey] = side

		for _, opponentID := range opp.Players {
			opponentKey := pairKey{playerID, opponentID, domain.RelationOpponent}
			if _, seen := track.pairSides[opponentKey]; !seen {
				track.pairOrder = append(track.pairOrder, opponentKey)
			}
			track.pairSides[opponentKey] = side
		}
	}
}

// Totals settles session-level tallies and returns the complete, sorted
// aggregate set. The accumulator must not be applied to after calling it.
func (a *Accumulator) Totals() Totals {
	for _, sessionID := range a.sessionOrder {
		track := a.sessions[sessionID]

		for _, playerID := range track.players {
			res := resultFor(track.lastSides[playerID], track.outcome)

			g := a.globalStat(playerID)
			applyTally(&g.SessionsPlayed, &g.SessionsWon, &g.SessionsLost, &g.SessionsDrawn, res)

			gs := a.groupStat(playerID, track.groupID)
			applyTally(&gs.SessionsPlayed, &gs.SessionsWon, &gs.SessionsLost, &gs.SessionsDrawn, res)
		}

		for _, key := range track.pairOrder {
			res := resultFor(track.pairSides[key], track.outcome)

			ps := a.pairStat(key.playerID, key.counterpartID, key.relation)
			applyTally(&ps.SessionsPlayed, &ps.SessionsWon, &ps.SessionsLost, &ps.SessionsDrawn, res)
		}
	}

	totals := Totals{
		Players: make([]domain.PlayerStat, 0, len(a.global)),
		Groups:  make([]domain.GroupStat, 0, len(a.groups)),
		Pairs:   make([]domain.PairStat, 0, len(a.pairs)),
		Scores:  a.scores,
	}

	for _, stat := range a.global {
		totals.Players = append(totals.Players, *stat)
	}

	for _, stat := range a.groups {
		totals.Groups = append(totals.Groups, *stat)
	}

	for _, stat := range a.pairs {
		totals.Pairs = append(totals.Pairs, *stat)
	}

	sort.Slice(totals.Players, func(i, j int) bool {
		return totals.Players[i].PlayerID < totals.Players[j].PlayerID
	})

	sort.Slice(totals.Groups, func(i, j int) bool {
		a, b := totals.Groups[i], totals.Groups[j]
		if a.PlayerID != b.PlayerID {
			return a.PlayerID < b.PlayerID
		}

		return a.GroupID < b.GroupID
	})

	sort.Slice(totals.Pairs, func(i, j int) bool {
		a, b := totals.Pairs[i], totals.Pairs[j]
		if a.PlayerID != b.PlayerID {
			return a.PlayerID < b.PlayerID
		}
		if a.CounterpartID != b.CounterpartID {
			return a.CounterpartID < b.CounterpartID
		}

		return a.Relation < b.Relation
	})

	return totals
}

func (a *Accumulator) globalStat(playerID string) *domain.PlayerStat {
	stat, ok := a.global[playerID]
	if !ok {
		stat = &domain.PlayerStat{PlayerID: playerID}
		a.global[playerID] = stat
	}

	return stat
}

func (a *Accumulator) groupStat(playerID, groupID string) *domain.GroupStat {
	key := groupKey{playerID, groupID}

	stat, ok := a.groups[key]
	if !ok {
		stat = &domain.GroupStat{PlayerID: playerID, GroupID: groupID}
		a.groups[key] = stat
	}

	return stat
}

func (a *Accumulator) pairStat(playerID, counterpartID string, relation domain.PairRelation) *domain.PairStat {
	key := pairKey{playerID, counterpartID, relation}

	stat, ok := a.pairs[key]
	if !ok {
		stat = &domain.PairStat{PlayerID: playerID, CounterpartID: counterpartID, Relation: relation}
		a.pairs[key] = stat
	}

	return stat
}

// result is a top/bottom/draw outcome translated into the perspective of
// one side.
type result int

const (
	resultWon result = iota
	resultLost
	resultDrawn
)

func resultFor(side domain.Side, winner domain.Outcome) result {
	if winner == domain.OutcomeDraw {
		return resultDrawn
	}

	if domain.Outcome(side) == winner {
		return resultWon
	}

	return resultLost
}

func applyTally(played, won, lost, drawn *int, r result) {
	*played++

	switch r {
	case resultWon:
		*won++
	case resultLost:
		*lost++
	case resultDrawn:
		*drawn++
	}
}

func applyEvents(matschMade, matschReceived, schneiderMade, schneiderReceived, kontermatschMade, kontermatschReceived *int, own, opp domain.SideResult) {
	*matschMade += own.Matsch
	*matschReceived += opp.Matsch
	*schneiderMade += own.Schneider
	*schneiderReceived += opp.Schneider
	*kontermatschMade += own.Kontermatsch
	*kontermatschReceived += opp.Kontermatsch
}

func partnerOf(side domain.SideResult, playerID string) string {
	if side.Players[0] == playerID {
		return side.Players[1]
	}

	return side.Players[0]
}
