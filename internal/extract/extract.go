// Package extract normalizes the two historical session payload shapes into
// one canonical sequence of matches.
//
// Regular sessions carry a flat `matches` array and one side assignment for
// the whole sitting; tournaments carry a `passes` array where every pass has
// its own four participants. Downstream components only ever see
// domain.Match; the shape distinction ends here.
package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/bfeurer/jass-stats-service/internal/apperrors"
	"github.com/bfeurer/jass-stats-service/internal/domain"
	"github.com/bfeurer/jass-stats-service/internal/validation"
)

// schneiderThreshold marks the losing-side score below which an inferred
// schneider is counted. Only used when the record carries no event counts.
const schneiderThreshold = 100

// regularPayload is the flat session shape.
type regularPayload struct {
	Teams struct {
		Top    []string `json:"top"`
		Bottom []string `json:"bottom"`
	} `json:"teams"`
	Winner  string         `json:"winner"`
	Matches []matchPayload `json:"matches"`
}

// tournamentPayload is the nested pass shape. Each pass names its own
// participants, so side assignment is resolved per pass.
type tournamentPayload struct {
	Winner string        `json:"winner"`
	Passes []passPayload `json:"passes"`
}

type matchPayload struct {
	ID          string      `json:"id"`
	Number      int         `json:"number"`
	CompletedAt time.Time   `json:"completedAt"`
	Top         sidePayload `json:"top"`
	Bottom      sidePayload `json:"bottom"`
	Winner      string      `json:"winner"`
}

type passPayload struct {
	matchPayload
	TopPlayers    []string `json:"topPlayers"`
	BottomPlayers []string `json:"bottomPlayers"`
}

// sidePayload mirrors one side's totals as stored. Event counts are pointers
// because legacy records omit them entirely, which is different from a
// recorded zero.
type sidePayload struct {
	Points       int  `json:"points"`
	WeisPoints   int  `json:"weisPoints"`
	Matsch       *int `json:"matsch"`
	Schneider    *int `json:"schneider"`
	Kontermatsch *int `json:"kontermatsch"`
}

func (sp sidePayload) hasRecordedEvents() bool {
	return sp.Matsch != nil || sp.Schneider != nil || sp.Kontermatsch != nil
}

// Extract decodes a session's payload and returns its canonical match
// sequence, ordered by intra-session match number. A session that cannot be
// normalized returns a *apperrors.SkippedSessionError; the caller reports it
// and moves on, never aborting the run.
func Extract(session domain.Session) ([]domain.Match, error) {
	if session.Status != domain.SessionCompleted {
		return nil, skip(session.ID, "session is not completed")
	}

	var (
		matches []domain.Match
		err     error
	)

	switch session.Kind {
	case domain.SessionRegular:
		matches, err = extractRegular(session)
	case domain.SessionTournament:
		matches, err = extractTournament(session)
	default:
		return nil, skip(session.ID, fmt.Sprintf("%v: %q", apperrors.ErrUnknownSessionKind, session.Kind))
	}

	if err != nil {
		return nil, err
	}

	if len(matches) == 0 {
		return nil, skip(session.ID, "session has no matches")
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Number < matches[j].Number
	})

	for i := range matches {
		if err := validation.ValidateStruct(&matches[i]); err != nil {
			return nil, skip(session.ID, fmt.Sprintf("match %d invalid: %v", matches[i].Number, err))
		}

		if err := checkParticipants(&matches[i]); err != nil {
			return nil, skip(session.ID, fmt.Sprintf("match %d: %v", matches[i].Number, err))
		}
	}

	return matches, nil
}

func extractRegular(session domain.Session) ([]domain.Match, error) {
	var payload regularPayload
	if err := json.Unmarshal(session.Payload, &payload); err != nil {
		return nil, skip(session.ID, fmt.Sprintf("cannot decode regular payload: %v", err))
	}

	if len(payload.Teams.Top) != 2 || len(payload.Teams.Bottom) != 2 {
		return nil, skip(session.ID, "side assignment must name exactly 2 players per side")
	}

	sessionOutcome, err := parseOutcome(payload.Winner)
	if err != nil {
		return nil, skip(session.ID, "session has no recorded outcome")
	}

	matches := make([]domain.Match, 0, len(payload.Matches))

	for _, mp := range payload.Matches {
		m, err := buildMatch(session, mp, payload.Teams.Top, payload.Teams.Bottom, sessionOutcome)
		if err != nil {
			return nil, err
		}

		matches = append(matches, m)
	}

	return matches, nil
}

func extractTournament(session domain.Session) ([]domain.Match, error) {
	var payload tournamentPayload
	if err := json.Unmarshal(session.Payload, &payload); err != nil {
		return nil, skip(session.ID, fmt.Sprintf("cannot decode tournament payload: %v", err))
	}

	sessionOutcome, err := parseOutcome(payload.Winner)
	if err != nil {
		return nil, skip(session.ID, "tournament has no recorded outcome")
	}

	matches := make([]domain.Match, 0, len(payload.Passes))

	for _, pp := range payload.Passes {
		// Sides can reshuffle between passes, so the assignment comes from
		// the pass itself, not from the session.
		if len(pp.TopPlayers) != 2 || len(pp.BottomPlayers) != 2 {
			return nil, skip(session.ID, fmt.Sprintf("pass %d must name exactly 2 players per side", pp.Number))
		}

		m, err := buildMatch(session, pp.matchPayload, pp.TopPlayers, pp.BottomPlayers, sessionOutcome)
		if err != nil {
			return nil, err
		}

		matches = append(matches, m)
	}

	return matches, nil
}

func buildMatch(session domain.Session, mp matchPayload, topPlayers, bottomPlayers []string, sessionOutcome domain.Outcome) (domain.Match, error) {
	if mp.Top.Points < 0 || mp.Bottom.Points < 0 {
		return domain.Match{}, skip(session.ID, fmt.Sprintf("match %d has negative points", mp.Number))
	}

	matchID := mp.ID
	if matchID == "" {
		// Legacy matches carry no own identifier; a synthetic one keeps the
		// ordering tie-break chain total.
		matchID = fmt.Sprintf("%s-m%d", session.ID, mp.Number)
	}

	completedAt := mp.CompletedAt
	if completedAt.IsZero() {
		completedAt = session.CompletedAt
	}

	winner := deriveWinner(mp)

	m := domain.Match{
		ID:             matchID,
		SessionID:      session.ID,
		GroupID:        session.GroupID,
		Number:         mp.Number,
		Top:            domain.SideResult{Players: [2]string{topPlayers[0], topPlayers[1]}, Points: mp.Top.Points, WeisPoints: mp.Top.WeisPoints},
		Bottom:         domain.SideResult{Players: [2]string{bottomPlayers[0], bottomPlayers[1]}, Points: mp.Bottom.Points, WeisPoints: mp.Bottom.WeisPoints},
		Winner:         winner,
		SessionOutcome: sessionOutcome,
		CompletedAt:    completedAt,
	}

	applyEvents(&m, mp)

	return m, nil
}

// deriveWinner uses the recorded winner when present; the recorded value wins
// over point comparison because game rules can override it. Without a record,
// the points decide and equal points are a draw.
func deriveWinner(mp matchPayload) domain.Outcome {
	if outcome, err := parseOutcome(mp.Winner); err == nil {
		return outcome
	}

	switch {
	case mp.Top.Points > mp.Bottom.Points:
		return domain.OutcomeTop
	case mp.Bottom.Points > mp.Top.Points:
		return domain.OutcomeBottom
	default:
		return domain.OutcomeDraw
	}
}

// applyEvents fills matsch/schneider/kontermatsch counts. Recorded counts are
// taken as-is (a side's count means events that side made). When neither side
// recorded anything the counts are inferred from the final scores and the
// match is flagged, so consumers can tell recorded from derived data.
//
// Inference rule: a losing side with 0 points is a matsch made by the winner;
// a losing side above 0 but below the schneider threshold is a schneider made
// by the winner. Kontermatsch is never inferred, the scores alone cannot
// identify the trump declarer.
func applyEvents(m *domain.Match, mp matchPayload) {
	if mp.Top.hasRecordedEvents() || mp.Bottom.hasRecordedEvents() {
		m.Top.Matsch = intOrZero(mp.Top.Matsch)
		m.Top.Schneider = intOrZero(mp.Top.Schneider)
		m.Top.Kontermatsch = intOrZero(mp.Top.Kontermatsch)
		m.Bottom.Matsch = intOrZero(mp.Bottom.Matsch)
		m.Bottom.Schneider = intOrZero(mp.Bottom.Schneider)
		m.Bottom.Kontermatsch = intOrZero(mp.Bottom.Kontermatsch)

		return
	}

	m.EventsInferred = true

	var winner, loser *domain.SideResult

	switch m.Winner {
	case domain.OutcomeTop:
		winner, loser = &m.Top, &m.Bottom
	case domain.OutcomeBottom:
		winner, loser = &m.Bottom, &m.Top
	default:
		// A drawn match produces no events.
		return
	}

	switch {
	case loser.Points == 0:
		winner.Matsch = 1
	case loser.Points < schneiderThreshold:
		winner.Schneider = 1
	}
}

func checkParticipants(m *domain.Match) error {
	seen := make(map[string]struct{}, 4)

	for _, id := range m.Participants() {
		if id == "" {
			return fmt.Errorf("empty participant id")
		}

		if _, ok := seen[id]; ok {
			return fmt.Errorf("player '%s' appears on both seats", id)
		}

		seen[id] = struct{}{}
	}

	return nil
}

func parseOutcome(s string) (domain.Outcome, error) {
	switch domain.Outcome(s) {
	case domain.OutcomeTop, domain.OutcomeBottom, domain.OutcomeDraw:
		return domain.Outcome(s), nil
	default:
		return "", fmt.Errorf("unknown outcome %q", s)
	}
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}

	return *p
}

func skip(sessionID, reason string) error {
	return &apperrors.SkippedSessionError{SessionID: sessionID, Reason: reason}
}
