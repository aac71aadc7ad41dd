package matchmaking

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/matchbot-dev/matchbot/internal/rating"
)

// OutcomeKind discriminates the result-vote choices.
type OutcomeKind int

const (
	OutcomeWin OutcomeKind = iota
	OutcomeTie
	OutcomeCancelled
)

// Outcome is a session result: a winning team index, a tie, or a
// cancellation (no rating changes).
type Outcome struct {
	Kind OutcomeKind `json:"kind"`
	Team int         `json:"team,omitempty"`
}

func Win(team int) Outcome { return Outcome{Kind: OutcomeWin, Team: team} }

var (
	Tie       = Outcome{Kind: OutcomeTie}
	Cancelled = Outcome{Kind: OutcomeCancelled}
)

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeWin:
		return fmt.Sprintf("Team %d", o.Team+1)
	case OutcomeTie:
		return "Tie"
	default:
		return "Cancel"
	}
}

// session is one live match. Guarded by the owning queue's mutex.
type session struct {
	id        uint64
	name      string
	teams     [][]string
	createdAt time.Time

	// requiredVotes is frozen at commit time so reconfiguring the queue's
	// team shape cannot move a running session's majority threshold.
	requiredVotes int

	// mapOptions is the ordered ballot; expiry ties break toward the
	// earliest offered option.
	mapOptions    []string
	mapVotes      map[string]string
	mapResolved   bool
	mapChoice     string
	mapExpiry     *time.Timer
	mapVoteEndsAt time.Time

	resultVotes    map[string]Outcome
	resultResolved bool

	categories map[string]int
	channels   SessionChannels
}

func (s *session) contains(user string) bool {
	for _, team := range s.teams {
		for _, m := range team {
			if m == user {
				return true
			}
		}
	}
	return false
}

// SessionInfo is a read-only copy of a session for adapters and commands.
type SessionInfo struct {
	ID            uint64
	Name          string
	Teams         [][]string
	MapOptions    []string
	MapChoice     string // empty until the map vote resolves
	Categories    map[string]int
	CreatedAt     time.Time
	MapVoteEndsAt time.Time // zero when the vote is unbounded
}

// SessionChannels holds the adapter-created channel ids attached to a
// session, kept only so teardown can name them back to the adapter.
type SessionChannels struct {
	Lobby string
	Teams []string
}

// MapVoteStatus reports a map tally after a vote or expiry.
type MapVoteStatus struct {
	Counts   map[string]int
	Resolved bool
	Choice   string
}

// ResultVoteStatus reports a result tally after a vote.
type ResultVoteStatus struct {
	Counts   map[Outcome]int
	Resolved bool
	Outcome  Outcome
}

// Sessions lists the queue's live sessions.
func (e *Engine) Sessions(queueID uuid.UUID) ([]SessionInfo, error) {
	q := e.queue(queueID)
	if q == nil {
		return nil, ErrNoSuchQueue
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]SessionInfo, 0, len(q.sessions))
	for _, s := range q.sessions {
		out = append(out, s.info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *session) info() SessionInfo {
	teams := make([][]string, len(s.teams))
	for i, t := range s.teams {
		teams[i] = append([]string{}, t...)
	}
	cats := make(map[string]int, len(s.categories))
	for k, v := range s.categories {
		cats[k] = v
	}
	return SessionInfo{
		ID:            s.id,
		Name:          s.name,
		Teams:         teams,
		MapOptions:    append([]string{}, s.mapOptions...),
		MapChoice:     s.mapChoice,
		Categories:    cats,
		CreatedAt:     s.createdAt,
		MapVoteEndsAt: s.mapVoteEndsAt,
	}
}

// CastMapVote records (or overwrites) the participant's map vote. When a
// choice reaches the majority threshold the track resolves to it; votes
// after resolution are no-ops.
func (e *Engine) CastMapVote(queueID uuid.UUID, sessionID uint64, user, choice string) (MapVoteStatus, error) {
	q := e.queue(queueID)
	if q == nil {
		return MapVoteStatus{}, ErrNoSuchQueue
	}

	var status MapVoteStatus
	var announce bool

	q.mu.Lock()
	s, ok := q.sessions[sessionID]
	if !ok {
		q.mu.Unlock()
		return MapVoteStatus{}, ErrNoSuchSession
	}
	if !s.contains(user) {
		q.mu.Unlock()
		return MapVoteStatus{}, ErrNotAParticipant
	}
	if !containsString(s.mapOptions, choice) {
		q.mu.Unlock()
		return MapVoteStatus{}, fmt.Errorf("map %q is not on the ballot", choice)
	}
	if s.mapResolved {
		status = MapVoteStatus{Counts: mapCounts(s), Resolved: true, Choice: s.mapChoice}
		q.mu.Unlock()
		return status, nil
	}

	s.mapVotes[user] = choice
	counts := mapCounts(s)
	if counts[choice] >= s.requiredVotes {
		s.resolveMapLocked(choice)
		announce = true
	}
	status = MapVoteStatus{Counts: counts, Resolved: s.mapResolved, Choice: s.mapChoice}
	info := s.info()
	q.mu.Unlock()

	if announce {
		e.adapter.AnnounceMapResult(queueID, info, status.Choice)
	}
	return status, nil
}

// resolveMapLocked marks the map track resolved and cancels the expiry
// timer. Caller holds q.mu.
func (s *session) resolveMapLocked(choice string) {
	s.mapResolved = true
	s.mapChoice = choice
	if s.mapExpiry != nil {
		s.mapExpiry.Stop()
		s.mapExpiry = nil
	}
}

func mapCounts(s *session) map[string]int {
	counts := map[string]int{}
	for _, v := range s.mapVotes {
		counts[v]++
	}
	return counts
}

// expireMapVote fires when a bounded map vote runs out of time: the
// plurality choice wins, ties and the empty ballot resolving to the
// earliest offered option. Racing against a concurrent resolution is
// settled by the mapResolved flag under the queue lock.
func (e *Engine) expireMapVote(q *Queue, sessionID uint64) {
	q.mu.Lock()
	s, ok := q.sessions[sessionID]
	if !ok || s.mapResolved {
		q.mu.Unlock()
		return
	}

	counts := mapCounts(s)
	choice := s.mapOptions[0]
	bestCount := counts[choice]
	for _, option := range s.mapOptions[1:] {
		if counts[option] > bestCount {
			choice, bestCount = option, counts[option]
		}
	}
	s.resolveMapLocked(choice)
	info := s.info()
	q.mu.Unlock()

	e.adapter.AnnounceMapResult(q.id, info, choice)
}

// CastResultVote records (or overwrites) the participant's result vote.
// Reaching the majority threshold resolves the session: ratings update
// (unless cancelled), participants are released, and the session is torn
// down exactly once.
func (e *Engine) CastResultVote(queueID uuid.UUID, sessionID uint64, user string, choice Outcome) (ResultVoteStatus, error) {
	q := e.queue(queueID)
	if q == nil {
		return ResultVoteStatus{}, ErrNoSuchQueue
	}
	if choice.Kind == OutcomeWin {
		q.mu.Lock()
		teamCount := q.cfg.TeamCount
		q.mu.Unlock()
		if choice.Team < 0 || choice.Team >= teamCount {
			return ResultVoteStatus{}, fmt.Errorf("team %d is out of range", choice.Team)
		}
	}

	// Lock order: Engine.mu before Queue.mu; resolution releases
	// participants from the global table.
	e.mu.Lock()
	q.mu.Lock()

	s, ok := q.sessions[sessionID]
	if !ok {
		q.mu.Unlock()
		e.mu.Unlock()
		return ResultVoteStatus{}, ErrNoSuchSession
	}
	if !s.contains(user) {
		q.mu.Unlock()
		e.mu.Unlock()
		return ResultVoteStatus{}, ErrNotAParticipant
	}
	if s.resultResolved {
		status := ResultVoteStatus{Counts: resultCounts(s), Resolved: true}
		q.mu.Unlock()
		e.mu.Unlock()
		return status, nil
	}

	s.resultVotes[user] = choice
	counts := resultCounts(s)
	status := ResultVoteStatus{Counts: counts}
	if counts[choice] >= s.requiredVotes {
		status.Resolved = true
		status.Outcome = choice
		e.resolveSessionLocked(q, s, choice)
	}
	info := s.info()
	channels := s.channels
	q.mu.Unlock()
	e.mu.Unlock()

	if status.Resolved {
		e.finishSession(q, info, channels, status.Outcome)
	}
	return status, nil
}

// ForceOutcome resolves a session's result track directly, bypassing the
// tally. Used by admins for abandoned or disputed sessions. Forcing an
// already-resolved session is a no-op.
func (e *Engine) ForceOutcome(queueID uuid.UUID, sessionID uint64, outcome Outcome) error {
	q := e.queue(queueID)
	if q == nil {
		return ErrNoSuchQueue
	}

	e.mu.Lock()
	q.mu.Lock()
	s, ok := q.sessions[sessionID]
	if !ok {
		q.mu.Unlock()
		e.mu.Unlock()
		return ErrNoSuchSession
	}
	if s.resultResolved {
		q.mu.Unlock()
		e.mu.Unlock()
		return nil
	}
	e.resolveSessionLocked(q, s, outcome)
	info := s.info()
	channels := s.channels
	q.mu.Unlock()
	e.mu.Unlock()

	e.finishSession(q, info, channels, outcome)
	return nil
}

func resultCounts(s *session) map[Outcome]int {
	counts := map[Outcome]int{}
	for _, v := range s.resultVotes {
		counts[v]++
	}
	return counts
}

// resolveSessionLocked applies the outcome and removes the session from
// the registry. Caller holds both Engine.mu and q.mu; adapter commands
// are emitted by finishSession after the locks are released.
func (e *Engine) resolveSessionLocked(q *Queue, s *session, outcome Outcome) {
	s.resultResolved = true
	s.resolveMapLocked(s.mapChoice)

	if outcome.Kind != OutcomeCancelled {
		applyOutcomeLocked(q, s.teams, outcome)
	}

	for _, team := range s.teams {
		for _, user := range team {
			if st, ok := e.players[user]; ok && st.status == statusInSession && st.session == s.id {
				st.status = statusIdle
				st.queue = uuid.Nil
				st.session = 0
			}
		}
	}

	for key, timer := range q.leaverTimers {
		if key.session == s.id {
			timer.Stop()
			delete(q.leaverTimers, key)
		}
	}
	delete(q.sessions, s.id)
}

// applyOutcomeLocked is the outcome applier: it converts team placements
// into ranks (winner first, everyone else tied second; a tie ranks all
// teams equal first), runs the rating system, and writes the results
// back. resolveSessionLocked calls it at most once per session. Caller
// holds q.mu.
func applyOutcomeLocked(q *Queue, teams [][]string, outcome Outcome) {
	ranks := make([]int, len(teams))
	for i := range ranks {
		switch {
		case outcome.Kind == OutcomeTie:
			ranks[i] = 1
		case outcome.Kind == OutcomeWin && outcome.Team == i:
			ranks[i] = 1
		default:
			ranks[i] = 2
		}
	}

	before := make([][]rating.Rating, len(teams))
	for i, team := range teams {
		before[i] = make([]rating.Rating, len(team))
		for j, user := range team {
			before[i][j] = q.playerLocked(user).Rating
		}
	}

	after := rating.RateTeams(before, ranks, rating.DefaultConfig())
	for i, team := range teams {
		for j, user := range team {
			pd := q.playerLocked(user)
			pd.Rating = after[i][j]
			switch {
			case outcome.Kind == OutcomeTie:
				pd.Stats.Draws++
			case outcome.Kind == OutcomeWin && outcome.Team == i:
				pd.Stats.Wins++
			default:
				pd.Stats.Losses++
			}
		}
	}
}

// finishSession emits the post-resolution adapter commands. The state
// transition is already committed; adapter failures are logged by the
// adapter and never rolled back. A re-kick follows because released
// participants may want to requeue into a waiting pool.
func (e *Engine) finishSession(q *Queue, info SessionInfo, channels SessionChannels, outcome Outcome) {
	e.adapter.AnnounceOutcome(q.id, info, outcome)
	e.adapter.TeardownSession(q.id, info, channels)
	e.kickMatchmaker(q)
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
