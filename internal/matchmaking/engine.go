// Package matchmaking implements the matchmaking and session-lifecycle
// engine: queue and party state, the cost-based greedy team composer, the
// map/result vote state machine, leaver detection and rating updates. It
// is platform-agnostic: events arrive as method calls and side effects
// leave through the Adapter interface.
package matchmaking

import (
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Adapter executes the engine's platform side effects: channel creation
// and teardown, participant moves and announcements. The engine never
// holds a lock across an Adapter call, and a committed state transition
// is never rolled back when an adapter call fails; adapters log and move
// on.
type Adapter interface {
	// CreateSessionChannels provisions the session's lobby and team
	// channels and moves the participants in. The returned channel ids
	// are handed back verbatim at teardown.
	CreateSessionChannels(queueID uuid.UUID, s SessionInfo) (SessionChannels, error)
	AnnounceMapResult(queueID uuid.UUID, s SessionInfo, mapName string)
	AnnounceOutcome(queueID uuid.UUID, s SessionInfo, outcome Outcome)
	TeardownSession(queueID uuid.UUID, s SessionInfo, channels SessionChannels)
	DisconnectParticipant(user string)
}

// nopAdapter keeps the engine usable before an adapter is attached and in
// tests that only exercise state transitions.
type nopAdapter struct{}

func (nopAdapter) CreateSessionChannels(uuid.UUID, SessionInfo) (SessionChannels, error) {
	return SessionChannels{}, nil
}
func (nopAdapter) AnnounceMapResult(uuid.UUID, SessionInfo, string)        {}
func (nopAdapter) AnnounceOutcome(uuid.UUID, SessionInfo, Outcome)         {}
func (nopAdapter) TeardownSession(uuid.UUID, SessionInfo, SessionChannels) {}
func (nopAdapter) DisconnectParticipant(string)                            {}

// Engine owns every queue plus the cross-queue participant and party
// tables. Lock order everywhere: Engine.mu before any Queue.mu; locks are
// released before timers fire side effects or the adapter is called.
type Engine struct {
	mu      sync.Mutex
	players map[string]*playerState
	parties map[uuid.UUID]*party
	queues  map[uuid.UUID]*Queue

	adapter Adapter
}

// NewEngine returns an empty engine. A nil adapter is replaced with a
// no-op one; SetAdapter attaches the real one before traffic starts.
func NewEngine(adapter Adapter) *Engine {
	if adapter == nil {
		adapter = nopAdapter{}
	}
	return &Engine{
		players: map[string]*playerState{},
		parties: map[uuid.UUID]*party{},
		queues:  map[uuid.UUID]*Queue{},
		adapter: adapter,
	}
}

// SetAdapter attaches the platform adapter. Call before any events flow.
func (e *Engine) SetAdapter(a Adapter) {
	e.adapter = a
}

// CreateQueue registers a new queue and returns its id.
func (e *Engine) CreateQueue(cfg QueueConfig) uuid.UUID {
	return e.createQueueWithID(uuid.New(), cfg)
}

func (e *Engine) createQueueWithID(id uuid.UUID, cfg QueueConfig) uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queues[id] = newQueue(id, cfg)
	return id
}

// RemoveQueue deletes an idle queue and releases every waiting
// participant back to idle. It refuses while sessions are live so a
// misfired removal cannot strand a running match.
func (e *Engine) RemoveQueue(queueID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	q, ok := e.queues[queueID]
	if !ok {
		return ErrNoSuchQueue
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.sessions) > 0 {
		return ErrSessionsLive
	}
	for user := range q.queued {
		if st := e.players[user]; st != nil && st.status == statusQueued && st.queue == queueID {
			st.status = statusIdle
			st.queue = uuid.Nil
			st.enteredAt = time.Time{}
		}
	}
	// A composer goroutine may still hold this queue; an empty pool makes
	// any later pass a no-op.
	q.queued = map[string]struct{}{}
	delete(e.queues, queueID)
	return nil
}

// QueueIDs lists all registered queues.
func (e *Engine) QueueIDs() []uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(e.queues))
	for id := range e.queues {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// Config returns a copy of the queue's configuration.
func (e *Engine) Config(queueID uuid.UUID) (QueueConfig, error) {
	q := e.queue(queueID)
	if q == nil {
		return QueueConfig{}, ErrNoSuchQueue
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cfg, nil
}

// Configure mutates the queue's configuration under its lock.
func (e *Engine) Configure(queueID uuid.UUID, mutate func(*QueueConfig)) error {
	q := e.queue(queueID)
	if q == nil {
		return ErrNoSuchQueue
	}
	q.mu.Lock()
	mutate(&q.cfg)
	q.mu.Unlock()

	e.kickMatchmaker(q)
	return nil
}

func (e *Engine) queue(id uuid.UUID) *Queue {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queues[id]
}

// playerLocked returns the global record for user, creating it on first
// reference. Caller holds e.mu.
func (e *Engine) playerLocked(user string) *playerState {
	st, ok := e.players[user]
	if !ok {
		st = &playerState{}
		e.players[user] = st
	}
	return st
}

// kickMatchmaker starts a composer runner for the queue unless one is
// already active. Composer passes against one queue never overlap each
// other or a concurrent join.
func (e *Engine) kickMatchmaker(q *Queue) {
	q.mu.Lock()
	if q.matchmaking {
		q.mu.Unlock()
		return
	}
	q.matchmaking = true
	q.mu.Unlock()

	go e.runMatchmaker(q)
}

// runMatchmaker drives composition attempts until the pool can no longer
// fill a session. An over-cost or infeasible attempt sleeps for the
// computed delay and retries; a successful attempt launches the session
// and immediately tries again.
func (e *Engine) runMatchmaker(q *Queue) {
	for {
		launched, retryAfter := e.tryCompose(q)
		if launched {
			continue
		}
		if retryAfter > 0 {
			time.Sleep(retryAfter)
			continue
		}

		// Re-check under the lock so a join that raced the last pass is
		// not lost between our final attempt and clearing the flag.
		q.mu.Lock()
		if len(q.queued) >= q.cfg.TotalSlots() {
			q.mu.Unlock()
			continue
		}
		q.matchmaking = false
		q.mu.Unlock()
		return
	}
}

// composeRetryDelay is the pause after an outright composition failure.
const composeRetryDelay = 10 * time.Second

// tryCompose runs one composer pass. It holds Engine.mu and q.mu for the
// whole pass so the commit is atomic with respect to joins and votes on
// the same queue, then launches the session with no locks held. Returns
// whether a session was launched and, if not, how long to wait before
// retrying (zero when the pool is simply too small).
func (e *Engine) tryCompose(q *Queue) (bool, time.Duration) {
	e.mu.Lock()
	q.mu.Lock()

	total := q.cfg.TotalSlots()
	now := time.Now()

	// Shadow-banned (and any still-banned) participants never reach the
	// composer; lazy expiry prunes stale entries on the way.
	pool := make([]string, 0, len(q.queued))
	for user := range q.queued {
		if _, banned := q.activeBanLocked(user, now); banned {
			continue
		}
		pool = append(pool, user)
	}
	if len(pool) < total {
		q.mu.Unlock()
		e.mu.Unlock()
		return false, 0
	}

	units, err := e.poolUnitsLocked(q, pool, now)
	if err != nil {
		q.mu.Unlock()
		e.mu.Unlock()
		log.Printf("matchmaker: queue %s: %v", q.id, err)
		return false, composeRetryDelay
	}

	teams, eval, err := compose(units, &q.cfg)
	if err != nil {
		q.mu.Unlock()
		e.mu.Unlock()
		log.Printf("matchmaker: queue %s: %v", q.id, err)
		return false, composeRetryDelay
	}

	if eval.Cost > q.cfg.MaximumQueueCost {
		delay := time.Duration((eval.Cost-q.cfg.MaximumQueueCost)/float64(total)+1.0) * time.Second
		q.mu.Unlock()
		e.mu.Unlock()
		log.Printf("matchmaker: queue %s: best assignment costs %.2f, deferring %s", q.id, eval.Cost, delay)
		return false, delay
	}

	s := e.commitSessionLocked(q, teams, eval, now)
	info := s.info()
	q.mu.Unlock()
	e.mu.Unlock()

	e.launchSession(q, s, info)
	return true, 0
}

// poolUnitsLocked snapshots the pool into composer units: one per party,
// one per unpartied participant. A party with a member outside the pool
// contributes nothing (its present members cannot be placed without the
// absent ones). Caller holds e.mu and q.mu.
func (e *Engine) poolUnitsLocked(q *Queue, pool []string, now time.Time) ([]unit, error) {
	inPool := make(map[string]struct{}, len(pool))
	for _, user := range pool {
		inPool[user] = struct{}{}
	}

	units := []unit{}
	seenParties := map[uuid.UUID]struct{}{}
	for _, user := range pool {
		st := e.playerLocked(user)
		members := []string{user}
		if st.party != uuid.Nil {
			if _, done := seenParties[st.party]; done {
				continue
			}
			seenParties[st.party] = struct{}{}
			p := e.parties[st.party]
			if len(p.members) > q.cfg.TeamSize {
				return nil, ErrInvalidPartySize
			}
			members = members[:0]
			complete := true
			for m := range p.members {
				if _, ok := inPool[m]; !ok {
					complete = false
					break
				}
				members = append(members, m)
			}
			if !complete {
				continue
			}
			sort.Strings(members)
		}

		u := unit{leader: members[0]}
		for _, m := range members {
			pd := q.playerLocked(m)
			mst := e.playerLocked(m)
			u.members = append(u.members, candidate{
				id:          m,
				ratingMu:    pd.Rating.Mu,
				cost:        pd.Overrides.Derive(q.cfg.DefaultCost),
				categories:  pd.Categories,
				waitSeconds: now.Sub(mst.enteredAt).Seconds(),
			})
		}
		units = append(units, u)
	}
	return units, nil
}

// commitSessionLocked atomically moves the chosen participants from the
// pool into a new session. Caller holds e.mu and q.mu.
func (e *Engine) commitSessionLocked(q *Queue, teams [][]candidate, eval Evaluation, now time.Time) *session {
	q.nextSessionID++
	s := &session{
		id:            q.nextSessionID,
		name:          fmt.Sprintf("#%d", q.nextSessionID),
		createdAt:     now,
		requiredVotes: q.cfg.RequiredVotes(),
		mapVotes:      map[string]string{},
		resultVotes:   map[string]Outcome{},
		categories:    eval.Categories,
	}
	s.teams = make([][]string, len(teams))
	for i, team := range teams {
		for _, p := range team {
			s.teams[i] = append(s.teams[i], p.id)
			delete(q.queued, p.id)
			st := e.playerLocked(p.id)
			st.status = statusInSession
			st.queue = q.id
			st.session = s.id
			st.enteredAt = time.Time{}
		}
	}
	s.mapOptions = drawMapBallot(q.cfg.Maps, q.cfg.MapVoteCount)
	if len(s.mapOptions) > 1 && q.cfg.MapVoteTime > 0 {
		s.mapVoteEndsAt = now.Add(q.cfg.MapVoteTime)
	}
	q.sessions[s.id] = s
	return s
}

// drawMapBallot picks voteCount maps at random from the pool, or the
// whole pool when it is smaller. A vote count of zero still yields a
// single random map so every session has one.
func drawMapBallot(maps []string, voteCount int) []string {
	if len(maps) == 0 {
		return nil
	}
	n := voteCount
	if n <= 0 {
		n = 1
	}
	if n > len(maps) {
		n = len(maps)
	}
	perm := rand.Perm(len(maps))
	ballot := make([]string, 0, n)
	for _, idx := range perm[:n] {
		ballot = append(ballot, maps[idx])
	}
	return ballot
}

// launchSession hands the new session to the adapter and arms the
// map-vote expiry timer. Called with no locks held.
func (e *Engine) launchSession(q *Queue, s *session, info SessionInfo) {
	log.Printf("matchmaker: queue %s: session %s starting with %d teams", q.id, info.Name, len(info.Teams))

	channels, err := e.adapter.CreateSessionChannels(q.id, info)
	if err != nil {
		log.Printf("matchmaker: queue %s: channel creation for session %s failed: %v", q.id, info.Name, err)
	}

	q.mu.Lock()
	if live, ok := q.sessions[s.id]; ok {
		live.channels = channels
		// A single-option ballot needs no vote; a bounded multi-option
		// ballot gets its expiry timer.
		if len(live.mapOptions) == 1 && !live.mapResolved {
			live.resolveMapLocked(live.mapOptions[0])
			choice := live.mapChoice
			q.mu.Unlock()
			e.adapter.AnnounceMapResult(q.id, info, choice)
			return
		}
		if !live.mapVoteEndsAt.IsZero() && !live.mapResolved {
			sid := live.id
			live.mapExpiry = time.AfterFunc(time.Until(live.mapVoteEndsAt), func() {
				e.expireMapVote(q, sid)
			})
		}
	}
	q.mu.Unlock()
}
