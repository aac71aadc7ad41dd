package matchmaking

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ban covers a participant in one queue. A nil EndTime never expires.
// Shadow bans let the participant enqueue without error but exclude them
// from every composer pool.
type Ban struct {
	EndTime *time.Time `json:"end_time,omitempty"`
	Reason  string     `json:"reason,omitempty"`
	Shadow  bool       `json:"shadow"`
}

func (b Ban) expired(now time.Time) bool {
	return b.EndTime != nil && !b.EndTime.After(now)
}

// Queue owns one matchmaking pool: configuration, per-participant data
// (the rating store), bans, leaver counters and live sessions. All fields
// are guarded by mu; when Engine.mu is also needed it is always acquired
// first.
type Queue struct {
	mu sync.Mutex

	id  uuid.UUID
	cfg QueueConfig

	queued  map[string]struct{}
	players map[string]*PlayerData
	bans    map[string]Ban
	leavers map[string]int

	sessions      map[uint64]*session
	nextSessionID uint64

	// matchmaking serializes composer passes; set while a runner goroutine
	// is active for this queue.
	matchmaking bool

	leaverTimers map[leaverKey]*time.Timer
}

func newQueue(id uuid.UUID, cfg QueueConfig) *Queue {
	return &Queue{
		id:           id,
		cfg:          cfg,
		queued:       map[string]struct{}{},
		players:      map[string]*PlayerData{},
		bans:         map[string]Ban{},
		leavers:      map[string]int{},
		sessions:     map[uint64]*session{},
		leaverTimers: map[leaverKey]*time.Timer{},
	}
}

// playerLocked returns the queue's record for user, creating it on first
// reference. Caller holds q.mu.
func (q *Queue) playerLocked(user string) *PlayerData {
	pd, ok := q.players[user]
	if !ok {
		pd = &PlayerData{
			Rating:     q.cfg.DefaultRating,
			Categories: map[string][]int{},
		}
		q.players[user] = pd
	}
	return pd
}

// activeBanLocked evaluates ban expiry lazily: an expired entry is removed
// and treated as absent. Caller holds q.mu.
func (q *Queue) activeBanLocked(user string, now time.Time) (Ban, bool) {
	b, ok := q.bans[user]
	if !ok {
		return Ban{}, false
	}
	if b.expired(now) {
		delete(q.bans, user)
		return Ban{}, false
	}
	return b, true
}

// Enqueue adds the participant, and atomically their whole party, to the
// queue pool. It fails without side effects if any party member is in
// a session, already queued elsewhere, or banned.
func (e *Engine) Enqueue(queueID uuid.UUID, user string) error {
	q := e.queue(queueID)
	if q == nil {
		return ErrNoSuchQueue
	}

	e.mu.Lock()
	q.mu.Lock()

	unit := []string{user}
	st := e.playerLocked(user)
	if st.party != uuid.Nil {
		p := e.parties[st.party]
		if len(p.invites) > 0 {
			q.mu.Unlock()
			e.mu.Unlock()
			return ErrPendingInvites
		}
		if len(p.members) > q.cfg.TeamSize {
			q.mu.Unlock()
			e.mu.Unlock()
			return ErrInvalidPartySize
		}
		unit = unit[:0]
		for m := range p.members {
			unit = append(unit, m)
		}
		sort.Strings(unit)
	}

	now := time.Now()
	for _, member := range unit {
		mst := e.playerLocked(member)
		switch mst.status {
		case statusInSession:
			q.mu.Unlock()
			e.mu.Unlock()
			return ErrAlreadyInSession
		case statusQueued:
			if mst.queue == queueID && member == user {
				q.mu.Unlock()
				e.mu.Unlock()
				return ErrAlreadyQueued
			}
			if mst.queue != queueID {
				q.mu.Unlock()
				e.mu.Unlock()
				return ErrAlreadyQueued
			}
		}
		q.playerLocked(member)
		if b, ok := q.activeBanLocked(member, now); ok && !b.Shadow {
			q.mu.Unlock()
			e.mu.Unlock()
			return banError(b.Reason)
		}
	}

	for _, member := range unit {
		mst := e.playerLocked(member)
		if mst.status == statusQueued {
			continue // party member already waiting in this queue
		}
		mst.status = statusQueued
		mst.queue = queueID
		mst.enteredAt = now
		q.queued[member] = struct{}{}
	}

	q.mu.Unlock()
	e.mu.Unlock()

	e.kickMatchmaker(q)
	return nil
}

// Dequeue removes the participant from the pool and clears their
// queue-entry timestamp. Removing someone who is not queued here is a
// no-op.
func (e *Engine) Dequeue(queueID uuid.UUID, user string) error {
	q := e.queue(queueID)
	if q == nil {
		return ErrNoSuchQueue
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	q.mu.Lock()
	defer q.mu.Unlock()

	st, ok := e.players[user]
	if !ok || st.status != statusQueued || st.queue != queueID {
		return nil
	}
	delete(q.queued, user)
	st.status = statusIdle
	st.queue = uuid.Nil
	st.enteredAt = time.Time{}
	return nil
}

// QueuedParticipant is one entry of a queue listing.
type QueuedParticipant struct {
	UserID    string
	EnteredAt time.Time
}

// Queued lists the pool in entry order.
func (e *Engine) Queued(queueID uuid.UUID) ([]QueuedParticipant, error) {
	q := e.queue(queueID)
	if q == nil {
		return nil, ErrNoSuchQueue
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]QueuedParticipant, 0, len(q.queued))
	for user := range q.queued {
		st := e.players[user]
		out = append(out, QueuedParticipant{UserID: user, EnteredAt: st.enteredAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EnteredAt.Equal(out[j].EnteredAt) {
			return out[i].EnteredAt.Before(out[j].EnteredAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

// Ban records a ban and drops the participant from the pool if queued.
func (e *Engine) Ban(queueID uuid.UUID, user string, until *time.Time, reason string, shadow bool) error {
	q := e.queue(queueID)
	if q == nil {
		return ErrNoSuchQueue
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	q.mu.Lock()
	q.bans[user] = Ban{EndTime: until, Reason: reason, Shadow: shadow}
	if st, ok := e.players[user]; ok && st.status == statusQueued && st.queue == queueID {
		delete(q.queued, user)
		st.status = statusIdle
		st.queue = uuid.Nil
		st.enteredAt = time.Time{}
	}
	q.mu.Unlock()
	return nil
}

// Unban removes a ban entry, expired or not.
func (e *Engine) Unban(queueID uuid.UUID, user string) error {
	q := e.queue(queueID)
	if q == nil {
		return ErrNoSuchQueue
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.bans, user)
	return nil
}

// BanEntry is one row of a ban listing.
type BanEntry struct {
	UserID string
	Ban    Ban
}

// Bans lists unexpired bans; stale entries are pruned on the way.
func (e *Engine) Bans(queueID uuid.UUID) ([]BanEntry, error) {
	q := e.queue(queueID)
	if q == nil {
		return nil, ErrNoSuchQueue
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	out := []BanEntry{}
	for user := range q.bans {
		if b, ok := q.activeBanLocked(user, now); ok {
			out = append(out, BanEntry{UserID: user, Ban: b})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// LeaverEntry is one row of a leaver listing.
type LeaverEntry struct {
	UserID string
	Count  int
}

// Leavers lists participants with at least one confirmed leave.
func (e *Engine) Leavers(queueID uuid.UUID) ([]LeaverEntry, error) {
	q := e.queue(queueID)
	if q == nil {
		return nil, ErrNoSuchQueue
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]LeaverEntry, 0, len(q.leavers))
	for user, n := range q.leavers {
		out = append(out, LeaverEntry{UserID: user, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

// SetCostOverrides replaces the participant's sparse cost configuration.
// Category names in the override must exist in the queue configuration.
func (e *Engine) SetCostOverrides(queueID uuid.UUID, user string, o CostOverrides) error {
	q := e.queue(queueID)
	if q == nil {
		return ErrNoSuchQueue
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	for name := range o.WrongCategoryCost {
		if _, ok := q.cfg.Categories[name]; !ok {
			return ErrNoCategoryDefinition
		}
	}
	q.playerLocked(user).Overrides = o
	return nil
}

// SetCategoryMembership records which variants of a category the
// participant plays.
func (e *Engine) SetCategoryMembership(queueID uuid.UUID, user, category string, variants []int) error {
	q := e.queue(queueID)
	if q == nil {
		return ErrNoSuchQueue
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	defined, ok := q.cfg.Categories[category]
	if !ok {
		return ErrNoCategoryDefinition
	}
	for _, v := range variants {
		if v < 0 || v >= len(defined) {
			return ErrNoCategoryDefinition
		}
	}
	q.playerLocked(user).Categories[category] = variants
	return nil
}

// Standing is one leaderboard row.
type Standing struct {
	UserID string
	Data   PlayerData
}

// Leaderboard lists participants by rating mean, best first.
func (e *Engine) Leaderboard(queueID uuid.UUID) ([]Standing, error) {
	q := e.queue(queueID)
	if q == nil {
		return nil, ErrNoSuchQueue
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Standing, 0, len(q.players))
	for user, pd := range q.players {
		out = append(out, Standing{UserID: user, Data: *pd})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Data.Rating.Mu != out[j].Data.Rating.Mu {
			return out[i].Data.Rating.Mu > out[j].Data.Rating.Mu
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

// Stats returns one participant's record.
func (e *Engine) Stats(queueID uuid.UUID, user string) (PlayerData, error) {
	q := e.queue(queueID)
	if q == nil {
		return PlayerData{}, ErrNoSuchQueue
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return *q.playerLocked(user), nil
}
