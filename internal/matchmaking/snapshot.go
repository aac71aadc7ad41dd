package matchmaking

import (
	"github.com/google/uuid"
)

// QueueSnapshot is the durable state of one queue. Pool membership and
// live sessions are deliberately absent: queue presence is re-derived
// from voice-channel state after a restart, and sessions do not survive
// one.
type QueueSnapshot struct {
	ID            uuid.UUID              `json:"id"`
	Config        QueueConfig            `json:"config"`
	Players       map[string]*PlayerData `json:"players"`
	Bans          map[string]Ban         `json:"bans"`
	Leavers       map[string]int         `json:"leavers"`
	NextSessionID uint64                 `json:"next_session_id"`
}

// Snapshot captures every queue's durable state for the persistence
// collaborator. The engine itself never touches storage.
func (e *Engine) Snapshot() []QueueSnapshot {
	ids := e.QueueIDs()
	out := make([]QueueSnapshot, 0, len(ids))
	for _, id := range ids {
		q := e.queue(id)
		if q == nil {
			continue
		}
		q.mu.Lock()
		snap := QueueSnapshot{
			ID:            q.id,
			Config:        q.cfg,
			Players:       make(map[string]*PlayerData, len(q.players)),
			Bans:          make(map[string]Ban, len(q.bans)),
			Leavers:       make(map[string]int, len(q.leavers)),
			NextSessionID: q.nextSessionID,
		}
		for user, pd := range q.players {
			copied := *pd
			snap.Players[user] = &copied
		}
		for user, b := range q.bans {
			snap.Bans[user] = b
		}
		for user, n := range q.leavers {
			snap.Leavers[user] = n
		}
		q.mu.Unlock()
		out = append(out, snap)
	}
	return out
}

// RestoreQueue recreates a queue from its snapshot. Meant for process
// start, before any events flow.
func (e *Engine) RestoreQueue(snap QueueSnapshot) {
	q := newQueue(snap.ID, snap.Config)
	q.nextSessionID = snap.NextSessionID
	for user, pd := range snap.Players {
		copied := *pd
		if copied.Categories == nil {
			copied.Categories = map[string][]int{}
		}
		q.players[user] = &copied
	}
	for user, b := range snap.Bans {
		q.bans[user] = b
	}
	for user, n := range snap.Leavers {
		q.leavers[user] = n
	}

	e.mu.Lock()
	e.queues[snap.ID] = q
	e.mu.Unlock()
}
