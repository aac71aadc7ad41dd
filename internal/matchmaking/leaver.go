package matchmaking

import (
	"time"

	"github.com/google/uuid"
)

// leaverKey identifies one outstanding confirmation timer.
type leaverKey struct {
	session uint64
	user    string
}

// FlagLeaver starts the confirmation window for a suspected leaver. Both
// the flagger and the target must be in the session. A second flag while
// a timer is outstanding is a no-op; the window duration is returned
// either way so callers can render the deadline.
func (e *Engine) FlagLeaver(queueID uuid.UUID, sessionID uint64, flagger, target string) (time.Duration, error) {
	q := e.queue(queueID)
	if q == nil {
		return 0, ErrNoSuchQueue
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	s, ok := q.sessions[sessionID]
	if !ok {
		return 0, ErrNoSuchSession
	}
	if !s.contains(flagger) || !s.contains(target) {
		return 0, ErrNotAParticipant
	}

	window := q.cfg.LeaverVerificationTime
	key := leaverKey{session: sessionID, user: target}
	if _, outstanding := q.leaverTimers[key]; outstanding {
		return window, nil
	}
	q.leaverTimers[key] = time.AfterFunc(window, func() {
		e.leaverTimerFired(q, key)
	})
	return window, nil
}

// ConfirmPresence cancels the target's outstanding timer. Confirming with
// no timer outstanding is a no-op, including when the timer already
// fired.
func (e *Engine) ConfirmPresence(queueID uuid.UUID, sessionID uint64, target string) error {
	q := e.queue(queueID)
	if q == nil {
		return ErrNoSuchQueue
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	key := leaverKey{session: sessionID, user: target}
	if timer, ok := q.leaverTimers[key]; ok {
		timer.Stop()
		delete(q.leaverTimers, key)
	}
	return nil
}

// leaverTimerFired converts an unconfirmed flag into a penalty. The key
// presence check under the queue lock is the idempotency guard: a timer
// whose key was already removed (confirmed, or session torn down) applies
// nothing.
func (e *Engine) leaverTimerFired(q *Queue, key leaverKey) {
	q.mu.Lock()
	if _, ok := q.leaverTimers[key]; !ok {
		q.mu.Unlock()
		return
	}
	delete(q.leaverTimers, key)
	q.leavers[key.user]++
	q.mu.Unlock()

	e.adapter.DisconnectParticipant(key.user)
}
