package matchmaking

import (
	"errors"
	"testing"
	"time"
)

func newTestEngine() *Engine {
	return NewEngine(nil)
}

func TestEnqueueDequeue(t *testing.T) {
	e := newTestEngine()
	cfg := DefaultQueueConfig()
	qid := e.CreateQueue(cfg)

	if err := e.Enqueue(qid, "alice"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	queued, err := e.Queued(qid)
	if err != nil {
		t.Fatalf("queued: %v", err)
	}
	if len(queued) != 1 || queued[0].UserID != "alice" {
		t.Fatalf("queued = %+v, want alice", queued)
	}
	if queued[0].EnteredAt.IsZero() {
		t.Error("queue-entry timestamp not set")
	}

	if err := e.Enqueue(qid, "alice"); !errors.Is(err, ErrAlreadyQueued) {
		t.Errorf("double enqueue err = %v, want ErrAlreadyQueued", err)
	}

	if err := e.Dequeue(qid, "alice"); err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	queued, _ = e.Queued(qid)
	if len(queued) != 0 {
		t.Fatalf("queued after dequeue = %+v, want empty", queued)
	}
	if st := e.players["alice"]; !st.enteredAt.IsZero() {
		t.Error("queue-entry timestamp not cleared by dequeue")
	}

	// Dequeueing someone who is not queued is a no-op.
	if err := e.Dequeue(qid, "bob"); err != nil {
		t.Errorf("dequeue of unqueued user: %v", err)
	}
}

func TestEnqueueWhileInSession(t *testing.T) {
	e := newTestEngine()
	qid := e.CreateQueue(DefaultQueueConfig())

	e.mu.Lock()
	st := e.playerLocked("alice")
	st.status = statusInSession
	st.queue = qid
	st.session = 1
	e.mu.Unlock()

	if err := e.Enqueue(qid, "alice"); !errors.Is(err, ErrAlreadyInSession) {
		t.Errorf("err = %v, want ErrAlreadyInSession", err)
	}
}

func TestEnqueueBans(t *testing.T) {
	e := newTestEngine()
	qid := e.CreateQueue(DefaultQueueConfig())

	tests := []struct {
		name    string
		until   *time.Time
		shadow  bool
		wantErr error
	}{
		{"permanent ban", nil, false, ErrBanned},
		{"future expiry", timePtr(time.Now().Add(time.Hour)), false, ErrBanned},
		{"shadow ban enqueues silently", nil, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := "user-" + tt.name
			if err := e.Ban(qid, user, tt.until, "smurfing", tt.shadow); err != nil {
				t.Fatalf("ban: %v", err)
			}
			err := e.Enqueue(qid, user)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("enqueue: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpiredBanIsRemovedOnEnqueue(t *testing.T) {
	e := newTestEngine()
	qid := e.CreateQueue(DefaultQueueConfig())
	q := e.queue(qid)

	past := time.Now().Add(-time.Hour)
	if err := e.Ban(qid, "alice", &past, "afk", false); err != nil {
		t.Fatalf("ban: %v", err)
	}
	if err := e.Enqueue(qid, "alice"); err != nil {
		t.Fatalf("enqueue after ban expiry: %v", err)
	}

	q.mu.Lock()
	_, still := q.bans["alice"]
	q.mu.Unlock()
	if still {
		t.Error("stale ban entry was not removed")
	}
}

func TestBanDropsQueuedParticipant(t *testing.T) {
	e := newTestEngine()
	qid := e.CreateQueue(DefaultQueueConfig())

	if err := e.Enqueue(qid, "alice"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := e.Ban(qid, "alice", nil, "", false); err != nil {
		t.Fatalf("ban: %v", err)
	}
	queued, _ := e.Queued(qid)
	if len(queued) != 0 {
		t.Fatalf("queued = %+v, want empty after ban", queued)
	}
}

func TestEnqueuePartyRules(t *testing.T) {
	e := newTestEngine()
	cfg := DefaultQueueConfig()
	cfg.TeamSize = 2
	qid := e.CreateQueue(cfg)

	pv, err := e.InviteToParty("alice", "bob")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	// Pending invites block queueing.
	if err := e.Enqueue(qid, "alice"); !errors.Is(err, ErrPendingInvites) {
		t.Fatalf("err = %v, want ErrPendingInvites", err)
	}

	if _, err := e.AcceptPartyInvite(pv.ID, "bob"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := e.Enqueue(qid, "alice"); err != nil {
		t.Fatalf("enqueue party: %v", err)
	}

	// The whole party entered the pool together.
	queued, _ := e.Queued(qid)
	if len(queued) != 2 {
		t.Fatalf("queued = %+v, want both party members", queued)
	}
}

func TestEnqueueOversizedParty(t *testing.T) {
	e := newTestEngine()
	cfg := DefaultQueueConfig()
	cfg.TeamSize = 2
	qid := e.CreateQueue(cfg)

	pv, err := e.InviteToParty("alice", "bob")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := e.AcceptPartyInvite(pv.ID, "bob"); err != nil {
		t.Fatalf("accept bob: %v", err)
	}
	if pv, err = e.InviteToParty("alice", "carol"); err != nil {
		t.Fatalf("invite carol: %v", err)
	}
	if _, err := e.AcceptPartyInvite(pv.ID, "carol"); err != nil {
		t.Fatalf("accept carol: %v", err)
	}

	if err := e.Enqueue(qid, "alice"); !errors.Is(err, ErrInvalidPartySize) {
		t.Fatalf("err = %v, want ErrInvalidPartySize", err)
	}
}

func TestSetCategoryMembership(t *testing.T) {
	e := newTestEngine()
	cfg := DefaultQueueConfig()
	cfg.Categories = map[string][]string{"mode": {"hardpoint", "control"}}
	qid := e.CreateQueue(cfg)

	if err := e.SetCategoryMembership(qid, "alice", "mode", []int{1}); err != nil {
		t.Fatalf("set membership: %v", err)
	}
	if err := e.SetCategoryMembership(qid, "alice", "rank", []int{0}); !errors.Is(err, ErrNoCategoryDefinition) {
		t.Errorf("unknown category err = %v, want ErrNoCategoryDefinition", err)
	}
	if err := e.SetCategoryMembership(qid, "alice", "mode", []int{5}); !errors.Is(err, ErrNoCategoryDefinition) {
		t.Errorf("out-of-range variant err = %v, want ErrNoCategoryDefinition", err)
	}

	pd, err := e.Stats(qid, "alice")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(pd.Categories["mode"]) != 1 || pd.Categories["mode"][0] != 1 {
		t.Errorf("memberships = %v, want [1]", pd.Categories["mode"])
	}
}

func TestSetCostOverridesValidatesCategories(t *testing.T) {
	e := newTestEngine()
	qid := e.CreateQueue(DefaultQueueConfig())

	err := e.SetCostOverrides(qid, "alice", CostOverrides{
		WrongCategoryCost: map[string]float64{"mode": 3},
	})
	if !errors.Is(err, ErrNoCategoryDefinition) {
		t.Fatalf("err = %v, want ErrNoCategoryDefinition", err)
	}
}

func TestRemoveQueue(t *testing.T) {
	e := newTestEngine()
	qid := e.CreateQueue(DefaultQueueConfig())

	if err := e.Enqueue(qid, "alice"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := e.RemoveQueue(qid); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := e.RemoveQueue(qid); !errors.Is(err, ErrNoSuchQueue) {
		t.Errorf("second remove err = %v, want ErrNoSuchQueue", err)
	}

	// Removal released alice back to idle.
	other := e.CreateQueue(DefaultQueueConfig())
	if err := e.Enqueue(other, "alice"); err != nil {
		t.Errorf("enqueue after removal: %v", err)
	}
}

func TestRemoveQueueRefusedWhileSessionsLive(t *testing.T) {
	e := newTestEngine()
	cfg := DefaultQueueConfig()
	cfg.TeamSize = 1
	qid := e.CreateQueue(cfg)

	sid := startSession(t, e, qid, [][]string{{"alice"}, {"bob"}})

	if err := e.RemoveQueue(qid); !errors.Is(err, ErrSessionsLive) {
		t.Fatalf("err = %v, want ErrSessionsLive", err)
	}

	if err := e.ForceOutcome(qid, sid, Cancelled); err != nil {
		t.Fatalf("force outcome: %v", err)
	}
	if err := e.RemoveQueue(qid); err != nil {
		t.Fatalf("remove after resolution: %v", err)
	}
}

func timePtr(t time.Time) *time.Time { return &t }
