package matchmaking

import (
	"errors"
	"testing"
)

func TestCastMapVoteValidation(t *testing.T) {
	e := newTestEngine()
	cfg := DefaultQueueConfig()
	cfg.TeamSize = 2
	cfg.TeamCount = 2
	cfg.Maps = []string{"Inferno", "Mirage"}
	cfg.MapVoteCount = 2
	qid := e.CreateQueue(cfg)

	sid := startSession(t, e, qid, [][]string{{"a", "b"}, {"c", "d"}})
	info, _ := e.Sessions(qid)

	if _, err := e.CastMapVote(qid, sid, "outsider", info[0].MapOptions[0]); !errors.Is(err, ErrNotAParticipant) {
		t.Errorf("outsider err = %v, want ErrNotAParticipant", err)
	}
	if _, err := e.CastMapVote(qid, sid, "a", "Vertigo"); err == nil {
		t.Error("off-ballot vote accepted")
	}
	if _, err := e.CastMapVote(qid, 999, "a", info[0].MapOptions[0]); !errors.Is(err, ErrNoSuchSession) {
		t.Errorf("bad session err = %v, want ErrNoSuchSession", err)
	}
}

func TestMapVoteOverwrite(t *testing.T) {
	e := newTestEngine()
	cfg := DefaultQueueConfig()
	cfg.TeamSize = 2
	cfg.TeamCount = 2
	cfg.Maps = []string{"Inferno", "Mirage"}
	cfg.MapVoteCount = 2
	qid := e.CreateQueue(cfg)

	sid := startSession(t, e, qid, [][]string{{"a", "b"}, {"c", "d"}})
	infos, _ := e.Sessions(qid)
	first, second := infos[0].MapOptions[0], infos[0].MapOptions[1]

	if _, err := e.CastMapVote(qid, sid, "a", first); err != nil {
		t.Fatalf("vote: %v", err)
	}
	status, err := e.CastMapVote(qid, sid, "a", second)
	if err != nil {
		t.Fatalf("re-vote: %v", err)
	}
	if status.Counts[first] != 0 || status.Counts[second] != 1 {
		t.Errorf("counts = %v, want the re-vote to replace the first", status.Counts)
	}
}

func TestMapVoteExpiryPlurality(t *testing.T) {
	a := newRecordingAdapter()
	e := NewEngine(a)
	cfg := DefaultQueueConfig()
	cfg.TeamSize = 2
	cfg.TeamCount = 2
	cfg.Maps = []string{"Inferno", "Mirage", "Nuke"}
	cfg.MapVoteCount = 3
	qid := e.CreateQueue(cfg)

	sid := startSession(t, e, qid, [][]string{{"a", "b"}, {"c", "d"}})
	q := e.queue(qid)
	q.mu.Lock()
	s := q.sessions[sid]
	options := append([]string{}, s.mapOptions...)
	q.mu.Unlock()

	// One vote for the second option; nobody reaches the threshold of 3.
	if _, err := e.CastMapVote(qid, sid, "a", options[1]); err != nil {
		t.Fatalf("vote: %v", err)
	}

	e.expireMapVote(q, sid)

	q.mu.Lock()
	resolved, choice := s.mapResolved, s.mapChoice
	q.mu.Unlock()
	if !resolved || choice != options[1] {
		t.Fatalf("resolved=%v choice=%q, want plurality winner %q", resolved, choice, options[1])
	}

	// A second expiry (a stale timer) is a no-op.
	e.expireMapVote(q, sid)
	a.mu.Lock()
	announced := len(a.mapResults)
	a.mu.Unlock()
	if announced != 1 {
		t.Errorf("announcements = %d, want 1", announced)
	}
}

func TestMapVoteExpiryNoVotesPicksFirstOffered(t *testing.T) {
	e := newTestEngine()
	cfg := DefaultQueueConfig()
	cfg.TeamSize = 2
	cfg.TeamCount = 2
	cfg.Maps = []string{"Inferno", "Mirage", "Nuke"}
	cfg.MapVoteCount = 3
	qid := e.CreateQueue(cfg)

	sid := startSession(t, e, qid, [][]string{{"a", "b"}, {"c", "d"}})
	q := e.queue(qid)

	e.expireMapVote(q, sid)

	q.mu.Lock()
	s := q.sessions[sid]
	resolved, choice, first := s.mapResolved, s.mapChoice, s.mapOptions[0]
	q.mu.Unlock()
	if !resolved || choice != first {
		t.Fatalf("resolved=%v choice=%q, want first offered %q", resolved, choice, first)
	}
}

func TestResultVoteValidation(t *testing.T) {
	e := newTestEngine()
	cfg := DefaultQueueConfig()
	cfg.TeamSize = 2
	cfg.TeamCount = 2
	qid := e.CreateQueue(cfg)

	sid := startSession(t, e, qid, [][]string{{"a", "b"}, {"c", "d"}})

	if _, err := e.CastResultVote(qid, sid, "a", Win(2)); err == nil {
		t.Error("out-of-range team accepted")
	}
	if _, err := e.CastResultVote(qid, sid, "a", Win(-1)); err == nil {
		t.Error("negative team accepted")
	}
	if _, err := e.CastResultVote(qid, sid, "outsider", Tie); !errors.Is(err, ErrNotAParticipant) {
		t.Errorf("outsider err = %v, want ErrNotAParticipant", err)
	}
}

func TestResultVoteCancelSkipsRatings(t *testing.T) {
	a := newRecordingAdapter()
	e := NewEngine(a)
	cfg := DefaultQueueConfig()
	cfg.TeamSize = 2
	cfg.TeamCount = 2
	qid := e.CreateQueue(cfg)

	sid := startSession(t, e, qid, [][]string{{"a", "b"}, {"c", "d"}})
	before, _ := e.Stats(qid, "a")

	// Threshold for 4 participants is 3.
	for _, p := range []string{"a", "b", "c"} {
		if _, err := e.CastResultVote(qid, sid, p, Cancelled); err != nil {
			t.Fatalf("vote %s: %v", p, err)
		}
	}

	after, _ := e.Stats(qid, "a")
	if after.Rating != before.Rating {
		t.Errorf("rating changed on cancel: %+v -> %+v", before.Rating, after.Rating)
	}
	if after.Stats != before.Stats {
		t.Errorf("stats changed on cancel: %+v -> %+v", before.Stats, after.Stats)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.teardowns != 1 {
		t.Errorf("teardowns = %d, want 1", a.teardowns)
	}
	if len(a.outcomes) != 1 || a.outcomes[0] != Cancelled {
		t.Errorf("outcomes = %v, want [Cancelled]", a.outcomes)
	}
}

func TestResultVoteTieCountsDraws(t *testing.T) {
	e := newTestEngine()
	cfg := DefaultQueueConfig()
	cfg.TeamSize = 2
	cfg.TeamCount = 2
	qid := e.CreateQueue(cfg)

	sid := startSession(t, e, qid, [][]string{{"a", "b"}, {"c", "d"}})
	for _, p := range []string{"a", "b", "c"} {
		if _, err := e.CastResultVote(qid, sid, p, Tie); err != nil {
			t.Fatalf("vote %s: %v", p, err)
		}
	}

	for _, p := range []string{"a", "b", "c", "d"} {
		pd, _ := e.Stats(qid, p)
		if pd.Stats.Draws != 1 {
			t.Errorf("%s draws = %d, want 1", p, pd.Stats.Draws)
		}
	}
}

func TestForceOutcome(t *testing.T) {
	a := newRecordingAdapter()
	e := NewEngine(a)
	cfg := DefaultQueueConfig()
	cfg.TeamSize = 2
	cfg.TeamCount = 2
	qid := e.CreateQueue(cfg)

	sid := startSession(t, e, qid, [][]string{{"a", "b"}, {"c", "d"}})

	if err := e.ForceOutcome(qid, sid, Win(1)); err != nil {
		t.Fatalf("force: %v", err)
	}
	pd, _ := e.Stats(qid, "c")
	if pd.Stats.Wins != 1 {
		t.Errorf("winner wins = %d, want 1", pd.Stats.Wins)
	}

	// Forcing again is a no-op: the session is gone.
	if err := e.ForceOutcome(qid, sid, Win(0)); !errors.Is(err, ErrNoSuchSession) {
		t.Errorf("second force err = %v, want ErrNoSuchSession", err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.teardowns != 1 {
		t.Errorf("teardowns = %d, want 1", a.teardowns)
	}
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		o    Outcome
		want string
	}{
		{Win(0), "Team 1"},
		{Win(1), "Team 2"},
		{Tie, "Tie"},
		{Cancelled, "Cancel"},
	}
	for _, tt := range tests {
		if got := tt.o.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.o, got, tt.want)
		}
	}
}

func TestRequiredVotes(t *testing.T) {
	tests := []struct {
		teamSize, teamCount, want int
	}{
		{5, 2, 6},
		{2, 2, 3},
		{1, 2, 2},
		{3, 3, 5},
	}
	for _, tt := range tests {
		cfg := QueueConfig{TeamSize: tt.teamSize, TeamCount: tt.teamCount}
		if got := cfg.RequiredVotes(); got != tt.want {
			t.Errorf("%dv%d RequiredVotes() = %d, want %d", tt.teamSize, tt.teamCount, got, tt.want)
		}
	}
}

func TestVoteThresholdFixedAtLaunch(t *testing.T) {
	e := newTestEngine()
	cfg := DefaultQueueConfig()
	cfg.TeamSize = 1
	cfg.TeamCount = 2
	qid := e.CreateQueue(cfg)

	sid := startSession(t, e, qid, [][]string{{"a"}, {"b"}})

	// Growing the queue mid-session must not move the running session's
	// majority threshold: two votes still resolve a 1v1.
	if err := e.Configure(qid, func(c *QueueConfig) { c.TeamSize = 5 }); err != nil {
		t.Fatalf("configure: %v", err)
	}

	if _, err := e.CastResultVote(qid, sid, "a", Win(0)); err != nil {
		t.Fatalf("vote: %v", err)
	}
	status, err := e.CastResultVote(qid, sid, "b", Win(0))
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if !status.Resolved || status.Outcome != Win(0) {
		t.Fatalf("status = %+v, want resolution at the launch-time threshold", status)
	}
}

func TestResolvedMapRecordedOnSession(t *testing.T) {
	e := newTestEngine()
	cfg := DefaultQueueConfig()
	cfg.TeamSize = 1
	cfg.TeamCount = 2
	cfg.Maps = []string{"Inferno", "Mirage"}
	cfg.MapVoteCount = 2
	qid := e.CreateQueue(cfg)

	sid := startSession(t, e, qid, [][]string{{"a"}, {"b"}})
	infos, _ := e.Sessions(qid)
	if infos[0].MapChoice != "" {
		t.Fatalf("map choice = %q before resolution, want empty", infos[0].MapChoice)
	}
	pick := infos[0].MapOptions[0]

	if _, err := e.CastMapVote(qid, sid, "a", pick); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, err := e.CastMapVote(qid, sid, "b", pick); err != nil {
		t.Fatalf("vote: %v", err)
	}

	infos, _ = e.Sessions(qid)
	if infos[0].MapChoice != pick {
		t.Fatalf("map choice = %q, want %q", infos[0].MapChoice, pick)
	}
}

func TestSessionNamesIncrement(t *testing.T) {
	e := newTestEngine()
	cfg := DefaultQueueConfig()
	cfg.TeamSize = 1
	cfg.TeamCount = 2
	qid := e.CreateQueue(cfg)

	startSession(t, e, qid, [][]string{{"a"}, {"b"}})
	startSession(t, e, qid, [][]string{{"c"}, {"d"}})

	infos, _ := e.Sessions(qid)
	if len(infos) != 2 || infos[0].Name != "#1" || infos[1].Name != "#2" {
		t.Fatalf("sessions = %+v, want #1 and #2", infos)
	}
	if infos[0].CreatedAt.IsZero() {
		t.Error("session creation time not set")
	}
}
