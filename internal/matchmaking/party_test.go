package matchmaking

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func TestPartyInviteAcceptDecline(t *testing.T) {
	e := newTestEngine()

	pv, err := e.InviteToParty("alice", "bob")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if !reflect.DeepEqual(pv.Members, []string{"alice"}) || !reflect.DeepEqual(pv.Invites, []string{"bob"}) {
		t.Fatalf("party = %+v, want alice with bob invited", pv)
	}

	// A second invite reuses the same party.
	pv2, err := e.InviteToParty("alice", "carol")
	if err != nil {
		t.Fatalf("second invite: %v", err)
	}
	if pv2.ID != pv.ID {
		t.Fatal("second invite created a new party")
	}

	pv3, err := e.AcceptPartyInvite(pv.ID, "bob")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if !reflect.DeepEqual(pv3.Members, []string{"alice", "bob"}) {
		t.Fatalf("members = %v, want [alice bob]", pv3.Members)
	}

	e.DeclinePartyInvite(pv.ID, "carol")
	got, ok := e.PartyOf("alice")
	if !ok {
		t.Fatal("alice has no party")
	}
	if len(got.Invites) != 0 {
		t.Fatalf("invites = %v, want none after decline", got.Invites)
	}

	if _, err := e.AcceptPartyInvite(pv.ID, "carol"); !errors.Is(err, ErrNoSuchInvite) {
		t.Errorf("accept after decline err = %v, want ErrNoSuchInvite", err)
	}
	if _, err := e.AcceptPartyInvite(uuid.New(), "dave"); !errors.Is(err, ErrNoSuchInvite) {
		t.Errorf("accept unknown party err = %v, want ErrNoSuchInvite", err)
	}
}

func TestAcceptSwitchesParties(t *testing.T) {
	e := newTestEngine()

	p1, err := e.InviteToParty("alice", "bob")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := e.AcceptPartyInvite(p1.ID, "bob"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	p2, err := e.InviteToParty("carol", "bob")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	joined, err := e.AcceptPartyInvite(p2.ID, "bob")
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if !reflect.DeepEqual(joined.Members, []string{"bob", "carol"}) {
		t.Fatalf("members = %v, want [bob carol]", joined.Members)
	}

	old, ok := e.PartyOf("alice")
	if !ok {
		t.Fatal("alice's party vanished")
	}
	if !reflect.DeepEqual(old.Members, []string{"alice"}) {
		t.Fatalf("old party members = %v, want [alice]", old.Members)
	}
}

func TestLeaveParty(t *testing.T) {
	e := newTestEngine()

	pv, err := e.InviteToParty("alice", "bob")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := e.AcceptPartyInvite(pv.ID, "bob"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	remaining, err := e.LeaveParty("alice")
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if !reflect.DeepEqual(remaining, []string{"bob"}) {
		t.Fatalf("remaining = %v, want [bob]", remaining)
	}

	// Last member out destroys the party.
	remaining, err = e.LeaveParty("bob")
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("remaining = %v, want empty", remaining)
	}
	if _, ok := e.PartyOf("bob"); ok {
		t.Fatal("empty party still exists")
	}

	if _, err := e.LeaveParty("alice"); !errors.Is(err, ErrNotInParty) {
		t.Errorf("leave without party err = %v, want ErrNotInParty", err)
	}
}

func TestInviteBlockedWhileQueued(t *testing.T) {
	e := newTestEngine()
	qid := e.CreateQueue(DefaultQueueConfig())

	if err := e.Enqueue(qid, "alice"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := e.InviteToParty("alice", "bob"); !errors.Is(err, ErrAlreadyQueued) {
		t.Errorf("invite while queued err = %v, want ErrAlreadyQueued", err)
	}

	pv, err := e.InviteToParty("carol", "alice")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := e.AcceptPartyInvite(pv.ID, "alice"); !errors.Is(err, ErrAlreadyQueued) {
		t.Errorf("accept while queued err = %v, want ErrAlreadyQueued", err)
	}
}
