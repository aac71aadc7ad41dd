package matchmaking

import (
	"sort"

	"github.com/google/uuid"
)

// party is a voluntary grouping of participants that the composer must
// place on the same team. Guarded by Engine.mu.
type party struct {
	id      uuid.UUID
	members map[string]struct{}
	invites map[string]struct{}
}

// PartyView is a read-only copy of a party for callers outside the engine.
type PartyView struct {
	ID      uuid.UUID
	Members []string
	Invites []string
}

func (p *party) view() PartyView {
	v := PartyView{ID: p.id}
	for m := range p.members {
		v.Members = append(v.Members, m)
	}
	for m := range p.invites {
		v.Invites = append(v.Invites, m)
	}
	sort.Strings(v.Members)
	sort.Strings(v.Invites)
	return v
}

// InviteToParty adds invitee to the inviter's party invite list, creating
// the party if the inviter has none. The inviter must not be queued or in
// a session.
func (e *Engine) InviteToParty(inviter, invitee string) (PartyView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.playerLocked(inviter)
	switch st.status {
	case statusQueued:
		return PartyView{}, ErrAlreadyQueued
	case statusInSession:
		return PartyView{}, ErrAlreadyInSession
	}

	p := e.parties[st.party]
	if p == nil {
		p = &party{
			id:      uuid.New(),
			members: map[string]struct{}{inviter: {}},
			invites: map[string]struct{}{},
		}
		e.parties[p.id] = p
		st.party = p.id
	}
	p.invites[invitee] = struct{}{}
	return p.view(), nil
}

// AcceptPartyInvite consumes a pending invite. A participant already in
// another party implicitly leaves it first. The joiner must not be queued
// or in a session.
func (e *Engine) AcceptPartyInvite(partyID uuid.UUID, user string) (PartyView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.playerLocked(user)
	switch st.status {
	case statusQueued:
		return PartyView{}, ErrAlreadyQueued
	case statusInSession:
		return PartyView{}, ErrAlreadyInSession
	}

	p := e.parties[partyID]
	if p == nil {
		return PartyView{}, ErrNoSuchInvite
	}
	if _, ok := p.invites[user]; !ok {
		return PartyView{}, ErrNoSuchInvite
	}
	delete(p.invites, user)

	if st.party != uuid.Nil && st.party != partyID {
		e.leavePartyLocked(user, st)
	}
	p.members[user] = struct{}{}
	st.party = p.id
	return p.view(), nil
}

// DeclinePartyInvite drops a pending invite. Dropping an invite that no
// longer exists is not an error.
func (e *Engine) DeclinePartyInvite(partyID uuid.UUID, user string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p := e.parties[partyID]; p != nil {
		delete(p.invites, user)
	}
}

// LeaveParty removes the participant from their party; the party is
// destroyed when its member set becomes empty. Returns the members left
// behind so the caller can notify them.
func (e *Engine) LeaveParty(user string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.playerLocked(user)
	if st.party == uuid.Nil {
		return nil, ErrNotInParty
	}
	remaining := e.leavePartyLocked(user, st)
	return remaining, nil
}

// leavePartyLocked detaches user from their current party and returns the
// remaining members, sorted. Caller holds Engine.mu.
func (e *Engine) leavePartyLocked(user string, st *playerState) []string {
	p := e.parties[st.party]
	st.party = uuid.Nil
	if p == nil {
		return nil
	}
	delete(p.members, user)
	if len(p.members) == 0 {
		delete(e.parties, p.id)
		return nil
	}
	remaining := make([]string, 0, len(p.members))
	for m := range p.members {
		remaining = append(remaining, m)
	}
	sort.Strings(remaining)
	return remaining
}

// PartyOf returns the participant's party, if any.
func (e *Engine) PartyOf(user string) (PartyView, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.players[user]
	if !ok || st.party == uuid.Nil {
		return PartyView{}, false
	}
	p := e.parties[st.party]
	if p == nil {
		return PartyView{}, false
	}
	return p.view(), true
}
