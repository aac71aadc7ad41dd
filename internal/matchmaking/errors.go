package matchmaking

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyInSession is returned when an operation requires a free
	// participant but they are currently placed in a live session.
	ErrAlreadyInSession = errors.New("participant is in a live session")

	// ErrAlreadyQueued is returned when a participant tries to enter a
	// queue while already waiting in one.
	ErrAlreadyQueued = errors.New("participant is already queued")

	// ErrBanned is returned by Enqueue when an unexpired ban covers the
	// participant.
	ErrBanned = errors.New("participant is banned")

	// ErrNotAParticipant is returned for votes and leaver flags that name
	// a user who is not part of the session.
	ErrNotAParticipant = errors.New("not a participant of this session")

	// ErrInvalidPartySize is returned when a party cannot fit into any
	// single team.
	ErrInvalidPartySize = errors.New("party is larger than a team")

	// ErrNoCategoryDefinition is returned when a category name does not
	// exist in the queue configuration.
	ErrNoCategoryDefinition = errors.New("no such category")

	// ErrCompositionInfeasible is returned by the composer when no unit
	// fits the remaining team capacities.
	ErrCompositionInfeasible = errors.New("no feasible team composition")

	// ErrPendingInvites is returned when a party with outstanding invites
	// tries to queue.
	ErrPendingInvites = errors.New("party has pending invites")

	// ErrNoSuchQueue is returned for operations against an unknown queue.
	ErrNoSuchQueue = errors.New("no such queue")

	// ErrNoSuchSession is returned for operations against a session that
	// does not exist or has already been torn down.
	ErrNoSuchSession = errors.New("no such session")

	// ErrSessionsLive is returned by RemoveQueue while sessions are still
	// running.
	ErrSessionsLive = errors.New("queue has live sessions")

	// ErrNotInParty is returned when a party operation requires membership.
	ErrNotInParty = errors.New("not in a party")

	// ErrNoSuchInvite is returned when accepting or declining an invite
	// that no longer exists.
	ErrNoSuchInvite = errors.New("party invite is no longer valid")
)

// banError carries the ban reason alongside ErrBanned.
func banError(reason string) error {
	if reason == "" {
		return ErrBanned
	}
	return fmt.Errorf("%w: %s", ErrBanned, reason)
}
