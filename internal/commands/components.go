package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/matchbot-dev/matchbot/internal/matchmaking"
)

// HandleComponent routes button presses: map votes, result votes and
// party invite replies.
func HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	customID := i.MessageComponentData().CustomID
	parts := strings.Split(customID, ":")

	switch parts[0] {
	case "mapvote":
		if len(parts) == 4 {
			handleMapVoteButton(s, i, deps, parts[1], parts[2], parts[3])
		}
	case "result":
		if len(parts) >= 4 {
			handleResultButton(s, i, deps, parts[1], parts[2], parts[3:])
		}
	case "party":
		if len(parts) == 3 {
			handlePartyButton(s, i, deps, parts[1], parts[2])
		}
	}
}

func handleMapVoteButton(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, rawQueue, rawSession, mapName string) {
	qid, err := uuid.Parse(rawQueue)
	if err != nil {
		return
	}
	sessionID, err := strconv.ParseUint(rawSession, 10, 64)
	if err != nil {
		return
	}

	status, err := deps.Engine.CastMapVote(qid, sessionID, invokerID(i), mapName)
	switch {
	case errors.Is(err, matchmaking.ErrNoSuchSession):
		respondEphemeral(s, i, "That session is over.")
		return
	case errors.Is(err, matchmaking.ErrNotAParticipant):
		respondEphemeral(s, i, "Only participants can vote.")
		return
	case err != nil:
		respondEphemeral(s, i, fmt.Sprintf("Could not vote: %v", err))
		return
	}

	if status.Resolved {
		respondEphemeral(s, i, fmt.Sprintf("Map is locked in: %s.", status.Choice))
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("Vote recorded: %s (%d so far).", mapName, status.Counts[mapName]))
}

func handleResultButton(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, rawQueue, rawSession string, rest []string) {
	qid, err := uuid.Parse(rawQueue)
	if err != nil {
		return
	}
	sessionID, err := strconv.ParseUint(rawSession, 10, 64)
	if err != nil {
		return
	}
	outcome, err := parseOutcome(strings.Join(rest, ":"))
	if err != nil {
		return
	}

	status, err := deps.Engine.CastResultVote(qid, sessionID, invokerID(i), outcome)
	switch {
	case errors.Is(err, matchmaking.ErrNoSuchSession):
		respondEphemeral(s, i, "That session is over.")
		return
	case errors.Is(err, matchmaking.ErrNotAParticipant):
		respondEphemeral(s, i, "Only participants can vote.")
		return
	case err != nil:
		respondEphemeral(s, i, fmt.Sprintf("Could not vote: %v", err))
		return
	}

	if status.Resolved {
		respondEphemeral(s, i, fmt.Sprintf("Result is in: %s.", status.Outcome))
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("Vote recorded: %s (%d so far).", outcome, status.Counts[outcome]))
}

func handlePartyButton(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, rawParty, action string) {
	partyID, err := uuid.Parse(rawParty)
	if err != nil {
		return
	}
	user := invokerID(i)

	switch action {
	case "accept":
		pv, err := deps.Engine.AcceptPartyInvite(partyID, user)
		switch {
		case errors.Is(err, matchmaking.ErrNoSuchInvite):
			respondEphemeral(s, i, "That invite is no longer valid.")
			return
		case errors.Is(err, matchmaking.ErrAlreadyQueued):
			respondEphemeral(s, i, "Leave the queue before joining a party.")
			return
		case errors.Is(err, matchmaking.ErrAlreadyInSession):
			respondEphemeral(s, i, "Finish your current session first.")
			return
		case err != nil:
			respondEphemeral(s, i, fmt.Sprintf("Could not join: %v", err))
			return
		}
		respondEphemeral(s, i, fmt.Sprintf("You joined the party (%d members).", len(pv.Members)))
	case "decline":
		deps.Engine.DeclinePartyInvite(partyID, user)
		respondEphemeral(s, i, "Invite declined.")
	}
}
