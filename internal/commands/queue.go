package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/matchbot-dev/matchbot/internal/matchmaking"
)

func HandleQueue(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	opts := optionMap(sub.Options)

	qid, ok := resolveQueue(deps, i, opts)
	if !ok {
		respondEphemeral(s, i, "No matchmaking queue is set up here. An admin can run /setup_queue.")
		return
	}
	user := invokerID(i)

	switch sub.Name {
	case "join":
		err := deps.Engine.Enqueue(qid, user)
		switch {
		case err == nil:
			respond(s, i, "You are in the queue.")
		case errors.Is(err, matchmaking.ErrAlreadyQueued):
			respondEphemeral(s, i, "You are already queued.")
		case errors.Is(err, matchmaking.ErrAlreadyInSession):
			respondEphemeral(s, i, "Finish your current session first.")
		case errors.Is(err, matchmaking.ErrPendingInvites):
			respondEphemeral(s, i, "Your party still has open invites. Wait for them or withdraw.")
		case errors.Is(err, matchmaking.ErrInvalidPartySize):
			respondEphemeral(s, i, "Your party is bigger than a team.")
		case errors.Is(err, matchmaking.ErrBanned):
			respondEphemeral(s, i, fmt.Sprintf("You cannot queue: %v", err))
		default:
			respondEphemeral(s, i, fmt.Sprintf("Could not join: %v", err))
		}
	case "leave":
		if err := deps.Engine.Dequeue(qid, user); err != nil {
			respondEphemeral(s, i, fmt.Sprintf("Could not leave: %v", err))
			return
		}
		respond(s, i, "You left the queue.")
	case "list":
		queued, err := deps.Engine.Queued(qid)
		if err != nil {
			respondEphemeral(s, i, fmt.Sprintf("Could not list the queue: %v", err))
			return
		}
		if len(queued) == 0 {
			respond(s, i, "The queue is empty.")
			return
		}
		var body strings.Builder
		fmt.Fprintf(&body, "%d waiting:\n", len(queued))
		now := time.Now()
		for _, p := range queued {
			fmt.Fprintf(&body, "<@%s> — %s\n", p.UserID, now.Sub(p.EnteredAt).Round(time.Second))
		}
		respond(s, i, body.String())
	}
}
