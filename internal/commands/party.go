package commands

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/matchbot-dev/matchbot/internal/matchmaking"
)

func HandleParty(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	user := invokerID(i)

	switch sub.Name {
	case "invite":
		opts := optionMap(sub.Options)
		target := opts["user"].UserValue(s)
		if target == nil || target.Bot {
			respondEphemeral(s, i, "Pick a human to invite.")
			return
		}
		if target.ID == user {
			respondEphemeral(s, i, "You are already in your own party.")
			return
		}

		pv, err := deps.Engine.InviteToParty(user, target.ID)
		switch {
		case errors.Is(err, matchmaking.ErrAlreadyQueued):
			respondEphemeral(s, i, "Leave the queue before changing your party.")
			return
		case errors.Is(err, matchmaking.ErrAlreadyInSession):
			respondEphemeral(s, i, "Finish your current session first.")
			return
		case err != nil:
			respondEphemeral(s, i, fmt.Sprintf("Could not invite: %v", err))
			return
		}

		sendPartyInvite(s, pv, user, target.ID)
		respond(s, i, fmt.Sprintf("Invited <@%s> to your party.", target.ID))
	case "leave":
		remaining, err := deps.Engine.LeaveParty(user)
		if errors.Is(err, matchmaking.ErrNotInParty) {
			respondEphemeral(s, i, "You are not in a party.")
			return
		}
		if err != nil {
			respondEphemeral(s, i, fmt.Sprintf("Could not leave: %v", err))
			return
		}
		if len(remaining) == 0 {
			respond(s, i, "You left the party; it is now disbanded.")
			return
		}
		respond(s, i, "You left the party.")
	case "list":
		pv, ok := deps.Engine.PartyOf(user)
		if !ok {
			respondEphemeral(s, i, "You are not in a party.")
			return
		}
		var body strings.Builder
		body.WriteString("Party: ")
		for j, m := range pv.Members {
			if j > 0 {
				body.WriteString(", ")
			}
			fmt.Fprintf(&body, "<@%s>", m)
		}
		if len(pv.Invites) > 0 {
			body.WriteString("\nPending: ")
			for j, m := range pv.Invites {
				if j > 0 {
					body.WriteString(", ")
				}
				fmt.Fprintf(&body, "<@%s>", m)
			}
		}
		respond(s, i, body.String())
	}
}

// sendPartyInvite DMs the invitee an accept/decline prompt.
func sendPartyInvite(s *discordgo.Session, pv matchmaking.PartyView, inviter, invitee string) {
	dm, err := s.UserChannelCreate(invitee)
	if err != nil {
		log.Printf("Failed to open DM with %s: %v", invitee, err)
		return
	}
	_, err = s.ChannelMessageSendComplex(dm.ID, &discordgo.MessageSend{
		Content: fmt.Sprintf("<@%s> invited you to their party.", inviter),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Accept",
						Style:    discordgo.SuccessButton,
						CustomID: fmt.Sprintf("party:%s:accept", pv.ID),
					},
					discordgo.Button{
						Label:    "Decline",
						Style:    discordgo.DangerButton,
						CustomID: fmt.Sprintf("party:%s:decline", pv.ID),
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("Failed to DM party invite to %s: %v", invitee, err)
	}
}
