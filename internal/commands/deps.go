package commands

import (
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/matchbot-dev/matchbot/internal/db"
	"github.com/matchbot-dev/matchbot/internal/matchmaking"
	"github.com/matchbot-dev/matchbot/internal/registry"
)

// Deps bundles what command handlers need.
type Deps struct {
	Engine   *matchmaking.Engine
	Registry *registry.Registry
	DB       *db.DB
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
	if err != nil {
		log.Printf("Failed to respond to interaction: %v", err)
	}
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Failed to respond to interaction: %v", err)
	}
}

// optionMap flattens interaction options by name.
func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		out[opt.Name] = opt
	}
	return out
}

// invokerID returns the acting user for both guild and DM interactions.
func invokerID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// resolveQueue picks the queue a guild command targets. Guilds with a
// single registered queue need no option; otherwise the "queue" option
// selects by name prefix of the queue id.
func resolveQueue(deps *Deps, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) (uuid.UUID, bool) {
	entries := deps.Registry.ByGuild(i.GuildID)
	if len(entries) == 0 {
		return uuid.Nil, false
	}

	if opt, ok := opts["queue"]; ok {
		want := opt.StringValue()
		for _, e := range entries {
			if e.QueueID.String() == want || len(want) >= 8 && e.QueueID.String()[:8] == want[:8] {
				return e.QueueID, true
			}
		}
		return uuid.Nil, false
	}

	if len(entries) == 1 {
		return entries[0].QueueID, true
	}
	return uuid.Nil, false
}
