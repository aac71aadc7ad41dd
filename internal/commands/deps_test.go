package commands

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/matchbot-dev/matchbot/internal/matchmaking"
	"github.com/matchbot-dev/matchbot/internal/registry"
)

func guildInteraction(guildID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{GuildID: guildID},
	}
}

func queueOption(value string) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	return map[string]*discordgo.ApplicationCommandInteractionDataOption{
		"queue": {
			Name:  "queue",
			Type:  discordgo.ApplicationCommandOptionString,
			Value: value,
		},
	}
}

func TestResolveQueue(t *testing.T) {
	deps := &Deps{
		Engine:   matchmaking.NewEngine(nil),
		Registry: registry.New(nil),
	}
	ctx := context.Background()

	first := deps.Engine.CreateQueue(matchmaking.DefaultQueueConfig())
	if err := deps.Registry.Register(ctx, registry.Entry{QueueID: first, GuildID: "g1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	// A guild with a single queue needs no option.
	qid, ok := resolveQueue(deps, guildInteraction("g1"), nil)
	if !ok || qid != first {
		t.Fatalf("resolveQueue = %s, %v, want %s", qid, ok, first)
	}

	// No queue registered for the guild.
	if _, ok := resolveQueue(deps, guildInteraction("g2"), nil); ok {
		t.Fatal("resolved a queue in a guild with none registered")
	}

	// Two queues force the caller to disambiguate.
	second := deps.Engine.CreateQueue(matchmaking.DefaultQueueConfig())
	if err := deps.Registry.Register(ctx, registry.Entry{QueueID: second, GuildID: "g1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, ok := resolveQueue(deps, guildInteraction("g1"), nil); ok {
		t.Fatal("resolved ambiguously between two queues")
	}

	qid, ok = resolveQueue(deps, guildInteraction("g1"), queueOption(second.String()[:8]))
	if !ok || qid != second {
		t.Fatalf("prefix lookup = %s, %v, want %s", qid, ok, second)
	}
	if _, ok := resolveQueue(deps, guildInteraction("g1"), queueOption(uuid.NewString()[:8])); ok {
		t.Fatal("resolved an unknown queue id prefix")
	}
}
