package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/matchbot-dev/matchbot/internal/matchmaking"
	"github.com/matchbot-dev/matchbot/internal/registry"
)

func HandleConfigure(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	opts := optionMap(sub.Options)

	qid, ok := resolveQueue(deps, i, opts)
	if !ok {
		respondEphemeral(s, i, "No matchmaking queue is set up here.")
		return
	}

	switch sub.Name {
	case "show":
		cfg, err := deps.Engine.Config(qid)
		if err != nil {
			respondEphemeral(s, i, fmt.Sprintf("Could not load configuration: %v", err))
			return
		}
		respondEphemeral(s, i, describeConfig(cfg))
		return
	case "teams":
		err := deps.Engine.Configure(qid, func(c *matchmaking.QueueConfig) {
			if opt, ok := opts["size"]; ok {
				c.TeamSize = int(opt.IntValue())
			}
			if opt, ok := opts["count"]; ok {
				c.TeamCount = int(opt.IntValue())
			}
		})
		if err != nil {
			respondEphemeral(s, i, fmt.Sprintf("Could not reconfigure: %v", err))
			return
		}
	case "maps":
		err := deps.Engine.Configure(qid, func(c *matchmaking.QueueConfig) {
			if opt, ok := opts["pool"]; ok {
				c.Maps = splitList(opt.StringValue())
			}
			if opt, ok := opts["ballot"]; ok {
				c.MapVoteCount = int(opt.IntValue())
			}
			if opt, ok := opts["vote_seconds"]; ok {
				c.MapVoteTime = time.Duration(opt.IntValue()) * time.Second
			}
		})
		if err != nil {
			respondEphemeral(s, i, fmt.Sprintf("Could not reconfigure: %v", err))
			return
		}
	case "matchmaking":
		err := deps.Engine.Configure(qid, func(c *matchmaking.QueueConfig) {
			if opt, ok := opts["max_cost"]; ok {
				c.MaximumQueueCost = opt.FloatValue()
			}
			if opt, ok := opts["leaver_seconds"]; ok {
				c.LeaverVerificationTime = time.Duration(opt.IntValue()) * time.Second
			}
		})
		if err != nil {
			respondEphemeral(s, i, fmt.Sprintf("Could not reconfigure: %v", err))
			return
		}
	case "category":
		name := opts["name"].StringValue()
		var variants []string
		if opt, ok := opts["options"]; ok {
			variants = splitList(opt.StringValue())
		}
		err := deps.Engine.Configure(qid, func(c *matchmaking.QueueConfig) {
			if c.Categories == nil {
				c.Categories = map[string][]string{}
			}
			if len(variants) == 0 {
				delete(c.Categories, name)
				return
			}
			c.Categories[name] = variants
		})
		if err != nil {
			respondEphemeral(s, i, fmt.Sprintf("Could not reconfigure: %v", err))
			return
		}
	default:
		return
	}

	cfg, _ := deps.Engine.Config(qid)
	respond(s, i, "Configuration updated.\n"+describeConfig(cfg))
}

func describeConfig(cfg matchmaking.QueueConfig) string {
	var body strings.Builder
	fmt.Fprintf(&body, "%d teams of %d\n", cfg.TeamCount, cfg.TeamSize)
	fmt.Fprintf(&body, "Maps: %s (ballot of %d, %s to vote)\n",
		strings.Join(cfg.Maps, ", "), cfg.MapVoteCount, cfg.MapVoteTime)
	fmt.Fprintf(&body, "Max assignment cost: %.1f\n", cfg.MaximumQueueCost)
	fmt.Fprintf(&body, "Leaver window: %s\n", cfg.LeaverVerificationTime)
	for name, variants := range cfg.Categories {
		fmt.Fprintf(&body, "Category %s: %s\n", name, strings.Join(variants, ", "))
	}
	return body.String()
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func HandlePlayerConfig(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	opts := optionMap(sub.Options)

	qid, ok := resolveQueue(deps, i, opts)
	if !ok {
		respondEphemeral(s, i, "No matchmaking queue is set up here.")
		return
	}
	user := invokerID(i)

	switch sub.Name {
	case "costs":
		var o matchmaking.CostOverrides
		if opt, ok := opts["cost_per_spread"]; ok {
			v := opt.FloatValue()
			o.CostPerSpread = &v
		}
		if opt, ok := opts["acceptable_spread"]; ok {
			v := opt.FloatValue()
			o.AcceptableSpread = &v
		}
		if opt, ok := opts["cost_per_range"]; ok {
			v := opt.FloatValue()
			o.CostPerRange = &v
		}
		if opt, ok := opts["acceptable_range"]; ok {
			v := opt.FloatValue()
			o.AcceptableRange = &v
		}
		if err := deps.Engine.SetCostOverrides(qid, user, o); err != nil {
			respondEphemeral(s, i, fmt.Sprintf("Could not save: %v", err))
			return
		}
		respondEphemeral(s, i, "Your matchmaking preferences are saved.")
	case "category":
		name := opts["name"].StringValue()
		var variants []int
		for _, part := range splitList(opts["options"].StringValue()) {
			n, err := strconv.Atoi(part)
			if err != nil {
				respondEphemeral(s, i, fmt.Sprintf("%q is not an option number.", part))
				return
			}
			variants = append(variants, n-1)
		}
		if err := deps.Engine.SetCategoryMembership(qid, user, name, variants); err != nil {
			respondEphemeral(s, i, fmt.Sprintf("Could not save: %v", err))
			return
		}
		respondEphemeral(s, i, fmt.Sprintf("You now play %s options %s.", name, opts["options"].StringValue()))
	}
}

func HandleSetupQueue(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	opts := optionMap(i.ApplicationCommandData().Options)

	queueChannel := opts["queue_channel"].ChannelValue(s)
	announceChannel := opts["announce_channel"].ChannelValue(s)
	if queueChannel == nil || announceChannel == nil {
		respondEphemeral(s, i, "Pick the queue and announcement channels.")
		return
	}

	cfg := matchmaking.DefaultQueueConfig()
	if opt, ok := opts["team_size"]; ok {
		cfg.TeamSize = int(opt.IntValue())
	}
	if opt, ok := opts["team_count"]; ok {
		cfg.TeamCount = int(opt.IntValue())
	}

	qid := deps.Engine.CreateQueue(cfg)

	entry := registry.Entry{
		QueueID:            qid,
		GuildID:            i.GuildID,
		PostMatchChannelID: announceChannel.ID,
		QueueChannels:      []string{queueChannel.ID},
	}
	if opt, ok := opts["category"]; ok {
		if ch := opt.ChannelValue(s); ch != nil {
			entry.CategoryID = ch.ID
		}
	}
	if err := deps.Registry.Register(context.Background(), entry); err != nil {
		respondEphemeral(s, i, fmt.Sprintf("Could not register the queue: %v", err))
		return
	}

	respond(s, i, fmt.Sprintf(
		"Queue `%s` is live: join <#%s> or use /queue join. Sessions are announced in <#%s>.",
		qid.String()[:8], queueChannel.ID, announceChannel.ID))
}

func HandleRemoveQueue(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	opts := optionMap(i.ApplicationCommandData().Options)

	qid, ok := resolveQueue(deps, i, opts)
	if !ok {
		respondEphemeral(s, i, "No matchmaking queue is set up here. An admin can run /setup_queue.")
		return
	}

	if err := deps.Engine.RemoveQueue(qid); err != nil {
		switch {
		case errors.Is(err, matchmaking.ErrSessionsLive):
			respondEphemeral(s, i, "This queue still has sessions running. Finish or cancel them first.")
		case errors.Is(err, matchmaking.ErrNoSuchQueue):
			respondEphemeral(s, i, "That queue no longer exists.")
		default:
			respondEphemeral(s, i, fmt.Sprintf("Could not remove the queue: %v", err))
		}
		return
	}

	ctx := context.Background()
	if err := deps.Registry.Unregister(ctx, qid); err != nil {
		respondEphemeral(s, i, fmt.Sprintf("Queue removed, but unregistering failed: %v", err))
		return
	}
	if deps.DB != nil {
		if err := deps.DB.DeleteSnapshot(ctx, qid); err != nil {
			log.Printf("Failed to delete snapshot for queue %s: %v", qid, err)
		}
	}

	respond(s, i, fmt.Sprintf("Queue `%s` has been removed.", qid.String()[:8]))
}
