package bot

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/matchbot-dev/matchbot/internal/commands"
	"github.com/matchbot-dev/matchbot/internal/db"
	"github.com/matchbot-dev/matchbot/internal/matchmaking"
	"github.com/matchbot-dev/matchbot/internal/registry"
)

type Bot struct {
	session  *discordgo.Session
	engine   *matchmaking.Engine
	registry *registry.Registry
	db       *db.DB
	adapter  *Adapter
}

func New(token string, engine *matchmaking.Engine, reg *registry.Registry, database *db.DB) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	bot := &Bot{
		session:  session,
		engine:   engine,
		registry: reg,
		db:       database,
		adapter:  NewAdapter(session, reg, database),
	}

	// Register event handlers
	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onGuildCreate)
	session.AddHandler(bot.onInteractionCreate)
	session.AddHandler(bot.onVoiceStateUpdate)

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages

	return bot, nil
}

// Adapter returns the Discord-side effect executor to attach to the engine.
func (b *Bot) Adapter() *Adapter {
	return b.adapter
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	log.Println("Discord bot is running")
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Printf("%s is connected!", event.User.Username)

	// Register commands for all guilds
	for _, guild := range event.Guilds {
		if err := b.registerGuildCommands(guild.ID); err != nil {
			log.Printf("Failed to register commands for guild %s: %v", guild.ID, err)
		}
	}
}

func (b *Bot) onGuildCreate(s *discordgo.Session, event *discordgo.GuildCreate) {
	log.Printf("Guild available/joined: %s (id=%s), ensuring commands", event.Name, event.ID)
	if err := b.registerGuildCommands(event.ID); err != nil {
		log.Printf("Failed to register commands for guild %s: %v", event.ID, err)
	}
}

func (b *Bot) registerGuildCommands(guildID string) error {
	cmds := commands.GetCommands()
	// Delete existing commands and register new ones
	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, guildID, cmds)
	if err != nil {
		return err
	}

	log.Printf("Registered application commands for guild %s", guildID)
	return nil
}

// onVoiceStateUpdate joins and leaves queues from voice movement: entering
// a registered queue channel enqueues the member, leaving it dequeues
// them.
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
	if event.Member != nil && event.Member.User != nil && event.Member.User.Bot {
		return
	}

	var before string
	if event.BeforeUpdate != nil {
		before = event.BeforeUpdate.ChannelID
	}
	if before == event.ChannelID {
		return
	}

	if before != "" {
		if qid, ok := b.registry.QueueForChannel(event.GuildID, before); ok {
			if err := b.engine.Dequeue(qid, event.UserID); err != nil {
				log.Printf("Failed to dequeue %s: %v", event.UserID, err)
			}
		}
	}
	if event.ChannelID != "" {
		if qid, ok := b.registry.QueueForChannel(event.GuildID, event.ChannelID); ok {
			if err := b.engine.Enqueue(qid, event.UserID); err != nil {
				log.Printf("Failed to enqueue %s: %v", event.UserID, err)
			}
		}
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	deps := &commands.Deps{Engine: b.engine, Registry: b.registry, DB: b.db}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleApplicationCommand(s, i, deps)
	case discordgo.InteractionMessageComponent:
		commands.HandleComponent(s, i, deps)
	}
}

func (b *Bot) handleApplicationCommand(s *discordgo.Session, i *discordgo.InteractionCreate, deps *commands.Deps) {
	data := i.ApplicationCommandData()

	switch data.Name {
	case "queue":
		commands.HandleQueue(s, i, deps)
	case "party":
		commands.HandleParty(s, i, deps)
	case "mark_leaver":
		commands.HandleMarkLeaver(s, i, deps)
	case "present":
		commands.HandlePresent(s, i, deps)
	case "ban":
		commands.HandleBan(s, i, deps)
	case "unban":
		commands.HandleUnban(s, i, deps)
	case "list_bans":
		commands.HandleListBans(s, i, deps)
	case "list_leavers":
		commands.HandleListLeavers(s, i, deps)
	case "force_outcome":
		commands.HandleForceOutcome(s, i, deps)
	case "stats":
		commands.HandleStats(s, i, deps)
	case "leaderboard":
		commands.HandleLeaderboard(s, i, deps)
	case "history":
		commands.HandleHistory(s, i, deps)
	case "configure":
		commands.HandleConfigure(s, i, deps)
	case "player_config":
		commands.HandlePlayerConfig(s, i, deps)
	case "setup_queue":
		commands.HandleSetupQueue(s, i, deps)
	case "remove_queue":
		commands.HandleRemoveQueue(s, i, deps)
	}
}
