package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/matchbot-dev/matchbot/internal/db"
	"github.com/matchbot-dev/matchbot/internal/matchmaking"
	"github.com/matchbot-dev/matchbot/internal/registry"
)

// Adapter carries out the engine's side effects on Discord: session voice
// channels, participant moves, vote messages and teardown. Failures are
// logged and never propagated back into engine state.
type Adapter struct {
	session  *discordgo.Session
	registry *registry.Registry
	database *db.DB

	// lastGuild remembers where a participant was last moved so
	// DisconnectParticipant can find them without a session reference.
	mu        sync.Mutex
	lastGuild map[string]string
}

func NewAdapter(session *discordgo.Session, reg *registry.Registry, database *db.DB) *Adapter {
	return &Adapter{
		session:   session,
		registry:  reg,
		database:  database,
		lastGuild: map[string]string{},
	}
}

func (a *Adapter) CreateSessionChannels(queueID uuid.UUID, s matchmaking.SessionInfo) (matchmaking.SessionChannels, error) {
	entry, ok := a.registry.Entry(queueID)
	if !ok {
		return matchmaking.SessionChannels{}, fmt.Errorf("queue %s is not registered in any guild", queueID)
	}

	lobby, err := a.session.GuildChannelCreateComplex(entry.GuildID, discordgo.GuildChannelCreateData{
		Name:     fmt.Sprintf("Session %s", s.Name),
		Type:     discordgo.ChannelTypeGuildVoice,
		ParentID: entry.CategoryID,
	})
	if err != nil {
		return matchmaking.SessionChannels{}, fmt.Errorf("failed to create lobby channel: %w", err)
	}

	channels := matchmaking.SessionChannels{Lobby: lobby.ID}
	for i := range s.Teams {
		team, err := a.session.GuildChannelCreateComplex(entry.GuildID, discordgo.GuildChannelCreateData{
			Name:     fmt.Sprintf("%s Team %d", s.Name, i+1),
			Type:     discordgo.ChannelTypeGuildVoice,
			ParentID: entry.CategoryID,
		})
		if err != nil {
			return channels, fmt.Errorf("failed to create team channel: %w", err)
		}
		channels.Teams = append(channels.Teams, team.ID)
	}

	for i, team := range s.Teams {
		for _, user := range team {
			if err := a.session.GuildMemberMove(entry.GuildID, user, &channels.Teams[i]); err != nil {
				log.Printf("Failed to move %s into %s: %v", user, channels.Teams[i], err)
				continue
			}
			a.mu.Lock()
			a.lastGuild[user] = entry.GuildID
			a.mu.Unlock()
		}
	}

	if entry.PostMatchChannelID != "" {
		if err := a.postSessionMessage(entry.PostMatchChannelID, queueID, s); err != nil {
			log.Printf("Failed to post session message for %s: %v", s.Name, err)
		}
	}

	return channels, nil
}

// postSessionMessage announces the new session with its team rosters, the
// map ballot buttons and the result buttons.
func (a *Adapter) postSessionMessage(channelID string, queueID uuid.UUID, s matchmaking.SessionInfo) error {
	var body strings.Builder
	fmt.Fprintf(&body, "**Session %s**\n", s.Name)
	for i, team := range s.Teams {
		fmt.Fprintf(&body, "Team %d: ", i+1)
		for j, user := range team {
			if j > 0 {
				body.WriteString(", ")
			}
			fmt.Fprintf(&body, "<@%s>", user)
		}
		body.WriteString("\n")
	}
	for name, variant := range s.Categories {
		fmt.Fprintf(&body, "%s: option %d\n", name, variant+1)
	}
	if len(s.MapOptions) > 1 && !s.MapVoteEndsAt.IsZero() {
		fmt.Fprintf(&body, "Map vote closes <t:%d:R>.\n", s.MapVoteEndsAt.Unix())
	}

	components := []discordgo.MessageComponent{}
	if len(s.MapOptions) > 1 {
		row := discordgo.ActionsRow{}
		for _, m := range s.MapOptions {
			row.Components = append(row.Components, discordgo.Button{
				Label:    m,
				Style:    discordgo.SecondaryButton,
				CustomID: fmt.Sprintf("mapvote:%s:%d:%s", queueID, s.ID, m),
			})
		}
		components = append(components, row)
	}

	resultRow := discordgo.ActionsRow{}
	for i := range s.Teams {
		resultRow.Components = append(resultRow.Components, discordgo.Button{
			Label:    fmt.Sprintf("Team %d won", i+1),
			Style:    discordgo.PrimaryButton,
			CustomID: fmt.Sprintf("result:%s:%d:win:%d", queueID, s.ID, i),
		})
	}
	resultRow.Components = append(resultRow.Components,
		discordgo.Button{
			Label:    "Tie",
			Style:    discordgo.SecondaryButton,
			CustomID: fmt.Sprintf("result:%s:%d:tie", queueID, s.ID),
		},
		discordgo.Button{
			Label:    "Cancel",
			Style:    discordgo.DangerButton,
			CustomID: fmt.Sprintf("result:%s:%d:cancel", queueID, s.ID),
		},
	)
	components = append(components, resultRow)

	_, err := a.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    body.String(),
		Components: components,
	})
	return err
}

func (a *Adapter) AnnounceMapResult(queueID uuid.UUID, s matchmaking.SessionInfo, mapName string) {
	entry, ok := a.registry.Entry(queueID)
	if !ok || entry.PostMatchChannelID == "" {
		return
	}
	_, err := a.session.ChannelMessageSend(entry.PostMatchChannelID,
		fmt.Sprintf("Session %s plays **%s**.", s.Name, mapName))
	if err != nil {
		log.Printf("Failed to announce map for %s: %v", s.Name, err)
	}
}

func (a *Adapter) AnnounceOutcome(queueID uuid.UUID, s matchmaking.SessionInfo, outcome matchmaking.Outcome) {
	entry, ok := a.registry.Entry(queueID)
	if ok && entry.PostMatchChannelID != "" {
		_, err := a.session.ChannelMessageSend(entry.PostMatchChannelID,
			fmt.Sprintf("Session %s finished: **%s**.", s.Name, outcome))
		if err != nil {
			log.Printf("Failed to announce outcome for %s: %v", s.Name, err)
		}
	}

	if a.database != nil {
		_, err := a.database.InsertMatch(context.Background(), db.MatchRow{
			QueueID:     queueID,
			SessionName: s.Name,
			MapName:     s.MapChoice,
			Outcome:     outcome.String(),
			Teams:       s.Teams,
		})
		if err != nil {
			log.Printf("Failed to record match %s: %v", s.Name, err)
		}
	}
}

func (a *Adapter) TeardownSession(queueID uuid.UUID, s matchmaking.SessionInfo, channels matchmaking.SessionChannels) {
	// Deleting the voice channels disconnects anyone still in them.
	for _, id := range append([]string{channels.Lobby}, channels.Teams...) {
		if id == "" {
			continue
		}
		if _, err := a.session.ChannelDelete(id); err != nil {
			log.Printf("Failed to delete channel %s: %v", id, err)
		}
	}
}

func (a *Adapter) DisconnectParticipant(user string) {
	a.mu.Lock()
	guildID, ok := a.lastGuild[user]
	a.mu.Unlock()
	if !ok {
		return
	}
	if err := a.session.GuildMemberMove(guildID, user, nil); err != nil {
		log.Printf("Failed to disconnect %s: %v", user, err)
	}
}
