// Package registry tracks where each matchmaking queue lives on Discord:
// its guild, the category session channels are created under, the
// announcement channel and the voice channels that act as queue
// entrances. Entries are cached in memory and persisted to the database.
package registry

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/matchbot-dev/matchbot/internal/db"
)

type Entry struct {
	QueueID            uuid.UUID
	GuildID            string
	CategoryID         string
	PostMatchChannelID string
	QueueChannels      []string
}

type Registry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]Entry

	// database may be nil, which keeps the registry in memory only.
	database *db.DB
}

func New(database *db.DB) *Registry {
	return &Registry{
		entries:  map[uuid.UUID]Entry{},
		database: database,
	}
}

// Load fills the cache from the database.
func (r *Registry) Load(ctx context.Context) error {
	if r.database == nil {
		return nil
	}
	rows, err := r.database.ListGuildQueues(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range rows {
		r.entries[row.QueueID] = Entry{
			QueueID:            row.QueueID,
			GuildID:            row.GuildID,
			CategoryID:         row.CategoryID,
			PostMatchChannelID: row.PostMatchChannelID,
			QueueChannels:      row.QueueChannels,
		}
	}
	return nil
}

// Register saves or replaces a queue placement.
func (r *Registry) Register(ctx context.Context, e Entry) error {
	if r.database != nil {
		err := r.database.UpsertGuildQueue(ctx, db.GuildQueueRow{
			QueueID:            e.QueueID,
			GuildID:            e.GuildID,
			CategoryID:         e.CategoryID,
			PostMatchChannelID: e.PostMatchChannelID,
			QueueChannels:      e.QueueChannels,
		})
		if err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.entries[e.QueueID] = e
	r.mu.Unlock()
	return nil
}

// Unregister removes a queue placement.
func (r *Registry) Unregister(ctx context.Context, queueID uuid.UUID) error {
	if r.database != nil {
		if err := r.database.DeleteGuildQueue(ctx, queueID); err != nil {
			return err
		}
	}

	r.mu.Lock()
	delete(r.entries, queueID)
	r.mu.Unlock()
	return nil
}

// Entry returns one queue's placement.
func (r *Registry) Entry(queueID uuid.UUID) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[queueID]
	return e, ok
}

// ByGuild lists the queues registered in a guild.
func (r *Registry) ByGuild(guildID string) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Entry
	for _, e := range r.entries {
		if e.GuildID == guildID {
			out = append(out, e)
		}
	}
	return out
}

// QueueForChannel resolves a voice channel to the queue it is an
// entrance for, if any.
func (r *Registry) QueueForChannel(guildID, channelID string) (uuid.UUID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.GuildID != guildID {
			continue
		}
		for _, ch := range e.QueueChannels {
			if ch == channelID {
				return e.QueueID, true
			}
		}
	}
	return uuid.Nil, false
}

// AddQueueChannel marks a voice channel as a queue entrance.
func (r *Registry) AddQueueChannel(ctx context.Context, queueID uuid.UUID, channelID string) error {
	r.mu.RLock()
	e, ok := r.entries[queueID]
	r.mu.RUnlock()
	if !ok {
		return ErrNotRegistered
	}
	for _, ch := range e.QueueChannels {
		if ch == channelID {
			return nil
		}
	}
	e.QueueChannels = append(append([]string{}, e.QueueChannels...), channelID)
	return r.Register(ctx, e)
}

// RemoveQueueChannel drops a voice channel from the queue entrances.
func (r *Registry) RemoveQueueChannel(ctx context.Context, queueID uuid.UUID, channelID string) error {
	r.mu.RLock()
	e, ok := r.entries[queueID]
	r.mu.RUnlock()
	if !ok {
		return ErrNotRegistered
	}
	kept := make([]string, 0, len(e.QueueChannels))
	for _, ch := range e.QueueChannels {
		if ch != channelID {
			kept = append(kept, ch)
		}
	}
	e.QueueChannels = kept
	return r.Register(ctx, e)
}
