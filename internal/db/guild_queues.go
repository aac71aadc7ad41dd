package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type GuildQueueRow struct {
	QueueID            uuid.UUID
	GuildID            string
	CategoryID         string
	PostMatchChannelID string
	QueueChannels      []string
}

// UpsertGuildQueue saves where a queue lives on Discord: its guild, the
// category its session channels go under, the announcement channel and
// the voice channels that act as queue entrances.
func (db *DB) UpsertGuildQueue(ctx context.Context, row GuildQueueRow) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO guild_queues (queue_id, guild_id, category_id, post_match_channel_id, queue_channels)
         VALUES ($1, $2, $3, $4, $5)
         ON CONFLICT (queue_id) DO UPDATE
         SET guild_id = EXCLUDED.guild_id,
             category_id = EXCLUDED.category_id,
             post_match_channel_id = EXCLUDED.post_match_channel_id,
             queue_channels = EXCLUDED.queue_channels`,
		row.QueueID, row.GuildID, row.CategoryID, row.PostMatchChannelID, row.QueueChannels,
	)
	return err
}

// ListGuildQueues returns every registered queue placement.
func (db *DB) ListGuildQueues(ctx context.Context) ([]GuildQueueRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT queue_id, guild_id, category_id, post_match_channel_id, queue_channels FROM guild_queues`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GuildQueueRow
	for rows.Next() {
		var r GuildQueueRow
		if err := rows.Scan(&r.QueueID, &r.GuildID, &r.CategoryID, &r.PostMatchChannelID, &r.QueueChannels); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteGuildQueue removes a queue placement.
func (db *DB) DeleteGuildQueue(ctx context.Context, queueID uuid.UUID) error {
	ct, err := db.pool.Exec(ctx, `DELETE FROM guild_queues WHERE queue_id = $1`, queueID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("queue not found")
	}
	return nil
}
