package db

import (
	"context"

	"github.com/google/uuid"
)

// SaveSnapshot upserts one queue's serialized state.
func (db *DB) SaveSnapshot(ctx context.Context, queueID uuid.UUID, data []byte) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO queue_snapshots (queue_id, data, updated_at)
         VALUES ($1, $2, CURRENT_TIMESTAMP)
         ON CONFLICT (queue_id) DO UPDATE SET data = EXCLUDED.data, updated_at = CURRENT_TIMESTAMP`,
		queueID, data,
	)
	return err
}

// LoadSnapshots returns the serialized state of every known queue.
func (db *DB) LoadSnapshots(ctx context.Context) (map[uuid.UUID][]byte, error) {
	rows, err := db.pool.Query(ctx, `SELECT queue_id, data FROM queue_snapshots`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[uuid.UUID][]byte{}
	for rows.Next() {
		var id uuid.UUID
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		out[id] = data
	}
	return out, rows.Err()
}

// DeleteSnapshot removes a queue's saved state.
func (db *DB) DeleteSnapshot(ctx context.Context, queueID uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM queue_snapshots WHERE queue_id = $1`, queueID)
	return err
}
