package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type MatchRow struct {
	ID          int64
	QueueID     uuid.UUID
	SessionName string
	MapName     string
	Outcome     string
	Teams       [][]string
	FinishedAt  time.Time
}

// InsertMatch records a finished session.
func (db *DB) InsertMatch(ctx context.Context, row MatchRow) (int64, error) {
	teams, err := json.Marshal(row.Teams)
	if err != nil {
		return 0, err
	}
	var id int64
	err = db.pool.QueryRow(ctx,
		`INSERT INTO match_history (queue_id, session_name, map_name, outcome, teams)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id`,
		row.QueueID, row.SessionName, row.MapName, row.Outcome, teams,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// RecentMatches returns the queue's latest finished sessions, newest first.
func (db *DB) RecentMatches(ctx context.Context, queueID uuid.UUID, limit int) ([]MatchRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, queue_id, session_name, map_name, outcome, teams, finished_at
		 FROM match_history
		 WHERE queue_id = $1
		 ORDER BY id DESC
		 LIMIT $2`,
		queueID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchRow
	for rows.Next() {
		var r MatchRow
		var teams []byte
		if err := rows.Scan(&r.ID, &r.QueueID, &r.SessionName, &r.MapName, &r.Outcome, &teams, &r.FinishedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(teams, &r.Teams); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
