package persist

import (
	"context"
	"fmt"
	"time"
)

// Standing is one team's final zone count.
type Standing struct {
	Team   int
	Zones  int
	Winner bool
}

// MatchRow is a concluded (or running) match record.
type MatchRow struct {
	ID        int64
	Name      string
	Zones     int
	StartedAt time.Time
	EndedAt   *time.Time
	Reason    string
	Elapsed   time.Duration
	Standings []Standing
}

// MatchRepo records match starts and results.
type MatchRepo struct {
	db *DB
}

func NewMatchRepo(db *DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// Begin inserts a match record and returns its id.
func (r *MatchRepo) Begin(ctx context.Context, name string, zones int) (int64, error) {
	var id int64
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO matches (name, zones) VALUES ($1, $2) RETURNING id`,
		name, zones,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert match: %w", err)
	}
	return id, nil
}

// SaveResult closes the match record and writes its standings in one transaction.
func (r *MatchRepo) SaveResult(ctx context.Context, id int64, reason string, elapsed time.Duration, standings []Standing) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save result begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE matches SET ended_at = now(), reason = $2, elapsed_ms = $3
		 WHERE id = $1 AND ended_at IS NULL`,
		id, reason, elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update match %d: not found or already ended", id)
	}
	for _, s := range standings {
		if _, err := tx.Exec(ctx,
			`INSERT INTO match_standings (match_id, team, zones, winner) VALUES ($1, $2, $3, $4)`,
			id, s.Team, s.Zones, s.Winner,
		); err != nil {
			return fmt.Errorf("insert standing: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// Recent returns the latest matches, newest first, with their standings.
func (r *MatchRepo) Recent(ctx context.Context, limit int) ([]MatchRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, name, zones, started_at, ended_at, COALESCE(reason, ''), COALESCE(elapsed_ms, 0)
		 FROM matches ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchRow
	index := make(map[int64]int)
	for rows.Next() {
		var m MatchRow
		var ms int64
		if err := rows.Scan(&m.ID, &m.Name, &m.Zones, &m.StartedAt, &m.EndedAt, &m.Reason, &ms); err != nil {
			return nil, err
		}
		m.Elapsed = time.Duration(ms) * time.Millisecond
		index[m.ID] = len(out)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(out))
	for _, m := range out {
		ids = append(ids, m.ID)
	}
	srows, err := r.db.Pool.Query(ctx,
		`SELECT match_id, team, zones, winner FROM match_standings
		 WHERE match_id = ANY($1) ORDER BY match_id, zones DESC, team`, ids)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var id int64
		var s Standing
		if err := srows.Scan(&id, &s.Team, &s.Zones, &s.Winner); err != nil {
			return nil, err
		}
		i := index[id]
		out[i].Standings = append(out[i].Standings, s)
	}
	return out, srows.Err()
}
