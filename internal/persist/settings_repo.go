package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ResolutionChange is one committed wake resolution reset.
type ResolutionChange struct {
	SessionID uuid.UUID
	World     string
	From      int
	To        int
	Tick      uint64
}

type SettingsRepo struct {
	db *DB
}

func NewSettingsRepo(db *DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// LoadResolution returns the stored resolution of a world.
// The bool is false when the world has never been saved.
func (r *SettingsRepo) LoadResolution(ctx context.Context, world string) (int, bool, error) {
	var res int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT resolution FROM wake_settings WHERE world = $1`, world,
	).Scan(&res)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load resolution %s: %w", world, err)
	}
	return res, true, nil
}

// SaveResolution stores the new resolution of a world and appends the
// change to the audit table in one transaction.
func (r *SettingsRepo) SaveResolution(ctx context.Context, c ResolutionChange) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save resolution begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO wake_settings (world, resolution, updated_tick, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (world) DO UPDATE
		 SET resolution = EXCLUDED.resolution,
		     updated_tick = EXCLUDED.updated_tick,
		     updated_at = now()`,
		c.World, c.To, int64(c.Tick),
	); err != nil {
		return fmt.Errorf("upsert wake_settings: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO wake_resolution_changes (session_id, world, from_res, to_res, tick)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.SessionID, c.World, c.From, c.To, int64(c.Tick),
	); err != nil {
		return fmt.Errorf("insert wake_resolution_changes: %w", err)
	}

	return tx.Commit(ctx)
}

// RecentChanges lists the latest resolution changes of a world, newest first.
func (r *SettingsRepo) RecentChanges(ctx context.Context, world string, limit int) ([]ResolutionChange, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT session_id, world, from_res, to_res, tick
		 FROM wake_resolution_changes
		 WHERE world = $1
		 ORDER BY changed_at DESC, id DESC
		 LIMIT $2`, world, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query wake_resolution_changes %s: %w", world, err)
	}
	defer rows.Close()

	var out []ResolutionChange
	for rows.Next() {
		var c ResolutionChange
		var tick int64
		if err := rows.Scan(&c.SessionID, &c.World, &c.From, &c.To, &tick); err != nil {
			return nil, fmt.Errorf("scan wake_resolution_changes row: %w", err)
		}
		c.Tick = uint64(tick)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read wake_resolution_changes %s: %w", world, err)
	}
	return out, nil
}
