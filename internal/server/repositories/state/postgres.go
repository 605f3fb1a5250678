package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/common"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/dbx"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/models"
)

// PostgresRepository implements lifecycle-state storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Load(ctx context.Context) (*models.SystemState, error) {
	query := `SELECT owner_id, paused, cooldown_seconds, current_batch_id, batch_open FROM system_state WHERE id = 1;`

	var st models.SystemState
	var cooldownSeconds int64
	err := r.db.QueryRowContext(ctx, query).Scan(
		&st.OwnerID, &st.Paused, &cooldownSeconds, &st.CurrentBatchID, &st.BatchOpen,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load system state: %w", err)
	}
	st.Cooldown = time.Duration(cooldownSeconds) * time.Second
	return &st, nil
}

func (r *PostgresRepository) Save(ctx context.Context, st *models.SystemState) error {
	query := `
		INSERT INTO system_state (id, owner_id, paused, cooldown_seconds, current_batch_id, batch_open)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			paused = EXCLUDED.paused,
			cooldown_seconds = EXCLUDED.cooldown_seconds,
			current_batch_id = EXCLUDED.current_batch_id,
			batch_open = EXCLUDED.batch_open;
	`
	_, err := r.db.ExecContext(ctx, query,
		st.OwnerID, st.Paused, int64(st.Cooldown/time.Second), st.CurrentBatchID, st.BatchOpen)
	if err != nil {
		return fmt.Errorf("failed to save system state: %w", err)
	}
	return nil
}

func (r *PostgresRepository) IsProvider(ctx context.Context, actorID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM providers WHERE id = $1);`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, actorID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check provider: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) AddProvider(ctx context.Context, actorID string) error {
	query := `INSERT INTO providers (id) VALUES ($1) ON CONFLICT (id) DO NOTHING;`

	if _, err := r.db.ExecContext(ctx, query, actorID); err != nil {
		return fmt.Errorf("failed to add provider: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveProvider(ctx context.Context, actorID string) error {
	query := `DELETE FROM providers WHERE id = $1;`

	if _, err := r.db.ExecContext(ctx, query, actorID); err != nil {
		return fmt.Errorf("failed to remove provider: %w", err)
	}
	return nil
}

func (r *PostgresRepository) LastAction(ctx context.Context, actorID string, track models.CooldownTrack) (time.Time, error) {
	query := `SELECT last_action FROM cooldowns WHERE actor_id = $1 AND track = $2;`

	var at time.Time
	err := r.db.QueryRowContext(ctx, query, actorID, string(track)).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to load cooldown stamp: %w", err)
	}
	return at, nil
}

func (r *PostgresRepository) SetLastAction(ctx context.Context, actorID string, track models.CooldownTrack, at time.Time) error {
	query := `
		INSERT INTO cooldowns (actor_id, track, last_action)
		VALUES ($1, $2, $3)
		ON CONFLICT (actor_id, track)
		DO UPDATE SET last_action = EXCLUDED.last_action;
	`
	if _, err := r.db.ExecContext(ctx, query, actorID, string(track), at); err != nil {
		return fmt.Errorf("failed to set cooldown stamp: %w", err)
	}
	return nil
}

func (r *PostgresRepository) IsProcessed(ctx context.Context, batchID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM processed_batches WHERE batch_id = $1);`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, batchID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check processed flag: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) MarkProcessed(ctx context.Context, batchID int64) error {
	query := `INSERT INTO processed_batches (batch_id) VALUES ($1) ON CONFLICT (batch_id) DO NOTHING;`

	if _, err := r.db.ExecContext(ctx, query, batchID); err != nil {
		return fmt.Errorf("failed to mark batch processed: %w", err)
	}
	return nil
}
