// Package state persists the global lifecycle state: the system row
// (owner, pause flag, cooldown, batch counter), provider membership,
// per-actor cooldown stamps and per-batch processed flags.
package state

import (
	"context"
	"time"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/models"
)

type Repository interface {
	// Load returns the system row, or common.ErrNotFound before genesis.
	Load(ctx context.Context) (*models.SystemState, error)
	// Save upserts the system row.
	Save(ctx context.Context, st *models.SystemState) error

	IsProvider(ctx context.Context, actorID string) (bool, error)
	// AddProvider and RemoveProvider are idempotent.
	AddProvider(ctx context.Context, actorID string) error
	RemoveProvider(ctx context.Context, actorID string) error

	// LastAction returns the zero time when the actor has never acted on
	// the given track.
	LastAction(ctx context.Context, actorID string, track models.CooldownTrack) (time.Time, error)
	SetLastAction(ctx context.Context, actorID string, track models.CooldownTrack, at time.Time) error

	IsProcessed(ctx context.Context, batchID int64) (bool, error)
	// MarkProcessed is permanent; there is no unmark.
	MarkProcessed(ctx context.Context, batchID int64) error
}
