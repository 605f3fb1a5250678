package engine

import (
	"context"
	"time"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/models"
)

// Read-only queries for external observers. They run as invocations like
// everything else, so they never observe a half-applied mutation.

// CurrentBatch returns the current batch id and whether it is open.
func (e *Engine) CurrentBatch(ctx context.Context) (int64, bool, error) {
	var id int64
	var open bool
	err := e.run(ctx, func(ctx context.Context, r repos) error {
		st, err := e.loadState(ctx, r)
		if err != nil {
			return err
		}
		id = st.CurrentBatchID
		open = st.BatchOpen
		return nil
	})
	return id, open, err
}

// CooldownStamps returns an actor's last-submission and last-request
// timestamps; zero times mean the actor never acted.
func (e *Engine) CooldownStamps(ctx context.Context, actorID string) (submission, request time.Time, err error) {
	err = e.run(ctx, func(ctx context.Context, r repos) error {
		var err error
		if submission, err = r.state.LastAction(ctx, actorID, models.TrackSubmission); err != nil {
			return err
		}
		request, err = r.state.LastAction(ctx, actorID, models.TrackRequest)
		return err
	})
	return submission, request, err
}

// Record returns the raw encrypted record for (batch, provider), or
// common.ErrNotFound.
func (e *Engine) Record(ctx context.Context, batchID int64, providerID string) (*models.EncryptedRecord, error) {
	var rec *models.EncryptedRecord
	err := e.run(ctx, func(ctx context.Context, r repos) error {
		var err error
		rec, err = r.records.Get(ctx, batchID, providerID)
		return err
	})
	return rec, err
}

// BatchProcessed reports whether a batch has been finalized.
func (e *Engine) BatchProcessed(ctx context.Context, batchID int64) (bool, error) {
	var processed bool
	err := e.run(ctx, func(ctx context.Context, r repos) error {
		var err error
		processed, err = r.state.IsProcessed(ctx, batchID)
		return err
	})
	return processed, err
}

// DecryptionContext returns the stored context for a request id, or
// common.ErrNotFound.
func (e *Engine) DecryptionContext(ctx context.Context, requestID string) (*models.DecryptionContext, error) {
	var dc *models.DecryptionContext
	err := e.run(ctx, func(ctx context.Context, r repos) error {
		var err error
		dc, err = r.contexts.Get(ctx, requestID)
		return err
	})
	return dc, err
}

// IsProvider reports whether the actor currently holds the provider role.
func (e *Engine) IsProvider(ctx context.Context, actorID string) (bool, error) {
	var is bool
	err := e.run(ctx, func(ctx context.Context, r repos) error {
		var err error
		is, err = r.state.IsProvider(ctx, actorID)
		return err
	})
	return is, err
}
