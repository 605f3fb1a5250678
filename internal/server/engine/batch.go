package engine

import (
	"context"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/common"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/models"
)

// OpenBatch transitions Closed → Open and always increments the batch
// counter, so a closed-then-reopened window never reuses an id. Exactly one
// batch is writable at a time.
func (e *Engine) OpenBatch(ctx context.Context, caller string) (int64, error) {
	var id int64
	err := e.run(ctx, func(ctx context.Context, r repos) error {
		st, err := e.loadState(ctx, r)
		if err != nil {
			return err
		}
		if st.OwnerID != caller {
			return common.ErrNotOwner
		}
		if st.BatchOpen {
			return common.ErrInvalidBatch
		}
		st.CurrentBatchID++
		st.BatchOpen = true
		if err := r.state.Save(ctx, st); err != nil {
			return err
		}
		id = st.CurrentBatchID
		e.emit(ctx, models.EventBatchOpened, map[string]any{"batch_id": id})
		return nil
	})
	return id, err
}

// CloseBatch transitions Open → Closed. Records are no longer accepted even
// though the id stays "current" in name.
func (e *Engine) CloseBatch(ctx context.Context, caller string) error {
	return e.run(ctx, func(ctx context.Context, r repos) error {
		st, err := e.loadState(ctx, r)
		if err != nil {
			return err
		}
		if st.OwnerID != caller {
			return common.ErrNotOwner
		}
		if !st.BatchOpen {
			return common.ErrInvalidBatch
		}
		st.BatchOpen = false
		if err := r.state.Save(ctx, st); err != nil {
			return err
		}
		e.emit(ctx, models.EventBatchClosed, map[string]any{"batch_id": st.CurrentBatchID})
		return nil
	})
}

// SubmitRecord stores a provider's encrypted record under the current
// batch, overwriting any prior submission from the same provider in it, and
// resets the provider's submission cooldown.
func (e *Engine) SubmitRecord(ctx context.Context, caller string, rec *models.EncryptedRecord) error {
	return e.run(ctx, func(ctx context.Context, r repos) error {
		st, err := e.loadState(ctx, r)
		if err != nil {
			return err
		}
		isProvider, err := r.state.IsProvider(ctx, caller)
		if err != nil {
			return err
		}
		if !isProvider {
			return common.ErrNotProvider
		}
		if st.Paused {
			return common.ErrPaused
		}
		last, err := r.state.LastAction(ctx, caller, models.TrackSubmission)
		if err != nil {
			return err
		}
		if !e.cooldownElapsed(last, st.Cooldown) {
			return common.ErrCooldownActive
		}
		if !st.BatchOpen {
			return common.ErrInvalidBatch
		}
		if _, err := e.decodeRecord(rec); err != nil {
			return common.ErrInvalidParameter
		}
		stored := *rec
		stored.BatchID = st.CurrentBatchID
		stored.ProviderID = caller
		if err := r.records.Upsert(ctx, &stored); err != nil {
			return err
		}
		if err := r.state.SetLastAction(ctx, caller, models.TrackSubmission, e.now()); err != nil {
			return err
		}
		e.emit(ctx, models.EventRecordSubmitted, map[string]any{
			"provider": caller,
			"batch_id": st.CurrentBatchID,
		})
		return nil
	})
}
