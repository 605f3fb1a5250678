package engine

import (
	"context"
	"time"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/common"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/models"
)

// Administrative entry points. All of them require the current owner and
// stay available while the system is paused.

func (e *Engine) TransferOwnership(ctx context.Context, caller, newOwner string) error {
	return e.run(ctx, func(ctx context.Context, r repos) error {
		st, err := e.loadState(ctx, r)
		if err != nil {
			return err
		}
		if st.OwnerID != caller {
			return common.ErrNotOwner
		}
		if newOwner == "" {
			return common.ErrInvalidParameter
		}
		old := st.OwnerID
		st.OwnerID = newOwner
		if err := r.state.Save(ctx, st); err != nil {
			return err
		}
		e.emit(ctx, models.EventOwnershipTransferred, map[string]any{"old": old, "new": newOwner})
		return nil
	})
}

// AddProvider grants the provider role. Adding an existing provider is a
// silent no-op: no error, no event.
func (e *Engine) AddProvider(ctx context.Context, caller, providerID string) error {
	return e.run(ctx, func(ctx context.Context, r repos) error {
		st, err := e.loadState(ctx, r)
		if err != nil {
			return err
		}
		if st.OwnerID != caller {
			return common.ErrNotOwner
		}
		if providerID == "" {
			return common.ErrInvalidParameter
		}
		already, err := r.state.IsProvider(ctx, providerID)
		if err != nil {
			return err
		}
		if already {
			return nil
		}
		if err := r.state.AddProvider(ctx, providerID); err != nil {
			return err
		}
		e.emit(ctx, models.EventProviderAdded, map[string]any{"provider": providerID})
		return nil
	})
}

// RemoveProvider revokes the provider role. Removing a non-provider is a
// silent no-op: no error, no event.
func (e *Engine) RemoveProvider(ctx context.Context, caller, providerID string) error {
	return e.run(ctx, func(ctx context.Context, r repos) error {
		st, err := e.loadState(ctx, r)
		if err != nil {
			return err
		}
		if st.OwnerID != caller {
			return common.ErrNotOwner
		}
		present, err := r.state.IsProvider(ctx, providerID)
		if err != nil {
			return err
		}
		if !present {
			return nil
		}
		if err := r.state.RemoveProvider(ctx, providerID); err != nil {
			return err
		}
		e.emit(ctx, models.EventProviderRemoved, map[string]any{"provider": providerID})
		return nil
	})
}

func (e *Engine) SetPaused(ctx context.Context, caller string, paused bool) error {
	return e.run(ctx, func(ctx context.Context, r repos) error {
		st, err := e.loadState(ctx, r)
		if err != nil {
			return err
		}
		if st.OwnerID != caller {
			return common.ErrNotOwner
		}
		old := st.Paused
		st.Paused = paused
		if err := r.state.Save(ctx, st); err != nil {
			return err
		}
		e.emit(ctx, models.EventPausedSet, map[string]any{"old": old, "new": paused})
		return nil
	})
}

func (e *Engine) SetCooldown(ctx context.Context, caller string, cooldown time.Duration) error {
	return e.run(ctx, func(ctx context.Context, r repos) error {
		st, err := e.loadState(ctx, r)
		if err != nil {
			return err
		}
		if st.OwnerID != caller {
			return common.ErrNotOwner
		}
		if cooldown <= 0 {
			return common.ErrInvalidParameter
		}
		old := st.Cooldown
		st.Cooldown = cooldown
		if err := r.state.Save(ctx, st); err != nil {
			return err
		}
		e.emit(ctx, models.EventCooldownSet, map[string]any{
			"old_seconds": int64(old / time.Second),
			"new_seconds": int64(cooldown / time.Second),
		})
		return nil
	})
}
