package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/common"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/models"
)

func TestInMemory_LoadBeforeSave(t *testing.T) {
	r := NewInMemoryRepository()
	_, err := r.Load(context.Background())
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestInMemory_SaveReturnsCopy(t *testing.T) {
	r := NewInMemoryRepository()
	ctx := context.Background()

	st := &models.SystemState{OwnerID: "o", Cooldown: time.Minute, CurrentBatchID: 1}
	require.NoError(t, r.Save(ctx, st))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	got.OwnerID = "mutated"

	again, err := r.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "o", again.OwnerID)
}

func TestInMemory_Providers(t *testing.T) {
	r := NewInMemoryRepository()
	ctx := context.Background()

	ok, err := r.IsProvider(ctx, "p1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, r.AddProvider(ctx, "p1"))
	ok, err = r.IsProvider(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, r.RemoveProvider(ctx, "p1"))
	ok, err = r.IsProvider(ctx, "p1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInMemory_CooldownTracks(t *testing.T) {
	r := NewInMemoryRepository()
	ctx := context.Background()

	at, err := r.LastAction(ctx, "p1", models.TrackSubmission)
	require.NoError(t, err)
	require.True(t, at.IsZero())

	stamp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.SetLastAction(ctx, "p1", models.TrackSubmission, stamp))

	at, err = r.LastAction(ctx, "p1", models.TrackSubmission)
	require.NoError(t, err)
	require.Equal(t, stamp, at)

	// The request track is untouched.
	at, err = r.LastAction(ctx, "p1", models.TrackRequest)
	require.NoError(t, err)
	require.True(t, at.IsZero())
}

func TestInMemory_ProcessedIsPermanent(t *testing.T) {
	r := NewInMemoryRepository()
	ctx := context.Background()

	ok, err := r.IsProcessed(ctx, 2)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, r.MarkProcessed(ctx, 2))
	require.NoError(t, r.MarkProcessed(ctx, 2))

	ok, err = r.IsProcessed(ctx, 2)
	require.NoError(t, err)
	require.True(t, ok)
}
