package engine

import (
	"context"
	"crypto/ed25519"
	"encoding/binary"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/common"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/fhe"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/logging"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/nutrition"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/models"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/repositories/repomanager"
)

const (
	testOwner    = "owner-1"
	testProvider = "provider-1"
	testInstance = "test-instance"
)

type fakeOracle struct {
	n       int
	handles [][]fhe.Handle
}

func (o *fakeOracle) RequestDecryption(_ context.Context, handles []fhe.Handle) (string, error) {
	o.n++
	o.handles = append(o.handles, handles)
	return fmt.Sprintf("req-%d", o.n), nil
}

func (o *fakeOracle) last() []fhe.Handle {
	return o.handles[len(o.handles)-1]
}

type recordingSink struct {
	events []models.Event
}

func (s *recordingSink) Publish(_ context.Context, ev models.Event) {
	s.events = append(s.events, ev)
}

func (s *recordingSink) ofType(typ string) []models.Event {
	var out []models.Event
	for _, ev := range s.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

type fixture struct {
	engine  *Engine
	scheme  *fhe.SealedScheme
	oracle  *fakeOracle
	sink    *recordingSink
	privKey ed25519.PrivateKey
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	sealingKey := make([]byte, 32)
	for i := range sealingKey {
		sealingKey[i] = byte(i)
	}
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	scheme, err := fhe.NewSealedScheme(sealingKey, pub)
	require.NoError(t, err)

	f := &fixture{
		scheme:  scheme,
		oracle:  &fakeOracle{},
		sink:    &recordingSink{},
		privKey: priv,
		clock:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	e, err := New(Config{
		Repos:      repomanager.NewInMemoryRepositoryManager(),
		Scheme:     scheme,
		Oracle:     f.oracle,
		Logger:     logging.NewSlogLogger(slog.Default()),
		Sink:       f.sink,
		InstanceID: testInstance,
		OwnerID:    testOwner,
		Cooldown:   60 * time.Second,
	})
	require.NoError(t, err)
	e.now = func() time.Time { return f.clock }
	f.engine = e

	require.NoError(t, e.Init(context.Background()))
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

// submit encrypts a cleartext record for the provider and submits it.
func (f *fixture) submit(t *testing.T, provider string, plain nutrition.PlainRecord) {
	t.Helper()
	rec, err := nutrition.EncryptRecord(f.scheme, plain)
	require.NoError(t, err)
	require.NoError(t, f.engine.SubmitRecord(context.Background(), provider, &models.EncryptedRecord{
		DailyCalories: rec.DailyCalories.Bytes(),
		ProteinGrams:  rec.ProteinGrams.Bytes(),
		CarbGrams:     rec.CarbGrams.Bytes(),
		FatGrams:      rec.FatGrams.Bytes(),
		WaterML:       rec.WaterML.Bytes(),
		ActivityLevel: rec.ActivityLevel.Bytes(),
		HealthGoal:    rec.HealthGoal.Bytes(),
		AllergyMask:   rec.AllergyMask.Bytes(),
	}))
}

// decryptLast opens the handles captured by the fake oracle and returns the
// signed cleartext exactly as a well-behaved oracle node would.
func (f *fixture) decryptLast(t *testing.T, requestID string) (cleartext, proof []byte) {
	t.Helper()
	handles := f.oracle.last()
	require.Len(t, handles, 6)

	sealingKey := make([]byte, 32)
	for i := range sealingKey {
		sealingKey[i] = byte(i)
	}
	dec, err := fhe.NewDecryptor(sealingKey)
	require.NoError(t, err)

	cleartext = make([]byte, 6*8)
	for i, h := range handles {
		ct, ok := f.scheme.CiphertextFor(h)
		require.True(t, ok, "handle %d not resolvable", i)
		v, err := dec.Decrypt(ct)
		require.NoError(t, err)
		binary.BigEndian.PutUint64(cleartext[i*8:], v)
	}
	proof = ed25519.Sign(f.privKey, fhe.ProofMessage(requestID, cleartext))
	return cleartext, proof
}

func samplePlain() nutrition.PlainRecord {
	return nutrition.PlainRecord{
		DailyCalories: 2000,
		ProteinGrams:  120,
		CarbGrams:     250,
		FatGrams:      60,
		WaterML:       2000,
		ActivityLevel: 3,
		HealthGoal:    1,
		AllergyMask:   0,
	}
}

func TestInitGenesis(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, open, err := f.engine.CurrentBatch(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
	require.False(t, open)

	isProvider, err := f.engine.IsProvider(ctx, testOwner)
	require.NoError(t, err)
	require.True(t, isProvider)

	// Re-running Init leaves existing state untouched.
	require.NoError(t, f.engine.Init(ctx))
	_, err = f.engine.OpenBatch(ctx, testOwner)
	require.NoError(t, err)
	require.NoError(t, f.engine.Init(ctx))
	id, open, err = f.engine.CurrentBatch(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), id)
	require.True(t, open)
}

func TestTransferOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.engine.TransferOwnership(ctx, "stranger", "stranger")
	require.ErrorIs(t, err, common.ErrNotOwner)

	err = f.engine.TransferOwnership(ctx, testOwner, "")
	require.ErrorIs(t, err, common.ErrInvalidParameter)

	require.NoError(t, f.engine.TransferOwnership(ctx, testOwner, "owner-2"))

	// The old owner immediately loses administrative rights.
	err = f.engine.SetPaused(ctx, testOwner, true)
	require.ErrorIs(t, err, common.ErrNotOwner)
	require.NoError(t, f.engine.SetPaused(ctx, "owner-2", true))

	evs := f.sink.ofType(models.EventOwnershipTransferred)
	require.Len(t, evs, 1)
	require.Equal(t, testOwner, evs[0].Fields["old"])
	require.Equal(t, "owner-2", evs[0].Fields["new"])
}

func TestAddProviderDuplicateIsSilent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.AddProvider(ctx, testOwner, testProvider))
	require.NoError(t, f.engine.AddProvider(ctx, testOwner, testProvider))

	require.Len(t, f.sink.ofType(models.EventProviderAdded), 1)

	err := f.engine.AddProvider(ctx, testProvider, "other")
	require.ErrorIs(t, err, common.ErrNotOwner)
}

func TestRemoveProviderAbsentIsSilent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Removing an account that never held the role succeeds and emits
	// nothing.
	require.NoError(t, f.engine.RemoveProvider(ctx, testOwner, "never-added"))
	require.Empty(t, f.sink.ofType(models.EventProviderRemoved))

	require.NoError(t, f.engine.AddProvider(ctx, testOwner, testProvider))
	require.NoError(t, f.engine.RemoveProvider(ctx, testOwner, testProvider))
	require.Len(t, f.sink.ofType(models.EventProviderRemoved), 1)

	isProvider, err := f.engine.IsProvider(ctx, testProvider)
	require.NoError(t, err)
	require.False(t, isProvider)
}

func TestPauseGatesDataPlaneOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.OpenBatch(ctx, testOwner)
	require.NoError(t, err)
	require.NoError(t, f.engine.SetPaused(ctx, testOwner, true))

	err = f.engine.SubmitRecord(ctx, testOwner, &models.EncryptedRecord{})
	require.ErrorIs(t, err, common.ErrPaused)
	_, err = f.engine.RequestAnalysis(ctx, testOwner, 2)
	require.ErrorIs(t, err, common.ErrPaused)

	// Administrative and batch operations stay available while paused.
	require.NoError(t, f.engine.AddProvider(ctx, testOwner, testProvider))
	require.NoError(t, f.engine.CloseBatch(ctx, testOwner))
	_, err = f.engine.OpenBatch(ctx, testOwner)
	require.NoError(t, err)

	require.NoError(t, f.engine.SetPaused(ctx, testOwner, false))
	f.submit(t, testOwner, samplePlain())
}

func TestSetCooldown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.engine.SetCooldown(ctx, testOwner, 0)
	require.ErrorIs(t, err, common.ErrInvalidParameter)
	err = f.engine.SetCooldown(ctx, testOwner, -time.Second)
	require.ErrorIs(t, err, common.ErrInvalidParameter)

	require.NoError(t, f.engine.SetCooldown(ctx, testOwner, 10*time.Second))

	evs := f.sink.ofType(models.EventCooldownSet)
	require.Len(t, evs, 1)
	require.Equal(t, int64(60), evs[0].Fields["old_seconds"])
	require.Equal(t, int64(10), evs[0].Fields["new_seconds"])
}

func TestCooldownBoundaryInclusive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.OpenBatch(ctx, testOwner)
	require.NoError(t, err)
	f.submit(t, testOwner, samplePlain())

	// One nanosecond early still blocks.
	f.advance(60*time.Second - time.Nanosecond)
	rec, err := nutrition.EncryptRecord(f.scheme, samplePlain())
	require.NoError(t, err)
	err = f.engine.SubmitRecord(ctx, testOwner, &models.EncryptedRecord{
		DailyCalories: rec.DailyCalories.Bytes(),
		ProteinGrams:  rec.ProteinGrams.Bytes(),
		CarbGrams:     rec.CarbGrams.Bytes(),
		FatGrams:      rec.FatGrams.Bytes(),
		WaterML:       rec.WaterML.Bytes(),
		ActivityLevel: rec.ActivityLevel.Bytes(),
		HealthGoal:    rec.HealthGoal.Bytes(),
		AllergyMask:   rec.AllergyMask.Bytes(),
	})
	require.ErrorIs(t, err, common.ErrCooldownActive)

	// Exactly at the boundary the action is allowed.
	f.advance(time.Nanosecond)
	f.submit(t, testOwner, samplePlain())
}

func TestCooldownTracksAreIndependent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.OpenBatch(ctx, testOwner)
	require.NoError(t, err)
	f.submit(t, testOwner, samplePlain())

	// A fresh submission does not block the first analysis request.
	_, err = f.engine.RequestAnalysis(ctx, testOwner, 2)
	require.NoError(t, err)

	// But a second request within the window does.
	_, err = f.engine.RequestAnalysis(ctx, testOwner, 2)
	require.ErrorIs(t, err, common.ErrCooldownActive)
}
