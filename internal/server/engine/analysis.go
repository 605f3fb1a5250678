package engine

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/common"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/fhe"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/nutrition"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/models"
)

// cleartextLen is the oracle wire layout: six consecutive big-endian
// 64-bit words in the fixed result order.
const cleartextLen = 6 * 8

// stateHash commits to the exact ordered sequence of result handles plus
// the instance identity, so a callback for this deployment cannot be
// replayed against another and cannot attach to a different analysis.
func (e *Engine) stateHash(handles []fhe.Handle) []byte {
	h := sha3.New256()
	for _, hd := range handles {
		h.Write(hd[:])
	}
	h.Write([]byte(e.instanceID))
	return h.Sum(nil)
}

// decodeRecord revives the stored ciphertext blobs as adapter values.
func (e *Engine) decodeRecord(rec *models.EncryptedRecord) (nutrition.Record, error) {
	var out nutrition.Record
	for _, f := range []struct {
		name string
		src  []byte
		dst  *fhe.Int
	}{
		{"daily_calories", rec.DailyCalories, &out.DailyCalories},
		{"protein_grams", rec.ProteinGrams, &out.ProteinGrams},
		{"carb_grams", rec.CarbGrams, &out.CarbGrams},
		{"fat_grams", rec.FatGrams, &out.FatGrams},
		{"water_ml", rec.WaterML, &out.WaterML},
		{"activity_level", rec.ActivityLevel, &out.ActivityLevel},
		{"health_goal", rec.HealthGoal, &out.HealthGoal},
		{"allergy_mask", rec.AllergyMask, &out.AllergyMask},
	} {
		x, err := e.scheme.FromBytes(f.src)
		if err != nil {
			return nutrition.Record{}, fmt.Errorf("field %s: %w", f.name, err)
		}
		*f.dst = x
	}
	return out, nil
}

// RequestAnalysis computes the encrypted analysis for the caller's record
// in the given batch, commits to the six result handles, and hands them to
// the oracle. It returns the oracle-assigned request id; the plaintext
// arrives later through OnDecrypted.
//
// The six handles are deliberately not stored: they are a deterministic
// function of the stored record ciphertexts, so the callback re-derives
// them and checks the commitment instead of trusting an echo.
func (e *Engine) RequestAnalysis(ctx context.Context, caller string, batchID int64) (string, error) {
	var requestID string
	err := e.run(ctx, func(ctx context.Context, r repos) error {
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
		last, err := r.state.LastAction(ctx, caller, models.TrackRequest)
		if err != nil {
			return err
		}
		if !e.cooldownElapsed(last, st.Cooldown) {
			return common.ErrCooldownActive
		}
		if batchID <= 0 {
			return common.ErrInvalidBatch
		}
		processed, err := r.state.IsProcessed(ctx, batchID)
		if err != nil {
			return err
		}
		if processed {
			return common.ErrAlreadyProcessed
		}
		rec, err := r.records.Get(ctx, batchID, caller)
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrInvalidBatch
		}
		if err != nil {
			return err
		}

		nrec, err := e.decodeRecord(rec)
		if err != nil {
			return common.ErrStateMismatch
		}
		handles := nutrition.Analyze(e.scheme, nrec).Handles()

		requestID, err = e.oracle.RequestDecryption(ctx, handles)
		if err != nil {
			return fmt.Errorf("oracle request: %w", err)
		}
		dc := &models.DecryptionContext{
			RequestID:   requestID,
			BatchID:     batchID,
			RequesterID: caller,
			StateHash:   e.stateHash(handles),
		}
		if err := r.contexts.Create(ctx, dc); err != nil {
			return err
		}
		// The cooldown stamp is written last so a failed invocation leaves
		// no trace even without transaction rollback.
		if err := r.state.SetLastAction(ctx, caller, models.TrackRequest, e.now()); err != nil {
			return err
		}
		e.emit(ctx, models.EventDecryptionRequested, map[string]any{
			"request_id": requestID,
			"batch_id":   batchID,
			"requester":  caller,
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return requestID, nil
}

// OnDecrypted is the oracle callback: five guards, one atomic unit. Either
// every guard passes and exactly one finalization occurs, or the call has
// no observable effect beyond the reported failure.
func (e *Engine) OnDecrypted(ctx context.Context, requestID string, cleartext, proof []byte) (*nutrition.PlainResult, error) {
	var result *nutrition.PlainResult
	err := e.run(ctx, func(ctx context.Context, r repos) error {
		dc, err := r.contexts.Get(ctx, requestID)
		if errors.Is(err, common.ErrNotFound) {
			// Never-created sentinel.
			return common.ErrInvalidBatch
		}
		if err != nil {
			return err
		}

		// a. Replay guard: a finalized request never finalizes again.
		if dc.Processed {
			return common.ErrReplayAttempt
		}
		// b. Existence guard.
		if dc.BatchID == 0 {
			return common.ErrInvalidBatch
		}
		// c. State re-verification: the callback must observe exactly the
		// record state hashed at request time. The lookup uses the stored
		// requester identity, never the callback deliverer.
		rec, err := r.records.Get(ctx, dc.BatchID, dc.RequesterID)
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrStateMismatch
		}
		if err != nil {
			return err
		}
		nrec, err := e.decodeRecord(rec)
		if err != nil {
			return common.ErrStateMismatch
		}
		handles := nutrition.Analyze(e.scheme, nrec).Handles()
		if !bytes.Equal(e.stateHash(handles), dc.StateHash) {
			return common.ErrStateMismatch
		}
		// d. Proof verification.
		if !e.scheme.VerifyProof(requestID, cleartext, proof) {
			return common.ErrInvalidProof
		}
		// e. Decode and finalize.
		if len(cleartext) != cleartextLen {
			return common.ErrInvalidParameter
		}
		var values [6]int64
		for i := range values {
			values[i] = int64(binary.BigEndian.Uint64(cleartext[i*8 : (i+1)*8]))
		}
		if err := r.contexts.MarkProcessed(ctx, requestID); err != nil {
			return err
		}
		if err := r.state.MarkProcessed(ctx, dc.BatchID); err != nil {
			return err
		}
		result = &nutrition.PlainResult{
			CalorieTarget: values[0],
			ProteinTarget: values[1],
			CarbTarget:    values[2],
			FatTarget:     values[3],
			WaterTarget:   values[4],
			Score:         values[5],
		}
		e.emit(ctx, models.EventDecryptionCompleted, map[string]any{
			"request_id":     requestID,
			"batch_id":       dc.BatchID,
			"calorie_target": values[0],
			"protein_target": values[1],
			"carb_target":    values[2],
			"fat_target":     values[3],
			"water_target":   values[4],
			"score":          values[5],
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
