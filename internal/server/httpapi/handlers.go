package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/common"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/models"
)

// DTOs. Ciphertext fields are []byte, which encoding/json carries as
// base64 strings.

type recordPayload struct {
	DailyCalories []byte `json:"daily_calories"`
	ProteinGrams  []byte `json:"protein_grams"`
	CarbGrams     []byte `json:"carb_grams"`
	FatGrams      []byte `json:"fat_grams"`
	WaterML       []byte `json:"water_ml"`
	ActivityLevel []byte `json:"activity_level"`
	HealthGoal    []byte `json:"health_goal"`
	AllergyMask   []byte `json:"allergy_mask"`
}

func (p recordPayload) toModel() *models.EncryptedRecord {
	return &models.EncryptedRecord{
		DailyCalories: p.DailyCalories,
		ProteinGrams:  p.ProteinGrams,
		CarbGrams:     p.CarbGrams,
		FatGrams:      p.FatGrams,
		WaterML:       p.WaterML,
		ActivityLevel: p.ActivityLevel,
		HealthGoal:    p.HealthGoal,
		AllergyMask:   p.AllergyMask,
	}
}

func recordFromModel(rec *models.EncryptedRecord) recordPayload {
	return recordPayload{
		DailyCalories: rec.DailyCalories,
		ProteinGrams:  rec.ProteinGrams,
		CarbGrams:     rec.CarbGrams,
		FatGrams:      rec.FatGrams,
		WaterML:       rec.WaterML,
		ActivityLevel: rec.ActivityLevel,
		HealthGoal:    rec.HealthGoal,
		AllergyMask:   rec.AllergyMask,
	}
}

func (s *HTTPServer) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewOwner string `json:"new_owner"`
	}
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.engine.TransferOwnership(r.Context(), actorID(r), req.NewOwner); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"owner": req.NewOwner})
}

func (s *HTTPServer) handleAddProvider(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProviderID string `json:"provider_id"`
	}
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.engine.AddProvider(r.Context(), actorID(r), req.ProviderID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"provider": req.ProviderID})
}

func (s *HTTPServer) handleRemoveProvider(w http.ResponseWriter, r *http.Request) {
	providerID := r.PathValue("id")
	if err := s.engine.RemoveProvider(r.Context(), actorID(r), providerID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"provider": providerID})
}

func (s *HTTPServer) handleSetPaused(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paused bool `json:"paused"`
	}
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.engine.SetPaused(r.Context(), actorID(r), req.Paused); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"paused": req.Paused})
}

func (s *HTTPServer) handleSetCooldown(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seconds int64 `json:"seconds"`
	}
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.engine.SetCooldown(r.Context(), actorID(r), time.Duration(req.Seconds)*time.Second); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"seconds": req.Seconds})
}

func (s *HTTPServer) handleOpenBatch(w http.ResponseWriter, r *http.Request) {
	id, err := s.engine.OpenBatch(r.Context(), actorID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"batch_id": id})
}

func (s *HTTPServer) handleCloseBatch(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.CloseBatch(r.Context(), actorID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (s *HTTPServer) handleSubmitRecord(w http.ResponseWriter, r *http.Request) {
	var req recordPayload
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.engine.SubmitRecord(r.Context(), actorID(r), req.toModel()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "stored"})
}

func (s *HTTPServer) handleRequestAnalysis(w http.ResponseWriter, r *http.Request) {
	batchID, err := strconv.ParseInt(r.PathValue("batchID"), 10, 64)
	if err != nil {
		s.writeError(w, r, common.ErrInvalidParameter)
		return
	}
	requestID, err := s.engine.RequestAnalysis(r.Context(), actorID(r), batchID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"request_id": requestID})
}

func (s *HTTPServer) handleOracleCallback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RequestID string `json:"request_id"`
		Cleartext []byte `json:"cleartext"`
		Proof     []byte `json:"proof"`
	}
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.engine.OnDecrypted(r.Context(), req.RequestID, req.Cleartext, req.Proof)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{
		"calorie_target": result.CalorieTarget,
		"protein_target": result.ProteinTarget,
		"carb_target":    result.CarbTarget,
		"fat_target":     result.FatTarget,
		"water_target":   result.WaterTarget,
		"score":          result.Score,
	})
}

func (s *HTTPServer) handleCurrentBatch(w http.ResponseWriter, r *http.Request) {
	id, open, err := s.engine.CurrentBatch(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"batch_id": id, "open": open})
}

// handleGetRecord returns the caller's own record in the given batch.
func (s *HTTPServer) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	batchID, err := strconv.ParseInt(r.PathValue("batchID"), 10, 64)
	if err != nil {
		s.writeError(w, r, common.ErrInvalidParameter)
		return
	}
	rec, err := s.engine.Record(r.Context(), batchID, actorID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordFromModel(rec))
}

func (s *HTTPServer) handleBatchProcessed(w http.ResponseWriter, r *http.Request) {
	batchID, err := strconv.ParseInt(r.PathValue("batchID"), 10, 64)
	if err != nil {
		s.writeError(w, r, common.ErrInvalidParameter)
		return
	}
	processed, err := s.engine.BatchProcessed(r.Context(), batchID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"processed": processed})
}

func (s *HTTPServer) handleGetContext(w http.ResponseWriter, r *http.Request) {
	dc, err := s.engine.DecryptionContext(r.Context(), r.PathValue("requestID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"request_id": dc.RequestID,
		"batch_id":   dc.BatchID,
		"requester":  dc.RequesterID,
		"state_hash": dc.StateHash,
		"processed":  dc.Processed,
	})
}

func (s *HTTPServer) handleCooldowns(w http.ResponseWriter, r *http.Request) {
	submission, request, err := s.engine.CooldownStamps(r.Context(), actorID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := map[string]any{}
	if !submission.IsZero() {
		resp["last_submission"] = submission.UTC().Format(time.RFC3339Nano)
	}
	if !request.IsZero() {
		resp["last_request"] = request.UTC().Format(time.RFC3339Nano)
	}
	writeJSON(w, http.StatusOK, resp)
}
