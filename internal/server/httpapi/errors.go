package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/common"
)

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// statusAndCode maps the engine's sentinel taxonomy onto HTTP statuses:
// authorization 401/403, availability 423, rate 429, lifecycle and replay
// 409, integrity 422, validation 400.
func statusAndCode(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid_token"
	case errors.Is(err, common.ErrNotOwner):
		return http.StatusForbidden, "not_owner"
	case errors.Is(err, common.ErrNotProvider):
		return http.StatusForbidden, "not_provider"
	case errors.Is(err, common.ErrPaused):
		return http.StatusLocked, "paused"
	case errors.Is(err, common.ErrCooldownActive):
		return http.StatusTooManyRequests, "cooldown_active"
	case errors.Is(err, common.ErrInvalidBatch):
		return http.StatusConflict, "invalid_batch"
	case errors.Is(err, common.ErrAlreadyProcessed):
		return http.StatusConflict, "already_processed"
	case errors.Is(err, common.ErrReplayAttempt):
		return http.StatusConflict, "replay_attempt"
	case errors.Is(err, common.ErrStateMismatch):
		return http.StatusUnprocessableEntity, "state_mismatch"
	case errors.Is(err, common.ErrInvalidProof):
		return http.StatusUnprocessableEntity, "invalid_proof"
	case errors.Is(err, common.ErrInvalidParameter):
		return http.StatusBadRequest, "invalid_parameter"
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusAndCode(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
	}
	writeJSON(w, status, errorResponse{Code: code, Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// readJSON decodes a request body, rejecting unknown fields.
func readJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return common.ErrInvalidParameter
	}
	return nil
}
