package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/auth"
	"github.com/md-rashed-zaman/salonbook/libs/httpx"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

const maxBodyBytes = 64 << 10

// identity resolves the verified caller. Routes that need one answer 401
// themselves when ok is false.
func identity(r *http.Request) (model.Identity, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return model.Identity{}, false
	}
	return model.Identity{
		ID:      claims.Sub,
		IsAdmin: claims.IsAdmin(),
		Name:    claims.Name,
		Phone:   claims.Phone,
		Email:   claims.Email,
	}, true
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	id, ok := identity(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
	}
	return id, ok
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("encode response failed", "err", err)
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError maps the domain taxonomy onto status codes. Anything else is an
// infrastructure failure: logged in full, answered with a generic body.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, model.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, model.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, model.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"err", err,
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseStart(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("start_time is required")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.New("start_time must be RFC3339")
	}
	return t, nil
}
