package handlers

import (
	"net/http"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

type preferencesDTO struct {
	NotificationPreferences []string `json:"notification_preferences"`
}

func toPreferences(p model.Preferences) preferencesDTO {
	out := preferencesDTO{NotificationPreferences: make([]string, len(p.ReminderLeads))}
	for i, l := range p.ReminderLeads {
		out.NotificationPreferences[i] = string(l)
	}
	return out
}

func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Preferences(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toPreferences(p))
}

func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req preferencesDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.UpdatePreferences(r.Context(), id, req.NotificationPreferences)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toPreferences(p))
}
