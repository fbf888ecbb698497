package handlers

import (
	"net/http"
	"strings"
)

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.svc.Services(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]serviceDTO, len(services))
	for i, s := range services {
		out[i] = toService(s)
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.svc.Providers(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]providerDTO, len(providers))
	for i, p := range providers {
		out[i] = toProvider(p)
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.Settings(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSettings(settings))
}

type availabilityRequest struct {
	Date       string `json:"date"`
	ServiceID  string `json:"service_id"`
	ProviderID string `json:"provider_id"`
}

type availabilityResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Date = strings.TrimSpace(req.Date)
	if req.Date == "" || req.ServiceID == "" || req.ProviderID == "" {
		http.Error(w, "date, service_id and provider_id are required", http.StatusBadRequest)
		return
	}
	res, err := h.svc.AvailableSlots(r.Context(), req.ProviderID, req.ServiceID, req.Date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, availabilityResponse{Date: res.Date, Slots: res.Slots})
}
