package handlers

import (
	"net/http"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/booking"
)

type createBookingRequest struct {
	ProviderID string `json:"provider_id"`
	ServiceID  string `json:"service_id"`
	StartTime  string `json:"start_time"`
}

type rescheduleRequest struct {
	StartTime string `json:"start_time"`
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req createBookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProviderID == "" || req.ServiceID == "" {
		http.Error(w, "provider_id and service_id are required", http.StatusBadRequest)
		return
	}
	start, err := parseStart(req.StartTime)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.svc.Create(r.Context(), id, booking.CreateRequest{
		ProviderID: req.ProviderID,
		ServiceID:  req.ServiceID,
		StartTime:  start,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("booking created", "booking_id", b.ID, "provider_id", b.ProviderID, "start_time", b.StartTime)
	h.writeJSON(w, http.StatusCreated, toBooking(b))
}

func (h *Handler) MyBookings(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}
	// Admins get their own bookings here too; the admin listing is separate.
	list, err := h.svc.List(r.Context(), id, booking.ListFilter{OwnerID: id.ID})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toBookings(list))
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}
	b, err := h.svc.Cancel(r.Context(), id, r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toBooking(b))
}

func (h *Handler) RescheduleBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req rescheduleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	start, err := parseStart(req.StartTime)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b, err := h.svc.Reschedule(r.Context(), id, r.PathValue("id"), start)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toBooking(b))
}
