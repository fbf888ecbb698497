package handlers

import (
	"net/http"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

type manualBookingRequest struct {
	ProviderID  string `json:"provider_id"`
	ServiceID   string `json:"service_id"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	ClientEmail string `json:"client_email"`
	StartTime   string `json:"start_time"`
}

type updateBookingRequest struct {
	StartTime *string `json:"start_time"`
	Status    *string `json:"status"`
}

type deletedResponse struct {
	Deleted int `json:"deleted"`
}

func (h *Handler) AdminListBookings(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}
	if !id.IsAdmin {
		http.Error(w, "admin only", http.StatusForbidden)
		return
	}
	q := r.URL.Query()
	list, err := h.svc.List(r.Context(), id, booking.ListFilter{
		Date:    q.Get("date"),
		Status:  q.Get("status"),
		OwnerID: q.Get("user_id"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toBookings(list))
}

func (h *Handler) AdminCreateManual(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req manualBookingRequest
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
	b, err := h.svc.CreateManual(r.Context(), id, booking.ManualRequest{
		ProviderID:  req.ProviderID,
		ServiceID:   req.ServiceID,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		ClientEmail: req.ClientEmail,
		StartTime:   start,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("manual booking created", "booking_id", b.ID, "provider_id", b.ProviderID)
	h.writeJSON(w, http.StatusCreated, toBooking(b))
}

func (h *Handler) AdminConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}
	b, err := h.svc.Confirm(r.Context(), id, r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toBooking(b))
}

// AdminUpdateBooking moves a booking and/or changes its status. The move runs
// first, so a combined move+cancel never leaves a cancelled booking holding
// the new slot.
func (h *Handler) AdminUpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}
	if !id.IsAdmin {
		http.Error(w, "admin only", http.StatusForbidden)
		return
	}
	var req updateBookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.StartTime == nil && req.Status == nil {
		http.Error(w, "start_time or status required", http.StatusBadRequest)
		return
	}
	var status model.Status
	if req.Status != nil {
		st, err := model.ParseStatus(*req.Status)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		status = st
	}

	bookingID := r.PathValue("id")
	var (
		b   model.Booking
		err error
	)
	if req.StartTime != nil {
		start, perr := parseStart(*req.StartTime)
		if perr != nil {
			http.Error(w, perr.Error(), http.StatusBadRequest)
			return
		}
		if b, err = h.svc.Reschedule(r.Context(), id, bookingID, start); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	if status != "" {
		if b, err = h.svc.SetStatus(r.Context(), id, bookingID, status); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	h.writeJSON(w, http.StatusOK, toBooking(b))
}

func (h *Handler) AdminDeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id, r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AdminDeleteCancelled(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}
	n, err := h.svc.DeleteCancelled(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, deletedResponse{Deleted: n})
}

func (h *Handler) AdminUpdateSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req settingsDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	saved, err := h.svc.UpdateSettings(r.Context(), id, req.model())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSettings(saved))
}

func (h *Handler) AdminSaveService(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req serviceDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	saved, err := h.svc.SaveService(r.Context(), id, req.model())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toService(saved))
}

func (h *Handler) AdminSaveProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req providerDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	saved, err := h.svc.SaveProvider(r.Context(), id, req.model())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toProvider(saved))
}

func (h *Handler) AdminDeleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteService(r.Context(), id, r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AdminDeleteProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteProvider(r.Context(), id, r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
