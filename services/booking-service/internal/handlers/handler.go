// Package handlers exposes the booking service over HTTP/JSON.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/booking"
)

type Handler struct {
	svc    *booking.Service
	logger *slog.Logger
}

func NewHandler(svc *booking.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts every API route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/services", h.ListServices)
	mux.HandleFunc("GET /api/v1/providers", h.ListProviders)
	mux.HandleFunc("GET /api/v1/settings", h.GetSettings)
	mux.HandleFunc("POST /api/v1/availability", h.Availability)

	mux.HandleFunc("POST /api/v1/bookings", h.CreateBooking)
	mux.HandleFunc("GET /api/v1/bookings/my", h.MyBookings)
	mux.HandleFunc("PATCH /api/v1/bookings/{id}/cancel", h.CancelBooking)
	mux.HandleFunc("PATCH /api/v1/bookings/{id}/reschedule", h.RescheduleBooking)
	mux.HandleFunc("GET /api/v1/user/notification-preferences", h.GetPreferences)
	mux.HandleFunc("PUT /api/v1/user/notification-preferences", h.UpdatePreferences)

	mux.HandleFunc("GET /api/v1/admin/bookings", h.AdminListBookings)
	mux.HandleFunc("POST /api/v1/admin/bookings/manual", h.AdminCreateManual)
	mux.HandleFunc("PATCH /api/v1/admin/bookings/{id}/confirm", h.AdminConfirm)
	mux.HandleFunc("PATCH /api/v1/admin/bookings/{id}", h.AdminUpdateBooking)
	mux.HandleFunc("DELETE /api/v1/admin/bookings/cancelled", h.AdminDeleteCancelled)
	mux.HandleFunc("DELETE /api/v1/admin/bookings/{id}", h.AdminDeleteBooking)
	mux.HandleFunc("PUT /api/v1/admin/settings", h.AdminUpdateSettings)
	mux.HandleFunc("PUT /api/v1/admin/services", h.AdminSaveService)
	mux.HandleFunc("PUT /api/v1/admin/providers", h.AdminSaveProvider)
	mux.HandleFunc("DELETE /api/v1/admin/services/{id}", h.AdminDeleteService)
	mux.HandleFunc("DELETE /api/v1/admin/providers/{id}", h.AdminDeleteProvider)
}
