package handlers

import (
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

type bookingResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name,omitempty"`
	UserPhone    string    `json:"user_phone,omitempty"`
	UserEmail    string    `json:"user_email,omitempty"`
	ProviderID   string    `json:"provider_id"`
	ProviderName string    `json:"provider_name"`
	ServiceID    string    `json:"service_id"`
	ServiceName  string    `json:"service_name"`
	StartTime    time.Time `json:"start_time"`
	Status       string    `json:"status"`
	Manual       bool      `json:"manual"`
	CreatedAt    time.Time `json:"created_at"`
}

func toBooking(b model.Booking) bookingResponse {
	return bookingResponse{
		ID:           b.ID,
		UserID:       b.UserID,
		UserName:     b.UserName,
		UserPhone:    b.UserPhone,
		UserEmail:    b.UserEmail,
		ProviderID:   b.ProviderID,
		ProviderName: b.ProviderName,
		ServiceID:    b.ServiceID,
		ServiceName:  b.ServiceName,
		StartTime:    b.StartTime.UTC(),
		Status:       string(b.Status),
		Manual:       b.Manual,
		CreatedAt:    b.CreatedAt.UTC(),
	}
}

func toBookings(in []model.Booking) []bookingResponse {
	out := make([]bookingResponse, len(in))
	for i, b := range in {
		out[i] = toBooking(b)
	}
	return out
}

type serviceDTO struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	Description     string  `json:"description,omitempty"`
}

func (d serviceDTO) model() model.Service {
	return model.Service{ID: d.ID, Name: d.Name, DurationMinutes: d.DurationMinutes, Price: d.Price, Description: d.Description}
}

func toService(s model.Service) serviceDTO {
	return serviceDTO{ID: s.ID, Name: s.Name, DurationMinutes: s.DurationMinutes, Price: s.Price, Description: s.Description}
}

type providerDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Specialties []string `json:"specialties"`
}

func (d providerDTO) model() model.Provider {
	return model.Provider{ID: d.ID, Name: d.Name, Specialties: d.Specialties}
}

func toProvider(p model.Provider) providerDTO {
	specialties := p.Specialties
	if specialties == nil {
		specialties = []string{}
	}
	return providerDTO{ID: p.ID, Name: p.Name, Specialties: specialties}
}

// settingsDTO keeps nil and empty time_slots apart: omitted means defaults,
// [] means derive marks from opening/closing.
type settingsDTO struct {
	OpeningTime  string   `json:"opening_time"`
	ClosingTime  string   `json:"closing_time"`
	WorkingDays  []int    `json:"working_days"`
	TimeSlots    []string `json:"time_slots"`
	AdminPhone   string   `json:"admin_phone"`
	ReminderLead string   `json:"reminder_lead"`
}

func (d settingsDTO) model() model.Settings {
	return model.Settings{
		OpeningTime:  d.OpeningTime,
		ClosingTime:  d.ClosingTime,
		WorkingDays:  d.WorkingDays,
		TimeSlots:    d.TimeSlots,
		AdminPhone:   d.AdminPhone,
		ReminderLead: model.ReminderLead(d.ReminderLead),
	}
}

func toSettings(s model.Settings) settingsDTO {
	slots := s.TimeSlots
	if slots == nil {
		slots = []string{}
	}
	return settingsDTO{
		OpeningTime:  s.OpeningTime,
		ClosingTime:  s.ClosingTime,
		WorkingDays:  s.WorkingDays,
		TimeSlots:    slots,
		AdminPhone:   s.AdminPhone,
		ReminderLead: string(s.ReminderLead),
	}
}
