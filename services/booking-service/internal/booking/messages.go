package booking

import (
	"fmt"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

func (s *Service) when(b model.Booking) string {
	return b.StartTime.In(s.loc).Format("Mon Jan 2 at 15:04")
}

func (s *Service) reminderMessage(b model.Booking) string {
	return fmt.Sprintf("Reminder: your %s with %s is %s.", b.ServiceName, b.ProviderName, s.when(b))
}

func (s *Service) createdMessage(b model.Booking) string {
	if b.Status == model.StatusConfirmed {
		return fmt.Sprintf("Your %s with %s is confirmed for %s.", b.ServiceName, b.ProviderName, s.when(b))
	}
	return fmt.Sprintf("We received your request for %s with %s on %s. We will confirm shortly.", b.ServiceName, b.ProviderName, s.when(b))
}

func (s *Service) adminNoticeMessage(b model.Booking) string {
	return fmt.Sprintf("New booking: %s (%s) for %s with %s on %s.", b.UserName, b.UserPhone, b.ServiceName, b.ProviderName, s.when(b))
}

func (s *Service) confirmedMessage(b model.Booking) string {
	return fmt.Sprintf("Confirmed: %s with %s on %s.", b.ServiceName, b.ProviderName, s.when(b))
}

func (s *Service) cancelledMessage(b model.Booking) string {
	return fmt.Sprintf("Your %s with %s on %s was cancelled.", b.ServiceName, b.ProviderName, s.when(b))
}

func (s *Service) rescheduledMessage(b model.Booking) string {
	return fmt.Sprintf("Your %s with %s moved to %s.", b.ServiceName, b.ProviderName, s.when(b))
}
