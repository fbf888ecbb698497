package model

import "time"

type Service struct {
	ID              string
	Name            string
	DurationMinutes int
	Price           float64
	Description     string
}

func (s Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

type Provider struct {
	ID          string
	Name        string
	Specialties []string
}
