package model

import "errors"

// Business outcomes. Callers wrap these with detail and match with errors.Is;
// anything else coming out of the core is an infrastructure failure.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
)
