package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrInvalidStatusTransition is returned when a deal status change
	// is not allowed from the current status
	ErrInvalidStatusTransition = errors.New("invalid deal status transition")

	// ErrManualFeesLocked is returned when automatic fee resolution is
	// requested while the deal carries a manual fees override
	ErrManualFeesLocked = errors.New("manual fees override is active")

	// ErrInsightsDisabled is returned when analysis is requested but
	// the analysis service is disabled by configuration
	ErrInsightsDisabled = errors.New("insight analysis is disabled")
)
