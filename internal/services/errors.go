package services

import "errors"

// Sentinel errors handlers map to distinct HTTP responses. Everything else
// coming out of a service is treated as an internal failure.
var (
	ErrConflict          = errors.New("resource is already booked for the requested time")
	ErrInvalidTransition = errors.New("request cannot move to the requested status")
	ErrNoChanges         = errors.New("no changes made")
	ErrForbidden         = errors.New("not allowed to perform this action")
)
