package apperrors

import (
	"net/http"
)

// Factories return a fresh *AppError each call so callers may attach details safely.

// --- Requests ---

func ErrRequestNotFound(err error) *AppError {
	return Wrap(err, CodeRequestNotFound, "request", "Request not found", http.StatusNotFound)
}

// ErrInvalidTransition is returned when the target status is not reachable
// from the current one for the request type. The row is left unchanged.
func ErrInvalidTransition(err error, from, to string) *AppError {
	return Wrap(err, CodeInvalidTransition, "request",
		"Cannot move request from "+from+" to "+to, http.StatusConflict).
		WithDetails(map[string]string{"from": from, "to": to})
}

func ErrTerminalStatus(err error, status string) *AppError {
	return Wrap(err, CodeTerminalStatus, "request",
		"Request is already "+status+" and can no longer change", http.StatusConflict)
}

// ErrStaleStatus means another writer changed the status between read and update.
func ErrStaleStatus(err error) *AppError {
	return Wrap(err, CodeStaleStatus, "request",
		"Request was modified concurrently, reload and try again", http.StatusConflict)
}

func ErrTransitionPayloadMissing(err error, message string) *AppError {
	return Wrap(err, CodeTransitionPayloadMissing, "request", message, http.StatusUnprocessableEntity)
}

func ErrForbiddenTransition(err error) *AppError {
	return Wrap(err, CodeForbiddenTransition, "request",
		"You are not allowed to perform this status change", http.StatusForbidden)
}

func ErrInvalidSpecialization(message string) *AppError {
	return New(CodeInvalidSpecialization, "request", message, http.StatusUnprocessableEntity)
}

func ErrInsufficientStock(item string) *AppError {
	return New(CodeInsufficientStock, "inventory", "Not enough stock for "+item, http.StatusConflict)
}

func ErrResourceUnavailable(message string) *AppError {
	return New(CodeResourceUnavailable, "inventory", message, http.StatusConflict)
}

// --- Notifications ---

func ErrNotificationNotFound(err error) *AppError {
	return Wrap(err, CodeNotificationNotFound, "notification", "Notification not found", http.StatusNotFound)
}

// --- Auth ---

func ErrInsufficientPermissions() *AppError {
	return New(CodeForbidden, "auth", "Insufficient permissions", http.StatusForbidden)
}
