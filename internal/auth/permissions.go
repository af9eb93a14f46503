package auth

import (
	"errors"

	"campusreq_backend/internal/models"
)

var ErrInvalidRole = errors.New("invalid role")

func ValidateRole(role string) error {
	switch models.UserRole(role) {
	case models.UserRoleUser, models.UserRoleStaff, models.UserRoleAdmin:
		return nil
	default:
		return ErrInvalidRole
	}
}

// CanReview reports whether the role may review at all; department
// ownership is checked by the request service.
func CanReview(role models.UserRole) bool {
	return role == models.UserRoleStaff || role == models.UserRoleAdmin
}
