package validator

import (
	"fmt"

	"campusreq_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// tags are fixed at compile time; failing here is a programming error
			panic(fmt.Sprintf("register validation tag %q: %v", tag, err))
		}
	}

	mustRegister("request_type", validateRequestType)
	mustRegister("request_status", validateRequestStatus)
	mustRegister("user_role", validateUserRole)
}

func validateRequestType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // 'required' handles empties
	}
	return models.RequestType(value).Valid()
}

func validateRequestStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.RequestStatus(value).Valid()
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch models.UserRole(fl.Field().String()) {
	case "", models.UserRoleUser, models.UserRoleStaff, models.UserRoleAdmin:
		return true
	}
	return false
}

func requestTypeValues() []string {
	out := make([]string, 0, len(models.RequestTypes))
	for _, t := range models.RequestTypes {
		out = append(out, string(t))
	}
	return out
}

func requestStatusValues() []string {
	out := make([]string, 0, len(models.RequestStatuses))
	for _, s := range models.RequestStatuses {
		out = append(out, string(s))
	}
	return out
}
