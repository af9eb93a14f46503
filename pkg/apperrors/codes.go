package apperrors

type ErrorCode string

// Cross-cutting codes
const (
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"
	CodeServiceUnavailable   ErrorCode = "SERVICE_UNAVAILABLE"

	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"

	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeInvalidToken ErrorCode = "INVALID_TOKEN"
	CodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
)

// Request lifecycle codes
const (
	CodeRequestNotFound          ErrorCode = "REQUEST_NOT_FOUND"
	CodeInvalidTransition        ErrorCode = "INVALID_TRANSITION"
	CodeTerminalStatus           ErrorCode = "TERMINAL_STATUS"
	CodeStaleStatus              ErrorCode = "STALE_STATUS"
	CodeTransitionPayloadMissing ErrorCode = "TRANSITION_PAYLOAD_MISSING"
	CodeForbiddenTransition      ErrorCode = "FORBIDDEN_TRANSITION"
	CodeInvalidSpecialization    ErrorCode = "INVALID_SPECIALIZATION"
	CodeInsufficientStock        ErrorCode = "INSUFFICIENT_STOCK"
	CodeResourceUnavailable      ErrorCode = "RESOURCE_UNAVAILABLE"
	CodeNotificationNotFound     ErrorCode = "NOTIFICATION_NOT_FOUND"
)
