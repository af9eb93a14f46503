package contextkeys

type contextKey string

const (
	// DBContextKey holds the request-scoped *gorm.DB.
	DBContextKey = contextKey("db")
	// ClaimsContextKey holds the authenticated *auth.Claims.
	ClaimsContextKey = contextKey("claims")
)
