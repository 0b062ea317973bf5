package constants

// Remote backend error codes
const (
	ErrCodeInvalidAPIKey        = "INVALID_API_KEY"
	ErrCodeRateLimited          = "RATE_LIMITED"
	ErrCodeNetworkError         = "NETWORK_ERROR"
	ErrCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	ErrCodeNotAuthenticated     = "NOT_AUTHENTICATED"
	ErrCodeNotFound             = "RESOURCE_NOT_FOUND"
	ErrCodeInvalidDataFormat    = "INVALID_DATA_FORMAT"
	ErrCodePermissionDenied     = "PERMISSION_DENIED"
	ErrCodeRedirectInvalid      = "REDIRECT_INVALID"
	ErrCodeRemoteRejected       = "REMOTE_REJECTED"
)

// Postgres SQLSTATE codes surfaced by PostgREST and lib/pq
const (
	PgUniqueViolation     = "23505"
	PgForeignKeyViolation = "23503"
	PgInsufficientPriv    = "42501"
	PgRaiseException      = "P0001"
)

var DataProviderErrorMessages = map[string]string{
	ErrCodeInvalidAPIKey:        "The Supabase anon key is invalid",
	ErrCodeRateLimited:          "Rate limit exceeded. Please try again later",
	ErrCodeNetworkError:         "Unable to reach the backend. Please check your internet connection",
	ErrCodeAuthenticationFailed: "Authentication with the backend failed",
	ErrCodeNotAuthenticated:     "No active session",
	ErrCodeNotFound:             "The requested record was not found",
	ErrCodeInvalidDataFormat:    "The data format is invalid",
	ErrCodePermissionDenied:     "You don't have permission to do this",
	ErrCodeRedirectInvalid:      "The sign-in link is invalid or has expired",
	ErrCodeRemoteRejected:       "The backend rejected the request",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := DataProviderErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
