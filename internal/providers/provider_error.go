package providers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gestor-pelada/gestor/internal/constants"
)

// ProviderError is any failure reported by, or while talking to, the backend.
type ProviderError struct {
	Code     string
	SQLState string
	Status   int
	Message  string
	Details  string
	Hint     string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func newProviderError(code, message string, err error) *ProviderError {
	if message == "" {
		message = constants.GetErrorMessage(code)
	}
	return &ProviderError{Code: code, Message: message, Err: err}
}

// codeForStatus maps an HTTP status to a provider error code.
func codeForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return constants.ErrCodeAuthenticationFailed
	case status == http.StatusForbidden:
		return constants.ErrCodePermissionDenied
	case status == http.StatusNotFound:
		return constants.ErrCodeNotFound
	case status == http.StatusTooManyRequests:
		return constants.ErrCodeRateLimited
	case status >= 400 && status < 500:
		return constants.ErrCodeRemoteRejected
	default:
		return constants.ErrCodeNetworkError
	}
}

// UserMessage is the single notice string shown for err. Remote messages are
// passed through verbatim.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var pe *ProviderError
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	return err.Error()
}

// IsCode reports whether err is a ProviderError with the given code.
func IsCode(err error, code string) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == code
}

type ConstraintKind int

const (
	ConstraintNone ConstraintKind = iota
	ConstraintDuplicate
	ConstraintMissingReference
)

// ClassifyConstraint recognises unique and foreign-key violations, first by
// SQLSTATE and then by message text for backends that only send prose.
func ClassifyConstraint(err error) ConstraintKind {
	if err == nil {
		return ConstraintNone
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		switch pe.SQLState {
		case constants.PgUniqueViolation:
			return ConstraintDuplicate
		case constants.PgForeignKeyViolation:
			return ConstraintMissingReference
		}
	}

	message := strings.ToLower(UserMessage(err))
	switch {
	case strings.Contains(message, "duplicate") || strings.Contains(message, "unique"):
		return ConstraintDuplicate
	case strings.Contains(message, "foreign key") || strings.Contains(message, "pelada"):
		return ConstraintMissingReference
	}
	return ConstraintNone
}
