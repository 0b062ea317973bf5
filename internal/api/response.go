package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gestor-pelada/gestor/internal/auth"
	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/dashboard"
	"gestor-pelada/gestor/internal/logging"
	"gestor-pelada/gestor/internal/models/dtos/responses"
	"gestor-pelada/gestor/internal/providers"
	"gestor-pelada/gestor/internal/selection"
	"gestor-pelada/gestor/internal/services"
)

func respondWithSuccess[T any](w http.ResponseWriter, statusCode int, notice string, data *T) {
	resp := responses.APIResponse[T]{
		Status:    string(constants.APIStatusSuccess),
		Timestamp: time.Now().UTC(),
		Notice:    notice,
		Data:      data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error("Failed to encode response", "error", err.Error())
	}
}

// respondWithError writes err as the user-facing notice together with the
// remote error code when there is one.
func respondWithError(w http.ResponseWriter, err error) {
	resp := responses.APIResponse[any]{
		Status:    string(constants.APIStatusError),
		Timestamp: time.Now().UTC(),
		Error:     services.Notice(err),
	}
	var pe *providers.ProviderError
	if errors.As(err, &pe) {
		resp.Code = pe.Code
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(err))
	_ = json.NewEncoder(w).Encode(resp)
}

func respondBadRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(responses.APIResponse[any]{
		Status:    string(constants.APIStatusError),
		Timestamp: time.Now().UTC(),
		Error:     message,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrBusy), errors.Is(err, auth.ErrBusy), errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, dashboard.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, services.ErrNotAuthenticated), errors.Is(err, auth.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrAdminOnly):
		return http.StatusForbidden
	case errors.Is(err, services.ErrGroupNotFound), errors.Is(err, selection.ErrUnknownGroup), errors.Is(err, auth.ErrNoRecovery):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrResendCooldown):
		return http.StatusTooManyRequests
	}

	var pe *providers.ProviderError
	if !errors.As(err, &pe) {
		return http.StatusBadRequest
	}
	switch pe.Code {
	case constants.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case constants.ErrCodeNotAuthenticated, constants.ErrCodeAuthenticationFailed, constants.ErrCodeInvalidAPIKey:
		return http.StatusUnauthorized
	case constants.ErrCodePermissionDenied:
		return http.StatusForbidden
	case constants.ErrCodeNotFound:
		return http.StatusNotFound
	case constants.ErrCodeNetworkError:
		return http.StatusBadGateway
	}
	return http.StatusUnprocessableEntity
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	return json.NewDecoder(r.Body).Decode(dst)
}
