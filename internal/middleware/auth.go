package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/models/dtos/responses"
)

// SessionReader is the part of the session store the guard needs.
type SessionReader interface {
	UserID() string
}

// RequireSession rejects requests while no user is signed in to the client.
func RequireSession(sessions SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessions.UserID() == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(responses.APIResponse[any]{
					Status:    string(constants.APIStatusError),
					Timestamp: time.Now().UTC(),
					Error:     constants.MsgNotAuthenticated,
					Code:      constants.ErrCodeNotAuthenticated,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
