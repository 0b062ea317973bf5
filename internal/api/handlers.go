package api

import (
	"net/http"
	"strings"

	"gestor-pelada/gestor/internal/auth"
	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/logging"
	"gestor-pelada/gestor/internal/models/dtos"
	"gestor-pelada/gestor/internal/models/dtos/responses"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) authState() *responses.AuthStateResponse {
	snap := h.app.Auth.Snapshot()
	resp := &responses.AuthStateResponse{
		Phase:           string(snap.Phase),
		Mode:            string(snap.Mode),
		Email:           snap.Email,
		ResendRemaining: snap.ResendRemaining,
		Busy:            snap.Busy,
		Notice:          snap.Notice,
	}
	if profile, ok := h.app.Sessions.Profile(); ok {
		resp.Profile = &profile
	}
	return resp
}

// respondAuth answers with the auth state after an auth operation. A failed
// operation still returns the state so the form can show its notice.
func (h *Handlers) respondAuth(w http.ResponseWriter, err error) {
	if err != nil {
		respondWithError(w, err)
		return
	}
	state := h.authState()
	respondWithSuccess(w, http.StatusOK, state.Notice, state)
}

// GetAuthState handles GET /api/v1/auth
func (h *Handlers) GetAuthState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.respondAuth(w, nil)
	}
}

// SetMode handles POST /api/v1/auth/mode
func (h *Handlers) SetMode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.AuthModeRequest
		if err := decodeJSON(r, &req); err != nil {
			respondBadRequest(w, "Invalid request body")
			return
		}
		h.respondAuth(w, h.app.Auth.SetMode(auth.Mode(req.Mode)))
	}
}

// RequestMagicLink handles POST /api/v1/auth/magic-link
func (h *Handlers) RequestMagicLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.MagicLinkRequest
		if err := decodeJSON(r, &req); err != nil {
			respondBadRequest(w, "Invalid request body")
			return
		}
		h.respondAuth(w, h.app.Auth.RequestMagicLink(r.Context(), req.Email, req.Name))
	}
}

// SignIn handles POST /api/v1/auth/sign-in
func (h *Handlers) SignIn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.PasswordSignInRequest
		if err := decodeJSON(r, &req); err != nil {
			respondBadRequest(w, "Invalid request body")
			return
		}
		h.respondAuth(w, h.app.Auth.SignInWithPassword(r.Context(), req.Email, req.Password))
	}
}

// SignUp handles POST /api/v1/auth/sign-up
func (h *Handlers) SignUp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.PasswordSignUpRequest
		if err := decodeJSON(r, &req); err != nil {
			respondBadRequest(w, "Invalid request body")
			return
		}
		h.respondAuth(w, h.app.Auth.SignUpWithPassword(r.Context(), req.Email, req.Password, req.Name))
	}
}

// OAuthURL handles GET /api/v1/auth/oauth/{provider}
func (h *Handlers) OAuthURL() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authURL, err := h.app.Auth.SignInWithOAuth(r.Context(), chi.URLParam(r, "provider"))
		if err != nil {
			respondWithError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, "", &responses.AuthorizeURLResponse{URL: authURL})
	}
}

// RequestPasswordReset handles POST /api/v1/auth/password-reset
func (h *Handlers) RequestPasswordReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.PasswordResetRequest
		if err := decodeJSON(r, &req); err != nil {
			respondBadRequest(w, "Invalid request body")
			return
		}
		h.respondAuth(w, h.app.Auth.RequestPasswordReset(r.Context(), req.Email))
	}
}

// UpdatePassword handles POST /api/v1/auth/password
func (h *Handlers) UpdatePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.UpdatePasswordRequest
		if err := decodeJSON(r, &req); err != nil {
			respondBadRequest(w, "Invalid request body")
			return
		}
		h.respondAuth(w, h.app.Auth.UpdatePassword(r.Context(), req.Password, req.Confirm))
	}
}

// CancelRecovery handles POST /api/v1/auth/recovery/cancel
func (h *Handlers) CancelRecovery() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.respondAuth(w, h.app.Auth.CancelRecovery())
	}
}

// SignOut handles POST /api/v1/auth/sign-out
func (h *Handlers) SignOut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.respondAuth(w, h.app.Auth.SignOut(r.Context()))
	}
}

// CompleteRedirect handles POST /api/v1/auth/redirect. The front end posts
// the callback URL it landed on, fragment included.
func (h *Handlers) CompleteRedirect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.RedirectCallbackRequest
		if err := decodeJSON(r, &req); err != nil || req.URL == "" {
			respondBadRequest(w, "Invalid request body")
			return
		}
		h.respondAuth(w, h.app.Auth.HandleRedirect(r.Context(), req.URL))
	}
}

// AuthCallback handles GET /auth/callback for links that carry their
// parameters in the query string (PKCE code, token_hash) and then sends the
// browser back to the app.
func (h *Handlers) AuthCallback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawURL := strings.TrimSuffix(h.baseURL, "/") + r.URL.RequestURI()
		if err := h.app.Auth.HandleRedirect(r.Context(), rawURL); err != nil {
			logging.Warn("Auth callback failed", "error", err.Error())
			respondWithError(w, err)
			return
		}
		target := strings.TrimSuffix(h.baseURL, "/") + "/"
		if h.app.Auth.Snapshot().Phase == auth.PhasePasswordRecovery {
			target += "#" + constants.RecoveryMarker
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}
