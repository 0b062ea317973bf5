package dtos

import (
	"bytes"
	"encoding/json"
)

// GoTrue (Supabase Auth) wire types.

type AuthUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

type TokenResponse struct {
	AccessToken  string   `json:"access_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	ExpiresAt    int64    `json:"expires_at"`
	RefreshToken string   `json:"refresh_token"`
	User         AuthUser `json:"user"`
}

// SignUpResponse is either a full token response or, when email confirmation
// is enabled, the bare user object.
type SignUpResponse struct {
	TokenResponse
	ID    string `json:"id"`
	Email string `json:"email"`
}

type PasswordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshGrantRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignUpRequest struct {
	Email    string                 `json:"email"`
	Password string                 `json:"password"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

type OTPRequest struct {
	Email      string                 `json:"email"`
	CreateUser bool                   `json:"create_user"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

type RecoverRequest struct {
	Email string `json:"email"`
}

type VerifyRequest struct {
	Type      string `json:"type"`
	TokenHash string `json:"token_hash"`
}

type UpdateUserRequest struct {
	Password string `json:"password,omitempty"`
}

// RemoteError covers both GoTrue ({error, error_description} or {code, msg})
// and PostgREST ({code, message, details, hint}) error bodies.
type RemoteError struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Message          string          `json:"message"`
	Msg              string          `json:"msg"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Details          *string         `json:"details"`
	Hint             *string         `json:"hint"`
}

// SQLState returns the string code for PostgREST errors, empty for numeric GoTrue codes.
func (e RemoteError) SQLState() string {
	raw := bytes.TrimSpace(e.Code)
	if len(raw) == 0 || raw[0] != '"' {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Text picks the most descriptive message present.
func (e RemoteError) Text() string {
	for _, s := range []string{e.Message, e.Msg, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}
