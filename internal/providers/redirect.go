package providers

import (
	"net/url"
	"strconv"
	"time"

	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/models/entities"
)

// redirectParams merges the query and fragment of an auth redirect. GoTrue
// puts implicit-flow tokens in the fragment and PKCE codes in the query.
func redirectParams(u *url.URL) url.Values {
	params := url.Values{}
	for k, v := range u.Query() {
		params[k] = v
	}
	if u.Fragment != "" {
		if frag, err := url.ParseQuery(u.Fragment); err == nil {
			for k, v := range frag {
				params[k] = v
			}
		}
	}
	return params
}

// redirectError returns the error GoTrue reported in the redirect, if any.
func redirectError(params url.Values) error {
	desc := params.Get("error_description")
	if desc == "" {
		desc = params.Get("error")
	}
	if desc == "" {
		return nil
	}
	return &ProviderError{
		Code:    constants.ErrCodeRedirectInvalid,
		Message: desc,
		Details: params.Get("error_code"),
	}
}

func redirectEvent(params url.Values) constants.SessionEvent {
	if params.Get("type") == "recovery" {
		return constants.SessionPasswordRecovery
	}
	return constants.SessionSignedIn
}

// sessionFromFragment builds a session from implicit-flow fragment tokens.
func sessionFromFragment(params url.Values, now time.Time) (*entities.Session, error) {
	access := params.Get("access_token")
	claims, err := ReadClaims(access)
	if err != nil {
		return nil, err
	}

	session := &entities.Session{
		AccessToken:  access,
		RefreshToken: params.Get("refresh_token"),
		TokenType:    params.Get("token_type"),
		UserID:       claims.Subject,
		Email:        claims.Email,
		ExpiresAt:    claims.ExpiresAt,
	}
	if at, err := strconv.ParseInt(params.Get("expires_at"), 10, 64); err == nil && at > 0 {
		session.ExpiresAt = time.Unix(at, 0).UTC()
	} else if in, err := strconv.ParseInt(params.Get("expires_in"), 10, 64); err == nil && in > 0 {
		session.ExpiresAt = now.Add(time.Duration(in) * time.Second).UTC()
	}
	return session, nil
}
