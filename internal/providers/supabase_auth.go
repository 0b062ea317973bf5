package providers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/models/dtos"
	"gestor-pelada/gestor/internal/models/entities"

	"golang.org/x/oauth2"
)

func (p *SupabaseProvider) SignUp(ctx context.Context, email, password, displayName, redirectTo string) (*entities.Session, error) {
	req := dtos.SignUpRequest{Email: email, Password: password, Data: userData(displayName)}

	var resp dtos.SignUpResponse
	if _, err := p.do(ctx, "auth_signup", http.MethodPost, "/auth/v1/signup", redirectQuery(redirectTo), req, &resp); err != nil {
		return nil, err
	}

	if resp.AccessToken == "" {
		// Email confirmation pending; GoTrue returned the bare user.
		return nil, nil
	}
	return p.sessionFromToken(resp.TokenResponse), nil
}

func (p *SupabaseProvider) SignInWithPassword(ctx context.Context, email, password string) (*entities.Session, error) {
	query := url.Values{"grant_type": {"password"}}
	var resp dtos.TokenResponse
	if _, err := p.do(ctx, "auth_password", http.MethodPost, "/auth/v1/token", query, dtos.PasswordGrantRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return p.sessionFromToken(resp), nil
}

func (p *SupabaseProvider) SignInWithOTP(ctx context.Context, email, displayName, redirectTo string) error {
	req := dtos.OTPRequest{Email: email, CreateUser: true, Data: userData(displayName)}
	_, err := p.do(ctx, "auth_otp", http.MethodPost, "/auth/v1/otp", redirectQuery(redirectTo), req, nil)
	return err
}

// AuthorizeURL starts an OAuth flow with PKCE. The verifier is kept until the
// redirect comes back with the code.
func (p *SupabaseProvider) AuthorizeURL(_ context.Context, provider, redirectTo string) (string, error) {
	if provider == "" {
		return "", newProviderError(constants.ErrCodeInvalidDataFormat, "OAuth provider is required", nil)
	}

	verifier := oauth2.GenerateVerifier()
	p.pkceMu.Lock()
	p.pkceVerifier = verifier
	p.pkceMu.Unlock()

	query := url.Values{
		"provider":              {provider},
		"code_challenge":        {oauth2.S256ChallengeFromVerifier(verifier)},
		"code_challenge_method": {"s256"},
	}
	if redirectTo != "" {
		query.Set("redirect_to", redirectTo)
	}
	return p.BaseURL + "/auth/v1/authorize?" + query.Encode(), nil
}

func (p *SupabaseProvider) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	_, err := p.do(ctx, "auth_recover", http.MethodPost, "/auth/v1/recover", redirectQuery(redirectTo), dtos.RecoverRequest{Email: email}, nil)
	return err
}

func (p *SupabaseProvider) UpdatePassword(ctx context.Context, accessToken, password string) error {
	if accessToken == "" {
		return newProviderError(constants.ErrCodeNotAuthenticated, "", nil)
	}
	var user dtos.AuthUser
	_, err := p.do(ctx, "auth_update_user", http.MethodPut, "/auth/v1/user", nil, dtos.UpdateUserRequest{Password: password}, &user, withBearer(accessToken))
	return err
}

func (p *SupabaseProvider) ExchangeRedirect(ctx context.Context, redirect *url.URL) (*entities.Session, constants.SessionEvent, error) {
	params := redirectParams(redirect)
	if err := redirectError(params); err != nil {
		return nil, "", err
	}
	event := redirectEvent(params)

	switch {
	case params.Get("access_token") != "":
		session, err := sessionFromFragment(params, p.now())
		if err != nil {
			return nil, "", err
		}
		// Confirm the token with the auth server before trusting its claims.
		var user dtos.AuthUser
		if _, err := p.do(ctx, "auth_get_user", http.MethodGet, "/auth/v1/user", nil, nil, &user, withBearer(session.AccessToken)); err != nil {
			return nil, "", err
		}
		session.UserID = user.ID
		session.Email = user.Email
		return session, event, nil

	case params.Get("token_hash") != "":
		req := dtos.VerifyRequest{Type: params.Get("type"), TokenHash: params.Get("token_hash")}
		if req.Type == "" {
			req.Type = "magiclink"
		}
		var resp dtos.TokenResponse
		if _, err := p.do(ctx, "auth_verify", http.MethodPost, "/auth/v1/verify", nil, req, &resp); err != nil {
			return nil, "", err
		}
		return p.sessionFromToken(resp), event, nil

	case params.Get("code") != "":
		p.pkceMu.Lock()
		verifier := p.pkceVerifier
		p.pkceVerifier = ""
		p.pkceMu.Unlock()
		if verifier == "" {
			return nil, "", newProviderError(constants.ErrCodeRedirectInvalid, "no OAuth flow in progress", nil)
		}

		body := map[string]string{"auth_code": params.Get("code"), "code_verifier": verifier}
		var resp dtos.TokenResponse
		if _, err := p.do(ctx, "auth_pkce", http.MethodPost, "/auth/v1/token", url.Values{"grant_type": {"pkce"}}, body, &resp); err != nil {
			return nil, "", err
		}
		return p.sessionFromToken(resp), event, nil
	}

	return nil, "", newProviderError(constants.ErrCodeRedirectInvalid, "", nil)
}

func (p *SupabaseProvider) RefreshSession(ctx context.Context, refreshToken string) (*entities.Session, error) {
	if refreshToken == "" {
		return nil, newProviderError(constants.ErrCodeNotAuthenticated, "no refresh token", nil)
	}
	var resp dtos.TokenResponse
	if _, err := p.do(ctx, "auth_refresh", http.MethodPost, "/auth/v1/token", url.Values{"grant_type": {"refresh_token"}}, dtos.RefreshGrantRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return nil, err
	}
	return p.sessionFromToken(resp), nil
}

func (p *SupabaseProvider) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	_, err := p.do(ctx, "auth_logout", http.MethodPost, "/auth/v1/logout", nil, nil, nil, withBearer(accessToken))
	return err
}

func (p *SupabaseProvider) sessionFromToken(resp dtos.TokenResponse) *entities.Session {
	session := &entities.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		UserID:       resp.User.ID,
		Email:        resp.User.Email,
	}
	switch {
	case resp.ExpiresAt > 0:
		session.ExpiresAt = time.Unix(resp.ExpiresAt, 0).UTC()
	case resp.ExpiresIn > 0:
		session.ExpiresAt = p.now().Add(time.Duration(resp.ExpiresIn) * time.Second).UTC()
	}
	if session.UserID == "" {
		if claims, err := ReadClaims(resp.AccessToken); err == nil {
			session.UserID = claims.Subject
			session.Email = claims.Email
		}
	}
	return session
}

func redirectQuery(redirectTo string) url.Values {
	if redirectTo == "" {
		return nil
	}
	return url.Values{"redirect_to": {redirectTo}}
}

func userData(displayName string) map[string]interface{} {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return nil
	}
	return map[string]interface{}{"name": name}
}
