package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gestor-pelada/gestor/internal/constants"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims are the parts of a Supabase access token the client relies on.
type AccessClaims struct {
	Subject   string                 `json:"sub"`
	Email     string                 `json:"email"`
	Role      string                 `json:"role"`
	ExpiresAt time.Time              `json:"-"`
	Raw       map[string]interface{} `json:"-"`
}

// TokenVerifier checks an access token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*AccessClaims, error)
}

type supabaseClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (c supabaseClaims) toAccessClaims() *AccessClaims {
	out := &AccessClaims{Subject: c.Subject, Email: c.Email, Role: c.Role}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	out.Raw = map[string]interface{}{
		"sub":   c.Subject,
		"email": c.Email,
		"role":  c.Role,
	}
	if c.ExpiresAt != nil {
		out.Raw["exp"] = c.ExpiresAt.Unix()
	}
	return out
}

// HMACTokenVerifier verifies HS256 tokens signed with the project JWT secret.
type HMACTokenVerifier struct {
	secret []byte
}

func NewHMACTokenVerifier(secret []byte) *HMACTokenVerifier {
	return &HMACTokenVerifier{secret: secret}
}

func (v *HMACTokenVerifier) Verify(_ context.Context, rawToken string) (*AccessClaims, error) {
	if rawToken == "" {
		return nil, newProviderError(constants.ErrCodeNotAuthenticated, "", nil)
	}

	var claims supabaseClaims
	_, err := jwt.ParseWithClaims(rawToken, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, newProviderError(constants.ErrCodeAuthenticationFailed, "", err)
	}
	if claims.Subject == "" {
		return nil, newProviderError(constants.ErrCodeAuthenticationFailed, "token has no subject", nil)
	}

	return claims.toAccessClaims(), nil
}

// IssueHS256 signs claims for a user. Used by the in-memory backend.
func IssueHS256(secret []byte, userID, email string, ttl time.Duration, now time.Time) (string, error) {
	claims := supabaseClaims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{"authenticated"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// JWKSTokenVerifier verifies asymmetric tokens against the project's JWKS endpoint.
type JWKSTokenVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewJWKSTokenVerifier builds a verifier for <supabaseURL>/auth/v1.
func NewJWKSTokenVerifier(ctx context.Context, supabaseURL string) *JWKSTokenVerifier {
	issuer := supabaseURL + "/auth/v1"
	keySet := oidc.NewRemoteKeySet(ctx, issuer+"/.well-known/jwks.json")
	return NewJWKSTokenVerifierWithKeySet(issuer, keySet)
}

func NewJWKSTokenVerifierWithKeySet(issuer string, keySet oidc.KeySet) *JWKSTokenVerifier {
	return &JWKSTokenVerifier{
		verifier: oidc.NewVerifier(issuer, keySet, &oidc.Config{
			ClientID:             "authenticated",
			SupportedSigningAlgs: []string{oidc.RS256, oidc.ES256},
		}),
	}
}

func (v *JWKSTokenVerifier) Verify(ctx context.Context, rawToken string) (*AccessClaims, error) {
	if rawToken == "" {
		return nil, newProviderError(constants.ErrCodeNotAuthenticated, "", nil)
	}

	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, newProviderError(constants.ErrCodeAuthenticationFailed, "", err)
	}

	var extra struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := token.Claims(&extra); err != nil {
		return nil, newProviderError(constants.ErrCodeInvalidDataFormat, "", err)
	}

	claims := &AccessClaims{
		Subject:   token.Subject,
		Email:     extra.Email,
		Role:      extra.Role,
		ExpiresAt: token.Expiry,
	}
	claims.Raw = map[string]interface{}{
		"sub":   token.Subject,
		"email": extra.Email,
		"role":  extra.Role,
		"exp":   token.Expiry.Unix(),
	}
	return claims, nil
}

// ReadClaims decodes a token without checking its signature. Only for tokens
// that were just received from the auth server over TLS.
func ReadClaims(rawToken string) (*AccessClaims, error) {
	var claims supabaseClaims
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, &claims); err != nil {
		return nil, newProviderError(constants.ErrCodeInvalidDataFormat, "malformed access token", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("access token has no subject")
	}
	return claims.toAccessClaims(), nil
}
