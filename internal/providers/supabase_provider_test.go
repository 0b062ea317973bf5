package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/models/dtos"
)

func newTestSupabase(t *testing.T, handler http.HandlerFunc, token string) *SupabaseProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewSupabaseProvider(server.URL, "anon-key", func() string { return token }, 1000, 100, nil)
}

func TestSupabaseProvider_ListQueue_SendsHeadersAndDecodes(t *testing.T) {
	provider := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		if r.URL.Path != "/rest/v1/confirmacoes" {
			t.Errorf("Expected path /rest/v1/confirmacoes, got %s", r.URL.Path)
		}
		if got := r.Header.Get("apikey"); got != "anon-key" {
			t.Errorf("Expected apikey header, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer user-token" {
			t.Errorf("Expected session bearer, got %q", got)
		}
		if got := r.URL.Query().Get("evento_id"); got != "eq.ev-1" {
			t.Errorf("Expected evento_id filter, got %q", got)
		}
		if got := r.URL.Query().Get("order"); got != "status.asc,ordem_fila.asc.nullslast" {
			t.Errorf("Unexpected order %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"c1","evento_id":"ev-1","user_id":"u1","status":"confirmado","ordem_fila":null,"users":{"name":"Ana","email":"ana@x.com"}},
			{"id":"c2","evento_id":"ev-1","user_id":"u2","status":"espera","ordem_fila":1,"users":null}
		]`))
	}, "user-token")

	entries, err := provider.ListQueue(context.Background(), "ev-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "Ana" || entries[0].Status != constants.ConfirmationConfirmed {
		t.Errorf("Unexpected first entry %+v", entries[0])
	}
	if entries[1].QueuePosition == nil || *entries[1].QueuePosition != 1 {
		t.Errorf("Expected queue position 1, got %v", entries[1].QueuePosition)
	}
	if entries[1].Name != "" {
		t.Errorf("Expected empty name without embedded user, got %q", entries[1].Name)
	}
}

func TestSupabaseProvider_DataCallWithoutSession(t *testing.T) {
	provider := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("No request expected without a session")
	}, "")

	_, err := provider.ListEvents(context.Background(), "g1")
	if !IsCode(err, constants.ErrCodeNotAuthenticated) {
		t.Fatalf("Expected NOT_AUTHENTICATED, got %v", err)
	}
}

func TestSupabaseProvider_DuplicateMembershipIsClassified(t *testing.T) {
	provider := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Prefer"); got != "return=minimal" {
			t.Errorf("Expected Prefer return=minimal, got %q", got)
		}
		var body dtos.MembershipInsert
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		if body.Tipo != constants.MembershipCasual || !body.Ativo {
			t.Errorf("Unexpected insert body %+v", body)
		}

		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"code":"23505","details":"Key (pelada_id, user_id) already exists.","hint":null,"message":"duplicate key value violates unique constraint \"pelada_users_pelada_id_user_id_key\""}`))
	}, "user-token")

	err := provider.CreateMembership(context.Background(), "g1", "u1", constants.MembershipCasual)
	if err == nil {
		t.Fatal("Expected error for duplicate membership")
	}
	if kind := ClassifyConstraint(err); kind != ConstraintDuplicate {
		t.Errorf("Expected duplicate classification, got %v", kind)
	}
	var perr *ProviderError
	if !asProviderError(err, &perr) || perr.SQLState != "23505" || perr.Status != http.StatusConflict {
		t.Errorf("Unexpected provider error %+v", perr)
	}
}

func TestSupabaseProvider_RowLevelSecurityIsPermissionDenied(t *testing.T) {
	provider := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"code":"42501","details":null,"hint":null,"message":"new row violates row-level security policy for table \"eventos\""}`))
	}, "user-token")

	_, err := provider.CreateEvent(context.Background(), "g1", time.Now(), nil)
	if !IsCode(err, constants.ErrCodePermissionDenied) {
		t.Fatalf("Expected PERMISSION_DENIED, got %v", err)
	}
	if !strings.Contains(UserMessage(err), "row-level security") {
		t.Errorf("Expected remote message verbatim, got %q", UserMessage(err))
	}
}

func TestSupabaseProvider_GoTrueErrorMessage(t *testing.T) {
	provider := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("grant_type") != "password" {
			t.Errorf("Expected password grant, got %q", r.URL.RawQuery)
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`))
	}, "")

	_, err := provider.SignInWithPassword(context.Background(), "a@x.com", "wrong")
	if UserMessage(err) != "Invalid login credentials" {
		t.Fatalf("Expected GoTrue message, got %v", err)
	}
	var perr *ProviderError
	if asProviderError(err, &perr) && perr.SQLState != "" {
		t.Errorf("Numeric GoTrue code must not become a SQLSTATE, got %q", perr.SQLState)
	}
}

func TestSupabaseProvider_SignUpPendingConfirmation(t *testing.T) {
	provider := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/signup" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("redirect_to") != "http://app/auth/callback" {
			t.Errorf("Expected redirect_to, got %q", r.URL.RawQuery)
		}
		var body dtos.SignUpRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.Data["name"] != "Ana" {
			t.Errorf("Expected display name in user metadata, got %v", body.Data)
		}
		w.Write([]byte(`{"id":"u1","email":"ana@x.com"}`))
	}, "")

	session, err := provider.SignUp(context.Background(), "ana@x.com", "secret1", "Ana", "http://app/auth/callback")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if session != nil {
		t.Errorf("Expected nil session while confirmation is pending, got %+v", session)
	}
}

func TestSupabaseProvider_ExchangeRedirect_ImplicitRecovery(t *testing.T) {
	now := time.Now()
	token, err := IssueHS256([]byte("secret"), "u1", "ana@x.com", time.Hour, now)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	provider := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			t.Errorf("Expected token check on /auth/v1/user, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer "+token {
			t.Error("Expected the redirect token as bearer")
		}
		w.Write([]byte(`{"id":"u1","email":"ana@x.com"}`))
	}, "")

	expiresAt := now.Add(time.Hour).Unix()
	redirect, _ := url.Parse("http://app/auth/callback#access_token=" + token +
		"&refresh_token=r1&token_type=bearer&type=recovery&expires_at=" + itoa(expiresAt))

	session, event, err := provider.ExchangeRedirect(context.Background(), redirect)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if event != constants.SessionPasswordRecovery {
		t.Errorf("Expected recovery event, got %s", event)
	}
	if session.UserID != "u1" || session.RefreshToken != "r1" {
		t.Errorf("Unexpected session %+v", session)
	}
	if session.ExpiresAt.Unix() != expiresAt {
		t.Errorf("Expected expiry %d, got %d", expiresAt, session.ExpiresAt.Unix())
	}
}

func TestSupabaseProvider_ExchangeRedirect_ErrorParams(t *testing.T) {
	provider := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("No request expected for an error redirect")
	}, "")

	redirect, _ := url.Parse("http://app/auth/callback#error=access_denied&error_code=otp_expired&error_description=Email+link+is+invalid+or+has+expired")
	_, _, err := provider.ExchangeRedirect(context.Background(), redirect)
	if !IsCode(err, constants.ErrCodeRedirectInvalid) {
		t.Fatalf("Expected REDIRECT_INVALID, got %v", err)
	}
	if UserMessage(err) != "Email link is invalid or has expired" {
		t.Errorf("Unexpected message %q", UserMessage(err))
	}
}

func TestSupabaseProvider_OAuthPKCERoundTrip(t *testing.T) {
	var verifierSent string
	provider := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" || r.URL.Query().Get("grant_type") != "pkce" {
			t.Errorf("Unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["auth_code"] != "code-123" {
			t.Errorf("Expected auth code, got %v", body)
		}
		verifierSent = body["code_verifier"]
		w.Write([]byte(`{"access_token":"at","refresh_token":"rt","token_type":"bearer","expires_in":3600,"user":{"id":"u9","email":"g@x.com"}}`))
	}, "")

	authURL, err := provider.AuthorizeURL(context.Background(), "google", "http://app/auth/callback")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	parsed, _ := url.Parse(authURL)
	if parsed.Path != "/auth/v1/authorize" || parsed.Query().Get("provider") != "google" {
		t.Errorf("Unexpected authorize URL %s", authURL)
	}
	challenge := parsed.Query().Get("code_challenge")
	if challenge == "" || parsed.Query().Get("code_challenge_method") != "s256" {
		t.Errorf("Expected S256 challenge in %s", authURL)
	}

	redirect, _ := url.Parse("http://app/auth/callback?code=code-123")
	session, event, err := provider.ExchangeRedirect(context.Background(), redirect)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if event != constants.SessionSignedIn || session.UserID != "u9" {
		t.Errorf("Unexpected result %s %+v", event, session)
	}
	if verifierSent == "" || verifierSent == challenge {
		t.Errorf("Expected the verifier, not the challenge, to be sent")
	}

	// The verifier is single use.
	if _, _, err := provider.ExchangeRedirect(context.Background(), redirect); !IsCode(err, constants.ErrCodeRedirectInvalid) {
		t.Errorf("Expected REDIRECT_INVALID on replay, got %v", err)
	}
}

func TestSupabaseProvider_ConfirmPresenceCallsRPC(t *testing.T) {
	provider := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/v1/rpc/confirm_presence" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		var args dtos.ConfirmPresenceArgs
		json.NewDecoder(r.Body).Decode(&args)
		if args.EventoID != "ev-1" {
			t.Errorf("Expected p_evento_id ev-1, got %q", args.EventoID)
		}
		w.WriteHeader(http.StatusNoContent)
	}, "user-token")

	if err := provider.ConfirmPresence(context.Background(), "ev-1"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestSupabaseProvider_MissingAPIKey(t *testing.T) {
	provider := NewSupabaseProvider("http://unused", "", nil, 10, 1, nil)

	err := provider.ResetPasswordForEmail(context.Background(), "a@x.com", "")
	if !IsCode(err, constants.ErrCodeInvalidAPIKey) {
		t.Fatalf("Expected INVALID_API_KEY, got %v", err)
	}
}
