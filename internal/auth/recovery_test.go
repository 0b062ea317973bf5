package auth

import (
	"testing"

	"gestor-pelada/gestor/internal/constants"
)

func TestHasRecoveryMarker(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"", false},
		{"/", false},
		{"http://localhost:8080/?type=recovery", true},
		{"http://localhost:8080/#access_token=x&type=recovery", true},
		{"http://localhost:8080/#type=signup", false},
		{"/reset?type=magiclink", false},
	}

	for _, tt := range tests {
		if got := HasRecoveryMarker(tt.raw); got != tt.want {
			t.Errorf("HasRecoveryMarker(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestStripRecoveryMarker(t *testing.T) {
	if got := StripRecoveryMarker("http://localhost:8080/app?type=recovery#access_token=x"); got != "/app" {
		t.Errorf("Expected path only, got %q", got)
	}
	if got := StripRecoveryMarker("http://localhost:8080#type=recovery"); got != "/" {
		t.Errorf("Expected root for empty path, got %q", got)
	}
}

func TestState_Transitions(t *testing.T) {
	s := InitialState(false)
	if s.Phase != PhaseAnonymous || s.Mode != ModeMagicLink {
		t.Fatalf("Unexpected initial state %+v", s)
	}

	s = s.WithMode(ModePassword)
	if s.Phase != PhaseAwaitingPassword {
		t.Errorf("Expected awaiting-password, got %s", s.Phase)
	}

	s = s.SessionChanged(constants.SessionSignedIn, true)
	if s.Phase != PhaseAuthenticated {
		t.Errorf("Expected authenticated, got %s", s.Phase)
	}

	if got := s.WithMode(ModeMagicLink); got.Phase != PhaseAuthenticated {
		t.Errorf("Expected mode switch ignored while signed in, got %s", got.Phase)
	}

	s = s.SessionChanged(constants.SessionSignedOut, false)
	if s.Phase != PhaseAnonymous || s.Mode != ModeMagicLink {
		t.Errorf("Expected anonymous magic-link form after sign out, got %+v", s)
	}

	r := InitialState(true).SessionChanged(constants.SessionTokenRefreshed, true)
	if r.Phase != PhasePasswordRecovery {
		t.Errorf("Expected recovery kept across refresh, got %s", r.Phase)
	}
	if r = r.SessionChanged(constants.SessionSignedOut, false); r.Phase != PhaseAnonymous {
		t.Errorf("Expected sign out to end recovery, got %s", r.Phase)
	}
}

func TestValidEmail(t *testing.T) {
	for _, ok := range []string{"ana@x.com", " bia@pelada.com.br "} {
		if !ValidEmail(ok) {
			t.Errorf("Expected %q valid", ok)
		}
	}
	for _, bad := range []string{"", "ana", "ana@x", "@x.com"} {
		if ValidEmail(bad) {
			t.Errorf("Expected %q invalid", bad)
		}
	}
}

func TestHasAuthRedirect(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"http://localhost:8787/#access_token=abc&type=recovery", true},
		{"http://localhost:8787/auth/callback?code=xyz", true},
		{"http://localhost:8787/auth/callback?token_hash=h&type=magiclink", true},
		{"http://localhost:8787/#type=recovery", false},
		{"http://localhost:8787/", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := HasAuthRedirect(tt.raw); got != tt.want {
			t.Errorf("HasAuthRedirect(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
