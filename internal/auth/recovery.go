package auth

import (
	"net/url"
	"strings"
	"sync"

	"gestor-pelada/gestor/internal/constants"
)

// Location is the navigable URL of the client. Replace must not reload.
type Location interface {
	Current() string
	Replace(raw string)
}

// MemoryLocation keeps the URL in memory; the front end reads it back.
type MemoryLocation struct {
	mu  sync.RWMutex
	url string
}

func NewMemoryLocation(raw string) *MemoryLocation {
	return &MemoryLocation{url: raw}
}

func (l *MemoryLocation) Current() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.url
}

func (l *MemoryLocation) Replace(raw string) {
	l.mu.Lock()
	l.url = raw
	l.mu.Unlock()
}

// HasRecoveryMarker reports whether raw carries type=recovery in its query
// or fragment.
func HasRecoveryMarker(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.Contains(raw, constants.RecoveryMarker)
	}
	if u.Query().Get("type") == "recovery" {
		return true
	}
	if frag, err := url.ParseQuery(u.Fragment); err == nil && frag.Get("type") == "recovery" {
		return true
	}
	return false
}

// HasAuthRedirect reports whether raw carries implicit-flow tokens, an OTP
// token hash or a PKCE code that HandleRedirect can exchange for a session.
func HasAuthRedirect(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || raw == "" {
		return false
	}
	params := u.Query()
	if frag, err := url.ParseQuery(u.Fragment); err == nil {
		for k, v := range frag {
			params[k] = v
		}
	}
	for _, key := range []string{"access_token", "token_hash", "code"} {
		if params.Get(key) != "" {
			return true
		}
	}
	return false
}

// StripRecoveryMarker reduces raw to its path, dropping query and fragment
// along with any tokens they carried.
func StripRecoveryMarker(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

// recoveryLocation is the URL kept while a recovery link is being completed.
func recoveryLocation(raw string) string {
	return StripRecoveryMarker(raw) + "#" + constants.RecoveryMarker
}
