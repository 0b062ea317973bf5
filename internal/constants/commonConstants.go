package constants

import "time"

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusSuccess APIStatus = "success"
	APIStatusError   APIStatus = "error"

	CachePrefixProfile CachePrefix = "PROFILE_"
)

const (
	// PreferenceKeyLastGroup is the persisted key holding the last selected group id.
	PreferenceKeyLastGroup = "gestor:lastPeladaId"

	ResendCooldownSeconds = 30
	DefaultMaxPlayers     = 16

	// RecoveryMarker is carried in the redirect URL of password recovery emails.
	RecoveryMarker = "type=recovery"

	SessionKeyPrefix    = "session:"
	PreferenceKeyPrefix = "pref:"
	CacheKeyPrefix      = "cache:"
)

const (
	DefaultHTTPTimeout  = 10 * time.Second
	DefaultRedisTimeout = 3 * time.Second
	DefaultSessionTTL   = 7 * 24 * time.Hour
)
