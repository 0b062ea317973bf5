package constants

// SessionEvent is the kind of change published by the session store.
type SessionEvent string

const (
	SessionInitial          SessionEvent = "INITIAL_SESSION"
	SessionSignedIn         SessionEvent = "SIGNED_IN"
	SessionSignedOut        SessionEvent = "SIGNED_OUT"
	SessionTokenRefreshed   SessionEvent = "TOKEN_REFRESHED"
	SessionPasswordRecovery SessionEvent = "PASSWORD_RECOVERY"
	SessionUserUpdated      SessionEvent = "USER_UPDATED"
)
