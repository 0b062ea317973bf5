package auth

import (
	"time"

	"gestor-pelada/gestor/internal/constants"
)

type Phase string

const (
	PhaseAnonymous         Phase = "anonymous"
	PhaseAwaitingMagicLink Phase = "awaiting-magic-link"
	PhaseAwaitingPassword  Phase = "awaiting-password"
	PhasePasswordRecovery  Phase = "password-recovery"
	PhaseAuthenticated     Phase = "authenticated"
)

// Mode is the sign-in form the user picked.
type Mode string

const (
	ModeMagicLink Mode = "magic"
	ModePassword  Mode = "password"
)

func (m Mode) Valid() bool {
	return m == ModeMagicLink || m == ModePassword
}

// State is the auth controller's whole state. Transitions return a new value.
type State struct {
	Phase       Phase
	Mode        Mode
	Email       string
	MagicSentAt time.Time
	Notice      string
	Busy        bool
}

// InitialState is password-recovery when the entry URL carried the
// recovery marker, anonymous otherwise.
func InitialState(recovery bool) State {
	if recovery {
		return State{Phase: PhasePasswordRecovery, Mode: ModePassword}
	}
	return State{Phase: PhaseAnonymous, Mode: ModeMagicLink}
}

// signedOutPhase is the resting phase for a signed-out user in mode m.
func signedOutPhase(m Mode) Phase {
	if m == ModePassword {
		return PhaseAwaitingPassword
	}
	return PhaseAnonymous
}

// signedOut reports whether the user is on one of the sign-in forms.
func (s State) signedOut() bool {
	switch s.Phase {
	case PhaseAnonymous, PhaseAwaitingPassword, PhaseAwaitingMagicLink:
		return true
	}
	return false
}

// WithMode switches the sign-in form. Only meaningful while signed out. The
// send time of the last magic link survives so the resend countdown keeps
// running across toggles.
func (s State) WithMode(m Mode) State {
	if !s.signedOut() || !m.Valid() {
		return s
	}
	s.Mode = m
	s.Phase = signedOutPhase(m)
	s.Notice = ""
	return s
}

func (s State) MagicLinkSent(email string, at time.Time) State {
	s.Phase = PhaseAwaitingMagicLink
	s.Mode = ModeMagicLink
	s.Email = email
	s.MagicSentAt = at
	s.Notice = constants.MsgMagicLinkSent
	return s
}

// SessionChanged applies a session store notification. Recovery wins over
// everything; a plain sign-in does not end an ongoing recovery.
func (s State) SessionChanged(kind constants.SessionEvent, hasSession bool) State {
	switch {
	case kind == constants.SessionPasswordRecovery:
		s.Phase = PhasePasswordRecovery
		s.MagicSentAt = time.Time{}
	case kind == constants.SessionSignedOut || !hasSession:
		return s.SignedOut()
	case s.Phase != PhasePasswordRecovery:
		s.Phase = PhaseAuthenticated
		s.MagicSentAt = time.Time{}
	}
	return s
}

func (s State) PasswordUpdated() State {
	s.Phase = PhaseAuthenticated
	s.Notice = constants.MsgPasswordUpdated
	return s
}

// RecoveryCancelled leaves recovery for wherever the session allows.
func (s State) RecoveryCancelled(hasSession bool) State {
	if s.Phase != PhasePasswordRecovery {
		return s
	}
	if hasSession {
		s.Phase = PhaseAuthenticated
	} else {
		s.Mode = ModeMagicLink
		s.Phase = PhaseAnonymous
	}
	s.Notice = ""
	return s
}

// SignedOut returns to the magic-link form, keeping only the notice.
func (s State) SignedOut() State {
	return State{Phase: PhaseAnonymous, Mode: ModeMagicLink, Notice: s.Notice}
}

func (s State) WithNotice(notice string) State {
	s.Notice = notice
	return s
}

func (s State) WithBusy(busy bool) State {
	s.Busy = busy
	return s
}
