package auth

import (
	"errors"
	"regexp"
	"strings"

	"gestor-pelada/gestor/internal/constants"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

var (
	ErrInvalidEmail     = errors.New(constants.MsgInvalidEmail)
	ErrPasswordRequired = errors.New(constants.MsgPasswordRequired)
	ErrNameRequired     = errors.New(constants.MsgNameRequired)
	ErrPasswordMismatch = errors.New(constants.MsgPasswordsMismatch)
	ErrResendCooldown   = errors.New(constants.MsgResendCooldown)
	ErrBusy             = errors.New(constants.MsgBusy)
	ErrNotAuthenticated = errors.New(constants.MsgNotAuthenticated)
	ErrNoRecovery       = errors.New(constants.MsgNoRecoveryInFlight)
	ErrInvalidMode      = errors.New("modo de login invalido")
	ErrInvalidRedirect  = errors.New(constants.GetErrorMessage(constants.ErrCodeRedirectInvalid))
)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if !ValidEmail(email) {
		return ErrInvalidEmail
	}
	if password == "" {
		return ErrPasswordRequired
	}
	return nil
}

func validateNewPassword(password, confirm string) error {
	if password == "" || confirm == "" {
		return ErrPasswordRequired
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}
