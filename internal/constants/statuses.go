package constants

import (
	"database/sql/driver"
	"fmt"
)

// EventStatus mirrors eventos.status
type EventStatus string

const (
	EventOpen   EventStatus = "aberto"
	EventClosed EventStatus = "fechado"
)

func (s EventStatus) String() string { return string(s) }

func (s EventStatus) Valid() bool {
	return s == EventOpen || s == EventClosed
}

func (s *EventStatus) Scan(src interface{}) error {
	v, err := scanString("EventStatus", src)
	*s = EventStatus(v)
	return err
}

func (s EventStatus) Value() (driver.Value, error) { return string(s), nil }

// ConfirmationStatus mirrors confirmacoes.status
type ConfirmationStatus string

const (
	ConfirmationConfirmed  ConfirmationStatus = "confirmado"
	ConfirmationWaitlisted ConfirmationStatus = "espera"
	ConfirmationOut        ConfirmationStatus = "fora"
)

func (s ConfirmationStatus) String() string { return string(s) }

func (s ConfirmationStatus) Valid() bool {
	switch s {
	case ConfirmationConfirmed, ConfirmationWaitlisted, ConfirmationOut:
		return true
	}
	return false
}

// Rank is the display order of a status in the queue. Unknown statuses sort last.
func (s ConfirmationStatus) Rank() int {
	switch s {
	case ConfirmationConfirmed:
		return 0
	case ConfirmationWaitlisted:
		return 1
	case ConfirmationOut:
		return 2
	}
	return 3
}

func (s *ConfirmationStatus) Scan(src interface{}) error {
	v, err := scanString("ConfirmationStatus", src)
	*s = ConfirmationStatus(v)
	return err
}

func (s ConfirmationStatus) Value() (driver.Value, error) { return string(s), nil }

// MembershipType mirrors pelada_users.tipo
type MembershipType string

const (
	MembershipRecurring MembershipType = "mensalista"
	MembershipCasual    MembershipType = "diarista"
)

func (t MembershipType) String() string { return string(t) }

func (t MembershipType) Valid() bool {
	return t == MembershipRecurring || t == MembershipCasual
}

func (t *MembershipType) Scan(src interface{}) error {
	v, err := scanString("MembershipType", src)
	*t = MembershipType(v)
	return err
}

func (t MembershipType) Value() (driver.Value, error) { return string(t), nil }

func scanString(typeName string, src interface{}) (string, error) {
	switch v := src.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("%s: cannot scan type %T", typeName, src)
	}
}
