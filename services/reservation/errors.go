package reservation

import (
	"errors"
	"fmt"
	"time"

	"smartparking/models"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrInvalidRequest      = errors.New("invalid reservation request")
	ErrInvalidTransition   = errors.New("reservation cannot make this transition")
	ErrForbidden           = errors.New("reservation belongs to another user")
	ErrOutsideWindow       = errors.New("outside the reservation window")
)

// ConflictError reports that the spot is taken for the requested window.
type ConflictError struct {
	Code          string
	Reason        models.ConflictReason
	ReservationID string
	NextAvailable *time.Time
}

func (e *ConflictError) Error() string {
	msg := fmt.Sprintf("%s: spot no longer available (%s)", e.Code, e.Reason)
	if e.NextAvailable != nil {
		msg += " until " + e.NextAvailable.Format(time.RFC3339)
	}
	return msg
}

func NewConflictError(reason models.ConflictReason, reservationID string, next *time.Time) error {
	return &ConflictError{
		Code:          "spotUnavailable",
		Reason:        reason,
		ReservationID: reservationID,
		NextAvailable: next,
	}
}
