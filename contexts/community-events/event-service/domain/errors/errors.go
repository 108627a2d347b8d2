package errors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrUnauthenticated  = errors.New("authentication required")
	ErrForbidden        = errors.New("forbidden")
	ErrEventNotFound    = errors.New("event not found")
	ErrRSVPNotFound     = errors.New("rsvp not found")
	ErrInvalidState     = errors.New("invalid state")
	ErrEventNotOpen     = errors.New("event is not open for rsvp")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrConflict         = errors.New("conflict")
)

var (
	ErrEventNotPending = fmt.Errorf("%w: event is not pending", ErrInvalidState)
	ErrFeedbackNotOpen = fmt.Errorf("%w: feedback opens after the event date", ErrInvalidState)
	ErrFeedbackExists  = fmt.Errorf("%w: feedback already submitted for this event", ErrConflict)
	ErrEventFrozen     = fmt.Errorf("%w: rejected or past events can no longer change", ErrInvalidState)
	ErrAttendanceEarly = fmt.Errorf("%w: attendance opens at the event start", ErrInvalidState)
)
