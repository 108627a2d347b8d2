package errors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
	ErrPollNotFound    = errors.New("poll not found")
	ErrOptionNotFound  = errors.New("poll option not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrAlreadyVoted    = errors.New("already voted for this option")
	ErrConflict        = errors.New("conflict")
)

var (
	ErrPollClosed        = fmt.Errorf("%w: poll is closed", ErrInvalidState)
	ErrPollAlreadyClosed = fmt.Errorf("%w: poll is already closed", ErrInvalidState)
)
