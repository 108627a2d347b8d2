package errors

import "errors"

var (
	ErrForbidden         = errors.New("forbidden")
	ErrOrganizerNotFound = errors.New("organizer not found")
)
