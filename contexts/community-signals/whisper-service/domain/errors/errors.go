package errors

import "errors"

var (
	ErrValidation      = errors.New("validation error")
	ErrForbidden       = errors.New("forbidden")
	ErrWhisperNotFound = errors.New("whisper not found")
)
