package entities

import "time"

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
	MaxTextLength    = 500
)

// Whisper is an anonymous local notice. No author is stored.
type Whisper struct {
	WhisperID  string
	Text       string
	Location   string
	IsApproved bool
	ApprovedAt *time.Time
	CreatedAt  time.Time
}

// ClampLimit applies the default and the ceiling to a requested page size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	}
	return limit
}
