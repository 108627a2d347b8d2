package entities

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

type Feedback struct {
	FeedbackID string
	EventID    string
	UserID     string
	Rating     int
	Comment    string
	CreatedAt  time.Time
}
