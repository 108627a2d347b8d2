package http

type TrustScoreResponse struct {
	OrganizerID      string  `json:"organizer_id"`
	OrganizerName    string  `json:"organizer_name,omitempty"`
	EventsHosted     int     `json:"events_hosted"`
	AttendanceRate   float64 `json:"attendance_rate"`
	AvgRating        float64 `json:"avg_rating"`
	CancellationRate float64 `json:"cancellation_rate"`
	TrustScore       float64 `json:"trust_score"`
	// Unrated is true when the organizer has no hosted events yet, so a 0
	// score means "no history" rather than "low trust".
	Unrated bool `json:"unrated"`
}

type ListTrustScoresResponse struct {
	Items []TrustScoreResponse `json:"items"`
}
