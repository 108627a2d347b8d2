package http

type CreateEventRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Location     string `json:"location"`
	Date         string `json:"date"`
	MaxAttendees int    `json:"max_attendees"`
}

type DecideEventRequest struct {
	Approve *bool `json:"approve"`
}

type OrganizerSummary struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
}

type EventResponse struct {
	EventID            string            `json:"event_id"`
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	Category           string            `json:"category"`
	Location           string            `json:"location"`
	Date               string            `json:"date"`
	MaxAttendees       int               `json:"max_attendees"`
	Status             string            `json:"status"`
	OrganizerID        string            `json:"organizer_id"`
	Organizer          *OrganizerSummary `json:"organizer,omitempty"`
	RSVPCount          int               `json:"rsvp_count"`
	CommittedAttendees int               `json:"committed_attendees"`
	RemainingCapacity  int               `json:"remaining_capacity"`
	Trending           bool              `json:"trending"`
	DecidedBy          string            `json:"decided_by,omitempty"`
	DecidedAt          string            `json:"decided_at,omitempty"`
	CreatedAt          string            `json:"created_at"`
}

type ListEventsResponse struct {
	Items []EventResponse `json:"items"`
}

type RSVPRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	AttendeeCount int    `json:"attendee_count"`
}

type RSVPResponse struct {
	RSVPID        string `json:"rsvp_id"`
	EventID       string `json:"event_id"`
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	AttendeeCount int    `json:"attendee_count"`
	Attended      bool   `json:"attended"`
	// AttendanceMarkedAt is empty until attendance is recorded.
	AttendanceMarkedAt string `json:"attendance_marked_at,omitempty"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

type AttendanceRequest struct {
	Attended *bool `json:"attended"`
}

type DeleteEventResponse struct {
	EventID string `json:"event_id"`
	Deleted bool   `json:"deleted"`
}

type AdmitRSVPResponse struct {
	RSVP               RSVPResponse `json:"rsvp"`
	Created            bool         `json:"created"`
	CommittedAttendees int          `json:"committed_attendees"`
	RemainingCapacity  int          `json:"remaining_capacity"`
}

type CancelRSVPResponse struct {
	EventID string `json:"event_id"`
	Removed bool   `json:"removed"`
}

type ListRSVPsResponse struct {
	Items []RSVPResponse `json:"items"`
}

type FeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type FeedbackResponse struct {
	FeedbackID string `json:"feedback_id"`
	EventID    string `json:"event_id"`
	UserID     string `json:"user_id"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
	CreatedAt  string `json:"created_at"`
}

type ListFeedbackResponse struct {
	Items []FeedbackResponse `json:"items"`
}

type CategoryCountResponse struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type PopularEventResponse struct {
	EventID   string `json:"event_id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	RSVPCount int    `json:"rsvp_count"`
}

type EventAnalyticsResponse struct {
	Total      int                     `json:"total"`
	ByStatus   map[string]int          `json:"by_status"`
	Upcoming   int                     `json:"upcoming"`
	Categories []CategoryCountResponse `json:"categories"`
	Popular    []PopularEventResponse  `json:"popular"`
}

type FeedbackAnalyticsResponse struct {
	Total         int     `json:"total"`
	AverageRating float64 `json:"average_rating"`
}

type UserAnalyticsResponse struct {
	Total       int `json:"total"`
	NewLastWeek int `json:"new_last_week"`
}

type AnalyticsResponse struct {
	Events      EventAnalyticsResponse    `json:"events"`
	Feedback    FeedbackAnalyticsResponse `json:"feedback"`
	Users       UserAnalyticsResponse     `json:"users"`
	GeneratedAt string                    `json:"generated_at"`
}
