package http

type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type VoteRequest struct {
	PollID string `json:"poll_id"`
	Option string `json:"option"`
}

type OptionResponse struct {
	Text       string  `json:"text"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

type PollResponse struct {
	PollID     string           `json:"poll_id"`
	Question   string           `json:"question"`
	Options    []OptionResponse `json:"options"`
	TotalVotes int              `json:"total_votes"`
	Voters     *int             `json:"voters,omitempty"`
	IsActive   bool             `json:"is_active"`
	CreatedAt  string           `json:"created_at"`
	ClosedAt   string           `json:"closed_at,omitempty"`
}

type ListPollsResponse struct {
	Items []PollResponse `json:"items"`
}

type VoteResponse struct {
	Poll           PollResponse `json:"poll"`
	Option         string       `json:"option"`
	PreviousOption string       `json:"previous_option,omitempty"`
}
