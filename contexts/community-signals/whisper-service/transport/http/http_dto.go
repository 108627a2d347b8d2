package http

type PostWhisperRequest struct {
	Text     string `json:"text"`
	Location string `json:"location"`
}

type ModerateWhisperRequest struct {
	Approve *bool `json:"approve"`
}

type WhisperResponse struct {
	WhisperID  string `json:"whisper_id"`
	Text       string `json:"text"`
	Location   string `json:"location"`
	IsApproved bool   `json:"is_approved"`
	ApprovedAt string `json:"approved_at,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type ListWhispersResponse struct {
	Items []WhisperResponse `json:"items"`
}

type ModerateWhisperResponse struct {
	WhisperID string           `json:"whisper_id"`
	Deleted   bool             `json:"deleted"`
	Whisper   *WhisperResponse `json:"whisper,omitempty"`
}
