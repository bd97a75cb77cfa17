package types

// RoomSummary is the caller-facing view of a room returned by room listings.
// It carries counts instead of the full participant and message lists.
type RoomSummary struct {
	RoomId           string `json:"room_id"`
	Creator          string `json:"creator"`
	RoomLanguage     string `json:"room_language"`
	ParticipantCount int    `json:"participant_count"`
	MessageCount     int    `json:"message_count"`
	CreatedAt        string `json:"created_at"`
	LastActivity     string `json:"last_activity"`
}

// UserInfo is the caller-facing view of a user account. It never carries the
// password digest.
type UserInfo struct {
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at"`
	LastLogin string `json:"last_login,omitempty"`
}
