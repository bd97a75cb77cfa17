package store

import (
	"encoding/json"
	"time"
)

// Language is a display language supported by the chat system.
type Language string

const (
	LangChinese Language = "zh"
	LangEnglish Language = "en"

	// DefaultLanguage is used wherever a language is left unspecified.
	DefaultLanguage = LangChinese
)

// Participant is a (username, display-language) pair bound to one room
// membership. Usernames are unique within a room.
type Participant struct {
	Username     string   `json:"username"`
	UserLanguage Language `json:"user_language"`
}

// UnmarshalJSON accepts both the current object shape and the legacy shape,
// where a participant was a bare username string. A legacy entry decodes with
// an empty UserLanguage; Room.normalize fills in the room default.
func (p *Participant) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &p.Username)
	}

	type participant Participant
	var v participant
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*p = Participant(v)
	return nil
}

const systemMessageType = "system"

// System event names recorded in the message history.
const (
	EventUserJoined  = "user_joined"
	EventUserRemoved = "user_removed"
)

// Message is one entry in a room's append-only history. It is either a chat
// message (User/OriginalText set) or a system event (Type == "system").
// Entries are never edited or reordered once appended.
type Message struct {
	User           string
	OriginalText   string
	TranslatedText *string
	OriginalLang   *string

	Type          string
	Event         string
	Username      string
	AdminUsername string
	TimeStr       string

	Timestamp string
}

func (m Message) IsSystem() bool {
	return m.Type == systemMessageType
}

type chatMessageJSON struct {
	User           string  `json:"user"`
	OriginalText   string  `json:"original_text"`
	TranslatedText *string `json:"translated_text"`
	OriginalLang   *string `json:"original_lang"`
	Timestamp      string  `json:"timestamp"`
}

type systemMessageJSON struct {
	Type          string `json:"type"`
	Event         string `json:"event"`
	Username      string `json:"username"`
	AdminUsername string `json:"admin_username,omitempty"`
	Timestamp     string `json:"timestamp"`
	TimeStr       string `json:"time_str"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	if m.IsSystem() {
		return json.Marshal(systemMessageJSON{
			Type:          m.Type,
			Event:         m.Event,
			Username:      m.Username,
			AdminUsername: m.AdminUsername,
			Timestamp:     m.Timestamp,
			TimeStr:       m.TimeStr,
		})
	}

	return json.Marshal(chatMessageJSON{
		User:           m.User,
		OriginalText:   m.OriginalText,
		TranslatedText: m.TranslatedText,
		OriginalLang:   m.OriginalLang,
		Timestamp:      m.Timestamp,
	})
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		User           string  `json:"user"`
		OriginalText   string  `json:"original_text"`
		TranslatedText *string `json:"translated_text"`
		OriginalLang   *string `json:"original_lang"`
		Type           string  `json:"type"`
		Event          string  `json:"event"`
		Username       string  `json:"username"`
		AdminUsername  string  `json:"admin_username"`
		TimeStr        string  `json:"time_str"`
		Timestamp      string  `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = Message{
		User:           raw.User,
		OriginalText:   raw.OriginalText,
		TranslatedText: raw.TranslatedText,
		OriginalLang:   raw.OriginalLang,
		Type:           raw.Type,
		Event:          raw.Event,
		Username:       raw.Username,
		AdminUsername:  raw.AdminUsername,
		TimeStr:        raw.TimeStr,
		Timestamp:      raw.Timestamp,
	}
	return nil
}

func newSystemEvent(event, username, adminUsername string, ts time.Time) Message {
	return Message{
		Type:          systemMessageType,
		Event:         event,
		Username:      username,
		AdminUsername: adminUsername,
		Timestamp:     formatTimestamp(ts),
		TimeStr:       ts.UTC().Format("15:04:05"),
	}
}

// Room is the durable record for one chat room.
type Room struct {
	RoomId       string        `json:"room_id"`
	RoomLanguage Language      `json:"room_language"`
	Creator      string        `json:"creator"`
	Participants []Participant `json:"participants"`
	Messages     []Message     `json:"messages"`
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at"`
	LastActivity string        `json:"last_activity"`
}

// normalize upgrades legacy participant entries to the current shape by
// assigning the room's default language to entries that decoded without one.
// It runs on every load so no operation ever sees the legacy shape, and it is
// idempotent: a record already in the current shape is left untouched.
func (r *Room) normalize() {
	lang := r.RoomLanguage
	if lang == "" {
		lang = DefaultLanguage
	}

	for i := range r.Participants {
		if r.Participants[i].UserLanguage == "" {
			r.Participants[i].UserLanguage = lang
		}
	}
}

func (r *Room) hasParticipant(username string) bool {
	for _, p := range r.Participants {
		if p.Username == username {
			return true
		}
	}
	return false
}
