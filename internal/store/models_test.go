package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantUnmarshalShapes(t *testing.T) {
	tcases := []struct {
		name     string
		input    string
		expected Participant
	}{
		{
			name:     "current object shape",
			input:    `{"username": "alice", "user_language": "en"}`,
			expected: Participant{Username: "alice", UserLanguage: LangEnglish},
		},
		{
			name:     "legacy bare string",
			input:    `"bob"`,
			expected: Participant{Username: "bob"},
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			var p Participant
			require.NoError(t, json.Unmarshal([]byte(tc.input), &p))
			assert.Equal(t, tc.expected, p)
		})
	}
}

func TestRoomNormalizeIdempotent(t *testing.T) {
	room := Room{
		RoomLanguage: LangEnglish,
		Participants: []Participant{
			{Username: "alice"},
			{Username: "bob", UserLanguage: LangChinese},
		},
	}

	room.normalize()
	assert.Equal(t, LangEnglish, room.Participants[0].UserLanguage, "expected legacy entry to take the room language")
	assert.Equal(t, LangChinese, room.Participants[1].UserLanguage, "expected current entry to keep its language")

	upgraded := append([]Participant(nil), room.Participants...)
	room.normalize()
	assert.Equal(t, upgraded, room.Participants, "expected a second normalize to change nothing")
}

func TestRoomNormalizeDefaultLanguage(t *testing.T) {
	room := Room{Participants: []Participant{{Username: "alice"}}}
	room.normalize()
	assert.Equal(t, DefaultLanguage, room.Participants[0].UserLanguage)
}

func TestMessageMarshalShapes(t *testing.T) {
	translated := "hello"
	lang := "zh"
	chat := Message{
		User:           "alice",
		OriginalText:   "你好",
		TranslatedText: &translated,
		OriginalLang:   &lang,
		Timestamp:      "2024-05-01T12:00:00.000000Z",
	}

	data, err := json.Marshal(chat)
	require.NoError(t, err)

	fields := make(map[string]any)
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "alice", fields["user"])
	assert.Equal(t, "hello", fields["translated_text"])
	assert.NotContains(t, fields, "type", "expected chat messages to carry no system fields")
	assert.NotContains(t, fields, "event")

	event := newSystemEvent(EventUserRemoved, "bob", "alice", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	data, err = json.Marshal(event)
	require.NoError(t, err)

	fields = make(map[string]any)
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "system", fields["type"])
	assert.Equal(t, EventUserRemoved, fields["event"])
	assert.Equal(t, "bob", fields["username"])
	assert.Equal(t, "alice", fields["admin_username"])
	assert.Equal(t, "12:00:00", fields["time_str"])
	assert.NotContains(t, fields, "user", "expected system events to carry no chat fields")
	assert.NotContains(t, fields, "original_text")
}

func TestMessageMarshalNullTranslation(t *testing.T) {
	chat := Message{
		User:         "alice",
		OriginalText: "hi",
		Timestamp:    "2024-05-01T12:00:00.000000Z",
	}

	data, err := json.Marshal(chat)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"translated_text":null`)
	assert.Contains(t, string(data), `"original_lang":null`)
}

func TestMessageUnmarshalUnion(t *testing.T) {
	input := `[
		{"user": "alice", "original_text": "hi", "translated_text": null, "original_lang": null, "timestamp": "2024-05-01T12:00:00.000000Z"},
		{"type": "system", "event": "user_joined", "username": "bob", "timestamp": "2024-05-01T12:00:01.000000Z", "time_str": "12:00:01"}
	]`

	var msgs []Message
	require.NoError(t, json.Unmarshal([]byte(input), &msgs))
	require.Len(t, msgs, 2)

	assert.False(t, msgs[0].IsSystem())
	assert.Equal(t, "hi", msgs[0].OriginalText)
	assert.Nil(t, msgs[0].TranslatedText)

	assert.True(t, msgs[1].IsSystem())
	assert.Equal(t, EventUserJoined, msgs[1].Event)
	assert.Equal(t, "bob", msgs[1].Username)
}
