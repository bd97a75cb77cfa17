package store

import (
	"time"

	"github.com/linguaroom/linguaroom/internal/types"
)

// RoomRepository is the operation surface of the room store, the boundary
// the UI and workflow layers call through.
type RoomRepository interface {
	CreateRoom(roomId string, roomLanguage Language, creatorUsername string, creatorUserLanguage Language) (CreateRoomStatus, error)
	CheckUsernameAvailable(roomId, username string) (bool, error)
	JoinRoom(roomId, username string, userLanguage Language) error
	LeaveRoom(roomId, username string) error
	RemoveParticipant(roomId, targetUsername, adminUsername string) error
	UpdateParticipantLanguage(roomId, username string, lang Language) error
	AddMessage(roomId, user, originalText string, translatedText, originalLang *string) error
	GetRoom(roomId string) (*Room, error)
	GetMessages(roomId, since string) ([]Message, error)
	ListRooms() ([]types.RoomSummary, error)
	IsCreator(roomId, username string) bool
	DeleteRoom(roomId, username string) error
	UpdateRoomLanguage(roomId string, lang Language) error
	TouchRoom(roomId string) error
	CheckAndCleanupInactiveRooms(threshold time.Duration) ([]string, error)
}

// SessionRepository is the operation surface of the session store.
type SessionRepository interface {
	Register(username, password, email string) error
	Login(username, password string) (string, error)
	ValidateSession(token string) (string, bool, error)
	Logout(token string) error
	GetUserInfo(username string) (*types.UserInfo, error)
}

var (
	_ RoomRepository    = (*RoomStore)(nil)
	_ SessionRepository = (*SessionStore)(nil)
)
