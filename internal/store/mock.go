package store

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/linguaroom/linguaroom/internal/types"
)

type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) CreateRoom(roomId string, roomLanguage Language, creatorUsername string, creatorUserLanguage Language) (CreateRoomStatus, error) {
	args := m.Called(roomId, roomLanguage, creatorUsername, creatorUserLanguage)
	return args.Get(0).(CreateRoomStatus), args.Error(1)
}
func (m *MockRoomRepository) CheckUsernameAvailable(roomId, username string) (bool, error) {
	args := m.Called(roomId, username)
	return args.Bool(0), args.Error(1)
}
func (m *MockRoomRepository) JoinRoom(roomId, username string, userLanguage Language) error {
	args := m.Called(roomId, username, userLanguage)
	return args.Error(0)
}
func (m *MockRoomRepository) LeaveRoom(roomId, username string) error {
	args := m.Called(roomId, username)
	return args.Error(0)
}
func (m *MockRoomRepository) RemoveParticipant(roomId, targetUsername, adminUsername string) error {
	args := m.Called(roomId, targetUsername, adminUsername)
	return args.Error(0)
}
func (m *MockRoomRepository) UpdateParticipantLanguage(roomId, username string, lang Language) error {
	args := m.Called(roomId, username, lang)
	return args.Error(0)
}
func (m *MockRoomRepository) AddMessage(roomId, user, originalText string, translatedText, originalLang *string) error {
	args := m.Called(roomId, user, originalText, translatedText, originalLang)
	return args.Error(0)
}
func (m *MockRoomRepository) GetRoom(roomId string) (*Room, error) {
	args := m.Called(roomId)
	if room, ok := args.Get(0).(*Room); ok {
		return room, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockRoomRepository) GetMessages(roomId, since string) ([]Message, error) {
	args := m.Called(roomId, since)
	if msgs, ok := args.Get(0).([]Message); ok {
		return msgs, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockRoomRepository) ListRooms() ([]types.RoomSummary, error) {
	args := m.Called()
	if rooms, ok := args.Get(0).([]types.RoomSummary); ok {
		return rooms, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockRoomRepository) IsCreator(roomId, username string) bool {
	args := m.Called(roomId, username)
	return args.Bool(0)
}
func (m *MockRoomRepository) DeleteRoom(roomId, username string) error {
	args := m.Called(roomId, username)
	return args.Error(0)
}
func (m *MockRoomRepository) UpdateRoomLanguage(roomId string, lang Language) error {
	args := m.Called(roomId, lang)
	return args.Error(0)
}
func (m *MockRoomRepository) TouchRoom(roomId string) error {
	args := m.Called(roomId)
	return args.Error(0)
}
func (m *MockRoomRepository) CheckAndCleanupInactiveRooms(threshold time.Duration) ([]string, error) {
	args := m.Called(threshold)
	if deleted, ok := args.Get(0).([]string); ok {
		return deleted, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Register(username, password, email string) error {
	args := m.Called(username, password, email)
	return args.Error(0)
}
func (m *MockSessionRepository) Login(username, password string) (string, error) {
	args := m.Called(username, password)
	return args.String(0), args.Error(1)
}
func (m *MockSessionRepository) ValidateSession(token string) (string, bool, error) {
	args := m.Called(token)
	return args.String(0), args.Bool(1), args.Error(2)
}
func (m *MockSessionRepository) Logout(token string) error {
	args := m.Called(token)
	return args.Error(0)
}
func (m *MockSessionRepository) GetUserInfo(username string) (*types.UserInfo, error) {
	args := m.Called(username)
	if info, ok := args.Get(0).(*types.UserInfo); ok {
		return info, args.Error(1)
	}
	return nil, args.Error(1)
}
