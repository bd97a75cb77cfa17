// Package store implements the durable state layer of the chat system: rooms
// with membership and message history, user accounts and login sessions. Each
// entity is one JSON record on disk, every mutation is a full-record replace,
// and a single mutex per store serializes all operations in-process.
//
// The mutex provides no cross-process exclusion. Running multiple store
// instances against the same data directory requires external locking (for
// example file-system advisory locks); do not assume it is safe without one.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/teris-io/shortid"

	"github.com/linguaroom/linguaroom/internal/stats"
	"github.com/linguaroom/linguaroom/internal/types"
)

const (
	roomFilePrefix = "room_"
	roomFileSuffix = ".json"
)

// Metric names registered by the stores.
const (
	MetricRoomsCreated       = "RoomsCreated"
	MetricRoomsDeleted       = "RoomsDeleted"
	MetricRoomsEvicted       = "RoomsEvicted"
	MetricMessagesAdded      = "MessagesAdded"
	MetricAccountsRegistered = "AccountsRegistered"
	MetricSessionsCreated    = "SessionsCreated"
	MetricSessionsExpired    = "SessionsExpired"
)

// CreateRoomStatus reports the outcome of CreateRoom. Exists and
// AlreadyMember are not errors; the caller decides whether to attempt a join.
type CreateRoomStatus string

const (
	StatusCreated       CreateRoomStatus = "created"
	StatusExists        CreateRoomStatus = "exists"
	StatusAlreadyMember CreateRoomStatus = "already_member"
)

// RoomStore owns the lifecycle, membership and message history of all rooms.
// One JSON record per room lives under dir; a single mutex serializes every
// operation, reads included.
type RoomStore struct {
	dir   string
	mu    sync.Mutex
	log   *log.Logger
	stats stats.StatsProvider
	now   func() time.Time
}

func NewRoomStore(dir string, logger *log.Logger, statsProvider stats.StatsProvider) (*RoomStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, NewUnavailableError("create room data dir", err)
	}

	statsProvider.RegisterMetric(MetricRoomsCreated)
	statsProvider.RegisterMetric(MetricRoomsDeleted)
	statsProvider.RegisterMetric(MetricRoomsEvicted)
	statsProvider.RegisterMetric(MetricMessagesAdded)

	return &RoomStore{
		dir:   dir,
		log:   logger,
		stats: statsProvider,
		now:   time.Now,
	}, nil
}

// NewRoomId generates a short, URL-safe room identifier for callers that do
// not bring their own.
func NewRoomId() (string, error) {
	id, err := shortid.Generate()
	if err != nil {
		return "", fmt.Errorf("generate room id: %w", err)
	}
	return id, nil
}

func (s *RoomStore) roomPath(roomId string) string {
	return filepath.Join(s.dir, roomFilePrefix+roomId+roomFileSuffix)
}

// readRoom loads and normalizes a room record. The caller must hold s.mu.
func (s *RoomStore) readRoom(roomId string) (*Room, error) {
	var room Room
	if err := readRecord(s.roomPath(roomId), &room); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewNotFoundError("room does not exist")
		}
		return nil, NewUnavailableError("read room record", err)
	}

	room.normalize()
	return &room, nil
}

// writeRoom persists a room record. The caller must hold s.mu.
func (s *RoomStore) writeRoom(room *Room) error {
	if err := writeRecord(s.roomPath(room.RoomId), room); err != nil {
		return NewUnavailableError("write room record", err)
	}
	return nil
}

func (s *RoomStore) timestamp() string {
	return formatTimestamp(s.now())
}

// CreateRoom creates the room if no record exists, optionally seeding the
// participant list with the creator. If the room already exists it reports
// StatusAlreadyMember when the creator is already a participant, otherwise
// StatusExists.
func (s *RoomStore) CreateRoom(roomId string, roomLanguage Language, creatorUsername string, creatorUserLanguage Language) (CreateRoomStatus, error) {
	if roomId == "" {
		return "", NewValidationError("room id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readRoom(roomId)
	if err != nil && !IsNotFound(err) {
		return "", err
	}
	if existing != nil {
		if creatorUsername != "" && existing.hasParticipant(creatorUsername) {
			return StatusAlreadyMember, nil
		}
		return StatusExists, nil
	}

	if roomLanguage == "" {
		roomLanguage = DefaultLanguage
	}

	now := s.timestamp()
	room := &Room{
		RoomId:       roomId,
		RoomLanguage: roomLanguage,
		Creator:      creatorUsername,
		Participants: []Participant{},
		Messages:     []Message{},
		CreatedAt:    now,
		UpdatedAt:    now,
		LastActivity: now,
	}

	if creatorUsername != "" {
		lang := creatorUserLanguage
		if lang == "" {
			lang = roomLanguage
		}
		room.Participants = append(room.Participants, Participant{
			Username:     creatorUsername,
			UserLanguage: lang,
		})
	}

	if err := s.writeRoom(room); err != nil {
		return "", err
	}

	s.stats.Incr(MetricRoomsCreated)
	return StatusCreated, nil
}

// CheckUsernameAvailable reports whether username is free in the given room.
// An absent room means the username is available.
func (s *RoomStore) CheckUsernameAvailable(roomId, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.readRoom(roomId)
	if err != nil {
		if IsNotFound(err) {
			return true, nil
		}
		return false, err
	}

	return !room.hasParticipant(username), nil
}

// JoinRoom adds username to the room and records a user_joined system event.
// The availability check runs twice: once up front, once against the freshest
// record after reacquiring the lock, since the first check released it.
func (s *RoomStore) JoinRoom(roomId, username string, userLanguage Language) error {
	available, err := s.CheckUsernameAvailable(roomId, username)
	if err != nil {
		return err
	}
	if !available {
		return NewConflictError(fmt.Sprintf("username %q is already taken in this room", username))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.readRoom(roomId)
	if err != nil {
		return err
	}

	if room.hasParticipant(username) {
		return NewConflictError(fmt.Sprintf("username %q is already taken in this room", username))
	}

	lang := userLanguage
	if lang == "" {
		lang = room.RoomLanguage
	}
	room.Participants = append(room.Participants, Participant{
		Username:     username,
		UserLanguage: lang,
	})

	ts := s.now()
	room.Messages = append(room.Messages, newSystemEvent(EventUserJoined, username, "", ts))
	room.UpdatedAt = formatTimestamp(ts)
	room.LastActivity = formatTimestamp(ts)

	return s.writeRoom(room)
}

// LeaveRoom removes username from the room's participant list. Leaving a room
// one is not in succeeds; only an absent room is an error.
func (s *RoomStore) LeaveRoom(roomId, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.readRoom(roomId)
	if err != nil {
		return err
	}

	kept := make([]Participant, 0, len(room.Participants))
	for _, p := range room.Participants {
		if p.Username != username {
			kept = append(kept, p)
		}
	}
	room.Participants = kept

	ts := s.timestamp()
	room.UpdatedAt = ts
	room.LastActivity = ts

	return s.writeRoom(room)
}

// RemoveParticipant removes target from the room on behalf of admin, who must
// be the room creator, and records a user_removed system event. The creator
// cannot remove themselves.
func (s *RoomStore) RemoveParticipant(roomId, targetUsername, adminUsername string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.readRoom(roomId)
	if err != nil {
		return err
	}

	if room.Creator == "" || room.Creator != adminUsername {
		return NewForbiddenError("only the room creator can remove participants")
	}
	if targetUsername == adminUsername {
		return NewForbiddenError("the room creator cannot be removed")
	}
	if !room.hasParticipant(targetUsername) {
		return NewNotFoundError("user is not a participant in this room")
	}

	kept := make([]Participant, 0, len(room.Participants))
	for _, p := range room.Participants {
		if p.Username != targetUsername {
			kept = append(kept, p)
		}
	}
	room.Participants = kept

	ts := s.now()
	room.Messages = append(room.Messages, newSystemEvent(EventUserRemoved, targetUsername, adminUsername, ts))
	room.UpdatedAt = formatTimestamp(ts)
	room.LastActivity = formatTimestamp(ts)

	return s.writeRoom(room)
}

// UpdateParticipantLanguage sets the display language for one participant. An
// unknown username leaves the participant list unchanged but still bumps
// updated_at.
func (s *RoomStore) UpdateParticipantLanguage(roomId, username string, lang Language) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.readRoom(roomId)
	if err != nil {
		return err
	}

	for i := range room.Participants {
		if room.Participants[i].Username == username {
			room.Participants[i].UserLanguage = lang
			break
		}
	}

	room.UpdatedAt = s.timestamp()

	return s.writeRoom(room)
}

// AddMessage appends a chat message to the room's history. The record is
// flushed to stable storage before returning, so a concurrent reader, even in
// another process, observes the message immediately after this call returns.
func (s *RoomStore) AddMessage(roomId, user, originalText string, translatedText, originalLang *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.readRoom(roomId)
	if err != nil {
		return err
	}

	ts := s.now()
	room.Messages = append(room.Messages, Message{
		User:           user,
		OriginalText:   originalText,
		TranslatedText: translatedText,
		OriginalLang:   originalLang,
		Timestamp:      formatTimestamp(ts),
	})
	room.UpdatedAt = formatTimestamp(ts)
	room.LastActivity = formatTimestamp(ts)

	if err := s.writeRoom(room); err != nil {
		return err
	}

	s.stats.Incr(MetricMessagesAdded)
	return nil
}

// GetRoom returns the full room record, or a NotFound error.
func (s *RoomStore) GetRoom(roomId string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readRoom(roomId)
}

// GetMessages returns the room's messages, optionally filtered to those with
// a timestamp strictly after since. Timestamps compare lexicographically,
// which for this store's fixed-width layout matches chronological order. An
// absent room yields an empty result, not an error.
func (s *RoomStore) GetMessages(roomId, since string) ([]Message, error) {
	room, err := s.GetRoom(roomId)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if since == "" {
		return room.Messages, nil
	}

	var msgs []Message
	for _, m := range room.Messages {
		if m.Timestamp > since {
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}

// ListRooms returns a summary of every room, sorted by last activity, newest
// first. Unreadable records are skipped, not fatal.
func (s *RoomStore) ListRooms() ([]types.RoomSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, NewUnavailableError("read room data dir", err)
	}

	var rooms []types.RoomSummary
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, roomFilePrefix) || !strings.HasSuffix(name, roomFileSuffix) {
			continue
		}

		var room Room
		if err := readRecord(filepath.Join(s.dir, name), &room); err != nil {
			s.log.Printf("skipping unreadable room record %s: %v", name, err)
			continue
		}
		room.normalize()

		roomId := room.RoomId
		if roomId == "" {
			roomId = strings.TrimSuffix(strings.TrimPrefix(name, roomFilePrefix), roomFileSuffix)
		}

		lastActivity := room.LastActivity
		if lastActivity == "" {
			lastActivity = room.UpdatedAt
		}

		rooms = append(rooms, types.RoomSummary{
			RoomId:           roomId,
			Creator:          room.Creator,
			RoomLanguage:     string(room.RoomLanguage),
			ParticipantCount: len(room.Participants),
			MessageCount:     len(room.Messages),
			CreatedAt:        room.CreatedAt,
			LastActivity:     lastActivity,
		})
	}

	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].LastActivity > rooms[j].LastActivity
	})

	return rooms, nil
}

// IsCreator reports whether username created the room.
func (s *RoomStore) IsCreator(roomId, username string) bool {
	room, err := s.GetRoom(roomId)
	if err != nil {
		return false
	}

	return room.Creator != "" && room.Creator == username
}

// DeleteRoom removes the room record. Only the room creator may delete it.
func (s *RoomStore) DeleteRoom(roomId, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.readRoom(roomId)
	if err != nil {
		return err
	}

	if room.Creator == "" || room.Creator != username {
		return NewForbiddenError("only the room creator can delete the room")
	}

	if err := os.Remove(s.roomPath(roomId)); err != nil {
		return NewUnavailableError("delete room record", err)
	}

	s.stats.Incr(MetricRoomsDeleted)
	return nil
}

// UpdateRoomLanguage sets the room's default language. Any caller may change
// it; unlike DeleteRoom and RemoveParticipant there is no creator check,
// matching the store's historical behavior.
func (s *RoomStore) UpdateRoomLanguage(roomId string, lang Language) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.readRoom(roomId)
	if err != nil {
		return err
	}

	room.RoomLanguage = lang
	room.UpdatedAt = s.timestamp()

	return s.writeRoom(room)
}

// TouchRoom bumps the room's activity timestamps without any other change,
// keeping it clear of the inactivity sweep.
func (s *RoomStore) TouchRoom(roomId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.readRoom(roomId)
	if err != nil {
		return err
	}

	ts := s.timestamp()
	room.UpdatedAt = ts
	room.LastActivity = ts

	return s.writeRoom(room)
}

// CheckAndCleanupInactiveRooms deletes every room whose last activity is
// older than the threshold and returns the ids of the deleted rooms. It runs
// under the store lock, so it is safe to call concurrently with any other
// operation. The store never schedules this itself; an external driver calls
// it periodically.
func (s *RoomStore) CheckAndCleanupInactiveRooms(threshold time.Duration) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, NewUnavailableError("read room data dir", err)
	}

	cutoff := s.now().Add(-threshold)

	var deleted []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, roomFilePrefix) || !strings.HasSuffix(name, roomFileSuffix) {
			continue
		}

		path := filepath.Join(s.dir, name)
		var room Room
		if err := readRecord(path, &room); err != nil {
			s.log.Printf("skipping unreadable room record %s: %v", name, err)
			continue
		}

		if room.LastActivity == "" {
			continue
		}
		lastActivity, err := parseTimestamp(room.LastActivity)
		if err != nil {
			s.log.Printf("skipping room record %s with bad last_activity: %v", name, err)
			continue
		}

		if !lastActivity.Before(cutoff) {
			continue
		}

		if err := os.Remove(path); err != nil {
			s.log.Printf("failed to delete inactive room record %s: %v", name, err)
			continue
		}

		roomId := room.RoomId
		if roomId == "" {
			roomId = strings.TrimSuffix(strings.TrimPrefix(name, roomFilePrefix), roomFileSuffix)
		}
		deleted = append(deleted, roomId)
		s.stats.Incr(MetricRoomsEvicted)
		s.log.Printf("deleted inactive room %q (last activity %s)", roomId, room.LastActivity)
	}

	return deleted, nil
}
