package store

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io/fs"
	"log"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/linguaroom/linguaroom/internal/stats"
	"github.com/linguaroom/linguaroom/internal/types"
)

const (
	usersFileName    = "users.json"
	sessionsFileName = "sessions.json"

	minUsernameLength = 3
	minPasswordLength = 6

	sessionTokenBytes = 32

	// DefaultSessionTTL is how long a login session stays valid.
	DefaultSessionTTL = 30 * 24 * time.Hour
)

type userRecord struct {
	Username     string  `json:"username"`
	PasswordHash string  `json:"password_hash"`
	Email        *string `json:"email"`
	CreatedAt    string  `json:"created_at"`
	LastLogin    *string `json:"last_login"`
}

type sessionRecord struct {
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
	ExpiresAt string `json:"expires_at"`
}

// SessionStore owns user accounts and login sessions: one JSON record for all
// accounts, one for all active sessions, both under dir. The same
// single-writer lock discipline as RoomStore applies, over the two records.
type SessionStore struct {
	usersFile    string
	sessionsFile string
	sessionTTL   time.Duration
	mu           sync.Mutex
	log          *log.Logger
	stats        stats.StatsProvider
	now          func() time.Time
}

// NewSessionStore creates a session store rooted at dir, creating the
// directory if needed. A sessionTTL of zero means DefaultSessionTTL.
func NewSessionStore(dir string, sessionTTL time.Duration, logger *log.Logger, statsProvider stats.StatsProvider) (*SessionStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, NewUnavailableError("create auth data dir", err)
	}

	if sessionTTL == 0 {
		sessionTTL = DefaultSessionTTL
	}

	statsProvider.RegisterMetric(MetricAccountsRegistered)
	statsProvider.RegisterMetric(MetricSessionsCreated)
	statsProvider.RegisterMetric(MetricSessionsExpired)

	return &SessionStore{
		usersFile:    filepath.Join(dir, usersFileName),
		sessionsFile: filepath.Join(dir, sessionsFileName),
		sessionTTL:   sessionTTL,
		log:          logger,
		stats:        statsProvider,
		now:          time.Now,
	}, nil
}

// readUsers loads the account record. A missing file reads as an empty
// record. The caller must hold s.mu.
func (s *SessionStore) readUsers() (map[string]userRecord, error) {
	users := make(map[string]userRecord)
	if err := readRecord(s.usersFile, &users); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return users, nil
		}
		return nil, NewUnavailableError("read user records", err)
	}
	return users, nil
}

func (s *SessionStore) writeUsers(users map[string]userRecord) error {
	if err := writeRecord(s.usersFile, users); err != nil {
		return NewUnavailableError("write user records", err)
	}
	return nil
}

func (s *SessionStore) readSessions() (map[string]sessionRecord, error) {
	sessions := make(map[string]sessionRecord)
	if err := readRecord(s.sessionsFile, &sessions); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return sessions, nil
		}
		return nil, NewUnavailableError("read session records", err)
	}
	return sessions, nil
}

func (s *SessionStore) writeSessions(sessions map[string]sessionRecord) error {
	if err := writeRecord(s.sessionsFile, sessions); err != nil {
		return NewUnavailableError("write session records", err)
	}
	return nil
}

func hashPassword(passwd string) (string, error) {
	passwdHash, err := bcrypt.GenerateFromPassword([]byte(passwd), bcrypt.DefaultCost)
	return string(passwdHash), err
}

func verifyPassword(passwdHash, passwd string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(passwdHash), []byte(passwd))
	return err == nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Register creates a new account. The password is stored only as a bcrypt
// digest, never in the clear.
func (s *SessionStore) Register(username, password, email string) error {
	if username == "" || password == "" {
		return NewValidationError("username and password cannot be empty")
	}
	if len(username) < minUsernameLength {
		return NewValidationError("username must be at least 3 characters")
	}
	if len(password) < minPasswordLength {
		return NewValidationError("password must be at least 6 characters")
	}

	// Hash before taking the lock; bcrypt dominates the cost of this call.
	passwordHash, err := hashPassword(password)
	if err != nil {
		return NewUnavailableError("hash password", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.readUsers()
	if err != nil {
		return err
	}

	if _, ok := users[username]; ok {
		return NewConflictError("username is already taken")
	}

	rec := userRecord{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    formatTimestamp(s.now()),
	}
	if email != "" {
		rec.Email = &email
	}
	users[username] = rec

	if err := s.writeUsers(users); err != nil {
		return err
	}

	s.stats.Incr(MetricAccountsRegistered)
	return nil
}

// Login verifies credentials and mints a session token valid for the store's
// session TTL. Unknown usernames and wrong passwords surface the same generic
// error so callers cannot probe for account existence.
func (s *SessionStore) Login(username, password string) (string, error) {
	if username == "" || password == "" {
		return "", NewValidationError("username and password cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.readUsers()
	if err != nil {
		return "", err
	}

	user, ok := users[username]
	if !ok || !verifyPassword(user.PasswordHash, password) {
		return "", NewForbiddenError("invalid username or password")
	}

	now := s.now()
	lastLogin := formatTimestamp(now)
	user.LastLogin = &lastLogin
	users[username] = user
	if err := s.writeUsers(users); err != nil {
		return "", err
	}

	token, err := newSessionToken()
	if err != nil {
		return "", NewUnavailableError("generate session token", err)
	}

	sessions, err := s.readSessions()
	if err != nil {
		return "", err
	}

	sessions[token] = sessionRecord{
		Username:  username,
		CreatedAt: formatTimestamp(now),
		ExpiresAt: formatTimestamp(now.Add(s.sessionTTL)),
	}
	if err := s.writeSessions(sessions); err != nil {
		return "", err
	}

	s.stats.Incr(MetricSessionsCreated)
	return token, nil
}

// ValidateSession resolves a token to its username. Expired sessions are
// deleted on sight and report invalid, as do unknown tokens.
func (s *SessionStore) ValidateSession(token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.readSessions()
	if err != nil {
		return "", false, err
	}

	session, ok := sessions[token]
	if !ok {
		return "", false, nil
	}

	expiresAt, parseErr := parseTimestamp(session.ExpiresAt)
	if parseErr != nil || s.now().After(expiresAt) {
		delete(sessions, token)
		if err := s.writeSessions(sessions); err != nil {
			return "", false, err
		}
		s.stats.Incr(MetricSessionsExpired)
		return "", false, nil
	}

	return session.Username, true, nil
}

// Logout deletes the session record if present. Logging out an unknown token
// succeeds.
func (s *SessionStore) Logout(token string) error {
	if token == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.readSessions()
	if err != nil {
		return err
	}

	if _, ok := sessions[token]; !ok {
		return nil
	}

	delete(sessions, token)
	return s.writeSessions(sessions)
}

// GetUserInfo returns the account view for username. The password digest
// never leaves the store.
func (s *SessionStore) GetUserInfo(username string) (*types.UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.readUsers()
	if err != nil {
		return nil, err
	}

	user, ok := users[username]
	if !ok {
		return nil, NewNotFoundError("user does not exist")
	}

	info := &types.UserInfo{
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
	if user.Email != nil {
		info.Email = *user.Email
	}
	if user.LastLogin != nil {
		info.LastLogin = *user.LastLogin
	}

	return info, nil
}
