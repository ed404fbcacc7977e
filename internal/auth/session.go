// Package auth keeps the signed-in user of the chat client.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// SessionFileName is the session file kept in the config directory
const SessionFileName = "session.json"

// User identifies the signed-in account
type User struct {
	Email string `json:"email"`
	UID   string `json:"uid"`
}

// State is an auth-state transition delivered to watchers
type State int

const (
	SignedOut State = iota
	SignedIn
)

func (s State) String() string {
	if s == SignedIn {
		return "signed_in"
	}
	return "signed_out"
}

// FileSession persists the current user to a JSON file and broadcasts
// sign-in and sign-out to watchers.
type FileSession struct {
	mu       sync.RWMutex
	path     string
	user     *User
	watchers map[int]chan State
	nextID   int
}

// LoadSession reads the session stored in dir. A missing file yields a
// signed-out session.
func LoadSession(dir string) (*FileSession, error) {
	s := &FileSession{
		path:     filepath.Join(dir, SessionFileName),
		watchers: make(map[int]chan State),
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	if err := ValidateUser(user); err != nil {
		return nil, fmt.Errorf("invalid session file: %w", err)
	}
	s.user = &user

	return s, nil
}

// CurrentUser returns the signed-in user, if any
func (s *FileSession) CurrentUser() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// SignIn stores email with a freshly generated uid
func (s *FileSession) SignIn(email string) (User, error) {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return User{}, fmt.Errorf("invalid email %q: %w", email, err)
	}

	user := User{Email: addr.Address, UID: uuid.NewString()}

	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return User{}, fmt.Errorf("failed to marshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return User{}, fmt.Errorf("failed to create session directory: %w", err)
	}
	// Owner read/write only
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return User{}, fmt.Errorf("failed to write session file: %w", err)
	}

	s.user = &user
	s.notifyLocked(SignedIn)
	return user, nil
}

// SignOut forgets the current user. Signing out twice is harmless.
func (s *FileSession) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}

	s.user = nil
	s.notifyLocked(SignedOut)
	return nil
}

// Watch returns a channel receiving auth-state changes and a function
// that stops the delivery. The channel keeps only the latest state when
// the receiver falls behind.
func (s *FileSession) Watch() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan State, 1)
	s.watchers[id] = ch

	var once sync.Once
	stop := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers, id)
			s.mu.Unlock()
		})
	}
	return ch, stop
}

func (s *FileSession) notifyLocked(state State) {
	for _, ch := range s.watchers {
		// drop a stale pending state, keep the newest
		select {
		case <-ch:
		default:
		}
		ch <- state
	}
}

// Path returns the session file path
func (s *FileSession) Path() string {
	return s.path
}

// ValidateUser checks that a stored user is complete
func ValidateUser(u User) error {
	if u.UID == "" {
		return fmt.Errorf("missing uid")
	}
	if u.Email == "" {
		return fmt.Errorf("missing email")
	}
	return nil
}
