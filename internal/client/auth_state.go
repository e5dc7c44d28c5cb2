package client

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/polkiloo/veo3store/internal/server/http/dto"
)

// MarkerStore persists whether the user had a session, never the token itself.
type MarkerStore interface {
	Load() (bool, error)
	Save(hadSession bool) error
}

// FileMarkerStore keeps the marker as the presence of a file.
type FileMarkerStore struct {
	Path string
}

func (s FileMarkerStore) Load() (bool, error) {
	_, err := os.Stat(s.Path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func (s FileMarkerStore) Save(hadSession bool) error {
	if !hadSession {
		if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.Path, []byte("1\n"), 0o600)
}

type memoryMarker struct {
	mu  sync.Mutex
	set bool
}

func (m *memoryMarker) Load() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set, nil
}

func (m *memoryMarker) Save(hadSession bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = hadSession
	return nil
}

// AuthState holds the bearer token in memory. Every Set or Clear starts a new
// generation so that answers to requests made under an older one can be ignored.
type AuthState struct {
	mu         sync.RWMutex
	token      string
	user       *dto.UserResponse
	generation uint64
	markers    MarkerStore
}

// NewAuthState returns an empty state. A nil store keeps the marker in memory.
func NewAuthState(markers MarkerStore) *AuthState {
	if markers == nil {
		markers = &memoryMarker{}
	}
	return &AuthState{markers: markers}
}

// Set records a fresh session and returns its generation.
func (a *AuthState) Set(token string, user *dto.UserResponse) (uint64, error) {
	a.mu.Lock()
	a.token = token
	a.user = user
	a.generation++
	gen := a.generation
	a.mu.Unlock()
	return gen, a.markers.Save(true)
}

// Clear forgets the session.
func (a *AuthState) Clear() error {
	a.mu.Lock()
	a.token = ""
	a.user = nil
	a.generation++
	a.mu.Unlock()
	return a.markers.Save(false)
}

// ClearIf forgets the session only if it is still the one of generation gen.
func (a *AuthState) ClearIf(gen uint64) (bool, error) {
	a.mu.Lock()
	if a.generation != gen || a.user == nil {
		a.mu.Unlock()
		return false, nil
	}
	a.token = ""
	a.user = nil
	a.generation++
	a.mu.Unlock()
	return true, a.markers.Save(false)
}

func (a *AuthState) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

func (a *AuthState) User() *dto.UserResponse {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil {
		return nil
	}
	u := *a.user
	return &u
}

func (a *AuthState) Generation() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.generation
}

// Authenticated reports whether a user is signed in.
func (a *AuthState) Authenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user != nil
}

// HadSession reads the persisted marker.
func (a *AuthState) HadSession() (bool, error) {
	return a.markers.Load()
}
