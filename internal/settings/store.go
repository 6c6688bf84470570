package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Frequency is how often the library refresh runs.
type Frequency string

const (
	FreqNever Frequency = "never"
	FreqDay   Frequency = "day"
	FreqWeek  Frequency = "week"
	FreqMonth Frequency = "month"
)

// fileData is the on-disk shape of the settings file.
type fileData struct {
	AuthKey         string    `json:"authKey"`
	UserEmail       string    `json:"userEmail"`
	UserID          string    `json:"userId"`
	UpdateFrequency Frequency `json:"updateFrequency,omitempty"`
	LastUpdate      time.Time `json:"lastUpdate,omitempty"`
}

// Store persists session credentials and refresh preferences in a JSON file.
// Every write lands on disk before the call returns, and all accessors are
// safe for concurrent use by background workers.
type Store struct {
	mu       sync.RWMutex
	filePath string
	data     fileData
}

// Open loads the settings file at path, starting empty if it does not exist.
func Open(path string) (*Store, error) {
	s := &Store{filePath: path}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	return s, nil
}

// SaveAuthKey stores the session key. An empty key means logged out.
func (s *Store) SaveAuthKey(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.AuthKey = key
	return s.save()
}

// AuthKey returns the stored session key, or "" when logged out.
func (s *Store) AuthKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data.AuthKey
}

// SaveUser stores the account identity returned by the API.
func (s *Store) SaveUser(id, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.UserID = id
	s.data.UserEmail = email
	return s.save()
}

// UserEmail returns the stored account email, or "" if none is stored.
func (s *Store) UserEmail() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data.UserEmail
}

// UserID returns the stored account id, or "" if none is stored.
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data.UserID
}

// Clear wipes the stored credentials. Refresh preferences are kept.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.AuthKey = ""
	s.data.UserEmail = ""
	s.data.UserID = ""
	return s.save()
}

// IsLoggedIn reports whether a session key is stored. The remote service
// stays the source of truth for whether the key is still valid.
func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data.AuthKey != ""
}

// UpdateFrequency returns the refresh frequency preference, defaulting to
// never.
func (s *Store) UpdateFrequency() Frequency {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data.UpdateFrequency == "" {
		return FreqNever
	}
	return s.data.UpdateFrequency
}

// SetUpdateFrequency stores the refresh frequency preference.
func (s *Store) SetUpdateFrequency(f Frequency) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.UpdateFrequency = f
	return s.save()
}

// LastUpdate returns when the last refresh completed. The zero time means a
// refresh has never run.
func (s *Store) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data.LastUpdate
}

// SetLastUpdate stamps the completion time of a refresh.
func (s *Store) SetLastUpdate(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.LastUpdate = t
	return s.save()
}

// load reads the settings from the JSON file on disk.
func (s *Store) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil {
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	s.data = fd
	return nil
}

// save writes the settings to the JSON file on disk. Callers hold s.mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}
