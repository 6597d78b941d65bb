// Package accounts owns the persisted account table and the active-account
// selection. The store is process-wide shared state; every read and mutation
// is serialized under one lock, and every mutation is written back to disk
// before it returns.
package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prenaissance/steam-desktop-authenticator/internal/apperr"
	"github.com/prenaissance/steam-desktop-authenticator/internal/models"
)

// ErrNotFound indicates the named account does not exist in the store.
var ErrNotFound = errors.New("account not found")

// storeFile is the on-disk shape: pretty-printed and human-editable.
type storeFile struct {
	Accounts          []models.UserCredentials `json:"accounts"`
	ActiveAccountName string                   `json:"active_account_name,omitempty"`
}

// Store holds every known account plus the active selection.
type Store struct {
	path string

	mu       sync.Mutex
	accounts []models.UserCredentials
	active   string
}

// Load reads the store from path. A missing file is a normal first run and
// yields an empty store; an unreadable file fails with an io-error and a
// structurally invalid one with a deserialization-error, so callers can
// abort startup on corruption instead of silently discarding accounts.
func Load(path string) (*Store, error) {
	store := &Store{path: path}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, apperr.Wrap(apperr.KindIO, "read accounts config", err)
	}

	var file storeFile
	if err := json.Unmarshal(content, &file); err != nil {
		return nil, apperr.Wrap(apperr.KindDeserialization, "accounts config is corrupted", err)
	}

	store.accounts = file.Accounts
	store.active = file.ActiveAccountName
	if store.active != "" && store.indexOf(store.active) < 0 {
		// Dangling selection in a hand-edited file; fall back rather than
		// carry an invariant violation into the process.
		store.active = store.firstName()
	}
	return store, nil
}

// Path returns the file the store persists to.
func (s *Store) Path() string {
	return s.path
}

// Add inserts the record, replacing any account with the same name. The
// first account added becomes active. The store is persisted before Add
// returns.
func (s *Store) Add(cred models.UserCredentials) error {
	if err := cred.Validate(); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid credential record", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(cred.AccountName); i >= 0 {
		s.accounts[i] = cred
	} else {
		s.accounts = append(s.accounts, cred)
	}
	if s.active == "" {
		s.active = cred.AccountName
	}
	return s.saveLocked()
}

// AddActive inserts the record like Add and unconditionally makes it the
// active account, with a single persist. Used by a completed login.
func (s *Store) AddActive(cred models.UserCredentials) error {
	if err := cred.Validate(); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid credential record", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(cred.AccountName); i >= 0 {
		s.accounts[i] = cred
	} else {
		s.accounts = append(s.accounts, cred)
	}
	s.active = cred.AccountName
	return s.saveLocked()
}

// Remove deletes the named account. If it was active, the first remaining
// account becomes active, or the selection is cleared.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
	if s.active == name {
		s.active = s.firstName()
	}
	return s.saveLocked()
}

// SetActive selects the named account.
func (s *Store) SetActive(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(name) < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	s.active = name
	return s.saveLocked()
}

// Active returns a copy of the active account's record.
func (s *Store) Active() (models.UserCredentials, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == "" {
		return models.UserCredentials{}, false
	}
	i := s.indexOf(s.active)
	if i < 0 {
		return models.UserCredentials{}, false
	}
	return s.accounts[i], true
}

// IsLoggedIn reports whether an active account exists.
func (s *Store) IsLoggedIn() bool {
	_, ok := s.Active()
	return ok
}

// UpdateAccessToken overwrites only the access token of the named account
// and persists the store. The refresh token is left untouched; this design
// never rotates it.
func (s *Store) UpdateAccessToken(name, accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	s.accounts[i].AccessToken = accessToken
	return s.saveLocked()
}

// Snapshot returns a copy of all records and the active name.
func (s *Store) Snapshot() ([]models.UserCredentials, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make([]models.UserCredentials, len(s.accounts))
	copy(accounts, s.accounts)
	return accounts, s.active
}

// saveLocked writes the store as pretty JSON. Callers must hold s.mu. The
// write goes through a temp file and rename so a crash cannot leave a
// half-written config.
func (s *Store) saveLocked() error {
	content, err := json.MarshalIndent(storeFile{
		Accounts:          s.accounts,
		ActiveAccountName: s.active,
	}, "", "  ")
	if err != nil {
		return apperr.Wrap(apperr.KindIO, "encode accounts config", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return apperr.Wrap(apperr.KindIO, "create config directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return apperr.Wrap(apperr.KindIO, "create temp config", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperr.Wrap(apperr.KindIO, "write accounts config", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperr.Wrap(apperr.KindIO, "write accounts config", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return apperr.Wrap(apperr.KindIO, "replace accounts config", err)
	}
	return nil
}

func (s *Store) indexOf(name string) int {
	for i := range s.accounts {
		if s.accounts[i].AccountName == name {
			return i
		}
	}
	return -1
}

func (s *Store) firstName() string {
	if len(s.accounts) == 0 {
		return ""
	}
	return s.accounts[0].AccountName
}
