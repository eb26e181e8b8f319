package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"rhystmorgan/veContacts/internal/models"
)

const (
	ContactsFile = "contacts.json"
	DatabaseFile = "contacts.db"
)

// contactsFile is the on-disk layout. Exactly one of Contacts or Sealed is set.
type contactsFile struct {
	Contacts []models.ContactEntry `json:"contacts,omitempty"`
	Sealed   *EncryptedData        `json:"sealed,omitempty"`
}

type JSONOptions struct {
	// Password seals the file with AES-GCM when non-empty.
	Password string

	// Logger falls back to slog.Default() if nil.
	Logger *slog.Logger
}

// JSONStore keeps the address book in memory and writes it through to a JSON file.
// An empty path gives a memory-only store.
type JSONStore struct {
	path     string
	password string
	log      *slog.Logger
	hub      *eventHub

	mu      sync.RWMutex
	entries map[string]models.ContactEntry
	closed  bool
}

func OpenJSONStore(path string, opts JSONOptions) (*JSONStore, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &JSONStore{
		path:     path,
		password: opts.Password,
		log:      logger.WithGroup("store"),
		hub:      newEventHub(),
		entries:  make(map[string]models.ContactEntry),
	}

	if path == "" {
		return s, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	entries, err := s.readFile()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		s.entries[e.Address] = e
	}

	s.log.Debug("contacts loaded", "path", path, "count", len(s.entries), "sealed", s.password != "")
	return s, nil
}

func (s *JSONStore) Path() string {
	return s.path
}

func (s *JSONStore) Get(address string) (models.ContactEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[address]
	return entry, ok
}

func (s *JSONStore) Put(entry models.ContactEntry) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}

	old, exists := s.entries[entry.Address]
	if exists && old == entry {
		s.mu.Unlock()
		return nil
	}

	s.entries[entry.Address] = entry
	if err := s.persistLocked(); err != nil {
		if exists {
			s.entries[entry.Address] = old
		} else {
			delete(s.entries, entry.Address)
		}
		s.mu.Unlock()
		return fmt.Errorf("failed to save contact %s: %w", entry.Address, err)
	}
	s.mu.Unlock()

	status := models.StatusNew
	if exists {
		status = models.StatusUpdated
	}
	s.hub.publish(newChangeEvent(entry, status))
	return nil
}

func (s *JSONStore) Delete(address string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}

	old, exists := s.entries[address]
	if !exists {
		s.mu.Unlock()
		return ErrContactNotFound
	}

	delete(s.entries, address)
	if err := s.persistLocked(); err != nil {
		s.entries[address] = old
		s.mu.Unlock()
		return fmt.Errorf("failed to delete contact %s: %w", address, err)
	}
	s.mu.Unlock()

	s.hub.publish(newChangeEvent(old, models.StatusDeleted))
	return nil
}

func (s *JSONStore) All() ([]models.ContactEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedEntries(s.entries), nil
}

func (s *JSONStore) Subscribe() *Subscription {
	return s.hub.subscribe()
}

func (s *JSONStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.hub.close()
	return nil
}

// reload re-reads the file and publishes the differences against memory.
// The read happens under the write lock: Put and Delete persist before they
// release it, so the file is never older than memory here.
func (s *JSONStore) reload() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}

	entries, err := s.readFile()
	if err != nil {
		s.mu.Unlock()
		return err
	}

	fresh := make(map[string]models.ContactEntry, len(entries))
	for _, e := range entries {
		fresh[e.Address] = e
	}

	events := diffEntries(s.entries, fresh)
	s.entries = fresh
	s.mu.Unlock()

	if len(events) > 0 {
		s.log.Info("contacts file changed externally", "path", s.path, "changes", len(events))
	}
	s.hub.publish(events...)
	return nil
}

func (s *JSONStore) readFile() ([]models.ContactEntry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read contacts file: %w", err)
	}

	var file contactsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contacts: %w", err)
	}

	if file.Sealed == nil {
		return file.Contacts, nil
	}

	var entries []models.ContactEntry
	if err := Open(file.Sealed, s.password, &entries); err != nil {
		return nil, fmt.Errorf("failed to open sealed contacts: %w", err)
	}
	return entries, nil
}

func (s *JSONStore) persistLocked() error {
	if s.path == "" {
		return nil
	}

	entries := sortedEntries(s.entries)
	file := contactsFile{Contacts: entries}
	if s.password != "" {
		sealed, err := Seal(entries, s.password)
		if err != nil {
			return fmt.Errorf("failed to seal contacts: %w", err)
		}
		file = contactsFile{Sealed: sealed}
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal contacts: %w", err)
	}

	// Write to a sibling file and rename so readers never see a partial file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write contacts file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace contacts file: %w", err)
	}
	return nil
}

func sortedEntries(m map[string]models.ContactEntry) []models.ContactEntry {
	entries := make([]models.ContactEntry, 0, len(m))
	for _, e := range m {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Address < entries[j].Address
	})
	return entries
}

// diffEntries returns the events that turn old into fresh, ordered by address.
func diffEntries(old, fresh map[string]models.ContactEntry) []ChangeEvent {
	var events []ChangeEvent
	for _, e := range sortedEntries(old) {
		if _, ok := fresh[e.Address]; !ok {
			events = append(events, newChangeEvent(e, models.StatusDeleted))
		}
	}
	for _, e := range sortedEntries(fresh) {
		prev, ok := old[e.Address]
		switch {
		case !ok:
			events = append(events, newChangeEvent(e, models.StatusNew))
		case prev != e:
			events = append(events, newChangeEvent(e, models.StatusUpdated))
		}
	}
	return events
}
