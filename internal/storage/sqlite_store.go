package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"rhystmorgan/veContacts/internal/models"
)

const contactsSchema = `
CREATE TABLE IF NOT EXISTS contacts (
    address     TEXT PRIMARY KEY,
    label       TEXT NOT NULL DEFAULT '',
    email       TEXT NOT NULL DEFAULT '',
    url         TEXT NOT NULL DEFAULT '',
    type        TEXT NOT NULL DEFAULT 'send',
    updated_at  INTEGER NOT NULL
);
`

// SQLiteStore keeps the address book in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
	hub *eventHub

	// Serializes read-compare-write in Put so the published status is accurate.
	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

func OpenSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(contactsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{
		db:  db,
		log: logger.WithGroup("store"),
		hub: newEventHub(),
	}, nil
}

func (s *SQLiteStore) Get(address string) (models.ContactEntry, bool) {
	entry, err := s.get(address)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Error("failed to read contact", "address", address, "error", err)
		}
		return models.ContactEntry{}, false
	}
	return entry, true
}

func (s *SQLiteStore) get(address string) (models.ContactEntry, error) {
	var entry models.ContactEntry
	var typ string
	err := s.db.QueryRow(`
		SELECT address, label, email, url, type FROM contacts WHERE address = ?`, address,
	).Scan(&entry.Address, &entry.Label, &entry.Email, &entry.URL, &typ)
	if err != nil {
		return models.ContactEntry{}, err
	}
	entry.Type = models.ParseAddressType(typ)
	return entry, nil
}

func (s *SQLiteStore) Put(entry models.ContactEntry) error {
	// Stored the way get reads it back, so an unchanged entry compares equal.
	entry.Type = models.ParseAddressType(string(entry.Type))

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	old, err := s.get(entry.Address)
	exists := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to read contact %s: %w", entry.Address, err)
	}
	if exists && old == entry {
		return nil
	}

	_, err = s.db.Exec(`
		INSERT INTO contacts (address, label, email, url, type, updated_at)
		VALUES (?, ?, ?, ?, ?, strftime('%s','now'))
		ON CONFLICT(address) DO UPDATE SET
			label = excluded.label,
			email = excluded.email,
			url = excluded.url,
			type = excluded.type,
			updated_at = excluded.updated_at`,
		entry.Address, entry.Label, entry.Email, entry.URL, string(entry.Type),
	)
	if err != nil {
		return fmt.Errorf("failed to save contact %s: %w", entry.Address, err)
	}

	status := models.StatusNew
	if exists {
		status = models.StatusUpdated
	}
	s.hub.publish(newChangeEvent(entry, status))
	return nil
}

func (s *SQLiteStore) Delete(address string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	old, err := s.get(address)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrContactNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read contact %s: %w", address, err)
	}

	if _, err := s.db.Exec(`DELETE FROM contacts WHERE address = ?`, address); err != nil {
		return fmt.Errorf("failed to delete contact %s: %w", address, err)
	}

	s.hub.publish(newChangeEvent(old, models.StatusDeleted))
	return nil
}

func (s *SQLiteStore) All() ([]models.ContactEntry, error) {
	rows, err := s.db.Query(`
		SELECT address, label, email, url, type FROM contacts ORDER BY address`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var entries []models.ContactEntry
	for rows.Next() {
		var entry models.ContactEntry
		var typ string
		if err := rows.Scan(&entry.Address, &entry.Label, &entry.Email, &entry.URL, &typ); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		entry.Type = models.ParseAddressType(typ)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) Subscribe() *Subscription {
	return s.hub.subscribe()
}

// Close may be called more than once.
func (s *SQLiteStore) Close() error {
	s.closeOnce.Do(func() {
		s.hub.close()
		if s.db != nil {
			s.closeErr = s.db.Close()
		}
	})
	return s.closeErr
}
