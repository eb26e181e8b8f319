package storage

import (
	"errors"
	"time"

	"rhystmorgan/veContacts/internal/models"
)

var (
	// ErrContactNotFound is returned by Delete when the address is not stored.
	ErrContactNotFound = errors.New("contact not found")

	// ErrStoreClosed is returned by mutating calls after Close.
	ErrStoreClosed = errors.New("contact store closed")
)

// ChangeEvent describes one change to the stored address book.
type ChangeEvent struct {
	Entry  models.ContactEntry
	Status models.ChangeStatus
	Time   time.Time
}

// ContactStore is the authoritative address -> contact mapping. Every successful
// mutation, whether made by this process or picked up from the backend, is published
// to subscribers as a ChangeEvent after it has been applied.
type ContactStore interface {
	// Get returns the entry stored for address.
	Get(address string) (models.ContactEntry, bool)

	// Put inserts or replaces the entry keyed by entry.Address.
	Put(entry models.ContactEntry) error

	// Delete removes the entry. Returns ErrContactNotFound if absent.
	Delete(address string) error

	// All returns every stored entry ordered by address.
	All() ([]models.ContactEntry, error)

	// Subscribe registers for change events. Close the subscription when done.
	Subscribe() *Subscription

	Close() error
}

func newChangeEvent(entry models.ContactEntry, status models.ChangeStatus) ChangeEvent {
	return ChangeEvent{Entry: entry, Status: status, Time: time.Now()}
}
