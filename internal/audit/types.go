package audit

import (
	"time"

	"rhystmorgan/veContacts/internal/models"
)

// AuditAction represents the type of change recorded for a contact
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

func actionFor(status models.ChangeStatus) (AuditAction, bool) {
	switch status {
	case models.StatusNew:
		return AuditActionCreate, true
	case models.StatusUpdated:
		return AuditActionUpdate, true
	case models.StatusDeleted:
		return AuditActionDelete, true
	default:
		return "", false
	}
}

// AuditLog represents a single audit log entry
type AuditLog struct {
	ID        string             `json:"id"`
	Address   string             `json:"address"`
	Action    AuditAction        `json:"action"`
	Timestamp time.Time          `json:"timestamp"`
	Label     string             `json:"label,omitempty"`
	Type      models.AddressType `json:"type,omitempty"`
	Changes   map[string]Change  `json:"changes,omitempty"`
}

// Change represents a change in a contact field
type Change struct {
	OldValue string `json:"old_value,omitempty"`
	NewValue string `json:"new_value,omitempty"`
}

// diffFields lists the fields that differ between two versions of an entry.
func diffFields(old, updated models.ContactEntry) map[string]Change {
	changes := make(map[string]Change)
	add := func(field, before, after string) {
		if before != after {
			changes[field] = Change{OldValue: before, NewValue: after}
		}
	}

	add("label", old.Label, updated.Label)
	add("email", old.Email, updated.Email)
	add("url", old.URL, updated.URL)
	add("type", string(old.Type), string(updated.Type))

	if len(changes) == 0 {
		return nil
	}
	return changes
}
