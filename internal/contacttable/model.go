package contacttable

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"rhystmorgan/veContacts/internal/models"
	"rhystmorgan/veContacts/internal/storage"
)

// AddressValidator checks address syntax before a user-entered contact is stored.
type AddressValidator interface {
	IsValidAddress(address string) bool
}

// KeyGenerator is the wallet side of AddRow: it hands out new receiving addresses.
type KeyGenerator interface {
	TryUnlock() bool
	GenerateReceivingAddress() (string, error)
	IsMine(address string) bool
}

type Option func(*Model)

// WithLogger sets the logger. Falls back to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.log = logger.WithGroup("contacts")
		}
	}
}

// Model keeps a sorted, row-indexed view of the contact store in step with both
// user edits and backend change notifications.
//
// Model is not safe for concurrent use. Backend notifications must be handed to
// UpdateEntry or ApplyChange on the goroutine that owns the model.
type Model struct {
	store     storage.ContactStore
	validator AddressValidator
	wallet    KeyGenerator
	log       *slog.Logger

	cache     contactCache
	status    EditStatus
	listeners listenerSet

	defaultAddress string
	designated     string
}

var _ TableModel = (*Model)(nil)

// New builds an empty table. Call RefreshContactTable to load the store.
func New(store storage.ContactStore, validator AddressValidator, wallet KeyGenerator, opts ...Option) *Model {
	m := &Model{
		store:     store,
		validator: validator,
		wallet:    wallet,
		log:       slog.Default().WithGroup("contacts"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddListener registers fn for table events and returns a function that removes it.
func (m *Model) AddListener(fn Listener) (remove func()) {
	return m.listeners.add(fn)
}

// EditStatus is the result of the most recent AddRow. Read it before the next mutation.
func (m *Model) EditStatus() EditStatus {
	return m.status
}

// AddRow adds a new contact and returns its address, or "" on failure (see EditStatus).
// An empty address asks the wallet for a new receiving address. Existing entries are
// never overwritten.
func (m *Model) AddRow(label, address, email, url string) string {
	address = strings.TrimSpace(address)
	typ := models.AddressSend

	if address != "" {
		if m.validator != nil && !m.validator.IsValidAddress(address) {
			return m.reject(StatusInvalidAddress, address, nil)
		}
		if _, ok := m.cache.find(address); ok {
			return m.reject(StatusDuplicateAddress, address, nil)
		}
	} else {
		if m.wallet == nil || !m.wallet.TryUnlock() {
			return m.reject(StatusWalletUnlockFailure, address, nil)
		}
		generated, err := m.wallet.GenerateReceivingAddress()
		if err != nil || generated == "" {
			return m.reject(StatusKeyGenerationFailure, address, err)
		}
		if _, ok := m.cache.find(generated); ok {
			return m.reject(StatusDuplicateAddress, generated, nil)
		}
		address = generated
		typ = models.AddressReceive
	}

	entry := models.NewContactEntry(label, address, email, url, typ)
	if err := m.store.Put(entry); err != nil {
		return m.reject(StatusStoreFailure, address, err)
	}

	row, _ := m.cache.upsert(entry)
	m.status = StatusOK
	m.log.Debug("contact added", "address", address, "row", row, "type", typ)

	m.listeners.emit(Event{Kind: EventRowInserted, Row: row})
	m.updateDefaultAddress()
	return address
}

func (m *Model) reject(status EditStatus, address string, err error) string {
	m.status = status
	attrs := []any{"status", status.String(), "address", address}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	if status == StatusStoreFailure {
		m.log.Error("failed to add contact", attrs...)
	} else {
		m.log.Warn("contact rejected", attrs...)
	}
	return ""
}

// LabelForAddress returns the label stored for address. ok distinguishes a missing
// address from an entry whose label is empty.
func (m *Model) LabelForAddress(address string) (label string, ok bool) {
	row, found := m.cache.find(address)
	if !found {
		return "", false
	}
	return m.cache.rows[row].Label, true
}

// LookupAddress returns the row holding address, or -1.
func (m *Model) LookupAddress(address string) int {
	row, ok := m.cache.find(address)
	if !ok {
		return -1
	}
	return row
}

// Entry returns the entry at row.
func (m *Model) Entry(row int) (models.ContactEntry, error) {
	return m.cache.at(row)
}

// Entries returns a copy of all rows in order.
func (m *Model) Entries() []models.ContactEntry {
	return m.cache.entries()
}

func (m *Model) RowCount() int {
	return m.cache.size()
}

func (m *Model) ColumnCount() int {
	return columnCount
}

func (m *Model) Data(row, column int) (string, bool) {
	entry, err := m.cache.at(row)
	if err != nil {
		return "", false
	}

	switch column {
	case ColumnLabel:
		return entry.Label, true
	case ColumnAddress:
		return entry.Address, true
	case ColumnEmail:
		return entry.Email, true
	case ColumnURL:
		return entry.URL, true
	default:
		return "", false
	}
}

func (m *Model) Type(row int) (models.AddressType, bool) {
	entry, err := m.cache.at(row)
	if err != nil {
		return "", false
	}
	return entry.Type, true
}

// SetData edits one cell in place. The address column is the entry's identity and
// cannot be edited.
func (m *Model) SetData(row, column int, value string) bool {
	entry, err := m.cache.at(row)
	if err != nil {
		return false
	}

	updated := entry
	value = strings.TrimSpace(value)
	switch column {
	case ColumnLabel:
		updated.Label = value
	case ColumnEmail:
		updated.Email = value
	case ColumnURL:
		updated.URL = value
	default:
		return false
	}

	if updated == entry {
		return true
	}

	if err := m.store.Put(updated); err != nil {
		m.log.Error("failed to save contact", "address", entry.Address, "column", column, "error", err)
		return false
	}

	m.cache.set(row, updated)
	m.listeners.emit(Event{Kind: EventRowChanged, Row: row, Column: column})
	return true
}

func (m *Model) HeaderData(column int) string {
	if column < 0 || column >= columnCount {
		return ""
	}
	return columnHeaders[column]
}

func (m *Model) Flags(row, column int) ItemFlags {
	if row < 0 || row >= m.cache.size() || column < 0 || column >= columnCount {
		return FlagNone
	}

	flags := FlagSelectable | FlagEnabled
	if column != ColumnAddress {
		flags |= FlagEditable
	}
	return flags
}

// RemoveRows deletes count rows starting at row from the store and the table.
// It returns false, without changes, if the range is out of bounds. If the store
// fails part-way only the rows already deleted are removed, and false is returned.
func (m *Model) RemoveRows(row, count int) bool {
	if count <= 0 || row < 0 || row+count > m.cache.size() {
		return false
	}

	removed := 0
	var failure error
	for i := 0; i < count; i++ {
		address := m.cache.rows[row+i].Address
		err := m.store.Delete(address)
		if err != nil && !errors.Is(err, storage.ErrContactNotFound) {
			failure = fmt.Errorf("failed to delete %s: %w", address, err)
			break
		}
		removed++
	}

	if removed > 0 {
		m.cache.removeRange(row, removed)
		m.listeners.emit(Event{Kind: EventRowsRemoved, First: row, End: row + removed})
		m.updateDefaultAddress()
	}

	if failure != nil {
		m.log.Error("failed to remove contacts", "row", row, "count", count, "removed", removed, "error", failure)
		return false
	}
	return true
}

// UpdateEntry applies a backend notification for address. Entries are trusted as-is.
// Applying the same notification twice has the same effect as applying it once.
func (m *Model) UpdateEntry(address, label, email, url string, status models.ChangeStatus) {
	entry := models.ContactEntry{
		Label:   label,
		Address: address,
		Email:   email,
		URL:     url,
		Type:    m.resolveType(address),
	}
	m.applyEntry(entry, status)
}

// ApplyChange applies a store change event, keeping the event's address type.
func (m *Model) ApplyChange(ev storage.ChangeEvent) {
	entry := ev.Entry
	if entry.Type == "" {
		entry.Type = m.resolveType(entry.Address)
	}
	m.applyEntry(entry, ev.Status)
}

func (m *Model) applyEntry(entry models.ContactEntry, status models.ChangeStatus) {
	m.log.Debug("backend update", "address", entry.Address, "status", status.String())

	switch status {
	case models.StatusNew, models.StatusUpdated:
		if row, ok := m.cache.find(entry.Address); ok {
			if m.cache.rows[row] == entry {
				return
			}
			m.cache.set(row, entry)
			m.listeners.emit(Event{Kind: EventRowChanged, Row: row, Column: -1})
		} else {
			row, _ := m.cache.upsert(entry)
			m.listeners.emit(Event{Kind: EventRowInserted, Row: row})
		}

	case models.StatusDeleted:
		row, ok := m.cache.removeByAddress(entry.Address)
		if !ok {
			return
		}
		m.listeners.emit(Event{Kind: EventRowsRemoved, First: row, End: row + 1})

	default:
		m.log.Warn("ignoring backend update with unknown status", "address", entry.Address, "status", int(status))
		return
	}

	m.updateDefaultAddress()
}

func (m *Model) resolveType(address string) models.AddressType {
	if stored, ok := m.store.Get(address); ok && stored.Type != "" {
		return stored.Type
	}
	if m.wallet != nil && m.wallet.IsMine(address) {
		return models.AddressReceive
	}
	if row, ok := m.cache.find(address); ok {
		return m.cache.rows[row].Type
	}
	return models.AddressSend
}

// RefreshContactTable reloads every entry from the store and resets the table.
// It is the repair path after any missed notification.
func (m *Model) RefreshContactTable() error {
	entries, err := m.store.All()
	if err != nil {
		m.log.Error("failed to refresh contact table", "error", err)
		return fmt.Errorf("failed to refresh contact table: %w", err)
	}

	m.cache.rebuild(entries)
	m.log.Info("contact table refreshed", "rows", m.cache.size())

	m.listeners.emit(Event{Kind: EventTableReset})
	m.updateDefaultAddress()
	return nil
}

// DefaultAddress is the wallet's primary receiving address, or "" if it has none.
func (m *Model) DefaultAddress() string {
	return m.defaultAddress
}

// SetDefaultAddress designates a Receive entry as the primary address.
func (m *Model) SetDefaultAddress(address string) bool {
	row, ok := m.cache.find(address)
	if !ok || !m.cache.rows[row].IsReceive() {
		return false
	}
	m.designated = address
	m.updateDefaultAddress()
	return true
}

// updateDefaultAddress keeps the designated address while it is a Receive row and
// otherwise falls back to the first Receive row.
func (m *Model) updateDefaultAddress() {
	next := ""
	if m.designated != "" {
		if row, ok := m.cache.find(m.designated); ok && m.cache.rows[row].IsReceive() {
			next = m.designated
		} else {
			m.designated = ""
		}
	}
	if next == "" {
		if e, ok := m.cache.firstOfType(models.AddressReceive); ok {
			next = e.Address
		}
	}

	if next == m.defaultAddress {
		return
	}
	m.defaultAddress = next
	m.log.Debug("default address changed", "address", next)
	m.listeners.emit(Event{Kind: EventDefaultAddressChanged, Address: next})
}
