package contacttable

import (
	"errors"
	"fmt"
	"sort"

	"rhystmorgan/veContacts/internal/models"
)

// ErrRowOutOfRange is returned for row indices outside [0, size).
var ErrRowOutOfRange = errors.New("row out of range")

// contactCache is the sorted, duplicate-free projection of the store that rows index into.
// Row indices shift on insert and remove; only the address is a stable handle.
type contactCache struct {
	rows []models.ContactEntry
}

func (c *contactCache) size() int {
	return len(c.rows)
}

func (c *contactCache) at(row int) (models.ContactEntry, error) {
	if row < 0 || row >= len(c.rows) {
		return models.ContactEntry{}, fmt.Errorf("%w: %d (size %d)", ErrRowOutOfRange, row, len(c.rows))
	}
	return c.rows[row], nil
}

// search returns the insertion point for address.
func (c *contactCache) search(address string) int {
	return sort.Search(len(c.rows), func(i int) bool {
		return c.rows[i].Address >= address
	})
}

func (c *contactCache) find(address string) (int, bool) {
	i := c.search(address)
	if i < len(c.rows) && c.rows[i].Address == address {
		return i, true
	}
	return -1, false
}

// upsert replaces an existing entry in place or inserts at the sorted position.
func (c *contactCache) upsert(entry models.ContactEntry) (row int, inserted bool) {
	i := c.search(entry.Address)
	if i < len(c.rows) && c.rows[i].Address == entry.Address {
		c.rows[i] = entry
		return i, false
	}

	c.rows = append(c.rows, models.ContactEntry{})
	copy(c.rows[i+1:], c.rows[i:])
	c.rows[i] = entry
	return i, true
}

// set overwrites the entry at row; the address must not change.
func (c *contactCache) set(row int, entry models.ContactEntry) {
	c.rows[row] = entry
}

func (c *contactCache) removeByAddress(address string) (int, bool) {
	row, ok := c.find(address)
	if !ok {
		return -1, false
	}
	c.removeRange(row, 1)
	return row, true
}

// removeRange drops rows [row, row+count). Callers check bounds.
func (c *contactCache) removeRange(row, count int) {
	n := copy(c.rows[row:], c.rows[row+count:])
	for i := row + n; i < len(c.rows); i++ {
		c.rows[i] = models.ContactEntry{}
	}
	c.rows = c.rows[:row+n]
}

// rebuild replaces the contents with a sorted copy of entries. For duplicate
// addresses the last one wins.
func (c *contactCache) rebuild(entries []models.ContactEntry) {
	rows := make([]models.ContactEntry, len(entries))
	copy(rows, entries)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Address < rows[j].Address
	})

	deduped := rows[:0]
	for _, e := range rows {
		if n := len(deduped); n > 0 && deduped[n-1].Address == e.Address {
			deduped[n-1] = e
			continue
		}
		deduped = append(deduped, e)
	}
	c.rows = deduped
}

func (c *contactCache) entries() []models.ContactEntry {
	out := make([]models.ContactEntry, len(c.rows))
	copy(out, c.rows)
	return out
}

// firstOfType returns the first row with the given type.
func (c *contactCache) firstOfType(typ models.AddressType) (models.ContactEntry, bool) {
	for _, e := range c.rows {
		if e.Type == typ {
			return e, true
		}
	}
	return models.ContactEntry{}, false
}
