package contacttable

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhystmorgan/veContacts/internal/models"
)

func entry(label, address string) models.ContactEntry {
	return models.NewContactEntry(label, address, "", "", models.AddressSend)
}

func addresses(entries []models.ContactEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Address
	}
	return out
}

func TestCacheUpsertKeepsOrder(t *testing.T) {
	var c contactCache

	for _, addr := range []string{"1D", "1A", "1C", "1B"} {
		_, inserted := c.upsert(entry("x", addr))
		assert.True(t, inserted, "first upsert of %s should insert", addr)
	}

	assert.Equal(t, []string{"1A", "1B", "1C", "1D"}, addresses(c.entries()))

	row, inserted := c.upsert(entry("renamed", "1C"))
	assert.False(t, inserted)
	assert.Equal(t, 2, row)
	assert.Equal(t, 4, c.size())

	got, err := c.at(2)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Label)
}

func TestCacheFind(t *testing.T) {
	var c contactCache
	c.rebuild([]models.ContactEntry{entry("a", "1A"), entry("c", "1C")})

	row, ok := c.find("1C")
	assert.True(t, ok)
	assert.Equal(t, 1, row)

	row, ok = c.find("1B")
	assert.False(t, ok)
	assert.Equal(t, -1, row)

	// Byte order, not case-insensitive.
	_, ok = c.find("1c")
	assert.False(t, ok)
}

func TestCacheAtOutOfRange(t *testing.T) {
	var c contactCache
	c.upsert(entry("a", "1A"))

	for _, row := range []int{-1, 1, 10} {
		_, err := c.at(row)
		assert.True(t, errors.Is(err, ErrRowOutOfRange), "row %d", row)
	}
}

func TestCacheRemove(t *testing.T) {
	var c contactCache
	c.rebuild([]models.ContactEntry{
		entry("a", "1A"), entry("b", "1B"), entry("c", "1C"), entry("d", "1D"),
	})

	c.removeRange(1, 2)
	assert.Equal(t, []string{"1A", "1D"}, addresses(c.entries()))

	row, ok := c.removeByAddress("1D")
	assert.True(t, ok)
	assert.Equal(t, 1, row)

	_, ok = c.removeByAddress("1D")
	assert.False(t, ok)
	assert.Equal(t, []string{"1A"}, addresses(c.entries()))
}

func TestCacheRebuildSortsAndDedupes(t *testing.T) {
	var c contactCache
	c.upsert(entry("stale", "1Z"))

	c.rebuild([]models.ContactEntry{
		entry("d", "1D"),
		entry("old", "1C"),
		entry("a", "1A"),
		entry("new", "1C"),
	})

	assert.Equal(t, []string{"1A", "1C", "1D"}, addresses(c.entries()))
	got, err := c.at(1)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Label, "last duplicate wins")
}

func TestCacheEntriesIsCopy(t *testing.T) {
	var c contactCache
	c.upsert(entry("a", "1A"))

	snapshot := c.entries()
	snapshot[0].Label = "changed"

	got, _ := c.at(0)
	assert.Equal(t, "a", got.Label)
}

func TestCacheFirstOfType(t *testing.T) {
	var c contactCache
	c.rebuild([]models.ContactEntry{
		entry("a", "1A"),
		models.NewContactEntry("mine", "1C", "", "", models.AddressReceive),
		models.NewContactEntry("mine too", "1E", "", "", models.AddressReceive),
	})

	e, ok := c.firstOfType(models.AddressReceive)
	assert.True(t, ok)
	assert.Equal(t, "1C", e.Address)

	c.removeByAddress("1C")
	c.removeByAddress("1E")
	_, ok = c.firstOfType(models.AddressReceive)
	assert.False(t, ok)
}
