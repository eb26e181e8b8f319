package wallet

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhystmorgan/veContacts/internal/storage"
	"rhystmorgan/veContacts/internal/validation"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestImportKeyringRejectsInvalidMnemonic(t *testing.T) {
	_, err := ImportKeyring("", "not a real mnemonic", "pw", nil)
	assert.ErrorIs(t, err, ErrInvalidMnemonic)
}

func TestGenerateReceivingAddress(t *testing.T) {
	k, err := ImportKeyring("", testMnemonic, "pw", nil)
	require.NoError(t, err)

	first, err := k.GenerateReceivingAddress()
	require.NoError(t, err)
	second, err := k.GenerateReceivingAddress()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, validation.NewAddressValidator(true).IsValidAddress(first))
	assert.True(t, k.IsMine(first))
	assert.True(t, k.IsMine(second))
	assert.False(t, k.IsMine("0x0000000000000000000000000000000000000000"))
	assert.Equal(t, []string{first, second}, k.Addresses())
}

func TestGenerationIsDeterministic(t *testing.T) {
	a, err := ImportKeyring("", testMnemonic, "pw", nil)
	require.NoError(t, err)
	b, err := ImportKeyring("", testMnemonic, "other", nil)
	require.NoError(t, err)

	addrA, err := a.GenerateReceivingAddress()
	require.NoError(t, err)
	addrB, err := b.GenerateReceivingAddress()
	require.NoError(t, err)

	assert.Equal(t, addrA, addrB)
}

func TestLockedKeyringCannotGenerate(t *testing.T) {
	k, err := ImportKeyring("", testMnemonic, "pw", nil)
	require.NoError(t, err)

	k.Lock()
	assert.True(t, k.IsLocked())

	_, err = k.GenerateReceivingAddress()
	assert.ErrorIs(t, err, ErrLocked)
}

func TestTryUnlock(t *testing.T) {
	k, err := ImportKeyring("", testMnemonic, "pw", nil)
	require.NoError(t, err)
	k.Lock()

	assert.False(t, k.TryUnlock(), "no prompt configured")

	k.SetPasswordPrompt(func() (string, bool) { return "", false })
	assert.False(t, k.TryUnlock(), "prompt declined")

	k.SetPasswordPrompt(func() (string, bool) { return "wrong", true })
	assert.False(t, k.TryUnlock(), "wrong password")

	k.SetPasswordPrompt(func() (string, bool) { return "pw", true })
	assert.True(t, k.TryUnlock())
	assert.False(t, k.IsLocked())
}

func TestKeyringPersistsIndexAndAddresses(t *testing.T) {
	path := filepath.Join(t.TempDir(), KeyringFile)

	k, mnemonic, err := CreateKeyring(path, "pw", nil)
	require.NoError(t, err)
	require.NotEmpty(t, mnemonic)

	first, err := k.GenerateReceivingAddress()
	require.NoError(t, err)

	reopened, err := OpenKeyring(path, nil)
	require.NoError(t, err)
	assert.True(t, reopened.IsLocked())
	assert.True(t, reopened.IsMine(first))

	err = reopened.Unlock("wrong")
	assert.True(t, errors.Is(err, storage.ErrInvalidPassword))

	require.NoError(t, reopened.Unlock("pw"))
	second, err := reopened.GenerateReceivingAddress()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestOpenKeyringMissingFile(t *testing.T) {
	_, err := OpenKeyring(filepath.Join(t.TempDir(), KeyringFile), nil)
	assert.ErrorIs(t, err, ErrNoKeyring)
}
