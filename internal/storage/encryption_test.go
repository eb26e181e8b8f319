package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt(t *testing.T) {
	data := []byte("contact book")

	enc, err := Encrypt(data, "pw")
	require.NoError(t, err)

	plain, err := Decrypt(enc, "pw")
	require.NoError(t, err)
	assert.Equal(t, data, plain)

	_, err = Decrypt(enc, "other")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestSealOpen(t *testing.T) {
	type payload struct {
		Index uint32 `json:"index"`
	}

	sealed, err := Seal(payload{Index: 7}, "pw")
	require.NoError(t, err)

	var out payload
	require.NoError(t, Open(sealed, "pw", &out))
	assert.Equal(t, uint32(7), out.Index)

	assert.ErrorIs(t, Open(sealed, "", &out), ErrPasswordRequired)
}
