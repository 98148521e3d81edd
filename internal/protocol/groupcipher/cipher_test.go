package groupcipher_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmtp/vodozemac/internal/protocol/groupcipher"
)

func testCipher() *groupcipher.Cipher {
	return groupcipher.New(bytes.Repeat([]byte{0x42}, 128))
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := testCipher()
	for _, pt := range [][]byte{nil, []byte("a"), []byte("exactly sixteen!"), bytes.Repeat([]byte{0xaa}, 100)} {
		got, err := c.Decrypt(c.Encrypt(pt))
		require.NoError(t, err)
		assert.Equal(t, []byte(pt), append([]byte(nil), got...))
	}
}

func TestKeyedDeterministically(t *testing.T) {
	a := groupcipher.New(bytes.Repeat([]byte{1}, 128))
	b := groupcipher.New(bytes.Repeat([]byte{1}, 128))
	other := groupcipher.New(bytes.Repeat([]byte{2}, 128))

	pt := []byte("same key, same bytes")
	assert.Equal(t, a.Encrypt(pt), b.Encrypt(pt))
	assert.NotEqual(t, a.Encrypt(pt), other.Encrypt(pt))
}

func TestVerifyMAC(t *testing.T) {
	c := testCipher()
	msg := []byte("authenticated region")
	tag := c.MAC(msg)

	require.Len(t, tag, groupcipher.MACLength)
	require.NoError(t, c.VerifyMAC(msg, tag))

	tag[0] ^= 1
	assert.ErrorIs(t, c.VerifyMAC(msg, tag), groupcipher.ErrMACMismatch)

	tag[0] ^= 1
	msg[0] ^= 1
	assert.ErrorIs(t, c.VerifyMAC(msg, tag), groupcipher.ErrMACMismatch)
}

func TestDecryptRejectsUnalignedInput(t *testing.T) {
	c := testCipher()
	_, err := c.Decrypt([]byte{1, 2, 3})
	assert.ErrorIs(t, err, groupcipher.ErrNotBlockAligned)

	_, err = c.Decrypt(nil)
	assert.ErrorIs(t, err, groupcipher.ErrNotBlockAligned)
}

func TestDecryptRejectsBadPadding(t *testing.T) {
	c := testCipher()
	// One full plaintext block encrypts to two blocks; keeping only the first
	// makes the final decrypted byte '!' (0x21), which is not valid padding.
	ct := c.Encrypt([]byte("exactly sixteen!"))[:16]

	_, err := c.Decrypt(ct)
	assert.ErrorIs(t, err, groupcipher.ErrBadPadding)
}
