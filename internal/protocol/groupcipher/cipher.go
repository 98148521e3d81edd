// Package groupcipher is the symmetric half of group message decryption. Raw
// ratchet state expands through HKDF-SHA256 into an AES-256 key, an HMAC key
// and an IV; messages carry an HMAC-SHA256 MAC truncated to 8 bytes over the
// authenticated region and an AES-256-CBC ciphertext with PKCS#7 padding.
package groupcipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/xmtp/vodozemac/internal/util/memzero"
)

const (
	aesKeyLength = 32
	macKeyLength = 32
	ivLength     = 16

	// MACLength is the truncated MAC size carried on the wire.
	MACLength = 8
)

var kdfInfo = []byte("MEGOLM_KEYS")

var (
	// ErrMACMismatch is returned when the truncated MAC does not match.
	ErrMACMismatch = errors.New("MAC mismatch")
	// ErrNotBlockAligned is returned for ciphertext that cannot be CBC.
	ErrNotBlockAligned = errors.New("ciphertext length is not a multiple of the block size")
	// ErrBadPadding is returned when decrypted PKCS#7 padding is malformed.
	ErrBadPadding = errors.New("invalid padding")
)

// Cipher holds the expanded key schedule for one ratchet position.
type Cipher struct {
	aesKey [aesKeyLength]byte
	macKey [macKeyLength]byte
	iv     [ivLength]byte
}

// New expands key (the raw ratchet bytes) into the cipher's key schedule.
func New(key []byte) *Cipher {
	c := &Cipher{}
	buf := make([]byte, aesKeyLength+macKeyLength+ivLength)
	r := hkdf.New(sha256.New, key, nil, kdfInfo)
	if _, err := io.ReadFull(r, buf); err != nil {
		// HKDF cannot fail for an output this short.
		panic(err)
	}
	copy(c.aesKey[:], buf)
	copy(c.macKey[:], buf[aesKeyLength:])
	copy(c.iv[:], buf[aesKeyLength+macKeyLength:])
	memzero.Zero(buf)
	return c
}

// MAC computes the truncated HMAC-SHA256 tag over message.
func (c *Cipher) MAC(message []byte) []byte {
	mac := hmac.New(sha256.New, c.macKey[:])
	mac.Write(message)
	return mac.Sum(nil)[:MACLength]
}

// VerifyMAC checks tag against the truncated MAC over message.
func (c *Cipher) VerifyMAC(message, tag []byte) error {
	if !hmac.Equal(c.MAC(message), tag) {
		return ErrMACMismatch
	}
	return nil
}

// Encrypt CBC-encrypts plaintext with PKCS#7 padding.
func (c *Cipher) Encrypt(plaintext []byte) []byte {
	pad := aes.BlockSize - len(plaintext)%aes.BlockSize
	buf := make([]byte, len(plaintext)+pad)
	copy(buf, plaintext)
	for i := len(plaintext); i < len(buf); i++ {
		buf[i] = byte(pad)
	}
	cipher.NewCBCEncrypter(c.block(), c.iv[:]).CryptBlocks(buf, buf)
	return buf
}

// Decrypt CBC-decrypts ciphertext and strips the PKCS#7 padding.
func (c *Cipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrNotBlockAligned
	}
	buf := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block(), c.iv[:]).CryptBlocks(buf, ciphertext)

	pad := int(buf[len(buf)-1])
	if pad == 0 || pad > aes.BlockSize || pad > len(buf) {
		return nil, ErrBadPadding
	}
	for _, b := range buf[len(buf)-pad:] {
		if int(b) != pad {
			return nil, ErrBadPadding
		}
	}
	return buf[:len(buf)-pad], nil
}

// Wipe erases the key schedule.
func (c *Cipher) Wipe() {
	memzero.Zero(c.aesKey[:])
	memzero.Zero(c.macKey[:])
	memzero.Zero(c.iv[:])
}

func (c *Cipher) block() cipher.Block {
	block, err := aes.NewCipher(c.aesKey[:])
	if err != nil {
		// The key length is fixed at 32 bytes.
		panic(err)
	}
	return block
}
