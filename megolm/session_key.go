package megolm

import (
	"encoding/binary"

	"github.com/xmtp/vodozemac"
	"github.com/xmtp/vodozemac/types"
)

const (
	// SessionKeyVersion is the single supported session key format version.
	SessionKeyVersion byte = 1

	// RatchetSeedLength is the byte length of the ratchet state carried in a
	// session key.
	RatchetSeedLength = 128

	versionLength = 1
	indexLength   = 4
)

// SessionKey is a parsed, signature-checked bootstrap blob: the starting
// index and ratchet state a sender shared to let this side decrypt from that
// point on, plus the Ed25519 key that signed it.
type SessionKey struct {
	Index       uint32
	RatchetSeed [RatchetSeedLength]byte
	SigningKey  types.Ed25519PublicKey
}

// ParseSessionKey base64-decodes and validates a session key.
//
// The binary layout is one version byte, a little-endian uint32 starting
// index, the ratchet seed, the signing public key and a trailing signature
// over everything before it. A key that fails any check, including the
// signature, is discarded whole.
func ParseSessionKey(encoded string) (*SessionKey, error) {
	decoded, err := vodozemac.Base64Decode(encoded)
	if err != nil {
		return nil, err
	}
	c := cursor{buf: decoded}

	version, err := c.readByte()
	if err != nil {
		return nil, err
	}
	if version != SessionKeyVersion {
		return nil, &VersionError{Expected: SessionKeyVersion, Actual: version}
	}

	indexBytes, err := c.read(indexLength)
	if err != nil {
		return nil, err
	}
	seed, err := c.read(RatchetSeedLength)
	if err != nil {
		return nil, err
	}
	keyBytes, err := c.read(types.Ed25519PublicKeyLength)
	if err != nil {
		return nil, err
	}
	sigBytes, err := c.read(types.Ed25519SignatureLength)
	if err != nil {
		return nil, err
	}

	signingKey, err := types.Ed25519PublicKeyFromSlice(keyBytes)
	if err != nil {
		return nil, err
	}
	signature, err := types.Ed25519SignatureFromSlice(sigBytes)
	if err != nil {
		return nil, err
	}

	signed := decoded[:len(decoded)-types.Ed25519SignatureLength]
	if err := signingKey.Verify(signed, signature); err != nil {
		return nil, err
	}

	key := &SessionKey{
		Index:      binary.LittleEndian.Uint32(indexBytes),
		SigningKey: signingKey,
	}
	copy(key.RatchetSeed[:], seed)
	return key, nil
}

// ExportedSessionKey is a session re-anchored at a chosen index, for sharing
// from-this-point-forward history with a new recipient.
//
// An inbound session holds no signing secret, so the exported blob carries no
// trailing signature. Whoever holds the original Ed25519 private key must
// countersign it before a recipient can treat it as authentic.
type ExportedSessionKey struct {
	Index       uint32
	RatchetSeed [RatchetSeedLength]byte
	SigningKey  types.Ed25519PublicKey
}

// Encode serializes the exported key as unpadded base64: version byte,
// little-endian index, ratchet state, signing public key. No signature.
func (k *ExportedSessionKey) Encode() string {
	buf := make([]byte, 0, versionLength+indexLength+RatchetSeedLength+types.Ed25519PublicKeyLength)
	buf = append(buf, SessionKeyVersion)
	buf = binary.LittleEndian.AppendUint32(buf, k.Index)
	buf = append(buf, k.RatchetSeed[:]...)
	buf = append(buf, k.SigningKey.Slice()...)
	return vodozemac.Base64Encode(buf)
}

// cursor reads fixed-size fields off a byte buffer in order.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) read(n int) ([]byte, error) {
	if len(c.buf)-c.off < n {
		return nil, ErrSessionKeyTruncated
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *cursor) readByte() (byte, error) {
	b, err := c.read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}
