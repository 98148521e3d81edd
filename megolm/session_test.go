package megolm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmtp/vodozemac"
	"github.com/xmtp/vodozemac/internal/protocol/groupcipher"
	"github.com/xmtp/vodozemac/internal/protocol/hashratchet"
	"github.com/xmtp/vodozemac/internal/protocol/wire"
	"github.com/xmtp/vodozemac/types"
)

func newTestSession(t *testing.T, kp *types.Ed25519Keypair, seed [RatchetSeedLength]byte, index uint32) *InboundGroupSession {
	t.Helper()
	s, err := NewInboundGroupSession(DefaultSuite(), makeSessionKey(t, kp, seed, index))
	require.NoError(t, err)
	return s
}

func TestDecryptRoundTrip(t *testing.T) {
	kp := makeKeypair(t)
	seed := testSeed(0x11)
	s := newTestSession(t, kp, seed, 0)

	got, err := s.Decrypt(encryptAt(t, kp, seed, 0, 0, []byte("It's a secret to everybody")))
	require.NoError(t, err)

	assert.Equal(t, "It's a secret to everybody", got.Plaintext)
	assert.Equal(t, uint32(0), got.MessageIndex)
}

func TestDecryptOutOfOrder(t *testing.T) {
	kp := makeKeypair(t)
	seed := testSeed(0x22)
	s := newTestSession(t, kp, seed, 0)

	// Forward with a gap, then backwards inside the reachable window, then
	// the anchor itself, twice.
	for _, index := range []uint32{5, 3, 0, 0} {
		got, err := s.Decrypt(encryptAt(t, kp, seed, 0, index, []byte("hello")))
		require.NoError(t, err, "index %d", index)
		assert.Equal(t, index, got.MessageIndex)
	}

	// The anchor never moves; the working copy sits where the last
	// non-anchor request left it.
	assert.Equal(t, uint32(0), s.initialRatchet.Index())
	assert.Equal(t, uint32(3), s.latestRatchet.Index())
}

func TestDecryptMonotonicAdvance(t *testing.T) {
	kp := makeKeypair(t)
	seed := testSeed(0x33)
	s := newTestSession(t, kp, seed, 0)

	for _, index := range []uint32{1, 7, 300} {
		_, err := s.Decrypt(encryptAt(t, kp, seed, 0, index, []byte("m")))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, s.latestRatchet.Index(), index)
	}
}

func TestDecryptBelowFirstKnownIndex(t *testing.T) {
	kp := makeKeypair(t)
	s := newTestSession(t, kp, testSeed(0x44), 10)
	latestBefore := s.latestRatchet.Index()

	_, err := s.Decrypt(signedMessageAt(t, kp, 5))

	var uerr *UnknownMessageIndexError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, uint32(10), uerr.FirstKnown)
	assert.Equal(t, uint32(5), uerr.Requested)
	assert.Equal(t, latestBefore, s.latestRatchet.Index())
}

func TestDecryptSignatureCheckedBeforeRatchetLookup(t *testing.T) {
	kp := makeKeypair(t)
	other := makeKeypair(t)
	seed := testSeed(0x55)
	s := newTestSession(t, kp, seed, 0)

	// Signed by the wrong key: rejected before any ratchet movement, even
	// though the index is reachable.
	_, err := s.Decrypt(encryptAt(t, other, seed, 0, 50, []byte("m")))

	assert.ErrorIs(t, err, types.ErrSignatureInvalid)
	assert.Equal(t, uint32(0), s.latestRatchet.Index())
}

func TestDecryptTamperedSignature(t *testing.T) {
	kp := makeKeypair(t)
	seed := testSeed(0x66)
	s := newTestSession(t, kp, seed, 0)

	raw, err := vodozemac.Base64Decode(encryptAt(t, kp, seed, 0, 1, []byte("m")))
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01

	_, err = s.Decrypt(vodozemac.Base64Encode(raw))
	assert.ErrorIs(t, err, types.ErrSignatureInvalid)
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	kp := makeKeypair(t)
	seed := testSeed(0x77)
	s := newTestSession(t, kp, seed, 0)

	raw, err := vodozemac.Base64Decode(encryptAt(t, kp, seed, 0, 1, []byte("m")))
	require.NoError(t, err)
	// The ciphertext sits between the header and the trailer; the signature
	// covers it, so tampering trips the signature check.
	raw[5] ^= 0x01

	_, err = s.Decrypt(vodozemac.Base64Encode(raw))
	assert.ErrorIs(t, err, types.ErrSignatureInvalid)
}

func TestDecryptInvalidMAC(t *testing.T) {
	kp := makeKeypair(t)
	seed := testSeed(0x88)
	s := newTestSession(t, kp, seed, 0)

	// A wrong MAC covered by a valid signature isolates the MAC check.
	r := hashratchet.New(seed, 0)
	c := groupcipher.New(r.Bytes())
	body := wire.EncodeBody(0, c.Encrypt([]byte("m")))
	body = append(body, make([]byte, 8)...)
	sig := kp.Sign(body)
	msg := vodozemac.Base64Encode(append(body, sig.Slice()...))

	_, err := s.Decrypt(msg)
	assert.ErrorIs(t, err, ErrInvalidMAC)
}

func TestDecryptInvalidCiphertext(t *testing.T) {
	kp := makeKeypair(t)
	seed := testSeed(0x99)
	s := newTestSession(t, kp, seed, 0)

	// Correct MAC and signature over a ciphertext whose padding is broken:
	// only the cipher itself can reject it.
	r := hashratchet.New(seed, 0)
	c := groupcipher.New(r.Bytes())
	ct := c.Encrypt([]byte("exactly sixteen!"))[:16]
	body := wire.EncodeBody(0, ct)
	body = append(body, c.MAC(body)...)
	sig := kp.Sign(body)
	msg := vodozemac.Base64Encode(append(body, sig.Slice()...))

	_, err := s.Decrypt(msg)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestDecryptUndecodableMessage(t *testing.T) {
	kp := makeKeypair(t)
	s := newTestSession(t, kp, testSeed(0xaa), 0)

	_, err := s.Decrypt(vodozemac.Base64Encode([]byte("too short to be a message")))
	assert.ErrorIs(t, err, ErrMessageDecode)
}

func TestDecryptLossyPlaintext(t *testing.T) {
	kp := makeKeypair(t)
	seed := testSeed(0xbb)
	s := newTestSession(t, kp, seed, 0)

	got, err := s.Decrypt(encryptAt(t, kp, seed, 0, 0, []byte{0xff, 0xfe, 'h', 'i'}))
	require.NoError(t, err)

	assert.True(t, strings.Contains(got.Plaintext, "�"))
	assert.True(t, strings.HasSuffix(got.Plaintext, "hi"))
}

func TestExportAt(t *testing.T) {
	kp := makeKeypair(t)
	seed := testSeed(0xcc)
	s := newTestSession(t, kp, seed, 0)

	exported, err := s.ExportAt(3)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), exported.Index)
	assert.Equal(t, kp.PublicKey(), exported.SigningKey)

	want := hashratchet.New(seed, 0)
	want.AdvanceTo(3)
	assert.Equal(t, want.Bytes(), exported.RatchetSeed[:])

	// The encoded form is the session key layout without the signature.
	raw, err := vodozemac.Base64Decode(exported.Encode())
	require.NoError(t, err)
	require.Len(t, raw, 165)
	assert.Equal(t, SessionKeyVersion, raw[0])
	assert.Equal(t, []byte{3, 0, 0, 0}, raw[1:5])
	assert.Equal(t, kp.PublicKey().Slice(), raw[133:])
}

func TestExportAtAnchorReturnsOriginalSeed(t *testing.T) {
	kp := makeKeypair(t)
	seed := testSeed(0xdd)
	s := newTestSession(t, kp, seed, 4)

	// Even after the working copy has moved ahead.
	_, err := s.Decrypt(encryptAt(t, kp, seed, 4, 9, []byte("m")))
	require.NoError(t, err)

	exported, err := s.ExportAt(4)
	require.NoError(t, err)
	assert.Equal(t, seed, exported.RatchetSeed)
}

func TestExportAtUnknownIndex(t *testing.T) {
	kp := makeKeypair(t)
	s := newTestSession(t, kp, testSeed(0xee), 8)

	_, err := s.ExportAt(2)

	var uerr *UnknownMessageIndexError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, uint32(8), uerr.FirstKnown)
	assert.Equal(t, uint32(2), uerr.Requested)
}

func TestFirstKnownIndex(t *testing.T) {
	kp := makeKeypair(t)
	s := newTestSession(t, kp, testSeed(0x10), 21)
	assert.Equal(t, uint32(21), s.FirstKnownIndex())
}
