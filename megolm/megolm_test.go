package megolm

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xmtp/vodozemac"
	"github.com/xmtp/vodozemac/internal/protocol/groupcipher"
	"github.com/xmtp/vodozemac/internal/protocol/hashratchet"
	"github.com/xmtp/vodozemac/internal/protocol/wire"
	"github.com/xmtp/vodozemac/types"
)

// makeKeypair returns a fresh signing keypair.
func makeKeypair(t *testing.T) *types.Ed25519Keypair {
	t.Helper()
	kp, err := types.NewEd25519Keypair()
	require.NoError(t, err)
	return kp
}

// makeSessionKey serializes and signs a session key anchored at index.
func makeSessionKey(t *testing.T, kp *types.Ed25519Keypair, seed [RatchetSeedLength]byte, index uint32) string {
	t.Helper()
	buf := make([]byte, 0, 229)
	buf = append(buf, SessionKeyVersion)
	buf = binary.LittleEndian.AppendUint32(buf, index)
	buf = append(buf, seed[:]...)
	buf = append(buf, kp.PublicKey().Slice()...)
	sig := kp.Sign(buf)
	return vodozemac.Base64Encode(append(buf, sig.Slice()...))
}

// encryptAt produces a fully valid message at index on the chain that seed
// anchors at anchorIndex.
func encryptAt(t *testing.T, kp *types.Ed25519Keypair, seed [RatchetSeedLength]byte, anchorIndex, index uint32, plaintext []byte) string {
	t.Helper()
	r := hashratchet.New(seed, anchorIndex)
	r.AdvanceTo(index)
	c := groupcipher.New(r.Bytes())

	body := wire.EncodeBody(index, c.Encrypt(plaintext))
	body = append(body, c.MAC(body)...)
	sig := kp.Sign(body)
	return vodozemac.Base64Encode(append(body, sig.Slice()...))
}

// signedMessageAt produces a message whose signature is valid but whose
// ciphertext and MAC are garbage, for exercising failures past the signature
// check.
func signedMessageAt(t *testing.T, kp *types.Ed25519Keypair, index uint32) string {
	t.Helper()
	body := wire.EncodeBody(index, []byte("not a real ciphertext"))
	body = append(body, make([]byte, 8)...)
	sig := kp.Sign(body)
	return vodozemac.Base64Encode(append(body, sig.Slice()...))
}

func testSeed(b byte) (seed [RatchetSeedLength]byte) {
	for i := range seed {
		seed[i] = b
	}
	return seed
}
