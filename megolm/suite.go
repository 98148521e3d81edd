package megolm

import (
	"github.com/xmtp/vodozemac/internal/protocol/groupcipher"
	"github.com/xmtp/vodozemac/internal/protocol/hashratchet"
	"github.com/xmtp/vodozemac/internal/protocol/wire"
)

// Ratchet is the forward-only key-derivation chain a session draws message
// keys from. State is bound to a 32-bit message index.
type Ratchet interface {
	// Index returns the message index the current state is bound to.
	Index() uint32
	// AdvanceTo moves the state forward to idx. Advancing is irreversible;
	// requests at or below the current index leave the state untouched.
	AdvanceTo(idx uint32)
	// Copy returns an independent duplicate sharing no mutable state.
	Copy() Ratchet
	// Bytes exposes the raw state used to key a Cipher.
	Bytes() []byte
	// Wipe erases the state.
	Wipe()
}

// Cipher is the symmetric half of message decryption, keyed from raw ratchet
// bytes.
type Cipher interface {
	// VerifyMAC checks the truncated MAC tag over message.
	VerifyMAC(message, tag []byte) error
	// Decrypt decrypts ciphertext.
	Decrypt(ciphertext []byte) ([]byte, error)
}

// Message is one decoded group message, exposing its fields and the exact
// byte ranges each authentication layer covers.
type Message interface {
	Index() uint32
	Ciphertext() []byte
	MAC() []byte
	Signature() []byte
	// BytesForMAC is the byte range the MAC covers.
	BytesForMAC() []byte
	// BytesForSigning is the byte range the signature covers.
	BytesForSigning() []byte
}

// Suite bundles the collaborator constructors a session needs.
type Suite interface {
	// NewRatchet builds ratchet state from seed bytes bound to index.
	NewRatchet(seed [RatchetSeedLength]byte, index uint32) Ratchet
	// NewCipher expands raw ratchet bytes into a message cipher.
	NewCipher(key []byte) Cipher
	// DecodeMessage parses the binary form of one group message.
	DecodeMessage(raw []byte) (Message, error)
}

// DefaultSuite returns the standard Megolm collaborators: the four-part
// HMAC-SHA256 hash ratchet, AES-256-CBC with a truncated HMAC MAC, and the
// v3 binary message format.
func DefaultSuite() Suite { return defaultSuite{} }

type defaultSuite struct{}

func (defaultSuite) NewRatchet(seed [RatchetSeedLength]byte, index uint32) Ratchet {
	return defaultRatchet{hashratchet.New(seed, index)}
}

func (defaultSuite) NewCipher(key []byte) Cipher { return groupcipher.New(key) }

func (defaultSuite) DecodeMessage(raw []byte) (Message, error) {
	m, err := wire.Decode(raw)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// defaultRatchet lifts *hashratchet.Ratchet's concrete Copy to the interface.
type defaultRatchet struct {
	*hashratchet.Ratchet
}

func (r defaultRatchet) Copy() Ratchet { return defaultRatchet{r.Ratchet.Copy()} }
