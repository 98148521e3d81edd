package types

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/xmtp/vodozemac"
	"github.com/xmtp/vodozemac/internal/util/memzero"
)

const (
	// Ed25519PublicKeyLength is the byte length of an Ed25519 public key.
	Ed25519PublicKeyLength = ed25519.PublicKeySize
	// Ed25519SignatureLength is the byte length of an Ed25519 signature.
	Ed25519SignatureLength = ed25519.SignatureSize
	// Ed25519SeedLength is the byte length of an Ed25519 private seed, which
	// is also the pickle form of a signing keypair.
	Ed25519SeedLength = ed25519.SeedSize
)

// Ed25519Keypair couples an Ed25519 signing key with the verifying key
// derived from it. The public half is always the one mathematically derived
// from the private half.
type Ed25519Keypair struct {
	secret ed25519.PrivateKey
	public Ed25519PublicKey
}

// NewEd25519Keypair returns a fresh random signing keypair.
func NewEd25519Keypair() (*Ed25519Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	kp := &Ed25519Keypair{secret: priv}
	copy(kp.public[:], pub)
	return kp, nil
}

// PublicKey returns the verifying key for this keypair.
func (k *Ed25519Keypair) PublicKey() Ed25519PublicKey { return k.public }

// Sign signs message with the private key. Signing cannot fail for a
// well-formed keypair; a corrupted key panics rather than returning a bogus
// signature.
func (k *Ed25519Keypair) Sign(message []byte) Ed25519Signature {
	var sig Ed25519Signature
	copy(sig[:], ed25519.Sign(k.secret, message))
	return sig
}

// Pickle returns the at-rest form of the keypair: the raw 32-byte private
// seed inside a container that wipes itself on Destroy.
func (k *Ed25519Keypair) Pickle() *Ed25519KeypairPickle {
	seed := make([]byte, Ed25519SeedLength)
	copy(seed, k.secret.Seed())
	return &Ed25519KeypairPickle{seed: memzero.NewBuffer(seed)}
}

// Wipe erases the private key material. The keypair must not be used after.
func (k *Ed25519Keypair) Wipe() { memzero.Zero(k.secret) }

// Ed25519KeypairPickle is the persistence form of a signing keypair. The
// contained seed is wiped when the pickle is destroyed.
type Ed25519KeypairPickle struct {
	seed *memzero.Buffer
}

// Ed25519KeypairPickleFromSlice copies seed into a new pickle container.
func Ed25519KeypairPickleFromSlice(seed []byte) (*Ed25519KeypairPickle, error) {
	if len(seed) != Ed25519SeedLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeyLength, Ed25519SeedLength, len(seed))
	}
	owned := make([]byte, Ed25519SeedLength)
	copy(owned, seed)
	return &Ed25519KeypairPickle{seed: memzero.NewBuffer(owned)}, nil
}

// Bytes exposes the raw seed. It is only valid until Destroy.
func (p *Ed25519KeypairPickle) Bytes() []byte { return p.seed.Bytes() }

// Destroy wipes the seed.
func (p *Ed25519KeypairPickle) Destroy() { p.seed.Destroy() }

// Ed25519KeypairFromPickle rebuilds a keypair from its pickle, re-deriving
// the public key from the seed. The pickle stays valid; the caller still owns
// its destruction.
func Ed25519KeypairFromPickle(p *Ed25519KeypairPickle) (*Ed25519Keypair, error) {
	if p.seed.Len() != Ed25519SeedLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeyLength, Ed25519SeedLength, p.seed.Len())
	}
	secret := ed25519.NewKeyFromSeed(p.Bytes())
	kp := &Ed25519Keypair{secret: secret}
	copy(kp.public[:], secret.Public().(ed25519.PublicKey))
	return kp, nil
}

// Ed25519PublicKey is an Ed25519 verifying key.
type Ed25519PublicKey [Ed25519PublicKeyLength]byte

// Ed25519PublicKeyFromSlice builds a public key from exactly 32 bytes.
//
// Only the length is checked here; crypto/ed25519 has no parse-time point
// validation, so a 32-byte non-canonical encoding is accepted and only
// surfaces later as ErrSignatureInvalid from Verify.
func Ed25519PublicKeyFromSlice(b []byte) (Ed25519PublicKey, error) {
	var pub Ed25519PublicKey
	if len(b) != Ed25519PublicKeyLength {
		return pub, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeyLength, Ed25519PublicKeyLength, len(b))
	}
	copy(pub[:], b)
	return pub, nil
}

// Ed25519PublicKeyFromBase64 decodes an unpadded base64 public key.
func Ed25519PublicKeyFromBase64(s string) (Ed25519PublicKey, error) {
	b, err := vodozemac.Base64Decode(s)
	if err != nil {
		return Ed25519PublicKey{}, err
	}
	return Ed25519PublicKeyFromSlice(b)
}

// Slice returns the key as a []byte.
func (p Ed25519PublicKey) Slice() []byte { return p[:] }

// ToBase64 returns the unpadded base64 form of the key.
func (p Ed25519PublicKey) ToBase64() string { return vodozemac.Base64Encode(p[:]) }

// Verify reports whether sig is a valid signature over message by the private
// key matching this public key.
func (p Ed25519PublicKey) Verify(message []byte, sig Ed25519Signature) error {
	if !ed25519.Verify(ed25519.PublicKey(p[:]), message, sig[:]) {
		return ErrSignatureInvalid
	}
	return nil
}

func (p Ed25519PublicKey) String() string { return "ed25519:" + p.ToBase64() }

// Ed25519Signature is an Ed25519 digital signature.
type Ed25519Signature [Ed25519SignatureLength]byte

// Ed25519SignatureFromSlice builds a signature from exactly 64 bytes.
func Ed25519SignatureFromSlice(b []byte) (Ed25519Signature, error) {
	var sig Ed25519Signature
	if len(b) != Ed25519SignatureLength {
		return sig, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignatureLength, Ed25519SignatureLength, len(b))
	}
	copy(sig[:], b)
	return sig, nil
}

// Ed25519SignatureFromBase64 decodes an unpadded base64 signature.
func Ed25519SignatureFromBase64(s string) (Ed25519Signature, error) {
	b, err := vodozemac.Base64Decode(s)
	if err != nil {
		return Ed25519Signature{}, err
	}
	return Ed25519SignatureFromSlice(b)
}

// Slice returns the signature as a []byte.
func (s Ed25519Signature) Slice() []byte { return s[:] }

// ToBase64 returns the unpadded base64 form of the signature.
func (s Ed25519Signature) ToBase64() string { return vodozemac.Base64Encode(s[:]) }

func (s Ed25519Signature) String() string { return "ed25519:" + s.ToBase64() }
