package types

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/curve25519"

	"github.com/xmtp/vodozemac"
	"github.com/xmtp/vodozemac/internal/util/memzero"
)

// Curve25519KeyLength is the byte length of Curve25519 keys, public and
// private alike.
const Curve25519KeyLength = 32

// Curve25519PublicKey is an X25519 public point.
type Curve25519PublicKey [Curve25519KeyLength]byte

// Curve25519PublicKeyFromSlice builds a public key from exactly 32 bytes.
func Curve25519PublicKeyFromSlice(b []byte) (Curve25519PublicKey, error) {
	var pub Curve25519PublicKey
	if len(b) != Curve25519KeyLength {
		return pub, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeyLength, Curve25519KeyLength, len(b))
	}
	copy(pub[:], b)
	return pub, nil
}

// Curve25519PublicKeyFromBase64 decodes an unpadded base64 public key.
func Curve25519PublicKeyFromBase64(s string) (Curve25519PublicKey, error) {
	b, err := vodozemac.Base64Decode(s)
	if err != nil {
		return Curve25519PublicKey{}, err
	}
	return Curve25519PublicKeyFromSlice(b)
}

// Slice returns the key as a []byte.
func (p Curve25519PublicKey) Slice() []byte { return p[:] }

// ToBase64 returns the unpadded base64 form of the key.
func (p Curve25519PublicKey) ToBase64() string { return vodozemac.Base64Encode(p[:]) }

func (p Curve25519PublicKey) String() string { return "curve25519:" + p.ToBase64() }

// Curve25519Keypair owns an X25519 private scalar and the public point
// derived from it.
type Curve25519Keypair struct {
	secret [Curve25519KeyLength]byte
	public Curve25519PublicKey
}

// NewCurve25519Keypair returns a fresh keypair. The private scalar is clamped
// per RFC 7748.
func NewCurve25519Keypair() (*Curve25519Keypair, error) {
	var kp Curve25519Keypair
	if _, err := rand.Read(kp.secret[:]); err != nil {
		return nil, err
	}
	clampCurve25519(&kp.secret)
	pub, err := curve25519.X25519(kp.secret[:], curve25519.Basepoint)
	if err != nil {
		return nil, err
	}
	copy(kp.public[:], pub)
	return &kp, nil
}

// PublicKey returns the public point for this keypair.
func (k *Curve25519Keypair) PublicKey() Curve25519PublicKey { return k.public }

// DH computes the X25519 shared secret with peer.
func (k *Curve25519Keypair) DH(peer Curve25519PublicKey) ([Curve25519KeyLength]byte, error) {
	var out [Curve25519KeyLength]byte
	secret, err := curve25519.X25519(k.secret[:], peer.Slice())
	if err != nil {
		return out, err
	}
	copy(out[:], secret)
	return out, nil
}

// Pickle returns the at-rest form of the keypair: the private scalar and the
// public point. The scalar is wiped on Destroy.
func (k *Curve25519Keypair) Pickle() *Curve25519KeypairPickle {
	secret := make([]byte, Curve25519KeyLength)
	copy(secret, k.secret[:])
	return &Curve25519KeypairPickle{secret: memzero.NewBuffer(secret), public: k.public}
}

// Wipe erases the private scalar. The keypair must not be used after.
func (k *Curve25519Keypair) Wipe() { memzero.Zero(k.secret[:]) }

// Curve25519KeypairPickle is the persistence form of a Diffie-Hellman
// keypair: {secret, public}. Only the secret half is wiped on Destroy.
type Curve25519KeypairPickle struct {
	secret *memzero.Buffer
	public Curve25519PublicKey
}

// Curve25519KeypairPickleFromParts copies secret and pairs it with public.
func Curve25519KeypairPickleFromParts(secret []byte, public Curve25519PublicKey) (*Curve25519KeypairPickle, error) {
	if len(secret) != Curve25519KeyLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeyLength, Curve25519KeyLength, len(secret))
	}
	owned := make([]byte, Curve25519KeyLength)
	copy(owned, secret)
	return &Curve25519KeypairPickle{secret: memzero.NewBuffer(owned), public: public}, nil
}

// SecretBytes exposes the private scalar. It is only valid until Destroy.
func (p *Curve25519KeypairPickle) SecretBytes() []byte { return p.secret.Bytes() }

// PublicKey returns the public point stored in the pickle.
func (p *Curve25519KeypairPickle) PublicKey() Curve25519PublicKey { return p.public }

// Destroy wipes the private scalar.
func (p *Curve25519KeypairPickle) Destroy() { p.secret.Destroy() }

// Curve25519KeypairFromPickle rebuilds a keypair from its pickle. The pickle
// stays valid; the caller still owns its destruction.
func Curve25519KeypairFromPickle(p *Curve25519KeypairPickle) (*Curve25519Keypair, error) {
	if p.secret.Len() != Curve25519KeyLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeyLength, Curve25519KeyLength, p.secret.Len())
	}
	kp := &Curve25519Keypair{public: p.public}
	copy(kp.secret[:], p.SecretBytes())
	return kp, nil
}

func clampCurve25519(k *[Curve25519KeyLength]byte) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}
