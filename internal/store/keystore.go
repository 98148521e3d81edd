// Package store persists pickled key material and sessions on disk,
// encrypted under a passphrase.
//
// Each artifact is sealed with ChaCha20-Poly1305 under an scrypt-derived key
// inside a versioned JSON envelope, and written atomically via a temp file
// plus rename. The plaintext pickles are wiped as soon as they are sealed or
// consumed.
package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/xmtp/vodozemac/internal/util/memzero"
	"github.com/xmtp/vodozemac/megolm"
	"github.com/xmtp/vodozemac/types"
)

const (
	// envelopeVersion is the current supported version of the sealed blob
	// format stored on disk.
	envelopeVersion = 1

	signingKeyFile = "ed25519.pickle.enc"
	dhKeyFile      = "curve25519.pickle.enc"
	sessionSuffix  = ".session.enc"
)

var (
	// ErrWrongPassphrase is returned when the passphrase is incorrect or the
	// stored blob was modified or corrupted.
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted key store")
	// ErrNotFound is returned when no artifact has been stored under the
	// requested name.
	ErrNotFound = errors.New("not found in key store")
	// ErrBadName is returned for session names that cannot be file names.
	ErrBadName = errors.New("invalid session name")
)

// envelope is the on-disk JSON structure holding the ciphertext and KDF
// parameters.
type envelope struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// dhBlob is the CBOR layer between a Curve25519 pickle and the envelope.
type dhBlob struct {
	Secret []byte `cbor:"secret"`
	Public []byte `cbor:"public"`
}

// KeyStore stores pickled keypairs and sessions in a directory.
type KeyStore struct {
	dir string
	mu  sync.Mutex
}

// New returns a key store rooted at dir. The directory must exist.
func New(dir string) *KeyStore { return &KeyStore{dir: dir} }

// SaveSigningKeypair seals kp's pickle (the raw private seed) under
// passphrase.
func (s *KeyStore) SaveSigningKeypair(passphrase string, kp *types.Ed25519Keypair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pickle := kp.Pickle()
	defer pickle.Destroy()
	return s.sealToFile(signingKeyFile, passphrase, pickle.Bytes())
}

// LoadSigningKeypair opens and rebuilds the stored signing keypair.
func (s *KeyStore) LoadSigningKeypair(passphrase string) (*types.Ed25519Keypair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.openFromFile(signingKeyFile, passphrase)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(raw)

	pickle, err := types.Ed25519KeypairPickleFromSlice(raw)
	if err != nil {
		return nil, err
	}
	defer pickle.Destroy()
	return types.Ed25519KeypairFromPickle(pickle)
}

// SaveDHKeypair seals kp's pickle ({secret, public}) under passphrase.
func (s *KeyStore) SaveDHKeypair(passphrase string, kp *types.Curve25519Keypair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pickle := kp.Pickle()
	defer pickle.Destroy()

	raw, err := cbor.Marshal(dhBlob{
		Secret: pickle.SecretBytes(),
		Public: pickle.PublicKey().Slice(),
	})
	if err != nil {
		return err
	}
	defer memzero.Zero(raw)
	return s.sealToFile(dhKeyFile, passphrase, raw)
}

// LoadDHKeypair opens and rebuilds the stored Diffie-Hellman keypair.
func (s *KeyStore) LoadDHKeypair(passphrase string) (*types.Curve25519Keypair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.openFromFile(dhKeyFile, passphrase)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(raw)

	var blob dhBlob
	if err := cbor.Unmarshal(raw, &blob); err != nil {
		return nil, err
	}
	defer memzero.Zero(blob.Secret)

	public, err := types.Curve25519PublicKeyFromSlice(blob.Public)
	if err != nil {
		return nil, err
	}
	pickle, err := types.Curve25519KeypairPickleFromParts(blob.Secret, public)
	if err != nil {
		return nil, err
	}
	defer pickle.Destroy()
	return types.Curve25519KeypairFromPickle(pickle)
}

// SaveSession seals sess's pickle under passphrase, keyed by name.
func (s *KeyStore) SaveSession(passphrase, name string, sess *megolm.InboundGroupSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := sessionFile(name)
	if err != nil {
		return err
	}

	pickle := sess.Pickle()
	defer pickle.Destroy()

	raw, err := pickle.Marshal()
	if err != nil {
		return err
	}
	defer memzero.Zero(raw)
	return s.sealToFile(file, passphrase, raw)
}

// LoadSession opens and rebuilds the session stored under name, using
// suite's collaborators.
func (s *KeyStore) LoadSession(passphrase, name string, suite megolm.Suite) (*megolm.InboundGroupSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := sessionFile(name)
	if err != nil {
		return nil, err
	}
	raw, err := s.openFromFile(file, passphrase)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(raw)

	pickle, err := megolm.PickleFromCBOR(raw)
	if err != nil {
		return nil, err
	}
	defer pickle.Destroy()
	return megolm.FromPickle(suite, pickle)
}

// sealToFile derives a key from passphrase and writes raw sealed inside an
// envelope, via a temp file then rename.
func (s *KeyStore) sealToFile(file, passphrase string, raw []byte) error {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return err
	}
	N, r, p := scryptParamsDefault()
	key, err := scrypt.Key([]byte(passphrase), salt[:], N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return err
	}
	// Zero nonce; the salt-bound key is unique per seal.
	var nonce [chacha20poly1305.NonceSize]byte
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	blob, err := json.Marshal(envelope{
		V:      envelopeVersion,
		Salt:   salt[:],
		N:      N,
		R:      r,
		P:      p,
		Cipher: ct,
	})
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, file)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// openFromFile reads an envelope and opens the sealed pickle with a key
// derived from passphrase.
func (s *KeyStore) openFromFile(file, passphrase string) ([]byte, error) {
	blob, err := os.ReadFile(filepath.Join(s.dir, file))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return nil, err
	}
	if env.V > envelopeVersion {
		return nil, fmt.Errorf("unsupported key store version %d", env.V)
	}

	key, err := scrypt.Key([]byte(passphrase), env.Salt, env.N, env.R, env.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	raw, err := aead.Open(nil, nonce[:], env.Cipher, env.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return raw, nil
}

func sessionFile(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", ErrBadName
	}
	return name + sessionSuffix, nil
}

// Tunables for scrypt key derivation.
func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }
