package megolm

import (
	"fmt"
	"strings"

	"github.com/xmtp/vodozemac"
	"github.com/xmtp/vodozemac/types"
)

// InboundGroupSession decrypts group messages from a single sender.
//
// The session keeps two points on the sender's ratchet chain: the state at
// the index the session key was anchored at, which is never advanced, and a
// working copy advanced lazily to whatever index was most recently requested.
// Any index at or above the anchor stays decryptable forever; indices below
// it never are.
type InboundGroupSession struct {
	suite          Suite
	initialRatchet Ratchet
	latestRatchet  Ratchet
	signingKey     types.Ed25519PublicKey
}

// DecryptedMessage is the result of a successful decryption: the recovered
// plaintext and the index it was encrypted under, for replay tracking.
type DecryptedMessage struct {
	Plaintext    string
	MessageIndex uint32
}

// NewInboundGroupSession parses and signature-checks sessionKey and builds a
// session anchored at the key's starting index, using suite's collaborators.
// Construction is all-or-nothing: no session state survives a failed check.
func NewInboundGroupSession(suite Suite, sessionKey string) (*InboundGroupSession, error) {
	key, err := ParseSessionKey(sessionKey)
	if err != nil {
		return nil, err
	}
	return newFromSessionKey(suite, key), nil
}

func newFromSessionKey(suite Suite, key *SessionKey) *InboundGroupSession {
	initial := suite.NewRatchet(key.RatchetSeed, key.Index)
	return &InboundGroupSession{
		suite:          suite,
		initialRatchet: initial,
		latestRatchet:  initial.Copy(),
		signingKey:     key.SigningKey,
	}
}

// SigningKey returns the Ed25519 key that signed the session key and signs
// every message this session accepts.
func (s *InboundGroupSession) SigningKey() types.Ed25519PublicKey { return s.signingKey }

// FirstKnownIndex returns the lowest message index this session can ever
// decrypt.
func (s *InboundGroupSession) FirstKnownIndex() uint32 { return s.initialRatchet.Index() }

// Decrypt verifies and decrypts one base64-encoded message.
//
// The checks run in a fixed order: signature, ratchet lookup, MAC, cipher.
// On success the working ratchet may have advanced; a MAC or cipher failure
// after the lookup does not roll that back, since reaching the index was
// legitimate even if this particular message was not.
func (s *InboundGroupSession) Decrypt(message string) (DecryptedMessage, error) {
	raw, err := vodozemac.Base64Decode(message)
	if err != nil {
		return DecryptedMessage{}, err
	}
	msg, err := s.suite.DecodeMessage(raw)
	if err != nil {
		return DecryptedMessage{}, fmt.Errorf("%w: %v", ErrMessageDecode, err)
	}

	signature, err := types.Ed25519SignatureFromSlice(msg.Signature())
	if err != nil {
		return DecryptedMessage{}, err
	}
	if err := s.signingKey.Verify(msg.BytesForSigning(), signature); err != nil {
		return DecryptedMessage{}, err
	}

	ratchet, ok := s.findRatchet(msg.Index())
	if !ok {
		return DecryptedMessage{}, &UnknownMessageIndexError{
			FirstKnown: s.initialRatchet.Index(),
			Requested:  msg.Index(),
		}
	}

	cipher := s.suite.NewCipher(ratchet.Bytes())
	if err := cipher.VerifyMAC(msg.BytesForMAC(), msg.MAC()); err != nil {
		return DecryptedMessage{}, fmt.Errorf("%w: %v", ErrInvalidMAC, err)
	}
	plaintext, err := cipher.Decrypt(msg.Ciphertext())
	if err != nil {
		return DecryptedMessage{}, fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}

	return DecryptedMessage{
		Plaintext:    strings.ToValidUTF8(string(plaintext), "�"),
		MessageIndex: msg.Index(),
	}, nil
}

// ExportAt re-anchors the session at index, resolving ratchet state the same
// way Decrypt does. Indices below the anchor are unreachable.
func (s *InboundGroupSession) ExportAt(index uint32) (*ExportedSessionKey, error) {
	ratchet, ok := s.findRatchet(index)
	if !ok {
		return nil, &UnknownMessageIndexError{
			FirstKnown: s.initialRatchet.Index(),
			Requested:  index,
		}
	}
	exported := &ExportedSessionKey{Index: ratchet.Index(), SigningKey: s.signingKey}
	copy(exported.RatchetSeed[:], ratchet.Bytes())
	return exported, nil
}

// Wipe erases the ratchet state of both chain positions.
func (s *InboundGroupSession) Wipe() {
	s.initialRatchet.Wipe()
	s.latestRatchet.Wipe()
}

// findRatchet resolves ratchet state whose index equals messageIndex.
//
// Precedence: the anchor if it matches, then the working copy, then the
// working copy advanced forward. A request between the two known points
// restarts the working copy from the anchor so it never regresses for later
// in-order messages. Requests below the anchor fail with no state change.
func (s *InboundGroupSession) findRatchet(messageIndex uint32) (Ratchet, bool) {
	switch {
	case s.initialRatchet.Index() == messageIndex:
		return s.initialRatchet, true
	case s.latestRatchet.Index() == messageIndex:
		return s.latestRatchet, true
	case s.latestRatchet.Index() < messageIndex:
		s.latestRatchet.AdvanceTo(messageIndex)
		return s.latestRatchet, true
	case s.initialRatchet.Index() < messageIndex:
		old := s.latestRatchet
		s.latestRatchet = s.initialRatchet.Copy()
		s.latestRatchet.AdvanceTo(messageIndex)
		old.Wipe()
		return s.latestRatchet, true
	default:
		return nil, false
	}
}
