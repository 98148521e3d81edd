package megolm

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/xmtp/vodozemac/internal/util/memzero"
	"github.com/xmtp/vodozemac/types"
)

// Pickle is the persistence form of an InboundGroupSession: both ratchet
// positions and the signing key. It carries live secret material; call
// Destroy once it has been serialized or consumed.
type Pickle struct {
	InitialRatchet RatchetPickle `cbor:"initial_ratchet"`
	LatestRatchet  RatchetPickle `cbor:"latest_ratchet"`
	SigningKey     []byte        `cbor:"signing_key"`
}

// RatchetPickle is one ratchet position: raw state plus its index.
type RatchetPickle struct {
	Bytes []byte `cbor:"ratchet"`
	Index uint32 `cbor:"index"`
}

// Pickle captures the session's current state.
func (s *InboundGroupSession) Pickle() *Pickle {
	return &Pickle{
		InitialRatchet: pickleRatchet(s.initialRatchet),
		LatestRatchet:  pickleRatchet(s.latestRatchet),
		SigningKey:     append([]byte(nil), s.signingKey.Slice()...),
	}
}

// FromPickle rebuilds a session from p using suite's collaborators. The
// pickle stays valid; the caller still owns its destruction.
func FromPickle(suite Suite, p *Pickle) (*InboundGroupSession, error) {
	signingKey, err := types.Ed25519PublicKeyFromSlice(p.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPickle, err)
	}
	initial, err := unpickleRatchet(suite, p.InitialRatchet)
	if err != nil {
		return nil, err
	}
	latest, err := unpickleRatchet(suite, p.LatestRatchet)
	if err != nil {
		return nil, err
	}
	if initial.Index() > latest.Index() {
		return nil, fmt.Errorf("%w: initial index %d above latest index %d",
			ErrInvalidPickle, initial.Index(), latest.Index())
	}
	return &InboundGroupSession{
		suite:          suite,
		initialRatchet: initial,
		latestRatchet:  latest,
		signingKey:     signingKey,
	}, nil
}

// Marshal returns the CBOR encoding of the pickle.
func (p *Pickle) Marshal() ([]byte, error) { return cbor.Marshal(p) }

// PickleFromCBOR decodes a CBOR-encoded pickle.
func PickleFromCBOR(b []byte) (*Pickle, error) {
	var p Pickle
	if err := cbor.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPickle, err)
	}
	return &p, nil
}

// Destroy wipes the ratchet state held by the pickle.
func (p *Pickle) Destroy() {
	memzero.Zero(p.InitialRatchet.Bytes)
	memzero.Zero(p.LatestRatchet.Bytes)
}

func pickleRatchet(r Ratchet) RatchetPickle {
	return RatchetPickle{
		Bytes: append([]byte(nil), r.Bytes()...),
		Index: r.Index(),
	}
}

func unpickleRatchet(suite Suite, p RatchetPickle) (Ratchet, error) {
	if len(p.Bytes) != RatchetSeedLength {
		return nil, fmt.Errorf("%w: ratchet state is %d bytes, want %d",
			ErrInvalidPickle, len(p.Bytes), RatchetSeedLength)
	}
	var seed [RatchetSeedLength]byte
	copy(seed[:], p.Bytes)
	return suite.NewRatchet(seed, p.Index), nil
}
