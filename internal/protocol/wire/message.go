// Package wire encodes and decodes the binary form of a single group
// message.
//
// Layout:
//
//	version (1 byte, 0x03)
//	0x08, message index (varint)
//	0x12, ciphertext length (varint), ciphertext
//	MAC (8 bytes)
//	signature (64 bytes)
//
// The MAC covers every byte before itself; the signature covers every byte
// before itself, MAC included.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	// Version is the single supported group message format version.
	Version byte = 3

	indexTag      byte = 0x08
	ciphertextTag byte = 0x12

	macLength       = 8
	signatureLength = 64
	trailerLength   = macLength + signatureLength
)

var (
	// ErrTooShort is returned for input that cannot hold the fixed fields.
	ErrTooShort = errors.New("message too short")
	// ErrBadTag is returned when a field tag is missing or out of order.
	ErrBadTag = errors.New("unexpected field tag")
	// ErrBadLength is returned when the declared ciphertext length does not
	// match the remaining payload.
	ErrBadLength = errors.New("ciphertext length mismatch")
)

// Message is one decoded group message. It retains the raw buffer so the
// authenticated byte ranges can be exposed without copying.
type Message struct {
	raw        []byte
	index      uint32
	ciphertext []byte
}

// Index returns the message index declared by the sender.
func (m *Message) Index() uint32 { return m.index }

// Ciphertext returns the encrypted payload.
func (m *Message) Ciphertext() []byte { return m.ciphertext }

// MAC returns the truncated MAC carried by the message.
func (m *Message) MAC() []byte {
	return m.raw[len(m.raw)-trailerLength : len(m.raw)-signatureLength]
}

// Signature returns the trailing signature bytes.
func (m *Message) Signature() []byte { return m.raw[len(m.raw)-signatureLength:] }

// BytesForMAC is the byte range the MAC covers: everything before it.
func (m *Message) BytesForMAC() []byte { return m.raw[:len(m.raw)-trailerLength] }

// BytesForSigning is the byte range the signature covers: everything before
// it, MAC included.
func (m *Message) BytesForSigning() []byte { return m.raw[:len(m.raw)-signatureLength] }

// Decode parses raw. The message retains raw; callers must not mutate it.
func Decode(raw []byte) (*Message, error) {
	// version + two single-byte tags + two minimal varints + trailer
	if len(raw) < 5+trailerLength {
		return nil, ErrTooShort
	}
	if raw[0] != Version {
		return nil, fmt.Errorf("unsupported message version %d", raw[0])
	}
	body := raw[1 : len(raw)-trailerLength]

	if body[0] != indexTag {
		return nil, fmt.Errorf("%w: want index field, got 0x%02x", ErrBadTag, body[0])
	}
	index, n := binary.Uvarint(body[1:])
	if n <= 0 || index > math.MaxUint32 {
		return nil, fmt.Errorf("%w: malformed message index", ErrBadTag)
	}
	rest := body[1+n:]

	if len(rest) == 0 || rest[0] != ciphertextTag {
		return nil, fmt.Errorf("%w: want ciphertext field", ErrBadTag)
	}
	ctLen, n := binary.Uvarint(rest[1:])
	if n <= 0 {
		return nil, fmt.Errorf("%w: malformed ciphertext length", ErrBadLength)
	}
	ciphertext := rest[1+n:]
	if uint64(len(ciphertext)) != ctLen || len(ciphertext) == 0 {
		return nil, fmt.Errorf("%w: declared %d, have %d", ErrBadLength, ctLen, len(ciphertext))
	}

	return &Message{raw: raw, index: uint32(index), ciphertext: ciphertext}, nil
}

// EncodeBody serializes the MAC-covered region of a message: version byte,
// index field and ciphertext field. The caller appends MAC and signature.
func EncodeBody(index uint32, ciphertext []byte) []byte {
	buf := make([]byte, 0, 1+1+binary.MaxVarintLen32+1+binary.MaxVarintLen32+len(ciphertext))
	buf = append(buf, Version, indexTag)
	buf = binary.AppendUvarint(buf, uint64(index))
	buf = append(buf, ciphertextTag)
	buf = binary.AppendUvarint(buf, uint64(len(ciphertext)))
	return append(buf, ciphertext...)
}
