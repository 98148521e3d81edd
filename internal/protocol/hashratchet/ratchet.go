// Package hashratchet implements the Megolm hash ratchet: four 32-byte parts
// advanced with HMAC-SHA256 under per-part seeds, bound to a 32-bit message
// counter. Part 0 changes every 2^24 steps, part 3 on every step, so a
// receiver can skip ahead cheaply while earlier key material stays
// unrecoverable.
//
// Concurrency: a Ratchet is NOT safe for concurrent use.
package hashratchet

import (
	"crypto/hmac"
	"crypto/sha256"

	"github.com/xmtp/vodozemac/internal/util/memzero"
)

const (
	partCount  = 4
	partLength = 32

	// Length is the total byte length of the ratchet state.
	Length = partCount * partLength
)

// hashKeySeeds are the per-part HMAC inputs used when a part is rehashed.
var hashKeySeeds = [partCount]byte{0x00, 0x01, 0x02, 0x03}

// Ratchet is hash-ratchet state bound to a message counter.
type Ratchet struct {
	data    [Length]byte
	counter uint32
}

// New builds a ratchet from raw state bound to the given counter.
func New(data [Length]byte, counter uint32) *Ratchet {
	return &Ratchet{data: data, counter: counter}
}

// Index returns the counter the current state is bound to.
func (r *Ratchet) Index() uint32 { return r.counter }

// Bytes exposes the raw ratchet state used to key a cipher. The slice aliases
// the ratchet; callers must not mutate it.
func (r *Ratchet) Bytes() []byte { return r.data[:] }

// Copy returns an independent duplicate sharing no state.
func (r *Ratchet) Copy() *Ratchet {
	dup := *r
	return &dup
}

// AdvanceTo moves the ratchet forward until its counter equals idx. Requests
// at or below the current counter leave the state untouched; advancing is
// irreversible.
func (r *Ratchet) AdvanceTo(idx uint32) {
	for r.counter < idx {
		r.advance()
	}
}

// Wipe erases the ratchet state.
func (r *Ratchet) Wipe() {
	memzero.Zero(r.data[:])
	r.counter = 0
}

// advance moves one step: find the highest part whose counter byte rolled
// over, then reseed it and every faster part from it.
func (r *Ratchet) advance() {
	r.counter++
	h := 0
	mask := uint32(0x00ffffff)
	for h < partCount-1 {
		if r.counter&mask == 0 {
			break
		}
		h++
		mask >>= 8
	}
	for i := partCount - 1; i >= h; i-- {
		r.rehashPart(h, i)
	}
}

// rehashPart replaces part `to` with HMAC-SHA256 keyed by part `from` over
// the destination part's seed byte.
func (r *Ratchet) rehashPart(from, to int) {
	mac := hmac.New(sha256.New, r.part(from))
	mac.Write([]byte{hashKeySeeds[to]})
	copy(r.part(to), mac.Sum(nil))
}

func (r *Ratchet) part(i int) []byte {
	return r.data[i*partLength : (i+1)*partLength]
}
