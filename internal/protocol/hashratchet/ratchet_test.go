package hashratchet_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmtp/vodozemac/internal/protocol/hashratchet"
)

func seed(b byte) (s [hashratchet.Length]byte) {
	for i := range s {
		s[i] = b
	}
	return s
}

func TestAdvanceDeterministic(t *testing.T) {
	a := hashratchet.New(seed(7), 0)
	b := hashratchet.New(seed(7), 0)

	a.AdvanceTo(1000)
	b.AdvanceTo(1000)

	require.Equal(t, uint32(1000), a.Index())
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestAdvanceChangesState(t *testing.T) {
	r := hashratchet.New(seed(7), 0)
	before := append([]byte(nil), r.Bytes()...)

	r.AdvanceTo(1)

	assert.False(t, bytes.Equal(before, r.Bytes()))
}

func TestAdvanceToBelowCurrentIsNoop(t *testing.T) {
	r := hashratchet.New(seed(1), 0)
	r.AdvanceTo(10)
	state := append([]byte(nil), r.Bytes()...)

	r.AdvanceTo(3)

	assert.Equal(t, uint32(10), r.Index())
	assert.Equal(t, state, r.Bytes())
}

func TestStepwiseEqualsDirect(t *testing.T) {
	direct := hashratchet.New(seed(3), 0)
	stepwise := hashratchet.New(seed(3), 0)

	direct.AdvanceTo(300)
	for i := uint32(1); i <= 300; i++ {
		stepwise.AdvanceTo(i)
	}

	assert.Equal(t, direct.Bytes(), stepwise.Bytes())
}

func TestCopyIsIndependent(t *testing.T) {
	r := hashratchet.New(seed(9), 4)
	dup := r.Copy()

	r.AdvanceTo(20)

	assert.Equal(t, uint32(4), dup.Index())
	assert.NotEqual(t, r.Bytes(), dup.Bytes())
}

func TestWipeZeroesState(t *testing.T) {
	r := hashratchet.New(seed(0xff), 12)
	r.Wipe()

	assert.Equal(t, uint32(0), r.Index())
	assert.Equal(t, make([]byte, hashratchet.Length), r.Bytes())
}
