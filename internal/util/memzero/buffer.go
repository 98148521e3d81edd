package memzero

import "runtime"

// Buffer owns a byte slice holding secret material. Destroy wipes the backing
// array before releasing it; a finalizer wipes it as a backstop if the owner
// never calls Destroy. Destroy is safe to call more than once.
type Buffer struct {
	b []byte
}

// NewBuffer takes ownership of b. The caller must not retain b.
func NewBuffer(b []byte) *Buffer {
	buf := &Buffer{b: b}
	runtime.SetFinalizer(buf, (*Buffer).Destroy)
	return buf
}

// Bytes exposes the backing slice. It is only valid until Destroy.
func (buf *Buffer) Bytes() []byte { return buf.b }

// Len reports the length of the backing slice.
func (buf *Buffer) Len() int { return len(buf.b) }

// Destroy wipes and detaches the backing slice.
func (buf *Buffer) Destroy() {
	Zero(buf.b)
	buf.b = nil
	runtime.SetFinalizer(buf, nil)
}
