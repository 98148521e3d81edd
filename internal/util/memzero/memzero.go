// Package memzero wipes sensitive byte slices and provides an owned buffer
// type whose contents are guaranteed to be wiped when it is destroyed.
package memzero

import "crypto/subtle"

// Zero overwrites b with zeros in a constant-time friendly way.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	zero := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zero)
}
