package megolm

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionKeyTruncated is returned when a session key ends before a
	// declared field.
	ErrSessionKeyTruncated = errors.New("session key too short")
	// ErrMessageDecode wraps message codec failures.
	ErrMessageDecode = errors.New("failed to decode message")
	// ErrInvalidMAC wraps MAC verification failures during decryption.
	ErrInvalidMAC = errors.New("invalid MAC")
	// ErrInvalidCiphertext wraps cipher rejections of the payload itself,
	// for example corrupted padding.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	// ErrInvalidPickle is returned for session pickles whose fields cannot
	// rebuild a session.
	ErrInvalidPickle = errors.New("invalid session pickle")
)

// VersionError reports a session key with an unsupported format version.
type VersionError struct {
	Expected byte
	Actual   byte
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("invalid session key version: expected %d, got %d", e.Expected, e.Actual)
}

// UnknownMessageIndexError reports a message encrypted at an index below the
// first index known to the session. The session itself stays usable.
type UnknownMessageIndexError struct {
	FirstKnown uint32
	Requested  uint32
}

func (e *UnknownMessageIndexError) Error() string {
	return fmt.Sprintf("unknown message index: first known index %d, message index %d", e.FirstKnown, e.Requested)
}
