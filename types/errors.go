package types

import "errors"

var (
	// ErrInvalidKeyLength is returned when key material has the wrong size.
	ErrInvalidKeyLength = errors.New("invalid key length")
	// ErrInvalidSignatureLength is returned when signature bytes have the
	// wrong size.
	ErrInvalidSignatureLength = errors.New("invalid signature length")
	// ErrSignatureInvalid is returned when a signature does not verify.
	ErrSignatureInvalid = errors.New("signature verification failed")
)
