package vodozemac

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// rawStd is the single encoding used across the protocol: standard alphabet,
// no padding, canonical trailing bits enforced on decode.
var rawStd = base64.RawStdEncoding.Strict()

var (
	// ErrInvalidLength is returned when the input cannot be unpadded base64
	// of any byte string.
	ErrInvalidLength = errors.New("invalid base64 length")
	// ErrInvalidByte is returned when the input contains a character outside
	// the base64 alphabet.
	ErrInvalidByte = errors.New("invalid base64 byte")
	// ErrInvalidLastSymbol is returned when the final character carries
	// non-zero trailing bits, so the input is not a canonical encoding.
	ErrInvalidLastSymbol = errors.New("invalid base64 last symbol")
)

// Base64Encode returns the unpadded base64 form of b.
func Base64Encode(b []byte) string {
	return rawStd.EncodeToString(b)
}

// Base64Decode decodes unpadded base64 text. Failures are classified as
// ErrInvalidLength, ErrInvalidByte or ErrInvalidLastSymbol.
func Base64Decode(s string) ([]byte, error) {
	if len(s)%4 == 1 {
		return nil, fmt.Errorf("%w: %d characters cannot encode whole bytes", ErrInvalidLength, len(s))
	}
	out, err := rawStd.DecodeString(s)
	if err == nil {
		return out, nil
	}
	var corrupt base64.CorruptInputError
	if errors.As(err, &corrupt) && int(corrupt) < len(s) {
		c := s[corrupt]
		if strings.IndexByte(base64Alphabet, c) < 0 {
			return nil, fmt.Errorf("%w %q at offset %d", ErrInvalidByte, c, int64(corrupt))
		}
		return nil, fmt.Errorf("%w %q at offset %d", ErrInvalidLastSymbol, c, int64(corrupt))
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidByte, err)
}
