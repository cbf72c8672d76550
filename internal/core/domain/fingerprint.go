package domain

import (
	"bytes"
	"encoding/hex"

	"go.trai.ch/zerr"
)

// FingerprintSize is the width of a fingerprint in bytes.
const FingerprintSize = 32

// Fingerprint is a fixed-width content hash. Self fingerprints cover a node's
// own bytes and config; combined fingerprints fold in every strict dependency.
type Fingerprint [FingerprintSize]byte

// String returns the lowercase hex form.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Short returns the first 12 hex characters, used in logs.
func (f Fingerprint) Short() string {
	return f.String()[:12]
}

// IsZero reports whether the fingerprint was never computed.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// Compare orders fingerprints bytewise.
func (f Fingerprint) Compare(other Fingerprint) int {
	return bytes.Compare(f[:], other[:])
}

// MarshalText implements encoding.TextMarshaler.
func (f Fingerprint) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Fingerprint) UnmarshalText(text []byte) error {
	parsed, err := ParseFingerprint(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFingerprint parses the hex form produced by String.
func ParseFingerprint(s string) (Fingerprint, error) {
	var f Fingerprint
	if len(s) != FingerprintSize*2 {
		return f, zerr.With(zerr.New("invalid fingerprint length"), "fingerprint", s)
	}
	if _, err := hex.Decode(f[:], []byte(s)); err != nil {
		return f, zerr.With(zerr.Wrap(err, "invalid fingerprint"), "fingerprint", s)
	}
	return f, nil
}
