package lambda

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// FingerprintAlgo names a digest used to identify request blobs in logs.
type FingerprintAlgo string

// Fingerprint algorithms.
const (
	FingerprintSHA1    FingerprintAlgo = "sha1"
	FingerprintSHA256  FingerprintAlgo = "sha256"
	FingerprintSHA512  FingerprintAlgo = "sha512"
	FingerprintBLAKE2b FingerprintAlgo = "blake2b"
)

// Fingerprinter digests a blob into a short printable identifier.
type Fingerprinter interface {
	// Fingerprint returns the base64-encoded digest of data.
	Fingerprint(data []byte) string
}

// digestFingerprinter base64-encodes a fixed digest function.
type digestFingerprinter struct {
	sum func([]byte) []byte
}

func (f digestFingerprinter) Fingerprint(data []byte) string {
	return base64.StdEncoding.EncodeToString(f.sum(data))
}

// NewFingerprinter returns the fingerprinter for algo.
func NewFingerprinter(algo FingerprintAlgo) (Fingerprinter, error) {
	switch algo {
	case FingerprintSHA1:
		return digestFingerprinter{sum: func(b []byte) []byte { s := sha1.Sum(b); return s[:] }}, nil
	case FingerprintSHA256:
		return digestFingerprinter{sum: func(b []byte) []byte { s := sha256.Sum256(b); return s[:] }}, nil
	case FingerprintSHA512:
		return digestFingerprinter{sum: func(b []byte) []byte { s := sha512.Sum512(b); return s[:] }}, nil
	case FingerprintBLAKE2b:
		return digestFingerprinter{sum: func(b []byte) []byte { s := blake2b.Sum256(b); return s[:] }}, nil
	}
	return nil, fmt.Errorf("unknown fingerprint algorithm %q", algo)
}

// IsValidFingerprintAlgo reports whether algo is supported.
func IsValidFingerprintAlgo(algo FingerprintAlgo) bool {
	_, err := NewFingerprinter(algo)
	return err == nil
}
