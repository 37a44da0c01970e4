package common

import (
	"crypto/sha256"
	"encoding/binary"
)

// Beacon is one published randomness round as served by the relay network.
// It is constructed per fetched round and never mutated afterwards.
type Beacon struct {
	// Round is the monotonically increasing index of this beacon,
	// starting at 1 at the chain's genesis time.
	Round uint64 `json:"round"`

	// Signature is the compressed threshold BLS signature over the
	// round's message. Which group it lives in depends on the chain's
	// scheme.
	Signature HexBytes `json:"signature"`

	// PreviousSig is the signature of round Round-1. Only present on
	// chained schemes, where it is committed to by the signed message.
	PreviousSig HexBytes `json:"previous_signature,omitempty"`

	// Randomness is the wire-provided randomness. It is derived from the
	// signature and must never be trusted verbatim; use
	// RandomnessFromSignature and compare.
	Randomness HexBytes `json:"randomness,omitempty"`
}

// RandomnessFromSignature derives the round's randomness from its signature.
func RandomnessFromSignature(sig []byte) []byte {
	out := sha256.Sum256(sig)
	return out[:]
}

// RoundToBytes serializes a round number to its signed byte representation,
// 8 bytes big-endian.
func RoundToBytes(round uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], round)
	return buf[:]
}
