package crypto

import "errors"

var (
	// ErrUnknownScheme is returned when a chain declares a scheme this
	// package does not implement.
	ErrUnknownScheme = errors.New("unknown scheme")

	// ErrSchemeMismatch is returned when a beacon's shape (presence or
	// absence of a previous signature) contradicts the declared scheme.
	// It is reported before any group operation is attempted.
	ErrSchemeMismatch = errors.New("beacon shape does not match scheme")

	// ErrInvalidEncoding is returned when a public key or signature is
	// not a valid compressed point of the expected group, including
	// points outside the prime-order subgroup and the infinity point.
	ErrInvalidEncoding = errors.New("invalid point encoding")

	// ErrPairingMismatch is returned when the bilinear pairing equality
	// does not hold: the signature was not produced by the chain's
	// committee over the scheme-defined message.
	ErrPairingMismatch = errors.New("pairing equality does not hold")

	// ErrRandomnessMismatch is returned when the wire-provided randomness
	// differs from the value derived from the signature.
	ErrRandomnessMismatch = errors.New("randomness does not match signature")
)
