package crypto

import (
	"bytes"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"golang.org/x/xerrors"

	"github.com/drandlite/drandlite/common"
)

// Compressed encoding sizes of the two source groups.
const (
	SizeG1Compressed = bls12381.SizeOfG1AffineCompressed
	SizeG2Compressed = bls12381.SizeOfG2AffineCompressed
)

// Negated generators, precomputed for the two-term pairing products below.
var (
	g1GenNeg bls12381.G1Affine
	g2GenNeg bls12381.G2Affine
)

func init() {
	_, _, g1, g2 := bls12381.Generators()
	g1GenNeg.Neg(&g1)
	g2GenNeg.Neg(&g2)
}

// VerifyBeacon proves that the beacon's signature was produced by the holder
// of the given public key over the scheme-defined message for the beacon's
// round. It checks the beacon shape, decodes both points with mandatory
// subgroup checks, then evaluates the pairing equality
//
//	e(sig, gen) == e(H(msg), pubkey)
//
// with the group assignment dictated by the scheme. It does not look at the
// wire randomness; pair it with VerifyRandomness.
func (s *Scheme) VerifyBeacon(b *common.Beacon, publicKey []byte) error {
	if b.Round == 0 {
		return xerrors.New("beacon round must be positive")
	}
	if s.Chained && len(b.PreviousSig) == 0 {
		return xerrors.Errorf("scheme %s requires a previous signature: %w", s.Name, ErrSchemeMismatch)
	}
	if !s.Chained && len(b.PreviousSig) != 0 {
		return xerrors.Errorf("scheme %s carries no previous signature: %w", s.Name, ErrSchemeMismatch)
	}

	msg := s.DigestMessage(b.Round, b.PreviousSig)

	var (
		ok  bool
		err error
	)
	switch s.SigGroup {
	case G2:
		// Public key on G1, signature and hashed message on G2:
		// e(-gen1, sig) * e(pub, H(msg)) == 1.
		var pub bls12381.G1Affine
		if pub, err = decodeG1(publicKey); err != nil {
			return xerrors.Errorf("public key: %w", err)
		}
		var sig, hm bls12381.G2Affine
		if sig, err = decodeG2(b.Signature); err != nil {
			return xerrors.Errorf("signature: %w", err)
		}
		if hm, err = bls12381.HashToG2(msg, s.dst); err != nil {
			return xerrors.Errorf("hashing message to G2: %w", err)
		}
		ok, err = bls12381.PairingCheck(
			[]bls12381.G1Affine{g1GenNeg, pub},
			[]bls12381.G2Affine{sig, hm},
		)
	case G1:
		// Swapped assignment: public key on G2, signature on G1:
		// e(sig, -gen2) * e(H(msg), pub) == 1.
		var pub bls12381.G2Affine
		if pub, err = decodeG2(publicKey); err != nil {
			return xerrors.Errorf("public key: %w", err)
		}
		var sig, hm bls12381.G1Affine
		if sig, err = decodeG1(b.Signature); err != nil {
			return xerrors.Errorf("signature: %w", err)
		}
		if hm, err = bls12381.HashToG1(msg, s.dst); err != nil {
			return xerrors.Errorf("hashing message to G1: %w", err)
		}
		ok, err = bls12381.PairingCheck(
			[]bls12381.G1Affine{sig, hm},
			[]bls12381.G2Affine{g2GenNeg, pub},
		)
	default:
		return xerrors.Errorf("scheme %s has no signature group", s.Name)
	}
	if err != nil {
		return xerrors.Errorf("computing pairing: %w", err)
	}
	if !ok {
		return xerrors.Errorf("round %d under scheme %s: %w", b.Round, s.Name, ErrPairingMismatch)
	}
	return nil
}

// VerifyRandomness recomputes the beacon's randomness from its signature and
// compares it with the wire-provided value. A relay forwarding a valid
// signature while mutating the randomness field is caught here.
func VerifyRandomness(b *common.Beacon) error {
	if !bytes.Equal(b.Randomness, common.RandomnessFromSignature(b.Signature)) {
		return xerrors.Errorf("round %d: %w", b.Round, ErrRandomnessMismatch)
	}
	return nil
}

// ValidatePublicKey checks that the key is a valid, subgroup-checked,
// non-infinity element of the scheme's key group.
func (s *Scheme) ValidatePublicKey(publicKey []byte) error {
	var err error
	if s.KeyGroup == G1 {
		_, err = decodeG1(publicKey)
	} else {
		_, err = decodeG2(publicKey)
	}
	if err != nil {
		return xerrors.Errorf("public key: %w", err)
	}
	return nil
}

func decodeG1(buf []byte) (bls12381.G1Affine, error) {
	var p bls12381.G1Affine
	if len(buf) != SizeG1Compressed {
		return p, xerrors.Errorf("G1 point is %d bytes, want %d: %w", len(buf), SizeG1Compressed, ErrInvalidEncoding)
	}
	if _, err := p.SetBytes(buf); err != nil {
		return p, xerrors.Errorf("G1 point: %s: %w", err, ErrInvalidEncoding)
	}
	if p.IsInfinity() {
		return p, xerrors.Errorf("G1 point is infinity: %w", ErrInvalidEncoding)
	}
	return p, nil
}

func decodeG2(buf []byte) (bls12381.G2Affine, error) {
	var p bls12381.G2Affine
	if len(buf) != SizeG2Compressed {
		return p, xerrors.Errorf("G2 point is %d bytes, want %d: %w", len(buf), SizeG2Compressed, ErrInvalidEncoding)
	}
	if _, err := p.SetBytes(buf); err != nil {
		return p, xerrors.Errorf("G2 point: %s: %w", err, ErrInvalidEncoding)
	}
	if p.IsInfinity() {
		return p, xerrors.Errorf("G2 point is infinity: %w", ErrInvalidEncoding)
	}
	return p, nil
}
