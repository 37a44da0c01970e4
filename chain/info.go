// Package chain models the identity and cadence of one randomness chain and
// the arithmetic tying round numbers to wall-clock time.
package chain

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"io"
	"time"

	"golang.org/x/xerrors"

	"github.com/drandlite/drandlite/common"
	"github.com/drandlite/drandlite/crypto"
)

// DefaultBeaconID is the beacon identifier of networks that predate
// multi-beacon relays. It is left out of the canonical hash for backward
// compatibility.
const DefaultBeaconID = "default"

var (
	// ErrHashMismatch is returned when a decoded chain info's declared
	// hash disagrees with the recomputed canonical hash.
	ErrHashMismatch = xerrors.New("chain hash does not match chain info")

	// ErrInvalidInfo is returned when a chain info carries a malformed
	// field: non-positive period or genesis time, unknown scheme, or a
	// public key that is not a valid point of the scheme's key group.
	ErrInvalidInfo = xerrors.New("invalid chain info")
)

// Info is the immutable identity of one randomness chain. Once constructed
// it is never mutated and may be shared freely across concurrent
// verifications.
type Info struct {
	// PublicKey is the compressed distributed public key of the signing
	// committee, encoded in the scheme's key group.
	PublicKey common.HexBytes

	// ID is the beacon identifier on multi-beacon relays.
	ID string

	// Period is the time between two rounds.
	Period time.Duration

	// Scheme is the wire identifier of the verification scheme.
	Scheme string

	// GenesisTime is the Unix time of round 1.
	GenesisTime int64

	// GroupHash is the hash of the group file the committee formed from.
	GroupHash common.HexBytes

	// chainHash is the declared chain hash, fixed at construction.
	chainHash common.HexBytes
}

// Hash returns the chain hash identifying this chain. For infos decoded from
// the wire this is the declared (and checked) hash; for infos built directly
// it is computed on first use.
func (i *Info) Hash() []byte {
	if len(i.chainHash) > 0 {
		return i.chainHash
	}
	return i.HashChain()
}

// HashChain computes the canonical hash of the chain info: period and
// genesis time big-endian, public key, group hash, then scheme and beacon ID
// when they differ from the legacy defaults.
func (i *Info) HashChain() []byte {
	h := sha256.New()
	_ = binary.Write(h, binary.BigEndian, uint32(i.Period/time.Second))
	_ = binary.Write(h, binary.BigEndian, uint64(i.GenesisTime))
	_, _ = h.Write(i.PublicKey)
	_, _ = h.Write(i.GroupHash)
	if i.Scheme != crypto.DefaultSchemeID {
		_, _ = h.Write([]byte(i.Scheme))
	}
	if i.ID != "" && i.ID != DefaultBeaconID {
		_, _ = h.Write([]byte(i.ID))
	}
	return h.Sum(nil)
}

type infoJSON struct {
	PublicKey   common.HexBytes `json:"public_key"`
	Period      int64           `json:"period"`
	GenesisTime int64           `json:"genesis_time"`
	Hash        common.HexBytes `json:"hash,omitempty"`
	GroupHash   common.HexBytes `json:"groupHash,omitempty"`
	Scheme      string          `json:"schemeID,omitempty"`
	Metadata    *infoMetadata   `json:"metadata,omitempty"`
}

type infoMetadata struct {
	BeaconID string `json:"beaconID,omitempty"`
}

// InfoFromJSON decodes a chain info document obtained from an untrusted
// relay. The declared chain hash must be present and must match the
// recomputed canonical hash; all fields are validated before the info is
// returned. A failed decode is a total rejection, never a partial result.
func InfoFromJSON(r io.Reader) (*Info, error) {
	return decodeInfo(r, true)
}

// TrustedInfoFromJSON decodes a chain info document from a trusted static
// embedding. Field validation still applies but the declared hash is carried
// as-is instead of being recomputed.
func TrustedInfoFromJSON(r io.Reader) (*Info, error) {
	return decodeInfo(r, false)
}

func decodeInfo(r io.Reader, checkHash bool) (*Info, error) {
	var w infoJSON
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, xerrors.Errorf("decoding chain info: %w", err)
	}

	info := &Info{
		PublicKey:   w.PublicKey,
		Period:      time.Duration(w.Period) * time.Second,
		GenesisTime: w.GenesisTime,
		GroupHash:   w.GroupHash,
		Scheme:      w.Scheme,
		chainHash:   w.Hash,
	}
	if info.Scheme == "" {
		info.Scheme = crypto.DefaultSchemeID
	}
	if w.Metadata != nil {
		info.ID = w.Metadata.BeaconID
	}

	if err := info.validate(); err != nil {
		return nil, err
	}
	if checkHash {
		if len(w.Hash) == 0 {
			return nil, xerrors.Errorf("chain info carries no hash: %w", ErrInvalidInfo)
		}
		if !bytes.Equal(w.Hash, info.HashChain()) {
			return nil, xerrors.Errorf("declared %s, computed %s: %w",
				w.Hash, common.HexBytes(info.HashChain()), ErrHashMismatch)
		}
	}
	return info, nil
}

func (i *Info) validate() error {
	if i.Period <= 0 {
		return xerrors.Errorf("period must be positive, got %s: %w", i.Period, ErrInvalidInfo)
	}
	if i.GenesisTime <= 0 {
		return xerrors.Errorf("genesis time must be positive, got %d: %w", i.GenesisTime, ErrInvalidInfo)
	}
	sch, err := crypto.GetSchemeByID(i.Scheme)
	if err != nil {
		return xerrors.Errorf("%s: %w", err, ErrInvalidInfo)
	}
	if err := sch.ValidatePublicKey(i.PublicKey); err != nil {
		return xerrors.Errorf("%s: %w", err, ErrInvalidInfo)
	}
	return nil
}

// ToJSON writes the chain info in the relay wire format.
func (i *Info) ToJSON(w io.Writer) error {
	out := infoJSON{
		PublicKey:   i.PublicKey,
		Period:      int64(i.Period / time.Second),
		GenesisTime: i.GenesisTime,
		Hash:        i.Hash(),
		GroupHash:   i.GroupHash,
		Scheme:      i.Scheme,
	}
	if i.ID != "" {
		out.Metadata = &infoMetadata{BeaconID: i.ID}
	}
	return json.NewEncoder(w).Encode(out)
}

// Equal reports whether two chain infos describe the same chain.
func (i *Info) Equal(other *Info) bool {
	return bytes.Equal(i.Hash(), other.Hash())
}
