package common

import (
	"crypto/sha256"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundToBytes(t *testing.T) {
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 1}, RoundToBytes(1))
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 3, 0xe8}, RoundToBytes(1000))
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, RoundToBytes(^uint64(0)))
}

func TestRandomnessFromSignature(t *testing.T) {
	sig := []byte("some signature bytes")
	want := sha256.Sum256(sig)
	require.Equal(t, want[:], RandomnessFromSignature(sig))
}

func TestBeaconJSON(t *testing.T) {
	doc := `{
		"round": 1000000,
		"randomness": "a26ba4d229c666f52a06f1a9be1278dcc7a80dbc1dd2004a1ae7b63cb79fd37e",
		"signature": "87e355169c4410a8ad6d3e7f5094b2122932c1062f603e6628aba2e4cb54f46c3bf1083c3537cd3b99e8296784f46fb40e090961cf9634f02c7dc2a96b69fc3c03735bc419962780a71245b72f81882cf6bb9c961bcf32da5624993bb747c9e5",
		"previous_signature": "86bbc40c9d9347568967add4ddf6e351aff604352a7e1eec9b20dea4ca531ed6c7d38de9956ffc3bb5a7fabe28b3a36b069c8113bd9824135c3bff9b03359476f6b03beec179d4aeff456f4d34bbf702b9af78c3bb44e1892ace8e581bf4afa9"
	}`

	var b Beacon
	require.NoError(t, json.Unmarshal([]byte(doc), &b))
	require.Equal(t, uint64(1000000), b.Round)
	require.Len(t, []byte(b.Signature), 96)
	require.Len(t, []byte(b.PreviousSig), 96)
	require.Len(t, []byte(b.Randomness), 32)

	// The published randomness of this real round is the hash of its
	// signature.
	require.Equal(t, []byte(b.Randomness), RandomnessFromSignature(b.Signature))

	out, err := json.Marshal(&b)
	require.NoError(t, err)
	var again Beacon
	require.NoError(t, json.Unmarshal(out, &again))
	require.Equal(t, b, again)
}

func TestHexBytes(t *testing.T) {
	var h HexBytes
	require.NoError(t, json.Unmarshal([]byte(`"00ff10"`), &h))
	require.Equal(t, HexBytes{0x00, 0xff, 0x10}, h)
	require.Equal(t, "00ff10", h.String())

	require.Error(t, json.Unmarshal([]byte(`"zz"`), &h))
	require.Error(t, json.Unmarshal([]byte(`42`), &h))
}
