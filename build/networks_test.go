package build

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/drandlite/drandlite/crypto"
)

func TestKnownNetworksLoad(t *testing.T) {
	for network, cfg := range BeaconConfigs {
		t.Run(string(network), func(t *testing.T) {
			require.NotEmpty(t, cfg.Servers)

			info, err := cfg.ChainInfo()
			require.NoError(t, err)

			sch, err := crypto.GetSchemeByID(info.Scheme)
			require.NoError(t, err)
			require.Equal(t, sch.KeyGroup.PointSize(), len(info.PublicKey))
			require.Len(t, info.Hash(), 32)
			require.Positive(t, info.GenesisTime)
		})
	}
}

func TestKnownNetworkIdentities(t *testing.T) {
	mainnet, err := BeaconConfigs[BeaconMainnet].ChainInfo()
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, mainnet.Period)
	require.Equal(t, crypto.DefaultSchemeID, mainnet.Scheme)
	require.Equal(t,
		"8990e7a9aaed2ffed73dbd7092123d6f289930540d7651336225dc172e51b2ce",
		hex.EncodeToString(mainnet.Hash()))

	quicknet, err := BeaconConfigs[BeaconQuicknet].ChainInfo()
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, quicknet.Period)
	require.Equal(t, crypto.ShortSigSchemeID, quicknet.Scheme)
	require.Equal(t, "quicknet", quicknet.ID)
	require.Equal(t,
		"52db9ba70e0cc0f6eaf7803dd07447a1f5477735fd3f661792ba94600c84e971",
		hex.EncodeToString(quicknet.Hash()))
}
