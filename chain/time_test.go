package chain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clockInfo(genesis int64, period time.Duration) *Info {
	return &Info{GenesisTime: genesis, Period: period}
}

func TestRoundAt(t *testing.T) {
	info := clockInfo(1595431050, 30*time.Second)

	for _, tc := range []struct {
		name  string
		at    int64
		round uint64
	}{
		{"before genesis", 0, 1},
		{"just before genesis", 1595431049, 1},
		{"at genesis", 1595431050, 1},
		{"mid first period", 1595431079, 1},
		{"start of round 2", 1595431080, 2},
		{"round 1000", 1595431050 + 999*30, 1000},
		{"just before round 1000", 1595431050 + 999*30 - 1, 999},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.round, RoundAt(info, time.Unix(tc.at, 0)))
		})
	}
}

func TestTimeOfRound(t *testing.T) {
	info := clockInfo(1595431050, 30*time.Second)

	require.Equal(t, int64(1595431050), TimeOfRound(info, 1).Unix())
	require.Equal(t, int64(1595431080), TimeOfRound(info, 2).Unix())
	// Round 0 never exists; it is clamped to round 1.
	require.Equal(t, TimeOfRound(info, 1), TimeOfRound(info, 0))
}

func TestRoundTimeInverse(t *testing.T) {
	info := clockInfo(1692803367, 3*time.Second)

	var prev time.Time
	for _, r := range []uint64{1, 2, 3, 10, 999, 1000, 123456789} {
		at := TimeOfRound(info, r)
		require.Equal(t, r, RoundAt(info, at), "round %d", r)
		// Monotonically non-decreasing in the round number.
		require.False(t, at.Before(prev))
		prev = at
	}
}

func TestRoundAtSubSecondPeriod(t *testing.T) {
	// Directly constructed infos may carry a period under one second; the
	// arithmetic must stay total over any positive period.
	info := clockInfo(1000, 500*time.Millisecond)

	require.Equal(t, uint64(1), RoundAt(info, time.Unix(1000, 0)))
	require.Equal(t, uint64(2), RoundAt(info, time.Unix(1000, int64(500*time.Millisecond))))
	require.Equal(t, uint64(3), RoundAt(info, time.Unix(1001, 0)))
	require.Equal(t, uint64(3), RoundAt(info, TimeOfRound(info, 3)))
}

func TestNextRound(t *testing.T) {
	info := clockInfo(1595431050, 30*time.Second)

	round, at := NextRound(info, time.Unix(1595431050, 0))
	require.Equal(t, uint64(2), round)
	require.Equal(t, int64(1595431080), at.Unix())

	// Before genesis nothing has been published yet, so the next round is
	// round 1 at the genesis time.
	round, at = NextRound(info, time.Unix(0, 0))
	require.Equal(t, uint64(1), round)
	require.Equal(t, int64(1595431050), at.Unix())
}
