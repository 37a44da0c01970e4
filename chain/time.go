package chain

import "time"

// RoundAt returns the round in effect at time t. Round 1 starts at the
// genesis time; times before genesis map to round 1, so rounds are never
// zero or negative. Assumes a validated Info (positive period).
func RoundAt(info *Info, t time.Time) uint64 {
	genesis := time.Unix(info.GenesisTime, 0)
	if t.Before(genesis) {
		return 1
	}
	// +1 because round 1 starts at genesis time.
	return uint64(t.Sub(genesis)/info.Period) + 1
}

// TimeOfRound returns the time at which the given round is published,
// the inverse of RoundAt. Round 0 is treated as round 1.
func TimeOfRound(info *Info, round uint64) time.Time {
	if round == 0 {
		round = 1
	}
	return time.Unix(info.GenesisTime, 0).Add(time.Duration(round-1) * info.Period)
}

// NextRound returns the first round published strictly after time t, along
// with its publication time. Before genesis that is round 1 at genesis.
func NextRound(info *Info, t time.Time) (uint64, time.Time) {
	genesis := time.Unix(info.GenesisTime, 0)
	if t.Before(genesis) {
		return 1, genesis
	}
	next := RoundAt(info, t) + 1
	return next, TimeOfRound(info, next)
}
