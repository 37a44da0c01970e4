package build

import "github.com/raulk/clock"

// Clock is the clock used throughout the module for round arithmetic and
// watch scheduling. Tests replace it with a mock to control time.
var Clock = clock.New()
