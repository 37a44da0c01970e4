package client

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// Stage identifies which step of the fetch-decode-verify pipeline produced
// an error. Callers use it to tell transient network trouble apart from
// cryptographic failure; the latter is a security event and must not be
// blindly retried.
type Stage int

const (
	StageFetch Stage = iota + 1
	StageDecode
	StageVerify
)

func (s Stage) String() string {
	switch s {
	case StageFetch:
		return "fetch"
	case StageDecode:
		return "decode"
	case StageVerify:
		return "verify"
	default:
		return "unknown"
	}
}

// Error is a pipeline failure tagged with the stage that produced it.
// Round is 0 when the request was for the latest round.
type Error struct {
	Stage Stage
	Round uint64
	Err   error
}

func (e *Error) Error() string {
	if e.Round == 0 {
		return fmt.Sprintf("%s latest round: %s", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s round %d: %s", e.Stage, e.Round, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// RelayError is the failure of a single relay attempt within one fetch.
type RelayError struct {
	URL string
	Err error
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay %s: %s", e.URL, e.Err)
}

func (e *RelayError) Unwrap() error { return e.Err }

// ExhaustedError is returned when every configured relay failed within one
// fetch call. It carries the per-relay failures for diagnostics.
type ExhaustedError struct {
	Failures *multierror.Error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d relays exhausted: %s", e.Failures.Len(), e.Failures)
}

func (e *ExhaustedError) Unwrap() error { return e.Failures }

// Relays returns the per-relay failures in attempt order.
func (e *ExhaustedError) Relays() []*RelayError {
	out := make([]*RelayError, 0, e.Failures.Len())
	for _, err := range e.Failures.Errors {
		var re *RelayError
		if xerrors.As(err, &re) {
			out = append(out, re)
		}
	}
	return out
}

// ErrBrokenChain is returned by Range when two consecutive verified rounds
// of a chained scheme do not link up.
var ErrBrokenChain = xerrors.New("broken chain: previous signature does not match prior round")
