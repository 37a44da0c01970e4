package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

type transientError struct{ msg string }

func (e *transientError) Error() string { return e.msg }

func TestRetryEventualSuccess(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), 3, time.Millisecond, []error{&transientError{}},
		func() (int, error) {
			calls++
			if calls < 3 {
				return 0, &transientError{"flaky"}
			}
			return 7, nil
		})
	require.NoError(t, err)
	require.Equal(t, 7, got)
	require.Equal(t, 3, calls)
}

func TestRetryNonMatchingErrorNotRetried(t *testing.T) {
	permanent := xerrors.New("bad signature")
	calls := 0
	_, err := Retry(context.Background(), 5, time.Millisecond, []error{&transientError{}},
		func() (int, error) {
			calls++
			return 0, permanent
		})
	require.ErrorIs(t, err, permanent)
	require.Equal(t, 1, calls)
}

func TestRetryExhausted(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), 3, time.Millisecond, []error{&transientError{}},
		func() (int, error) {
			calls++
			return 0, &transientError{"still flaky"}
		})
	require.Error(t, err)
	require.Equal(t, 3, calls)
}

func TestRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, err := Retry(ctx, 3, time.Hour, []error{&transientError{}},
		func() (int, error) {
			calls++
			return 0, &transientError{"flaky"}
		})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}
