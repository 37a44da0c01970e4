package retry

import (
	"context"
	"errors"
	"reflect"
	"time"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("retry")

func errorIsIn(err error, errorTypes []error) bool {
	for _, etype := range errorTypes {
		tmp := reflect.New(reflect.PointerTo(reflect.ValueOf(etype).Elem().Type())).Interface()
		if errors.As(err, tmp) {
			return true
		}
	}
	return false
}

// Retry runs f up to attempts times, backing off exponentially between
// tries. Only errors matching one of errorTypes are retried; anything else
// is returned immediately so that non-transient failures (a bad signature,
// say) are never papered over by another fetch.
func Retry[T any](ctx context.Context, attempts int, initialBackoff time.Duration, errorTypes []error, f func() (T, error)) (result T, err error) {
	for i := 0; i < attempts; i++ {
		if i > 0 {
			log.Debugw("retrying after error", "attempt", i, "err", err)
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(initialBackoff):
			}
			initialBackoff *= 2
		}
		result, err = f()
		if err == nil || !errorIsIn(err, errorTypes) {
			return result, err
		}
	}
	log.Warnw("failed after retries", "attempts", attempts, "err", err)
	return result, err
}
