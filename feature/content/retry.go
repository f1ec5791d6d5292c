package content

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const retryMaxElapsed = 30 * time.Second

func newRetryBackoff() backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = retryMaxElapsed
	return bo
}

// transientMarkers are error fragments of connection-level failures worth retrying.
var transientMarkers = []string{
	"driver: bad connection",
	"invalid connection",
	"broken pipe",
	"connection reset",
	"connection refused",
	"lost connection",
	"gone away",
	"i/o timeout",
	"database is locked",
	"slowdown",
	"service unavailable",
}

// isRetryableError reports whether err is a transient destination error.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// withRetry runs op until it succeeds, fails permanently or the backoff gives up.
func withRetry(ctx context.Context, newBackoff func() backoff.BackOff, op func() error) error {
	return backoff.Retry(func() error {
		err := op()
		if err != nil && !isRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(newBackoff(), ctx))
}
