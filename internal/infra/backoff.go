package infra

import (
	"time"
)

const (
	backoffBase = 1 * time.Second
	backoffCap  = 60 * time.Second
)

// CalculateBackoff returns the exponential backoff delay for a retry attempt:
// backoffBase * 2^attempt, capped at backoffCap. Negative attempts get the
// base delay. Used by the websocket worker reconnect loop and fill polling.
func CalculateBackoff(attempt int) time.Duration {
	if attempt < 0 {
		return backoffBase
	}

	// 2^31 seconds is already far past the cap; shift safely.
	if attempt > 30 {
		return backoffCap
	}

	delay := backoffBase * time.Duration(1<<attempt)
	if delay > backoffCap {
		return backoffCap
	}

	return delay
}
