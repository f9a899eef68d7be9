package utils

import (
	"math"
	"math/rand"
	"time"
)

// ExponentialBackoff calculates the delay before retry attempt n (1-based):
// initialDelay * multiplier^(attempt-1), capped at maxDelay. A non-positive
// maxDelay means no cap. Jitter adds up to 10% to avoid thundering herds.
func ExponentialBackoff(attempt int, initialDelay, maxDelay time.Duration, multiplier float64, jitter bool) time.Duration {
	delay := float64(initialDelay) * math.Pow(multiplier, float64(attempt-1))

	if maxDelay > 0 && delay > float64(maxDelay) {
		delay = float64(maxDelay)
	}

	if jitter {
		delay += rand.Float64() * 0.1 * delay
	}

	return time.Duration(delay)
}

// LinearBackoff calculates a linearly growing delay, capped at maxDelay.
func LinearBackoff(attempt int, initialDelay, maxDelay time.Duration, jitter bool) time.Duration {
	delay := float64(initialDelay) * float64(attempt)

	if maxDelay > 0 && delay > float64(maxDelay) {
		delay = float64(maxDelay)
	}

	if jitter {
		delay += rand.Float64() * 0.1 * delay
	}

	return time.Duration(delay)
}

// FixedBackoff returns a fixed delay, optionally jittered.
func FixedBackoff(delay time.Duration, jitter bool) time.Duration {
	if jitter {
		delay += time.Duration(rand.Float64() * 0.1 * float64(delay))
	}
	return delay
}
