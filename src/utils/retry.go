package utils

import "time"

// Retry runs op up to maxAttempts times, sleeping backoff(attempt) between
// tries, and stops early the first time op reports success. It returns the
// last observed value either way; the bool reports whether op ever
// succeeded. The sleep func is a parameter so tests can inject a fake clock.
func Retry[T any](maxAttempts int, backoff func(attempt int) time.Duration, sleep func(time.Duration), op func() (T, bool)) (T, bool) {
	var last T

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			sleep(backoff(attempt - 1))
		}

		val, ok := op()
		last = val
		if ok {
			return last, true
		}
	}

	return last, false
}

// ExponentialBackoff returns base * 2^attempt.
func ExponentialBackoff(base time.Duration) func(attempt int) time.Duration {
	return func(attempt int) time.Duration {
		return base << uint(attempt)
	}
}
