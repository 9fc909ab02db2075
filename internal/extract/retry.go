package extract

import "time"

// RetryPolicy controls repeated extraction attempts. Sleep is a seam for
// tests; the zero value of Sleep means time.Sleep.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	Sleep       func(time.Duration)
}

// FixedBackoff returns a backoff function that waits the same duration
// between every attempt.
func FixedBackoff(d time.Duration) func(int) time.Duration {
	return func(int) time.Duration { return d }
}

func (p RetryPolicy) wait(attempt int) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	sleep(p.Backoff(attempt))
}
