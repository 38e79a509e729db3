package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// Backoff calculates the wait before the retry that follows a failed attempt.
// Implementations should be safe for concurrent use.
type Backoff interface {
	// NextInterval returns the delay after the failed attempt with the given
	// zero-based index.
	NextInterval(attempt int) time.Duration
}

// ExponentialJitter grows the delay geometrically and adds a uniform jitter
// drawn from [0, MaxJitter).
//
// Formula: Base * Multiplier^attempt + Rand() * MaxJitter
type ExponentialJitter struct {
	Base       time.Duration
	Multiplier float64
	MaxJitter  time.Duration
	// Rand returns a value in [0, 1). Defaults to math/rand/v2.Float64.
	Rand func() float64
}

// NextInterval returns the delay for the zero-based attempt.
// Negative attempts are treated as the first one.
func (e ExponentialJitter) NextInterval(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	base := e.Base
	if base <= 0 {
		base = time.Second
	}

	multiplier := e.Multiplier
	if multiplier <= 0 {
		multiplier = 2
	}

	interval := float64(base) * math.Pow(multiplier, float64(attempt))

	if e.MaxJitter > 0 {
		rnd := e.Rand
		if rnd == nil {
			rnd = rand.Float64
		}
		r := rnd()
		// Keep the jitter strictly below MaxJitter even for a misbehaving source.
		if r < 0 || r >= 1 {
			r = 0
		}
		interval += r * float64(e.MaxJitter)
	}

	return time.Duration(interval)
}

// Fixed waits the same interval before every retry.
type Fixed struct {
	Interval time.Duration
}

// NextInterval always returns the configured interval.
func (f Fixed) NextInterval(int) time.Duration {
	return f.Interval
}
