package resilience

import (
	"log/slog"
	"time"
)

type Config struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryMultiplier     float64
	// CallTimeout bounds one Execute call including retries. Zero leaves the caller's deadline alone.
	CallTimeout time.Duration

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32

	Logger *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 100 * time.Millisecond,
		RetryMaxBackoff:     400 * time.Millisecond,
		RetryMultiplier:     2.0,

		BreakerEnabled:          true,
		BreakerMinRequests:      10,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

// AIPolicy is used for model generation and OCR calls. The whole call, retries included, shares one
// deadline, and backoff may grow to four times the first wait since providers throttle in bursts.
func AIPolicy(attempts int, backoff, callTimeout time.Duration, breaker bool, logger *slog.Logger) Config {
	return Config{
		RetryMaxAttempts:    attempts,
		RetryInitialBackoff: backoff,
		RetryMaxBackoff:     4 * backoff,
		CallTimeout:         callTimeout,
		BreakerEnabled:      breaker,
		Logger:              logger,
	}
}

// PublishPolicy is used for queue publishes, which stay under the caller's deadline.
func PublishPolicy(attempts int, backoff time.Duration, breaker bool, logger *slog.Logger) Config {
	return Config{
		RetryMaxAttempts:    attempts,
		RetryInitialBackoff: backoff,
		BreakerEnabled:      breaker,
		Logger:              logger,
	}
}

func (c Config) normalize() Config {
	def := DefaultConfig()
	positiveInt := func(v *int, d int) {
		if *v <= 0 {
			*v = d
		}
	}
	positiveDur := func(v *time.Duration, d time.Duration) {
		if *v <= 0 {
			*v = d
		}
	}

	positiveInt(&c.RetryMaxAttempts, def.RetryMaxAttempts)
	positiveDur(&c.RetryInitialBackoff, def.RetryInitialBackoff)
	positiveDur(&c.RetryMaxBackoff, def.RetryMaxBackoff)
	if c.RetryMaxBackoff < c.RetryInitialBackoff {
		c.RetryMaxBackoff = c.RetryInitialBackoff
	}
	if c.RetryMultiplier < 1.0 {
		c.RetryMultiplier = def.RetryMultiplier
	}
	if c.CallTimeout < 0 {
		c.CallTimeout = 0
	}

	if c.BreakerMinRequests == 0 {
		c.BreakerMinRequests = def.BreakerMinRequests
	}
	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1 {
		c.BreakerFailureRatio = def.BreakerFailureRatio
	}
	positiveDur(&c.BreakerOpenTimeout, def.BreakerOpenTimeout)
	if c.BreakerHalfOpenMaxCalls == 0 {
		c.BreakerHalfOpenMaxCalls = def.BreakerHalfOpenMaxCalls
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
