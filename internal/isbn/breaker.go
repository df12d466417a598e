package isbn

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const breakerName = "isbn-provider"

// newBreaker trips after failures consecutive provider errors and lets a
// single probe through once cooldown has passed.
func newBreaker(failures uint32, cooldown time.Duration, logger *zap.Logger) *gobreaker.CircuitBreaker {
	if failures < 1 {
		failures = 1
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("ISBN provider circuit changed state",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	})
}

// breakerRejected reports whether err came from the breaker refusing the call
// rather than from the provider.
func breakerRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
