package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig tunes the circuit breaker around the chat client.
type BreakerConfig struct {
	Enabled          bool
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	ReadyToTripRatio float64
}

// DefaultBreakerConfig returns conservative breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		ReadyToTripRatio: 0.6,
	}
}

// CircuitBreakerClient wraps a Client with circuit breaking so a failing
// provider sheds load quickly instead of holding every request for the
// full timeout.
type CircuitBreakerClient struct {
	client Client
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// NewCircuitBreakerClient wraps client. If cfg.Enabled is false the client
// is returned unwrapped.
func NewCircuitBreakerClient(client Client, cfg BreakerConfig, logger *slog.Logger) Client {
	if !cfg.Enabled {
		return client
	}
	if logger == nil {
		logger = slog.Default()
	}

	st := gobreaker.Settings{
		Name:        "generation",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &CircuitBreakerClient{
		client: client,
		cb:     gobreaker.NewCircuitBreaker(st),
		logger: logger,
	}
}

// Chat implements Client.
func (c *CircuitBreakerClient) Chat(ctx context.Context, messages []Message, params Params) (*Response, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.Chat(ctx, messages, params)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Response), nil
}
