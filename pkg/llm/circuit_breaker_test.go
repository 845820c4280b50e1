package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyClient struct {
	err   error
	calls int
}

func (f *flakyClient) Chat(ctx context.Context, messages []Message, params Params) (*Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &Response{Content: "ok", FinishReason: "stop"}, nil
}

func TestCircuitBreakerDisabledReturnsUnwrapped(t *testing.T) {
	inner := &flakyClient{}
	client := NewCircuitBreakerClient(inner, BreakerConfig{Enabled: false}, nil)
	assert.Same(t, Client(inner), client)
}

func TestCircuitBreakerPassesThroughSuccess(t *testing.T) {
	inner := &flakyClient{}
	client := NewCircuitBreakerClient(inner, DefaultBreakerConfig(), nil)

	resp, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "q"}}, Params{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 1, inner.calls)
}

func TestCircuitBreakerOpensAfterRepeatedFailures(t *testing.T) {
	inner := &flakyClient{err: errors.New("provider down")}
	client := NewCircuitBreakerClient(inner, DefaultBreakerConfig(), nil)

	for i := 0; i < 3; i++ {
		_, err := client.Chat(context.Background(), nil, Params{})
		require.Error(t, err)
	}

	// The breaker is now open: calls fail fast without reaching the client.
	before := inner.calls
	_, err := client.Chat(context.Background(), nil, Params{})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, before, inner.calls)
}
