package synthesis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lusotexts/concordia/pkg/llm"
	"github.com/lusotexts/concordia/pkg/prompt"
)

// Defaults for the single generation call.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1200
)

// Options tunes the synthesis call.
type Options struct {
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
}

// Client performs the one generation call per consult request and runs the
// extraction pipeline over the result.
type Client struct {
	llm    llm.Client
	opts   Options
	logger *slog.Logger
}

// NewClient wires a synthesis client.
func NewClient(llmClient llm.Client, opts Options, logger *slog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{llm: llmClient, opts: opts, logger: logger}
}

// Synthesize sends the assembled prompt and returns the recovered JSON
// object plus the extraction stage that produced it. Provider failure is
// returned as an error; expiry of the bounded timeout instead yields the
// safe-default object, since the request can still be answered honestly.
func (c *Client) Synthesize(ctx context.Context, blocks prompt.Blocks) (map[string]interface{}, Stage, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	resp, err := c.llm.Chat(callCtx, []llm.Message{
		{Role: llm.RoleSystem, Content: blocks.System},
		{Role: llm.RoleUser, Content: blocks.User},
	}, llm.Params{
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() != nil {
			c.logger.Warn("generation call timed out, using safe default", "timeout", c.opts.Timeout)
			return fallbackObject(), StageFallback, nil
		}
		return nil, "", fmt.Errorf("generation call: %w", err)
	}

	obj, stage := Extract(resp.Content)
	if stage != StageRawParse {
		c.logger.Debug("synthesis output required recovery",
			"stage", string(stage), "finish_reason", resp.FinishReason)
	}
	return obj, stage, nil
}
