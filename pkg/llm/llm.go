// Package llm wraps the generative model provider. One request makes at
// most one chat call: failures surface to the caller instead of being
// retried, since there is no safe partial answer to substitute.
package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lusotexts/concordia/pkg/types"
)

// Message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one prompt message.
type Message struct {
	Role    string
	Content string
}

// Params are the generation parameters for one call.
type Params struct {
	Temperature float32
	MaxTokens   int
}

// Response is the raw generation result.
type Response struct {
	Content      string
	Model        string
	FinishReason string
}

// Client invokes the generative model provider.
type Client interface {
	Chat(ctx context.Context, messages []Message, params Params) (*Response, error)
}

// Config configures an OpenAI-compatible chat client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIClient implements Client against the OpenAI chat API or a
// compatible endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a chat client.
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, types.ErrMissingCredentials
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(clientCfg), model: model}, nil
}

// Chat performs a single, non-streamed chat completion.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message, params Params) (*Response, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: params.Temperature,
		Stream:      false,
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = params.MaxTokens
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("chat completion timed out: %w", err)
		}
		return nil, fmt.Errorf("chat completion: %w: %v", types.ErrProviderUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices: %w", types.ErrProviderUnavailable)
	}
	return &Response{
		Content:      resp.Choices[0].Message.Content,
		Model:        resp.Model,
		FinishReason: string(resp.Choices[0].FinishReason),
	}, nil
}
