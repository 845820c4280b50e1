// Package embedder provides the query-time embedding provider. The corpus
// index declares its embedding model and dimensionality; the client here
// must be configured to match or semantic scores are meaningless.
package embedder

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lusotexts/concordia/pkg/types"
)

// Client turns text into a fixed-dimension vector.
type Client interface {
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
	Model() string
	Dimensions() int
}

// Config configures an embedding client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Dims    int
}

// OpenAIClient implements Client against the OpenAI embeddings API or any
// compatible endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
	dims   int
}

// NewOpenAIClient creates an embedding client. The model and dims should
// come from the loaded search index so query vectors live in the same
// space as the precomputed ones.
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
		model = string(openai.SmallEmbedding3)
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		dims:   cfg.Dims,
	}, nil
}

// EmbedSingle embeds one text. Newlines are flattened before the call; the
// embedding endpoint treats them as token boundaries that hurt similarity.
func (c *OpenAIClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input: []string{strings.ReplaceAll(text, "\n", " ")},
		Model: openai.EmbeddingModel(c.model),
	}
	if c.dims > 0 {
		req.Dimensions = c.dims
	}
	resp, err := c.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no vectors")
	}
	return resp.Data[0].Embedding, nil
}

// Model returns the embedding model identifier in use.
func (c *OpenAIClient) Model() string { return c.model }

// Dimensions returns the configured vector dimensionality.
func (c *OpenAIClient) Dimensions() int { return c.dims }
