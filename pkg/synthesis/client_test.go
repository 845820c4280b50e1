package synthesis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lusotexts/concordia/pkg/llm"
	"github.com/lusotexts/concordia/pkg/prompt"
	"github.com/lusotexts/concordia/pkg/types"
)

// stubLLM replays a canned response or error; when block is set it waits
// for context expiry instead, simulating a hung provider.
type stubLLM struct {
	content string
	err     error
	block   bool

	gotMessages []llm.Message
	gotParams   llm.Params
}

func (s *stubLLM) Chat(ctx context.Context, messages []llm.Message, params llm.Params) (*llm.Response, error) {
	s.gotMessages = messages
	s.gotParams = params
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Content: s.content, FinishReason: "stop"}, nil
}

func testBlocks() prompt.Blocks {
	return prompt.Blocks{System: "You are the author.", User: "QUESTION: what of mandragora?"}
}

func TestSynthesizeCleanResponse(t *testing.T) {
	stub := &stubLLM{content: `{"answer": "Of mandragora, beware the root.", "confidence": "high"}`}
	c := NewClient(stub, Options{}, nil)

	obj, stage, err := c.Synthesize(context.Background(), testBlocks())
	require.NoError(t, err)
	assert.Equal(t, StageRawParse, stage)
	assert.Equal(t, "Of mandragora, beware the root.", obj["answer"])

	// The prompt blocks travel as a system/user message pair.
	require.Len(t, stub.gotMessages, 2)
	assert.Equal(t, llm.RoleSystem, stub.gotMessages[0].Role)
	assert.Equal(t, llm.RoleUser, stub.gotMessages[1].Role)
	assert.Equal(t, DefaultMaxTokens, stub.gotParams.MaxTokens)
}

func TestSynthesizeTimeoutYieldsSafeDefault(t *testing.T) {
	stub := &stubLLM{block: true}
	c := NewClient(stub, Options{Timeout: 20 * time.Millisecond}, nil)

	obj, stage, err := c.Synthesize(context.Background(), testBlocks())
	require.NoError(t, err, "a timed-out call must degrade, not fail")
	assert.Equal(t, StageFallback, stage)
	assert.NotEmpty(t, obj["answer"])
	assert.Equal(t, "low", obj["confidence"])
}

func TestSynthesizeProviderErrorSurfaces(t *testing.T) {
	stub := &stubLLM{err: types.ErrProviderUnavailable}
	c := NewClient(stub, Options{}, nil)

	_, _, err := c.Synthesize(context.Background(), testBlocks())
	assert.ErrorIs(t, err, types.ErrProviderUnavailable)
}

func TestSynthesizeRecoversMalformedOutput(t *testing.T) {
	stub := &stubLLM{content: "```json\n{\"answer\": \"truncated but fenced"}
	c := NewClient(stub, Options{}, nil)

	obj, stage, err := c.Synthesize(context.Background(), testBlocks())
	require.NoError(t, err)
	assert.Equal(t, StageRepairParse, stage)
	assert.Equal(t, "truncated but fenced", obj["answer"])
}

func TestNewClientOptionDefaults(t *testing.T) {
	c := NewClient(&stubLLM{}, Options{}, nil)
	assert.Equal(t, DefaultTimeout, c.opts.Timeout)
	assert.Equal(t, float32(DefaultTemperature), c.opts.Temperature)
	assert.Equal(t, DefaultMaxTokens, c.opts.MaxTokens)
}
