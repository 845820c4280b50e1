package concordia

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lusotexts/concordia/pkg/corpus"
	"github.com/lusotexts/concordia/pkg/embedder"
	"github.com/lusotexts/concordia/pkg/prompt"
	"github.com/lusotexts/concordia/pkg/retrieval"
	"github.com/lusotexts/concordia/pkg/scoring"
	"github.com/lusotexts/concordia/pkg/synthesis"
	"github.com/lusotexts/concordia/pkg/types"
	"github.com/lusotexts/concordia/pkg/validator"
)

// MaxQuestionLen bounds consult questions.
const MaxQuestionLen = 500

// Concordia is the main interface for querying the concordance corpus.
type Concordia interface {
	// Search ranks all corpus entries against a free-text query.
	Search(ctx context.Context, query string, limit int, category types.Category) (*retrieval.SearchResponse, error)

	// Consult retrieves book-scoped evidence for a question and produces a
	// validated, persona-voiced answer grounded in that evidence.
	Consult(ctx context.Context, bookID, question string) (*ConsultResult, error)

	// Store exposes the read-only corpus store.
	Store() *corpus.Store
}

// EvidenceScore is the per-evidence diagnostic of a consultation.
type EvidenceScore struct {
	EntityID  string               `json:"entity_id"`
	Name      string               `json:"name"`
	Score     float64              `json:"score"`
	Breakdown types.ScoreBreakdown `json:"breakdown"`
}

// Diagnostics describes how a consultation was answered.
type Diagnostics struct {
	Persona        string          `json:"persona"`
	EvidenceCount  int             `json:"evidence_count"`
	RetrievalMode  string          `json:"retrieval_mode"`
	SynthesisStage string          `json:"synthesis_stage"`
	Scores         []EvidenceScore `json:"scores"`
}

// ConsultResult pairs the validated response with its diagnostics.
type ConsultResult struct {
	Response    types.ConsultResponse `json:"response"`
	Diagnostics Diagnostics           `json:"diagnostics"`
}

// Client is the main implementation of the Concordia interface.
type Client struct {
	store        *corpus.Store
	orchestrator *retrieval.Orchestrator
	synthesizer  *synthesis.Client
	logger       *slog.Logger
}

// Options configures a Client. Embedder and Synthesizer may be nil:
// without an embedder every request is lexical-only; without a synthesizer
// Consult fails with types.ErrMissingCredentials.
type Options struct {
	Store       *corpus.Store
	Embedder    embedder.Client
	Synthesizer *synthesis.Client
	Weights     *scoring.Weights
	Logger      *slog.Logger
}

// NewClient wires a Concordia client from its collaborators.
func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	weights := scoring.DefaultWeights()
	if opts.Weights != nil {
		weights = *opts.Weights
	}
	return &Client{
		store: opts.Store,
		orchestrator: retrieval.NewOrchestrator(
			opts.Store, opts.Embedder, scoring.NewScorer(weights), logger),
		synthesizer: opts.Synthesizer,
		logger:      logger,
	}
}

// Store implements Concordia.
func (c *Client) Store() *corpus.Store { return c.store }

// Search implements Concordia.
func (c *Client) Search(ctx context.Context, query string, limit int, category types.Category) (*retrieval.SearchResponse, error) {
	return c.orchestrator.Search(ctx, query, limit, category)
}

// Consult implements Concordia.
func (c *Client) Consult(ctx context.Context, bookID, question string) (*ConsultResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, types.ErrQuestionEmpty
	}
	if len(question) > MaxQuestionLen {
		return nil, types.ErrQuestionTooLong
	}
	if c.synthesizer == nil {
		return nil, types.ErrMissingCredentials
	}

	persona, err := c.store.Persona(bookID)
	if err != nil {
		return nil, err
	}

	evidence, mode, err := c.orchestrator.Evidence(ctx, bookID, question)
	if err != nil {
		return nil, fmt.Errorf("evidence retrieval: %w", err)
	}

	blocks := prompt.Assemble(prompt.Input{
		Persona:  persona,
		Question: question,
		Evidence: evidence,
	})

	raw, stage, err := c.synthesizer.Synthesize(ctx, blocks)
	if err != nil {
		return nil, err
	}

	response := validator.Validate(raw, evidence, question)

	scores := make([]EvidenceScore, 0, len(evidence))
	for _, ev := range evidence {
		scores = append(scores, EvidenceScore{
			EntityID:  ev.Entity.ID,
			Name:      ev.Attestation.Name,
			Score:     ev.Score,
			Breakdown: ev.Breakdown,
		})
	}

	c.logger.Info("consultation answered",
		"book", bookID,
		"persona", persona.Name,
		"evidence", len(evidence),
		"mode", mode,
		"stage", string(stage),
		"confidence", string(response.Confidence))

	return &ConsultResult{
		Response: response,
		Diagnostics: Diagnostics{
			Persona:        persona.Name,
			EvidenceCount:  len(evidence),
			RetrievalMode:  mode,
			SynthesisStage: string(stage),
			Scores:         scores,
		},
	}, nil
}
