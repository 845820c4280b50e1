// Package retrieval ranks corpus records for a query. It offers two
// flavors: global corpus search over the embedding index, and book-scoped
// evidence retrieval used to ground persona consultations.
package retrieval

import (
	"context"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/lusotexts/concordia/pkg/corpus"
	"github.com/lusotexts/concordia/pkg/embedder"
	"github.com/lusotexts/concordia/pkg/scoring"
	"github.com/lusotexts/concordia/pkg/types"
)

// Retrieval modes reported to callers.
const (
	ModeHybrid  = "hybrid"
	ModeLexical = "lexical"
)

// Defaults and channel constants for book-scoped evidence scoring.
const (
	DefaultSearchLimit = 20
	EvidenceLimit      = 15

	keywordAliasWeight   = 2.0
	keywordContextWeight = 0.5
	canonicalBonus       = 4.0
	variantBonus         = 3.0
	canonicalMinLen      = 4
	semanticBoostScale   = 4.0
	semanticFloor        = 0.25
	popularityWeight     = 0.05
)

// greetingRe matches salutation-style questions that carry no retrievable
// content; these skip the embedding call entirely.
var greetingRe = regexp.MustCompile(`(?i)^\s*(hi|hello|hey|greetings|salve|ola|olá|good\s+(morning|day|evening))\b`)

// SearchResult is one ranked global search hit.
type SearchResult struct {
	Entry *types.IndexEntry
	scoring.Score
}

// SearchResponse is the result of a global corpus search.
type SearchResponse struct {
	Results []SearchResult
	Total   int    // candidates considered, pre-limit
	Mode    string // ModeHybrid if an embedding was obtained, else ModeLexical
}

// Orchestrator runs both retrieval flavors on top of the scorer and store.
// The embedding client may be nil, in which case retrieval is lexical-only.
type Orchestrator struct {
	store    *corpus.Store
	embedder embedder.Client
	scorer   *scoring.Scorer
	logger   *slog.Logger
}

// NewOrchestrator wires a retrieval orchestrator.
func NewOrchestrator(store *corpus.Store, emb embedder.Client, scorer *scoring.Scorer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if scorer == nil {
		scorer = scoring.NewScorer(scoring.DefaultWeights())
	}
	return &Orchestrator{store: store, embedder: emb, scorer: scorer, logger: logger}
}

// Search ranks all corpus index entries against the query, optionally
// filtered by category, and returns the top limit hits. Queries under two
// characters are rejected before any provider call.
func (o *Orchestrator) Search(ctx context.Context, query string, limit int, category types.Category) (*SearchResponse, error) {
	if len(strings.TrimSpace(query)) < o.scorer.Weights().MinQueryLen {
		return &SearchResponse{Mode: ModeLexical}, types.ErrQueryTooShort
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	index, err := o.store.Index()
	if err != nil {
		return nil, err
	}

	queryVec, mode := o.embedQuery(ctx, query)

	results := make([]SearchResult, 0, len(index.Entries))
	for i := range index.Entries {
		entry := &index.Entries[i]
		if category != "" && entry.Category != category {
			continue
		}
		if scoring.IsNoisy(entry.CanonicalName(), entry.Mentions) {
			continue
		}
		results = append(results, SearchResult{
			Entry: entry,
			Score: o.scorer.Score(query, queryVec, entry),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Composite > results[j].Composite
	})

	total := len(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return &SearchResponse{Results: results, Total: total, Mode: mode}, nil
}

// Evidence retrieves the entities attested in one book that best support
// answering the question, scored across four independent channels.
func (o *Orchestrator) Evidence(ctx context.Context, bookID, question string) ([]types.Evidence, string, error) {
	entities, err := o.store.EntitiesForBook(bookID)
	if err != nil {
		return nil, ModeLexical, err
	}

	// Salutations have nothing to embed; skip the provider round trip.
	var queryVec []float32
	mode := ModeLexical
	if !greetingRe.MatchString(question) {
		queryVec, mode = o.embedQuery(ctx, question)
	}

	var entryByID map[string]*types.IndexEntry
	if len(queryVec) > 0 {
		if index, err := o.store.Index(); err == nil {
			entryByID = make(map[string]*types.IndexEntry, len(index.Entries))
			for i := range index.Entries {
				entryByID[index.Entries[i].ID] = &index.Entries[i]
			}
		}
	}

	normQuestion := scoring.Normalize(question)
	tokens := scoring.Tokenize(question)

	evidence := make([]types.Evidence, 0, len(entities))
	for _, entity := range entities {
		att := entity.AttestationIn(bookID)
		if att == nil {
			continue
		}
		if scoring.IsNoisy(att.Name, att.Mentions) {
			continue
		}

		breakdown := types.ScoreBreakdown{
			Keyword:    keywordScore(tokens, entity, att),
			Substring:  substringScore(normQuestion, entity, att),
			Semantic:   o.semanticBoost(queryVec, entryByID, entity),
			Popularity: math.Log(float64(att.Mentions)+1) * popularityWeight,
		}
		if breakdown.Total() <= 0 {
			continue
		}
		evidence = append(evidence, types.Evidence{
			Entity:      entity,
			Attestation: att,
			Score:       breakdown.Total(),
			Breakdown:   breakdown,
		})
	}

	sort.SliceStable(evidence, func(i, j int) bool {
		return evidence[i].Score > evidence[j].Score
	})
	if len(evidence) > EvidenceLimit {
		evidence = evidence[:EvidenceLimit]
	}
	return evidence, mode, nil
}

// embedQuery makes the single outbound embedding call for a request. On
// failure the semantic channel is disabled and retrieval degrades to
// lexical-only.
func (o *Orchestrator) embedQuery(ctx context.Context, query string) ([]float32, string) {
	if o.embedder == nil {
		return nil, ModeLexical
	}
	vec, err := o.embedder.EmbedSingle(ctx, query)
	if err != nil {
		o.logger.Warn("embedding unavailable, degrading to lexical retrieval", "error", err)
		return nil, ModeLexical
	}
	return vec, ModeHybrid
}

// keywordScore credits tokenized overlap between the question and the
// entity's names and contexts.
func keywordScore(tokens []string, entity *types.Entity, att *types.Attestation) float64 {
	if len(tokens) == 0 {
		return 0
	}
	var aliasText strings.Builder
	for _, n := range entity.AllNames() {
		aliasText.WriteString(scoring.Normalize(n))
		aliasText.WriteByte(' ')
	}
	aliasText.WriteString(scoring.Normalize(att.Name))
	for _, v := range att.Variants {
		aliasText.WriteByte(' ')
		aliasText.WriteString(scoring.Normalize(v))
	}
	aliases := aliasText.String()

	var contextText strings.Builder
	for _, c := range att.Contexts {
		contextText.WriteString(scoring.Normalize(c))
		contextText.WriteByte(' ')
	}
	contexts := contextText.String()

	score := 0.0
	for _, tok := range tokens {
		if strings.Contains(aliases, tok) {
			score += keywordAliasWeight
		}
		if strings.Contains(contexts, tok) {
			score += keywordContextWeight
		}
	}
	return score
}

// substringScore credits the question containing the entity's names
// verbatim: the canonical name when long enough to be unambiguous, and the
// first matching variant.
func substringScore(normQuestion string, entity *types.Entity, att *types.Attestation) float64 {
	score := 0.0
	canonical := scoring.Normalize(entity.Name)
	if len(canonical) >= canonicalMinLen && strings.Contains(normQuestion, canonical) {
		score += canonicalBonus
	}
	for _, v := range append(entity.Aliases, att.Variants...) {
		nv := scoring.Normalize(v)
		if len(nv) >= canonicalMinLen && nv != canonical && strings.Contains(normQuestion, nv) {
			score += variantBonus
			break
		}
	}
	return score
}

// semanticBoost contributes scaled cosine similarity from the book-scoped
// index lookup. Similarities below the floor are noise and earn nothing.
func (o *Orchestrator) semanticBoost(queryVec []float32, entryByID map[string]*types.IndexEntry, entity *types.Entity) float64 {
	if len(queryVec) == 0 || entryByID == nil {
		return 0
	}
	entry, ok := entryByID[entity.ID]
	if !ok || len(entry.Embedding) == 0 {
		return 0
	}
	sim := scoring.CosineSimilarity(queryVec, entry.Embedding)
	if sim < semanticFloor {
		return 0
	}
	return sim * semanticBoostScale
}
