// Package scoring implements the hybrid relevance scorer: lexical string
// signals blended adaptively with dense-vector cosine similarity, plus the
// structural noise filter applied before any ranking.
package scoring

import (
	"math"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/lusotexts/concordia/pkg/types"
)

// Weights holds the tuned constants of the scorer. The values were
// calibrated empirically against the pilot corpus; treat them as a set and
// recalibrate against labeled queries rather than adjusting individually.
type Weights struct {
	// Lexical signal parameters.
	SubstringBase    float64 // base credit for substring containment
	SubstringSpan    float64 // additional credit scaled by overlap ratio
	GlossBonus       float64 // flat bonus for a gloss/description hit
	SubcategoryBonus float64 // flat bonus for a subcategory hit
	CategoryBonus    float64 // flat bonus for a category hit
	FuzzyFloor       float64 // minimum edit-distance similarity to credit
	FuzzyScale       float64 // credit multiplier for fuzzy similarity
	FuzzyCandidates  int     // cap on aliases considered for fuzzy matching

	// Adaptive blend breakpoints: semantic weight by lexical strength.
	StrongLexical        float64 // lexical score treated as near-certain
	WeakLexical          float64 // lexical score treated as unreliable
	SemanticWeightStrong float64 // semantic share when lexical is strong
	SemanticWeightMid    float64 // semantic share in the middle band
	SemanticWeightWeak   float64 // semantic share when lexical is weak

	MinQueryLen int // queries shorter than this return nothing
	MinAliasLen int // aliases shorter than this skip substring checks
}

// DefaultWeights returns the calibrated scorer constants.
func DefaultWeights() Weights {
	return Weights{
		SubstringBase:        0.7,
		SubstringSpan:        0.3,
		GlossBonus:           0.55,
		SubcategoryBonus:     0.4,
		CategoryBonus:        0.3,
		FuzzyFloor:           0.6,
		FuzzyScale:           0.8,
		FuzzyCandidates:      10,
		StrongLexical:        0.9,
		WeakLexical:          0.6,
		SemanticWeightStrong: 0.3,
		SemanticWeightMid:    0.5,
		SemanticWeightWeak:   0.65,
		MinQueryLen:          2,
		MinAliasLen:          2,
	}
}

// Score is the result of scoring one candidate against a query.
type Score struct {
	Composite float64 `json:"score"`
	Semantic  float64 `json:"semantic_score"`
	Lexical   float64 `json:"lexical_score"`
}

// Scorer combines lexical and semantic signals into one ranking score.
type Scorer struct {
	weights Weights
}

// NewScorer returns a scorer using the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Weights returns the scorer's active weights.
func (s *Scorer) Weights() Weights { return s.weights }

// Score ranks one index entry against a query. queryVec may be nil, in
// which case the score is lexical-only.
func (s *Scorer) Score(query string, queryVec []float32, entry *types.IndexEntry) Score {
	lexical := s.LexicalScore(query, entry)

	if len(queryVec) == 0 || len(entry.Embedding) == 0 {
		return Score{Composite: lexical, Lexical: lexical}
	}

	semantic := CosineSimilarity(queryVec, entry.Embedding)
	semWeight := s.semanticWeight(lexical)
	return Score{
		Composite: semWeight*semantic + (1-semWeight)*lexical,
		Semantic:  semantic,
		Lexical:   lexical,
	}
}

// semanticWeight implements the adaptive blend: strong explicit lexical
// evidence dominates, weak lexical evidence yields to semantic recall.
func (s *Scorer) semanticWeight(lexical float64) float64 {
	switch {
	case lexical >= s.weights.StrongLexical:
		return s.weights.SemanticWeightStrong
	case lexical >= s.weights.WeakLexical:
		return s.weights.SemanticWeightMid
	default:
		return s.weights.SemanticWeightWeak
	}
}

// LexicalScore computes the string-similarity signal for one entry. The
// independent signals are combined by maximum, never summed, so a name that
// matches several ways is not double counted.
func (s *Scorer) LexicalScore(query string, entry *types.IndexEntry) float64 {
	q := Normalize(query)
	if len(q) < s.weights.MinQueryLen {
		return 0
	}

	best := 0.0
	fuzzyCandidates := make([]string, 0, s.weights.FuzzyCandidates)

	for _, name := range entry.Names {
		alias := Normalize(name)
		if len(alias) < s.weights.MinAliasLen {
			continue
		}
		if alias == q {
			// Exact alias match is the ceiling; nothing can improve on it.
			return 1.0
		}
		if sub := s.substringScore(q, alias); sub > best {
			best = sub
		}
		if len(fuzzyCandidates) < s.weights.FuzzyCandidates {
			fuzzyCandidates = append(fuzzyCandidates, alias)
		}
	}

	if field := s.fieldBonus(q, entry); field > best {
		best = field
	}

	if fuzzy := s.fuzzyScore(q, fuzzyCandidates); fuzzy > best {
		best = fuzzy
	}

	return best
}

// substringScore credits containment in either direction, scaled by how
// much of the longer string the match covers.
func (s *Scorer) substringScore(q, alias string) float64 {
	var short, long string
	if len(q) <= len(alias) {
		short, long = q, alias
	} else {
		short, long = alias, q
	}
	if !strings.Contains(long, short) {
		return 0
	}
	overlap := float64(len(short)) / float64(len(long))
	return s.weights.SubstringBase + s.weights.SubstringSpan*overlap
}

// fieldBonus credits query hits in descriptive fields. Descriptive text
// outranks subcategory, which outranks category.
func (s *Scorer) fieldBonus(q string, entry *types.IndexEntry) float64 {
	if entry.Gloss != "" && strings.Contains(Normalize(entry.Gloss), q) {
		return s.weights.GlossBonus
	}
	if entry.Subcategory != "" && strings.Contains(Normalize(entry.Subcategory), q) {
		return s.weights.SubcategoryBonus
	}
	if strings.Contains(Normalize(string(entry.Category)), q) {
		return s.weights.CategoryBonus
	}
	return 0
}

// fuzzyScore credits bounded edit-distance similarity against the capped
// alias set. Similarity below the floor earns nothing; historical spelling
// drift below that point is indistinguishable from unrelated names.
func (s *Scorer) fuzzyScore(q string, aliases []string) float64 {
	best := 0.0
	for _, alias := range aliases {
		longest := len(q)
		if len(alias) > longest {
			longest = len(alias)
		}
		if longest == 0 {
			continue
		}
		dist := levenshtein.ComputeDistance(q, alias)
		sim := 1.0 - float64(dist)/float64(longest)
		if sim < s.weights.FuzzyFloor {
			continue
		}
		if credit := sim * s.weights.FuzzyScale; credit > best {
			best = credit
		}
	}
	return best
}

// CosineSimilarity computes cosine similarity between two vectors, guarding
// the denominator against zero-magnitude inputs.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	const epsilon = 1e-10
	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + epsilon)
}
