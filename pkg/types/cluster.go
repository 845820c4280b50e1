package types

// ClusterMember is one contributing book/entity pair of a concordance
// cluster.
type ClusterMember struct {
	BookID   string   `json:"book_id"`
	EntityID string   `json:"entity_id,omitempty"`
	Name     string   `json:"name"`
	Mentions int      `json:"mentions"`
	Contexts []string `json:"contexts,omitempty"`
	Variants []string `json:"variants,omitempty"`
}

// SimilarityEdge links two member names with the similarity that justified
// clustering them.
type SimilarityEdge struct {
	A          string  `json:"a"`
	B          string  `json:"b"`
	Similarity float64 `json:"similarity"`
}

// GroundTruth is the optional curated identification of a cluster's
// real-world referent.
type GroundTruth struct {
	ModernName  string `json:"modern_name,omitempty"`
	Linnaean    string `json:"linnaean,omitempty"`
	Description string `json:"description,omitempty"`
	Gloss       string `json:"semantic_gloss,omitempty"`
}

// Cluster represents one real-world referent attested across texts.
type Cluster struct {
	ID            int              `json:"id"`
	CanonicalName string           `json:"canonical_name"`
	Category      Category         `json:"category"`
	Subcategory   string           `json:"subcategory,omitempty"`
	Members       []ClusterMember  `json:"members"`
	Edges         []SimilarityEdge `json:"edges,omitempty"`
	GroundTruth   *GroundTruth     `json:"ground_truth,omitempty"`
}

// TotalMentions sums mention counts across members.
func (c *Cluster) TotalMentions() int {
	total := 0
	for i := range c.Members {
		total += c.Members[i].Mentions
	}
	return total
}

// IndexEntry is a pre-computed search index record for one cluster or
// entity: an embedding vector plus denormalized metadata for lexical
// matching.
type IndexEntry struct {
	ID          string    `json:"id"`
	Names       []string  `json:"names"` // canonical name first, then variants
	Category    Category  `json:"category"`
	Subcategory string    `json:"subcategory,omitempty"`
	Books       []string  `json:"books,omitempty"`
	Mentions    int       `json:"mentions"`
	Gloss       string    `json:"gloss,omitempty"` // descriptive text for conceptual search
	Embedding   []float32 `json:"embedding,omitempty"`
}

// CanonicalName returns the first (canonical) name of the entry.
func (e *IndexEntry) CanonicalName() string {
	if len(e.Names) == 0 {
		return ""
	}
	return e.Names[0]
}

// EmbeddingIndex is the full search index artifact. Model and Dims declare
// the embedding space; query-time embedding calls must match both.
type EmbeddingIndex struct {
	Model   string       `json:"model"`
	Dims    int          `json:"dims"`
	Entries []IndexEntry `json:"entries"`
}
