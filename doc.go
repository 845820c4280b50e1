// Package concordia retrieves the most relevant records of a historical-
// texts concordance corpus for a free-text query, blending dense semantic
// similarity with lexical and fuzzy string matching. In consult mode the
// retrieved evidence grounds a persona-constrained generative answer that
// is validated before it reaches the caller: every citation must belong to
// the evidence actually retrieved, and the response is always well-formed
// even under total synthesis failure.
//
// The corpus artifacts (entity registry, embedding index, concordance
// clusters, persona profiles) are produced by an offline pipeline and
// consumed read-only.
package concordia
