// Package types defines the core data model shared across concordia:
// corpus entities and their per-book attestations, cross-text concordance
// clusters, the embedding search index, persona profiles, and the
// request-scoped retrieval and consultation structures.
package types
