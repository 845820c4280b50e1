// Package corpus loads and caches the immutable build-time artifacts the
// retrieval engine consumes: the entity registry, the embedding search
// index, the concordance clusters, and the persona profiles.
//
// A Store is constructed explicitly and injected into request handlers.
// Each artifact is loaded lazily on first access behind a singleflight
// group, so concurrent first accesses coalesce into one read; after that
// the cached value is read-only for the life of the process.
package corpus

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/lusotexts/concordia/pkg/types"
)

// Artifact file names within the data directory, as written by the offline
// pipeline.
const (
	registryFile    = "entity_registry.json"
	indexFile       = "search_index.json"
	concordanceFile = "concordance.json"
	personasFile    = "personas.json"
)

// Book is one source text of the corpus.
type Book struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
	Year   int    `json:"year,omitempty"`
}

// RegistryCounts are the aggregate totals the registry artifact declares.
type RegistryCounts struct {
	Entities int `json:"entities"`
	Books    int `json:"books"`
	Mentions int `json:"mentions"`
}

// Registry is the canonical entity registry artifact.
type Registry struct {
	Books    []Book         `json:"books"`
	Entities []types.Entity `json:"entities"`
	Counts   RegistryCounts `json:"counts"`
}

// Store provides read-only access to corpus artifacts.
type Store struct {
	dir    string
	logger *slog.Logger
	group  singleflight.Group

	mu       sync.RWMutex
	registry *Registry
	index    *types.EmbeddingIndex
	clusters []types.Cluster
	personas map[string]types.PersonaProfile

	// byID and byBook are derived lookup tables built with the registry.
	byID   map[string]*types.Entity
	byBook map[string][]*types.Entity
}

// NewStore creates a store reading artifacts from dir. Nothing is loaded
// until first access.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// Registry returns the entity registry, loading it on first call.
func (s *Store) Registry() (*Registry, error) {
	s.mu.RLock()
	cached := s.registry
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	_, err, _ := s.group.Do(registryFile, func() (interface{}, error) {
		var reg Registry
		if err := s.readArtifact(registryFile, &reg); err != nil {
			return nil, err
		}
		byID := make(map[string]*types.Entity, len(reg.Entities))
		byBook := make(map[string][]*types.Entity)
		for i := range reg.Entities {
			e := &reg.Entities[i]
			byID[e.ID] = e
			for _, b := range e.Books {
				byBook[b] = append(byBook[b], e)
			}
		}
		s.mu.Lock()
		s.registry = &reg
		s.byID = byID
		s.byBook = byBook
		s.mu.Unlock()
		s.logger.Info("entity registry loaded",
			"entities", len(reg.Entities), "books", len(reg.Books))
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry, nil
}

// Index returns the embedding search index, loading it on first call.
func (s *Store) Index() (*types.EmbeddingIndex, error) {
	s.mu.RLock()
	cached := s.index
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	_, err, _ := s.group.Do(indexFile, func() (interface{}, error) {
		var idx types.EmbeddingIndex
		if err := s.readArtifact(indexFile, &idx); err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.index = &idx
		s.mu.Unlock()
		s.logger.Info("search index loaded",
			"entries", len(idx.Entries), "model", idx.Model, "dims", idx.Dims)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index, nil
}

// Clusters returns the concordance clusters, loading them on first call.
func (s *Store) Clusters() ([]types.Cluster, error) {
	s.mu.RLock()
	cached := s.clusters
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	_, err, _ := s.group.Do(concordanceFile, func() (interface{}, error) {
		var clusters []types.Cluster
		if err := s.readArtifact(concordanceFile, &clusters); err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.clusters = clusters
		s.mu.Unlock()
		s.logger.Info("concordance loaded", "clusters", len(clusters))
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clusters, nil
}

// Persona returns the persona profile for a book, with profile defaults
// applied. Returns types.ErrUnknownBook for books without a persona.
func (s *Store) Persona(bookID string) (types.PersonaProfile, error) {
	if err := s.loadPersonas(); err != nil {
		return types.PersonaProfile{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.personas[bookID]
	if !ok {
		return types.PersonaProfile{}, fmt.Errorf("persona for %q: %w", bookID, types.ErrUnknownBook)
	}
	return p.WithDefaults(), nil
}

func (s *Store) loadPersonas() error {
	s.mu.RLock()
	loaded := s.personas != nil
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	_, err, _ := s.group.Do(personasFile, func() (interface{}, error) {
		var profiles []types.PersonaProfile
		if err := s.readArtifact(personasFile, &profiles); err != nil {
			return nil, err
		}
		byBook := make(map[string]types.PersonaProfile, len(profiles))
		for _, p := range profiles {
			byBook[p.BookID] = p
		}
		s.mu.Lock()
		s.personas = byBook
		s.mu.Unlock()
		s.logger.Info("personas loaded", "profiles", len(profiles))
		return nil, nil
	})
	return err
}

// Entity returns the registry entity with the given id, or
// types.ErrUnknownEntity.
func (s *Store) Entity(id string) (*types.Entity, error) {
	if _, err := s.Registry(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("entity %q: %w", id, types.ErrUnknownEntity)
	}
	return e, nil
}

// EntitiesForBook returns every entity attested in the given book. Returns
// types.ErrUnknownBook for ids absent from the registry.
func (s *Store) EntitiesForBook(bookID string) ([]*types.Entity, error) {
	reg, err := s.Registry()
	if err != nil {
		return nil, err
	}
	known := false
	for _, b := range reg.Books {
		if b.ID == bookID {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("book %q: %w", bookID, types.ErrUnknownBook)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byBook[bookID], nil
}

// Book returns the registry record for one book.
func (s *Store) Book(bookID string) (Book, error) {
	reg, err := s.Registry()
	if err != nil {
		return Book{}, err
	}
	for _, b := range reg.Books {
		if b.ID == bookID {
			return b, nil
		}
	}
	return Book{}, fmt.Errorf("book %q: %w", bookID, types.ErrUnknownBook)
}

func (s *Store) readArtifact(name string, v interface{}) error {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read corpus artifact %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse corpus artifact %s: %w", name, err)
	}
	return nil
}
