package types

// Category classifies an entity or cluster. The set is closed; the offline
// pipeline only emits these values.
type Category string

const (
	CategoryPerson      Category = "person"
	CategoryPlace       Category = "place"
	CategoryPlant       Category = "plant"
	CategoryDrug        Category = "drug"
	CategoryDisease     Category = "disease"
	CategoryInstitution Category = "institution"
	CategoryWork        Category = "work"
	CategorySubstance   Category = "substance"
	CategoryConcept     Category = "concept"
	CategoryOther       Category = "other"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryPerson, CategoryPlace, CategoryPlant, CategoryDrug,
		CategoryDisease, CategoryInstitution, CategoryWork,
		CategorySubstance, CategoryConcept, CategoryOther:
		return true
	}
	return false
}

// Attestation records an entity's appearance within one source text. It is
// produced by the offline pipeline and read-only at query time.
type Attestation struct {
	BookID   string   `json:"book_id"`
	Name     string   `json:"name"` // local surface form in this book
	Mentions int      `json:"mentions"`
	Contexts []string `json:"contexts,omitempty"`
	Excerpts []string `json:"excerpts,omitempty"`
	Variants []string `json:"variants,omitempty"`
}

// Entity is a canonical named entity from the registry.
type Entity struct {
	ID           string        `json:"id"`
	Slug         string        `json:"slug"`
	Name         string        `json:"name"` // canonical name
	Category     Category      `json:"category"`
	Subcategory  string        `json:"subcategory,omitempty"`
	Aliases      []string      `json:"aliases,omitempty"`
	Books        []string      `json:"books"`
	Attestations []Attestation `json:"attestations,omitempty"`
}

// Validate checks structural invariants. Every attestation must reference a
// book the entity is registered under.
func (e *Entity) Validate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	if e.Name == "" {
		return ErrEmptyName
	}
	if !e.Category.Valid() {
		return ErrUnknownCategory
	}
	books := make(map[string]bool, len(e.Books))
	for _, b := range e.Books {
		books[b] = true
	}
	for i := range e.Attestations {
		if !books[e.Attestations[i].BookID] {
			return ErrAttestationBookMismatch
		}
	}
	return nil
}

// TotalMentions sums mention counts across all attestations.
func (e *Entity) TotalMentions() int {
	total := 0
	for i := range e.Attestations {
		total += e.Attestations[i].Mentions
	}
	return total
}

// AttestationIn returns the attestation for the given book, or nil.
func (e *Entity) AttestationIn(bookID string) *Attestation {
	for i := range e.Attestations {
		if e.Attestations[i].BookID == bookID {
			return &e.Attestations[i]
		}
	}
	return nil
}

// AllNames returns the canonical name followed by aliases.
func (e *Entity) AllNames() []string {
	names := make([]string, 0, 1+len(e.Aliases))
	names = append(names, e.Name)
	names = append(names, e.Aliases...)
	return names
}
