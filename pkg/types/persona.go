package types

// Dossier is the three-tier biographical record of a persona: facts the
// persona may state, inferences it may draw, and questions it must decline.
type Dossier struct {
	KnownFacts          []string `json:"known_facts,omitempty"`
	PermittedInferences []string `json:"permitted_inferences,omitempty"`
	HardUnknowns        []string `json:"hard_unknowns,omitempty"`
}

// PersonaProfile describes a historical voice used to constrain generated
// answers. Most fields are optional; WithDefaults fills anything the profile
// artifact leaves blank.
type PersonaProfile struct {
	BookID               string   `json:"book_id"`
	Name                 string   `json:"name"`
	BookTitle            string   `json:"book_title"`
	PublicationYear      int      `json:"publication_year"`
	VoiceNotes           []string `json:"voice_notes,omitempty"`
	Frameworks           []string `json:"frameworks,omitempty"`
	TrustedAuthorities   []string `json:"trusted_authorities,omitempty"`
	ContestedAuthorities []string `json:"contested_authorities,omitempty"`
	Dossier              Dossier  `json:"dossier,omitempty"`
}

// WithDefaults returns a copy of the profile with blank fields replaced by
// conservative defaults. This is the single place default-filling happens;
// prompt construction relies on every field being populated.
func (p PersonaProfile) WithDefaults() PersonaProfile {
	out := p
	if out.Name == "" {
		out.Name = "the author"
	}
	if out.BookTitle == "" {
		out.BookTitle = "this work"
	}
	if out.PublicationYear == 0 {
		out.PublicationYear = 1700
	}
	if len(out.VoiceNotes) == 0 {
		out.VoiceNotes = []string{"Formal early-modern register; measured, didactic tone."}
	}
	if len(out.Frameworks) == 0 {
		out.Frameworks = []string{"the learned tradition of the period"}
	}
	return out
}

// KnowledgeCutoff returns the year after which the persona must treat
// concepts as unknown.
func (p PersonaProfile) KnowledgeCutoff() int {
	return p.PublicationYear
}
