// Package prompt turns a persona profile and retrieved evidence into the
// structured prompt blocks the synthesis client sends to the generative
// model. Assembly is a pure, deterministic data-to-text transform: the
// same inputs always yield the same blocks.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lusotexts/concordia/pkg/types"
)

// Calibration excerpt selection bounds.
const (
	maxCalibrationExcerpts = 3
	minExcerptLen          = 80
	maxExcerptLen          = 250
	fingerprintLen         = 40
)

// categoryOrder fixes how evidence is grouped in the user block, most
// concrete referents first.
var categoryOrder = []types.Category{
	types.CategoryPerson,
	types.CategoryPlace,
	types.CategoryPlant,
	types.CategoryDrug,
	types.CategoryDisease,
	types.CategoryInstitution,
	types.CategoryWork,
	types.CategorySubstance,
	types.CategoryConcept,
	types.CategoryOther,
}

// Input carries everything the assembler needs for one request.
type Input struct {
	Persona  types.PersonaProfile
	Question string
	Evidence []types.Evidence
}

// Blocks is the assembled prompt pair.
type Blocks struct {
	System string
	User   string
}

// Assemble builds the system and user prompt blocks.
func Assemble(in Input) Blocks {
	persona := in.Persona.WithDefaults()
	return Blocks{
		System: systemBlock(persona, selectCalibrationExcerpts(in.Evidence)),
		User:   userBlock(persona, in.Question, in.Evidence),
	}
}

func systemBlock(p types.PersonaProfile, calibration []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, author of %s (%d).\n\n", p.Name, p.BookTitle, p.PublicationYear)

	fmt.Fprintf(&b, "HARD KNOWLEDGE CUTOFF: the year %d. You know nothing published or discovered after %d. ", p.KnowledgeCutoff(), p.KnowledgeCutoff())
	b.WriteString("If asked about a later concept, treat it as unknown to you and reason about it only by analogy to what your era knew.\n\n")

	if IsInstitutionalVoice(p.Name) {
		b.WriteString("VOICE: You speak as the institution, in the first person plural (\"we hold\", \"our practice\"), in a procedural register.\n")
	} else {
		b.WriteString("VOICE: You speak as yourself, in the first person singular.\n")
	}
	for _, note := range p.VoiceNotes {
		fmt.Fprintf(&b, "- %s\n", note)
	}
	b.WriteByte('\n')

	if len(calibration) > 0 {
		b.WriteString("VOICE CALIBRATION — passages from your own text; match their register:\n")
		for _, q := range calibration {
			fmt.Fprintf(&b, "  \"%s\"\n", q)
		}
		b.WriteByte('\n')
	}

	if len(p.Frameworks) > 0 {
		fmt.Fprintf(&b, "INTELLECTUAL FRAMEWORKS you reason within: %s.\n", strings.Join(p.Frameworks, "; "))
	}
	if len(p.TrustedAuthorities) > 0 {
		fmt.Fprintf(&b, "AUTHORITIES you cite with approval: %s.\n", strings.Join(p.TrustedAuthorities, ", "))
	}
	if len(p.ContestedAuthorities) > 0 {
		fmt.Fprintf(&b, "AUTHORITIES you dispute: %s.\n", strings.Join(p.ContestedAuthorities, ", "))
	}
	b.WriteByte('\n')

	b.WriteString("BIOGRAPHY:\n")
	if len(p.Dossier.KnownFacts) == 0 && len(p.Dossier.PermittedInferences) == 0 {
		b.WriteString("No private biographical facts are supplied. Default to conservative inference only: claim nothing about your life beyond what the evidence or your published work supports.\n")
	} else {
		for _, f := range p.Dossier.KnownFacts {
			fmt.Fprintf(&b, "- Known: %s\n", f)
		}
		for _, f := range p.Dossier.PermittedInferences {
			fmt.Fprintf(&b, "- You may infer: %s\n", f)
		}
		for _, f := range p.Dossier.HardUnknowns {
			fmt.Fprintf(&b, "- You must not claim to know: %s\n", f)
		}
	}

	return b.String()
}

func userBlock(p types.PersonaProfile, question string, evidence []types.Evidence) string {
	var b strings.Builder

	fmt.Fprintf(&b, "QUESTION: %s\n\n", question)
	fmt.Fprintf(&b, "Remember: you are writing in %d and know nothing after that year.\n\n", p.KnowledgeCutoff())

	if len(evidence) > 0 {
		b.WriteString("EVIDENCE from your text — answer strictly from these records:\n\n")
		writeEvidenceByCategory(&b, evidence)
	} else {
		b.WriteString("No supporting records were found in your text for this question. Say so plainly rather than inventing material.\n")
	}

	fmt.Fprintf(&b, "\nOnce more: nothing after %d exists for you.\n\n", p.KnowledgeCutoff())

	if IsProceduralQuestion(question) {
		b.WriteString("This is a procedural or therapeutic question: your answer MUST include a markdown comparison table of the relevant remedies or procedures.\n\n")
	} else if len(evidence) > 0 {
		b.WriteString("If it helps organise the evidence, a markdown comparison table is welcome.\n\n")
	}

	b.WriteString("Respond with exactly one JSON object, no other text:\n")
	b.WriteString(`{
  "answer": "your answer in persona voice (markdown allowed)",
  "evidence_used": [{"entity_id": "id from the evidence list", "name": "name as cited", "relevance": "primary|supporting|tangential", "reasoning": "why this record matters"}],
  "confidence": "high|moderate|low|speculative",
  "frameworks_applied": ["framework names"]
}`)
	b.WriteByte('\n')

	return b.String()
}

func writeEvidenceByCategory(b *strings.Builder, evidence []types.Evidence) {
	byCategory := make(map[types.Category][]types.Evidence)
	for _, ev := range evidence {
		byCategory[ev.Entity.Category] = append(byCategory[ev.Entity.Category], ev)
	}
	for _, cat := range categoryOrder {
		group := byCategory[cat]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(b, "%s:\n", strings.ToUpper(string(cat)))
		for _, ev := range group {
			fmt.Fprintf(b, "- [%s] %s (%d mentions)", ev.Entity.ID, ev.Attestation.Name, ev.Attestation.Mentions)
			if len(ev.Attestation.Contexts) > 0 {
				fmt.Fprintf(b, " — context: %s", ev.Attestation.Contexts[0])
			}
			b.WriteByte('\n')
			if len(ev.Attestation.Excerpts) > 0 {
				fmt.Fprintf(b, "  excerpt: \"%s\"\n", truncate(ev.Attestation.Excerpts[0], maxExcerptLen))
			}
		}
		b.WriteByte('\n')
	}
}

// selectCalibrationExcerpts picks up to three voice samples: drawn from
// high-mention entities first, mid-length, prose-like (no pipe-delimited
// list fragments), deduplicated by prefix fingerprint.
func selectCalibrationExcerpts(evidence []types.Evidence) []string {
	sorted := make([]types.Evidence, len(evidence))
	copy(sorted, evidence)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Attestation.Mentions > sorted[j].Attestation.Mentions
	})

	seen := make(map[string]bool)
	var picked []string
	for _, ev := range sorted {
		for _, ex := range ev.Attestation.Excerpts {
			ex = strings.TrimSpace(ex)
			if len(ex) < minExcerptLen || len(ex) > maxExcerptLen {
				continue
			}
			if strings.ContainsRune(ex, '|') {
				continue
			}
			fp := fingerprint(ex)
			if seen[fp] {
				continue
			}
			seen[fp] = true
			picked = append(picked, ex)
			if len(picked) == maxCalibrationExcerpts {
				return picked
			}
			break // one excerpt per entity keeps the samples varied
		}
	}
	return picked
}

func fingerprint(s string) string {
	s = strings.ToLower(s)
	if len(s) > fingerprintLen {
		return s[:fingerprintLen]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n]) + "…"
}
