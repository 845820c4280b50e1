// Package validator enforces response-shape and evidence-grounding
// invariants on synthesis output before it reaches a caller. Untrusted
// generator output goes in; a well-formed ConsultResponse whose every
// citation belongs to the retrieved evidence set comes out.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lusotexts/concordia/pkg/prompt"
	"github.com/lusotexts/concordia/pkg/scoring"
	"github.com/lusotexts/concordia/pkg/types"
)

// MaxEvidenceDisplay bounds how many citations a response may carry.
const MaxEvidenceDisplay = 8

// fallbackAnswer guarantees non-empty answer text.
const fallbackAnswer = "I find I have nothing I can say to this with any certainty; the records before me do not speak to it."

var (
	headingLineRe  = regexp.MustCompile(`^\s*#{1,6}\s+.*$`)
	boldLineRe     = regexp.MustCompile(`^\s*\*\*[^*]+\*\*:?\s*$`)
	tableRowRe     = regexp.MustCompile(`(?m)^\s*\|.*\|\s*$`)
	separatorRowRe = regexp.MustCompile(`(?m)^\s*\|?[\s:|-]*-{3,}[\s:|-]*\|?\s*$`)
)

// Validate coerces raw synthesis output into a ConsultResponse honoring
// every invariant. It never fails; unusable input degrades to safe
// defaults.
func Validate(raw map[string]interface{}, evidence []types.Evidence, question string) types.ConsultResponse {
	resp := types.ConsultResponse{
		Answer:       asString(raw["answer"]),
		Confidence:   types.NormalizeConfidence(asString(raw["confidence"])),
		Frameworks:   asStringSlice(raw["frameworks_applied"]),
		EvidenceUsed: groundCitations(raw["evidence_used"], evidence),
		Note:         asString(raw["note"]),
	}

	if len(resp.EvidenceUsed) > MaxEvidenceDisplay {
		resp.EvidenceUsed = resp.EvidenceUsed[:MaxEvidenceDisplay]
	}

	resp.Answer = stripLeadingHeadings(resp.Answer)

	if prompt.IsProceduralQuestion(question) && !hasMarkdownTable(resp.Answer) && len(evidence) > 0 {
		resp.Answer = strings.TrimSpace(resp.Answer + "\n\n" + synthesizeTable(evidence))
	}

	if strings.TrimSpace(resp.Answer) == "" {
		resp.Answer = fallbackAnswer
	}
	return resp
}

// groundCitations enforces the core invariant: no cited entity may be
// unknown to retrieval. Citations with ids outside the retrieved set get
// one recovery attempt by name before being dropped.
func groundCitations(raw interface{}, evidence []types.Evidence) []types.EvidenceUse {
	byID := make(map[string]bool, len(evidence))
	byName := make(map[string]string, len(evidence)*3)
	for _, ev := range evidence {
		byID[ev.Entity.ID] = true
		byName[scoring.Normalize(ev.Entity.Name)] = ev.Entity.ID
		byName[scoring.Normalize(ev.Attestation.Name)] = ev.Entity.ID
		for _, v := range ev.Attestation.Variants {
			byName[scoring.Normalize(v)] = ev.Entity.ID
		}
		for _, a := range ev.Entity.Aliases {
			byName[scoring.Normalize(a)] = ev.Entity.ID
		}
	}

	items, _ := raw.([]interface{})
	grounded := make([]types.EvidenceUse, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		use := types.EvidenceUse{
			EntityID:  asString(m["entity_id"]),
			Name:      asString(m["name"]),
			Relevance: asString(m["relevance"]),
			Reasoning: asString(m["reasoning"]),
		}
		if !byID[use.EntityID] {
			recovered, ok := byName[scoring.Normalize(use.Name)]
			if !ok {
				continue // ungrounded citation, dropped
			}
			use.EntityID = recovered
		}
		grounded = append(grounded, use)
	}
	return grounded
}

// stripLeadingHeadings removes restatement headings the generator emits
// despite instruction ("# On the question of...", "**Answer**").
func stripLeadingHeadings(answer string) string {
	lines := strings.Split(answer, "\n")
	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || headingLineRe.MatchString(trimmed) || boldLineRe.MatchString(trimmed) {
			i++
			continue
		}
		break
	}
	return strings.TrimSpace(strings.Join(lines[i:], "\n"))
}

// hasMarkdownTable reports whether the text contains a genuine table: a
// pipe-delimited row followed by a dash separator row.
func hasMarkdownTable(text string) bool {
	lines := strings.Split(text, "\n")
	for i := 0; i+1 < len(lines); i++ {
		if tableRowRe.MatchString(lines[i]) && separatorRowRe.MatchString(lines[i+1]) {
			return true
		}
	}
	return false
}

// synthesizeTable builds a deterministic comparison table from the top
// evidence items when the generator failed to supply one.
func synthesizeTable(evidence []types.Evidence) string {
	limit := len(evidence)
	if limit > 5 {
		limit = 5
	}
	var b strings.Builder
	b.WriteString("| Remedy or Matter | Kind | As my text has it |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, ev := range evidence[:limit] {
		context := ""
		if len(ev.Attestation.Contexts) > 0 {
			context = ev.Attestation.Contexts[0]
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n",
			escapePipes(ev.Attestation.Name),
			escapePipes(string(ev.Entity.Category)),
			escapePipes(context))
	}
	return b.String()
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asStringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
