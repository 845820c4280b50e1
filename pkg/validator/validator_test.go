package validator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lusotexts/concordia/pkg/types"
)

func testEvidence() []types.Evidence {
	return []types.Evidence{
		{
			Entity: &types.Entity{
				ID: "ent_galen", Name: "Galen", Category: types.CategoryPerson,
				Aliases: []string{"Galeno"}, Books: []string{"coloquios"},
			},
			Attestation: &types.Attestation{
				BookID: "coloquios", Name: "Galeno", Mentions: 210,
				Contexts: []string{"authority on fevers"},
			},
		},
		{
			Entity: &types.Entity{
				ID: "ent_mandragora", Name: "Mandragora", Category: types.CategoryPlant,
				Books: []string{"coloquios"},
			},
			Attestation: &types.Attestation{
				BookID: "coloquios", Name: "mandragora", Mentions: 18,
				Variants: []string{"mandragoras"},
				Contexts: []string{"narcotic root"},
			},
		},
	}
}

func citation(id, name string) map[string]interface{} {
	return map[string]interface{}{
		"entity_id": id, "name": name,
		"relevance": "primary", "reasoning": "discussed directly",
	}
}

func TestValidateGroundedCitationKept(t *testing.T) {
	raw := map[string]interface{}{
		"answer":        "Of Galen I say much.",
		"confidence":    "high",
		"evidence_used": []interface{}{citation("ent_galen", "Galeno")},
	}
	resp := Validate(raw, testEvidence(), "Who was Galen?")

	require.Len(t, resp.EvidenceUsed, 1)
	assert.Equal(t, "ent_galen", resp.EvidenceUsed[0].EntityID)
	assert.Equal(t, types.ConfidenceHigh, resp.Confidence)
}

func TestValidateRecoversCitationByName(t *testing.T) {
	// The generator invented an id but named a retrieved entity; the id is
	// recovered from the name.
	tests := []struct {
		name     string
		cited    string
		wantID   string
	}{
		{"canonical name", "Galen", "ent_galen"},
		{"alias", "galeno", "ent_galen"},
		{"local attestation name", "Mandragora", "ent_mandragora"},
		{"variant with diacritics", "Mandragóras", "ent_mandragora"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := map[string]interface{}{
				"answer":        "text",
				"evidence_used": []interface{}{citation("hallucinated_id", tt.cited)},
			}
			resp := Validate(raw, testEvidence(), "question")
			require.Len(t, resp.EvidenceUsed, 1)
			assert.Equal(t, tt.wantID, resp.EvidenceUsed[0].EntityID)
		})
	}
}

func TestValidateDropsUngroundedCitation(t *testing.T) {
	raw := map[string]interface{}{
		"answer": "text",
		"evidence_used": []interface{}{
			citation("ent_galen", "Galeno"),
			citation("ent_invented", "Paracelsus"),
			"not even an object",
		},
	}
	resp := Validate(raw, testEvidence(), "question")

	require.Len(t, resp.EvidenceUsed, 1)
	assert.Equal(t, "ent_galen", resp.EvidenceUsed[0].EntityID)
}

func TestValidateEvidenceCap(t *testing.T) {
	evidence := make([]types.Evidence, 0, 12)
	cited := make([]interface{}, 0, 12)
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("ent_%02d", i)
		evidence = append(evidence, types.Evidence{
			Entity:      &types.Entity{ID: id, Name: id, Category: types.CategoryPlant},
			Attestation: &types.Attestation{BookID: "b", Name: id, Mentions: 1},
		})
		cited = append(cited, citation(id, id))
	}
	raw := map[string]interface{}{"answer": "text", "evidence_used": cited}

	resp := Validate(raw, evidence, "question")
	assert.Len(t, resp.EvidenceUsed, MaxEvidenceDisplay)
}

func TestValidateConfidenceNormalization(t *testing.T) {
	tests := []struct {
		raw  interface{}
		want types.Confidence
	}{
		{"high", types.ConfidenceHigh},
		{"SPECULATIVE", types.ConfidenceSpeculative},
		{"certain", types.ConfidenceModerate},
		{nil, types.ConfidenceModerate},
		{42.0, types.ConfidenceModerate},
	}
	for _, tt := range tests {
		resp := Validate(map[string]interface{}{
			"answer": "text", "confidence": tt.raw,
		}, testEvidence(), "question")
		assert.Equal(t, tt.want, resp.Confidence, "confidence %v", tt.raw)
	}
}

func TestValidateStripsLeadingHeadings(t *testing.T) {
	raw := map[string]interface{}{
		"answer": "# On the Question of Mandragora\n**Answer**:\n\nThe root is dangerous.",
	}
	resp := Validate(raw, testEvidence(), "What is mandragora?")
	assert.Equal(t, "The root is dangerous.", resp.Answer)
}

func TestValidateEmptyAnswerFallback(t *testing.T) {
	for _, raw := range []map[string]interface{}{
		{},
		{"answer": "   "},
		{"answer": 7.0},
	} {
		resp := Validate(raw, nil, "question")
		assert.Equal(t, fallbackAnswer, resp.Answer)
	}
}

func TestValidateSynthesizesTableForProceduralQuestion(t *testing.T) {
	raw := map[string]interface{}{"answer": "For fevers I keep several remedies."}
	resp := Validate(raw, testEvidence(), "What cures a fever?")

	assert.True(t, strings.HasPrefix(resp.Answer, "For fevers I keep several remedies."))
	assert.Contains(t, resp.Answer, "| Remedy or Matter | Kind | As my text has it |")
	assert.Contains(t, resp.Answer, "| Galeno | person | authority on fevers |")
	assert.True(t, hasMarkdownTable(resp.Answer))
}

func TestValidateKeepsGeneratorTable(t *testing.T) {
	answer := "Thus I compare them:\n\n| Remedy | Use |\n| --- | --- |\n| theriaca | against poison |"
	raw := map[string]interface{}{"answer": answer}
	resp := Validate(raw, testEvidence(), "What cures a fever?")

	assert.Equal(t, answer, resp.Answer)
	assert.NotContains(t, resp.Answer, "Remedy or Matter")
}

func TestValidateNoTableWithoutEvidence(t *testing.T) {
	raw := map[string]interface{}{"answer": "I have no records of this."}
	resp := Validate(raw, nil, "What cures a fever?")

	assert.Equal(t, "I have no records of this.", resp.Answer)
	assert.False(t, hasMarkdownTable(resp.Answer))
}

func TestSynthesizeTableEscapesPipes(t *testing.T) {
	evidence := []types.Evidence{
		{
			Entity: &types.Entity{ID: "e", Name: "a|b", Category: types.CategoryDrug},
			Attestation: &types.Attestation{
				BookID: "b", Name: "a|b", Mentions: 1,
				Contexts: []string{"dose | measure"},
			},
		},
	}
	table := synthesizeTable(evidence)
	assert.Contains(t, table, `a\|b`)
	assert.Contains(t, table, `dose \| measure`)
}

func TestSynthesizeTableLimitsRows(t *testing.T) {
	evidence := make([]types.Evidence, 0, 9)
	for i := 0; i < 9; i++ {
		name := fmt.Sprintf("herb%d", i)
		evidence = append(evidence, types.Evidence{
			Entity:      &types.Entity{ID: name, Name: name, Category: types.CategoryPlant},
			Attestation: &types.Attestation{BookID: "b", Name: name, Mentions: 1},
		})
	}
	table := synthesizeTable(evidence)
	// Header, separator, five data rows.
	assert.Equal(t, 7, len(strings.Split(strings.TrimSpace(table), "\n")))
}

func TestHasMarkdownTable(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"real table", "| a | b |\n| --- | --- |\n| 1 | 2 |", true},
		{"pipe row without separator", "| a | b |\nplain prose", false},
		{"prose only", "no tables here", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasMarkdownTable(tt.text))
		})
	}
}

func TestValidateFrameworks(t *testing.T) {
	raw := map[string]interface{}{
		"answer":             "text",
		"frameworks_applied": []interface{}{"humoral theory", "", 3.0, "direct observation"},
	}
	resp := Validate(raw, testEvidence(), "question")
	assert.Equal(t, []string{"humoral theory", "direct observation"}, resp.Frameworks)
}
