package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lusotexts/concordia/pkg/types"
)

func testPersona() types.PersonaProfile {
	return types.PersonaProfile{
		BookID:             "coloquios",
		Name:               "Garcia de Orta",
		BookTitle:          "Coloquios dos simples e drogas da India",
		PublicationYear:    1563,
		Frameworks:         []string{"Galenic humoral theory", "direct observation"},
		TrustedAuthorities: []string{"Dioscorides", "Avicenna"},
	}
}

func evidenceFor(id, name string, category types.Category, mentions int, excerpts ...string) types.Evidence {
	return types.Evidence{
		Entity: &types.Entity{
			ID: id, Name: name, Category: category, Books: []string{"coloquios"},
		},
		Attestation: &types.Attestation{
			BookID: "coloquios", Name: name, Mentions: mentions, Excerpts: excerpts,
		},
	}
}

func TestAssembleSystemBlock(t *testing.T) {
	blocks := Assemble(Input{Persona: testPersona(), Question: "What is mandragora?"})

	assert.Contains(t, blocks.System, "You are Garcia de Orta")
	assert.Contains(t, blocks.System, "HARD KNOWLEDGE CUTOFF: the year 1563")
	assert.Contains(t, blocks.System, "first person singular")
	assert.Contains(t, blocks.System, "Galenic humoral theory")
	assert.Contains(t, blocks.System, "Dioscorides")
	// Without dossier facts, the conservative-inference default applies.
	assert.Contains(t, blocks.System, "conservative inference only")
}

func TestAssembleInstitutionalVoice(t *testing.T) {
	p := testPersona()
	p.Name = "Colégio de Santo Antão"
	blocks := Assemble(Input{Persona: p, Question: "What is mandragora?"})

	assert.Contains(t, blocks.System, "first person plural")
	assert.NotContains(t, blocks.System, "first person singular")
}

func TestAssembleDossier(t *testing.T) {
	p := testPersona()
	p.Dossier = types.Dossier{
		KnownFacts:   []string{"trained at Salamanca"},
		HardUnknowns: []string{"the date of your own death"},
	}
	blocks := Assemble(Input{Persona: p, Question: "Where did you study?"})

	assert.Contains(t, blocks.System, "Known: trained at Salamanca")
	assert.Contains(t, blocks.System, "must not claim to know: the date of your own death")
	assert.NotContains(t, blocks.System, "conservative inference only")
}

func TestAssembleUserBlockDateLockAndSchema(t *testing.T) {
	blocks := Assemble(Input{
		Persona:  testPersona(),
		Question: "What is mandragora?",
		Evidence: []types.Evidence{evidenceFor("ent_1", "mandragora", types.CategoryPlant, 18)},
	})

	assert.Contains(t, blocks.User, "QUESTION: What is mandragora?")
	// The cutoff year is stated twice, before and after the evidence.
	assert.Equal(t, 2, strings.Count(blocks.User, "1563"))
	assert.Contains(t, blocks.User, `"evidence_used"`)
	assert.Contains(t, blocks.User, `"confidence"`)
	assert.Contains(t, blocks.User, "[ent_1] mandragora (18 mentions)")
}

func TestAssembleEvidenceGroupedByCategory(t *testing.T) {
	blocks := Assemble(Input{
		Persona:  testPersona(),
		Question: "Tell me of Galen and mandragora",
		Evidence: []types.Evidence{
			evidenceFor("ent_plant", "mandragora", types.CategoryPlant, 18),
			evidenceFor("ent_person", "Galeno", types.CategoryPerson, 210),
		},
	})

	personIdx := strings.Index(blocks.User, "PERSON:")
	plantIdx := strings.Index(blocks.User, "PLANT:")
	require.NotEqual(t, -1, personIdx)
	require.NotEqual(t, -1, plantIdx)
	assert.Less(t, personIdx, plantIdx, "persons are listed before plants")
}

func TestAssembleNoEvidence(t *testing.T) {
	blocks := Assemble(Input{Persona: testPersona(), Question: "What of the unicorn horn?"})

	assert.Contains(t, blocks.User, "No supporting records were found")
	assert.NotContains(t, blocks.User, "EVIDENCE from your text")
}

func TestAssembleProceduralTableMandate(t *testing.T) {
	ev := []types.Evidence{evidenceFor("ent_1", "theriaca", types.CategoryDrug, 40)}

	procedural := Assemble(Input{Persona: testPersona(), Question: "What cures a tertian fever?", Evidence: ev})
	assert.Contains(t, procedural.User, "MUST include a markdown comparison table")

	factual := Assemble(Input{Persona: testPersona(), Question: "Who was Galen?", Evidence: ev})
	assert.NotContains(t, factual.User, "MUST include")
	assert.Contains(t, factual.User, "comparison table is welcome")
}

func TestSelectCalibrationExcerpts(t *testing.T) {
	long := strings.Repeat("a palavra repetida ", 20) // over 250 chars
	good1 := "Como diz o doutor, a raiz da mandragora tem virtude narcotica e deve ser usada com grande cautela pelos fisicos."
	good2 := "Os simples da India sao de tanta virtude que os fisicos de Europa os deviam conhecer melhor do que conhecem."
	good3 := "A pedra bezoar, tirada do bucho da cabra montes, vale contra todas as peconhas e he de grande estima."
	piped := good1[:60] + " | " + good1[60:]

	tests := []struct {
		name     string
		evidence []types.Evidence
		want     []string
	}{
		{
			name: "high mention entities first, one excerpt each",
			evidence: []types.Evidence{
				evidenceFor("low", "a", types.CategoryPlant, 5, good3),
				evidenceFor("high", "b", types.CategoryPerson, 200, good1, good2),
			},
			want: []string{good1, good3},
		},
		{
			name: "length band and pipe filters",
			evidence: []types.Evidence{
				evidenceFor("e1", "a", types.CategoryPlant, 10, "too short", long, piped, good2),
			},
			want: []string{good2},
		},
		{
			name: "prefix fingerprint dedup",
			evidence: []types.Evidence{
				evidenceFor("e1", "a", types.CategoryPlant, 20, good1),
				evidenceFor("e2", "b", types.CategoryPlant, 10, good1+" E assim o digo outra vez."),
			},
			want: []string{good1},
		},
		{
			name:     "no evidence",
			evidence: nil,
			want:     nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selectCalibrationExcerpts(tt.evidence))
		})
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	in := Input{
		Persona:  testPersona(),
		Question: "What cures a fever?",
		Evidence: []types.Evidence{
			evidenceFor("ent_1", "theriaca", types.CategoryDrug, 40),
			evidenceFor("ent_2", "Galeno", types.CategoryPerson, 210),
		},
	}
	first := Assemble(in)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Assemble(in))
	}
}
