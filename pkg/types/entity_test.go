package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validEntity() Entity {
	return Entity{
		ID: "ent_galen", Slug: "galen", Name: "Galen",
		Category: CategoryPerson,
		Aliases:  []string{"Galeno"},
		Books:    []string{"coloquios", "luz"},
		Attestations: []Attestation{
			{BookID: "coloquios", Name: "Galeno", Mentions: 210},
			{BookID: "luz", Name: "Galeno", Mentions: 95},
		},
	}
}

func TestEntityValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Entity)
		wantErr error
	}{
		{"valid", func(e *Entity) {}, nil},
		{"empty id", func(e *Entity) { e.ID = "" }, ErrEmptyID},
		{"empty name", func(e *Entity) { e.Name = "" }, ErrEmptyName},
		{"unknown category", func(e *Entity) { e.Category = "weapon" }, ErrUnknownCategory},
		{"attestation outside books", func(e *Entity) {
			e.Attestations = append(e.Attestations, Attestation{BookID: "other", Name: "x"})
		}, ErrAttestationBookMismatch},
		{"no attestations is fine", func(e *Entity) { e.Attestations = nil }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntity()
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range []Category{
		CategoryPerson, CategoryPlace, CategoryPlant, CategoryDrug,
		CategoryDisease, CategoryInstitution, CategoryWork,
		CategorySubstance, CategoryConcept, CategoryOther,
	} {
		assert.True(t, c.Valid(), string(c))
	}
	assert.False(t, Category("").Valid())
	assert.False(t, Category("weapon").Valid())
}

func TestEntityAccessors(t *testing.T) {
	e := validEntity()

	assert.Equal(t, 305, e.TotalMentions())
	assert.Equal(t, []string{"Galen", "Galeno"}, e.AllNames())

	att := e.AttestationIn("luz")
	if assert.NotNil(t, att) {
		assert.Equal(t, 95, att.Mentions)
	}
	assert.Nil(t, e.AttestationIn("no-such-book"))
}
