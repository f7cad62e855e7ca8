package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseRecord() *AgentRecord {
	return &AgentRecord{
		ID:          "a1",
		Name:        "Summarizer",
		Description: "Summarizes documents",
		Category:    "Productivity",
		PriceDetails: &PriceDetails{
			BasePrice:       10,
			DiscountedPrice: 8,
		},
		Tags:       []string{"nlp", "documents"},
		Popularity: 40,
		CreatedAt:  time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestApplyPatch_SetFieldsWin(t *testing.T) {
	base := baseRecord()

	name := "Summarizer Pro"
	popularity := 75
	patch := &AgentPatch{
		Name:       &name,
		Popularity: &popularity,
	}

	out, err := ApplyPatch(base, patch)
	require.NoError(t, err)

	assert.Equal(t, "Summarizer Pro", out.Name)
	assert.Equal(t, 75, out.Popularity)

	// Untouched fields carry over from the base
	assert.Equal(t, "Productivity", out.Category)
	assert.Equal(t, base.Description, out.Description)
	assert.Equal(t, base.Tags, out.Tags)

	// Base is not mutated
	assert.Equal(t, "Summarizer", base.Name)
	assert.Equal(t, 40, base.Popularity)
}

func TestApplyPatch_NilPatchIsClone(t *testing.T) {
	base := baseRecord()

	out, err := ApplyPatch(base, nil)
	require.NoError(t, err)

	assert.Equal(t, base.Name, out.Name)
	assert.Equal(t, base.Category, out.Category)
	assert.False(t, out.UpdatedAt.IsZero(), "UpdatedAt is bumped")

	// Deep copy: mutating the result must not reach the base
	out.Tags[0] = "changed"
	out.PriceDetails.BasePrice = 99
	assert.Equal(t, "nlp", base.Tags[0])
	assert.Equal(t, 10.0, base.PriceDetails.BasePrice)
}

func TestApplyPatch_ReviewsReestablishInvariants(t *testing.T) {
	base := baseRecord()
	now := time.Now().UTC()

	reviews := []Review{
		{ID: "r1", UserID: "u1", Rating: 2, CreatedAt: now.Add(-time.Hour)},
		{ID: "r2", UserID: "u2", Rating: 4, CreatedAt: now},
	}
	patch := &AgentPatch{Reviews: &reviews}

	out, err := ApplyPatch(base, patch)
	require.NoError(t, err)

	require.NotNil(t, out.Rating)
	assert.Equal(t, 2, out.Rating.Count)
	assert.InDelta(t, 3.0, out.Rating.Average, 1e-9)
	assert.Equal(t, "r2", out.Reviews[0].ID, "reviews sorted newest first")
}

func TestApplyPatch_EmptySliceClearsField(t *testing.T) {
	base := baseRecord()

	empty := []string{}
	patch := &AgentPatch{Tags: &empty}

	out, err := ApplyPatch(base, patch)
	require.NoError(t, err)

	assert.Empty(t, out.Tags, "a set empty slice clears the field, unlike a nil one")
}

func TestApplyPatch_PriceClamped(t *testing.T) {
	base := baseRecord()

	patch := &AgentPatch{
		PriceDetails: &PriceDetails{BasePrice: 5, DiscountedPrice: 9},
	}

	out, err := ApplyPatch(base, patch)
	require.NoError(t, err)

	assert.Equal(t, 5.0, out.PriceDetails.DiscountedPrice, "discounted price clamped to base")
}
