// internal/narrative/slots/slots_test.go
package slots

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"narrative-workers/internal/models"
)

func TestGet_KnownComponents(t *testing.T) {
	for _, id := range ComponentIDs() {
		slotDefs, err := Get(id)
		require.NoError(t, err, id)
		assert.NotEmpty(t, slotDefs, id)
	}
	// The core variants the populators target are all covered.
	for _, id := range []string{"hero-split", "hero-centered", "features-grid", "testimonials-carousel", "statistics-band", "pricing-table", "faq-accordion", "cta-banner", "content-split"} {
		_, err := Get(id)
		assert.NoError(t, err, id)
	}
}

func TestGet_UnknownComponent(t *testing.T) {
	_, err := Get("carousel-3000")
	assert.ErrorIs(t, err, ErrSlotSchemaNotFound)
}

func TestRequiredSlots_HeroSplit(t *testing.T) {
	required, err := RequiredSlots("hero-split")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"headline", "description", "primaryCTA", "image"}, required)

	optional, err := OptionalSlots("hero-split")
	require.NoError(t, err)
	assert.Contains(t, optional, "secondaryCTA")
}

func TestLengthConstraints(t *testing.T) {
	constraints, err := LengthConstraints("testimonials-carousel")
	require.NoError(t, err)

	assert.Equal(t, 1, constraints["testimonials"].MinItems)
	assert.Equal(t, 6, constraints["testimonials"].MaxItems)
	assert.Equal(t, 10, constraints["testimonials.quote"].MinLength)
	assert.Equal(t, 400, constraints["testimonials.quote"].MaxLength)
}

func TestValidateContent_Valid(t *testing.T) {
	content := models.PopulatedContent{
		Headline:    "Launch your site in hours",
		Description: "Everything you need to go from idea to live site without writing code.",
		PrimaryCTA:  &models.CTAButton{Text: "Get started"},
	}

	result, err := ValidateContent(content, "cta-banner")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateContent_MissingRequired(t *testing.T) {
	result, err := ValidateContent(models.PopulatedContent{}, "cta-banner")
	require.NoError(t, err)

	assert.False(t, result.Valid)
	codes := map[string]string{}
	for _, e := range result.Errors {
		codes[e.Slot] = e.Code
	}
	assert.Equal(t, "missing_required", codes["headline"])
	assert.Equal(t, "missing_required", codes["primaryCTA"])
}

func TestValidateContent_EmptyStringFailsRequired(t *testing.T) {
	content := models.PopulatedContent{
		Headline:   "",
		PrimaryCTA: &models.CTAButton{Text: "Go"},
	}
	result, err := ValidateContent(content, "cta-banner")
	require.NoError(t, err)

	assert.False(t, result.Valid)
	found := false
	for _, e := range result.Errors {
		if e.Slot == "headline" && e.Code == "missing_required" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateContent_LengthBounds(t *testing.T) {
	content := models.PopulatedContent{
		Headline:    strings.Repeat("x", 200),
		Description: "Everything you need to launch fast and keep iterating with confidence.",
		PrimaryCTA:  &models.CTAButton{Text: "Go"},
	}
	result, err := ValidateContent(content, "cta-banner")
	require.NoError(t, err)

	assert.False(t, result.Valid)
	found := false
	for _, e := range result.Errors {
		if e.Slot == "headline" && e.Code == "too_long" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateContent_ArrayBoundsAndChildren(t *testing.T) {
	content := models.PopulatedContent{
		Features: []models.Feature{{Title: "Only one"}},
	}
	result, err := ValidateContent(content, "features-grid")
	require.NoError(t, err)

	assert.False(t, result.Valid)
	codes := map[string]bool{}
	for _, e := range result.Errors {
		codes[e.Code+":"+e.Slot] = true
	}
	assert.True(t, codes["too_few_items:features"])

	// A testimonial with an empty quote fails the nested required child.
	content = models.PopulatedContent{
		Testimonials: []models.Testimonial{{Author: "Jo"}},
	}
	result, err = ValidateContent(content, "testimonials-carousel")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	found := false
	for _, e := range result.Errors {
		if e.Slot == "testimonials[0].quote" && e.Code == "missing_required" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateContent_UnknownComponent(t *testing.T) {
	_, err := ValidateContent(models.PopulatedContent{}, "nope")
	assert.ErrorIs(t, err, ErrSlotSchemaNotFound)
}

func TestValidateMap_HeroSplitWithImage(t *testing.T) {
	fields := map[string]interface{}{
		"headline":    "Launch in hours",
		"description": "From idea to live site the same day, without code.",
		"primaryCTA":  map[string]interface{}{"text": "Start free"},
		"image":       "https://cdn.example.com/hero.png",
	}
	result, err := ValidateMap(fields, "hero-split")
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestSuggestedContentStructure(t *testing.T) {
	for _, id := range ComponentIDs() {
		structure, err := SuggestedContentStructure(id)
		require.NoError(t, err, id)

		slotDefs, _ := Get(id)
		for _, slot := range slotDefs {
			value, ok := structure[slot.Name]
			require.True(t, ok, "%s: slot %s missing from structure", id, slot.Name)
			switch slot.Type {
			case models.SlotArray:
				assert.IsType(t, []interface{}{}, value)
			case models.SlotObject:
				assert.IsType(t, map[string]interface{}{}, value)
			default:
				assert.Equal(t, "", value)
			}
		}

		// The empty skeleton still fails required slots: emptiness never
		// satisfies a required field.
		result, err := ValidateMap(structure, id)
		require.NoError(t, err)
		required, _ := RequiredSlots(id)
		if len(required) > 0 {
			assert.False(t, result.Valid, id)
		}
	}
}

func TestValidateContent_NeverPanics(t *testing.T) {
	assert.NotPanics(t, func() {
		_, _ = ValidateMap(map[string]interface{}{
			"headline":     42,
			"features":     "not an array",
			"testimonials": []interface{}{"not an object", nil},
			"primaryCTA":   []interface{}{},
		}, "hero-split")
	})
}
