// internal/workers/content/validate-content/handler_test.go
package validatecontent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmerrors "narrative-workers/internal/common/errors"
	"narrative-workers/internal/common/logger"
	"narrative-workers/internal/narrative/slots"
)

func newTestHandler() *Handler {
	return NewHandler(LoadConfig(), logger.NewNoOpLogger())
}

func TestExecute_ValidHeroContent(t *testing.T) {
	handler := newTestHandler()

	output, err := handler.Execute(&Input{
		ComponentID: "hero-split",
		Content: map[string]interface{}{
			"headline":    "Ship faster with confidence",
			"description": "Every merge deployed to production with a single click.",
			"primaryCTA":  map[string]interface{}{"text": "Get Started"},
			"image":       "hero.png",
		},
	})
	require.NoError(t, err)

	assert.True(t, output.Valid)
	assert.Empty(t, output.Errors)
	assert.Empty(t, output.MissingRequired)
	assert.Contains(t, output.RequiredSlots, "headline")
	assert.Contains(t, output.RequiredSlots, "image")
	assert.Contains(t, output.OptionalSlots, "secondaryCTA")
}

func TestExecute_MissingRequiredSlots(t *testing.T) {
	handler := newTestHandler()

	output, err := handler.Execute(&Input{
		ComponentID: "hero-split",
		Content: map[string]interface{}{
			"headline": "Ship faster with confidence",
		},
	})
	require.NoError(t, err)

	assert.False(t, output.Valid)
	assert.Contains(t, output.MissingRequired, "description")
	assert.Contains(t, output.MissingRequired, "primaryCTA")
	assert.Contains(t, output.MissingRequired, "image")
}

func TestExecute_LengthViolation(t *testing.T) {
	handler := newTestHandler()

	output, err := handler.Execute(&Input{
		ComponentID: "cta-banner",
		Content: map[string]interface{}{
			"headline":   "Go",
			"primaryCTA": map[string]interface{}{"text": "Get Started"},
		},
	})
	require.NoError(t, err)

	assert.False(t, output.Valid)
	require.NotEmpty(t, output.Errors)

	found := false
	for _, e := range output.Errors {
		if e.Slot == "headline" && e.Code == "too_short" {
			found = true
		}
	}
	assert.True(t, found, "expected a too_short finding for headline, got %v", output.Errors)
}

func TestExecute_UnknownComponent(t *testing.T) {
	handler := newTestHandler()

	_, err := handler.Execute(&Input{
		ComponentID: "mystery-widget",
		Content:     map[string]interface{}{},
	})
	assert.ErrorIs(t, err, slots.ErrSlotSchemaNotFound)
}

func TestExecute_MissingComponentID(t *testing.T) {
	handler := newTestHandler()

	_, err := handler.Execute(&Input{
		Content: map[string]interface{}{"headline": "x"},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestClassifyError_NoRetries(t *testing.T) {
	invalid := fmt.Errorf("%w: componentId is required", ErrInvalidInput)
	assert.Equal(t, cmerrors.ErrCodeInvalidInput, classifyError(invalid))
	assert.Equal(t, 0, cmerrors.GetRetryCount(classifyError(invalid)))

	missing := fmt.Errorf("component %q: %w", "mystery", slots.ErrSlotSchemaNotFound)
	assert.Equal(t, cmerrors.ErrCodeSlotSchemaNotFound, classifyError(missing))
	assert.Equal(t, 0, cmerrors.GetRetryCount(classifyError(missing)))
}
