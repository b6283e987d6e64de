// internal/workers/content/generate-storyline/models.go
package generatestoryline

import "narrative-workers/internal/models"

type Input struct {
	WorkspaceID string            `json:"workspaceId"`
	PageType    string            `json:"pageType"`
	PersonaIDs  []string          `json:"personaIds,omitempty"`
	BrandID     string            `json:"brandId,omitempty"`
	Hints       map[string]string `json:"hints,omitempty"`
}

type Output struct {
	Narrative         *models.CoreNarrative          `json:"narrative"`
	DefaultFlow       *models.StoryFlow              `json:"defaultFlow"`
	ContentBlocks     []models.ContentBlock          `json:"contentBlocks"`
	PersonaVariations []models.PersonaStoryVariation `json:"personaVariations,omitempty"`
	EmotionalJourney  []models.EmotionPoint          `json:"emotionalJourney,omitempty"`
	Stats             Stats                          `json:"stats"`
}

// Stats summarizes one storyline run for workflow-level reporting.
type Stats struct {
	TokensUsed    int   `json:"tokensUsed"`
	FallbacksUsed int   `json:"fallbacksUsed"`
	ElapsedMs     int64 `json:"elapsedMs"`
	Score         int   `json:"score"`
}
