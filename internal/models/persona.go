// internal/models/persona.go
package models

// Communication styles recognized by the adaptation engine.
const (
	StyleTechnical = "technical"
	StyleBusiness  = "business"
	StyleExecutive = "executive"
)

// Buyer journey stages recognized by the adaptation engine.
const (
	JourneyAwareness     = "awareness"
	JourneyConsideration = "consideration"
	JourneyDecision      = "decision"
)

// Persona is an audience segment profile used to adapt content and ordering.
type Persona struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	CommunicationStyle string   `json:"communicationStyle"`
	BuyerJourneyStage  string   `json:"buyerJourneyStage"`
	PainPoints         []string `json:"painPoints,omitempty"`
	Goals              []string `json:"goals,omitempty"`
	ContentPreference  string   `json:"contentPreference,omitempty"` // concise | balanced | detailed
}

// BrandVoice is the workspace's brand identity record.
type BrandVoice struct {
	ID             string   `json:"id"`
	Tone           string   `json:"tone"`
	Personality    []string `json:"personality,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	AvoidWords     []string `json:"avoidWords,omitempty"`
	TargetAudience string   `json:"targetAudience,omitempty"`
}

// PersonaNarrativeAdaptation is the deterministic strategy selection for one
// persona.
type PersonaNarrativeAdaptation struct {
	HookStrategy            string                    `json:"hookStrategy"`
	CTAApproach             string                    `json:"ctaApproach"`
	ProofPriority           []string                  `json:"proofPriority"`
	ContentDensity          string                    `json:"contentDensity"`
	EmotionalArcAdjustments map[NarrativeRole]float64 `json:"emotionalArcAdjustments"`
}

// SectionOverride carries persona-specific copy overrides for one stage.
type SectionOverride struct {
	Headline    string `json:"headline,omitempty"`
	Description string `json:"description,omitempty"`
	CTAText     string `json:"ctaText,omitempty"`
	Emphasis    string `json:"emphasis,omitempty"`
}

// PersonaStoryVariation is the per-persona adapted storyline.
type PersonaStoryVariation struct {
	PersonaID        string                            `json:"personaId"`
	Flow             StoryFlow                         `json:"flow"`
	Adaptation       PersonaNarrativeAdaptation        `json:"adaptation"`
	Blocks           []ContentBlock                    `json:"blocks"`
	SectionOverrides map[NarrativeRole]SectionOverride `json:"sectionOverrides,omitempty"`
	UsedFallback     bool                              `json:"usedFallback"`
}
