// internal/workers/content/generate-kb-section/models.go
package generatekbsection

import "narrative-workers/internal/models"

type Input struct {
	WorkspaceID   string        `json:"workspaceId"`
	NarrativeRole string        `json:"narrativeRole"`
	ComponentID   string        `json:"componentId"`
	EntityFilter  *EntityFilter `json:"entityFilter,omitempty"`
}

// EntityFilter narrows which knowledge entities feed the section.
type EntityFilter struct {
	Types         []string `json:"types,omitempty"`
	MinConfidence float64  `json:"minConfidence,omitempty"`
	Limit         int      `json:"limit,omitempty"`
}

type Output struct {
	ComponentID  string                  `json:"componentId"`
	Stage        string                  `json:"stage"`
	Content      models.PopulatedContent `json:"content"`
	Traceability models.KBTraceability   `json:"traceability"`
	FieldSources map[string][]string     `json:"fieldSources,omitempty"`
	Validation   models.ValidationResult `json:"validation"`
	UsedFallback bool                    `json:"usedFallback"`
	EntityCount  int                     `json:"entityCount"`
}
