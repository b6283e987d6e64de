// internal/workers/content/generate-content/models.go
package generatecontent

import "narrative-workers/internal/models"

type Input struct {
	WorkspaceID string           `json:"workspaceId"`
	PageType    string           `json:"pageType"`
	Sections    []SectionRequest `json:"sections"`
	PersonaID   string           `json:"personaId,omitempty"`
	BrandID     string           `json:"brandId,omitempty"`
}

// SectionRequest names one page section to populate.
type SectionRequest struct {
	SectionID   string            `json:"sectionId"`
	ComponentID string            `json:"componentId"`
	Stage       string            `json:"stage"`
	Hints       map[string]string `json:"hints,omitempty"`
}

type SectionResult struct {
	SectionID    string                  `json:"sectionId"`
	ComponentID  string                  `json:"componentId"`
	Stage        string                  `json:"stage"`
	Content      models.PopulatedContent `json:"content"`
	Traceability models.KBTraceability   `json:"traceability"`
	FieldSources map[string][]string     `json:"fieldSources,omitempty"`
	Validation   models.ValidationResult `json:"validation"`
	UsedFallback bool                    `json:"usedFallback"`
	TokensUsed   int                     `json:"tokensUsed"`
}

// PageMetadata summarizes the generated page for display and admin layers.
type PageMetadata struct {
	WorkspaceID    string `json:"workspaceId"`
	PageType       string `json:"pageType"`
	CentralTheme   string `json:"centralTheme,omitempty"`
	BrandApplied   bool   `json:"brandApplied"`
	PersonaApplied bool   `json:"personaApplied"`
	GeneratedAt    string `json:"generatedAt"`
}

type Output struct {
	Sections     []SectionResult `json:"sections"`
	PageMetadata PageMetadata    `json:"pageMetadata"`
	Stats        Stats           `json:"stats"`
}

type Stats struct {
	TotalSections     int     `json:"totalSections"`
	GeneratedSections int     `json:"generatedSections"`
	TokensUsed        int     `json:"tokensUsed"`
	FallbacksUsed     int     `json:"fallbacksUsed"`
	AverageConfidence float64 `json:"averageConfidence"`
	ElapsedMs         int64   `json:"elapsedMs"`
}
