// internal/workers/content/validate-content/models.go
package validatecontent

import "narrative-workers/internal/models"

type Input struct {
	ComponentID string                 `json:"componentId"`
	Content     map[string]interface{} `json:"content"`
}

type Output struct {
	ComponentID     string                   `json:"componentId"`
	Valid           bool                     `json:"valid"`
	Errors          []models.ValidationError `json:"errors,omitempty"`
	MissingRequired []string                 `json:"missingRequired,omitempty"`
	RequiredSlots   []string                 `json:"requiredSlots"`
	OptionalSlots   []string                 `json:"optionalSlots,omitempty"`
}
