// internal/narrative/populate/context.go
package populate

import (
	"encoding/json"
	"sort"

	"narrative-workers/internal/models"
	"narrative-workers/internal/narrative/slots"
)

// Input is one section's population request.
type Input struct {
	Entities    []models.KnowledgeEntity
	Brand       *models.BrandVoice
	Persona     *models.Persona
	Stage       models.NarrativeRole
	PageType    string
	ComponentID string
	Narrative   *models.CoreNarrative
	Hints       map[string]string
}

// Output is the shared result shape of both population strategies.
type Output struct {
	Content      models.PopulatedContent
	Traceability models.KBTraceability
	FieldSources map[string][]string
	UsedFallback bool
	TokensUsed   int
}

// requiredFillFraction scores how much of the component's required slot set
// ended up non-empty, in [0,1]. A component with no required slots scores 1.
func requiredFillFraction(content models.PopulatedContent, componentID string) float64 {
	required, err := slots.RequiredSlots(componentID)
	if err != nil || len(required) == 0 {
		return 1.0
	}

	raw, err := json.Marshal(content)
	if err != nil {
		return 0
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return 0
	}

	filled := 0
	for _, name := range required {
		if value, ok := fields[name]; ok && !emptyValue(value) {
			filled++
		}
	}

	fraction := float64(filled) / float64(len(required))
	if fraction < 0 {
		return 0
	}
	if fraction > 1 {
		return 1
	}
	return fraction
}

func emptyValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []interface{}:
		return len(v) == 0
	case map[string]interface{}:
		return len(v) == 0
	}
	return false
}

// buildTraceability derives the provenance record from the per-field source
// map. Confidence is the mean of the contributing entities' confidence; a
// section with zero contributing entities is a generic fallback with
// confidence zero.
func buildTraceability(fieldSources map[string][]string, entities []models.KnowledgeEntity) models.KBTraceability {
	byID := make(map[string]models.KnowledgeEntity, len(entities))
	for _, e := range entities {
		byID[e.ID] = e
	}

	seen := map[string]bool{}
	var ids []string
	for _, sources := range fieldSources {
		for _, id := range sources {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	if len(ids) == 0 {
		return models.KBTraceability{
			SourceEntityIDs:   []string{},
			Confidence:        0,
			IsGenericFallback: true,
			EntityTypesUsed:   []string{},
		}
	}

	typesSeen := map[string]bool{}
	var types []string
	sum := 0.0
	for _, id := range ids {
		entity := byID[id]
		sum += entity.Confidence
		if t := string(entity.EntityType); t != "" && !typesSeen[t] {
			typesSeen[t] = true
			types = append(types, t)
		}
	}
	sort.Strings(types)

	confidence := sum / float64(len(ids))
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return models.KBTraceability{
		SourceEntityIDs:   ids,
		Confidence:        confidence,
		IsGenericFallback: false,
		EntityTypesUsed:   types,
	}
}
