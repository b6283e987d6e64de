// internal/common/synthesis/schema.go
package synthesis

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Target schemas the synthesis service is asked to produce. Every payload
// coming back over the wire is validated against one of these before any
// field is trusted; a validation failure is treated exactly like a failed
// call at the call site.

var coreNarrativeSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"centralTheme":     map[string]interface{}{"type": "string"},
		"valueProposition": map[string]interface{}{"type": "string"},
		"differentiators": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"targetAudience": map[string]interface{}{"type": "string"},
		"transformation": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"before": map[string]interface{}{"type": "string"},
				"after":  map[string]interface{}{"type": "string"},
			},
		},
		"painPoints": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"benefits": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"proofElements": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"type":     map[string]interface{}{"type": "string"},
					"count":    map[string]interface{}{"type": "integer"},
					"strength": map[string]interface{}{"type": "string"},
				},
			},
		},
	},
	"required": []interface{}{"centralTheme", "valueProposition"},
}

var populatedContentSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"headline":    map[string]interface{}{"type": "string"},
		"subheadline": map[string]interface{}{"type": "string"},
		"description": map[string]interface{}{"type": "string"},
		"features": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "object"},
		},
		"testimonials": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "object"},
		},
		"statistics": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "object"},
		},
		"faqs": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "object"},
		},
		"pricingTiers": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "object"},
		},
		"primaryCTA":   map[string]interface{}{"type": "object"},
		"secondaryCTA": map[string]interface{}{"type": "object"},
	},
	// All fields optional: the populator decides completeness per the
	// component's required slots, not the wire schema.
}

var sectionOverrideSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"headline":    map[string]interface{}{"type": "string"},
		"description": map[string]interface{}{"type": "string"},
		"ctaText":     map[string]interface{}{"type": "string"},
		"emphasis":    map[string]interface{}{"type": "string"},
	},
}

var sectionOverridesSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"hook":     sectionOverrideSchema,
		"problem":  sectionOverrideSchema,
		"solution": sectionOverrideSchema,
		"proof":    sectionOverrideSchema,
		"action":   sectionOverrideSchema,
	},
}

// Schema names accepted in Request.SchemaName.
const (
	SchemaCoreNarrative    = "core_narrative"
	SchemaPopulatedContent = "populated_content"
	SchemaSectionOverrides = "section_overrides"
)

var schemasByName = map[string]map[string]interface{}{
	SchemaCoreNarrative:    coreNarrativeSchema,
	SchemaPopulatedContent: populatedContentSchema,
	SchemaSectionOverrides: sectionOverridesSchema,
}

// ValidatePayload checks a raw synthesis payload against the named target
// schema.
func ValidatePayload(schemaName string, payload json.RawMessage) error {
	schemaMap, ok := schemasByName[schemaName]
	if !ok {
		return fmt.Errorf("unknown synthesis schema %q", schemaName)
	}

	var doc interface{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}

	schemaLoader := gojsonschema.NewGoLoader(schemaMap)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("payload validation failed: %v", errs)
	}

	return nil
}
