// internal/narrative/blocks/components.go
package blocks

import (
	"narrative-workers/internal/models"
)

// componentsByEntityType maps a content type to the component variants that
// present it best, most specific first. Types without an entry fall back to
// the stage default.
var componentsByEntityType = map[models.EntityType][]string{
	models.EntityTestimonial:        {"testimonials-carousel"},
	models.EntityCaseStudy:          {"content-split", "testimonials-carousel"},
	models.EntityStatistic:          {"statistics-band"},
	models.EntityPricing:            {"pricing-table"},
	models.EntityFAQ:                {"faq-accordion"},
	models.EntityCTA:                {"cta-banner"},
	models.EntityFeature:            {"features-grid", "content-split"},
	models.EntityBenefit:            {"features-grid"},
	models.EntityIntegration:        {"features-grid"},
	models.EntityComparison:         {"content-split"},
	models.EntityProcess:            {"content-split"},
	models.EntityPainPoint:          {"content-split"},
	models.EntityCompanyTagline:     {"hero-split", "hero-centered"},
	models.EntityCompanyDescription: {"hero-centered", "content-split"},
}

var defaultComponentByStage = map[models.NarrativeRole]string{
	models.RoleHook:     "hero-split",
	models.RoleProblem:  "content-split",
	models.RoleSolution: "features-grid",
	models.RoleProof:    "testimonials-carousel",
	models.RoleAction:   "cta-banner",
}

// SuggestComponents returns candidate component variants for a block, by
// content type first and stage default second.
func SuggestComponents(stage models.NarrativeRole, contentType string) []string {
	if suggestions, ok := componentsByEntityType[models.EntityType(contentType)]; ok {
		return suggestions
	}
	if fallback, ok := defaultComponentByStage[stage]; ok {
		return []string{fallback}
	}
	return nil
}
