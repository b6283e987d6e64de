// internal/narrative/populate/fallback.go
package populate

import (
	"narrative-workers/internal/models"
)

// FallbackContent is the deterministic per-stage template used when the
// synthesis service fails or returns garbage. Built purely from entities
// already sourced for the section, so it needs no remote calls and cannot
// fail.
func FallbackContent(stage models.NarrativeRole, entities []models.KnowledgeEntity) (models.PopulatedContent, map[string][]string) {
	content := models.PopulatedContent{}
	fieldSources := map[string][]string{}

	if len(entities) > 0 {
		first := entities[0]
		content.Headline = first.Name
		fieldSources["headline"] = []string{first.ID}
		if first.Description != "" {
			content.Description = first.Description
			fieldSources["description"] = []string{first.ID}
		}
	}

	copyPair := genericCopyByRole[stage]
	if content.Headline == "" {
		content.Headline = copyPair[0]
	}
	if content.Description == "" {
		content.Description = copyPair[1]
	}

	byType := map[models.EntityType][]models.KnowledgeEntity{}
	for _, e := range entities {
		byType[e.EntityType] = append(byType[e.EntityType], e)
	}

	switch stage {
	case models.RoleSolution:
		content.Features, fieldSources["features"] = featuresFrom(byType[models.EntityFeature], 6)
	case models.RoleProof:
		content.Testimonials, fieldSources["testimonials"] = testimonialsFrom(byType[models.EntityTestimonial], 6)
		content.Statistics, fieldSources["statistics"] = statisticsFrom(byType[models.EntityStatistic], 5)
	case models.RoleAction:
		content.PricingTiers, fieldSources["pricingTiers"] = tiersFrom(byType[models.EntityPricing], 4)
	}

	for field, sources := range fieldSources {
		if len(sources) == 0 {
			delete(fieldSources, field)
		}
	}

	ctaText := ctaTextByRole[stage]
	if ctaText == "" {
		ctaText = "Get Started"
	}
	content.PrimaryCTA = &models.CTAButton{Text: ctaText, Variant: "primary"}
	if stage == models.RoleHook {
		content.SecondaryCTA = &models.CTAButton{Text: "Learn More", Variant: "secondary"}
	}

	return content, fieldSources
}
