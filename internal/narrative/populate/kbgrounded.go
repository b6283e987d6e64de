// internal/narrative/populate/kbgrounded.go
package populate

import (
	"narrative-workers/internal/models"
)

// Per-role priority lists for the single-valued fields. The first entity of
// the first type with at least one match wins.
var headlinePriority = map[models.NarrativeRole][]models.EntityType{
	models.RoleHook:     {models.EntityCompanyTagline, models.EntityBenefit, models.EntityCompanyDescription},
	models.RoleProblem:  {models.EntityPainPoint},
	models.RoleSolution: {models.EntityFeature, models.EntityBenefit},
	models.RoleProof:    {models.EntityStatistic, models.EntityCaseStudy, models.EntityAward},
	models.RoleAction:   {models.EntityCTA, models.EntityPricing},
}

var descriptionPriority = map[models.NarrativeRole][]models.EntityType{
	models.RoleHook:     {models.EntityCompanyDescription, models.EntityBenefit},
	models.RoleProblem:  {models.EntityPainPoint, models.EntityCompanyDescription},
	models.RoleSolution: {models.EntityBenefit, models.EntityFeature},
	models.RoleProof:    {models.EntityCaseStudy, models.EntityTestimonial},
	models.RoleAction:   {models.EntityBenefit, models.EntityCompanyTagline},
}

// CTA copy is rarely fact-derived; every role gets a default phrase with no
// entity provenance, even when entities exist.
var ctaTextByRole = map[models.NarrativeRole]string{
	models.RoleHook:     "Get Started",
	models.RoleProblem:  "See the Solution",
	models.RoleSolution: "Explore Features",
	models.RoleProof:    "Join Them",
	models.RoleAction:   "Start Now",
}

// Generic copy used when no entity contributes anything to the section.
var genericCopyByRole = map[models.NarrativeRole][2]string{
	models.RoleHook:     {"Welcome to a better way of working", "Discover what our platform can do for your business."},
	models.RoleProblem:  {"Sound familiar?", "Day-to-day work is harder than it needs to be."},
	models.RoleSolution: {"How it works", "A straightforward approach designed around your workflow."},
	models.RoleProof:    {"Trusted by teams like yours", "Companies of every size rely on us to deliver."},
	models.RoleAction:   {"Ready to get started?", "Join today and see the difference for yourself."},
}

// PopulateKBGrounded fills a section's content directly from knowledge
// entities, with no synthesis call. Every field records the entity ids that
// contributed; a section no entity contributes to falls back to generic
// role-keyed copy and is marked as such in traceability.
func PopulateKBGrounded(role models.NarrativeRole, entities []models.KnowledgeEntity) *Output {
	byType := map[models.EntityType][]models.KnowledgeEntity{}
	for _, e := range entities {
		byType[e.EntityType] = append(byType[e.EntityType], e)
	}

	content := models.PopulatedContent{}
	fieldSources := map[string][]string{}

	if entity, ok := firstByPriority(byType, headlinePriority[role]); ok {
		content.Headline = entity.Name
		fieldSources["headline"] = []string{entity.ID}
	}
	if entity, ok := firstByPriority(byType, descriptionPriority[role]); ok {
		if entity.Description != "" {
			content.Description = entity.Description
		} else {
			content.Description = entity.Name
		}
		fieldSources["description"] = []string{entity.ID}
	}

	content.Features, fieldSources["features"] = featuresFrom(byType[models.EntityFeature], 6)
	content.Testimonials, fieldSources["testimonials"] = testimonialsFrom(byType[models.EntityTestimonial], 6)
	content.Statistics, fieldSources["statistics"] = statisticsFrom(byType[models.EntityStatistic], 5)
	content.FAQs, fieldSources["faqs"] = faqsFrom(byType[models.EntityFAQ], 10)
	content.PricingTiers, fieldSources["pricingTiers"] = tiersFrom(byType[models.EntityPricing], 4)

	for field, sources := range fieldSources {
		if len(sources) == 0 {
			delete(fieldSources, field)
		}
	}

	traceability := buildTraceability(fieldSources, entities)
	if traceability.IsGenericFallback {
		copyPair := genericCopyByRole[role]
		content.Headline = copyPair[0]
		content.Description = copyPair[1]
	}

	// Role-keyed default CTA with empty provenance, success path included.
	content.PrimaryCTA = &models.CTAButton{Text: ctaTextByRole[role], Variant: "primary"}

	return &Output{
		Content:      content,
		Traceability: traceability,
		FieldSources: fieldSources,
		UsedFallback: traceability.IsGenericFallback,
	}
}

func firstByPriority(byType map[models.EntityType][]models.KnowledgeEntity, priority []models.EntityType) (models.KnowledgeEntity, bool) {
	for _, entityType := range priority {
		if group := byType[entityType]; len(group) > 0 {
			return group[0], true
		}
	}
	return models.KnowledgeEntity{}, false
}

func featuresFrom(entities []models.KnowledgeEntity, limit int) ([]models.Feature, []string) {
	var features []models.Feature
	var ids []string
	for i, e := range entities {
		if i >= limit {
			break
		}
		features = append(features, models.Feature{
			Title:       e.Name,
			Description: e.Description,
			Icon:        e.Meta("icon", ""),
		})
		ids = append(ids, e.ID)
	}
	return features, ids
}

func testimonialsFrom(entities []models.KnowledgeEntity, limit int) ([]models.Testimonial, []string) {
	var testimonials []models.Testimonial
	var ids []string
	for i, e := range entities {
		if i >= limit {
			break
		}
		quote := e.Meta("quote", e.Description)
		if quote == "" {
			quote = e.Name
		}
		testimonials = append(testimonials, models.Testimonial{
			Quote:   quote,
			Author:  e.Meta("author", ""),
			Role:    e.Meta("role", ""),
			Company: e.Meta("company", ""),
			Rating:  e.Meta("rating", ""),
		})
		ids = append(ids, e.ID)
	}
	return testimonials, ids
}

func statisticsFrom(entities []models.KnowledgeEntity, limit int) ([]models.Statistic, []string) {
	var statistics []models.Statistic
	var ids []string
	for i, e := range entities {
		if i >= limit {
			break
		}
		statistics = append(statistics, models.Statistic{
			Value:   e.Meta("value", e.Name),
			Label:   e.Meta("label", e.Description),
			Context: e.Meta("context", ""),
		})
		ids = append(ids, e.ID)
	}
	return statistics, ids
}

func faqsFrom(entities []models.KnowledgeEntity, limit int) ([]models.FAQ, []string) {
	var faqs []models.FAQ
	var ids []string
	for i, e := range entities {
		if i >= limit {
			break
		}
		answer := e.Meta("answer", e.Description)
		if answer == "" {
			continue
		}
		faqs = append(faqs, models.FAQ{
			Question: e.Meta("question", e.Name),
			Answer:   answer,
		})
		ids = append(ids, e.ID)
	}
	return faqs, ids
}

func tiersFrom(entities []models.KnowledgeEntity, limit int) ([]models.PricingTier, []string) {
	var tiers []models.PricingTier
	var ids []string
	for i, e := range entities {
		if i >= limit {
			break
		}
		tiers = append(tiers, models.PricingTier{
			Name:        e.Meta("tier", e.Name),
			Price:       e.Meta("price", ""),
			Period:      e.Meta("period", ""),
			Highlighted: e.Meta("highlighted", "") == "true",
		})
		ids = append(ids, e.ID)
	}
	return tiers, ids
}
