// internal/models/entity.go
package models

// EntityType is the closed set of knowledge fact categories produced by the
// extraction pipeline. Unrecognized values are tolerated downstream and
// classified into the solution stage.
type EntityType string

const (
	EntityFeature            EntityType = "feature"
	EntityBenefit            EntityType = "benefit"
	EntityTestimonial        EntityType = "testimonial"
	EntityStatistic          EntityType = "statistic"
	EntityPricing            EntityType = "pricing"
	EntityCTA                EntityType = "cta"
	EntityCompanyDescription EntityType = "company_description"
	EntityCompanyTagline     EntityType = "company_tagline"
	EntityPainPoint          EntityType = "pain_point"
	EntityCaseStudy          EntityType = "case_study"
	EntityCertification      EntityType = "certification"
	EntityAward              EntityType = "award"
	EntityFAQ                EntityType = "faq"
	EntityProcess            EntityType = "process"
	EntityComparison         EntityType = "comparison"
	EntityTeamMember         EntityType = "team_member"
	EntityIntegration        EntityType = "integration"
)

// KnowledgeEntity is one extracted fact about the business. Entities are
// owned by the knowledge store and read-only to this pipeline.
type KnowledgeEntity struct {
	ID          string            `json:"id"`
	EntityType  EntityType        `json:"entityType"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Confidence  float64           `json:"confidence"`
}

// Meta returns a metadata value or the given default when absent.
func (e KnowledgeEntity) Meta(key, def string) string {
	if v, ok := e.Metadata[key]; ok && v != "" {
		return v
	}
	return def
}

// Well-known metadata keys per entity type. Extraction writes these; the
// populators read them via explicit lookups with defaults. Loosely
// validated: a missing key degrades to the entity's name/description.
var MetadataKeys = map[EntityType][]string{
	EntityTestimonial: {"quote", "author", "role", "company", "rating"},
	EntityStatistic:   {"value", "label", "context"},
	EntityPricing:     {"tier", "price", "period", "features", "highlighted"},
	EntityCTA:         {"text", "href", "variant"},
	EntityFAQ:         {"question", "answer"},
	EntityFeature:     {"icon"},
	EntityCaseStudy:   {"client", "outcome", "industry"},
	EntityAward:       {"issuer", "year"},
}
