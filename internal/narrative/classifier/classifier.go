// internal/narrative/classifier/classifier.go
package classifier

import (
	"narrative-workers/internal/models"
)

// roleByEntityType is the static classification table. Entity types not
// listed here land in the solution stage, which keeps newly introduced
// knowledge-base types usable without a code change.
var roleByEntityType = map[models.EntityType]models.NarrativeRole{
	models.EntityTestimonial:        models.RoleProof,
	models.EntityCaseStudy:          models.RoleProof,
	models.EntityStatistic:          models.RoleProof,
	models.EntityAward:              models.RoleProof,
	models.EntityCertification:      models.RoleProof,
	models.EntityPainPoint:          models.RoleProblem,
	models.EntityCTA:                models.RoleAction,
	models.EntityPricing:            models.RoleAction,
	models.EntityCompanyTagline:     models.RoleHook,
	models.EntityCompanyDescription: models.RoleHook,
}

// Classify maps a knowledge entity to the narrative stage it serves.
func Classify(entity models.KnowledgeEntity) models.NarrativeRole {
	if role, ok := roleByEntityType[entity.EntityType]; ok {
		return role
	}
	return models.RoleSolution
}

// GroupByRole buckets entities by their narrative role. Every bucket key is
// a valid role; entities are never dropped.
func GroupByRole(entities []models.KnowledgeEntity) map[models.NarrativeRole][]models.KnowledgeEntity {
	groups := make(map[models.NarrativeRole][]models.KnowledgeEntity)
	for _, entity := range entities {
		role := Classify(entity)
		groups[role] = append(groups[role], entity)
	}
	return groups
}
