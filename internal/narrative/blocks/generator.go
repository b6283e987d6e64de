// internal/narrative/blocks/generator.go
package blocks

import (
	"fmt"

	"github.com/google/uuid"

	"narrative-workers/internal/models"
	"narrative-workers/internal/narrative/templates"
)

// Content types assigned to placeholder blocks, per stage.
var placeholderContentType = map[models.NarrativeRole]string{
	models.RoleHook:     string(models.EntityCompanyTagline),
	models.RoleProblem:  string(models.EntityPainPoint),
	models.RoleSolution: string(models.EntityFeature),
	models.RoleProof:    string(models.EntityStatistic),
	models.RoleAction:   string(models.EntityCTA),
}

// Generate builds the ordered, stage-tagged block list for a page. Each
// stage takes up to its recommended count of classified entities; the
// remainder up to the recommended count is filled with placeholder blocks
// substituted from the narrative summary. A stage with a zero recommended
// count and no entities is skipped entirely.
func Generate(classified map[models.NarrativeRole][]models.KnowledgeEntity, narrative *models.CoreNarrative, pageType string) ([]models.ContentBlock, error) {
	tpl, err := templates.Get(pageType)
	if err != nil {
		return nil, err
	}

	var out []models.ContentBlock
	for _, stage := range tpl.StageOrder {
		entities := classified[stage]
		dist := tpl.ContentDistribution[stage]
		if dist.Recommended == 0 && len(entities) == 0 {
			continue
		}

		tone := tpl.StageGuidance[stage].EmotionalGoal

		count := len(entities)
		if count > dist.Recommended {
			count = dist.Recommended
		}
		for i := 0; i < count; i++ {
			out = append(out, entityBlock(stage, i+1, entities[i], tone))
		}
		for i := count; i < dist.Recommended; i++ {
			out = append(out, placeholderBlock(stage, i+1, narrative, tone))
		}
	}
	return out, nil
}

func entityBlock(stage models.NarrativeRole, position int, entity models.KnowledgeEntity, tone string) models.ContentBlock {
	contentType := string(entity.EntityType)
	return models.ContentBlock{
		ID:       uuid.New().String(),
		Stage:    stage,
		Priority: position,
		Content: models.BlockContent{
			Headline:    entity.Name,
			Description: entity.Description,
			EntityIDs:   []string{entity.ID},
			ContentType: contentType,
		},
		EmotionalTone:       tone,
		SuggestedComponents: SuggestComponents(stage, contentType),
	}
}

func placeholderBlock(stage models.NarrativeRole, position int, narrative *models.CoreNarrative, tone string) models.ContentBlock {
	contentType := placeholderContentType[stage]
	headline, description, bullets := placeholderCopy(stage, position-1, narrative)
	return models.ContentBlock{
		ID:       uuid.New().String(),
		Stage:    stage,
		Priority: position,
		Content: models.BlockContent{
			Headline:    headline,
			Description: description,
			Bullets:     bullets,
			EntityIDs:   []string{},
			ContentType: contentType,
		},
		EmotionalTone:       tone,
		SuggestedComponents: SuggestComponents(stage, contentType),
	}
}

// placeholderCopy substitutes narrative fields into stage-shaped copy.
// Index selects among list-valued narrative fields when a stage needs more
// than one placeholder.
func placeholderCopy(stage models.NarrativeRole, index int, narrative *models.CoreNarrative) (headline, description string, bullets []string) {
	if narrative == nil {
		narrative = &models.CoreNarrative{}
	}

	switch stage {
	case models.RoleHook:
		headline = narrative.ValueProposition
		if headline == "" {
			headline = "Welcome"
		}
		description = narrative.CentralTheme

	case models.RoleProblem:
		if index < len(narrative.PainPoints) {
			headline = narrative.PainPoints[index]
		} else {
			headline = "The old way is holding you back"
		}
		if narrative.Transformation.Before != "" {
			description = narrative.Transformation.Before
		}

	case models.RoleSolution:
		if index < len(narrative.Differentiators) {
			headline = narrative.Differentiators[index]
		} else if len(narrative.Benefits) > 0 {
			headline = narrative.Benefits[index%len(narrative.Benefits)]
		} else {
			headline = narrative.ValueProposition
		}
		if headline == "" {
			headline = "How it works"
		}
		bullets = narrative.Benefits

	case models.RoleProof:
		if index < len(narrative.ProofElements) {
			proof := narrative.ProofElements[index]
			headline = fmt.Sprintf("Backed by %d %ss", proof.Count, proof.Type)
		} else {
			headline = "Trusted by teams like yours"
		}

	case models.RoleAction:
		headline = "Get started today"
		if narrative.Transformation.After != "" {
			description = narrative.Transformation.After
		} else {
			description = narrative.ValueProposition
		}
	}

	return headline, description, bullets
}
