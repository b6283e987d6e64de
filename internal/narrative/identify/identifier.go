// internal/narrative/identify/identifier.go
package identify

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"narrative-workers/internal/common/logger"
	"narrative-workers/internal/common/synthesis"
	"narrative-workers/internal/models"
)

// Identifier produces the core narrative summary for a generation run. It
// asks the synthesis service first and falls back to a deterministic
// derivation from the entities themselves, so a usable narrative always
// comes back.
type Identifier struct {
	synth  synthesis.TextSynthesizer
	logger logger.Logger
}

func New(synth synthesis.TextSynthesizer, log logger.Logger) *Identifier {
	return &Identifier{
		synth:  synth,
		logger: log.WithFields(map[string]interface{}{"component": "narrative-identifier"}),
	}
}

// Result carries the narrative plus how it was produced.
type Result struct {
	Narrative    *models.CoreNarrative
	UsedFallback bool
	TokensUsed   int
}

// Identify derives the core narrative from classified entities and an
// optional brand voice. It never returns an error: any synthesis or
// validation failure switches to the deterministic fallback.
func (i *Identifier) Identify(ctx context.Context, classified map[models.NarrativeRole][]models.KnowledgeEntity, brand *models.BrandVoice) *Result {
	entities := flatten(classified)

	if i.synth != nil {
		narrative, tokens, err := i.synthesize(ctx, entities, brand)
		if err == nil {
			return &Result{Narrative: narrative, TokensUsed: tokens}
		}
		i.logger.Warn("narrative synthesis failed, using deterministic fallback", map[string]interface{}{
			"error":       err.Error(),
			"entityCount": len(entities),
		})
	}

	return &Result{Narrative: Fallback(entities), UsedFallback: true}
}

func (i *Identifier) synthesize(ctx context.Context, entities []models.KnowledgeEntity, brand *models.BrandVoice) (*models.CoreNarrative, int, error) {
	req := &synthesis.Request{
		Prompt:       buildPrompt(entities, brand),
		SystemPrompt: "You are a brand strategist. Respond with a single JSON object only.",
		SchemaName:   synthesis.SchemaCoreNarrative,
		Context:      promptContext(entities, brand),
	}

	resp, err := i.synth.SynthesizeJSON(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	// A payload that fails schema validation is no better than a failed call.
	if err := synthesis.ValidatePayload(synthesis.SchemaCoreNarrative, resp.Content); err != nil {
		return nil, resp.TokensUsed, err
	}

	var narrative models.CoreNarrative
	if err := json.Unmarshal(resp.Content, &narrative); err != nil {
		return nil, resp.TokensUsed, fmt.Errorf("decode narrative: %w", err)
	}

	return &narrative, resp.TokensUsed, nil
}

func buildPrompt(entities []models.KnowledgeEntity, brand *models.BrandVoice) string {
	var b strings.Builder
	b.WriteString("Derive the core marketing narrative for this business from its knowledge facts.\n\n")

	byType := map[models.EntityType][]models.KnowledgeEntity{}
	for _, e := range entities {
		byType[e.EntityType] = append(byType[e.EntityType], e)
	}
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, string(t))
	}
	sort.Strings(types)

	for _, t := range types {
		b.WriteString(fmt.Sprintf("## %s\n", t))
		for _, e := range byType[models.EntityType(t)] {
			b.WriteString("- " + e.Name)
			if e.Description != "" {
				b.WriteString(": " + e.Description)
			}
			b.WriteString("\n")
		}
	}

	if brand != nil {
		b.WriteString(fmt.Sprintf("\nBrand tone: %s.", brand.Tone))
		if brand.TargetAudience != "" {
			b.WriteString(fmt.Sprintf(" Target audience: %s.", brand.TargetAudience))
		}
		if len(brand.AvoidWords) > 0 {
			b.WriteString(fmt.Sprintf(" Avoid: %s.", strings.Join(brand.AvoidWords, ", ")))
		}
	}

	b.WriteString("\nReturn JSON with centralTheme, valueProposition, differentiators, targetAudience, transformation{before,after}, painPoints, benefits, proofElements[{type,count,strength}].")
	return b.String()
}

func promptContext(entities []models.KnowledgeEntity, brand *models.BrandVoice) map[string]interface{} {
	ctx := map[string]interface{}{"entityCount": len(entities)}
	if brand != nil {
		ctx["brandTone"] = brand.Tone
		if brand.TargetAudience != "" {
			ctx["targetAudience"] = brand.TargetAudience
		}
	}
	return ctx
}

// Fallback derives the narrative directly from the entities, with no remote
// calls. Theme and value proposition come from the first feature;
// differentiators from up to three features; proof strength is high above
// five items of a kind, medium otherwise.
func Fallback(entities []models.KnowledgeEntity) *models.CoreNarrative {
	narrative := &models.CoreNarrative{
		CentralTheme:     "Your partner for growth",
		ValueProposition: "Solutions that move your business forward",
	}

	var features []models.KnowledgeEntity
	proofCounts := map[string]int{}

	for _, e := range entities {
		switch e.EntityType {
		case models.EntityFeature:
			features = append(features, e)
		case models.EntityPainPoint:
			narrative.PainPoints = append(narrative.PainPoints, e.Name)
		case models.EntityBenefit:
			narrative.Benefits = append(narrative.Benefits, e.Name)
		case models.EntityTestimonial, models.EntityCaseStudy, models.EntityStatistic:
			proofCounts[string(e.EntityType)]++
		case models.EntityCompanyTagline:
			narrative.CentralTheme = e.Name
		case models.EntityCompanyDescription:
			if e.Description != "" {
				narrative.TargetAudience = e.Description
			}
		}
	}

	if len(features) > 0 {
		narrative.CentralTheme = features[0].Name
		if features[0].Description != "" {
			narrative.ValueProposition = features[0].Description
		} else {
			narrative.ValueProposition = features[0].Name
		}
		for i := 0; i < len(features) && i < 3; i++ {
			narrative.Differentiators = append(narrative.Differentiators, features[i].Name)
		}
	}

	if len(narrative.PainPoints) > 0 {
		narrative.Transformation = models.Transformation{
			Before: narrative.PainPoints[0],
			After:  narrative.ValueProposition,
		}
	}

	for _, proofType := range []string{string(models.EntityTestimonial), string(models.EntityCaseStudy), string(models.EntityStatistic)} {
		count := proofCounts[proofType]
		if count == 0 {
			continue
		}
		strength := "medium"
		if count > 5 {
			strength = "high"
		}
		narrative.ProofElements = append(narrative.ProofElements, models.ProofElement{
			Type:     proofType,
			Count:    count,
			Strength: strength,
		})
	}

	return narrative
}

func flatten(classified map[models.NarrativeRole][]models.KnowledgeEntity) []models.KnowledgeEntity {
	var out []models.KnowledgeEntity
	for _, role := range models.AllNarrativeRoles {
		out = append(out, classified[role]...)
	}
	return out
}
