// internal/narrative/persona/adapter.go
package persona

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"narrative-workers/internal/common/logger"
	"narrative-workers/internal/common/synthesis"
	"narrative-workers/internal/models"
	"narrative-workers/internal/narrative/optimizer"
)

// Adapter produces persona-specific storyline variations. Strategy
// selection and block re-weighting are deterministic; only the copy
// overrides involve the synthesis service, and a failed call degrades to
// the unmodified base copy.
type Adapter struct {
	synth  synthesis.TextSynthesizer
	logger logger.Logger
}

func NewAdapter(synth synthesis.TextSynthesizer, log logger.Logger) *Adapter {
	return &Adapter{
		synth:  synth,
		logger: log.WithFields(map[string]interface{}{"component": "persona-adapter"}),
	}
}

// Result of adapting one persona, with tokens spent on its copy request.
type Result struct {
	Variation  models.PersonaStoryVariation
	TokensUsed int
}

// AdaptAll fans out across personas in parallel and returns results in the
// input persona order. Personas are independent of each other; one
// persona's synthesis failure never affects its siblings.
func (a *Adapter) AdaptAll(ctx context.Context, personas []models.Persona, flow *models.StoryFlow, blocks []models.ContentBlock) []Result {
	results := make([]Result, len(personas))

	var wg sync.WaitGroup
	for i, p := range personas {
		wg.Add(1)
		go func(i int, p models.Persona) {
			defer wg.Done()
			results[i] = a.Adapt(ctx, p, flow, blocks)
		}(i, p)
	}
	wg.Wait()

	return results
}

// Adapt builds one persona's variation: adjusted emotional journey,
// re-weighted and re-ordered blocks, and synthesis-backed section copy
// overrides when available.
func (a *Adapter) Adapt(ctx context.Context, p models.Persona, flow *models.StoryFlow, blocks []models.ContentBlock) Result {
	adaptation := DeriveAdaptation(p)

	variation := models.PersonaStoryVariation{
		PersonaID:  p.ID,
		Flow:       adaptFlow(flow, adaptation),
		Adaptation: adaptation,
		Blocks:     a.reorderBlocks(blocks, adaptation, flow.PageType),
	}

	overrides, tokens, err := a.requestOverrides(ctx, p, adaptation, blocks)
	if err != nil {
		a.logger.Warn("persona copy adaptation failed, keeping base content", map[string]interface{}{
			"personaId": p.ID,
			"error":     err.Error(),
		})
		// Base copy stands, but the computed strategy metadata still rides
		// along so the display layer can honor emphasis and CTA approach.
		variation.UsedFallback = true
		variation.SectionOverrides = fallbackOverrides(flow, adaptation)
		return Result{Variation: variation}
	}

	variation.SectionOverrides = overrides
	return Result{Variation: variation, TokensUsed: tokens}
}

func adaptFlow(flow *models.StoryFlow, adaptation models.PersonaNarrativeAdaptation) models.StoryFlow {
	adapted := models.StoryFlow{PageType: flow.PageType}
	adapted.Stages = append(adapted.Stages, flow.Stages...)
	for _, point := range flow.EmotionalJourney {
		multiplier, ok := adaptation.EmotionalArcAdjustments[point.Stage]
		if !ok {
			multiplier = 1.0
		}
		point.Intensity = clampIntensity(point.Intensity * multiplier)
		adapted.EmotionalJourney = append(adapted.EmotionalJourney, point)
	}
	return adapted
}

func (a *Adapter) reorderBlocks(blocks []models.ContentBlock, adaptation models.PersonaNarrativeAdaptation, pageType string) []models.ContentBlock {
	reweighted := ReweightBlocks(blocks, adaptation)
	ordered, err := optimizer.AutoFix(reweighted, pageType)
	if err != nil {
		return reweighted
	}
	return ordered
}

func (a *Adapter) requestOverrides(ctx context.Context, p models.Persona, adaptation models.PersonaNarrativeAdaptation, blocks []models.ContentBlock) (map[models.NarrativeRole]models.SectionOverride, int, error) {
	if a.synth == nil {
		return nil, 0, fmt.Errorf("no synthesizer configured")
	}

	resp, err := a.synth.SynthesizeJSON(ctx, &synthesis.Request{
		Prompt:       buildOverridePrompt(p, adaptation, blocks),
		SystemPrompt: "You adapt website copy for a specific audience persona. Respond with a single JSON object only.",
		SchemaName:   synthesis.SchemaSectionOverrides,
		Context: map[string]interface{}{
			"personaId":      p.ID,
			"hookStrategy":   adaptation.HookStrategy,
			"ctaApproach":    adaptation.CTAApproach,
			"contentDensity": adaptation.ContentDensity,
		},
	})
	if err != nil {
		return nil, 0, err
	}

	if err := synthesis.ValidatePayload(synthesis.SchemaSectionOverrides, resp.Content); err != nil {
		return nil, resp.TokensUsed, err
	}

	var overrides map[models.NarrativeRole]models.SectionOverride
	if err := json.Unmarshal(resp.Content, &overrides); err != nil {
		return nil, resp.TokensUsed, fmt.Errorf("decode overrides: %w", err)
	}

	// Unrecognized stage keys are dropped rather than rejected.
	for role := range overrides {
		if !models.IsValidNarrativeRole(string(role)) {
			delete(overrides, role)
		}
	}
	return overrides, resp.TokensUsed, nil
}

func buildOverridePrompt(p models.Persona, adaptation models.PersonaNarrativeAdaptation, blocks []models.ContentBlock) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Adapt the page copy below for the persona %q (style: %s, journey stage: %s).\n", p.Name, p.CommunicationStyle, p.BuyerJourneyStage))
	b.WriteString(fmt.Sprintf("Hook strategy: %s. CTA approach: %s. Density: %s.\n", adaptation.HookStrategy, adaptation.CTAApproach, adaptation.ContentDensity))
	if len(p.PainPoints) > 0 {
		b.WriteString("Persona pain points: " + strings.Join(p.PainPoints, "; ") + ".\n")
	}
	if len(p.Goals) > 0 {
		b.WriteString("Persona goals: " + strings.Join(p.Goals, "; ") + ".\n")
	}

	b.WriteString("\nBase copy per stage:\n")
	for _, block := range blocks {
		b.WriteString(fmt.Sprintf("- [%s] %s", block.Stage, block.Content.Headline))
		if block.Content.Description != "" {
			b.WriteString(" - " + block.Content.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nReturn a JSON object keyed by stage (hook, problem, solution, proof, action), each with optional headline, description, ctaText, emphasis.")
	return b.String()
}

// fallbackOverrides carries the strategy metadata that survives a failed
// copy request: emphasis from the density choice, CTA approach on the
// action stage.
func fallbackOverrides(flow *models.StoryFlow, adaptation models.PersonaNarrativeAdaptation) map[models.NarrativeRole]models.SectionOverride {
	overrides := make(map[models.NarrativeRole]models.SectionOverride, len(flow.Stages))
	for _, section := range flow.Stages {
		override := models.SectionOverride{Emphasis: adaptation.ContentDensity}
		if section.Stage == models.RoleAction {
			override.Emphasis = adaptation.CTAApproach
		}
		overrides[section.Stage] = override
	}
	return overrides
}
