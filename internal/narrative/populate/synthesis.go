// internal/narrative/populate/synthesis.go
package populate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"narrative-workers/internal/common/logger"
	"narrative-workers/internal/common/synthesis"
	"narrative-workers/internal/models"
	"narrative-workers/internal/narrative/slots"
	"narrative-workers/internal/narrative/templates"
)

// SynthesisPopulator fills section slots through the synthesis service,
// falling back to the deterministic per-stage template on any failure.
type SynthesisPopulator struct {
	synth  synthesis.TextSynthesizer
	logger logger.Logger
}

func NewSynthesisPopulator(synth synthesis.TextSynthesizer, log logger.Logger) *SynthesisPopulator {
	return &SynthesisPopulator{
		synth:  synth,
		logger: log.WithFields(map[string]interface{}{"component": "synthesis-populator"}),
	}
}

// Populate fills one section. It never returns an error: a synthesis or
// validation failure downgrades the section to fallback content, flagged
// through Output.UsedFallback so callers can count it.
//
// On this path the traceability confidence is the fraction of the
// component's required slots that ended up non-empty.
func (p *SynthesisPopulator) Populate(ctx context.Context, in Input) *Output {
	if p.synth != nil {
		out, err := p.synthesize(ctx, in)
		if err == nil {
			return out
		}
		p.logger.Warn("section synthesis failed, using fallback template", map[string]interface{}{
			"componentId": in.ComponentID,
			"stage":       string(in.Stage),
			"error":       err.Error(),
		})
	}

	content, fieldSources := FallbackContent(in.Stage, in.Entities)
	return p.finish(in, content, fieldSources, true, 0)
}

func (p *SynthesisPopulator) synthesize(ctx context.Context, in Input) (*Output, error) {
	resp, err := p.synth.SynthesizeJSON(ctx, &synthesis.Request{
		Prompt:       buildSectionPrompt(in),
		SystemPrompt: "You write website section copy. Respond with a single JSON object only.",
		SchemaName:   synthesis.SchemaPopulatedContent,
		Context: map[string]interface{}{
			"componentId": in.ComponentID,
			"stage":       string(in.Stage),
		},
	})
	if err != nil {
		return nil, err
	}

	if err := synthesis.ValidatePayload(synthesis.SchemaPopulatedContent, resp.Content); err != nil {
		return nil, err
	}

	content := NormalizeContent(resp.Content)

	// The synthesized copy is grounded on every entity handed to the prompt.
	fieldSources := map[string][]string{}
	if len(in.Entities) > 0 {
		ids := make([]string, len(in.Entities))
		for i, e := range in.Entities {
			ids[i] = e.ID
		}
		fieldSources["section"] = ids
	}

	return p.finish(in, content, fieldSources, false, resp.TokensUsed), nil
}

func (p *SynthesisPopulator) finish(in Input, content models.PopulatedContent, fieldSources map[string][]string, usedFallback bool, tokens int) *Output {
	traceability := buildTraceability(fieldSources, in.Entities)
	if !traceability.IsGenericFallback {
		traceability.Confidence = requiredFillFraction(content, in.ComponentID)
	}

	return &Output{
		Content:      content,
		Traceability: traceability,
		FieldSources: fieldSources,
		UsedFallback: usedFallback,
		TokensUsed:   tokens,
	}
}

func buildSectionPrompt(in Input) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Write the %s section of a page using the %q component.\n", in.Stage, in.ComponentID))

	if tplGuidance := stageGuidance(in.PageType, in.Stage); tplGuidance != "" {
		b.WriteString("Purpose: " + tplGuidance + "\n")
	}

	if required, err := slots.RequiredSlots(in.ComponentID); err == nil && len(required) > 0 {
		b.WriteString("Required fields: " + strings.Join(required, ", ") + ".\n")
	}

	if in.Narrative != nil {
		b.WriteString(fmt.Sprintf("Core narrative: %s - %s\n", in.Narrative.CentralTheme, in.Narrative.ValueProposition))
	}

	if in.Persona != nil {
		b.WriteString(fmt.Sprintf("Audience: %s readers at the %s stage of their buying journey.",
			in.Persona.CommunicationStyle, in.Persona.BuyerJourneyStage))
		if in.Persona.ContentPreference != "" {
			b.WriteString(" Preferred depth: " + in.Persona.ContentPreference + ".")
		}
		b.WriteString("\n")
	}

	if in.Brand != nil {
		b.WriteString("Brand tone: " + in.Brand.Tone + ".")
		if len(in.Brand.AvoidWords) > 0 {
			b.WriteString(" Avoid: " + strings.Join(in.Brand.AvoidWords, ", ") + ".")
		}
		b.WriteString("\n")
	}

	if len(in.Entities) > 0 {
		b.WriteString("\nSource facts:\n")
		for _, e := range in.Entities {
			b.WriteString(fmt.Sprintf("- [%s] %s", e.EntityType, e.Name))
			if e.Description != "" {
				b.WriteString(": " + e.Description)
			}
			b.WriteString("\n")
		}
	}

	if len(in.Hints) > 0 {
		keys := make([]string, 0, len(in.Hints))
		for k := range in.Hints {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\nAuthor hints:\n")
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("- %s: %s\n", k, in.Hints[k]))
		}
	}

	b.WriteString("\nReturn JSON with only the fields the component needs.")
	return b.String()
}

// stageGuidance pulls the page type's own purpose line for the prompt,
// falling back to the landing template when the page type is unknown.
func stageGuidance(pageType string, stage models.NarrativeRole) string {
	tpl, err := templates.Get(pageType)
	if err != nil {
		if tpl, err = templates.Get("landing"); err != nil {
			return ""
		}
	}
	return tpl.StageGuidance[stage].Purpose
}
