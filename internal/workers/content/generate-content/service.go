// internal/workers/content/generate-content/service.go
package generatecontent

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	cmerrors "narrative-workers/internal/common/errors"
	"narrative-workers/internal/common/logger"
	"narrative-workers/internal/common/metrics"
	"narrative-workers/internal/common/synthesis"
	"narrative-workers/internal/models"
	"narrative-workers/internal/narrative/classifier"
	"narrative-workers/internal/narrative/identify"
	"narrative-workers/internal/narrative/populate"
	"narrative-workers/internal/narrative/slots"
	"narrative-workers/internal/stores"
)

// Service populates page sections one by one, grounding copy in the
// workspace's knowledge base and falling back per section when synthesis is
// unavailable.
type Service struct {
	config    *Config
	facts     stores.FactStore
	personas  stores.PersonaStore
	brands    stores.BrandStore
	populator *populate.SynthesisPopulator
	logger    logger.Logger
}

func NewService(
	config *Config,
	facts stores.FactStore,
	personas stores.PersonaStore,
	brands stores.BrandStore,
	synth synthesis.TextSynthesizer,
	log logger.Logger,
) *Service {
	return &Service{
		config:    config,
		facts:     facts,
		personas:  personas,
		brands:    brands,
		populator: populate.NewSynthesisPopulator(synth, log),
		logger:    log,
	}
}

// Execute populates every requested section sequentially. Sections are
// independent: one section's fallback never aborts the batch. Section
// requests are checked up front so a bad component id fails before any
// synthesis spend.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	started := time.Now()

	if err := s.validateSections(input.Sections); err != nil {
		return nil, err
	}

	entities, brand, persona := s.fetchInputs(ctx, input)
	classified := classifier.GroupByRole(entities)

	// The storyline worker owns narrative synthesis; here the deterministic
	// derivation is enough to anchor section prompts.
	narrative := identify.Fallback(entities)

	output := &Output{
		Sections: make([]SectionResult, 0, len(input.Sections)),
		PageMetadata: PageMetadata{
			WorkspaceID:    input.WorkspaceID,
			PageType:       input.PageType,
			CentralTheme:   narrative.CentralTheme,
			BrandApplied:   brand != nil,
			PersonaApplied: persona != nil,
			GeneratedAt:    started.UTC().Format(time.RFC3339),
		},
		Stats: Stats{TotalSections: len(input.Sections)},
	}

	confidenceSum := 0.0
	for _, section := range input.Sections {
		stage := models.NarrativeRole(section.Stage)

		result := s.populator.Populate(ctx, populate.Input{
			Entities:    classified[stage],
			Brand:       brand,
			Persona:     persona,
			Stage:       stage,
			PageType:    input.PageType,
			ComponentID: section.ComponentID,
			Narrative:   narrative,
			Hints:       section.Hints,
		})

		validation, err := slots.ValidateContent(result.Content, section.ComponentID)
		if err != nil {
			// Unreachable after validateSections, kept for safety.
			return nil, err
		}

		output.Sections = append(output.Sections, SectionResult{
			SectionID:    section.SectionID,
			ComponentID:  section.ComponentID,
			Stage:        section.Stage,
			Content:      result.Content,
			Traceability: result.Traceability,
			FieldSources: result.FieldSources,
			Validation:   validation,
			UsedFallback: result.UsedFallback,
			TokensUsed:   result.TokensUsed,
		})

		output.Stats.GeneratedSections++
		output.Stats.TokensUsed += result.TokensUsed
		confidenceSum += result.Traceability.Confidence
		if result.UsedFallback {
			output.Stats.FallbacksUsed++
			metrics.SynthesisFallbacks.WithLabelValues("section").Inc()
		}

		grounded := strconv.FormatBool(!result.Traceability.IsGenericFallback)
		metrics.SectionsGenerated.WithLabelValues(input.PageType, grounded).Inc()
	}

	if output.Stats.GeneratedSections > 0 {
		output.Stats.AverageConfidence = confidenceSum / float64(output.Stats.GeneratedSections)
	}
	if output.Stats.TokensUsed > 0 {
		metrics.SynthesisTokensUsed.Add(float64(output.Stats.TokensUsed))
	}
	output.Stats.ElapsedMs = time.Since(started).Milliseconds()

	s.logger.Info("content generated", map[string]interface{}{
		"workspaceId":   input.WorkspaceID,
		"pageType":      input.PageType,
		"sections":      output.Stats.GeneratedSections,
		"tokensUsed":    output.Stats.TokensUsed,
		"fallbacksUsed": output.Stats.FallbacksUsed,
	})

	return output, nil
}

func (s *Service) validateSections(sections []SectionRequest) error {
	if len(sections) == 0 {
		return fmt.Errorf("%w: at least one section is required", ErrInvalidInput)
	}
	if s.config.MaxSections > 0 && len(sections) > s.config.MaxSections {
		return fmt.Errorf("%w: at most %d sections per job", ErrInvalidInput, s.config.MaxSections)
	}

	for _, section := range sections {
		if !models.IsValidNarrativeRole(section.Stage) {
			return fmt.Errorf("%w: unknown stage %q for section %q", ErrInvalidInput, section.Stage, section.SectionID)
		}
		if _, err := slots.Get(section.ComponentID); err != nil {
			return fmt.Errorf("section %q: component %q: %w", section.SectionID, section.ComponentID, err)
		}
	}
	return nil
}

// fetchInputs loads knowledge entities, brand voice, and the optional
// persona concurrently; any failure degrades to the empty value with a
// warning.
func (s *Service) fetchInputs(ctx context.Context, input *Input) ([]models.KnowledgeEntity, *models.BrandVoice, *models.Persona) {
	var (
		wg       sync.WaitGroup
		entities []models.KnowledgeEntity
		brand    *models.BrandVoice
		persona  *models.Persona
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		fetched, err := s.facts.FetchEntities(ctx, input.WorkspaceID, stores.FetchOptions{
			MinConfidence: s.config.MinConfidence,
			Limit:         s.config.MaxEntities,
		})
		if err != nil {
			s.logger.Warn("knowledge fetch failed, continuing without entities", map[string]interface{}{
				"workspaceId": input.WorkspaceID,
				"errorCode":   string(cmerrors.ErrCodeKnowledgeFetchFailed),
				"error":       err.Error(),
			})
			return
		}
		entities = fetched
	}()

	go func() {
		defer wg.Done()
		fetched, err := s.brands.GetBrandVoice(ctx, input.BrandID)
		if err != nil {
			s.logger.Warn("brand voice fetch failed, continuing without brand", map[string]interface{}{
				"workspaceId": input.WorkspaceID,
				"errorCode":   string(cmerrors.ErrCodeBrandFetchFailed),
				"error":       err.Error(),
			})
			return
		}
		brand = fetched
	}()

	if input.PersonaID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fetched, err := s.personas.GetPersonas(ctx, []string{input.PersonaID})
			if err != nil {
				s.logger.Warn("persona fetch failed, continuing without persona", map[string]interface{}{
					"workspaceId": input.WorkspaceID,
					"personaId":   input.PersonaID,
					"errorCode":   string(cmerrors.ErrCodePersonaFetchFailed),
					"error":       err.Error(),
				})
				return
			}
			if len(fetched) > 0 {
				persona = &fetched[0]
			}
		}()
	}

	wg.Wait()
	return entities, brand, persona
}
