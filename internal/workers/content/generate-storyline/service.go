// internal/workers/content/generate-storyline/service.go
package generatestoryline

import (
	"context"
	"sync"
	"time"

	cmerrors "narrative-workers/internal/common/errors"
	"narrative-workers/internal/common/logger"
	"narrative-workers/internal/common/metrics"
	"narrative-workers/internal/common/synthesis"
	"narrative-workers/internal/models"
	"narrative-workers/internal/narrative/blocks"
	"narrative-workers/internal/narrative/classifier"
	"narrative-workers/internal/narrative/identify"
	"narrative-workers/internal/narrative/optimizer"
	"narrative-workers/internal/narrative/persona"
	"narrative-workers/internal/narrative/templates"
	"narrative-workers/internal/stores"
)

// Service wires the narrative pipeline end to end: facts in, a scored
// storyline with persona variations out.
type Service struct {
	config     *Config
	facts      stores.FactStore
	personas   stores.PersonaStore
	brands     stores.BrandStore
	identifier *identify.Identifier
	adapter    *persona.Adapter
	logger     logger.Logger
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
		config:     config,
		facts:      facts,
		personas:   personas,
		brands:     brands,
		identifier: identify.New(synth, log),
		adapter:    persona.NewAdapter(synth, log),
		logger:     log,
	}
}

// Execute runs the storyline pipeline. Store failures degrade to empty
// inputs rather than aborting: a workspace with no reachable knowledge base
// still gets a generic storyline.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	started := time.Now()

	// An unknown page type is a configuration problem, not a data problem.
	if _, err := templates.Get(input.PageType); err != nil {
		return nil, err
	}

	entities, personaList, brand := s.fetchInputs(ctx, input)

	classified := classifier.GroupByRole(entities)

	identified := s.identifier.Identify(ctx, classified, brand)
	narrative := identified.Narrative

	flow, err := templates.DefaultStoryFlow(input.PageType, classified)
	if err != nil {
		return nil, err
	}

	contentBlocks, err := blocks.Generate(classified, narrative, input.PageType)
	if err != nil {
		return nil, err
	}

	report, err := optimizer.Validate(contentBlocks, input.PageType)
	if err != nil {
		return nil, err
	}
	if !report.IsOptimal || len(report.Violations) > 0 {
		fixed, fixErr := optimizer.AutoFix(contentBlocks, input.PageType)
		if fixErr == nil {
			contentBlocks = fixed
			if rescored, scoreErr := optimizer.Validate(contentBlocks, input.PageType); scoreErr == nil {
				report = rescored
			}
		}
	}

	variations, tokens := s.adaptPersonas(ctx, personaList, flow, contentBlocks)

	stats := Stats{
		TokensUsed: identified.TokensUsed + tokens,
		ElapsedMs:  time.Since(started).Milliseconds(),
		Score:      report.Score,
	}
	if identified.UsedFallback {
		stats.FallbacksUsed++
		metrics.SynthesisFallbacks.WithLabelValues("narrative").Inc()
	}
	for _, v := range variations {
		if v.UsedFallback {
			stats.FallbacksUsed++
			metrics.SynthesisFallbacks.WithLabelValues("persona").Inc()
		}
	}
	if stats.TokensUsed > 0 {
		metrics.SynthesisTokensUsed.Add(float64(stats.TokensUsed))
	}

	s.logger.Info("storyline generated", map[string]interface{}{
		"workspaceId": input.WorkspaceID,
		"pageType":    input.PageType,
		"entityCount": len(entities),
		"blockCount":  len(contentBlocks),
		"personas":    len(variations),
		"score":       stats.Score,
		"fallbacks":   stats.FallbacksUsed,
	})

	return &Output{
		Narrative:         narrative,
		DefaultFlow:       flow,
		ContentBlocks:     contentBlocks,
		PersonaVariations: variations,
		EmotionalJourney:  flow.EmotionalJourney,
		Stats:             stats,
	}, nil
}

// fetchInputs loads facts, personas and brand voice concurrently. Each
// source fails independently: a failure logs a warning and yields the empty
// value for that source.
func (s *Service) fetchInputs(ctx context.Context, input *Input) ([]models.KnowledgeEntity, []models.Persona, *models.BrandVoice) {
	var (
		wg          sync.WaitGroup
		entities    []models.KnowledgeEntity
		personaList []models.Persona
		brand       *models.BrandVoice
	)

	wg.Add(3)

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
		if len(input.PersonaIDs) == 0 {
			return
		}
		fetched, err := s.personas.GetPersonas(ctx, input.PersonaIDs)
		if err != nil {
			s.logger.Warn("persona fetch failed, continuing without personas", map[string]interface{}{
				"workspaceId": input.WorkspaceID,
				"errorCode":   string(cmerrors.ErrCodePersonaFetchFailed),
				"error":       err.Error(),
			})
			return
		}
		personaList = fetched
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

	wg.Wait()
	return entities, personaList, brand
}

func (s *Service) adaptPersonas(ctx context.Context, personas []models.Persona, flow *models.StoryFlow, contentBlocks []models.ContentBlock) ([]models.PersonaStoryVariation, int) {
	if len(personas) == 0 {
		return nil, 0
	}

	results := s.adapter.AdaptAll(ctx, personas, flow, contentBlocks)

	variations := make([]models.PersonaStoryVariation, 0, len(results))
	tokens := 0
	for _, r := range results {
		variations = append(variations, r.Variation)
		tokens += r.TokensUsed
	}
	return variations, tokens
}
