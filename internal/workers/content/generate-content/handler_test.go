// internal/workers/content/generate-content/handler_test.go
package generatecontent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmerrors "narrative-workers/internal/common/errors"
	"narrative-workers/internal/common/logger"
	"narrative-workers/internal/common/synthesis"
	"narrative-workers/internal/models"
	"narrative-workers/internal/narrative/slots"
	"narrative-workers/internal/stores"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeFactStore struct {
	entities []models.KnowledgeEntity
	err      error
}

func (f *fakeFactStore) FetchEntities(ctx context.Context, workspaceID string, opts stores.FetchOptions) ([]models.KnowledgeEntity, error) {
	return f.entities, f.err
}

type fakePersonaStore struct {
	personas []models.Persona
	err      error
}

func (f *fakePersonaStore) GetPersonas(ctx context.Context, ids []string) ([]models.Persona, error) {
	return f.personas, f.err
}

type fakeBrandStore struct {
	brand *models.BrandVoice
	err   error
}

func (f *fakeBrandStore) GetBrandVoice(ctx context.Context, id string) (*models.BrandVoice, error) {
	return f.brand, f.err
}

type stubSynthesizer struct {
	resp *synthesis.Response
	err  error
	got  *synthesis.Request
}

func (s *stubSynthesizer) SynthesizeJSON(ctx context.Context, req *synthesis.Request) (*synthesis.Response, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func hookEntities() []models.KnowledgeEntity {
	return []models.KnowledgeEntity{
		{ID: "e1", EntityType: models.EntityCompanyTagline, Name: "Ship faster with confidence", Confidence: 0.9},
		{ID: "e2", EntityType: models.EntityBenefit, Name: "Fewer failed releases", Description: "Catch breakage before your users do", Confidence: 0.8},
	}
}

func newTestService(facts stores.FactStore, brands stores.BrandStore, synth synthesis.TextSynthesizer) *Service {
	return NewService(LoadConfig(), facts, &fakePersonaStore{}, brands, synth, logger.NewNoOpLogger())
}

// ==========================
// Tests
// ==========================

func TestExecute_SynthesizedSection(t *testing.T) {
	payload, err := json.Marshal(map[string]interface{}{
		"headline":    "Start shipping today",
		"description": "Every merge deployed, every release calm.",
		"primaryCTA":  map[string]interface{}{"text": "Get Started", "href": "/signup"},
	})
	require.NoError(t, err)

	facts := &fakeFactStore{entities: hookEntities()}
	synth := &stubSynthesizer{resp: &synthesis.Response{Content: payload, TokensUsed: 80}}

	svc := newTestService(facts, &fakeBrandStore{}, synth)

	output, err := svc.Execute(context.Background(), &Input{
		WorkspaceID: "ws-1",
		PageType:    "landing",
		Sections: []SectionRequest{
			{SectionID: "sec-1", ComponentID: "cta-banner", Stage: "hook"},
		},
	})
	require.NoError(t, err)

	require.Len(t, output.Sections, 1)
	section := output.Sections[0]
	assert.Equal(t, "sec-1", section.SectionID)
	assert.Equal(t, "Start shipping today", section.Content.Headline)
	assert.False(t, section.UsedFallback)
	assert.True(t, section.Validation.Valid)
	assert.Equal(t, 80, section.TokensUsed)

	// Hook entities ground the section and both required cta-banner slots
	// are filled, so confidence reflects a full required-slot set.
	assert.False(t, section.Traceability.IsGenericFallback)
	assert.InDelta(t, 1.0, section.Traceability.Confidence, 1e-9)
	assert.Equal(t, []string{"e1"}, section.FieldSources["section"])

	assert.Equal(t, "ws-1", output.PageMetadata.WorkspaceID)
	assert.Equal(t, "landing", output.PageMetadata.PageType)
	assert.False(t, output.PageMetadata.BrandApplied)
	assert.NotEmpty(t, output.PageMetadata.GeneratedAt)

	assert.Equal(t, 1, output.Stats.TotalSections)
	assert.Equal(t, 1, output.Stats.GeneratedSections)
	assert.Equal(t, 80, output.Stats.TokensUsed)
	assert.Equal(t, 0, output.Stats.FallbacksUsed)
	assert.InDelta(t, 1.0, output.Stats.AverageConfidence, 1e-9)
}

func TestExecute_HeroSplitFallback(t *testing.T) {
	facts := &fakeFactStore{entities: hookEntities()}
	synth := &stubSynthesizer{err: errors.New("synthesis unavailable")}

	svc := newTestService(facts, &fakeBrandStore{}, synth)

	output, err := svc.Execute(context.Background(), &Input{
		WorkspaceID: "ws-1",
		PageType:    "landing",
		Sections: []SectionRequest{
			{SectionID: "hero", ComponentID: "hero-split", Stage: "hook"},
		},
	})
	require.NoError(t, err)

	require.Len(t, output.Sections, 1)
	section := output.Sections[0]
	assert.True(t, section.UsedFallback)
	assert.NotEmpty(t, section.Content.Headline)
	assert.NotNil(t, section.Content.PrimaryCTA)

	// Fallback copy fills headline, description and primaryCTA; the image
	// slot stays empty, so three of four required slots count.
	assert.InDelta(t, 0.75, section.Traceability.Confidence, 1e-9)
	assert.False(t, section.Validation.Valid)

	assert.Equal(t, 1, output.Stats.FallbacksUsed)
}

func TestExecute_MultipleSectionsAccumulate(t *testing.T) {
	facts := &fakeFactStore{entities: hookEntities()}
	synth := &stubSynthesizer{err: errors.New("synthesis unavailable")}

	svc := newTestService(facts, &fakeBrandStore{}, synth)

	output, err := svc.Execute(context.Background(), &Input{
		WorkspaceID: "ws-1",
		PageType:    "landing",
		Sections: []SectionRequest{
			{SectionID: "hero", ComponentID: "hero-split", Stage: "hook"},
			{SectionID: "cta", ComponentID: "cta-banner", Stage: "action"},
		},
	})
	require.NoError(t, err)

	assert.Len(t, output.Sections, 2)
	assert.Equal(t, 2, output.Stats.TotalSections)
	assert.Equal(t, 2, output.Stats.GeneratedSections)
	assert.Equal(t, 2, output.Stats.FallbacksUsed)
	assert.GreaterOrEqual(t, output.Stats.ElapsedMs, int64(0))
}

func TestExecute_UnknownComponent(t *testing.T) {
	svc := newTestService(&fakeFactStore{}, &fakeBrandStore{}, &stubSynthesizer{})

	_, err := svc.Execute(context.Background(), &Input{
		WorkspaceID: "ws-1",
		PageType:    "landing",
		Sections: []SectionRequest{
			{SectionID: "sec-1", ComponentID: "mystery-widget", Stage: "hook"},
		},
	})
	assert.ErrorIs(t, err, slots.ErrSlotSchemaNotFound)
}

func TestExecute_InvalidStage(t *testing.T) {
	svc := newTestService(&fakeFactStore{}, &fakeBrandStore{}, &stubSynthesizer{})

	_, err := svc.Execute(context.Background(), &Input{
		WorkspaceID: "ws-1",
		PageType:    "landing",
		Sections: []SectionRequest{
			{SectionID: "sec-1", ComponentID: "hero-split", Stage: "finale"},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_NoSections(t *testing.T) {
	svc := newTestService(&fakeFactStore{}, &fakeBrandStore{}, &stubSynthesizer{})

	_, err := svc.Execute(context.Background(), &Input{
		WorkspaceID: "ws-1",
		PageType:    "landing",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestClassifyError_ConfigurationCodesGetNoRetries(t *testing.T) {
	invalid := fmt.Errorf("%w: at least one section is required", ErrInvalidInput)
	assert.Equal(t, cmerrors.ErrCodeInvalidInput, classifyError(invalid))

	missing := fmt.Errorf("component %q: %w", "mystery", slots.ErrSlotSchemaNotFound)
	assert.Equal(t, cmerrors.ErrCodeSlotSchemaNotFound, classifyError(missing))

	assert.Equal(t, 0, cmerrors.GetRetryCount(cmerrors.ErrCodeInvalidInput))
	assert.Equal(t, 0, cmerrors.GetRetryCount(cmerrors.ErrCodeSlotSchemaNotFound))
}

func TestExecute_PersonaShapesSectionPrompt(t *testing.T) {
	payload, err := json.Marshal(map[string]interface{}{
		"headline":   "Start shipping today",
		"primaryCTA": map[string]interface{}{"text": "Get Started", "href": "/signup"},
	})
	require.NoError(t, err)

	synth := &stubSynthesizer{resp: &synthesis.Response{Content: payload, TokensUsed: 40}}
	personas := &fakePersonaStore{personas: []models.Persona{{
		ID:                 "p1",
		Name:               "VP Engineering",
		CommunicationStyle: models.StyleExecutive,
		BuyerJourneyStage:  models.JourneyDecision,
		ContentPreference:  "concise",
	}}}

	svc := NewService(LoadConfig(), &fakeFactStore{entities: hookEntities()}, personas, &fakeBrandStore{}, synth, logger.NewNoOpLogger())

	output, err := svc.Execute(context.Background(), &Input{
		WorkspaceID: "ws-1",
		PageType:    "landing",
		PersonaID:   "p1",
		Sections: []SectionRequest{
			{SectionID: "sec-1", ComponentID: "cta-banner", Stage: "hook"},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, synth.got)
	assert.Contains(t, synth.got.Prompt, "executive readers at the decision stage")
	assert.Contains(t, synth.got.Prompt, "Preferred depth: concise")
	assert.True(t, output.PageMetadata.PersonaApplied)
}

func TestExecute_PromptUsesPageTypeGuidance(t *testing.T) {
	payload, err := json.Marshal(map[string]interface{}{
		"headline":   "Every capability, one platform",
		"primaryCTA": map[string]interface{}{"text": "Start a trial", "href": "/trial"},
	})
	require.NoError(t, err)

	synth := &stubSynthesizer{resp: &synthesis.Response{Content: payload, TokensUsed: 40}}
	svc := newTestService(&fakeFactStore{}, &fakeBrandStore{}, synth)

	_, err = svc.Execute(context.Background(), &Input{
		WorkspaceID: "ws-1",
		PageType:    "product",
		Sections: []SectionRequest{
			{SectionID: "sec-1", ComponentID: "cta-banner", Stage: "solution"},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, synth.got)
	assert.Contains(t, synth.got.Prompt, "Walk through capabilities and integrations in depth")
}
