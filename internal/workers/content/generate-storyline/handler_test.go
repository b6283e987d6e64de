// internal/workers/content/generate-storyline/handler_test.go
package generatestoryline

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
	"narrative-workers/internal/narrative/templates"
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
}

func (s *stubSynthesizer) SynthesizeJSON(ctx context.Context, req *synthesis.Request) (*synthesis.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func testEntities() []models.KnowledgeEntity {
	return []models.KnowledgeEntity{
		{ID: "e1", EntityType: models.EntityCompanyTagline, Name: "Ship faster with confidence", Confidence: 0.9},
		{ID: "e2", EntityType: models.EntityFeature, Name: "One-click deploys", Description: "Deploy every merge with a single click", Confidence: 0.85},
		{ID: "e3", EntityType: models.EntityPainPoint, Name: "Release days are chaos", Confidence: 0.8},
		{ID: "e4", EntityType: models.EntityTestimonial, Name: "Cut our release time in half", Confidence: 0.9},
	}
}

func newTestService(facts stores.FactStore, personas stores.PersonaStore, brands stores.BrandStore, synth synthesis.TextSynthesizer) *Service {
	return NewService(LoadConfig(), facts, personas, brands, synth, logger.NewNoOpLogger())
}

// ==========================
// Tests
// ==========================

func TestExecute_FullPipelineWithFallback(t *testing.T) {
	facts := &fakeFactStore{entities: testEntities()}
	personas := &fakePersonaStore{personas: []models.Persona{
		{ID: "p1", CommunicationStyle: "executive", BuyerJourneyStage: "decision"},
	}}
	brands := &fakeBrandStore{}
	synth := &stubSynthesizer{err: errors.New("synthesis unavailable")}

	svc := newTestService(facts, personas, brands, synth)

	output, err := svc.Execute(context.Background(), &Input{
		WorkspaceID: "ws-1",
		PageType:    "landing",
		PersonaIDs:  []string{"p1"},
	})
	require.NoError(t, err)

	require.NotNil(t, output.Narrative)
	assert.Equal(t, "One-click deploys", output.Narrative.CentralTheme)

	require.NotNil(t, output.DefaultFlow)
	assert.Equal(t, "landing", output.DefaultFlow.PageType)
	// Optional problem and proof stages join because matching entities exist.
	assert.Len(t, output.DefaultFlow.Stages, 5)
	assert.Equal(t, output.DefaultFlow.EmotionalJourney, output.EmotionalJourney)

	assert.NotEmpty(t, output.ContentBlocks)

	require.Len(t, output.PersonaVariations, 1)
	variation := output.PersonaVariations[0]
	assert.Equal(t, "p1", variation.PersonaID)
	assert.True(t, variation.UsedFallback)
	assert.Equal(t, "social_proof_lead", variation.Adaptation.HookStrategy)
	assert.Equal(t, "direct_offer", variation.Adaptation.CTAApproach)

	// Narrative synthesis and the persona copy request both fell back.
	assert.Equal(t, 2, output.Stats.FallbacksUsed)
	assert.Equal(t, 0, output.Stats.TokensUsed)
	assert.GreaterOrEqual(t, output.Stats.Score, 0)
	assert.LessOrEqual(t, output.Stats.Score, 100)
}

func TestExecute_SynthesizedNarrative(t *testing.T) {
	narrativeJSON, err := json.Marshal(map[string]interface{}{
		"centralTheme":     "Developer velocity",
		"valueProposition": "Ship weekly instead of quarterly",
		"differentiators":  []string{"One-click deploys"},
	})
	require.NoError(t, err)

	facts := &fakeFactStore{entities: testEntities()}
	synth := &stubSynthesizer{resp: &synthesis.Response{Content: narrativeJSON, TokensUsed: 120}}

	svc := newTestService(facts, &fakePersonaStore{}, &fakeBrandStore{}, synth)

	output, err := svc.Execute(context.Background(), &Input{
		WorkspaceID: "ws-1",
		PageType:    "landing",
	})
	require.NoError(t, err)

	assert.Equal(t, "Developer velocity", output.Narrative.CentralTheme)
	assert.Equal(t, "Ship weekly instead of quarterly", output.Narrative.ValueProposition)
	assert.Equal(t, 120, output.Stats.TokensUsed)
	assert.Equal(t, 0, output.Stats.FallbacksUsed)
	assert.Empty(t, output.PersonaVariations)
}

func TestExecute_UnknownPageType(t *testing.T) {
	svc := newTestService(&fakeFactStore{}, &fakePersonaStore{}, &fakeBrandStore{}, &stubSynthesizer{err: errors.New("down")})

	_, err := svc.Execute(context.Background(), &Input{
		WorkspaceID: "ws-1",
		PageType:    "blog",
	})
	assert.ErrorIs(t, err, templates.ErrTemplateNotFound)
}

func TestExecute_AllStoresFailing(t *testing.T) {
	facts := &fakeFactStore{err: errors.New("es down")}
	personas := &fakePersonaStore{err: errors.New("pg down")}
	brands := &fakeBrandStore{err: errors.New("pg down")}
	synth := &stubSynthesizer{err: errors.New("down")}

	svc := newTestService(facts, personas, brands, synth)

	output, err := svc.Execute(context.Background(), &Input{
		WorkspaceID: "ws-1",
		PageType:    "landing",
		PersonaIDs:  []string{"p1"},
	})
	require.NoError(t, err)

	// Generic fallback narrative, required stages only, no variations.
	assert.Equal(t, "Your partner for growth", output.Narrative.CentralTheme)
	assert.Len(t, output.DefaultFlow.Stages, 3)
	assert.Empty(t, output.PersonaVariations)
	assert.NotEmpty(t, output.ContentBlocks)
}

func TestExecute_BlockOrderFollowsStageOrder(t *testing.T) {
	facts := &fakeFactStore{entities: testEntities()}
	svc := newTestService(facts, &fakePersonaStore{}, &fakeBrandStore{}, &stubSynthesizer{err: errors.New("down")})

	output, err := svc.Execute(context.Background(), &Input{
		WorkspaceID: "ws-1",
		PageType:    "landing",
	})
	require.NoError(t, err)

	tpl, err := templates.Get("landing")
	require.NoError(t, err)

	lastIndex := -1
	for _, b := range output.ContentBlocks {
		idx := tpl.StageIndex(b.Stage)
		assert.GreaterOrEqual(t, idx, lastIndex, "block %s out of stage order", b.ID)
		lastIndex = idx
	}
}

func TestClassifyError_ConfigurationCodesGetNoRetries(t *testing.T) {
	invalid := fmt.Errorf("%w: pageType is required", ErrInvalidInput)
	assert.Equal(t, cmerrors.ErrCodeInvalidInput, classifyError(invalid))

	missing := fmt.Errorf("page type %q: %w", "brochure", templates.ErrTemplateNotFound)
	assert.Equal(t, cmerrors.ErrCodeTemplateNotFound, classifyError(missing))

	assert.Equal(t, cmerrors.ErrCodeUnknown, classifyError(errors.New("boom")))

	for _, code := range []cmerrors.ErrorCode{
		cmerrors.ErrCodeInvalidInput,
		cmerrors.ErrCodeTemplateNotFound,
		cmerrors.ErrCodeUnknown,
	} {
		assert.Equal(t, 0, cmerrors.GetRetryCount(code))
	}
}
