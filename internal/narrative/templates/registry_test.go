// internal/narrative/templates/registry_test.go
package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"narrative-workers/internal/models"
)

func TestGet(t *testing.T) {
	for _, pageType := range PageTypes() {
		t.Run(pageType, func(t *testing.T) {
			tpl, err := Get(pageType)
			require.NoError(t, err)
			assert.Equal(t, pageType, tpl.PageType)
			assert.NotEmpty(t, tpl.RequiredStages)
			assert.NotEmpty(t, tpl.StageOrder)
			assert.NotEmpty(t, tpl.RecommendedArc)

			// Every required and optional stage appears in StageOrder and has
			// a distribution and guidance entry.
			for _, stage := range append(append([]models.NarrativeRole{}, tpl.RequiredStages...), tpl.OptionalStages...) {
				assert.GreaterOrEqual(t, tpl.StageIndex(stage), 0, "stage %s missing from order", stage)
				_, ok := tpl.ContentDistribution[stage]
				assert.True(t, ok, "stage %s missing distribution", stage)
				_, ok = tpl.StageGuidance[stage]
				assert.True(t, ok, "stage %s missing guidance", stage)
			}

			for stage, dist := range tpl.ContentDistribution {
				assert.LessOrEqual(t, dist.Min, dist.Recommended, "stage %s", stage)
				assert.LessOrEqual(t, dist.Recommended, dist.Max, "stage %s", stage)
			}
		})
	}
}

func TestGet_UnknownPageType(t *testing.T) {
	_, err := Get("blog")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestDefaultStoryFlow_SubsequenceAndRequiredCoverage(t *testing.T) {
	classifieds := []map[models.NarrativeRole][]models.KnowledgeEntity{
		nil,
		{
			models.RoleProof:   {{ID: "t1", EntityType: models.EntityTestimonial}},
			models.RoleProblem: {{ID: "p1", EntityType: models.EntityPainPoint}},
		},
		{
			models.RoleHook:     {{ID: "h1", EntityType: models.EntityCompanyTagline}},
			models.RoleSolution: {{ID: "f1", EntityType: models.EntityFeature}},
		},
	}

	for _, pageType := range PageTypes() {
		tpl, err := Get(pageType)
		require.NoError(t, err)

		for _, classified := range classifieds {
			flow, err := DefaultStoryFlow(pageType, classified)
			require.NoError(t, err)

			// Subsequence of StageOrder.
			orderIdx := -1
			for _, section := range flow.Stages {
				idx := tpl.StageIndex(section.Stage)
				assert.Greater(t, idx, orderIdx, "%s: stages out of template order", pageType)
				orderIdx = idx
			}

			// Superset of RequiredStages.
			present := map[models.NarrativeRole]bool{}
			for _, section := range flow.Stages {
				present[section.Stage] = true
			}
			for _, required := range tpl.RequiredStages {
				assert.True(t, present[required], "%s: required stage %s missing", pageType, required)
			}

			// Journey tracks the included stages one-to-one.
			require.Len(t, flow.EmotionalJourney, len(flow.Stages))
			for i, point := range flow.EmotionalJourney {
				assert.Equal(t, flow.Stages[i].Stage, point.Stage)
				assert.NotEmpty(t, point.Emotion)
				assert.InDelta(t, 1.0, point.Intensity, 0.001)
			}
		}
	}
}

func TestDefaultStoryFlow_OptionalStagesNeedEntities(t *testing.T) {
	// Landing with no proof entities omits the proof stage.
	flow, err := DefaultStoryFlow("landing", nil)
	require.NoError(t, err)
	for _, section := range flow.Stages {
		assert.NotEqual(t, models.RoleProof, section.Stage)
		assert.NotEqual(t, models.RoleProblem, section.Stage)
	}

	// With proof entities present the stage is included.
	flow, err = DefaultStoryFlow("landing", map[models.NarrativeRole][]models.KnowledgeEntity{
		models.RoleProof: {{ID: "t1", EntityType: models.EntityTestimonial}},
	})
	require.NoError(t, err)
	found := false
	for _, section := range flow.Stages {
		if section.Stage == models.RoleProof {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDefaultStoryFlow_UnknownPageType(t *testing.T) {
	_, err := DefaultStoryFlow("nope", nil)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}
