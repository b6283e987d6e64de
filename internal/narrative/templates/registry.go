// internal/narrative/templates/registry.go
package templates

import (
	"errors"
	"fmt"
	"sort"

	"narrative-workers/internal/models"
)

// ErrTemplateNotFound indicates a page type no template covers. This is a
// configuration defect, not a data-quality issue, and callers treat it as
// fatal.
var ErrTemplateNotFound = errors.New("TEMPLATE_NOT_FOUND")

// ContentDistribution bounds how many content blocks a stage should carry.
type ContentDistribution struct {
	Min         int `json:"min"`
	Max         int `json:"max"`
	Recommended int `json:"recommended"`
}

// StageGuidance is the authoring guidance attached to one stage of a page
// template. ContentTypes lists the entity types that serve the stage best;
// both fields feed synthesis prompts verbatim.
type StageGuidance struct {
	Purpose       string   `json:"purpose"`
	ContentTypes  []string `json:"contentTypes"`
	EmotionalGoal string   `json:"emotionalGoal"`
}

// Template is the static narrative plan for one page type.
type Template struct {
	PageType            string                                           `json:"pageType"`
	RequiredStages      []models.NarrativeRole                           `json:"requiredStages"`
	OptionalStages      []models.NarrativeRole                           `json:"optionalStages"`
	StageOrder          []models.NarrativeRole                           `json:"stageOrder"`
	ContentDistribution map[models.NarrativeRole]ContentDistribution     `json:"contentDistribution"`
	RecommendedArc      string                                           `json:"recommendedArc"`
	StageGuidance       map[models.NarrativeRole]StageGuidance           `json:"stageGuidance"`
}

// IsRequired reports whether the stage is mandatory for this page type.
func (t *Template) IsRequired(stage models.NarrativeRole) bool {
	for _, s := range t.RequiredStages {
		if s == stage {
			return true
		}
	}
	return false
}

// StageIndex returns the stage's position in StageOrder, or -1 when the
// stage is not part of this template.
func (t *Template) StageIndex(stage models.NarrativeRole) int {
	for i, s := range t.StageOrder {
		if s == stage {
			return i
		}
	}
	return -1
}

var registry = map[string]*Template{
	"landing": {
		PageType:       "landing",
		RequiredStages: []models.NarrativeRole{models.RoleHook, models.RoleSolution, models.RoleAction},
		OptionalStages: []models.NarrativeRole{models.RoleProblem, models.RoleProof},
		StageOrder:     []models.NarrativeRole{models.RoleHook, models.RoleProblem, models.RoleSolution, models.RoleProof, models.RoleAction},
		ContentDistribution: map[models.NarrativeRole]ContentDistribution{
			models.RoleHook:     {Min: 1, Max: 2, Recommended: 1},
			models.RoleProblem:  {Min: 0, Max: 2, Recommended: 1},
			models.RoleSolution: {Min: 1, Max: 4, Recommended: 2},
			models.RoleProof:    {Min: 0, Max: 3, Recommended: 2},
			models.RoleAction:   {Min: 1, Max: 2, Recommended: 1},
		},
		RecommendedArc: "curiosity_to_action",
		StageGuidance: map[models.NarrativeRole]StageGuidance{
			models.RoleHook:     {Purpose: "Capture attention with the core value proposition", ContentTypes: []string{"company_tagline", "company_description"}, EmotionalGoal: "curiosity"},
			models.RoleProblem:  {Purpose: "Name the pain the visitor recognizes", ContentTypes: []string{"pain_point"}, EmotionalGoal: "tension"},
			models.RoleSolution: {Purpose: "Show how the product resolves the pain", ContentTypes: []string{"feature", "benefit"}, EmotionalGoal: "relief"},
			models.RoleProof:    {Purpose: "Back the claims with evidence", ContentTypes: []string{"testimonial", "statistic", "case_study"}, EmotionalGoal: "trust"},
			models.RoleAction:   {Purpose: "Convert interest into a concrete next step", ContentTypes: []string{"cta", "pricing"}, EmotionalGoal: "confidence"},
		},
	},
	"about": {
		PageType:       "about",
		RequiredStages: []models.NarrativeRole{models.RoleHook, models.RoleSolution},
		OptionalStages: []models.NarrativeRole{models.RoleProblem, models.RoleProof, models.RoleAction},
		StageOrder:     []models.NarrativeRole{models.RoleHook, models.RoleProblem, models.RoleSolution, models.RoleProof, models.RoleAction},
		ContentDistribution: map[models.NarrativeRole]ContentDistribution{
			models.RoleHook:     {Min: 1, Max: 1, Recommended: 1},
			models.RoleProblem:  {Min: 0, Max: 1, Recommended: 0},
			models.RoleSolution: {Min: 1, Max: 3, Recommended: 2},
			models.RoleProof:    {Min: 0, Max: 2, Recommended: 1},
			models.RoleAction:   {Min: 0, Max: 1, Recommended: 1},
		},
		RecommendedArc: "authentic_connection",
		StageGuidance: map[models.NarrativeRole]StageGuidance{
			models.RoleHook:     {Purpose: "Open with who the company is and what it stands for", ContentTypes: []string{"company_description", "company_tagline"}, EmotionalGoal: "warmth"},
			models.RoleProblem:  {Purpose: "Explain the gap the company set out to close", ContentTypes: []string{"pain_point"}, EmotionalGoal: "empathy"},
			models.RoleSolution: {Purpose: "Tell the story of how the company serves its customers", ContentTypes: []string{"feature", "benefit", "process", "team_member"}, EmotionalGoal: "connection"},
			models.RoleProof:    {Purpose: "Show the track record", ContentTypes: []string{"award", "certification", "case_study"}, EmotionalGoal: "trust"},
			models.RoleAction:   {Purpose: "Invite a conversation", ContentTypes: []string{"cta"}, EmotionalGoal: "openness"},
		},
	},
	"product": {
		PageType:       "product",
		RequiredStages: []models.NarrativeRole{models.RoleHook, models.RoleProblem, models.RoleSolution, models.RoleAction},
		OptionalStages: []models.NarrativeRole{models.RoleProof},
		StageOrder:     []models.NarrativeRole{models.RoleHook, models.RoleProblem, models.RoleSolution, models.RoleProof, models.RoleAction},
		ContentDistribution: map[models.NarrativeRole]ContentDistribution{
			models.RoleHook:     {Min: 1, Max: 1, Recommended: 1},
			models.RoleProblem:  {Min: 1, Max: 2, Recommended: 1},
			models.RoleSolution: {Min: 2, Max: 5, Recommended: 3},
			models.RoleProof:    {Min: 0, Max: 3, Recommended: 2},
			models.RoleAction:   {Min: 1, Max: 1, Recommended: 1},
		},
		RecommendedArc: "interest_to_confidence",
		StageGuidance: map[models.NarrativeRole]StageGuidance{
			models.RoleHook:     {Purpose: "Lead with the product's headline capability", ContentTypes: []string{"feature", "company_tagline"}, EmotionalGoal: "interest"},
			models.RoleProblem:  {Purpose: "Frame the workflow problem the product removes", ContentTypes: []string{"pain_point"}, EmotionalGoal: "recognition"},
			models.RoleSolution: {Purpose: "Walk through capabilities and integrations in depth", ContentTypes: []string{"feature", "benefit", "integration", "comparison", "process"}, EmotionalGoal: "confidence"},
			models.RoleProof:    {Purpose: "Quantify outcomes", ContentTypes: []string{"statistic", "case_study", "testimonial"}, EmotionalGoal: "trust"},
			models.RoleAction:   {Purpose: "Offer a trial or demo", ContentTypes: []string{"cta"}, EmotionalGoal: "resolve"},
		},
	},
	"pricing": {
		PageType:       "pricing",
		RequiredStages: []models.NarrativeRole{models.RoleHook, models.RoleAction},
		OptionalStages: []models.NarrativeRole{models.RoleProblem, models.RoleSolution, models.RoleProof},
		StageOrder:     []models.NarrativeRole{models.RoleHook, models.RoleProblem, models.RoleSolution, models.RoleProof, models.RoleAction},
		ContentDistribution: map[models.NarrativeRole]ContentDistribution{
			models.RoleHook:     {Min: 1, Max: 1, Recommended: 1},
			models.RoleProblem:  {Min: 0, Max: 1, Recommended: 0},
			models.RoleSolution: {Min: 0, Max: 2, Recommended: 1},
			models.RoleProof:    {Min: 0, Max: 2, Recommended: 1},
			models.RoleAction:   {Min: 1, Max: 2, Recommended: 1},
		},
		RecommendedArc: "clarity_to_urgency",
		StageGuidance: map[models.NarrativeRole]StageGuidance{
			models.RoleHook:     {Purpose: "State the pricing promise plainly", ContentTypes: []string{"company_tagline"}, EmotionalGoal: "clarity"},
			models.RoleProblem:  {Purpose: "Acknowledge cost concerns", ContentTypes: []string{"pain_point"}, EmotionalGoal: "empathy"},
			models.RoleSolution: {Purpose: "Map value to tiers", ContentTypes: []string{"benefit", "comparison", "faq"}, EmotionalGoal: "assurance"},
			models.RoleProof:    {Purpose: "Show what customers at each tier achieve", ContentTypes: []string{"testimonial", "statistic"}, EmotionalGoal: "trust"},
			models.RoleAction:   {Purpose: "Present tiers and the purchase step", ContentTypes: []string{"pricing", "cta"}, EmotionalGoal: "urgency"},
		},
	},
	"contact": {
		PageType:       "contact",
		RequiredStages: []models.NarrativeRole{models.RoleHook, models.RoleAction},
		OptionalStages: []models.NarrativeRole{models.RoleSolution},
		StageOrder:     []models.NarrativeRole{models.RoleHook, models.RoleSolution, models.RoleAction},
		ContentDistribution: map[models.NarrativeRole]ContentDistribution{
			models.RoleHook:     {Min: 1, Max: 1, Recommended: 1},
			models.RoleSolution: {Min: 0, Max: 1, Recommended: 0},
			models.RoleAction:   {Min: 1, Max: 1, Recommended: 1},
		},
		RecommendedArc: "reassure_and_invite",
		StageGuidance: map[models.NarrativeRole]StageGuidance{
			models.RoleHook:     {Purpose: "Reassure that reaching out is easy and worthwhile", ContentTypes: []string{"company_description"}, EmotionalGoal: "reassurance"},
			models.RoleSolution: {Purpose: "Set expectations for the response", ContentTypes: []string{"process", "faq"}, EmotionalGoal: "calm"},
			models.RoleAction:   {Purpose: "Present the contact channels", ContentTypes: []string{"cta"}, EmotionalGoal: "openness"},
		},
	},
}

// Get returns the template for a page type.
func Get(pageType string) (*Template, error) {
	tpl, ok := registry[pageType]
	if !ok {
		return nil, fmt.Errorf("%w: no narrative template for page type %q", ErrTemplateNotFound, pageType)
	}
	return tpl, nil
}

// PageTypes lists every page type the registry covers, sorted.
func PageTypes() []string {
	types := make([]string, 0, len(registry))
	for pt := range registry {
		types = append(types, pt)
	}
	sort.Strings(types)
	return types
}

// DefaultStoryFlow builds the stage plan for a page from its template and
// the entities classified per stage. Required stages are always included;
// optional stages only when entities exist for them, so the result is a
// subsequence of StageOrder that covers RequiredStages.
func DefaultStoryFlow(pageType string, classified map[models.NarrativeRole][]models.KnowledgeEntity) (*models.StoryFlow, error) {
	tpl, err := Get(pageType)
	if err != nil {
		return nil, err
	}

	flow := &models.StoryFlow{PageType: pageType}
	for _, stage := range tpl.StageOrder {
		if !tpl.IsRequired(stage) && len(classified[stage]) == 0 {
			continue
		}
		guidance := tpl.StageGuidance[stage]
		dist := tpl.ContentDistribution[stage]
		flow.Stages = append(flow.Stages, models.StageSection{
			Stage:          stage,
			Purpose:        guidance.Purpose,
			RecommendedMin: dist.Min,
			RecommendedMax: dist.Max,
			EmotionalGoal:  guidance.EmotionalGoal,
		})
		flow.EmotionalJourney = append(flow.EmotionalJourney, models.EmotionPoint{
			Stage:     stage,
			Emotion:   guidance.EmotionalGoal,
			Intensity: 1.0,
		})
	}
	return flow, nil
}
