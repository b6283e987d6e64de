// internal/narrative/optimizer/rules.go
package optimizer

import (
	"fmt"
	"sort"

	"narrative-workers/internal/models"
	"narrative-workers/internal/narrative/templates"
)

// rule checks one narrative-coherence property of a block sequence.
type rule struct {
	id    string
	check func(blocks []models.ContentBlock, tpl *templates.Template) []models.OptimizationViolation
}

// Content types that read as heavy; two in a row flags a density issue.
var heavyContentTypes = map[string]bool{
	string(models.EntityCaseStudy):  true,
	string(models.EntityComparison): true,
	string(models.EntityFAQ):        true,
	string(models.EntityProcess):    true,
}

var rules = []rule{
	{id: "cta-after-value", check: checkCTAAfterValue},
	{id: "proof-after-problem", check: checkProofAfterProblem},
	{id: "content-density-balance", check: checkContentDensity},
	{id: "required-stages-present", check: checkRequiredStages},
	{id: "stage-order", check: checkStageOrder},
	{id: "hook-engagement", check: checkHookEngagement},
	{id: "clear-cta-present", check: checkClearCTA},
	{id: "proof-variety", check: checkProofVariety},
}

func firstIndex(blocks []models.ContentBlock, match func(models.ContentBlock) bool) int {
	for i, b := range blocks {
		if match(b) {
			return i
		}
	}
	return -1
}

func isCTABlock(b models.ContentBlock) bool {
	return b.Stage == models.RoleAction || b.Content.ContentType == string(models.EntityCTA)
}

func checkCTAAfterValue(blocks []models.ContentBlock, _ *templates.Template) []models.OptimizationViolation {
	ctaIdx := firstIndex(blocks, isCTABlock)
	hookIdx := firstIndex(blocks, func(b models.ContentBlock) bool { return b.Stage == models.RoleHook })
	if ctaIdx < 0 || hookIdx < 0 || ctaIdx > hookIdx {
		return nil
	}
	return []models.OptimizationViolation{{
		RuleID:           "cta-after-value",
		Severity:         models.SeverityError,
		Message:          "a call to action appears before any value is established",
		AffectedBlockIDs: []string{blocks[ctaIdx].ID},
		SuggestedFix:     "Move the call to action after the opening hook",
	}}
}

func checkProofAfterProblem(blocks []models.ContentBlock, _ *templates.Template) []models.OptimizationViolation {
	proofIdx := firstIndex(blocks, func(b models.ContentBlock) bool {
		return b.Stage == models.RoleProof || b.Content.ContentType == string(models.EntityTestimonial)
	})
	problemIdx := firstIndex(blocks, func(b models.ContentBlock) bool { return b.Stage == models.RoleProblem })
	if proofIdx < 0 || problemIdx < 0 || proofIdx > problemIdx {
		return nil
	}
	return []models.OptimizationViolation{{
		RuleID:           "proof-after-problem",
		Severity:         models.SeverityWarning,
		Message:          "proof appears before the problem it answers",
		AffectedBlockIDs: []string{blocks[proofIdx].ID},
		SuggestedFix:     "Introduce the problem before presenting proof",
	}}
}

func checkContentDensity(blocks []models.ContentBlock, _ *templates.Template) []models.OptimizationViolation {
	var out []models.OptimizationViolation
	for i := 1; i < len(blocks); i++ {
		if heavyContentTypes[blocks[i-1].Content.ContentType] && heavyContentTypes[blocks[i].Content.ContentType] {
			out = append(out, models.OptimizationViolation{
				RuleID:           "content-density-balance",
				Severity:         models.SeverityInfo,
				Message:          "two consecutive content-heavy blocks may fatigue readers",
				AffectedBlockIDs: []string{blocks[i-1].ID, blocks[i].ID},
				SuggestedFix:     "Interleave lighter content between dense sections",
			})
		}
	}
	return out
}

func checkRequiredStages(blocks []models.ContentBlock, tpl *templates.Template) []models.OptimizationViolation {
	present := map[models.NarrativeRole]bool{}
	for _, b := range blocks {
		present[b.Stage] = true
	}
	var out []models.OptimizationViolation
	for _, required := range tpl.RequiredStages {
		if !present[required] {
			out = append(out, models.OptimizationViolation{
				RuleID:       "required-stages-present",
				Severity:     models.SeverityError,
				Message:      fmt.Sprintf("required stage %q has no content blocks", required),
				SuggestedFix: fmt.Sprintf("Add at least one %s block", required),
			})
		}
	}
	return out
}

func checkStageOrder(blocks []models.ContentBlock, tpl *templates.Template) []models.OptimizationViolation {
	var out []models.OptimizationViolation
	maxSeen := -1
	for _, b := range blocks {
		idx := tpl.StageIndex(b.Stage)
		if idx < 0 {
			continue
		}
		if idx < maxSeen {
			out = append(out, models.OptimizationViolation{
				RuleID:           "stage-order",
				Severity:         models.SeverityWarning,
				Message:          fmt.Sprintf("%s block appears after a later narrative stage", b.Stage),
				AffectedBlockIDs: []string{b.ID},
				SuggestedFix:     "Reorder blocks to follow the narrative stage order",
			})
		}
		if idx > maxSeen {
			maxSeen = idx
		}
	}
	return out
}

func checkHookEngagement(blocks []models.ContentBlock, _ *templates.Template) []models.OptimizationViolation {
	hookIdx := firstIndex(blocks, func(b models.ContentBlock) bool { return b.Stage == models.RoleHook })
	if hookIdx < 0 {
		return []models.OptimizationViolation{{
			RuleID:       "hook-engagement",
			Severity:     models.SeverityError,
			Message:      "the page has no hook block to capture attention",
			SuggestedFix: "Open the page with a hook block",
		}}
	}
	if len(blocks[hookIdx].Content.Description) < 50 {
		return []models.OptimizationViolation{{
			RuleID:           "hook-engagement",
			Severity:         models.SeverityInfo,
			Message:          "the hook description is short and may not engage",
			AffectedBlockIDs: []string{blocks[hookIdx].ID},
			SuggestedFix:     "Expand the hook description to reinforce the value proposition",
		}}
	}
	return nil
}

func checkClearCTA(blocks []models.ContentBlock, _ *templates.Template) []models.OptimizationViolation {
	if firstIndex(blocks, isCTABlock) >= 0 {
		return nil
	}
	return []models.OptimizationViolation{{
		RuleID:       "clear-cta-present",
		Severity:     models.SeverityWarning,
		Message:      "no call to action anywhere on the page",
		SuggestedFix: "Add a clear call to action",
	}}
}

func checkProofVariety(blocks []models.ContentBlock, _ *templates.Template) []models.OptimizationViolation {
	countByType := map[string]int{}
	idsByType := map[string][]string{}
	for _, b := range blocks {
		if b.Stage != models.RoleProof {
			continue
		}
		countByType[b.Content.ContentType]++
		idsByType[b.Content.ContentType] = append(idsByType[b.Content.ContentType], b.ID)
	}
	types := make([]string, 0, len(countByType))
	for contentType := range countByType {
		types = append(types, contentType)
	}
	sort.Strings(types)

	var out []models.OptimizationViolation
	for _, contentType := range types {
		if count := countByType[contentType]; count >= 3 {
			out = append(out, models.OptimizationViolation{
				RuleID:           "proof-variety",
				Severity:         models.SeverityInfo,
				Message:          fmt.Sprintf("%d proof blocks all use %s; mixed proof types persuade better", count, contentType),
				AffectedBlockIDs: idsByType[contentType],
				SuggestedFix:     "Mix proof types such as statistics, case studies, and testimonials",
			})
		}
	}
	return out
}
