// internal/narrative/optimizer/optimizer.go
package optimizer

import (
	"sort"
	"strings"

	"narrative-workers/internal/models"
	"narrative-workers/internal/narrative/templates"
)

// Report is the outcome of validating one block sequence.
type Report struct {
	Score       int                            `json:"score"` // 0..100
	IsOptimal   bool                           `json:"isOptimal"`
	Violations  []models.OptimizationViolation `json:"violations,omitempty"`
	Suggestions []string                       `json:"suggestions,omitempty"`
}

// Validate runs the full rule battery against the block sequence and scores
// the result. Score starts at 100 and loses 20 per error, 10 per warning
// and 5 per info, floored at 0; the sequence is optimal exactly when no
// rule reports an error.
func Validate(blocks []models.ContentBlock, pageType string) (*Report, error) {
	tpl, err := templates.Get(pageType)
	if err != nil {
		return nil, err
	}

	var violations []models.OptimizationViolation
	for _, r := range rules {
		violations = append(violations, r.check(blocks, tpl)...)
	}

	score := 100
	errorCount := 0
	for _, v := range violations {
		switch v.Severity {
		case models.SeverityError:
			score -= 20
			errorCount++
		case models.SeverityWarning:
			score -= 10
		case models.SeverityInfo:
			score -= 5
		}
	}
	if score < 0 {
		score = 0
	}

	return &Report{
		Score:       score,
		IsOptimal:   errorCount == 0,
		Violations:  violations,
		Suggestions: buildSuggestions(violations, tpl),
	}, nil
}

// AutoFix stably re-sorts the blocks by (template stage index, priority).
// Reordering is the single repair strategy: content is never edited, and
// running the fix twice yields the same order. Blocks whose stage the
// template does not recognize sort after all recognized stages.
func AutoFix(blocks []models.ContentBlock, pageType string) ([]models.ContentBlock, error) {
	tpl, err := templates.Get(pageType)
	if err != nil {
		return nil, err
	}

	fixed := make([]models.ContentBlock, len(blocks))
	copy(fixed, blocks)

	sort.SliceStable(fixed, func(a, b int) bool {
		ia, ib := tpl.StageIndex(fixed[a].Stage), tpl.StageIndex(fixed[b].Stage)
		if ia < 0 {
			ia = len(tpl.StageOrder)
		}
		if ib < 0 {
			ib = len(tpl.StageOrder)
		}
		if ia != ib {
			return ia < ib
		}
		return fixed[a].Priority < fixed[b].Priority
	})
	return fixed, nil
}

// buildSuggestions deduplicates the violations' fixes, preserving first
// occurrence order, and appends arc-specific generic advice.
func buildSuggestions(violations []models.OptimizationViolation, tpl *templates.Template) []string {
	var out []string
	seen := map[string]bool{}
	for _, v := range violations {
		if v.SuggestedFix == "" || seen[v.SuggestedFix] {
			continue
		}
		seen[v.SuggestedFix] = true
		out = append(out, v.SuggestedFix)
	}

	if strings.Contains(tpl.RecommendedArc, "urgency") {
		advice := "Consider urgency elements such as limited-time offers near the call to action"
		if !seen[advice] {
			out = append(out, advice)
		}
	}
	return out
}
