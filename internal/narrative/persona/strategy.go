// internal/narrative/persona/strategy.go
package persona

import (
	"narrative-workers/internal/models"
)

// Hook strategies.
const (
	HookSocialProofLead       = "social_proof_lead"
	HookSurprisingStatistic   = "surprising_statistic"
	HookProblemAgitation      = "problem_agitation"
	HookTransformationPreview = "transformation_preview"
	HookBoldStatement         = "bold_statement"
)

// CTA approaches.
const (
	CTADirectOffer    = "direct_offer"
	CTASoftCommitment = "soft_commitment"
	CTAValueRecap     = "value_recap"
)

// Content densities.
const (
	DensityConcise  = "concise"
	DensityBalanced = "balanced"
	DensityDetailed = "detailed"
)

// Emotional-intensity multipliers per journey stage. All values stay within
// [0.5, 1.5]; stages absent from a table multiply by 1.0.
var arcAdjustmentsByJourney = map[string]map[models.NarrativeRole]float64{
	models.JourneyAwareness: {
		models.RoleHook:    1.2,
		models.RoleProblem: 1.3,
		models.RoleProof:   0.9,
		models.RoleAction:  0.8,
	},
	models.JourneyConsideration: {
		models.RoleSolution: 1.2,
		models.RoleProof:    1.2,
	},
	models.JourneyDecision: {
		models.RoleHook:    0.9,
		models.RoleProblem: 0.8,
		models.RoleProof:   1.3,
		models.RoleAction:  1.4,
	},
}

// DeriveAdaptation selects the persona's strategy choices. Pure and
// deterministic: the same persona always yields the same adaptation.
func DeriveAdaptation(p models.Persona) models.PersonaNarrativeAdaptation {
	return models.PersonaNarrativeAdaptation{
		HookStrategy:            hookStrategy(p),
		CTAApproach:             ctaApproach(p),
		ProofPriority:           proofPriority(p),
		ContentDensity:          contentDensity(p),
		EmotionalArcAdjustments: arcAdjustments(p),
	}
}

func hookStrategy(p models.Persona) string {
	switch {
	case p.CommunicationStyle == models.StyleExecutive:
		return HookSocialProofLead
	case p.CommunicationStyle == models.StyleTechnical:
		return HookSurprisingStatistic
	case p.BuyerJourneyStage == models.JourneyAwareness:
		return HookProblemAgitation
	case p.BuyerJourneyStage == models.JourneyDecision:
		return HookTransformationPreview
	default:
		return HookBoldStatement
	}
}

func ctaApproach(p models.Persona) string {
	switch p.BuyerJourneyStage {
	case models.JourneyDecision:
		return CTADirectOffer
	case models.JourneyAwareness:
		return CTASoftCommitment
	default:
		return CTAValueRecap
	}
}

func proofPriority(p models.Persona) []string {
	switch p.CommunicationStyle {
	case models.StyleExecutive:
		return []string{string(models.EntityCaseStudy), string(models.EntityStatistic), string(models.EntityAward)}
	case models.StyleTechnical:
		return []string{string(models.EntityStatistic), string(models.EntityCertification), string(models.EntityCaseStudy)}
	default:
		return []string{string(models.EntityTestimonial), string(models.EntityCaseStudy), string(models.EntityStatistic)}
	}
}

func contentDensity(p models.Persona) string {
	if p.ContentPreference != "" {
		return p.ContentPreference
	}
	switch p.CommunicationStyle {
	case models.StyleTechnical:
		return DensityDetailed
	case models.StyleExecutive:
		return DensityConcise
	default:
		return DensityBalanced
	}
}

func arcAdjustments(p models.Persona) map[models.NarrativeRole]float64 {
	adjustments := make(map[models.NarrativeRole]float64, len(models.AllNarrativeRoles))
	table := arcAdjustmentsByJourney[p.BuyerJourneyStage]
	for _, role := range models.AllNarrativeRoles {
		value, ok := table[role]
		if !ok {
			value = 1.0
		}
		adjustments[role] = clampIntensity(value)
	}
	return adjustments
}

func clampIntensity(v float64) float64 {
	if v < 0.5 {
		return 0.5
	}
	if v > 1.5 {
		return 1.5
	}
	return v
}

// ReweightBlocks promotes proof blocks whose content type ranks early in
// the persona's proof priority: priority drops by (3 - rank) * 10, floored
// at 1. The input slice is not mutated.
func ReweightBlocks(blocks []models.ContentBlock, adaptation models.PersonaNarrativeAdaptation) []models.ContentBlock {
	out := make([]models.ContentBlock, len(blocks))
	copy(out, blocks)

	rank := map[string]int{}
	for i, contentType := range adaptation.ProofPriority {
		if i >= 3 {
			break
		}
		rank[contentType] = i
	}

	for i := range out {
		if out[i].Stage != models.RoleProof {
			continue
		}
		idx, ok := rank[out[i].Content.ContentType]
		if !ok {
			continue
		}
		out[i].Priority -= (3 - idx) * 10
		if out[i].Priority < 1 {
			out[i].Priority = 1
		}
	}
	return out
}
