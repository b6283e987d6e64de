// internal/models/narrative.go
package models

// NarrativeRole is one stage of the five-part persuasion arc page content is
// organized around.
type NarrativeRole string

const (
	RoleHook     NarrativeRole = "hook"
	RoleProblem  NarrativeRole = "problem"
	RoleSolution NarrativeRole = "solution"
	RoleProof    NarrativeRole = "proof"
	RoleAction   NarrativeRole = "action"
)

// AllNarrativeRoles lists every recognized stage.
var AllNarrativeRoles = []NarrativeRole{RoleHook, RoleProblem, RoleSolution, RoleProof, RoleAction}

// IsValidNarrativeRole reports whether s names a recognized stage.
func IsValidNarrativeRole(s string) bool {
	switch NarrativeRole(s) {
	case RoleHook, RoleProblem, RoleSolution, RoleProof, RoleAction:
		return true
	}
	return false
}

// ProofElement summarizes one category of available proof.
type ProofElement struct {
	Type     string `json:"type"`
	Count    int    `json:"count"`
	Strength string `json:"strength"` // "high" or "medium"
}

// Transformation captures the before/after promise of the offering.
type Transformation struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// CoreNarrative is the compact narrative summary produced once per
// generation run and immutable thereafter.
type CoreNarrative struct {
	CentralTheme     string         `json:"centralTheme"`
	ValueProposition string         `json:"valueProposition"`
	Differentiators  []string       `json:"differentiators"`
	TargetAudience   string         `json:"targetAudience"`
	Transformation   Transformation `json:"transformation"`
	PainPoints       []string       `json:"painPoints"`
	Benefits         []string       `json:"benefits"`
	ProofElements    []ProofElement `json:"proofElements"`
}

// BlockContent is the copy payload of a content block. Entity-sourced
// blocks carry non-empty EntityIDs; placeholder blocks carry an empty list,
// which is the sole signal distinguishing fact-grounded from synthetic
// content.
type BlockContent struct {
	Headline    string   `json:"headline"`
	Description string   `json:"description"`
	Bullets     []string `json:"bullets,omitempty"`
	EntityIDs   []string `json:"entityIds"`
	ContentType string   `json:"contentType"`
}

// ContentBlock is one unit of stage-tagged marketing content.
type ContentBlock struct {
	ID                  string        `json:"id"`
	Stage               NarrativeRole `json:"stage"`
	Priority            int           `json:"priority"` // lower = earlier
	Content             BlockContent  `json:"content"`
	TargetPersonas      []string      `json:"targetPersonas,omitempty"`
	EmotionalTone       string        `json:"emotionalTone"`
	SuggestedComponents []string      `json:"suggestedComponents,omitempty"`
}

// IsPlaceholder reports whether the block was synthesized from the narrative
// summary rather than sourced from knowledge entities.
func (b ContentBlock) IsPlaceholder() bool {
	return len(b.Content.EntityIDs) == 0
}

// StageSection is one stage's slot in a story flow.
type StageSection struct {
	Stage          NarrativeRole `json:"stage"`
	Purpose        string        `json:"purpose"`
	RecommendedMin int           `json:"recommendedMin"`
	RecommendedMax int           `json:"recommendedMax"`
	EmotionalGoal  string        `json:"emotionalGoal"`
}

// EmotionPoint is one sample of the intended emotional journey across a page.
type EmotionPoint struct {
	Stage     NarrativeRole `json:"stage"`
	Emotion   string        `json:"emotion"`
	Intensity float64       `json:"intensity"` // within [0.5, 1.5]
}

// StoryFlow is an ordered stage plan for one page.
type StoryFlow struct {
	PageType         string         `json:"pageType"`
	Stages           []StageSection `json:"stages"`
	EmotionalJourney []EmotionPoint `json:"emotionalJourney,omitempty"`
}

// ViolationSeverity grades optimizer rule findings.
type ViolationSeverity string

const (
	SeverityError   ViolationSeverity = "error"
	SeverityWarning ViolationSeverity = "warning"
	SeverityInfo    ViolationSeverity = "info"
)

// OptimizationViolation is one rule finding against a block sequence.
type OptimizationViolation struct {
	RuleID           string            `json:"ruleId"`
	Severity         ViolationSeverity `json:"severity"`
	Message          string            `json:"message"`
	AffectedBlockIDs []string          `json:"affectedBlockIds,omitempty"`
	SuggestedFix     string            `json:"suggestedFix,omitempty"`
}
