// internal/models/content.go
package models

// SlotType enumerates the content slot kinds a component variant declares.
type SlotType string

const (
	SlotText     SlotType = "text"
	SlotRichText SlotType = "richtext"
	SlotImage    SlotType = "image"
	SlotVideo    SlotType = "video"
	SlotLink     SlotType = "link"
	SlotArray    SlotType = "array"
	SlotObject   SlotType = "object"
)

// ContentSlot is a named, typed content field a visual component variant
// expects to be filled. Defined statically per variant; never mutated at
// runtime.
type ContentSlot struct {
	Name      string        `json:"name"`
	Type      SlotType      `json:"type"`
	Required  bool          `json:"required"`
	MinLength int           `json:"minLength,omitempty"`
	MaxLength int           `json:"maxLength,omitempty"`
	MinItems  int           `json:"minItems,omitempty"`
	MaxItems  int           `json:"maxItems,omitempty"`
	Children  []ContentSlot `json:"children,omitempty"`
}

// Feature is one populated feature item.
type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// Testimonial is one populated testimonial item.
type Testimonial struct {
	Quote   string `json:"quote"`
	Author  string `json:"author,omitempty"`
	Role    string `json:"role,omitempty"`
	Company string `json:"company,omitempty"`
	Rating  string `json:"rating,omitempty"`
}

// Statistic is one populated statistic item.
type Statistic struct {
	Value   string `json:"value"`
	Label   string `json:"label,omitempty"`
	Context string `json:"context,omitempty"`
}

// FAQ is one populated question/answer pair.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// PricingTier is one populated pricing plan.
type PricingTier struct {
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Period      string   `json:"period,omitempty"`
	Features    []string `json:"features,omitempty"`
	CTA         string   `json:"cta,omitempty"`
	Highlighted bool     `json:"highlighted,omitempty"`
}

// CTAButton is a populated call-to-action.
type CTAButton struct {
	Text    string `json:"text"`
	Href    string `json:"href,omitempty"`
	Variant string `json:"variant,omitempty"`
}

// PopulatedContent is the sparse record of well-known fields a section's
// component slots are filled from. Produced fresh per generation call.
type PopulatedContent struct {
	Headline     string        `json:"headline,omitempty"`
	Subheadline  string        `json:"subheadline,omitempty"`
	Description  string        `json:"description,omitempty"`
	Features     []Feature     `json:"features,omitempty"`
	Testimonials []Testimonial `json:"testimonials,omitempty"`
	Statistics   []Statistic   `json:"statistics,omitempty"`
	FAQs         []FAQ         `json:"faqs,omitempty"`
	PricingTiers []PricingTier `json:"pricingTiers,omitempty"`
	PrimaryCTA   *CTAButton    `json:"primaryCTA,omitempty"`
	SecondaryCTA *CTAButton    `json:"secondaryCTA,omitempty"`
}

// KBTraceability records which source facts contributed to a generated
// section. IsGenericFallback holds exactly when SourceEntityIDs is empty,
// and Confidence is zero whenever the fallback was used.
type KBTraceability struct {
	SourceEntityIDs   []string `json:"sourceEntityIds"`
	Confidence        float64  `json:"confidence"`
	IsGenericFallback bool     `json:"isGenericFallback"`
	EntityTypesUsed   []string `json:"entityTypesUsed"`
}

// ValidationError is one slot-constraint violation.
type ValidationError struct {
	Slot    string `json:"slot"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidationResult is the outcome of checking populated content against a
// component's slot schema. Never delivered as an exception; callers decide
// how to react.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}
