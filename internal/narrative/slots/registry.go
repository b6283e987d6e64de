// internal/narrative/slots/registry.go
package slots

import (
	"errors"
	"fmt"
	"sort"

	"narrative-workers/internal/models"
)

// ErrSlotSchemaNotFound indicates a component id no slot schema covers.
// Like a missing page template, this is a configuration defect and fatal
// to callers.
var ErrSlotSchemaNotFound = errors.New("SLOT_SCHEMA_NOT_FOUND")

var ctaChildren = []models.ContentSlot{
	{Name: "text", Type: models.SlotText, Required: true, MinLength: 2, MaxLength: 40},
	{Name: "href", Type: models.SlotLink},
	{Name: "variant", Type: models.SlotText},
}

var registry = map[string][]models.ContentSlot{
	"hero-split": {
		{Name: "headline", Type: models.SlotText, Required: true, MinLength: 3, MaxLength: 100},
		{Name: "description", Type: models.SlotRichText, Required: true, MinLength: 10, MaxLength: 300},
		{Name: "primaryCTA", Type: models.SlotObject, Required: true, Children: ctaChildren},
		{Name: "secondaryCTA", Type: models.SlotObject, Children: ctaChildren},
		{Name: "image", Type: models.SlotImage, Required: true},
	},
	"hero-centered": {
		{Name: "headline", Type: models.SlotText, Required: true, MinLength: 3, MaxLength: 80},
		{Name: "subheadline", Type: models.SlotText, MaxLength: 120},
		{Name: "description", Type: models.SlotRichText, MaxLength: 300},
		{Name: "primaryCTA", Type: models.SlotObject, Required: true, Children: ctaChildren},
	},
	"features-grid": {
		{Name: "headline", Type: models.SlotText, MaxLength: 80},
		{Name: "description", Type: models.SlotRichText, MaxLength: 200},
		{Name: "features", Type: models.SlotArray, Required: true, MinItems: 2, MaxItems: 8, Children: []models.ContentSlot{
			{Name: "title", Type: models.SlotText, Required: true, MaxLength: 60},
			{Name: "description", Type: models.SlotText, MaxLength: 200},
			{Name: "icon", Type: models.SlotText},
		}},
	},
	"testimonials-carousel": {
		{Name: "headline", Type: models.SlotText, MaxLength: 80},
		{Name: "testimonials", Type: models.SlotArray, Required: true, MinItems: 1, MaxItems: 6, Children: []models.ContentSlot{
			{Name: "quote", Type: models.SlotText, Required: true, MinLength: 10, MaxLength: 400},
			{Name: "author", Type: models.SlotText, MaxLength: 60},
			{Name: "role", Type: models.SlotText, MaxLength: 80},
			{Name: "company", Type: models.SlotText, MaxLength: 80},
		}},
	},
	"statistics-band": {
		{Name: "headline", Type: models.SlotText, MaxLength: 80},
		{Name: "statistics", Type: models.SlotArray, Required: true, MinItems: 2, MaxItems: 5, Children: []models.ContentSlot{
			{Name: "value", Type: models.SlotText, Required: true, MaxLength: 20},
			{Name: "label", Type: models.SlotText, MaxLength: 60},
		}},
	},
	"pricing-table": {
		{Name: "headline", Type: models.SlotText, MaxLength: 80},
		{Name: "description", Type: models.SlotRichText, MaxLength: 200},
		{Name: "pricingTiers", Type: models.SlotArray, Required: true, MinItems: 1, MaxItems: 4, Children: []models.ContentSlot{
			{Name: "name", Type: models.SlotText, Required: true, MaxLength: 40},
			{Name: "price", Type: models.SlotText, Required: true, MaxLength: 20},
			{Name: "period", Type: models.SlotText, MaxLength: 20},
		}},
	},
	"faq-accordion": {
		{Name: "headline", Type: models.SlotText, MaxLength: 80},
		{Name: "faqs", Type: models.SlotArray, Required: true, MinItems: 2, MaxItems: 10, Children: []models.ContentSlot{
			{Name: "question", Type: models.SlotText, Required: true, MaxLength: 160},
			{Name: "answer", Type: models.SlotRichText, Required: true, MaxLength: 600},
		}},
	},
	"cta-banner": {
		{Name: "headline", Type: models.SlotText, Required: true, MinLength: 3, MaxLength: 100},
		{Name: "description", Type: models.SlotRichText, MaxLength: 200},
		{Name: "primaryCTA", Type: models.SlotObject, Required: true, Children: ctaChildren},
	},
	"content-split": {
		{Name: "headline", Type: models.SlotText, Required: true, MinLength: 3, MaxLength: 100},
		{Name: "description", Type: models.SlotRichText, Required: true, MinLength: 10, MaxLength: 500},
		{Name: "image", Type: models.SlotImage},
		{Name: "primaryCTA", Type: models.SlotObject, Children: ctaChildren},
	},
}

// Get returns the slot definitions for a component variant.
func Get(componentID string) ([]models.ContentSlot, error) {
	slots, ok := registry[componentID]
	if !ok {
		return nil, fmt.Errorf("%w: no slot schema for component %q", ErrSlotSchemaNotFound, componentID)
	}
	return slots, nil
}

// ComponentIDs lists every component variant the registry covers, sorted.
func ComponentIDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RequiredSlots returns the names of a component's required slots.
func RequiredSlots(componentID string) ([]string, error) {
	slots, err := Get(componentID)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, slot := range slots {
		if slot.Required {
			names = append(names, slot.Name)
		}
	}
	return names, nil
}

// OptionalSlots returns the names of a component's optional slots.
func OptionalSlots(componentID string) ([]string, error) {
	slots, err := Get(componentID)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, slot := range slots {
		if !slot.Required {
			names = append(names, slot.Name)
		}
	}
	return names, nil
}

// Constraint is the flattened length/count bound of one slot.
type Constraint struct {
	MinLength int
	MaxLength int
	MinItems  int
	MaxItems  int
}

// LengthConstraints flattens a component's length and item-count bounds by
// slot name. Nested children are keyed as "parent.child".
func LengthConstraints(componentID string) (map[string]Constraint, error) {
	slots, err := Get(componentID)
	if err != nil {
		return nil, err
	}
	constraints := map[string]Constraint{}
	var walk func(prefix string, slots []models.ContentSlot)
	walk = func(prefix string, slots []models.ContentSlot) {
		for _, slot := range slots {
			name := slot.Name
			if prefix != "" {
				name = prefix + "." + slot.Name
			}
			if slot.MinLength != 0 || slot.MaxLength != 0 || slot.MinItems != 0 || slot.MaxItems != 0 {
				constraints[name] = Constraint{
					MinLength: slot.MinLength,
					MaxLength: slot.MaxLength,
					MinItems:  slot.MinItems,
					MaxItems:  slot.MaxItems,
				}
			}
			walk(name, slot.Children)
		}
	}
	walk("", slots)
	return constraints, nil
}

// SuggestedContentStructure seeds a skeleton for a component: text-like
// slots as empty strings, arrays as empty lists, objects recursively.
// The skeleton shows a caller which fields to fill; running it through
// ValidateContent still reports the required slots as missing, since empty
// values never satisfy a required slot.
func SuggestedContentStructure(componentID string) (map[string]interface{}, error) {
	slots, err := Get(componentID)
	if err != nil {
		return nil, err
	}
	return seedStructure(slots), nil
}

func seedStructure(slots []models.ContentSlot) map[string]interface{} {
	out := make(map[string]interface{}, len(slots))
	for _, slot := range slots {
		switch slot.Type {
		case models.SlotArray:
			out[slot.Name] = []interface{}{}
		case models.SlotObject:
			out[slot.Name] = seedStructure(slot.Children)
		default:
			out[slot.Name] = ""
		}
	}
	return out
}
