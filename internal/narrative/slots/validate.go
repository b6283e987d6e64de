// internal/narrative/slots/validate.go
package slots

import (
	"encoding/json"
	"fmt"

	"narrative-workers/internal/models"
)

// ValidateContent checks populated content against a component's slot
// schema and reports violations as data, never as an error: the only error
// return is an unknown component id. Callers decide whether a failed
// validation blocks anything.
//
// Empty values do not satisfy required slots: an empty string, empty array
// or nil object on a required slot reports missing-required.
func ValidateContent(content models.PopulatedContent, componentID string) (models.ValidationResult, error) {
	slots, err := Get(componentID)
	if err != nil {
		return models.ValidationResult{}, err
	}

	fields := contentFields(content)
	errs := validateSlots("", slots, fields)

	return models.ValidationResult{Valid: len(errs) == 0, Errors: errs}, nil
}

// ValidateMap is ValidateContent over an already generic field map, for
// callers holding raw JSON rather than the typed struct.
func ValidateMap(fields map[string]interface{}, componentID string) (models.ValidationResult, error) {
	slots, err := Get(componentID)
	if err != nil {
		return models.ValidationResult{}, err
	}
	errs := validateSlots("", slots, fields)
	return models.ValidationResult{Valid: len(errs) == 0, Errors: errs}, nil
}

// contentFields flattens the typed struct into a generic field map through
// its JSON form, so slot lookups follow the wire field names.
func contentFields(content models.PopulatedContent) map[string]interface{} {
	raw, err := json.Marshal(content)
	if err != nil {
		return nil
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return fields
}

func validateSlots(prefix string, slots []models.ContentSlot, fields map[string]interface{}) []models.ValidationError {
	var errs []models.ValidationError

	for _, slot := range slots {
		path := slot.Name
		if prefix != "" {
			path = prefix + "." + slot.Name
		}

		value, present := fields[slot.Name]
		if !present || isEmpty(value) {
			if slot.Required {
				errs = append(errs, models.ValidationError{
					Slot:    path,
					Code:    "missing_required",
					Message: fmt.Sprintf("required slot %q is missing or empty", path),
				})
			}
			continue
		}

		switch slot.Type {
		case models.SlotArray:
			items, ok := value.([]interface{})
			if !ok {
				errs = append(errs, typeError(path, "array"))
				continue
			}
			if slot.MinItems > 0 && len(items) < slot.MinItems {
				errs = append(errs, models.ValidationError{
					Slot:    path,
					Code:    "too_few_items",
					Message: fmt.Sprintf("slot %q has %d items, minimum is %d", path, len(items), slot.MinItems),
				})
			}
			if slot.MaxItems > 0 && len(items) > slot.MaxItems {
				errs = append(errs, models.ValidationError{
					Slot:    path,
					Code:    "too_many_items",
					Message: fmt.Sprintf("slot %q has %d items, maximum is %d", path, len(items), slot.MaxItems),
				})
			}
			for i, item := range items {
				child, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				errs = append(errs, validateSlots(fmt.Sprintf("%s[%d]", path, i), slot.Children, child)...)
			}

		case models.SlotObject:
			child, ok := value.(map[string]interface{})
			if !ok {
				errs = append(errs, typeError(path, "object"))
				continue
			}
			errs = append(errs, validateSlots(path, slot.Children, child)...)

		default:
			s, ok := value.(string)
			if !ok {
				errs = append(errs, typeError(path, "string"))
				continue
			}
			if slot.MinLength > 0 && len(s) < slot.MinLength {
				errs = append(errs, models.ValidationError{
					Slot:    path,
					Code:    "too_short",
					Message: fmt.Sprintf("slot %q is %d characters, minimum is %d", path, len(s), slot.MinLength),
				})
			}
			if slot.MaxLength > 0 && len(s) > slot.MaxLength {
				errs = append(errs, models.ValidationError{
					Slot:    path,
					Code:    "too_long",
					Message: fmt.Sprintf("slot %q is %d characters, maximum is %d", path, len(s), slot.MaxLength),
				})
			}
		}
	}

	return errs
}

func typeError(path, expected string) models.ValidationError {
	return models.ValidationError{
		Slot:    path,
		Code:    "wrong_type",
		Message: fmt.Sprintf("slot %q is not a %s", path, expected),
	}
}

func isEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []interface{}:
		return len(v) == 0
	case map[string]interface{}:
		return len(v) == 0
	}
	return false
}
