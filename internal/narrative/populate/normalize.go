// internal/narrative/populate/normalize.go
package populate

import (
	"encoding/json"

	"narrative-workers/internal/models"
)

// NormalizeContent turns a raw synthesis payload into typed populated
// content. Permissive on purpose: unknown fields are dropped silently,
// mistyped fields are skipped, arrays are filtered to their well-typed
// items. Round-tripping well-typed content through JSON and back is
// lossless.
func NormalizeContent(raw json.RawMessage) models.PopulatedContent {
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.PopulatedContent{}
	}
	return NormalizeFields(fields)
}

// NormalizeFields is NormalizeContent over an already decoded field map.
func NormalizeFields(fields map[string]interface{}) models.PopulatedContent {
	content := models.PopulatedContent{
		Headline:    str(fields["headline"]),
		Subheadline: str(fields["subheadline"]),
		Description: str(fields["description"]),
	}

	for _, item := range objects(fields["features"]) {
		feature := models.Feature{
			Title:       str(item["title"]),
			Description: str(item["description"]),
			Icon:        str(item["icon"]),
		}
		if feature.Title != "" {
			content.Features = append(content.Features, feature)
		}
	}

	for _, item := range objects(fields["testimonials"]) {
		testimonial := models.Testimonial{
			Quote:   str(item["quote"]),
			Author:  str(item["author"]),
			Role:    str(item["role"]),
			Company: str(item["company"]),
			Rating:  str(item["rating"]),
		}
		if testimonial.Quote != "" {
			content.Testimonials = append(content.Testimonials, testimonial)
		}
	}

	for _, item := range objects(fields["statistics"]) {
		statistic := models.Statistic{
			Value:   str(item["value"]),
			Label:   str(item["label"]),
			Context: str(item["context"]),
		}
		if statistic.Value != "" {
			content.Statistics = append(content.Statistics, statistic)
		}
	}

	for _, item := range objects(fields["faqs"]) {
		faq := models.FAQ{
			Question: str(item["question"]),
			Answer:   str(item["answer"]),
		}
		if faq.Question != "" && faq.Answer != "" {
			content.FAQs = append(content.FAQs, faq)
		}
	}

	for _, item := range objects(fields["pricingTiers"]) {
		tier := models.PricingTier{
			Name:        str(item["name"]),
			Price:       str(item["price"]),
			Period:      str(item["period"]),
			CTA:         str(item["cta"]),
			Highlighted: boolean(item["highlighted"]),
		}
		for _, f := range list(item["features"]) {
			if s := str(f); s != "" {
				tier.Features = append(tier.Features, s)
			}
		}
		if tier.Name != "" {
			content.PricingTiers = append(content.PricingTiers, tier)
		}
	}

	content.PrimaryCTA = ctaButton(fields["primaryCTA"])
	content.SecondaryCTA = ctaButton(fields["secondaryCTA"])

	return content
}

func ctaButton(v interface{}) *models.CTAButton {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	button := models.CTAButton{
		Text:    str(obj["text"]),
		Href:    str(obj["href"]),
		Variant: str(obj["variant"]),
	}
	if button.Text == "" {
		return nil
	}
	return &button
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func boolean(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func list(v interface{}) []interface{} {
	items, _ := v.([]interface{})
	return items
}

func objects(v interface{}) []map[string]interface{} {
	var out []map[string]interface{}
	for _, item := range list(v) {
		if obj, ok := item.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out
}
