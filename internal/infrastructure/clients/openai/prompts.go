package openai

import (
	"fmt"
	"strings"
)

const extractionSystemPrompt = `You are a real estate assistant. Extract structured buyer preferences from the buyer's description. Only output valid JSON, nothing else.`

func buildExtractionUserPrompt(text string) string {
	return fmt.Sprintf(`Buyer's requirements:
%s

Return a JSON object with these fields:
- budget_min (integer, default 0)
- budget_max (integer, default 999999999)
- min_beds (integer, default 0)
- min_baths (float, default 0)
- min_sqft (integer, default 0)
- min_lot_size (float in sqft, default 0)
- must_haves (list of strings, amenities/features that are required)
- nice_to_haves (list of strings, preferred but not required)
- preferred_areas (list of city names or neighborhoods)
- property_types (list of strings like "Single Family", "Condo", "Townhouse")
- school_priority ("low", "medium" or "high", default "medium")`, text)
}

const judgmentSystemPrompt = `You are a real estate expert. Score each property (0-100) based on how well it matches the buyer's preferences. Consider: budget fit, location, size, amenities, schools, and overall value. Return ONLY a JSON object mapping property index to score, e.g. {"0": 85, "1": 72}.`

func buildJudgmentUserPrompt(preferenceSummary string, listingSummaries []string) string {
	var sb strings.Builder
	sb.WriteString("Buyer Preferences:\n")
	sb.WriteString(preferenceSummary)
	sb.WriteString("\n\nProperties:\n")
	for i, summary := range listingSummaries {
		fmt.Fprintf(&sb, "Property %d:\n%s\n", i, summary)
	}
	return sb.String()
}
