package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

const SystemPrompt = "You are a health analytics expert. You MUST respond with ONLY a valid JSON object. " +
	"Do not include markdown, code fences, or any explanatory text."

const responseShape = `{
  "metrics": {
    "sleep": {"average": number, "quality": number, "trend": "improving" | "stable" | "declining"},
    "mentalHealth": {"averageScore": number, "predominantMood": string, "stressLevel": string, "trend": "improving" | "stable" | "declining"},
    "exercise": {"average": number, "trend": "improving" | "stable" | "declining"}
  },
  "insights": [string, string, string],
  "recommendations": [string, string, string]
}`

var promptRules = []string{
	"Sleep quality is 100 minus 12.5 points for every hour of deviation from 8 hours, never below 0.",
	"Return exactly 3 insights.",
	"Return exactly 3 recommendations.",
	`Each trend must be one of "improving", "stable" or "declining", judged from the last 3 entries.`,
	"predominantMood must be one of veryPositive, positive, neutral, negative, veryNegative.",
	"stressLevel must be one of veryLow, low, moderate, high, veryHigh.",
	"Round every number to 1 decimal place.",
	"Do not add fields that are not in the structure above.",
	"Respond with the JSON object only.",
}

// BuildPrompt embeds the normalized entries and the required reply contract.
func BuildPrompt(entries []NormalizedEntry) string {
	encoded, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		encoded = []byte("[]")
	}

	var sb strings.Builder
	sb.WriteString("Analyze these journal entries and return health metrics, insights and recommendations.\n\n")
	sb.WriteString("Entries:\n")
	sb.Write(encoded)
	sb.WriteString("\n\nReturn a JSON object with exactly this structure:\n")
	sb.WriteString(responseShape)
	sb.WriteString("\n\nRules:\n")
	for i, rule := range promptRules {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, rule)
	}
	return sb.String()
}
