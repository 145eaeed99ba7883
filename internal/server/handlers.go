package server

import (
	"strconv"
	"strings"

	"healthjournal/internal/journal"
)

const (
	maxEntryLength  = 10000
	maxAnalyzeLimit = 100
	maxTrendWindow  = 365
)

type createEntryRequest struct {
	Content         string   `json:"content"`
	Mood            string   `json:"mood"`
	SleepHours      *float64 `json:"sleepHours"`
	ExerciseMinutes *float64 `json:"exerciseMinutes"`
}

type extractRequest struct {
	Content string `json:"content"`
}

type extractResponse struct {
	Metrics journal.RawMetrics    `json:"metrics"`
	Scores  journal.ScoredMetrics `json:"scores"`
}

type analyzeRequest struct {
	// EntryIDs restricts the batch; empty means the newest Limit entries.
	EntryIDs []string `json:"entryIds"`
	Limit    int      `json:"limit"`
}

type addMealRequest struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Date     string  `json:"date"`
}

// queryInt parses a positive integer query value, falling back when the
// value is absent. ok is false for malformed or out-of-range values.
func queryInt(raw string, fallback, max int) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 || v > max {
		return 0, false
	}
	return v, true
}

func matchesQuery(e journal.Entry, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Content), strings.ToLower(q))
}

func validNumber(v *float64, max float64) bool {
	return v == nil || (*v >= 0 && *v <= max)
}
