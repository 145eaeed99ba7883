package analysis

import (
	"time"

	"healthjournal/internal/journal"
	"healthjournal/internal/trend"
)

type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)

type SleepMetrics struct {
	Average float64 `json:"average"`
	Quality float64 `json:"quality"`
	Trend   string  `json:"trend"`
}

type MentalHealthMetrics struct {
	AverageScore    float64 `json:"averageScore"`
	PredominantMood string  `json:"predominantMood"`
	StressLevel     string  `json:"stressLevel"`
	Trend           string  `json:"trend"`
}

type ExerciseMetrics struct {
	Average float64 `json:"average"`
	Trend   string  `json:"trend"`
}

type Metrics struct {
	Sleep        SleepMetrics        `json:"sleep"`
	MentalHealth MentalHealthMetrics `json:"mentalHealth"`
	Exercise     ExerciseMetrics     `json:"exercise"`
}

// Record is one stored analysis run. It is never modified after creation.
type Record struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	EntryCount      int       `json:"entryCount"`
	Metrics         Metrics   `json:"metrics"`
	Insights        []string  `json:"insights"`
	Recommendations []string  `json:"recommendations"`
	Source          Source    `json:"source"`
}

// DefaultRecord is returned when there is nothing to analyze.
func DefaultRecord(now time.Time) Record {
	stable := string(trend.Stable)
	return Record{
		Timestamp: now.UTC(),
		Metrics: Metrics{
			Sleep: SleepMetrics{Average: 7.5, Quality: 75, Trend: stable},
			MentalHealth: MentalHealthMetrics{
				AverageScore:    80,
				PredominantMood: string(journal.MoodNeutral),
				StressLevel:     string(journal.StressModerate),
				Trend:           stable,
			},
			Exercise: ExerciseMetrics{Average: 30, Trend: stable},
		},
		Insights: []string{
			"Start journaling regularly to unlock personalized health insights.",
			"Mention how many hours you slept and how long you exercised in your entries.",
			"Describing how you feel each day helps track your mood over time.",
		},
		Recommendations: []string{
			"Aim for 7-9 hours of sleep each night",
			"Try to get at least 30 minutes of physical activity daily",
			"Take a few minutes each day to reflect on your wellbeing",
		},
		Source: SourceFallback,
	}
}
