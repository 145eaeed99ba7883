package journal

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Mood string

const (
	MoodVeryPositive Mood = "veryPositive"
	MoodPositive     Mood = "positive"
	MoodNeutral      Mood = "neutral"
	MoodNegative     Mood = "negative"
	MoodVeryNegative Mood = "veryNegative"
)

// Moods lists every mood in priority order.
var Moods = []Mood{MoodVeryPositive, MoodPositive, MoodNeutral, MoodNegative, MoodVeryNegative}

type Stress string

const (
	StressVeryLow  Stress = "veryLow"
	StressLow      Stress = "low"
	StressModerate Stress = "moderate"
	StressHigh     Stress = "high"
	StressVeryHigh Stress = "veryHigh"
)

var StressLevels = []Stress{StressVeryLow, StressLow, StressModerate, StressHigh, StressVeryHigh}

type Energy string

const (
	EnergyLow    Energy = "low"
	EnergyMedium Energy = "medium"
	EnergyHigh   Energy = "high"
)

var EnergyLevels = []Energy{EnergyLow, EnergyMedium, EnergyHigh}

func ParseMood(raw string) (Mood, bool) {
	for _, m := range Moods {
		if strings.EqualFold(strings.TrimSpace(raw), string(m)) {
			return m, true
		}
	}
	return "", false
}

func ParseStress(raw string) (Stress, bool) {
	for _, s := range StressLevels {
		if strings.EqualFold(strings.TrimSpace(raw), string(s)) {
			return s, true
		}
	}
	return "", false
}

// Entry is a single free-text journal record. Only DeletedAt changes after
// creation.
type Entry struct {
	ID              string     `json:"id"`
	Content         string     `json:"content"`
	CreatedAt       time.Time  `json:"createdAt"`
	Mood            string     `json:"mood,omitempty"`
	SleepHours      *float64   `json:"sleepHours,omitempty"`
	ExerciseMinutes *float64   `json:"exerciseMinutes,omitempty"`
	DeletedAt       *time.Time `json:"deletedAt,omitempty"`
}

func NewEntry(content string, now time.Time) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Content:   strings.TrimSpace(content),
		CreatedAt: now.UTC(),
	}
}

func (e Entry) Deleted() bool {
	return e.DeletedAt != nil
}

// Live drops soft-deleted entries and returns the rest oldest first.
func Live(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Deleted() {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Latest returns the newest n live entries in chronological order.
func Latest(entries []Entry, n int) []Entry {
	live := Live(entries)
	if n <= 0 || n >= len(live) {
		return live
	}
	return live[len(live)-n:]
}

type RawMetrics struct {
	SleepHours      *float64 `json:"sleepHours"`
	ExerciseMinutes *float64 `json:"exerciseMinutes"`
	Mood            Mood     `json:"mood"`
	Stress          Stress   `json:"stress"`
	Energy          Energy   `json:"energy"`
	Symptoms        []string `json:"symptoms"`
}

type ScoredMetrics struct {
	SleepScore        int    `json:"sleepScore"`
	SleepQuality      string `json:"sleepQuality"`
	MentalHealthScore int    `json:"mentalHealthScore"`
	MentalHealthLabel string `json:"mentalHealthLabel"`
	ExerciseScore     int    `json:"exerciseScore"`
	ExerciseLabel     string `json:"exerciseLabel"`
}
