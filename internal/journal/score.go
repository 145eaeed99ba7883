package journal

import "math"

const (
	SleepTargetHours      = 8.0
	ExerciseTargetMinutes = 30.0
	sleepPenaltyPerHour   = 12.5
	mentalHealthBaseline  = 75
	symptomPenalty        = 5
	maxSymptomPenalty     = 25
)

var moodDelta = map[Mood]int{
	MoodVeryPositive: 25,
	MoodPositive:     15,
	MoodNeutral:      0,
	MoodNegative:     -15,
	MoodVeryNegative: -25,
}

var stressDelta = map[Stress]int{
	StressVeryLow:  25,
	StressLow:      15,
	StressModerate: 0,
	StressHigh:     -15,
	StressVeryHigh: -25,
}

// MoodValue places a mood on a 1..5 scale, 5 being the most positive.
func MoodValue(m Mood) float64 {
	switch m {
	case MoodVeryPositive:
		return 5
	case MoodPositive:
		return 4
	case MoodNegative:
		return 2
	case MoodVeryNegative:
		return 1
	default:
		return 3
	}
}

func SleepScore(hours float64) int {
	if hours <= 0 || math.IsNaN(hours) {
		return 0
	}
	return clampScore(math.Round(100 - math.Abs(hours-SleepTargetHours)*sleepPenaltyPerHour))
}

func SleepScoreOf(hours *float64) int {
	if hours == nil {
		return 0
	}
	return SleepScore(*hours)
}

func MentalHealthScore(mood Mood, stress Stress, symptoms int) int {
	penalty := symptoms * symptomPenalty
	if penalty > maxSymptomPenalty {
		penalty = maxSymptomPenalty
	}
	if penalty < 0 {
		penalty = 0
	}
	return clampScore(float64(mentalHealthBaseline + moodDelta[mood] + stressDelta[stress] - penalty))
}

func ExerciseScore(minutes float64) float64 {
	if minutes <= 0 || math.IsNaN(minutes) {
		return 0
	}
	return math.Min(100, minutes/ExerciseTargetMinutes*100)
}

func SleepQualityLabel(score int) string {
	return bucketLabel(score, "Very Poor")
}

func MentalHealthLabel(score int) string {
	return bucketLabel(score, "Needs Attention")
}

func ExerciseLabel(score int) string {
	return bucketLabel(score, "Very Poor")
}

func bucketLabel(score int, floor string) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 80:
		return "Very Good"
	case score >= 70:
		return "Good"
	case score >= 60:
		return "Fair"
	case score >= 50:
		return "Poor"
	default:
		return floor
	}
}

func Score(raw RawMetrics) ScoredMetrics {
	sleep := SleepScoreOf(raw.SleepHours)
	mood := raw.Mood
	if mood == "" {
		mood = MoodNeutral
	}
	stress := raw.Stress
	if stress == "" {
		stress = StressModerate
	}
	mental := MentalHealthScore(mood, stress, len(raw.Symptoms))
	exercise := 0
	if raw.ExerciseMinutes != nil {
		exercise = int(math.Round(ExerciseScore(*raw.ExerciseMinutes)))
	}
	return ScoredMetrics{
		SleepScore:        sleep,
		SleepQuality:      SleepQualityLabel(sleep),
		MentalHealthScore: mental,
		MentalHealthLabel: MentalHealthLabel(mental),
		ExerciseScore:     exercise,
		ExerciseLabel:     ExerciseLabel(exercise),
	}
}

func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
