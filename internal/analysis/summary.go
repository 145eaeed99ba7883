package analysis

import (
	"fmt"
	"strings"

	"healthjournal/internal/journal"
	"healthjournal/internal/trend"
)

const (
	minHealthySleep = 7.0
	maxHealthySleep = 9.0
)

// Summary aggregates a batch of normalized entries without any network
// access. It backs the fallback record and fills gaps in model replies.
type Summary struct {
	EntryCount        int
	SleepAverage      float64
	HasSleep          bool
	SleepQuality      int
	MentalHealthScore float64
	PredominantMood   journal.Mood
	StressLevel       journal.Stress
	ExerciseAverage   float64
	HasExercise       bool
	Symptoms          []string
	SleepTrend        trend.Direction
	MentalTrend       trend.Direction
	ExerciseTrend     trend.Direction
}

func Summarize(entries []NormalizedEntry) Summary {
	s := Summary{
		EntryCount:      len(entries),
		PredominantMood: journal.MoodNeutral,
		StressLevel:     journal.StressModerate,
		Symptoms:        []string{},
	}
	if len(entries) == 0 {
		return s
	}

	var sleepPoints, mentalPoints, exercisePoints []trend.Point
	moodCounts := make(map[journal.Mood]int)
	stressCounts := make(map[journal.Stress]int)
	seenSymptom := make(map[string]struct{})
	mentalTotal := 0.0

	for _, e := range entries {
		raw := e.Raw
		if raw.SleepHours != nil {
			sleepPoints = append(sleepPoints, trend.Point{Date: e.At, Value: *raw.SleepHours})
		}
		if raw.ExerciseMinutes != nil {
			exercisePoints = append(exercisePoints, trend.Point{Date: e.At, Value: *raw.ExerciseMinutes})
		}
		mental := float64(journal.MentalHealthScore(raw.Mood, raw.Stress, len(raw.Symptoms)))
		mentalTotal += mental
		mentalPoints = append(mentalPoints, trend.Point{Date: e.At, Value: mental})
		moodCounts[raw.Mood]++
		stressCounts[raw.Stress]++
		for _, symptom := range raw.Symptoms {
			if _, ok := seenSymptom[symptom]; !ok {
				seenSymptom[symptom] = struct{}{}
				s.Symptoms = append(s.Symptoms, symptom)
			}
		}
	}

	sleep := trend.Analyze(sleepPoints, nil)
	exercise := trend.Analyze(exercisePoints, nil)
	mental := trend.Analyze(mentalPoints, nil)

	s.HasSleep = len(sleepPoints) > 0
	s.SleepAverage = journal.Round1(sleep.Average)
	s.SleepQuality = journal.SleepScore(sleep.Average)
	s.SleepTrend = sleep.Direction
	s.HasExercise = len(exercisePoints) > 0
	s.ExerciseAverage = journal.Round1(exercise.Average)
	s.ExerciseTrend = exercise.Direction
	s.MentalHealthScore = journal.Round1(mentalTotal / float64(len(entries)))
	s.MentalTrend = mental.Direction
	s.PredominantMood = mostFrequent(journal.Moods, moodCounts, journal.MoodNeutral)
	s.StressLevel = mostFrequent(journal.StressLevels, stressCounts, journal.StressModerate)
	return s
}

// mostFrequent picks the highest count; ties go to the earlier value in order.
func mostFrequent[T comparable](order []T, counts map[T]int, fallback T) T {
	best, bestCount := fallback, 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

// Record renders the summary as a fallback analysis with exactly three
// insights and three recommendations.
func (s Summary) Record() Record {
	return Record{
		EntryCount: s.EntryCount,
		Metrics: Metrics{
			Sleep: SleepMetrics{
				Average: s.SleepAverage,
				Quality: float64(s.SleepQuality),
				Trend:   s.SleepTrend.Label(),
			},
			MentalHealth: MentalHealthMetrics{
				AverageScore:    s.MentalHealthScore,
				PredominantMood: string(s.PredominantMood),
				StressLevel:     string(s.StressLevel),
				Trend:           s.MentalTrend.Label(),
			},
			Exercise: ExerciseMetrics{
				Average: s.ExerciseAverage,
				Trend:   s.ExerciseTrend.Label(),
			},
		},
		Insights:        []string{s.sleepInsight(), s.exerciseInsight(), s.wellbeingInsight()},
		Recommendations: []string{s.sleepRecommendation(), s.exerciseRecommendation(), s.moodRecommendation()},
		Source:          SourceFallback,
	}
}

func (s Summary) sleepInsight() string {
	switch {
	case !s.HasSleep:
		return "No sleep duration was mentioned in the analyzed entries."
	case s.SleepAverage < minHealthySleep:
		return fmt.Sprintf("Your average sleep of %.1f hours is below the recommended 7-9 hours.", s.SleepAverage)
	case s.SleepAverage > maxHealthySleep:
		return fmt.Sprintf("Your average sleep of %.1f hours is above the recommended 7-9 hours.", s.SleepAverage)
	default:
		return fmt.Sprintf("Your average sleep of %.1f hours is within the healthy 7-9 hour range.", s.SleepAverage)
	}
}

func (s Summary) exerciseInsight() string {
	switch {
	case !s.HasExercise:
		return "No exercise sessions were mentioned in the analyzed entries."
	case s.ExerciseAverage < journal.ExerciseTargetMinutes:
		return fmt.Sprintf("You averaged %.0f minutes of exercise, short of the 30 minute daily target.", s.ExerciseAverage)
	default:
		return fmt.Sprintf("You averaged %.0f minutes of exercise, meeting the 30 minute daily target.", s.ExerciseAverage)
	}
}

func (s Summary) wellbeingInsight() string {
	line := fmt.Sprintf(
		"Your predominant mood was %s with %s stress, for a mental health score of %.0f.",
		humanize(string(s.PredominantMood)),
		humanize(string(s.StressLevel)),
		s.MentalHealthScore,
	)
	if len(s.Symptoms) > 0 {
		line += " Reported symptoms: " + strings.Join(s.Symptoms, ", ") + "."
	}
	return line
}

func (s Summary) sleepRecommendation() string {
	switch {
	case !s.HasSleep:
		return "Note how many hours you sleep each night so your sleep pattern can be tracked"
	case s.SleepAverage < minHealthySleep:
		return "Establish a consistent bedtime routine and aim for 7-9 hours of sleep"
	case s.SleepAverage > maxHealthySleep:
		return "Keep a regular wake-up time and aim for 7-9 hours of sleep"
	default:
		return "Keep your current sleep schedule to maintain healthy rest"
	}
}

func (s Summary) exerciseRecommendation() string {
	if !s.HasExercise || s.ExerciseAverage < journal.ExerciseTargetMinutes {
		return "Start with short exercise sessions and gradually work up to 30 minutes daily"
	}
	return "Keep up your exercise routine and vary activities to stay motivated"
}

func (s Summary) moodRecommendation() string {
	switch {
	case s.PredominantMood == journal.MoodNegative || s.PredominantMood == journal.MoodVeryNegative:
		return "Try a few minutes of daily mindfulness or deep breathing to support your mood"
	case len(s.Symptoms) > 0:
		return "Monitor your symptoms and consider consulting a healthcare provider if they persist"
	default:
		return "Maintain your current healthy routines and track any changes in your wellbeing"
	}
}

// humanize turns "veryPositive" into "very positive".
func humanize(camel string) string {
	var sb strings.Builder
	for i, r := range camel {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte(' ')
			}
			r += 'a' - 'A'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
