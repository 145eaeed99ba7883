package report

import (
	"fmt"
	"math"
	"time"

	"healthjournal/internal/analysis"
	"healthjournal/internal/journal"
	"healthjournal/internal/trend"
)

const dateLayout = "2006-01-02"

// Health score weights per dimension.
const (
	sleepWeight    = 0.35
	exerciseWeight = 0.25
	mentalWeight   = 0.40
)

type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

func ParsePeriod(raw string) (Period, bool) {
	switch Period(raw) {
	case PeriodWeek, PeriodMonth, PeriodYear:
		return Period(raw), true
	case "":
		return PeriodWeek, true
	}
	return "", false
}

// DateRange is an inclusive span of calendar dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// RangeForPeriod ends at now and reaches back one week, month or year.
func RangeForPeriod(period Period, now time.Time) DateRange {
	var start time.Time
	switch period {
	case PeriodMonth:
		start = now.AddDate(0, -1, 0)
	case PeriodYear:
		start = now.AddDate(-1, 0, 0)
	default:
		start = now.AddDate(0, 0, -7)
	}
	return DateRange{Start: start, End: now}
}

type Input struct {
	History  []analysis.Record
	Goals    []journal.Goal
	Habits   []journal.Habit
	Meals    []journal.Meal
	Range    DateRange
	Now      time.Time
	Location *time.Location
}

type Overview struct {
	TotalEntries   int `json:"totalEntries"`
	CompletedGoals int `json:"completedGoals"`
	ActiveHabits   int `json:"activeHabits"`
	AvgCalories    int `json:"avgCalories"`
}

type SleepSection struct {
	Average      float64         `json:"average"`
	Consistency  int             `json:"consistency"`
	QualityScore int             `json:"qualityScore"`
	Direction    trend.Direction `json:"direction"`
	Insights     []string        `json:"insights"`
}

type ExerciseSection struct {
	Average       int             `json:"average"`
	Consistency   int             `json:"consistency"`
	ActivityScore int             `json:"activityScore"`
	Direction     trend.Direction `json:"direction"`
	Insights      []string        `json:"insights"`
}

type MentalHealthSection struct {
	AverageScore    float64 `json:"averageScore"`
	PredominantMood string  `json:"predominantMood"`
	StressLevel     string  `json:"stressLevel"`
	Trend           string  `json:"trend"`
}

type NutritionSection struct {
	MealCount   int `json:"mealCount"`
	AvgCalories int `json:"avgCalories"`
}

type GoalsSection struct {
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

type HabitStreak struct {
	Name   string `json:"name"`
	Streak int    `json:"streak"`
	Active bool   `json:"active"`
}

type HabitsSection struct {
	Active  int           `json:"active"`
	Total   int           `json:"total"`
	Streaks []HabitStreak `json:"streaks"`
}

type DateSpan struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Report struct {
	DateRange    DateSpan            `json:"dateRange"`
	GeneratedAt  time.Time           `json:"generatedAt"`
	HealthScore  int                 `json:"healthScore"`
	Overview     Overview            `json:"overview"`
	Sleep        SleepSection        `json:"sleep"`
	Exercise     ExerciseSection     `json:"exercise"`
	MentalHealth MentalHealthSection `json:"mentalHealth"`
	Nutrition    NutritionSection    `json:"nutrition"`
	Goals        GoalsSection        `json:"goals"`
	Habits       HabitsSection       `json:"habits"`
}

// Build aggregates the inputs falling inside the range. Dates are compared
// as calendar days in in.Location (UTC when nil).
func Build(in Input) Report {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	start := in.Range.Start.In(loc).Format(dateLayout)
	end := in.Range.End.In(loc).Format(dateLayout)
	within := func(t time.Time) bool {
		day := t.In(loc).Format(dateLayout)
		return day >= start && day <= end
	}

	// History is stored newest first; series want oldest first.
	var records []analysis.Record
	for i := len(in.History) - 1; i >= 0; i-- {
		if rec := in.History[i]; !rec.Timestamp.IsZero() && within(rec.Timestamp) {
			records = append(records, rec)
		}
	}

	var meals []journal.Meal
	for _, m := range in.Meals {
		if !m.Date.IsZero() && within(m.Date) {
			meals = append(meals, m)
		}
	}
	avgCalories := averageCalories(meals)

	completed, open := 0, 0
	for _, g := range in.Goals {
		if !g.Completed {
			open++
			continue
		}
		if g.CompletedAt != nil && within(*g.CompletedAt) {
			completed++
		}
	}

	today := journal.CalendarDay(now, loc)
	yesterday := today.AddDate(0, 0, -1)
	habits := HabitsSection{Total: len(in.Habits), Streaks: make([]HabitStreak, 0, len(in.Habits))}
	for _, h := range in.Habits {
		active := false
		if h.LastChecked != nil {
			day := journal.CalendarDay(*h.LastChecked, loc)
			active = day.Equal(today) || day.Equal(yesterday)
		}
		if active {
			habits.Active++
		}
		habits.Streaks = append(habits.Streaks, HabitStreak{Name: h.Name, Streak: h.Streak, Active: active})
	}

	return Report{
		DateRange:   DateSpan{Start: start, End: end},
		GeneratedAt: now.UTC(),
		HealthScore: HealthScore(records),
		Overview: Overview{
			TotalEntries:   len(records),
			CompletedGoals: completed,
			ActiveHabits:   habits.Active,
			AvgCalories:    avgCalories,
		},
		Sleep:        sleepSection(records),
		Exercise:     exerciseSection(records),
		MentalHealth: mentalSection(records),
		Nutrition:    NutritionSection{MealCount: len(meals), AvgCalories: avgCalories},
		Goals:        GoalsSection{Active: open, Completed: completed, Total: len(in.Goals)},
		Habits:       habits,
	}
}

// HealthScore is the weighted mean of the per-dimension averages. A
// dimension with no positive value in any record drops out of both the
// numerator and the denominator.
func HealthScore(records []analysis.Record) int {
	var sleep, exercise, mental []float64
	for _, rec := range records {
		m := rec.Metrics
		if m.Sleep.Quality > 0 {
			sleep = append(sleep, m.Sleep.Quality)
		}
		if m.Exercise.Average > 0 {
			exercise = append(exercise, journal.ExerciseScore(m.Exercise.Average))
		}
		if m.MentalHealth.AverageScore > 0 {
			mental = append(mental, m.MentalHealth.AverageScore)
		}
	}

	var weighted, weights float64
	for _, dim := range []struct {
		values []float64
		weight float64
	}{
		{sleep, sleepWeight},
		{exercise, exerciseWeight},
		{mental, mentalWeight},
	} {
		if len(dim.values) == 0 {
			continue
		}
		weighted += mean(dim.values) * dim.weight
		weights += dim.weight
	}
	if weights == 0 {
		return 0
	}
	return int(math.Round(weighted / weights))
}

func sleepSection(records []analysis.Record) SleepSection {
	if len(records) == 0 {
		return SleepSection{Direction: trend.NotEnoughData, Insights: []string{}}
	}
	points := make([]trend.Point, len(records))
	quality := make([]float64, len(records))
	for i, rec := range records {
		points[i] = trend.Point{Date: rec.Timestamp, Value: rec.Metrics.Sleep.Average}
		quality[i] = rec.Metrics.Sleep.Quality
	}
	res := trend.Analyze(points, trend.Target(journal.SleepTargetHours))
	qualityScore := int(math.Round(mean(quality)))

	insights := make([]string, 0, 3)
	switch avg := res.Average; {
	case avg < 6:
		insights = append(insights, "Critical: You're significantly under-sleeping. Aim for 7-9 hours.")
	case avg < 7:
		insights = append(insights, "Warning: You're getting less than recommended sleep (7-9 hours).")
	case avg > 9:
		insights = append(insights, "Note: You might be oversleeping. Try adjusting your sleep schedule.")
	default:
		insights = append(insights, "Great! Your sleep duration is within the recommended range.")
	}
	insights = append(insights, consistencyInsight(res.ConsistencyScore,
		"Excellent sleep schedule consistency! Keep it up!",
		"Good sleep consistency with minor variations.",
		"Your sleep schedule shows some irregularity. Try to maintain consistent sleep times.",
		"Your sleep schedule is quite irregular. Consider setting a consistent sleep routine.",
	))
	switch {
	case qualityScore >= 80:
		insights = append(insights, "You're experiencing good quality sleep overall.")
	case qualityScore >= 60:
		insights = append(insights, "Your sleep quality is moderate. Consider factors that might be affecting your sleep.")
	default:
		insights = append(insights, "Your sleep quality needs improvement. Consider factors like room temperature, noise, and pre-sleep routine.")
	}

	return SleepSection{
		Average:      journal.Round1(res.Average),
		Consistency:  res.ConsistencyScore,
		QualityScore: qualityScore,
		Direction:    res.Direction,
		Insights:     insights,
	}
}

func exerciseSection(records []analysis.Record) ExerciseSection {
	if len(records) == 0 {
		return ExerciseSection{Direction: trend.NotEnoughData, Insights: []string{}}
	}
	points := make([]trend.Point, len(records))
	scores := make([]float64, len(records))
	for i, rec := range records {
		points[i] = trend.Point{Date: rec.Timestamp, Value: rec.Metrics.Exercise.Average}
		scores[i] = journal.ExerciseScore(rec.Metrics.Exercise.Average)
	}
	res := trend.Analyze(points, trend.Target(journal.ExerciseTargetMinutes))
	activity := int(math.Round(mean(scores)))

	insights := make([]string, 0, 3)
	switch avg := res.Average; {
	case avg < 15:
		insights = append(insights, "Critical: You're getting minimal exercise. Try to increase daily activity.")
	case avg < journal.ExerciseTargetMinutes:
		insights = append(insights, "Warning: You're below the recommended daily exercise (30 minutes).")
	default:
		insights = append(insights, "Great! You're meeting or exceeding daily exercise recommendations.")
	}
	insights = append(insights, consistencyInsight(res.ConsistencyScore,
		"Excellent exercise consistency! Keep up the routine!",
		"Good exercise consistency with some variation.",
		"Your exercise routine shows some irregularity. Try to maintain a consistent schedule.",
		"Your exercise routine is quite irregular. Consider setting a regular workout schedule.",
	))
	switch res.Direction {
	case trend.Improving:
		insights = append(insights, "Your activity level is trending up.")
	case trend.Declining:
		insights = append(insights, "Your activity level is trending down. Plan short sessions to get back on track.")
	default:
		insights = append(insights, "Your activity level is holding steady.")
	}

	return ExerciseSection{
		Average:       int(math.Round(res.Average)),
		Consistency:   res.ConsistencyScore,
		ActivityScore: activity,
		Direction:     res.Direction,
		Insights:      insights,
	}
}

func consistencyInsight(score int, excellent, good, fair, poor string) string {
	switch {
	case score >= 90:
		return excellent
	case score >= 70:
		return good
	case score >= 50:
		return fair
	default:
		return poor
	}
}

// mentalSection reports the newest record in range.
func mentalSection(records []analysis.Record) MentalHealthSection {
	out := MentalHealthSection{
		PredominantMood: string(journal.MoodNeutral),
		StressLevel:     string(journal.StressModerate),
		Trend:           string(trend.Stable),
	}
	if len(records) == 0 {
		return out
	}
	m := records[len(records)-1].Metrics.MentalHealth
	out.AverageScore = m.AverageScore
	if m.PredominantMood != "" {
		out.PredominantMood = m.PredominantMood
	}
	if m.StressLevel != "" {
		out.StressLevel = m.StressLevel
	}
	if m.Trend != "" {
		out.Trend = m.Trend
	}
	return out
}

func averageCalories(meals []journal.Meal) int {
	if len(meals) == 0 {
		return 0
	}
	total := 0.0
	for _, m := range meals {
		total += m.Calories
	}
	return int(math.Round(total / float64(len(meals))))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// Filename is the download name for a report generated at now.
func Filename(period Period, now time.Time) string {
	return fmt.Sprintf("health-report-%s-%s.txt", period, now.UTC().Format(dateLayout))
}
