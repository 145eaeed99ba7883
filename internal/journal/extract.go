package journal

import (
	"regexp"
	"strconv"
	"strings"
)

type keywordRule[T any] struct {
	value T
	re    *regexp.Regexp
}

type symptomRule struct {
	tag string
	re  *regexp.Regexp
}

func words(list ...string) *regexp.Regexp {
	quoted := make([]string, len(list))
	for i, w := range list {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

var (
	sleepPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bslept\s+(?:for\s+|about\s+|around\s+|only\s+)?(\d+(?:\.\d+)?)\s*(?:hours?|hrs?|h)\b`),
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:hours?|hrs?)\s+of\s+sleep`),
		regexp.MustCompile(`(?i)\bsleep\w*\b[^.\d]{0,30}?(\d+(?:\.\d+)?)\s*(?:hours?|hrs?)\b`),
	}

	activityWords   = `workout|exercise|exercising|run|running|jog|jogging|swim|swimming|yoga|gym|walk|walking|cycling|bike ride|hike|training`
	exercisePattern = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)[\s-]*(min(?:ute)?s?|hours?|hrs?)\s+(?:of\s+)?(?:` + activityWords + `)\b`),
		regexp.MustCompile(`(?i)\b(?:worked out|exercised|trained)\s+for\s+(\d+(?:\.\d+)?)\s*(min(?:ute)?s?|hours?|hrs?)?`),
		regexp.MustCompile(`(?i)\b(?:ran|jogged|walked|swam|cycled|hiked)\s+for\s+(\d+(?:\.\d+)?)\s*(min(?:ute)?s?|hours?|hrs?)`),
	}

	moodRules = []keywordRule[Mood]{
		{MoodVeryPositive, words("amazing", "fantastic", "excellent", "wonderful", "great", "thrilled", "ecstatic", "overjoyed")},
		{MoodPositive, words("happy", "good", "pleased", "content", "satisfied", "cheerful", "joyful")},
		{MoodNeutral, words("okay", "ok", "fine", "alright", "normal", "average", "meh")},
		{MoodNegative, words("sad", "unhappy", "down", "upset", "disappointed", "frustrated", "lonely")},
		{MoodVeryNegative, words("terrible", "awful", "horrible", "depressed", "miserable", "devastated", "hopeless")},
	}

	stressRules = []keywordRule[Stress]{
		{StressVeryLow, words("relaxed", "peaceful", "calm", "serene", "tranquil")},
		{StressLow, words("composed", "steady", "balanced", "stable")},
		{StressModerate, words("normal stress", "some stress", "bit stressed", "a little stressed")},
		{StressHigh, words("stressed", "anxious", "worried", "tense", "nervous")},
		{StressVeryHigh, words("extremely stressed", "overwhelmed", "panic", "panicking", "severe anxiety")},
	}

	energyRules = []keywordRule[Energy]{
		{EnergyLow, words("tired", "exhausted", "fatigued", "low energy", "drained", "sluggish")},
		{EnergyMedium, words("moderate energy", "decent energy", "normal energy", "okay energy")},
		{EnergyHigh, words("energetic", "energized", "active", "full of energy", "vigorous")},
	}

	symptomRules = []symptomRule{
		{"headache", words("headache", "headaches", "migraine")},
		{"nausea", words("nausea", "nauseous", "nauseated")},
		{"pain", words("pain", "ache", "aches", "sore", "aching")},
		{"fever", words("fever", "feverish")},
		{"cough", words("cough", "coughing")},
		{"fatigue", words("fatigue", "exhaustion", "exhausted", "tired")},
		{"dizziness", words("dizzy", "dizziness", "lightheaded")},
		{"anxiety", words("anxiety", "anxious", "worried")},
		{"insomnia", words("insomnia", "couldn't sleep", "could not sleep")},
		{"cramps", words("cramp", "cramps", "cramping")},
	}
)

// Extract pulls structured metrics out of free journal text. It never fails;
// anything it cannot find keeps its default.
func Extract(text string) RawMetrics {
	out := RawMetrics{
		Mood:     MoodNeutral,
		Stress:   StressModerate,
		Energy:   EnergyMedium,
		Symptoms: []string{},
	}
	if strings.TrimSpace(text) == "" {
		return out
	}

	out.SleepHours = extractSleep(text)
	out.ExerciseMinutes = extractExercise(text)
	out.Mood = firstMatch(moodRules, text, MoodNeutral)
	out.Stress = firstMatch(stressRules, text, StressModerate)
	out.Energy = firstMatch(energyRules, text, EnergyMedium)
	for _, rule := range symptomRules {
		if rule.re.MatchString(text) {
			out.Symptoms = append(out.Symptoms, rule.tag)
		}
	}
	return out
}

func firstMatch[T any](rules []keywordRule[T], text string, fallback T) T {
	for _, rule := range rules {
		if rule.re.MatchString(text) {
			return rule.value
		}
	}
	return fallback
}

func extractSleep(text string) *float64 {
	for _, re := range sleepPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if hours, err := strconv.ParseFloat(m[1], 64); err == nil {
			return &hours
		}
	}
	return nil
}

func extractExercise(text string) *float64 {
	for _, re := range exercisePattern {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		amount, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if len(m) > 2 && strings.HasPrefix(strings.ToLower(m[2]), "h") {
			amount *= 60
		}
		return &amount
	}
	return nil
}
