package analysis

import (
	"strings"
	"time"

	"healthjournal/internal/journal"
)

// NormalizedEntry is the canonical shape sent to the model and summarized
// locally.
type NormalizedEntry struct {
	ID       string       `json:"id"`
	Date     string       `json:"date"`
	Content  string       `json:"content"`
	Mood     journal.Mood `json:"mood"`
	Sleep    float64      `json:"sleep"`
	Exercise float64      `json:"exercise"`

	At  time.Time          `json:"-"`
	Raw journal.RawMetrics `json:"-"`
}

// Normalize drops deleted and blank entries, orders the rest oldest first and
// fills every field. Self-reported values win over extracted ones.
func Normalize(entries []journal.Entry, now time.Time) []NormalizedEntry {
	out := make([]NormalizedEntry, 0, len(entries))
	for _, e := range journal.Live(entries) {
		content := strings.TrimSpace(e.Content)
		if content == "" {
			continue
		}
		at := e.CreatedAt
		if at.IsZero() {
			at = now
		}
		raw := journal.Extract(content)
		if mood, ok := journal.ParseMood(e.Mood); ok {
			raw.Mood = mood
		}
		if e.SleepHours != nil {
			hours := *e.SleepHours
			raw.SleepHours = &hours
		}
		if e.ExerciseMinutes != nil {
			minutes := *e.ExerciseMinutes
			raw.ExerciseMinutes = &minutes
		}

		n := NormalizedEntry{
			ID:      e.ID,
			Date:    at.UTC().Format("2006-01-02"),
			Content: content,
			Mood:    raw.Mood,
			At:      at,
			Raw:     raw,
		}
		if raw.SleepHours != nil {
			n.Sleep = *raw.SleepHours
		}
		if raw.ExerciseMinutes != nil {
			n.Exercise = *raw.ExerciseMinutes
		}
		out = append(out, n)
	}
	return out
}
