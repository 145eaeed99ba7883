package analysis

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"healthjournal/internal/journal"
)

func TestNormalizeFillsDefaultsAndOverrides(t *testing.T) {
	deleted := fixedNow
	sleep := 9.0
	entries := []journal.Entry{
		{ID: "b", Content: "Went for a 40-minute run", CreatedAt: fixedNow.Add(time.Hour)},
		{ID: "a", Content: "Slept 6 hours", CreatedAt: fixedNow, Mood: "negative", SleepHours: &sleep},
		{ID: "x", Content: "gone", CreatedAt: fixedNow, DeletedAt: &deleted},
		{ID: "blank", Content: "   ", CreatedAt: fixedNow},
		{ID: "c", Content: "nothing measurable"},
	}
	got := Normalize(entries, fixedNow.Add(2*time.Hour))
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].ID != "c" || got[1].ID != "a" || got[2].ID != "b" {
		t.Fatalf("unexpected order: %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[0].Date != "2026-05-20" || got[0].Mood != journal.MoodNeutral || got[0].Sleep != 0 {
		t.Fatalf("unexpected defaults: %+v", got[0])
	}
	if got[1].Sleep != 9 || got[1].Mood != journal.MoodNegative {
		t.Fatalf("expected self-reported values to win: %+v", got[1])
	}
	if got[2].Exercise != 40 {
		t.Fatalf("expected extracted exercise, got %+v", got[2])
	}
}

func TestSummarizeAggregatesAcrossEntries(t *testing.T) {
	entries := Normalize(entriesOf(
		"Slept 5 hours, feeling sad",
		"Slept 6 hours, upset about work, headache",
		"Slept 7 hours and happy, 30 minutes of yoga",
		"Slept 9 hours, feeling down",
	), fixedNow)
	s := Summarize(entries)

	if !s.HasSleep || s.SleepAverage != 6.8 {
		t.Fatalf("expected sleep average 6.8, got %v", s.SleepAverage)
	}
	if s.SleepQuality != journal.SleepScore(6.75) {
		t.Fatalf("expected quality from unrounded average, got %d", s.SleepQuality)
	}
	if s.PredominantMood != journal.MoodNegative {
		t.Fatalf("expected negative mood, got %s", s.PredominantMood)
	}
	if s.SleepTrend != "improving" {
		t.Fatalf("expected improving sleep, got %s", s.SleepTrend)
	}
	if !s.HasExercise || s.ExerciseAverage != 30 {
		t.Fatalf("expected exercise 30, got %v", s.ExerciseAverage)
	}
	if !reflect.DeepEqual(s.Symptoms, []string{"headache"}) {
		t.Fatalf("unexpected symptoms: %v", s.Symptoms)
	}

	rec := s.Record()
	if !strings.Contains(rec.Recommendations[2], "mindfulness") {
		t.Fatalf("expected mindfulness recommendation, got %q", rec.Recommendations[2])
	}
}

func TestSummaryRecordTemplates(t *testing.T) {
	cases := []struct {
		name     string
		summary  Summary
		insight  string
		sleepRec string
		moodRec  string
	}{
		{
			name:     "no data",
			summary:  Summary{PredominantMood: journal.MoodNeutral, StressLevel: journal.StressModerate},
			insight:  "No sleep duration",
			sleepRec: "Note how many hours",
			moodRec:  "Maintain your current healthy routines",
		},
		{
			name:     "healthy",
			summary:  Summary{HasSleep: true, SleepAverage: 8, PredominantMood: journal.MoodPositive},
			insight:  "within the healthy 7-9 hour range",
			sleepRec: "Keep your current sleep schedule",
			moodRec:  "Maintain your current healthy routines",
		},
		{
			name:     "oversleeping with symptoms",
			summary:  Summary{HasSleep: true, SleepAverage: 10.5, PredominantMood: journal.MoodNeutral, Symptoms: []string{"fever"}},
			insight:  "above the recommended",
			sleepRec: "regular wake-up time",
			moodRec:  "Monitor your symptoms",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := tc.summary.Record()
			if len(rec.Insights) != 3 || len(rec.Recommendations) != 3 {
				t.Fatalf("expected 3/3 lines")
			}
			if !strings.Contains(rec.Insights[0], tc.insight) {
				t.Errorf("insight %q missing %q", rec.Insights[0], tc.insight)
			}
			if !strings.Contains(rec.Recommendations[0], tc.sleepRec) {
				t.Errorf("recommendation %q missing %q", rec.Recommendations[0], tc.sleepRec)
			}
			if !strings.Contains(rec.Recommendations[2], tc.moodRec) {
				t.Errorf("recommendation %q missing %q", rec.Recommendations[2], tc.moodRec)
			}
		})
	}
}

func TestMostFrequentBreaksTiesByOrder(t *testing.T) {
	counts := map[journal.Mood]int{journal.MoodNegative: 2, journal.MoodPositive: 2}
	if got := mostFrequent(journal.Moods, counts, journal.MoodNeutral); got != journal.MoodPositive {
		t.Fatalf("expected positive, got %s", got)
	}
}

func TestParseReplyErrors(t *testing.T) {
	if _, err := ParseReply("no json here"); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected malformed, got %v", err)
	}
	if _, err := ParseReply(`{"metrics":{"sleep":{}},"insights":[]}`); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected missing field, got %v", err)
	}
	reply, err := ParseReply(`Here you go: {"metrics":{"sleep":{"average":7}},"insights":[],"recommendations":[]} thanks`)
	if err != nil {
		t.Fatalf("expected prose-wrapped object accepted, got %v", err)
	}
	if reply.Metrics.Sleep.Average == nil || float64(*reply.Metrics.Sleep.Average) != 7 {
		t.Fatalf("unexpected sleep average")
	}
}

func TestPushHistory(t *testing.T) {
	var history []Record
	for i := 0; i < 5; i++ {
		history = PushHistory(history, Record{ID: string(rune('a' + i))}, 3)
	}
	ids := []string{history[0].ID, history[1].ID, history[2].ID}
	if len(history) != 3 || !reflect.DeepEqual(ids, []string{"e", "d", "c"}) {
		t.Fatalf("unexpected history: %v", ids)
	}
}

func TestHumanize(t *testing.T) {
	if humanize("veryPositive") != "very positive" || humanize("low") != "low" {
		t.Fatalf("unexpected humanize output")
	}
}
