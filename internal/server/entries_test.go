package server

import (
	"net/http"
	"testing"
	"time"

	"healthjournal/internal/journal"
	"healthjournal/internal/notify"
)

type entriesResponse struct {
	Entries []journal.Entry `json:"entries"`
	Count   int             `json:"count"`
}

func createEntry(t *testing.T, env *testEnv, token string, body map[string]any) journal.Entry {
	t.Helper()
	rec := performRequest(t, env.router, http.MethodPost, "/api/v1/entries", token, body, nil)
	requireStatus(t, rec, http.StatusCreated)
	var entry journal.Entry
	decodeInto(t, rec, &entry)
	return entry
}

func TestEntryLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, "user-1", nil)

	first := createEntry(t, env, token, map[string]any{"content": "  Slept 7 hours, went for a run  "})
	second := createEntry(t, env, token, map[string]any{"content": "Headache all day", "mood": "negative", "sleepHours": 5})
	if first.ID == "" || first.Content != "Slept 7 hours, went for a run" {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	if second.Mood != "negative" || second.SleepHours == nil || *second.SleepHours != 5 {
		t.Fatalf("unexpected self-reported fields: %+v", second)
	}

	rec := performRequest(t, env.router, http.MethodGet, "/api/v1/entries", token, nil, nil)
	requireStatus(t, rec, http.StatusOK)
	var listed entriesResponse
	decodeInto(t, rec, &listed)
	if listed.Count != 2 || listed.Entries[0].ID != second.ID {
		t.Fatalf("expected newest first, got %+v", listed)
	}

	rec = performRequest(t, env.router, http.MethodGet, "/api/v1/entries?q=HEADACHE", token, nil, nil)
	requireStatus(t, rec, http.StatusOK)
	decodeInto(t, rec, &listed)
	if listed.Count != 1 || listed.Entries[0].ID != second.ID {
		t.Fatalf("expected search to match one entry, got %+v", listed)
	}

	rec = performRequest(t, env.router, http.MethodDelete, "/api/v1/entries/"+second.ID, token, nil, nil)
	requireStatus(t, rec, http.StatusOK)
	rec = performRequest(t, env.router, http.MethodDelete, "/api/v1/entries/"+second.ID, token, nil, nil)
	requireStatus(t, rec, http.StatusNotFound)

	rec = performRequest(t, env.router, http.MethodGet, "/api/v1/entries", token, nil, nil)
	decodeInto(t, rec, &listed)
	if listed.Count != 1 || listed.Entries[0].ID != first.ID {
		t.Fatalf("expected deleted entry hidden, got %+v", listed)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, testID(), nil)

	cases := []struct {
		name   string
		body   any
		detail string
	}{
		{"blank", map[string]any{"content": "   "}, "content is required"},
		{"bad mood", map[string]any{"content": "ok", "mood": "ecstatic"}, "Invalid mood"},
		{"negative sleep", map[string]any{"content": "ok", "sleepHours": -1}, "sleepHours or exerciseMinutes out of range"},
		{"wrong type", map[string]any{"content": 12}, "Invalid request payload"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := performRequest(t, env.router, http.MethodPost, "/api/v1/entries", token, tc.body, nil)
			requireStatus(t, rec, http.StatusBadRequest)
			if detail := responseDetail(t, rec); detail != tc.detail {
				t.Fatalf("expected %q, got %q", tc.detail, detail)
			}
		})
	}
}

func TestCreateEntryPublishesEvent(t *testing.T) {
	env := newTestEnv(t)
	events, cancel := env.hub.Subscribe("user-1")
	defer cancel()

	entry := createEntry(t, env, signToken(t, "user-1", nil), map[string]any{"content": "Slept 8 hours"})
	select {
	case ev := <-events:
		if ev.Kind != notify.KindEntriesChanged || ev.RecordID != entry.ID {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected entries.changed event")
	}
}

func TestExtractEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, testID(), nil)

	rec := performRequest(t, env.router, http.MethodPost, "/api/v1/entries/extract", token,
		map[string]any{"content": "Slept 6 hours, did 45 minutes of yoga, feeling happy but a bit stressed"}, nil)
	requireStatus(t, rec, http.StatusOK)

	var body extractResponse
	decodeInto(t, rec, &body)
	m := body.Metrics
	if m.SleepHours == nil || *m.SleepHours != 6 || m.ExerciseMinutes == nil || *m.ExerciseMinutes != 45 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
	if m.Mood != journal.MoodPositive || m.Stress != journal.StressModerate {
		t.Fatalf("unexpected mood/stress: %s/%s", m.Mood, m.Stress)
	}
	if body.Scores.SleepScore != 75 || body.Scores.ExerciseScore != 100 {
		t.Fatalf("unexpected scores: %+v", body.Scores)
	}
}
