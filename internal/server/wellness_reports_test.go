package server

import (
	"net/http"
	"strings"
	"testing"

	"healthjournal/internal/journal"
	"healthjournal/internal/report"
)

func TestGoalsAndHabitCheckIn(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, "user-1", nil)

	rec := performRequest(t, env.router, http.MethodGet, "/api/v1/goals", token, nil, nil)
	requireStatus(t, rec, http.StatusOK)
	var data journal.GoalsData
	decodeInto(t, rec, &data)
	if data.Goals == nil || data.Habits == nil || len(data.Goals) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", data)
	}

	rec = performRequest(t, env.router, http.MethodPut, "/api/v1/goals", token, map[string]any{
		"goals":  []map[string]any{{"title": "Run 5k", "completed": true}, {"title": "Sleep 8h"}},
		"habits": []map[string]any{{"name": "Meditate"}},
	}, nil)
	requireStatus(t, rec, http.StatusOK)
	decodeInto(t, rec, &data)
	if data.Goals[0].ID == "" || data.Goals[0].CompletedAt == nil || data.Goals[1].CompletedAt != nil {
		t.Fatalf("expected ids and completion stamps, got %+v", data.Goals)
	}
	habitID := data.Habits[0].ID

	for i := 0; i < 2; i++ {
		rec = performRequest(t, env.router, http.MethodPost, "/api/v1/habits/"+habitID+"/check", token, nil, nil)
		requireStatus(t, rec, http.StatusOK)
	}
	var habit journal.Habit
	decodeInto(t, rec, &habit)
	if habit.Streak != 1 || habit.LastChecked == nil {
		t.Fatalf("expected same-day check to keep streak at 1, got %+v", habit)
	}

	rec = performRequest(t, env.router, http.MethodPost, "/api/v1/habits/"+testID()+"/check", token, nil, nil)
	requireStatus(t, rec, http.StatusNotFound)

	rec = performRequest(t, env.router, http.MethodPut, "/api/v1/goals", token, map[string]any{
		"goals": []map[string]any{{"title": "  "}},
	}, nil)
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestNutritionMeals(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, "user-1", nil)

	rec := performRequest(t, env.router, http.MethodPost, "/api/v1/nutrition/meals", token,
		map[string]any{"name": "Oats", "type": "breakfast", "calories": 350, "date": "2026-05-19"}, nil)
	requireStatus(t, rec, http.StatusCreated)

	rec = performRequest(t, env.router, http.MethodPost, "/api/v1/nutrition/meals", token,
		map[string]any{"name": "Bad", "date": "19/05/2026"}, nil)
	requireStatus(t, rec, http.StatusBadRequest)

	rec = performRequest(t, env.router, http.MethodGet, "/api/v1/nutrition", token, nil, nil)
	requireStatus(t, rec, http.StatusOK)
	var data journal.Nutrition
	decodeInto(t, rec, &data)
	if len(data.Meals) != 1 || data.Meals[0].Name != "Oats" || data.Meals[0].Date.Format("2006-01-02") != "2026-05-19" {
		t.Fatalf("unexpected nutrition: %+v", data)
	}

	rec = performRequest(t, env.router, http.MethodPut, "/api/v1/nutrition", token,
		map[string]any{"meals": []any{}, "waterIntake": 1500, "waterTarget": 2000}, nil)
	requireStatus(t, rec, http.StatusOK)
	rec = performRequest(t, env.router, http.MethodPut, "/api/v1/nutrition", token,
		map[string]any{"waterIntake": -1}, nil)
	requireStatus(t, rec, http.StatusBadRequest)
}

func seedReportData(t *testing.T, env *testEnv, token string) {
	t.Helper()
	createEntry(t, env, token, map[string]any{"content": "Slept 6 hours, walked for 30 minutes, feeling good"})
	requireStatus(t, performRequest(t, env.router, http.MethodPost, "/api/v1/analysis", token, nil, nil), http.StatusOK)
	requireStatus(t, performRequest(t, env.router, http.MethodPut, "/api/v1/goals", token, map[string]any{
		"goals": []map[string]any{{"title": "Run 5k", "completed": true}, {"title": "Sleep 8h"}},
	}, nil), http.StatusOK)
	for _, meal := range []map[string]any{
		{"name": "Lunch", "calories": 500, "date": "2026-05-18"},
		{"name": "Dinner", "calories": 700, "date": "2026-05-19"},
		{"name": "Old", "calories": 3000, "date": "2026-04-01"},
	} {
		requireStatus(t, performRequest(t, env.router, http.MethodPost, "/api/v1/nutrition/meals", token, meal, nil), http.StatusCreated)
	}
}

func TestReportEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, "user-1", nil)
	seedReportData(t, env, token)

	rec := performRequest(t, env.router, http.MethodGet, "/api/v1/reports?period=week", token, nil, nil)
	requireStatus(t, rec, http.StatusOK)
	var body struct {
		Period string        `json:"period"`
		Report report.Report `json:"report"`
	}
	decodeInto(t, rec, &body)
	r := body.Report
	if body.Period != "week" || r.DateRange.Start != "2026-05-13" || r.DateRange.End != "2026-05-20" {
		t.Fatalf("unexpected range: %s %+v", body.Period, r.DateRange)
	}
	if r.Overview.TotalEntries != 1 || r.Overview.CompletedGoals != 1 || r.Overview.AvgCalories != 600 {
		t.Fatalf("unexpected overview: %+v", r.Overview)
	}
	if r.Goals.Total != 2 || r.Nutrition.MealCount != 2 {
		t.Fatalf("unexpected goals/nutrition: %+v %+v", r.Goals, r.Nutrition)
	}
	if r.Sleep.Average != 6 || r.Exercise.Average != 30 || r.HealthScore == 0 {
		t.Fatalf("unexpected sections: sleep=%+v exercise=%+v score=%d", r.Sleep, r.Exercise, r.HealthScore)
	}

	rec = performRequest(t, env.router, http.MethodGet, "/api/v1/reports?start=2026-04-01&end=2026-04-30", token, nil, nil)
	requireStatus(t, rec, http.StatusOK)
	decodeInto(t, rec, &body)
	if body.Period != "custom" || body.Report.Overview.TotalEntries != 0 || body.Report.Nutrition.AvgCalories != 3000 {
		t.Fatalf("unexpected custom report: %+v", body)
	}
}

func TestReportValidation(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, testID(), nil)
	cases := []struct {
		query  string
		detail string
	}{
		{"period=decade", "period must be one of week, month, year"},
		{"start=2026-05-01", "end must be YYYY-MM-DD"},
		{"start=2026-05-10&end=2026-05-01", "end must not be before start"},
		{"period=week&tz=Not/AZone", "Invalid tz"},
		{"start=yesterday&end=2026-05-01", "start must be YYYY-MM-DD"},
	}
	for _, tc := range cases {
		rec := performRequest(t, env.router, http.MethodGet, "/api/v1/reports?"+tc.query, token, nil, nil)
		requireStatus(t, rec, http.StatusBadRequest)
		if got := responseDetail(t, rec); got != tc.detail {
			t.Fatalf("%s: expected %q, got %q", tc.query, tc.detail, got)
		}
	}
}

func TestReportDownload(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, "user-1", nil)
	seedReportData(t, env, token)

	rec := performRequest(t, env.router, http.MethodGet, "/api/v1/reports/download?period=month", token, nil, nil)
	requireStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}
	disposition := rec.Header().Get("Content-Disposition")
	if disposition != `attachment; filename="health-report-month-2026-05-20.txt"` {
		t.Fatalf("unexpected disposition %q", disposition)
	}
	text := rec.Body.String()
	for _, want := range []string{"Health Report (month)", "- Total Journal Entries: 1", "- Average Sleep: 6.0 hours", "Exercise Analysis:"} {
		if !strings.Contains(text, want) {
			t.Fatalf("report missing %q:\n%s", want, text)
		}
	}
}
