package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"healthjournal/internal/analysis"
	"healthjournal/internal/journal"
	"healthjournal/internal/report"
)

func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--db", db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := run(t, db, args...)
	if err != nil {
		t.Fatalf("journalctl %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestJournalWorkflow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "journal.db")

	var first journal.Entry
	if err := json.Unmarshal([]byte(mustRun(t, db, "add", "-o", "json", "Slept 8 hours, walked for 30 minutes")), &first); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	mustRun(t, db, "add", "--mood", "negative", "Slept 6 hours")

	var listed []journal.Entry
	if err := json.Unmarshal([]byte(mustRun(t, db, "list", "-o", "json")), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 2 || listed[1].ID != first.ID || listed[0].Mood != "negative" {
		t.Fatalf("expected two entries newest first, got %+v", listed)
	}

	var rec analysis.Record
	if err := json.Unmarshal([]byte(mustRun(t, db, "analyze", "--offline", "-o", "json")), &rec); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	if rec.Source != analysis.SourceFallback || rec.EntryCount != 2 || rec.Metrics.Sleep.Average != 7 {
		t.Fatalf("unexpected analysis: %+v", rec)
	}

	var r report.Report
	if err := json.Unmarshal([]byte(mustRun(t, db, "report", "-o", "json")), &r); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if r.Overview.TotalEntries != 1 || r.Sleep.Average != 7 {
		t.Fatalf("unexpected report: %+v", r)
	}

	path := filepath.Join(t.TempDir(), "report.txt")
	mustRun(t, db, "report", "--period", "month", "--out", path)
	text, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(text), "Health Report (month)") {
		t.Fatalf("unexpected report file:\n%s", text)
	}

	mustRun(t, db, "delete", first.ID[:8])
	if out := mustRun(t, db, "list"); strings.Contains(out, first.ID[:8]) {
		t.Fatalf("expected deleted entry hidden:\n%s", out)
	}
}

func TestOtherUsersAreSeparate(t *testing.T) {
	db := filepath.Join(t.TempDir(), "journal.db")
	mustRun(t, db, "--user", "alice", "add", "Slept 7 hours")

	out := mustRun(t, db, "--user", "bob", "list")
	if !strings.Contains(out, "No entries yet") {
		t.Fatalf("expected bob to see nothing, got:\n%s", out)
	}
}

func TestExtractAndErrors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "journal.db")

	out := mustRun(t, db, "extract", "Slept 6 hours and had a headache")
	if !strings.Contains(out, "Sleep: 6 hours (score 75") || !strings.Contains(out, "Symptoms: headache") {
		t.Fatalf("unexpected extract output:\n%s", out)
	}

	out = mustRun(t, db, "extract", "-o", "yaml", "Slept 6 hours")
	if !strings.Contains(out, "sleepscore: 75") {
		t.Fatalf("expected yaml output, got:\n%s", out)
	}

	failures := [][]string{
		{"analyze", "--offline"},
		{"add", "--mood", "ecstatic", "hello"},
		{"trend", "weight"},
		{"report", "--period", "decade"},
		{"list", "-o", "xml"},
		{"delete", "nope"},
	}
	for _, args := range failures {
		if _, err := run(t, db, args...); err == nil {
			t.Fatalf("expected journalctl %s to fail", strings.Join(args, " "))
		}
	}
}
