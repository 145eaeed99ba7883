package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"healthjournal/internal/db"
	"healthjournal/internal/journal"
)

func exerciseBackend(t *testing.T, backend Backend) {
	t.Helper()
	ctx := context.Background()

	if _, err := backend.Get(ctx, "user-a", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := backend.Put(ctx, "user-a", KeyGoals, []byte(`{"goals":[]}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := backend.Put(ctx, "user-a", KeyGoals, []byte(`{"goals":[],"habits":[]}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := backend.Get(ctx, "user-a", KeyGoals)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(string(got), "habits") {
		t.Fatalf("expected last write to win, got %s", got)
	}
	if _, err := backend.Get(ctx, "user-b", KeyGoals); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected users to be isolated, got %v", err)
	}
	if err := backend.Delete(ctx, "user-a", KeyGoals); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := backend.Get(ctx, "user-a", KeyGoals); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemory())
}

func TestSQLiteBackend(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		if strings.Contains(err.Error(), "CGO_ENABLED=0") {
			t.Skip("sqlite requires cgo")
		}
		t.Fatalf("open sqlite: %v", err)
	}
	defer s.Close()
	exerciseBackend(t, s)
}

func TestPostgresBackendIntegration(t *testing.T) {
	dsn := strings.TrimSpace(os.Getenv("TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("integration tests skipped: TEST_DATABASE_URL is not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("schema: %v", err)
	}
	if _, err := pool.Exec(ctx, `DELETE FROM "UserDocument" WHERE "userId" IN ('user-a', 'user-b')`); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	exerciseBackend(t, NewPostgres(pool))
}

func TestRedisBackendIntegration(t *testing.T) {
	redisURL := strings.TrimSpace(os.Getenv("TEST_REDIS_URL"))
	if redisURL == "" {
		t.Skip("integration tests skipped: TEST_REDIS_URL is not set")
	}
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	rdb := goredis.NewClient(opts)
	defer rdb.Close()
	ctx := context.Background()
	rdb.Del(ctx, redisKey("user-a", KeyGoals), redisKey("user-b", KeyGoals))
	exerciseBackend(t, NewRedis(rdb))
}

func TestForUserRequiresID(t *testing.T) {
	if _, err := ForUser(NewMemory(), "  "); !errors.Is(err, ErrNoUserID) {
		t.Fatalf("expected ErrNoUserID, got %v", err)
	}
}

func TestUserStoreEntries(t *testing.T) {
	ctx := context.Background()
	us, err := ForUser(NewMemory(), "user-1")
	if err != nil {
		t.Fatalf("for user: %v", err)
	}

	entries, err := us.Entries(ctx)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty entries, got %v err=%v", entries, err)
	}

	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	first := journal.NewEntry("Slept 7 hours", base)
	second := journal.NewEntry("Ran for 20 minutes", base.Add(time.Hour))
	if err := us.AddEntry(ctx, first); err != nil {
		t.Fatalf("add first: %v", err)
	}
	if err := us.AddEntry(ctx, second); err != nil {
		t.Fatalf("add second: %v", err)
	}

	entries, _ = us.Entries(ctx)
	if len(entries) != 2 || entries[0].ID != second.ID {
		t.Fatalf("expected newest first, got %+v", entries)
	}

	if err := us.SoftDeleteEntry(ctx, first.ID, base.Add(2*time.Hour)); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if err := us.SoftDeleteEntry(ctx, first.ID, base.Add(3*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected repeat delete to report not found, got %v", err)
	}
	entries, _ = us.Entries(ctx)
	if len(journal.Live(entries)) != 1 {
		t.Fatalf("expected one live entry, got %+v", entries)
	}
}

func TestUserStoreSnapshotsDefaultToEmpty(t *testing.T) {
	ctx := context.Background()
	us, _ := ForUser(NewMemory(), "user-1")

	goals, err := us.Goals(ctx)
	if err != nil || goals.Goals == nil || goals.Habits == nil {
		t.Fatalf("expected empty non-nil goals, got %+v err=%v", goals, err)
	}
	nutrition, err := us.Nutrition(ctx)
	if err != nil || nutrition.Meals == nil {
		t.Fatalf("expected empty nutrition, got %+v err=%v", nutrition, err)
	}

	nutrition.WaterIntake = 6
	if err := us.SaveNutrition(ctx, nutrition); err != nil {
		t.Fatalf("save nutrition: %v", err)
	}
	reloaded, _ := us.Nutrition(ctx)
	if reloaded.WaterIntake != 6 {
		t.Fatalf("expected water intake persisted, got %+v", reloaded)
	}
}
