package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"healthjournal/internal/journal"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrNoUserID = errors.New("store: user id is required")
)

// Document keys stored per user.
const (
	KeyEntries         = "journalEntries"
	KeyLatestAnalysis  = "journalAnalysis"
	KeyAnalysisHistory = "journalAnalysisHistory"
	KeyGoals           = "goalsData"
	KeyNutrition       = "nutritionData"
)

// Backend is a flat document store partitioned by user id. Writes are
// last-writer-wins per (user, key).
type Backend interface {
	Get(ctx context.Context, userID, key string) ([]byte, error)
	Put(ctx context.Context, userID, key string, value []byte) error
	Delete(ctx context.Context, userID, key string) error
}

// UserStore scopes a Backend to one user so callers never build keys by
// hand.
type UserStore struct {
	backend Backend
	userID  string
}

func ForUser(backend Backend, userID string) (*UserStore, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrNoUserID
	}
	if backend == nil {
		return nil, errors.New("store: backend is nil")
	}
	return &UserStore{backend: backend, userID: userID}, nil
}

func (s *UserStore) UserID() string {
	return s.userID
}

// GetJSON decodes the document at key into v. Missing documents return
// ErrNotFound.
func (s *UserStore) GetJSON(ctx context.Context, key string, v any) error {
	raw, err := s.backend.Get(ctx, s.userID, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *UserStore) PutJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.backend.Put(ctx, s.userID, key, raw)
}

func (s *UserStore) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, s.userID, key)
}

// Entries returns every stored entry, newest first, including soft-deleted
// ones.
func (s *UserStore) Entries(ctx context.Context) ([]journal.Entry, error) {
	var entries []journal.Entry
	if err := s.GetJSON(ctx, KeyEntries, &entries); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []journal.Entry{}, nil
		}
		return nil, err
	}
	return entries, nil
}

func (s *UserStore) AddEntry(ctx context.Context, entry journal.Entry) error {
	entries, err := s.Entries(ctx)
	if err != nil {
		return err
	}
	entries = append([]journal.Entry{entry}, entries...)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return s.PutJSON(ctx, KeyEntries, entries)
}

func (s *UserStore) SoftDeleteEntry(ctx context.Context, id string, now time.Time) error {
	entries, err := s.Entries(ctx)
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].ID != id || entries[i].Deleted() {
			continue
		}
		deletedAt := now.UTC()
		entries[i].DeletedAt = &deletedAt
		return s.PutJSON(ctx, KeyEntries, entries)
	}
	return ErrNotFound
}

func (s *UserStore) Goals(ctx context.Context) (journal.GoalsData, error) {
	data := journal.GoalsData{Goals: []journal.Goal{}, Habits: []journal.Habit{}}
	if err := s.GetJSON(ctx, KeyGoals, &data); err != nil && !errors.Is(err, ErrNotFound) {
		return journal.GoalsData{}, err
	}
	return data, nil
}

func (s *UserStore) SaveGoals(ctx context.Context, data journal.GoalsData) error {
	return s.PutJSON(ctx, KeyGoals, data)
}

func (s *UserStore) Nutrition(ctx context.Context) (journal.Nutrition, error) {
	data := journal.Nutrition{Meals: []journal.Meal{}}
	if err := s.GetJSON(ctx, KeyNutrition, &data); err != nil && !errors.Is(err, ErrNotFound) {
		return journal.Nutrition{}, err
	}
	return data, nil
}

func (s *UserStore) SaveNutrition(ctx context.Context, data journal.Nutrition) error {
	return s.PutJSON(ctx, KeyNutrition, data)
}
