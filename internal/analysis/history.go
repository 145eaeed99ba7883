package analysis

import (
	"context"
	"errors"
	"fmt"

	"healthjournal/internal/store"
)

const HistoryLimit = 30

// Documents is the per-user storage the orchestrator persists through.
// *store.UserStore satisfies it.
type Documents interface {
	UserID() string
	GetJSON(ctx context.Context, key string, v any) error
	PutJSON(ctx context.Context, key string, v any) error
}

// PushHistory prepends rec and drops the oldest records beyond limit.
func PushHistory(history []Record, rec Record, limit int) []Record {
	if limit <= 0 {
		limit = HistoryLimit
	}
	out := make([]Record, 0, min(len(history)+1, limit))
	out = append(out, rec)
	for _, r := range history {
		if len(out) == limit {
			break
		}
		out = append(out, r)
	}
	return out
}

// LoadHistory returns stored records newest first.
func LoadHistory(ctx context.Context, docs Documents) ([]Record, error) {
	var history []Record
	if err := docs.GetJSON(ctx, store.KeyAnalysisHistory, &history); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []Record{}, nil
		}
		return nil, err
	}
	return history, nil
}

func LoadLatest(ctx context.Context, docs Documents) (Record, bool, error) {
	var rec Record
	if err := docs.GetJSON(ctx, store.KeyLatestAnalysis, &rec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	return rec, true, nil
}

// SaveRecord stores rec as the latest analysis and appends it to history.
func SaveRecord(ctx context.Context, docs Documents, rec Record, limit int) error {
	history, err := LoadHistory(ctx, docs)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if err := docs.PutJSON(ctx, store.KeyLatestAnalysis, rec); err != nil {
		return fmt.Errorf("save latest analysis: %w", err)
	}
	if err := docs.PutJSON(ctx, store.KeyAnalysisHistory, PushHistory(history, rec, limit)); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}
