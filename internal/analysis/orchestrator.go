package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"healthjournal/internal/ai"
	"healthjournal/internal/journal"
	"healthjournal/internal/logger"
	"healthjournal/internal/notify"
)

type Options struct {
	// Model overrides the client's default model when set.
	Model string
	// Timeout bounds the whole model exchange, retries included.
	Timeout      time.Duration
	HistoryLimit int
	Now          func() time.Time
}

// Orchestrator turns journal entries into an analysis record. The model is
// tried first; any failure degrades to the local summary.
type Orchestrator struct {
	ai        ai.Client
	cache     *Cache
	publisher notify.Publisher
	log       *logger.Logger
	opts      Options
}

func NewOrchestrator(client ai.Client, cache *Cache, publisher notify.Publisher, log *logger.Logger, opts Options) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = HistoryLimit
	}
	return &Orchestrator{
		ai:        client,
		cache:     cache,
		publisher: publisher,
		log:       log.With("component", "analysis"),
		opts:      opts,
	}
}

// Analyze always returns a usable record. With no live entries it returns
// DefaultRecord without calling the model or persisting anything. When docs
// is non-nil the record is saved and a change event published; failures
// there are logged only.
func (o *Orchestrator) Analyze(ctx context.Context, docs Documents, entries []journal.Entry) Record {
	now := o.opts.Now()
	normalized := Normalize(entries, now)
	if len(normalized) == 0 {
		return DefaultRecord(now)
	}

	summary := Summarize(normalized)
	rec, err := o.remote(ctx, normalized, summary)
	if err != nil {
		kv := []any{"entries", len(normalized), "error", err}
		if docs != nil {
			kv = append(kv, "user_id", docs.UserID())
		}
		if errors.Is(err, ai.ErrNotConfigured) {
			o.log.Debug("model not configured, using local summary", kv...)
		} else {
			o.log.Warn("model analysis failed, using local summary", kv...)
		}
		rec = summary.Record()
	}
	rec.ID = uuid.NewString()
	rec.Timestamp = now.UTC()
	rec.EntryCount = len(normalized)

	if docs != nil {
		o.persist(ctx, docs, rec)
	}
	return rec
}

func (o *Orchestrator) remote(ctx context.Context, entries []NormalizedEntry, summary Summary) (Record, error) {
	if o.ai == nil {
		return Record{}, ai.ErrNotConfigured
	}
	key := CacheKey(entries)
	if answer, ok := o.cache.Get(key); ok {
		if reply, err := ParseReply(answer); err == nil {
			o.log.Debug("analysis cache hit", "entries", len(entries))
			return Merge(reply, summary), nil
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, o.opts.Timeout)
	defer cancel()
	resp, err := o.ai.Query(callCtx, ai.Request{
		Model:        o.opts.Model,
		SystemPrompt: SystemPrompt,
		UserPrompt:   BuildPrompt(entries),
		JSON:         true,
	})
	if err != nil {
		return Record{}, err
	}
	reply, err := ParseReply(resp.Answer)
	if err != nil {
		return Record{}, err
	}
	o.cache.Put(key, resp.Answer)
	o.log.Debug("model analysis accepted", "model", resp.Model, "attempts", resp.Attempts, "usage_total", resp.Usage.TotalTokens)
	return Merge(reply, summary), nil
}

func (o *Orchestrator) persist(ctx context.Context, docs Documents, rec Record) {
	if err := SaveRecord(ctx, docs, rec, o.opts.HistoryLimit); err != nil {
		o.log.Error("persist analysis failed", "user_id", docs.UserID(), "error", err)
		return
	}
	if o.publisher == nil {
		return
	}
	ev := notify.Event{UserID: docs.UserID(), Kind: notify.KindAnalysisCreated, RecordID: rec.ID, At: rec.Timestamp}
	if err := o.publisher.Publish(ctx, ev); err != nil {
		o.log.Warn("publish analysis event failed", "user_id", docs.UserID(), "error", err)
	}
}
