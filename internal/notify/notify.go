package notify

import (
	"context"
	"sync"
	"time"
)

const (
	KindEntriesChanged   = "entries.changed"
	KindAnalysisCreated  = "analysis.created"
	KindGoalsChanged     = "goals.changed"
	KindNutritionChanged = "nutrition.changed"
)

// Event tells subscribers that one of a user's documents changed. It carries
// ids only; subscribers reload what they need.
type Event struct {
	UserID   string    `json:"userId"`
	Kind     string    `json:"kind"`
	RecordID string    `json:"recordId,omitempty"`
	At       time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

const subscriberBuffer = 16

// Hub fans events out to in-process subscribers of the same user. Slow
// subscribers drop events rather than block publishers.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan Event
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan Event)}
}

func (h *Hub) Publish(_ context.Context, ev Event) error {
	h.Deliver(ev)
	return nil
}

// Deliver hands ev to local subscribers only.
func (h *Hub) Deliver(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[ev.UserID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe returns a channel of the user's events and a cancel func that
// closes it.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]chan Event)
	}
	h.subs[userID][id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], id)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
