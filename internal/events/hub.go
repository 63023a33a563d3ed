package events

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	subscriberBuffer = 32
	writeTimeout     = 5 * time.Second
)

// Hub broadcasts events to dashboard clients over websockets. A slow client
// whose buffer is full misses events rather than blocking the workflow.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
}

type subscriber struct {
	workflowID string // empty receives every workflow
	ch         chan Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*subscriber]struct{}),
	}
}

// LogEvent implements Logger by broadcasting the event.
func (h *Hub) LogEvent(event Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers {
		if sub.workflowID != "" && sub.workflowID != event.WorkflowID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			slog.Warn("event subscriber is slow, dropping event", "type", event.Type)
		}
	}
	return nil
}

// Subscribe registers a subscriber for one workflow, or all of them when
// workflowID is empty. The returned function unsubscribes.
func (h *Hub) Subscribe(workflowID string) (<-chan Event, func()) {
	sub := &subscriber{workflowID: workflowID, ch: make(chan Event, subscriberBuffer)}

	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, sub)
			h.mu.Unlock()
			close(sub.ch)
		})
	}
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// ServeHTTP upgrades the request to a websocket and streams events until the
// client goes away. ?workflow= narrows the stream to one workflow.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	events, unsubscribe := h.Subscribe(r.URL.Query().Get("workflow"))
	defer unsubscribe()

	// Reading is only needed to notice the client closing.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(ctx, conn, event); err != nil {
				slog.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, event Event) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, event)
}
