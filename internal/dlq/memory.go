package dlq

import (
	"context"
	"log/slog"
	"sync"
)

// MemoryQueue keeps quarantined messages in process memory. Contents are
// lost on restart; it exists for local runs and tests.
type MemoryQueue struct {
	mu       sync.Mutex
	messages []Message
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Send(ctx context.Context, m Message) error {
	if err := m.Validate(); err != nil {
		slog.Error("DLQ message rejected", "error", err)
		return err
	}

	q.mu.Lock()
	q.messages = append(q.messages, m)
	q.mu.Unlock()

	slog.Warn("event sent to DLQ", "event", m.EventName, "id", m.ID, "retry_count", m.RetryCount)
	return nil
}

func (q *MemoryQueue) GetEvents(ctx context.Context) ([]Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	snapshot := make([]Message, len(q.messages))
	copy(snapshot, q.messages)
	return snapshot, nil
}

func (q *MemoryQueue) DeleteEvent(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, m := range q.messages {
		if m.ID == id {
			q.messages = append(q.messages[:i], q.messages[i+1:]...)
			return nil
		}
	}
	return nil
}
