package inmemory

import (
	"context"
	"sync"

	"github.com/leofalp/calcagent/providers/ai"
	"github.com/leofalp/calcagent/providers/memory"
	"github.com/leofalp/calcagent/providers/observability"
)

// ArrayMemory keeps messages in insertion order.
type ArrayMemory struct {
	mu       sync.RWMutex
	messages []ai.Message
	window   int
}

var _ memory.Provider = (*ArrayMemory)(nil)

// New returns an unbounded store.
func New() *ArrayMemory {
	return &ArrayMemory{messages: []ai.Message{}}
}

// NewWindowed returns a store that keeps at most maxMessages. Zero or less
// means unbounded.
func NewWindowed(maxMessages int) *ArrayMemory {
	m := New()
	if maxMessages > 0 {
		m.window = maxMessages
	}
	return m
}

// AppendMessage stores a copy of message. Nil is ignored.
func (m *ArrayMemory) AppendMessage(ctx context.Context, message *ai.Message) {
	if message == nil {
		return
	}

	m.mu.Lock()
	m.messages = append(m.messages, *message)
	m.trimLocked()
	total := len(m.messages)
	m.mu.Unlock()

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventMemoryAppend,
			observability.String(observability.AttrMemoryMessageRole, string(message.Role)),
			observability.Int(observability.AttrMemoryTotalMessages, total),
		)
	}
}

// trimLocked drops the oldest messages beyond the window, then any leading
// tool answers left without the assistant message that requested them.
func (m *ArrayMemory) trimLocked() {
	if m.window == 0 || len(m.messages) <= m.window {
		return
	}
	start := len(m.messages) - m.window
	for start < len(m.messages) && m.messages[start].Role == ai.RoleTool {
		start++
	}
	kept := make([]ai.Message, len(m.messages)-start)
	copy(kept, m.messages[start:])
	m.messages = kept
}

func (m *ArrayMemory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages), nil
}

// AllMessages returns a copy of the history.
func (m *ArrayMemory) AllMessages(_ context.Context) ([]ai.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ai.Message, len(m.messages))
	copy(out, m.messages)
	return out, nil
}

// LastMessages returns a copy of up to the last n messages.
func (m *ArrayMemory) LastMessages(_ context.Context, n int) ([]ai.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n <= 0 {
		return []ai.Message{}, nil
	}
	if n > len(m.messages) {
		n = len(m.messages)
	}
	out := make([]ai.Message, n)
	copy(out, m.messages[len(m.messages)-n:])
	return out, nil
}

// ClearMessages empties the store, keeping its capacity.
func (m *ArrayMemory) ClearMessages(ctx context.Context) {
	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventMemoryClear)
	}
	m.mu.Lock()
	m.messages = m.messages[:0]
	m.mu.Unlock()
}
