package memory

import (
	"context"

	"github.com/leofalp/calcagent/providers/ai"
)

// Provider stores the conversation the agent replays to the model on every
// turn. Read methods return errors so a persistent store can report failures.
type Provider interface {
	AppendMessage(ctx context.Context, message *ai.Message)
	AllMessages(ctx context.Context) ([]ai.Message, error)
	LastMessages(ctx context.Context, n int) ([]ai.Message, error)
	Count(ctx context.Context) (int, error)
	ClearMessages(ctx context.Context)
}
