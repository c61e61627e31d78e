//go:build integration

package openai

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/leofalp/calcagent/providers/ai"
)

// TestSendMessage_Integration completes a trivial prompt against the real
// endpoint. Requires DEEPSEEK_API_KEY (read from .env when present).
func TestSendMessage_Integration(t *testing.T) {
	if os.Getenv("DEEPSEEK_API_KEY") == "" {
		t.Fatal("DEEPSEEK_API_KEY is required for integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	provider := New()
	resp, err := provider.SendMessage(ctx, ai.ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "Responde exactamente: hola mundo"}},
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if !strings.Contains(strings.ToLower(resp.Content), "hola") {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if !provider.IsStopMessage(resp) {
		t.Error("expected a final answer")
	}
}
