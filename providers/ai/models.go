package ai

import (
	"encoding/json"

	"github.com/leofalp/calcagent/internal/jsonschema"
)

/*
	##### PROVIDER INPUT #####
*/

// ChatRequest is one round trip to the model: the conversation so far plus
// the capabilities it may call.
type ChatRequest struct {
	Model            string            `json:"model,omitempty"`
	Messages         []Message         `json:"messages"`                // Conversation without the system prompt
	SystemPrompt     string            `json:"system_prompt,omitempty"` // Sent first, as a system message
	Tools            []ToolDescription `json:"tools,omitempty"`
	GenerationConfig *GenerationConfig `json:"generation_config,omitempty"`
	ToolChoice       string            `json:"tool_choice,omitempty"` // "auto" (default), "none" or "required"
}

type ToolDescription struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// Message is a single conversation turn.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`

	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // role=assistant
	ToolCallID string     `json:"tool_call_id,omitempty"` // role=tool, links the answer to its call
	Name       string     `json:"name,omitempty"`         // role=tool, capability that answered

	Reasoning string `json:"reasoning,omitempty"` // Chain-of-thought returned by reasoning models
}

type GenerationConfig struct {
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float32 `json:"temperature,omitempty"` // [0..2]; zero leaves the provider default
}

/*
	##### PROVIDER OUTPUT #####
*/

type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
	CachedTokens     int `json:"cached_tokens,omitempty"`
}

// ChatResponse is the provider-neutral view of a completion.
type ChatResponse struct {
	Id           string     `json:"id"`
	Model        string     `json:"model"`
	Created      int64      `json:"created"`
	Content      string     `json:"content"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason,omitempty"`
	Usage        *Usage     `json:"usage,omitempty"`
	Reasoning    string     `json:"reasoning,omitempty"`
}

// ToolCall is a capability invocation requested by the model.
type ToolCall struct {
	ID       string           `json:"id,omitempty"`
	Type     string           `json:"type"` // "function"
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON text as produced by the model, possibly malformed
}

// ToolResult is the JSON envelope sent back to the model when a tool call
// could not be dispatched at all (unknown capability, bad call). Capability
// output itself is plain text and is not wrapped.
type ToolResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"` // Machine-readable code, e.g. "tool_not_found"
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func NewToolResultSuccess(data any) ToolResult {
	return ToolResult{Success: true, Data: data}
}

func NewToolResultError(errorType, message string) ToolResult {
	return ToolResult{Success: false, Error: errorType, Message: message}
}

func (tr ToolResult) ToJSON() (string, error) {
	bytes, err := json.Marshal(tr)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

/*
	##### ENUMS #####
*/

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

const (
	FinishReasonStop      = "stop"
	FinishReasonToolCalls = "tool_calls"
	FinishReasonLength    = "length"
	FinishReasonFilter    = "content_filter"
)
