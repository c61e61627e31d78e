// Package ai holds the provider-neutral chat types ([ChatRequest],
// [ChatResponse], [Message], [ToolCall]) and the [Provider] interface the
// agent loop talks to. Wire formats live in the provider subpackages.
package ai
