// Package observability defines the tracing, metrics and logging interfaces
// shared by the agent, the LLM client and the capabilities, plus the attribute
// and span names they record under (semconv.go).
//
// A [Provider] and the active [Span] travel through a [context.Context] via
// [ContextWithObserver] and [ContextWithSpan]. Code that finds neither simply
// records nothing. The slog subpackage is the only implementation shipped.
package observability
