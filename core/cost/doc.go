// Package cost prices an agent run: per-call capability costs
// ([ToolMetrics]), per-token model prices ([ModelCost]) and the running
// [RunSummary] the agent fills in.
package cost
