package observability

// LLM request attributes.
const (
	AttrLLMProvider     = "llm.provider"
	AttrLLMModel        = "llm.model"
	AttrLLMEndpoint     = "llm.endpoint"
	AttrLLMResponseID   = "llm.response.id"
	AttrLLMFinishReason = "llm.finish_reason"
	AttrLLMTemperature  = "llm.temperature"

	AttrLLMTokensPrompt     = "llm.tokens.prompt"     // #nosec G101 -- LLM tokens, not credentials
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- LLM tokens, not credentials
	AttrLLMTokensTotal      = "llm.tokens.total"      // #nosec G101 -- LLM tokens, not credentials
)

// Capability attributes.
const (
	AttrToolName     = "tool.name"
	AttrToolInput    = "tool.input"
	AttrToolOutput   = "tool.output"
	AttrToolDuration = "tool.duration"
	AttrToolFailed   = "tool.failed"
	AttrToolCallID   = "tool.call_id"
)

// Agent loop attributes.
const (
	AttrAgentRunID         = "agent.run_id"
	AttrAgentQuestion      = "agent.question"
	AttrAgentIteration     = "agent.iteration"
	AttrAgentMaxIterations = "agent.max_iterations"
	AttrAgentToolsCount    = "agent.tools_count"
	AttrAgentAnswer        = "agent.answer"
)

// HTTP attributes.
const (
	AttrHTTPMethod           = "http.method"
	AttrHTTPURL              = "http.url"
	AttrHTTPStatusCode       = "http.status_code"
	AttrHTTPRequestBodySize  = "http.request.body.size"
	AttrHTTPResponseBodySize = "http.response.body.size"
	AttrHTTPDuration         = "http.duration"
)

// Memory attributes.
const (
	AttrMemoryMessageRole   = "memory.message.role"
	AttrMemoryTotalMessages = "memory.total_messages"
)

const (
	AttrError             = "error"
	AttrStatus            = "status"
	AttrStatusDescription = "status_description"
	AttrDuration          = "duration"
)

// Span names.
const (
	SpanAgentRun        = "agent.run"
	SpanLLMRequest      = "llm.request"
	SpanToolExecution   = "tool.execution"
	SpanMemoryOperation = "memory.operation"
)

// Event names.
const (
	EventToolExecutionStart = "tool.execution.start"
	EventToolExecutionEnd   = "tool.execution.end"
	EventToolUnknown        = "tool.unknown"

	EventAgentIteration   = "agent.iteration"
	EventAgentFinalAnswer = "agent.final_answer"
	EventAgentExhausted   = "agent.iterations_exhausted"

	EventHTTPRequestPrepared  = "http.request.prepared"
	EventHTTPRequestError     = "http.request.error"
	EventHTTPResponseReceived = "http.response.received"

	EventMemoryAppend = "memory.append"
	EventMemoryClear  = "memory.clear"
)

// Metric names.
const (
	MetricToolCalls       = "calcagent.tool.calls"
	MetricToolFailures    = "calcagent.tool.failures"
	MetricToolDuration    = "calcagent.tool.duration"
	MetricLLMRequests     = "calcagent.llm.requests"
	MetricLLMTokensTotal  = "calcagent.llm.tokens.total" // #nosec G101 -- LLM tokens, not credentials
	MetricAgentRuns       = "calcagent.agent.runs"
	MetricAgentIterations = "calcagent.agent.iterations"
)
