// Package react is the agent loop the assistant runs on. An [Agent] sends the
// conversation and the tool catalog to an [ai.Provider], executes the tool
// calls the model asks for, feeds their text back and repeats until the model
// answers in plain text or [WithMaxIterations] is reached.
//
// The loop never decides which tool to use; the model does. Unknown tool
// names are answered with an [ai.ToolResult] error so the model can recover.
// Requests to the model pass through a [Middleware] chain (see
// [NewLoggingMiddleware] and [NewTimeoutMiddleware]).
package react
