// Package parse recovers structured values from the loosely formatted text a
// language model sends as tool-call arguments. Payloads may be malformed
// JSON, wrapped in code fences, or shaped like a schema ({"type","value"})
// instead of data; [ParseStringAs] and [ExtractArgument] repair and unwrap
// them before giving up with an error.
package parse
