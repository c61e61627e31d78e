// Package utils provides shared low-level helpers used by the calcagent
// providers: JSON HTTP round-trips ([DoPostSync], [DoGetJSON]) with span events
// and logged body closes, an HTTP client constructor with a default timeout,
// string truncation and markup stripping, and the generic [Ptr] helper.
package utils
