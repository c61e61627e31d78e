// Package serpapi is the web-search capability. It sends one Google query
// through SerpAPI per call and formats the answer box and the top organic
// results as plain text for the model.
//
// A [Searcher] without an API key is valid; it answers every search with
// [UnavailableText] and never touches the network.
package serpapi
