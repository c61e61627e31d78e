// Package wikipedia is the encyclopedia capability. Each lookup runs one
// MediaWiki search for the query, takes the first-ranked article and returns
// its introduction as Markdown together with the article link.
//
// The language selects the wiki host (es.wikipedia.org by default). Codes
// that do not look like a wiki language leave the client unconfigured.
package wikipedia
