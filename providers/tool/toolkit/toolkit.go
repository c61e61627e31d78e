package toolkit

import (
	"net/http"

	"github.com/leofalp/calcagent/providers/tool"
	"github.com/leofalp/calcagent/providers/tool/calculator"
	"github.com/leofalp/calcagent/providers/tool/serpapi"
	"github.com/leofalp/calcagent/providers/tool/wikipedia"
)

// Config is everything the three capabilities need. Zero values fall back to
// each adapter's defaults.
type Config struct {
	SearchKey     string
	SearchCount   int
	SearchBaseURL string

	Language           string
	WikipediaSentences int
	WikipediaMaxChars  int
	WikipediaBaseURL   string

	HTTPClient *http.Client
}

// Assemble builds fresh adapters for searchKey and language and returns the
// capabilities in a fixed order: calculadora, busqueda_web, wikipedia.
// An empty searchKey leaves web search unconfigured but still listed.
func Assemble(searchKey string, language string) []*tool.Capability {
	return AssembleWithConfig(Config{SearchKey: searchKey, Language: language})
}

func AssembleWithConfig(config Config) []*tool.Capability {
	searcher := serpapi.New(serpapi.Config{
		Count:      config.SearchCount,
		Language:   config.Language,
		BaseURL:    config.SearchBaseURL,
		HTTPClient: config.HTTPClient,
	})
	searcher.Initialize(config.SearchKey)

	encyclopedia := wikipedia.New(wikipedia.Config{
		Sentences:  config.WikipediaSentences,
		MaxChars:   config.WikipediaMaxChars,
		BaseURL:    config.WikipediaBaseURL,
		HTTPClient: config.HTTPClient,
	})
	encyclopedia.Initialize(config.Language)

	return []*tool.Capability{
		calculator.NewCalculatorTool(),
		searcher.NewSearchTool(),
		encyclopedia.NewWikipediaTool(),
	}
}

// Entry is one line of a status report.
type Entry struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Status      tool.Status `json:"status"`
}

// Status reports the configuration of each capability, in order.
func Status(capabilities []*tool.Capability) []Entry {
	entries := make([]Entry, 0, len(capabilities))
	for _, c := range capabilities {
		entries = append(entries, Entry{
			Name:        c.Name(),
			Description: c.Description(),
			Status:      c.Status(),
		})
	}
	return entries
}
