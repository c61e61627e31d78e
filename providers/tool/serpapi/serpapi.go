package serpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/leofalp/calcagent/core/cost"
	"github.com/leofalp/calcagent/internal/utils"
	"github.com/leofalp/calcagent/providers/tool"
)

// ToolName is the name the model calls web search by.
const ToolName = "busqueda_web"

const (
	defaultCount = 3
	maxCount     = 10
)

const baseURL = "https://serpapi.com/search.json"

// UnavailableText is answered when no API key is configured.
const UnavailableText = "La búsqueda web no está disponible: no hay una clave de SerpAPI configurada (SERPAPI_API_KEY)."

const description = "Busca información actual en internet con Google. Úsala para noticias, precios, " +
	"cotizaciones, el clima o cualquier dato que pueda haber cambiado recientemente. " +
	"Devuelve los primeros resultados con título, extracto y enlace."

// Config holds what the adapter needs to reach SerpAPI. An empty APIKey is a
// valid, unconfigured state.
type Config struct {
	APIKey     string
	Count      int    // results to format, 1..10; 0 means 3
	Language   string // optional hl parameter, e.g. "es"
	BaseURL    string // overrides the SerpAPI endpoint
	HTTPClient *http.Client
}

// Input is the argument of the search capability.
type Input struct {
	Query string `json:"consulta" jsonschema:"description=Texto a buscar en internet"`
}

// Output is the typed result of [Searcher.SearchResults].
type Output struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer,omitempty"`
	Results []Result `json:"results"`
}

// Result is one organic search hit.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

type searchResponse struct {
	Error          string          `json:"error,omitempty"`
	AnswerBox      *answerBox      `json:"answer_box,omitempty"`
	OrganicResults []organicResult `json:"organic_results,omitempty"`
}

type answerBox struct {
	Title   string `json:"title,omitempty"`
	Answer  string `json:"answer,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

type organicResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
}

// Searcher is the web-search adapter.
type Searcher struct {
	mu     sync.RWMutex
	config Config
	client *http.Client
}

// New returns a searcher for config. It never fails: a missing key only
// makes the searcher report itself unconfigured.
func New(config Config) *Searcher {
	config.APIKey = strings.TrimSpace(config.APIKey)
	client := config.HTTPClient
	if client == nil {
		client = utils.NewHTTPClient(0)
	}
	return &Searcher{config: config, client: client}
}

// Initialize replaces the API key. Calling it again with the same key has no
// further effect.
func (s *Searcher) Initialize(apiKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.APIKey = strings.TrimSpace(apiKey)
}

func (s *Searcher) Status() tool.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config.APIKey == "" {
		return tool.Status{Configured: false, Detail: "falta SERPAPI_API_KEY"}
	}
	return tool.Status{Configured: true, Detail: "SerpAPI (Google)"}
}

// Search answers with the formatted results for query, or with text
// explaining why there are none. It never returns an error.
func (s *Searcher) Search(ctx context.Context, query string) string {
	text, _ := s.handle(ctx, query)
	return text
}

// NewSearchTool wraps s as the busqueda_web capability.
func (s *Searcher) NewSearchTool() *tool.Capability {
	return tool.NewCapability[Input](ToolName, s.handle,
		tool.WithDescription(description),
		tool.WithMetrics(cost.ToolMetrics{
			Amount:      0.015, // $75 / 5000 searches on the developer plan
			Currency:    "USD",
			Description: "por búsqueda",
		}),
		tool.WithStatus(s.Status),
	)
}

func (s *Searcher) handle(ctx context.Context, query string) (string, error) {
	out, err := s.SearchResults(ctx, Input{Query: query})
	switch {
	case errors.Is(err, tool.ErrUnconfigured):
		return UnavailableText, err
	case errors.Is(err, tool.ErrInputRejected):
		return "Error en la búsqueda: la consulta está vacía; indica qué quieres buscar.", err
	case err != nil:
		return "Error en la búsqueda: " + detail(err), err
	}
	return format(out), nil
}

// SearchResults performs exactly one request to SerpAPI. Errors wrap
// tool.ErrUnconfigured, tool.ErrInputRejected or tool.ErrProvider.
func (s *Searcher) SearchResults(ctx context.Context, input Input) (Output, error) {
	s.mu.RLock()
	config := s.config
	s.mu.RUnlock()

	query := strings.TrimSpace(input.Query)
	if config.APIKey == "" {
		return Output{Query: query}, tool.ErrUnconfigured
	}
	if query == "" {
		return Output{}, fmt.Errorf("%w: empty query", tool.ErrInputRejected)
	}

	count := clampCount(config.Count)

	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("num", strconv.Itoa(count))
	params.Set("api_key", config.APIKey)
	if config.Language != "" {
		params.Set("hl", config.Language)
	}

	endpoint := config.BaseURL
	if endpoint == "" {
		endpoint = baseURL
	}

	_, resp, err := utils.DoGetJSON[searchResponse](ctx, s.client, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Output{Query: query}, fmt.Errorf("%w: %w", tool.ErrProvider, err)
	}
	if resp.Error != "" {
		// SerpAPI reports "no results" through the error field too.
		if strings.Contains(strings.ToLower(resp.Error), "hasn't returned any results") {
			return Output{Query: query}, nil
		}
		return Output{Query: query}, fmt.Errorf("%w: %s", tool.ErrProvider, resp.Error)
	}

	out := Output{Query: query}
	if box := resp.AnswerBox; box != nil {
		out.Answer = utils.StripHTMLTags(firstNonEmpty(box.Answer, box.Snippet, box.Title))
	}
	for _, r := range resp.OrganicResults {
		if len(out.Results) >= count {
			break
		}
		out.Results = append(out.Results, Result{
			Title:   strings.TrimSpace(utils.StripHTMLTags(r.Title)),
			Snippet: strings.TrimSpace(utils.StripHTMLTags(r.Snippet)),
			Link:    r.Link,
		})
	}
	return out, nil
}

func format(out Output) string {
	if out.Answer == "" && len(out.Results) == 0 {
		return fmt.Sprintf("Búsqueda de '%s': no se encontraron resultados.", out.Query)
	}

	var b strings.Builder
	if out.Answer != "" {
		fmt.Fprintf(&b, "Respuesta destacada: %s\n\n", out.Answer)
	}
	for i, r := range out.Results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Title)
		if r.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", utils.TruncateText(r.Snippet, 300))
		}
		fmt.Fprintf(&b, "   %s\n", r.Link)
	}
	return strings.TrimRight(b.String(), "\n")
}

func clampCount(n int) int {
	switch {
	case n <= 0:
		return defaultCount
	case n > maxCount:
		return maxCount
	}
	return n
}

// detail drops the sentinel prefix so the text reads naturally.
func detail(err error) string {
	msg := err.Error()
	msg = strings.TrimPrefix(msg, tool.ErrProvider.Error()+": ")
	return msg
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
