package wikipedia

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/calcagent/core/cost"
	"github.com/leofalp/calcagent/internal/utils"
	"github.com/leofalp/calcagent/providers/tool"
)

// ToolName is the name the model calls the encyclopedia by.
const ToolName = "wikipedia"

const (
	DefaultLanguage  = "es"
	DefaultSentences = 4
	DefaultMaxChars  = 1200
)

const apiURLFormat = "https://%s.wikipedia.org/w/api.php"

var languagePattern = regexp.MustCompile(`^[a-z]{2,3}(-[a-z]+)?$`)

const description = "Consulta Wikipedia para obtener datos enciclopédicos: biografías, historia, " +
	"geografía, ciencia, definiciones y fechas de acontecimientos. Devuelve el resumen del " +
	"artículo que mejor coincide con la consulta y su enlace."

// Config holds the lookup settings. Zero values fall back to the defaults.
type Config struct {
	Language   string
	Sentences  int    // sentences requested for the intro extract
	MaxChars   int    // bound on the summary length, in runes
	BaseURL    string // full api.php endpoint; overrides the per-language host
	HTTPClient *http.Client
}

// Input is the argument of the encyclopedia capability.
type Input struct {
	Query string `json:"consulta" jsonschema:"description=Tema o nombre a buscar en Wikipedia"`
}

// Output is the typed result of [Client.Summary].
type Output struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

type queryResponse struct {
	Error *apiError `json:"error,omitempty"`
	Query *struct {
		Pages []page `json:"pages"`
	} `json:"query,omitempty"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type page struct {
	PageID  int    `json:"pageid"`
	Title   string `json:"title"`
	Index   int    `json:"index"`
	Missing bool   `json:"missing,omitempty"`
	Extract string `json:"extract"`
	FullURL string `json:"fullurl"`
}

// Client is the encyclopedia adapter.
type Client struct {
	mu     sync.RWMutex
	config Config
	client *http.Client
}

// New returns a client for config. An unsupported language does not fail
// construction; the client reports itself unconfigured instead.
func New(config Config) *Client {
	config.Language = normalizeLanguage(config.Language)
	if config.Sentences <= 0 {
		config.Sentences = DefaultSentences
	}
	if config.MaxChars <= 0 {
		config.MaxChars = DefaultMaxChars
	}
	client := config.HTTPClient
	if client == nil {
		client = utils.NewHTTPClient(0)
	}
	return &Client{config: config, client: client}
}

// Initialize sets the article language. An empty language means Spanish.
func (c *Client) Initialize(language string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.Language = normalizeLanguage(language)
}

func (c *Client) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.Language
}

func (c *Client) Status() tool.Status {
	lang := c.Language()
	if !languagePattern.MatchString(lang) {
		return tool.Status{Configured: false, Detail: fmt.Sprintf("idioma no soportado '%s'", lang)}
	}
	return tool.Status{Configured: true, Detail: "idioma: " + lang}
}

// Lookup answers with the summary of the best-matching article, or with text
// saying why there is none. It never returns an error.
func (c *Client) Lookup(ctx context.Context, query string) string {
	text, _ := c.handle(ctx, query)
	return text
}

// NewWikipediaTool wraps c as the wikipedia capability.
func (c *Client) NewWikipediaTool() *tool.Capability {
	return tool.NewCapability[Input](ToolName, c.handle,
		tool.WithDescription(description),
		tool.WithMetrics(cost.ToolMetrics{Amount: 0, Description: "API pública"}),
		tool.WithStatus(c.Status),
	)
}

func (c *Client) handle(ctx context.Context, query string) (string, error) {
	out, err := c.Summary(ctx, Input{Query: query})
	switch {
	case errors.Is(err, tool.ErrUnconfigured):
		return fmt.Sprintf("Wikipedia no está disponible: el idioma '%s' no es válido.", c.Language()), err
	case errors.Is(err, tool.ErrInputRejected):
		return "Error consultando Wikipedia: la consulta está vacía; indica qué tema buscar.", err
	case errors.Is(err, tool.ErrNotFound):
		return fmt.Sprintf("No se encontró ningún artículo de Wikipedia para '%s'.", strings.TrimSpace(query)), err
	case err != nil:
		return "Error consultando Wikipedia: " + strings.TrimPrefix(err.Error(), tool.ErrProvider.Error()+": "), err
	}

	text := out.Title + "\n\n" + out.Summary
	if out.URL != "" {
		text += "\n\nFuente: " + out.URL
	}
	return text, nil
}

// Summary fetches the top-ranked article for the query with exactly one
// request. Errors wrap tool.ErrUnconfigured, tool.ErrInputRejected,
// tool.ErrNotFound or tool.ErrProvider.
func (c *Client) Summary(ctx context.Context, input Input) (Output, error) {
	c.mu.RLock()
	config := c.config
	c.mu.RUnlock()

	if !languagePattern.MatchString(config.Language) {
		return Output{}, fmt.Errorf("%w: unsupported language %q", tool.ErrUnconfigured, config.Language)
	}
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return Output{}, fmt.Errorf("%w: empty query", tool.ErrInputRejected)
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("generator", "search")
	params.Set("gsrsearch", query)
	params.Set("gsrlimit", "1")
	params.Set("prop", "extracts|info")
	params.Set("exintro", "1")
	params.Set("exsentences", strconv.Itoa(config.Sentences))
	params.Set("inprop", "url")
	params.Set("redirects", "1")

	endpoint := config.BaseURL
	if endpoint == "" {
		endpoint = fmt.Sprintf(apiURLFormat, config.Language)
	}

	_, resp, err := utils.DoGetJSON[queryResponse](ctx, c.client, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Output{}, fmt.Errorf("%w: %w", tool.ErrProvider, err)
	}
	if resp.Error != nil {
		return Output{}, fmt.Errorf("%w: %s (%s)", tool.ErrProvider, resp.Error.Info, resp.Error.Code)
	}

	top, ok := topPage(resp)
	if !ok {
		return Output{}, fmt.Errorf("%w: %q", tool.ErrNotFound, query)
	}

	summary, err := toMarkdown(top.Extract)
	if err != nil {
		return Output{}, fmt.Errorf("%w: converting extract: %w", tool.ErrProvider, err)
	}
	if summary == "" {
		summary = "(el artículo no tiene resumen)"
	}

	return Output{
		Title:   top.Title,
		Summary: utils.TruncateText(summary, config.MaxChars),
		URL:     top.FullURL,
	}, nil
}

// topPage picks the provider's first-ranked page. Pages come back keyed by
// id, so rank order lives in the search index field.
func topPage(resp *queryResponse) (page, bool) {
	if resp.Query == nil {
		return page{}, false
	}
	pages := make([]page, 0, len(resp.Query.Pages))
	for _, p := range resp.Query.Pages {
		if !p.Missing {
			pages = append(pages, p)
		}
	}
	if len(pages) == 0 {
		return page{}, false
	}
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })
	return pages[0], true
}

func toMarkdown(extract string) (string, error) {
	if strings.TrimSpace(extract) == "" {
		return "", nil
	}
	markdown, err := htmltomarkdown.ConvertString(extract)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(markdown), nil
}

func normalizeLanguage(language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return DefaultLanguage
	}
	return language
}
