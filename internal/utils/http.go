package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/leofalp/calcagent/providers/observability"
)

// DefaultHTTPTimeout bounds every outbound request made through a client
// built by [NewHTTPClient].
const DefaultHTTPTimeout = 15 * time.Second

// NewHTTPClient returns an http.Client with the given timeout, falling back to
// [DefaultHTTPTimeout] when timeout is zero or negative.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

// CloseWithLog closes c and logs, rather than returns, any error. It is meant
// for deferred response-body closes where the primary error must win.
func CloseWithLog(c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}

// DoPostSync performs a synchronous HTTP POST request with a JSON body and
// decodes a JSON response into OutputStruct.
//
// Context errors and transport failures are returned wrapped. Non-2xx statuses
// return an error carrying the status code and body. Decoding errors include a
// truncated preview of the body.
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, body any) (*http.Response, *OutputStruct, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	return do[OutputStruct](ctx, client, req, len(jsonBody))
}

// DoGetJSON performs a synchronous HTTP GET request and decodes the JSON
// response into OutputStruct. Extra headers are applied as given. Error
// handling follows [DoPostSync].
func DoGetJSON[OutputStruct any](ctx context.Context, client *http.Client, url string, headers map[string]string) (*http.Response, *OutputStruct, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return do[OutputStruct](ctx, client, req, 0)
}

func do[OutputStruct any](ctx context.Context, client *http.Client, req *http.Request, requestSize int) (*http.Response, *OutputStruct, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if span != nil {
		span.AddEvent(observability.EventHTTPRequestPrepared,
			observability.String(observability.AttrHTTPMethod, req.Method),
			observability.String(observability.AttrHTTPURL, RedactURL(req.URL)),
			observability.Int(observability.AttrHTTPRequestBodySize, requestSize),
		)
	}

	requestStart := time.Now()
	res, err := httpClient.Do(req)
	requestDuration := time.Since(requestStart)

	if err != nil {
		err = redactError(err, req.URL)
		if span != nil {
			span.AddEvent(observability.EventHTTPRequestError,
				observability.Error(err),
				observability.Duration(observability.AttrHTTPDuration, requestDuration),
			)
		}
		return res, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer CloseWithLog(res.Body)

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return res, nil, fmt.Errorf("error reading response body: %w", err)
	}

	if span != nil {
		span.AddEvent(observability.EventHTTPResponseReceived,
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(respBody)),
			observability.Duration(observability.AttrHTTPDuration, requestDuration),
		)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res, nil, &StatusError{StatusCode: res.StatusCode, Body: TruncateString(string(respBody), 300)}
	}

	var resStruct OutputStruct
	if err = json.Unmarshal(respBody, &resStruct); err != nil {
		return res, nil, fmt.Errorf("error unmarshaling response body (status %d): %w\nResponse preview: %s", res.StatusCode, err, TruncateString(string(respBody), 500))
	}

	return res, &resStruct, nil
}

// RedactURL renders u without credentials, masking query parameters that
// carry API keys.
func RedactURL(u *url.URL) string {
	redacted := *u
	query := redacted.Query()
	for _, name := range []string{"api_key", "apikey", "key", "token"} {
		if query.Has(name) {
			query.Set(name, "xxxxx")
		}
	}
	redacted.RawQuery = query.Encode()
	return redacted.Redacted()
}

// redactError rewrites the URL that net/http embeds in transport errors so
// query credentials never reach callers or span events.
func redactError(err error, u *url.URL) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	return &url.Error{Op: urlErr.Op, URL: RedactURL(u), Err: urlErr.Err}
}

// StatusError is returned by the HTTP helpers when the server answers with a
// non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, e.Body)
}
