// Package httpclient is the single-shot request helper used by exploit
// commands. It never retries and never returns a Go error: every outcome,
// including transport failures, is folded into a Result.
package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// Options are passed through to the request unchanged. Headers override
// the default JSON content type.
type Options struct {
	Method  string
	Headers map[string]string
	Body    string
}

// Result is the normalized response.
//
// Data holds the decoded JSON body, or the raw text when the body is not
// JSON. Error is set only for failures that happened before a response
// arrived; Status, Data and Text are then empty.
type Result struct {
	Status int    `json:"status,omitempty"`
	Data   any    `json:"data,omitempty"`
	Text   string `json:"text,omitempty"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	// JSON is true when Data was decoded from the body.
	JSON bool `json:"-"`
}

// Client wraps an *http.Client. The zero value uses http.DefaultClient.
type Client struct {
	HTTP *http.Client
}

// New returns a Client using the default transport: no timeout and the
// standard redirect policy.
func New() *Client {
	return &Client{HTTP: http.DefaultClient}
}

// Request performs exactly one request to url.
func (c *Client) Request(ctx context.Context, url string, opts Options) Result {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != "" {
		body = strings.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return Result{Error: err.Error(), OK: false}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return Result{Error: err.Error(), OK: false}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Error: err.Error(), OK: false}
	}
	text := string(raw)

	var data any
	isJSON := true
	if err := json.Unmarshal(raw, &data); err != nil {
		data = text
		isJSON = false
	}

	return Result{
		Status: resp.StatusCode,
		Data:   data,
		Text:   text,
		OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
		JSON:   isJSON,
	}
}
