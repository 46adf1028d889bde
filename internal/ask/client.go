// Package ask sends questions about the committed grid to an analysis
// backend over HTTP.
package ask

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"gridbench/internal/log"
)

// DefaultURL is where the analysis backend listens unless configured.
const DefaultURL = "http://127.0.0.1:5000/ask"

const maxResponseBytes = 4 << 20

// ErrEmptyPrompt is returned for a blank question.
var ErrEmptyPrompt = errors.New("prompt is empty")

// StatusError is a non-2xx reply from the backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Body)
}

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// URL is the full endpoint, e.g. DefaultURL.
	URL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
}

// Client talks to the analysis backend.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient validates the endpoint and creates a client.
func NewClient(config ClientConfig) (*Client, error) {
	endpoint := config.URL
	if endpoint == "" {
		endpoint = DefaultURL
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("ask: invalid URL %q: %w", endpoint, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("ask: URL %q must be http or https", endpoint)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: httpClient,
	}, nil
}

// Endpoint returns the URL requests go to.
func (c *Client) Endpoint() string { return c.endpoint }

// Chart is a chart the backend attached to an answer.
type Chart struct {
	Title  string      `json:"title"`
	Type   string      `json:"type"`
	XLabel string      `json:"x_label"`
	YLabel string      `json:"y_label"`
	Data   [][]float64 `json:"data"`
}

// Answer is the backend's reply.
type Answer struct {
	Output string
	Chart  *Chart
}

type request struct {
	Prompt string     `json:"prompt"`
	Data   [][]string `json:"data"`
}

type response struct {
	Response struct {
		Output string `json:"output"`
	} `json:"response"`
	ChartData *Chart `json:"chart_data"`
}

// Ask posts the prompt together with the grid contents and returns the
// answer text. data must be committed values only.
func (c *Client) Ask(ctx context.Context, prompt string, data [][]string) (*Answer, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	encoded, err := json.Marshal(request{Prompt: prompt, Data: data})
	if err != nil {
		return nil, fmt.Errorf("ask: failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("ask: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debug(log.CatAsk, "sending prompt", "endpoint", c.endpoint, "rows", len(data))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ask: request to %s failed: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("ask: failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("ask: failed to parse response: %w", err)
	}
	return &Answer{Output: parsed.Response.Output, Chart: parsed.ChartData}, nil
}

// Text renders the answer for a plain-text transcript. Charts are named by
// title only.
func (a *Answer) Text() string {
	if a.Chart == nil {
		return a.Output
	}
	title := a.Chart.Title
	if title == "" {
		title = "untitled"
	}
	chart := fmt.Sprintf("[chart: %s]", title)
	if a.Output == "" {
		return chart
	}
	return a.Output + "\n" + chart
}
