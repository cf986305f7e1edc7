package ollama

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
	"time"

	"dms/internal/config"
	"dms/internal/services"
)

const defaultHTTPTimeout = 120 * time.Second

// Client wraps the Ollama generate API.
type Client struct {
	host        string
	model       string
	temperature float64
	httpClient  *http.Client
}

// Option customizes the Ollama client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithHost overrides the configured host (useful for tests).
func WithHost(host string) Option {
	return func(c *Client) {
		host = strings.TrimSpace(host)
		if host != "" {
			c.host = strings.TrimRight(host, "/")
		}
	}
}

// NewClient constructs a client for the configured Ollama endpoint.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.Ollama.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Ollama.TimeoutSeconds) * time.Second
	}
	client := &Client{
		host:        strings.TrimRight(cfg.Ollama.Host, "/"),
		model:       cfg.Ollama.Model,
		temperature: cfg.Ollama.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Generate submits a prompt and returns the model's raw text response.
// Transport failures and non-2xx statuses classify as connectivity errors
// so callers can halt the run instead of failing items one by one.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("ollama generate: prompt required")
	}
	payload := generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: generateOptions{Temperature: c.temperature},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ollama generate: encode request: %w", err)
	}
	endpoint, err := url.JoinPath(c.host, "/api/generate")
	if err != nil {
		return "", fmt.Errorf("ollama generate: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("ollama generate: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrConnectivity, "summarize", "generate", "ollama unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrConnectivity, "summarize", "generate", "read response", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", services.Wrap(services.ErrConnectivity, "summarize", "generate",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("ollama generate: decode response: %w", err)
	}
	if decoded.Error != "" {
		return "", services.Wrap(services.ErrConnectivity, "summarize", "generate",
			"api error: "+strings.TrimSpace(decoded.Error), nil)
	}
	return decoded.Response, nil
}

// HealthCheck verifies the endpoint responds before a run starts.
func (c *Client) HealthCheck(ctx context.Context) error {
	endpoint, err := url.JoinPath(c.host, "/api/tags")
	if err != nil {
		return fmt.Errorf("ollama health: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("ollama health: request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrConnectivity, "summarize", "health", "ollama unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return services.Wrap(services.ErrConnectivity, "summarize", "health",
			fmt.Sprintf("http %d", resp.StatusCode), nil)
	}
	return nil
}
