package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

// ErrUnavailable is returned when no model backend is configured or the
// circuit breaker is open
var ErrUnavailable = errors.New("summarizer unavailable")

const (
	DefaultBaseURL    = "https://api.anthropic.com"
	DefaultModel      = "claude-3-5-haiku-latest"
	anthropicVersion  = "2023-06-01"
	defaultMaxTokens  = 200
	defaultRatePerSec = 1.0
)

// Config configures the LLM client
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	RatePerSec float64
	HTTPClient *http.Client
}

// LLMClient phrases rationales through a messages-style completion API
type LLMClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	ID      string         `json:"id"`
	Content []contentBlock `json:"content"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewLLMClient creates a client. An empty API key yields a client whose
// Summarize always returns ErrUnavailable.
func NewLLMClient(cfg Config) *LLMClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = defaultRatePerSec
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm-summarizer",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("Summarizer circuit breaker state changed", "circuit", name, "from_state", from.String(), "to_state", to.String())
		},
	})

	return &LLMClient{
		httpClient: cfg.HTTPClient,
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
		breaker:    breaker,
	}
}

// Enabled reports whether an API key is configured
func (c *LLMClient) Enabled() bool {
	return c.apiKey != ""
}

// Summarize asks the model for a two-sentence explanation of the top pick
func (c *LLMClient) Summarize(ctx context.Context, top models.Player, roster []models.Player, round int) (string, error) {
	if !c.Enabled() {
		return "", ErrUnavailable
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	req := messagesRequest{
		Model:     c.model,
		MaxTokens: defaultMaxTokens,
		Messages:  []message{{Role: "user", Content: Prompt(top, roster, round)}},
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.send(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", err
	}
	return out.(string), nil
}

func (c *LLMClient) send(ctx context.Context, req messagesRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("model API status %d: %s: %s", resp.StatusCode, parsed.Error.Type, parsed.Error.Message)
		}
		return "", fmt.Errorf("model API status %d", resp.StatusCode)
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	logger.Debug("Summarizer response", "message_id", parsed.ID, "duration_ms", time.Since(start).Milliseconds())

	if strings.TrimSpace(text.String()) == "" {
		return "", errors.New("model returned no text")
	}
	return strings.TrimSpace(text.String()), nil
}

// Prompt builds the user message sent to the model
func Prompt(top models.Player, roster []models.Player, round int) string {
	names := make([]string, 0, len(roster))
	for _, p := range roster {
		names = append(names, fmt.Sprintf("%s (%s)", p.Name, p.Position))
	}
	return fmt.Sprintf("You are a fantasy football expert. Based on this draft situation, explain why %s (%s, %s) is the best pick right now. Current roster: %s. Round %d. Keep it to 2 sentences max and focus on value and roster construction.",
		top.Name, top.Position, top.Team, strings.Join(names, ", "), round)
}
