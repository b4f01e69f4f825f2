package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/artem13815/brandreview/pkg/llm"
)

const DefaultAPIVersion = "2024-08-01-preview"

// Client is a minimal Azure OpenAI chat completions client.
type Client struct {
	Endpoint   string
	Deployment string
	APIKey     string
	APIVersion string
	MaxRetries int
	httpDo     *http.Client
	backoff    func(attempt int) time.Duration
}

func New(endpoint, deployment, apiKey, apiVersion string, timeout time.Duration, maxRetries int) *Client {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{
		Endpoint:   strings.TrimRight(endpoint, "/"),
		Deployment: deployment,
		APIKey:     apiKey,
		APIVersion: apiVersion,
		MaxRetries: maxRetries,
		httpDo: &http.Client{
			Timeout: timeout,
		},
		backoff: func(attempt int) time.Duration {
			return time.Duration(100*(1<<(attempt-1))) * time.Millisecond
		},
	}
}

type chatCompletionsRequest struct {
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature"`
}

type chatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatCompletionsResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// URL returns the chat completions endpoint for the configured deployment.
func (c *Client) URL() string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.Endpoint, url.PathEscape(c.Deployment), url.QueryEscape(c.APIVersion))
}

// Complete sends the messages to the deployment and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("%w: azure openai api key is empty", llm.ErrInvalidAPIKey)
	}
	data, err := json.Marshal(chatCompletionsRequest{
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff(attempt)):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", llm.ErrTimeout, ctx.Err())
			}
		}
		content, retryable, err := c.do(ctx, data)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return "", lastErr
}

func (c *Client) do(ctx context.Context, body []byte) (content string, retryable bool, err error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(), bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", c.APIKey)

	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return "", false, fmt.Errorf("%w: the analysis is taking too long", llm.ErrTimeout)
		}
		return "", true, fmt.Errorf("%w: %v", llm.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var er errorResponse
		_ = json.Unmarshal(raw, &er)
		return "", retryableStatus(resp.StatusCode), statusError(resp.StatusCode, er.Error.Message)
	}

	var out chatCompletionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, fmt.Errorf("%w: decode response: %v", llm.ErrUpstream, err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", false, llm.ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, false, nil
}

func statusError(status int, message string) error {
	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: check AZURE_OPENAI_API_KEY", llm.ErrInvalidAPIKey)
	case http.StatusNotFound:
		return fmt.Errorf("%w: check AZURE_OPENAI_DEPLOYMENT", llm.ErrDeploymentNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: please try again later", llm.ErrRateLimited)
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return fmt.Errorf("%w: azure openai http %d: %s", llm.ErrUpstream, status, message)
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
