// Package llm is a thin client for an Anthropic-compatible messages endpoint.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/oguzkose/sms-notes-service/environments"
	"github.com/oguzkose/sms-notes-service/pkg/logger"
)

type Client struct {
	httpClient *resty.Client
	apiURL     string
	model      string
	maxTokens  int
}

func NewClient(cfg environments.LLMConfig) *Client {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("anthropic-version", "2023-06-01")

	if cfg.APIKey != "" {
		client.SetHeader("x-api-key", cfg.APIKey)
	}

	return &Client{
		httpClient: client,
		apiURL:     cfg.APIURL,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type completionResponse struct {
	Content []contentBlock `json:"content"`
}

// Complete sends a single-turn prompt and returns the first text block of the
// model response. The client-level timeout bounds the call.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	payload := completionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	}

	var out completionResponse

	startTime := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&out).
		Post(c.apiURL)
	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}

	logger.Infof("Model request to %s completed in %v (status: %d)", c.apiURL, time.Since(startTime), resp.StatusCode())

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode(), resp.String())
	}

	if len(out.Content) == 0 || out.Content[0].Text == "" {
		return "", fmt.Errorf("model response contained no text content")
	}

	return out.Content[0].Text, nil
}
