// Package llm talks to the language-model sidecar service. The service is
// treated as unreliable: callers must survive empty or malformed output.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// CompletionService is the minimal surface the pipeline needs from a
// language model.
type CompletionService interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client calls the LLM service over HTTP.
type Client struct {
	serviceURL string
	client     *http.Client
}

type completionRequest struct {
	Prompt string `json:"prompt"`
}

type completionResponse struct {
	Success bool   `json:"success"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewClient creates a client for the LLM service.
func NewClient(serviceURL string, timeout time.Duration) *Client {
	if serviceURL == "" {
		serviceURL = "http://llm-service:5100"
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	return &Client{
		serviceURL: serviceURL,
		client:     &http.Client{Timeout: timeout},
	}
}

// Complete sends a prompt and returns the raw model output.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(completionRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serviceURL+"/v1/complete", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call LLM service: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %v", err)
	}

	var cr completionResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", fmt.Errorf("failed to parse LLM response: %v", err)
	}

	if !cr.Success {
		return "", fmt.Errorf("LLM service error: %s", cr.Error)
	}
	if cr.Content == "" {
		return "", fmt.Errorf("LLM service returned empty content")
	}

	return cr.Content, nil
}

// HealthCheck verifies the service is reachable.
func (c *Client) HealthCheck() error {
	resp, err := c.client.Get(c.serviceURL + "/health")
	if err != nil {
		return fmt.Errorf("LLM service not reachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("LLM service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
