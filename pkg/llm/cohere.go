package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultModel    = "command-r-plus"
	defaultEndpoint = "https://api.cohere.com/v1/generate"

	// Fixed generation parameters; not tunable per prompt.
	maxTokens   = 300
	temperature = 0.7
)

// Doer is the minimal HTTP client surface Cohere needs, so tests can swap
// in a stub.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Cohere calls the Cohere generate endpoint. Zero-value fields fall back to
// package defaults at call time.
type Cohere struct {
	APIKey   string
	Model    string
	Endpoint string
	Client   Doer
}

type cohereRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type cohereResponse struct {
	Generations []struct {
		Text string `json:"text"`
	} `json:"generations"`
	Message string `json:"message"`
}

func (c *Cohere) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return "", ErrNoCredential
	}

	model := c.Model
	if model == "" {
		model = defaultModel
	}
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}

	body, err := json.Marshal(cohereRequest{
		Model:       model,
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var apiResp cohereResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", err
	}

	if resp.StatusCode >= 300 {
		if apiResp.Message != "" {
			return "", fmt.Errorf("cohere: %s", apiResp.Message)
		}
		return "", fmt.Errorf("cohere: HTTP %d", resp.StatusCode)
	}

	if len(apiResp.Generations) == 0 {
		return "", errors.New("cohere: empty response")
	}
	return strings.TrimSpace(apiResp.Generations[0].Text), nil
}
