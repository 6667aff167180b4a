package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/brainrot-studio/internal/chat"
	"github.com/fpang/brainrot-studio/internal/jsonutil"
)

// xAI defaults.
const (
	DefaultXAIBaseURL = "https://api.x.ai/v1"
	DefaultXAIModel   = "grok-2-image"
)

// XAIClient calls the xAI image generation endpoint and fetches the
// returned image URL.
type XAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewXAIClient creates a client. Empty baseURL or model use the defaults.
func NewXAIClient(apiKey, baseURL, model string, timeout time.Duration) *XAIClient {
	if baseURL == "" {
		baseURL = DefaultXAIBaseURL
	}
	if model == "" {
		model = DefaultXAIModel
	}
	return &XAIClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type xaiRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
}

type xaiResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// Generate implements Generator.
func (c *XAIClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	body, err := json.Marshal(xaiRequest{Model: c.model, Prompt: prompt, N: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &chat.APIError{Provider: "xai", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var parsed xaiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w (body: %s)", err, jsonutil.Truncate(string(respBody), 200))
	}
	if len(parsed.Data) == 0 {
		return nil, errors.New("xai returned no images")
	}

	first := parsed.Data[0]
	var data []byte
	switch {
	case first.B64JSON != "":
		data, err = base64.StdEncoding.DecodeString(first.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
	case first.URL != "":
		data, _, err = chat.Download(ctx, c.httpClient, first.URL)
		if err != nil {
			return nil, fmt.Errorf("fetch generated image: %w", err)
		}
	default:
		return nil, errors.New("xai image has neither url nor data")
	}

	log.Debug().
		Str("model", c.model).
		Int("bytes", len(data)).
		Dur("duration", time.Since(start)).
		Msg("xAI image generated")
	return data, nil
}
