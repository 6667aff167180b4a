package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// GeminiClient serves "gemini:" roster entries through the Gemini API.
// The Gemini API only accepts inline image data, so URL images are
// downloaded first.
type GeminiClient struct {
	client     *genai.Client
	httpClient *http.Client
}

// NewGeminiClient creates a Gemini API client for the given key.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{
		client:     client,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Complete implements Completer. The "gemini:" prefix on req.Model is optional.
func (g *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	parts, err := g.buildParts(ctx, req)
	if err != nil {
		return "", err
	}

	var config *genai.GenerateContentConfig
	if req.JSON {
		config = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}

	model := GeminiModelName(req.Model)
	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, model, []*genai.Content{{Role: "user", Parts: parts}}, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	log.Debug().
		Str("model", model).
		Int("parts", len(parts)).
		Dur("duration", time.Since(start)).
		Msg("Gemini call completed")

	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}

func (g *GeminiClient) buildParts(ctx context.Context, req Request) ([]*genai.Part, error) {
	parts := make([]*genai.Part, 0, len(req.Images)+1)
	for _, img := range req.Images {
		data, mimeType := img.Data, img.MIMEType
		if len(data) == 0 {
			var err error
			data, mimeType, err = Download(ctx, g.httpClient, img.URL)
			if err != nil {
				return nil, fmt.Errorf("reference image: %w", err)
			}
		}
		if mimeType == "" {
			mimeType = http.DetectContentType(data)
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: mimeType, Data: data},
		})
	}
	parts = append(parts, &genai.Part{Text: req.Prompt})
	return parts, nil
}
