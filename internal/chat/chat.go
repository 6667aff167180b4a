// Package chat sends multimodal prompts to the language models of the
// roster. OpenRouter serves most entries over its OpenAI-compatible REST
// API; entries prefixed with "gemini:" go straight to the Gemini API.
package chat

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/fpang/brainrot-studio/internal/jsonutil"
)

// Image is an image attached to a prompt, either by URL or inline bytes.
type Image struct {
	URL      string
	Data     []byte
	MIMEType string
}

// Request is a single-turn user prompt.
type Request struct {
	Model  string
	Prompt string
	Images []Image
	// JSON asks the backend to constrain the reply to a JSON object.
	JSON bool
}

// Completer returns the text of a model's reply to a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// APIError is a non-2xx response from a REST backend.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, jsonutil.Truncate(e.Body, 200))
}

// Download fetches a remote resource and returns its bytes and content type.
func Download(ctx context.Context, client *http.Client, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", &APIError{Provider: "download", StatusCode: resp.StatusCode, Body: string(data)}
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}
