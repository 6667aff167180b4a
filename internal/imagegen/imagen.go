package imagegen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// DefaultImagenModel is used when no Imagen model is configured.
const DefaultImagenModel = "imagen-3.0-generate-002"

// ImagenClient generates images with Imagen through the Gemini API.
type ImagenClient struct {
	client *genai.Client
	model  string
}

// NewImagenClient creates an Imagen client for the given Gemini API key.
func NewImagenClient(ctx context.Context, apiKey, model string) (*ImagenClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is empty")
	}
	if model == "" {
		model = DefaultImagenModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &ImagenClient{client: client, model: model}, nil
}

// Generate implements Generator.
func (c *ImagenClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	start := time.Now()
	resp, err := c.client.Models.GenerateImages(ctx, c.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
	})
	if err != nil {
		return nil, fmt.Errorf("imagen generate: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, errors.New("imagen returned no images")
	}

	data := resp.GeneratedImages[0].Image.ImageBytes
	if len(data) == 0 {
		return nil, errors.New("imagen returned an empty image")
	}

	log.Debug().
		Str("model", c.model).
		Int("bytes", len(data)).
		Dur("duration", time.Since(start)).
		Msg("Imagen image generated")
	return data, nil
}
