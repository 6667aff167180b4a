// Package imagegen turns a text prompt into image bytes using xAI's
// image API or Google's Imagen.
package imagegen

import (
	"context"
	"strings"
)

// Provider names accepted in configuration.
const (
	ProviderXAI    = "xai"
	ProviderImagen = "imagen"
)

// DefaultPromptPrefix is prepended to every image description.
const DefaultPromptPrefix = "Italian brainrot meme: "

// Generator renders one image for a prompt. Returned bytes are JPEG
// compatible.
type Generator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// Prompt joins the configured prefix with an idea's image description.
func Prompt(prefix, description string) string {
	return prefix + strings.TrimSpace(description)
}
