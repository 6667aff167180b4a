package filehandler

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

// DefaultThumbnailMaxDimension bounds the longer side of images sent for selection.
const DefaultThumbnailMaxDimension = 1024

// EncodeForSelection reads a candidate image and returns JPEG bytes whose
// longer side is at most maxDimension. Images that cannot be decoded are
// sent as-is; the selection model may still accept them.
func EncodeForSelection(path string, maxDimension int) ([]byte, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if maxDimension <= 0 {
		maxDimension = DefaultThumbnailMaxDimension
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Image not decodable, sending original bytes")
		return raw, "image/jpeg", nil
	}

	bounds := img.Bounds()
	width, height := ThumbnailDimensions(bounds.Dx(), bounds.Dy(), maxDimension)
	if width == bounds.Dx() && height == bounds.Dy() && format == "jpeg" {
		return raw, "image/jpeg", nil
	}

	resized := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return nil, "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	log.Debug().
		Str("path", path).
		Int("orig_width", bounds.Dx()).
		Int("orig_height", bounds.Dy()).
		Int("width", width).
		Int("height", height).
		Int("bytes", buf.Len()).
		Msg("Candidate resized for selection")
	return buf.Bytes(), "image/jpeg", nil
}

// ThumbnailDimensions scales width and height so the longer side is at
// most maxDimension, preserving aspect ratio. It never upscales.
func ThumbnailDimensions(width, height, maxDimension int) (int, int) {
	if width <= maxDimension && height <= maxDimension {
		return width, height
	}
	if width > height {
		return maxDimension, max(1, int(float64(height)*float64(maxDimension)/float64(width)))
	}
	return max(1, int(float64(width)*float64(maxDimension)/float64(height))), maxDimension
}
