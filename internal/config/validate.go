package config

import (
	"errors"
	"strconv"
	"strings"

	"github.com/fpang/brainrot-studio/internal/imagegen"
	"github.com/fpang/brainrot-studio/internal/pool"
)

// ErrMissingSecret is matched by a ValidationError that lists at least one
// missing credential.
var ErrMissingSecret = errors.New("missing secret")

// ValidationError collects every configuration problem found.
type ValidationError struct {
	Problems []string
	// Missing lists config keys of required credentials that are empty.
	Missing []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrMissingSecret && len(e.Missing) > 0
}

// Validate reports every problem at once, or nil.
func (c *Config) Validate() error {
	verr := &ValidationError{}
	add := func(msg string) { verr.Problems = append(verr.Problems, msg) }

	if c.OutputDir == "" {
		add("output_dir is empty")
	}
	if len(c.Roster) == 0 {
		add("roster is empty")
	}
	if c.Candidates < 1 {
		add("candidates must be at least 1")
	}
	if c.MaxWorkers < 1 || c.MaxWorkers > pool.DefaultMaxWorkers {
		add("max_workers must be between 1 and " + strconv.Itoa(pool.DefaultMaxWorkers))
	}
	if c.Retry.MaxAttempts < 1 {
		add("retry.max_attempts must be at least 1")
	}
	if c.Image.ThumbnailMaxDimension < 1 {
		add("image.thumbnail_max_dimension must be positive")
	}
	switch c.Image.Provider {
	case imagegen.ProviderXAI, imagegen.ProviderImagen:
	default:
		add("image.provider must be " + imagegen.ProviderXAI + " or " + imagegen.ProviderImagen + ", got " + c.Image.Provider)
	}
	if c.Publish && c.AWS.S3Bucket == "" {
		add("publish requires aws.s3_bucket")
	}

	for _, s := range c.secrets() {
		if s.required && *s.value == "" {
			verr.Missing = append(verr.Missing, s.key)
			add(s.key + " is required")
		}
	}

	if len(verr.Problems) == 0 {
		return nil
	}
	return verr
}
