package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/fpang/brainrot-studio/internal/config"
)

// ExitConfigError is the process exit status for configuration problems.
// Failures of individual ideas never change the exit status.
const ExitConfigError = 1

// ResolveDirectory checks that the path exists and is a directory, then
// returns the absolute path.
func ResolveDirectory(dirPath string) (string, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("directory not found: %s", dirPath)
		}
		return "", fmt.Errorf("failed to access directory %s: %w", dirPath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", dirPath)
	}

	absPath, err := filepath.Abs(dirPath)
	if err == nil {
		dirPath = absPath
	}
	return dirPath, nil
}

// HandleConfigError logs a configuration error with a hint and exits with
// ExitConfigError.
func HandleConfigError(err error) {
	var validationErr *config.ValidationError
	if errors.As(err, &validationErr) {
		for _, p := range validationErr.Problems {
			log.Error().Str("problem", p).Msg("Configuration problem")
		}
		if errors.Is(err, config.ErrMissingSecret) {
			log.Error().
				Strs("missing", validationErr.Missing).
				Msg("Credentials missing. Set them in .env, the environment (OPENROUTER_API_KEY, XAI_API_KEY, ELEVENLABS_API_KEY, GEMINI_API_KEY) or SSM under aws.ssm_prefix")
		}
	} else {
		log.Error().Err(err).Msg("Configuration error")
	}
	os.Exit(ExitConfigError)
}
