// Package config loads run configuration from an optional YAML file, the
// environment and a .env file, in that order of increasing precedence.
// Secrets left empty can then be resolved from SSM Parameter Store.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/fpang/brainrot-studio/internal/chat"
	"github.com/fpang/brainrot-studio/internal/filehandler"
	"github.com/fpang/brainrot-studio/internal/idea"
	"github.com/fpang/brainrot-studio/internal/imagegen"
	"github.com/fpang/brainrot-studio/internal/pipeline"
	"github.com/fpang/brainrot-studio/internal/pool"
	"github.com/fpang/brainrot-studio/internal/retry"
	"github.com/fpang/brainrot-studio/internal/speech"
)

// DefaultConfigName is looked up as <name>.yaml in the working directory
// and ./config when no file is given explicitly.
const DefaultConfigName = "brainrot"

type Config struct {
	OutputDir       string
	SummaryFile     string
	Roster          []string
	ReferenceImages []string
	Candidates      int
	MaxWorkers      int
	// SelectionModel overrides the selection model. Empty means each idea's
	// source model.
	SelectionModel string
	Publish        bool
	LogLevel       string

	Retry      retry.Policy
	Timeouts   TimeoutConfig
	OpenRouter OpenRouterConfig
	Gemini     GeminiConfig
	Image      ImageConfig
	XAI        XAIConfig
	Imagen     ImagenConfig
	ElevenLabs ElevenLabsConfig
	FFmpeg     FFmpegConfig
	AWS        AWSConfig
	Metrics    MetricsConfig
}

type TimeoutConfig struct {
	RemoteCall time.Duration
	Video      time.Duration
}

type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Referer string
	Title   string
}

type GeminiConfig struct {
	APIKey string
}

type ImageConfig struct {
	Provider              string
	PromptPrefix          string
	ThumbnailMaxDimension int
}

type XAIConfig struct {
	APIKey     string
	BaseURL    string
	ImageModel string
}

type ImagenConfig struct {
	Model string
}

type ElevenLabsConfig struct {
	APIKey       string
	BaseURL      string
	VoiceID      string
	ModelID      string
	OutputFormat string
}

type FFmpegConfig struct {
	Path string
}

type AWSConfig struct {
	SSMPrefix   string
	S3Bucket    string
	S3Prefix    string
	DynamoTable string
}

type MetricsConfig struct {
	Enabled bool
}

// LoadOptions controls where Load looks for configuration.
type LoadOptions struct {
	// File is an explicit YAML file. When empty, brainrot.yaml is used if
	// present.
	File string
	// EnvFile defaults to ".env". A missing file is not an error.
	EnvFile string
}

// SummaryPath returns the summary file location. A relative SummaryFile
// lives inside OutputDir.
func (c *Config) SummaryPath() string {
	if filepath.IsAbs(c.SummaryFile) {
		return c.SummaryFile
	}
	return filepath.Join(c.OutputDir, c.SummaryFile)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", "public")
	v.SetDefault("summary_file", "summary.json")
	v.SetDefault("roster", chat.DefaultRoster())
	v.SetDefault("reference_images", idea.DefaultReferenceImages)
	v.SetDefault("candidates", pipeline.DefaultCandidates)
	v.SetDefault("max_workers", pool.DefaultMaxWorkers)
	v.SetDefault("selection_model", "")
	v.SetDefault("publish", false)
	v.SetDefault("log_level", "info")

	v.SetDefault("retry.max_attempts", retry.DefaultMaxAttempts)
	v.SetDefault("retry.base_delay", retry.DefaultBaseDelay)
	v.SetDefault("retry.multiplier", retry.DefaultMultiplier)

	v.SetDefault("timeouts.remote_call", 120*time.Second)
	v.SetDefault("timeouts.video", 5*time.Minute)

	v.SetDefault("openrouter.base_url", chat.DefaultOpenRouterBaseURL)
	v.SetDefault("openrouter.referer", "https://localhost")
	v.SetDefault("openrouter.title", "Brainrot Generator")

	v.SetDefault("image.provider", imagegen.ProviderXAI)
	v.SetDefault("image.prompt_prefix", imagegen.DefaultPromptPrefix)
	v.SetDefault("image.thumbnail_max_dimension", filehandler.DefaultThumbnailMaxDimension)

	v.SetDefault("xai.base_url", imagegen.DefaultXAIBaseURL)
	v.SetDefault("xai.image_model", imagegen.DefaultXAIModel)
	v.SetDefault("imagen.model", imagegen.DefaultImagenModel)

	v.SetDefault("elevenlabs.base_url", speech.DefaultBaseURL)
	v.SetDefault("elevenlabs.voice_id", speech.DefaultVoiceID)
	v.SetDefault("elevenlabs.model_id", speech.DefaultModelID)
	v.SetDefault("elevenlabs.output_format", speech.DefaultOutputFormat)

	v.SetDefault("ffmpeg.path", "ffmpeg")

	v.SetDefault("aws.ssm_prefix", "")
	v.SetDefault("aws.s3_bucket", "")
	v.SetDefault("aws.s3_prefix", "brainrot")
	v.SetDefault("aws.dynamo_table", "")

	v.SetDefault("metrics.enabled", false)

	// Secrets have no default but must be known keys for env lookup.
	for _, key := range []string{"openrouter.api_key", "gemini.api_key", "xai.api_key", "elevenlabs.api_key"} {
		v.SetDefault(key, "")
	}
}

// Load reads configuration. Environment variables override file values,
// with "." in a key mapped to "_" (openrouter.api_key is read from
// OPENROUTER_API_KEY).
func Load(opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
		log.Debug().Str("path", envFile).Msg("Environment file loaded")
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("log_level", "LOG_LEVEL", "BRAINROT_LOG_LEVEL")

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.File, err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	if used := v.ConfigFileUsed(); used != "" {
		log.Debug().Str("path", used).Msg("Config file loaded")
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		OutputDir:       v.GetString("output_dir"),
		SummaryFile:     v.GetString("summary_file"),
		Roster:          v.GetStringSlice("roster"),
		ReferenceImages: v.GetStringSlice("reference_images"),
		Candidates:      v.GetInt("candidates"),
		MaxWorkers:      v.GetInt("max_workers"),
		SelectionModel:  v.GetString("selection_model"),
		Publish:         v.GetBool("publish"),
		LogLevel:        v.GetString("log_level"),
		Retry: retry.Policy{
			MaxAttempts: v.GetInt("retry.max_attempts"),
			BaseDelay:   v.GetDuration("retry.base_delay"),
			Multiplier:  v.GetFloat64("retry.multiplier"),
		},
		Timeouts: TimeoutConfig{
			RemoteCall: v.GetDuration("timeouts.remote_call"),
			Video:      v.GetDuration("timeouts.video"),
		},
		OpenRouter: OpenRouterConfig{
			APIKey:  v.GetString("openrouter.api_key"),
			BaseURL: v.GetString("openrouter.base_url"),
			Referer: v.GetString("openrouter.referer"),
			Title:   v.GetString("openrouter.title"),
		},
		Gemini: GeminiConfig{
			APIKey: v.GetString("gemini.api_key"),
		},
		Image: ImageConfig{
			Provider:              strings.ToLower(v.GetString("image.provider")),
			PromptPrefix:          v.GetString("image.prompt_prefix"),
			ThumbnailMaxDimension: v.GetInt("image.thumbnail_max_dimension"),
		},
		XAI: XAIConfig{
			APIKey:     v.GetString("xai.api_key"),
			BaseURL:    v.GetString("xai.base_url"),
			ImageModel: v.GetString("xai.image_model"),
		},
		Imagen: ImagenConfig{
			Model: v.GetString("imagen.model"),
		},
		ElevenLabs: ElevenLabsConfig{
			APIKey:       v.GetString("elevenlabs.api_key"),
			BaseURL:      v.GetString("elevenlabs.base_url"),
			VoiceID:      v.GetString("elevenlabs.voice_id"),
			ModelID:      v.GetString("elevenlabs.model_id"),
			OutputFormat: v.GetString("elevenlabs.output_format"),
		},
		FFmpeg: FFmpegConfig{
			Path: v.GetString("ffmpeg.path"),
		},
		AWS: AWSConfig{
			SSMPrefix:   v.GetString("aws.ssm_prefix"),
			S3Bucket:    v.GetString("aws.s3_bucket"),
			S3Prefix:    v.GetString("aws.s3_prefix"),
			DynamoTable: v.GetString("aws.dynamo_table"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
		},
	}
}
