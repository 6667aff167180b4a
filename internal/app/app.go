// Package app assembles a generation run from configuration: the chat
// router, image and speech providers, the compositor, the summary store
// and the optional S3 publisher.
package app

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/brainrot-studio/internal/assets"
	"github.com/fpang/brainrot-studio/internal/chat"
	"github.com/fpang/brainrot-studio/internal/config"
	"github.com/fpang/brainrot-studio/internal/idea"
	"github.com/fpang/brainrot-studio/internal/imagegen"
	"github.com/fpang/brainrot-studio/internal/lambdaboot"
	"github.com/fpang/brainrot-studio/internal/logging"
	"github.com/fpang/brainrot-studio/internal/metrics"
	"github.com/fpang/brainrot-studio/internal/pipeline"
	"github.com/fpang/brainrot-studio/internal/s3util"
	"github.com/fpang/brainrot-studio/internal/selection"
	"github.com/fpang/brainrot-studio/internal/speech"
	"github.com/fpang/brainrot-studio/internal/summary"
	"github.com/fpang/brainrot-studio/internal/video"
)

// ErrPublishUnavailable is returned when publishing is requested without
// an S3 client.
var ErrPublishUnavailable = errors.New("publishing requires an S3 bucket and AWS credentials")

// Options adjusts how New wires a run.
type Options struct {
	// Name identifies the entry point in the startup log.
	Name string
	// SummaryInS3 keeps the summary at <s3_prefix>/summary.json instead of
	// the local file. Requires an S3 client.
	SummaryInS3 bool
	// Metrics overrides the emitter derived from metrics.enabled.
	Metrics *metrics.Emitter
	// InitStart is when the process started, for the startup log.
	InitStart time.Time
}

// Studio runs one batch: ideas from every roster model, then one video per
// accepted idea.
type Studio struct {
	Config     *config.Config
	Ideas      idea.Source
	Processor  pipeline.Processor
	Summary    summary.Store
	Metrics    *metrics.Emitter
	name       string
	initStart  time.Time
	backends   map[string]string
	publishing bool
}

// New builds a Studio. clients may be nil when no AWS feature is used.
func New(ctx context.Context, cfg *config.Config, clients *lambdaboot.AWSClients, opts Options) (*Studio, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	router := &chat.Router{}
	backends := map[string]string{}
	if cfg.OpenRouter.APIKey != "" {
		router.OpenRouter = chat.NewOpenRouterClient(chat.OpenRouterConfig{
			APIKey:  cfg.OpenRouter.APIKey,
			BaseURL: cfg.OpenRouter.BaseURL,
			Referer: cfg.OpenRouter.Referer,
			Title:   cfg.OpenRouter.Title,
			Timeout: cfg.Timeouts.RemoteCall,
		})
		backends["chat"] = "openrouter"
	}
	if cfg.Gemini.APIKey != "" {
		gc, err := chat.NewGeminiClient(ctx, cfg.Gemini.APIKey)
		if err != nil {
			return nil, err
		}
		router.Gemini = gc
		if _, ok := backends["chat"]; ok {
			backends["chat"] = "openrouter+gemini"
		} else {
			backends["chat"] = "gemini"
		}
	}

	images, err := newImageGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	backends["image"] = cfg.Image.Provider
	backends["speech"] = "elevenlabs"
	backends["video"] = cfg.FFmpeg.Path

	if err := video.CheckFFmpegAvailable(cfg.FFmpeg.Path); err != nil {
		// Every composition will fail, but ideas and candidates are still kept.
		log.Warn().Err(err).Msg("ffmpeg unavailable")
	}

	emitter := opts.Metrics
	if emitter == nil {
		emitter = metrics.Stdout(cfg.Metrics.Enabled)
	}

	p := &pipeline.Pipeline{
		OutputDir:    cfg.OutputDir,
		Images:       images,
		PromptPrefix: cfg.Image.PromptPrefix,
		Speech: speech.NewElevenLabsClient(speech.Config{
			APIKey:       cfg.ElevenLabs.APIKey,
			BaseURL:      cfg.ElevenLabs.BaseURL,
			VoiceID:      cfg.ElevenLabs.VoiceID,
			ModelID:      cfg.ElevenLabs.ModelID,
			OutputFormat: cfg.ElevenLabs.OutputFormat,
			Timeout:      cfg.Timeouts.RemoteCall,
		}),
		Selector: &selection.Selector{
			Completer:    router,
			Model:        cfg.SelectionModel,
			MaxDimension: cfg.Image.ThumbnailMaxDimension,
			Timeout:      cfg.Timeouts.RemoteCall,
		},
		Compositor:  &video.FFmpeg{Path: cfg.FFmpeg.Path, Timeout: cfg.Timeouts.Video},
		Candidates:  cfg.Candidates,
		MaxWorkers:  cfg.MaxWorkers,
		CallTimeout: cfg.Timeouts.RemoteCall,
		Metrics:     emitter,
	}

	var s3Client s3util.API
	if clients != nil && clients.S3 != nil {
		s3Client = clients.S3
	}
	if cfg.Publish {
		if s3Client == nil {
			return nil, ErrPublishUnavailable
		}
		p.Publisher = &s3util.Publisher{Client: s3Client, Bucket: cfg.AWS.S3Bucket, Prefix: cfg.AWS.S3Prefix}
	}

	store, err := SummaryStore(cfg, clients, opts.SummaryInS3)
	if err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = "brainrot"
	}
	return &Studio{
		Config: cfg,
		Ideas: &idea.Generator{
			Completer:       router,
			Prompt:          assets.IdeaPrompt,
			ReferenceImages: cfg.ReferenceImages,
			Retry:           cfg.Retry,
			Timeout:         cfg.Timeouts.RemoteCall,
		},
		Processor:  p,
		Summary:    store,
		Metrics:    emitter,
		name:       name,
		initStart:  opts.InitStart,
		backends:   backends,
		publishing: p.Publisher != nil,
	}, nil
}

// SummaryStore returns the local summary file, or the S3 object
// <s3_prefix>/<summary_file> when inS3 is set.
func SummaryStore(cfg *config.Config, clients *lambdaboot.AWSClients, inS3 bool) (summary.Store, error) {
	if !inS3 {
		return &summary.FileStore{Path: cfg.SummaryPath()}, nil
	}
	if clients == nil || clients.S3 == nil {
		return nil, ErrPublishUnavailable
	}
	return &summary.S3Store{
		Client: clients.S3,
		Bucket: cfg.AWS.S3Bucket,
		Key:    path.Join(cfg.AWS.S3Prefix, path.Base(cfg.SummaryFile)),
	}, nil
}

func newImageGenerator(ctx context.Context, cfg *config.Config) (imagegen.Generator, error) {
	switch cfg.Image.Provider {
	case imagegen.ProviderImagen:
		return imagegen.NewImagenClient(ctx, cfg.Gemini.APIKey, cfg.Imagen.Model)
	case imagegen.ProviderXAI:
		return imagegen.NewXAIClient(cfg.XAI.APIKey, cfg.XAI.BaseURL, cfg.XAI.ImageModel, cfg.Timeouts.RemoteCall), nil
	default:
		return nil, fmt.Errorf("unknown image provider %q", cfg.Image.Provider)
	}
}

// Run executes one batch and returns its report. Individual idea failures
// are recorded in the report, never returned.
func (s *Studio) Run(ctx context.Context) pipeline.Report {
	runID := pipeline.NewRunID()
	s.startupLog(runID)

	start := time.Now()
	all := idea.Collect(ctx, s.Ideas, s.Config.Roster, s.Config.MaxWorkers)
	accepted := idea.Accepted(all)
	s.Metrics.New().
		Dimension("Stage", "Idea").
		Duration(metrics.IdeaLatencyMs, time.Since(start)).
		Count(metrics.IdeasAccepted, len(accepted)).
		Count(metrics.IdeasFailed, len(all)-len(accepted)).
		Flush()
	log.Info().
		Int("accepted", len(accepted)).
		Int("models", len(s.Config.Roster)).
		Dur("duration", time.Since(start)).
		Msg("Idea generation complete")

	coordinator := &pipeline.Coordinator{Processor: s.Processor, Summary: s.Summary}
	return coordinator.Run(ctx, runID, accepted)
}

func (s *Studio) startupLog(runID string) {
	rl := logging.NewRunLogger(s.name).
		RunID(runID).
		Roster(s.Config.Roster).
		Path("output", s.Config.OutputDir).
		Path("bucket", s.Config.AWS.S3Bucket).
		Path("table", s.Config.AWS.DynamoTable).
		Feature("publish", s.publishing).
		Feature("metrics", s.Config.Metrics.Enabled).
		Feature("dynamo_arena", s.Config.AWS.DynamoTable != "").
		Config("candidates", fmt.Sprint(s.Config.Candidates)).
		Config("max_workers", fmt.Sprint(s.Config.MaxWorkers)).
		Config("selection_model", s.Config.SelectionModel)
	if s.Summary != nil {
		rl.Path("summary", s.Summary.Location())
	}
	for stage, name := range s.backends {
		rl.Backend(stage, name)
	}
	if !s.initStart.IsZero() {
		rl.InitDuration(time.Since(s.initStart))
	}
	rl.Log()
}
