// Package main runs one brainrot generation batch per scheduled
// EventBridge event. Artifacts are written under /tmp, videos are
// published to S3 and the summary is kept in S3.
package main

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/fpang/brainrot-studio/internal/app"
	"github.com/fpang/brainrot-studio/internal/config"
	"github.com/fpang/brainrot-studio/internal/lambdaboot"
	"github.com/fpang/brainrot-studio/internal/logging"
)

// scratchDir is the only writable location in the Lambda runtime.
const scratchDir = "/tmp/public"

var (
	cfg    *config.Config
	studio *app.Studio
)

// Response is returned to the scheduler and recorded in the invocation log.
type Response struct {
	RunID        string   `json:"run_id"`
	Ideas        int      `json:"ideas"`
	Videos       int      `json:"videos"`
	VideoURLs    []string `json:"video_urls,omitempty"`
	SummaryTotal int      `json:"summary_total"`
	SummaryError string   `json:"summary_error,omitempty"`
}

func init() {
	initStart := time.Now()
	logging.InitJSON("")

	var err error
	cfg, err = config.Load(config.LoadOptions{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.InitJSON(cfg.LogLevel)
	cfg.OutputDir = scratchDir
	cfg.Metrics.Enabled = true
	cfg.Publish = cfg.AWS.S3Bucket != ""

	ctx := context.Background()
	clients, err := lambdaboot.InitAWS(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize AWS clients")
	}
	if err := clients.ResolveSecrets(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve secrets")
	}

	studio, err = app.New(ctx, cfg, clients, app.Options{
		Name:        "generate-lambda",
		SummaryInS3: cfg.AWS.S3Bucket != "",
		InitStart:   initStart,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
}

func handler(ctx context.Context, event events.CloudWatchEvent) (Response, error) {
	log.Info().
		Str("eventId", event.ID).
		Str("source", event.Source).
		Time("eventTime", event.Time).
		Msg("Scheduled generation triggered")

	// Warm containers keep /tmp; artifacts of earlier runs are already in S3.
	if cfg.Publish {
		if err := os.RemoveAll(cfg.OutputDir); err != nil {
			log.Warn().Err(err).Str("path", cfg.OutputDir).Msg("Failed to clear scratch directory")
		}
	}

	report := studio.Run(ctx)

	resp := Response{
		RunID:        report.RunID,
		Ideas:        len(report.Outcomes),
		SummaryTotal: report.SummaryTotal,
	}
	for _, r := range report.Results() {
		resp.Videos++
		if r.VideoURL != "" {
			resp.VideoURLs = append(resp.VideoURLs, r.VideoURL)
		}
	}
	if report.SummaryErr != nil {
		resp.SummaryError = report.SummaryErr.Error()
	}
	return resp, nil
}

func main() {
	lambda.Start(handler)
}
