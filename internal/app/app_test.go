package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fpang/brainrot-studio/internal/chat"
	"github.com/fpang/brainrot-studio/internal/config"
	"github.com/fpang/brainrot-studio/internal/idea"
	"github.com/fpang/brainrot-studio/internal/imagegen"
	"github.com/fpang/brainrot-studio/internal/metrics"
	"github.com/fpang/brainrot-studio/internal/model"
	"github.com/fpang/brainrot-studio/internal/pipeline"
	"github.com/fpang/brainrot-studio/internal/retry"
	"github.com/fpang/brainrot-studio/internal/summary"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		OutputDir:   dir,
		SummaryFile: "summary.json",
		Roster:      []string{chat.ModelGPT41, chat.ModelO4MiniHigh},
		Candidates:  2,
		MaxWorkers:  2,
		Retry:       retry.Policy{MaxAttempts: 1},
		Image:       config.ImageConfig{Provider: imagegen.ProviderXAI, ThumbnailMaxDimension: 256},
		OpenRouter:  config.OpenRouterConfig{APIKey: "or"},
		XAI:         config.XAIConfig{APIKey: "xai"},
		ElevenLabs:  config.ElevenLabsConfig{APIKey: "el"},
		FFmpeg:      config.FFmpegConfig{Path: "ffmpeg"},
	}
}

func TestNew_LocalRun(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(context.Background(), cfg, nil, Options{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	fs, ok := s.Summary.(*summary.FileStore)
	if !ok {
		t.Fatalf("Summary = %T, want *summary.FileStore", s.Summary)
	}
	if fs.Path != filepath.Join(cfg.OutputDir, "summary.json") {
		t.Errorf("summary path = %q", fs.Path)
	}
	p, ok := s.Processor.(*pipeline.Pipeline)
	if !ok {
		t.Fatalf("Processor = %T", s.Processor)
	}
	if p.Publisher != nil {
		t.Error("publisher should be nil without --publish")
	}
	if p.Candidates != 2 || p.OutputDir != cfg.OutputDir {
		t.Errorf("pipeline = %+v", p)
	}
	if s.backends["chat"] != "openrouter" || s.backends["image"] != "xai" {
		t.Errorf("backends = %v", s.backends)
	}
}

func TestNew_ConfigErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.ElevenLabs.APIKey = ""
	if _, err := New(context.Background(), cfg, nil, Options{}); !errors.Is(err, config.ErrMissingSecret) {
		t.Errorf("New() = %v, want ErrMissingSecret", err)
	}

	cfg = testConfig(t)
	cfg.Publish = true
	cfg.AWS.S3Bucket = "bucket"
	if _, err := New(context.Background(), cfg, nil, Options{}); !errors.Is(err, ErrPublishUnavailable) {
		t.Errorf("New() = %v, want ErrPublishUnavailable", err)
	}

	cfg = testConfig(t)
	if _, err := New(context.Background(), cfg, nil, Options{SummaryInS3: true}); !errors.Is(err, ErrPublishUnavailable) {
		t.Errorf("New() = %v, want ErrPublishUnavailable", err)
	}
}

type fakeSource struct{}

func (fakeSource) Generate(ctx context.Context, sourceModel string) model.Idea {
	if sourceModel == chat.ModelO4MiniHigh {
		return model.FailedIdea(sourceModel, errors.New("missing key"))
	}
	return model.Idea{
		SourceModel:      sourceModel,
		Name:             "Tralalero Tralala",
		SpokenText:       "Tralalero tralala",
		ImageDescription: "a shark in sneakers",
	}
}

type fakeProcessor struct {
	calls []model.Idea
}

func (f *fakeProcessor) Process(ctx context.Context, runID string, idea model.Idea) (model.PipelineResult, error) {
	f.calls = append(f.calls, idea)
	return model.PipelineResult{
		SourceModel: idea.SourceModel,
		IdeaName:    idea.Name,
		VideoPath:   "public/x/x_final.mp4",
		Reasoning:   "r",
		RunID:       runID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func TestStudio_Run(t *testing.T) {
	cfg := testConfig(t)
	var buf bytes.Buffer
	proc := &fakeProcessor{}
	store := &summary.FileStore{Path: cfg.SummaryPath()}
	s := &Studio{
		Config:    cfg,
		Ideas:     fakeSource{},
		Processor: proc,
		Summary:   store,
		Metrics:   metrics.NewEmitter(metrics.Namespace, &buf),
		name:      "test",
		backends:  map[string]string{},
	}

	report := s.Run(context.Background())

	if len(proc.calls) != 1 || proc.calls[0].SourceModel != chat.ModelGPT41 {
		t.Fatalf("processed = %+v, want only the accepted idea", proc.calls)
	}
	if report.RunID == "" || report.SummaryTotal != 1 || report.SummaryErr != nil {
		t.Errorf("report = %+v", report)
	}
	results, err := summary.Results(context.Background(), store)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].RunID != report.RunID {
		t.Errorf("summary = %+v", results)
	}

	line := buf.String()
	for _, want := range []string{metrics.IdeasAccepted, metrics.IdeasFailed, metrics.IdeaLatencyMs} {
		if !strings.Contains(line, want) {
			t.Errorf("metrics output missing %s: %s", want, line)
		}
	}
}

// countingCompleter answers modelA with a valid idea and fails modelB.
type countingCompleter struct {
	mu    sync.Mutex
	calls map[string]int
}

func (c *countingCompleter) Complete(ctx context.Context, req chat.Request) (string, error) {
	c.mu.Lock()
	c.calls[req.Model]++
	c.mu.Unlock()
	if req.Model == "modelB" {
		return "", &chat.APIError{Provider: "openrouter", StatusCode: 500}
	}
	return `{"idea_name":"Tung Tung Sahur","audio_words":"tung tung tung sahur","image_description":"a wooden log with a bat"}`, nil
}

func TestStudio_Run_OneModelFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Roster = []string{"modelA", "modelB"}
	cfg.Retry = retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, Multiplier: 2}

	completer := &countingCompleter{calls: map[string]int{}}
	proc := &fakeProcessor{}
	s := &Studio{
		Config:    cfg,
		Ideas:     &idea.Generator{Completer: completer, Prompt: "p", Retry: cfg.Retry},
		Processor: proc,
		Summary:   &summary.FileStore{Path: cfg.SummaryPath()},
		name:      "test",
		backends:  map[string]string{},
	}

	report := s.Run(context.Background())

	if completer.calls["modelB"] != 2 {
		t.Errorf("modelB attempts = %d, want 2", completer.calls["modelB"])
	}
	if len(proc.calls) != 1 || proc.calls[0].SourceModel != "modelA" {
		t.Fatalf("processed = %+v, want exactly the modelA idea", proc.calls)
	}
	if len(report.Outcomes) != 1 || report.SummaryTotal != 1 {
		t.Errorf("report = %+v", report)
	}
}
