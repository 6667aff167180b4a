// Package pipeline turns accepted ideas into videos. Pipeline handles one
// idea: image candidates, speech, selection, composition. Coordinator runs
// the pipeline over every idea of a run and appends the results to the
// summary store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fpang/brainrot-studio/internal/filehandler"
	"github.com/fpang/brainrot-studio/internal/imagegen"
	"github.com/fpang/brainrot-studio/internal/metrics"
	"github.com/fpang/brainrot-studio/internal/model"
	"github.com/fpang/brainrot-studio/internal/pool"
	"github.com/fpang/brainrot-studio/internal/selection"
	"github.com/fpang/brainrot-studio/internal/speech"
	"github.com/fpang/brainrot-studio/internal/video"
)

// DefaultCandidates is the number of images requested per idea.
const DefaultCandidates = 5

// ErrAbandoned marks an idea that was skipped because it had no image
// candidates or no audio. It is not a run failure.
var ErrAbandoned = errors.New("idea abandoned")

// Selector picks the best candidate. *selection.Selector implements it.
type Selector interface {
	Select(ctx context.Context, idea model.Idea, candidates []model.ImageCandidate) model.SelectionResult
}

// Publisher uploads a finished video and returns its URL.
// *s3util.Publisher implements it.
type Publisher interface {
	Publish(ctx context.Context, runID, localPath, relPath string) (string, error)
}

var _ Selector = (*selection.Selector)(nil)

// Pipeline produces one video per idea.
type Pipeline struct {
	OutputDir    string
	Images       imagegen.Generator
	PromptPrefix string
	Speech       speech.Synthesizer
	Selector     Selector
	Compositor   video.Compositor
	// Publisher is optional; when set, VideoURL is filled in.
	Publisher Publisher

	Candidates int
	MaxWorkers int
	// CallTimeout bounds each image and speech request.
	CallTimeout time.Duration
	Metrics     *metrics.Emitter
	Now         func() time.Time
}

// NewRunID returns a fresh identifier for a generation run.
func NewRunID() string {
	return uuid.NewString()
}

// Process runs every stage for one idea. A missing image set or audio clip
// returns an error wrapping ErrAbandoned; a failed selection never does.
func (p *Pipeline) Process(ctx context.Context, runID string, idea model.Idea) (model.PipelineResult, error) {
	if idea.Failed {
		return model.PipelineResult{}, fmt.Errorf("%w: idea from %s failed generation", ErrAbandoned, idea.SourceModel)
	}

	logger := log.With().Str("model", idea.SourceModel).Str("idea", idea.Name).Logger()
	rec := p.Metrics.New().Dimension("Stage", "pipeline").Property("runId", runID).Property("model", idea.SourceModel)
	defer rec.Flush()

	dir := filehandler.IdeaDir(p.OutputDir, idea.SourceModel, idea.Name)
	if err := filehandler.WriteJSON(filepath.Join(dir, filehandler.IdeaFile), idea); err != nil {
		return model.PipelineResult{}, fmt.Errorf("write idea: %w", err)
	}
	logger.Info().Str("path", dir).Msg("Processing idea")

	candidates := p.generateCandidates(ctx, idea, dir)
	requested := p.candidateCount()
	rec.Count(metrics.CandidatesGenerated, len(candidates)).
		Count(metrics.CandidatesFailed, requested-len(candidates))
	if len(candidates) == 0 {
		rec.Count(metrics.IdeasAbandoned, 1)
		return model.PipelineResult{}, fmt.Errorf("%w: no image candidates survived", ErrAbandoned)
	}

	audioPath, err := p.generateAudio(ctx, idea, dir)
	if err != nil {
		rec.Count(metrics.IdeasAbandoned, 1)
		return model.PipelineResult{}, fmt.Errorf("%w: audio: %v", ErrAbandoned, err)
	}

	choice := p.Selector.Select(ctx, idea, candidates)
	if _, ok := selection.ResolveIndex(choice.ChosenIndex+1, len(candidates)); !ok {
		logger.Warn().Int("chosen_index", choice.ChosenIndex).Msg("Selected index out of range, using first candidate")
		choice = selection.Fallback()
	}
	if choice.Fallback {
		rec.Count(metrics.SelectionFallback, 1)
	}
	chosen := candidates[choice.ChosenIndex]

	videoPath := filehandler.VideoPath(dir, idea.Name)
	start := time.Now()
	if err := p.Compositor.Compose(ctx, chosen.Path, audioPath, videoPath); err != nil {
		return model.PipelineResult{}, fmt.Errorf("compose video: %w", err)
	}
	rec.Duration(metrics.VideoLatencyMs, time.Since(start)).Count(metrics.VideosProduced, 1)

	if err := filehandler.WriteFile(filepath.Join(dir, filehandler.ReasoningFile), []byte(selection.FormatReasoning(choice))); err != nil {
		logger.Warn().Err(err).Msg("Failed to write reasoning")
	}

	result := model.PipelineResult{
		SourceModel: idea.SourceModel,
		IdeaName:    idea.Name,
		VideoPath:   videoPath,
		Reasoning:   choice.Reasoning,
		RunID:       runID,
		CreatedAt:   p.now(),
	}

	if p.Publisher != nil {
		rel, err := filepath.Rel(p.OutputDir, videoPath)
		if err != nil {
			rel = filepath.Base(videoPath)
		}
		url, err := p.Publisher.Publish(ctx, runID, videoPath, rel)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to publish video, keeping local copy only")
		} else {
			result.VideoURL = url
		}
	}

	logger.Info().
		Str("path", videoPath).
		Int("chosen_index", choice.ChosenIndex).
		Bool("fallback", choice.Fallback).
		Msg("Idea processed")
	return result, nil
}

// generateCandidates requests the images concurrently and returns the ones
// written to disk, ordered by request index.
func (p *Pipeline) generateCandidates(ctx context.Context, idea model.Idea, dir string) []model.ImageCandidate {
	n := p.candidateCount()
	prompt := imagegen.Prompt(p.PromptPrefix, idea.ImageDescription)
	log.Info().Str("idea", idea.Name).Int("count", n).Msg("Generating image candidates")

	results := pool.Run(ctx, n, p.MaxWorkers, func(ctx context.Context, i int) (model.ImageCandidate, error) {
		callCtx, cancel := p.callContext(ctx)
		defer cancel()

		data, err := p.Images.Generate(callCtx, prompt)
		if err != nil {
			return model.ImageCandidate{}, err
		}
		path := filehandler.ImagePath(dir, i)
		if err := filehandler.WriteFile(path, data); err != nil {
			return model.ImageCandidate{}, err
		}
		return model.ImageCandidate{Index: i, Path: path}, nil
	})

	var candidates []model.ImageCandidate
	for _, r := range results {
		if r.Err != nil {
			log.Error().Err(r.Err).Str("idea", idea.Name).Int("candidate", r.Index).Msg("Image candidate failed")
			continue
		}
		log.Info().Str("path", r.Value.Path).Int("candidate", r.Index).Msg("Image saved")
		candidates = append(candidates, r.Value)
	}
	sort.Slice(candidates, func(a, b int) bool { return candidates[a].Index < candidates[b].Index })
	return candidates
}

func (p *Pipeline) generateAudio(ctx context.Context, idea model.Idea, dir string) (string, error) {
	callCtx, cancel := p.callContext(ctx)
	defer cancel()

	audio, err := p.Speech.Synthesize(callCtx, idea.SpokenText)
	if err != nil {
		log.Error().Err(err).Str("idea", idea.Name).Msg("Audio generation failed")
		return "", err
	}
	path := filepath.Join(dir, filehandler.AudioFile)
	if err := filehandler.WriteFile(path, audio); err != nil {
		return "", err
	}
	log.Info().Str("path", path).Msg("Audio saved")
	return path, nil
}

func (p *Pipeline) candidateCount() int {
	if p.Candidates <= 0 {
		return DefaultCandidates
	}
	return p.Candidates
}

func (p *Pipeline) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.CallTimeout)
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now().UTC()
}
