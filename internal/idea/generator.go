// Package idea asks every model of the roster for one brainrot idea in
// parallel and keeps the ideas that came back well-formed.
package idea

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/brainrot-studio/internal/chat"
	"github.com/fpang/brainrot-studio/internal/jsonutil"
	"github.com/fpang/brainrot-studio/internal/model"
	"github.com/fpang/brainrot-studio/internal/pool"
	"github.com/fpang/brainrot-studio/internal/retry"
)

// DefaultReferenceImages are example characters attached to every idea request.
var DefaultReferenceImages = []string{
	"https://static.wikia.nocookie.net/brainrotnew/images/1/10/Bombardiro_Crocodilo.jpg/revision/latest?cb=20250417102447",
	"https://static.wikia.nocookie.net/brainrotnew/images/d/df/Anomali_tung_tung_tung.png/revision/latest?cb=20250417061140",
	"https://static.wikia.nocookie.net/brainrotnew/images/a/ac/Tralalero_tralala.jpg/revision/latest?cb=20250321131418",
}

// response is the JSON object a model must return. A missing, empty or
// non-string key fails the attempt.
type response struct {
	Name             string `json:"idea_name" validate:"required,notblank"`
	SpokenText       string `json:"audio_words" validate:"required,notblank"`
	ImageDescription string `json:"image_description" validate:"required,notblank"`
}

// Generator requests ideas from one model at a time.
type Generator struct {
	Completer       chat.Completer
	Prompt          string
	ReferenceImages []string
	Retry           retry.Policy
	// Timeout bounds each attempt. Zero leaves only the caller's context.
	Timeout time.Duration
}

// Generate asks sourceModel for one idea. It never returns an error: once
// the retry policy is exhausted the failure is returned as a failed Idea.
func (g *Generator) Generate(ctx context.Context, sourceModel string) model.Idea {
	log.Info().Str("model", sourceModel).Msg("Generating idea")
	start := time.Now()

	req := chat.Request{
		Model:  sourceModel,
		Prompt: g.Prompt,
		JSON:   true,
	}
	for _, url := range g.ReferenceImages {
		req.Images = append(req.Images, chat.Image{URL: url})
	}

	var parsed response
	err := retry.Do(ctx, g.Retry, "idea:"+sourceModel, func(ctx context.Context, attempt int) error {
		callCtx, cancel := g.withTimeout(ctx)
		defer cancel()

		text, err := g.Completer.Complete(callCtx, req)
		if err != nil {
			return err
		}
		parsed, err = jsonutil.ParseValid[response](text)
		return err
	})
	if err != nil {
		log.Error().Err(err).Str("model", sourceModel).Msg("Idea generation failed")
		return model.FailedIdea(sourceModel, unwrapExhausted(err))
	}

	log.Info().
		Str("model", sourceModel).
		Str("idea", parsed.Name).
		Dur("duration", time.Since(start)).
		Msg("Idea generated")

	return model.Idea{
		Name:             parsed.Name,
		SpokenText:       parsed.SpokenText,
		ImageDescription: parsed.ImageDescription,
		SourceModel:      sourceModel,
	}
}

func (g *Generator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.Timeout)
}

// unwrapExhausted keeps the failed idea's message focused on the last cause.
func unwrapExhausted(err error) error {
	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		return fmt.Errorf("after %d attempts: %w", exhausted.Attempts, exhausted.Err)
	}
	return err
}

// Source produces one idea for a model. *Generator implements it.
type Source interface {
	Generate(ctx context.Context, sourceModel string) model.Idea
}

// Collect asks every roster model for an idea with at most
// min(len(roster), maxWorkers) requests in flight. Ideas are returned in
// completion order and include failures.
func Collect(ctx context.Context, src Source, roster []string, maxWorkers int) []model.Idea {
	results := pool.Run(ctx, len(roster), maxWorkers, func(ctx context.Context, i int) (model.Idea, error) {
		return src.Generate(ctx, roster[i]), nil
	})

	ideas := make([]model.Idea, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			log.Error().Err(r.Err).Str("model", roster[r.Index]).Msg("Idea request aborted")
			ideas = append(ideas, model.FailedIdea(roster[r.Index], r.Err))
			continue
		}
		ideas = append(ideas, r.Value)
	}
	return ideas
}

// Accepted drops failed ideas, keeping order.
func Accepted(ideas []model.Idea) []model.Idea {
	var out []model.Idea
	for _, idea := range ideas {
		if !idea.Failed {
			out = append(out, idea)
		}
	}
	return out
}

// FanOut collects ideas from the whole roster and returns the accepted ones.
func FanOut(ctx context.Context, src Source, roster []string, maxWorkers int) []model.Idea {
	log.Info().Int("models", len(roster)).Msg("Generating ideas in parallel")
	ideas := Accepted(Collect(ctx, src, roster, maxWorkers))
	log.Info().
		Int("accepted", len(ideas)).
		Int("models", len(roster)).
		Msg("Idea generation complete")
	return ideas
}
