package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/brainrot-studio/internal/model"
	"github.com/fpang/brainrot-studio/internal/summary"
)

// Processor runs one idea. *Pipeline implements it.
type Processor interface {
	Process(ctx context.Context, runID string, idea model.Idea) (model.PipelineResult, error)
}

var _ Processor = (*Pipeline)(nil)

// Outcome records what happened to one idea.
type Outcome struct {
	Idea      model.Idea
	Result    *model.PipelineResult
	Err       error
	Abandoned bool
	Duration  time.Duration
}

// Report summarizes a run.
type Report struct {
	RunID    string
	Outcomes []Outcome
	// SummaryTotal is the number of entries in the summary after the run.
	SummaryTotal int
	SummaryErr   error
}

// Results returns the successful results in processing order.
func (r *Report) Results() []model.PipelineResult {
	var out []model.PipelineResult
	for _, o := range r.Outcomes {
		if o.Result != nil {
			out = append(out, *o.Result)
		}
	}
	return out
}

// Coordinator processes ideas one at a time and records the results.
type Coordinator struct {
	Processor Processor
	Summary   summary.Store
}

// Run processes ideas sequentially. A failing or panicking idea is logged
// and skipped. Results are appended to the summary once all ideas are done;
// a summary failure is reported in the Report, not returned.
func (c *Coordinator) Run(ctx context.Context, runID string, ideas []model.Idea) Report {
	report := Report{RunID: runID}

	for _, idea := range ideas {
		if idea.Failed {
			log.Warn().Str("model", idea.SourceModel).Msg("Skipping failed idea")
			continue
		}
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Str("idea", idea.Name).Msg("Run cancelled, skipping remaining ideas")
			report.Outcomes = append(report.Outcomes, Outcome{Idea: idea, Err: err})
			continue
		}

		start := time.Now()
		result, err := c.process(ctx, runID, idea)
		outcome := Outcome{Idea: idea, Err: err, Duration: time.Since(start)}
		switch {
		case err == nil:
			outcome.Result = &result
		case errors.Is(err, ErrAbandoned):
			outcome.Abandoned = true
			log.Warn().Err(err).Str("model", idea.SourceModel).Str("idea", idea.Name).Msg("Idea abandoned")
		default:
			log.Error().Err(err).Str("model", idea.SourceModel).Str("idea", idea.Name).Msg("Idea failed")
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	results := report.Results()
	if c.Summary != nil {
		// The summary write must not be skipped because the run was cancelled.
		total, err := summary.Append(context.WithoutCancel(ctx), c.Summary, results)
		report.SummaryTotal = total
		report.SummaryErr = err
		if err != nil {
			log.Error().Err(err).Str("path", c.Summary.Location()).Msg("Failed to update summary")
		}
	}

	log.Info().
		Str("run_id", runID).
		Int("ideas", len(ideas)).
		Int("videos", len(results)).
		Msg("Run complete")
	return report
}

func (c *Coordinator) process(ctx context.Context, runID string, idea model.Idea) (result model.PipelineResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panicked: %v", r)
		}
	}()
	return c.Processor.Process(ctx, runID, idea)
}
