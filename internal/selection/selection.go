// Package selection asks a language model to pick the best image candidate
// for an idea. It never fails: any problem falls back to the first
// candidate with a fixed reasoning.
package selection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/brainrot-studio/internal/assets"
	"github.com/fpang/brainrot-studio/internal/chat"
	"github.com/fpang/brainrot-studio/internal/filehandler"
	"github.com/fpang/brainrot-studio/internal/jsonutil"
	"github.com/fpang/brainrot-studio/internal/model"
)

// FallbackReasoning is recorded whenever the selection call cannot be used.
const FallbackReasoning = "Error in selection process, defaulting to first image"

// Selector picks one candidate per idea.
type Selector struct {
	Completer chat.Completer
	// Model overrides the model used for selection. Empty means the idea's
	// own source model.
	Model        string
	MaxDimension int
	Timeout      time.Duration
}

type response struct {
	Reasoning   string   `json:"reasoning" validate:"required"`
	ChosenImage *flexInt `json:"chosen_image" validate:"required"`
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("chosen_image %s is not a number", data)
	}
	if n != float64(int(n)) {
		return fmt.Errorf("chosen_image %v is not an integer", n)
	}
	*f = flexInt(n)
	return nil
}

// Fallback returns the deterministic result used when selection fails.
func Fallback() model.SelectionResult {
	return model.SelectionResult{ChosenIndex: 0, Reasoning: FallbackReasoning, Fallback: true}
}

// ResolveIndex converts the model's 1-based choice into a 0-based index
// into count candidates. ok is false when the choice is out of range.
func ResolveIndex(chosen, count int) (int, bool) {
	idx := chosen - 1
	if idx < 0 || idx >= count {
		return 0, false
	}
	return idx, true
}

// Select offers every candidate to the selection model and returns the
// validated choice. ChosenIndex refers to the candidates slice as given.
func (s *Selector) Select(ctx context.Context, idea model.Idea, candidates []model.ImageCandidate) model.SelectionResult {
	selModel := s.Model
	if selModel == "" {
		selModel = idea.SourceModel
	}
	logger := log.With().Str("idea", idea.Name).Str("model", selModel).Logger()

	if len(candidates) == 0 {
		logger.Error().Msg("No candidates to select from")
		return Fallback()
	}

	result, err := s.ask(ctx, selModel, idea, candidates)
	if err != nil {
		logger.Error().Err(err).Msg("Selection failed, defaulting to first image")
		return Fallback()
	}

	logger.Info().
		Int("chosen_index", result.ChosenIndex).
		Int("candidates", len(candidates)).
		Msg("Candidate selected")
	return result
}

func (s *Selector) ask(ctx context.Context, selModel string, idea model.Idea, candidates []model.ImageCandidate) (model.SelectionResult, error) {
	req := chat.Request{
		Model: selModel,
		Prompt: assets.RenderSelectionPrompt(assets.SelectionData{
			IdeaName:   idea.Name,
			SpokenText: idea.SpokenText,
			Count:      len(candidates),
		}),
		JSON: true,
	}
	for _, c := range candidates {
		data, mimeType, err := filehandler.EncodeForSelection(c.Path, s.MaxDimension)
		if err != nil {
			return model.SelectionResult{}, fmt.Errorf("candidate %d: %w", c.Index, err)
		}
		req.Images = append(req.Images, chat.Image{Data: data, MIMEType: mimeType})
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	text, err := s.Completer.Complete(ctx, req)
	if err != nil {
		return model.SelectionResult{}, err
	}

	parsed, err := jsonutil.ParseValid[response](text)
	if err != nil {
		return model.SelectionResult{}, err
	}

	idx, ok := ResolveIndex(int(*parsed.ChosenImage), len(candidates))
	if !ok {
		return model.SelectionResult{}, fmt.Errorf("chosen_image %d out of range 1..%d", int(*parsed.ChosenImage), len(candidates))
	}
	return model.SelectionResult{ChosenIndex: idx, Reasoning: parsed.Reasoning}, nil
}

// FormatReasoning renders the reasoning sidecar with a 1-based image number.
func FormatReasoning(result model.SelectionResult) string {
	return fmt.Sprintf("Chosen image: %d\n\nReasoning:\n%s", result.ChosenIndex+1, result.Reasoning)
}
