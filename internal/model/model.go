// Package model holds the data types that flow through a generation run:
// ideas produced by the model roster, the media generated for each idea,
// the selection made among image candidates, and the per-idea result that
// lands in the summary store.
package model

import (
	"strings"
	"time"
)

// Idea is a creative brief produced by one model of the roster.
// A failed idea carries no usable content and never enters the pipeline.
type Idea struct {
	Name             string `json:"idea_name,omitempty"`
	SpokenText       string `json:"audio_words,omitempty"`
	ImageDescription string `json:"image_description,omitempty"`
	SourceModel      string `json:"model"`
	Failed           bool   `json:"failed,omitempty"`
	ErrorMessage     string `json:"error,omitempty"`
}

// FailedIdea builds the failure value returned once a model exhausts its retries.
func FailedIdea(sourceModel string, err error) Idea {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Idea{SourceModel: sourceModel, Failed: true, ErrorMessage: msg}
}

// ImageCandidate is one generated image on disk. Index is the 0-based
// ordinal of the request within the batch generated for one idea.
type ImageCandidate struct {
	Index int
	Path  string
}

// AudioClip is the synthesized speech for one idea.
type AudioClip struct {
	Path string
}

// SelectionResult is the outcome of the best-candidate selection call.
// ChosenIndex is 0-based and refers to the slice of candidates that was
// offered to the selection call.
type SelectionResult struct {
	ChosenIndex int
	Reasoning   string
	Fallback    bool
}

// PipelineResult is the terminal artifact of one successful per-idea run.
// The JSON keys match the summary.json format consumed by the arena.
type PipelineResult struct {
	SourceModel string    `json:"model"`
	IdeaName    string    `json:"idea_name"`
	VideoPath   string    `json:"video_path"`
	Reasoning   string    `json:"reasoning"`
	VideoURL    string    `json:"video_url,omitempty"`
	RunID       string    `json:"run_id,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// ContestantID derives the arena identifier for a model, e.g.
// "openai/gpt-4.1" becomes "openai_gpt-4.1".
func ContestantID(sourceModel string) string {
	return strings.ReplaceAll(sourceModel, "/", "_")
}
