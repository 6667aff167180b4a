package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fpang/brainrot-studio/internal/model"
	"github.com/fpang/brainrot-studio/internal/summary"
)

type scriptedProcessor struct {
	calls []string
}

func (s *scriptedProcessor) Process(ctx context.Context, runID string, idea model.Idea) (model.PipelineResult, error) {
	s.calls = append(s.calls, idea.Name)
	switch idea.Name {
	case "abandon":
		return model.PipelineResult{}, ErrAbandoned
	case "fail":
		return model.PipelineResult{}, errors.New("ffmpeg exit status 1")
	case "panic":
		panic("nil map")
	}
	return model.PipelineResult{SourceModel: idea.SourceModel, IdeaName: idea.Name, VideoPath: idea.Name + ".mp4", Reasoning: "r", RunID: runID}, nil
}

func TestCoordinator_Run(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	if err := os.WriteFile(path, []byte(`[{"model":"old/m","idea_name":"old"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	proc := &scriptedProcessor{}
	c := &Coordinator{Processor: proc, Summary: &summary.FileStore{Path: path}}

	ideas := []model.Idea{
		{Name: "ok1", SourceModel: "a/1"},
		{Name: "abandon", SourceModel: "a/2"},
		{SourceModel: "a/3", Failed: true, ErrorMessage: "boom"},
		{Name: "panic", SourceModel: "a/4"},
		{Name: "fail", SourceModel: "a/5"},
		{Name: "ok2", SourceModel: "a/6"},
	}
	report := c.Run(context.Background(), "run-1", ideas)

	if len(proc.calls) != 5 {
		t.Errorf("processed %v, failed idea must be skipped", proc.calls)
	}
	results := report.Results()
	if len(results) != 2 || results[0].IdeaName != "ok1" || results[1].IdeaName != "ok2" {
		t.Errorf("results = %+v", results)
	}
	if report.SummaryErr != nil || report.SummaryTotal != 3 {
		t.Errorf("summary total = %d err = %v", report.SummaryTotal, report.SummaryErr)
	}

	var abandoned, failed int
	for _, o := range report.Outcomes {
		if o.Abandoned {
			abandoned++
		} else if o.Err != nil {
			failed++
		}
	}
	if abandoned != 1 || failed != 2 {
		t.Errorf("abandoned = %d failed = %d, want 1 and 2", abandoned, failed)
	}

	data, _ := os.ReadFile(path)
	var entries []map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 || entries[0]["idea_name"] != "old" || entries[2]["run_id"] != "run-1" {
		t.Errorf("summary entries = %v", entries)
	}
}

type failingStore struct{}

func (failingStore) Load(ctx context.Context) ([]byte, error) { return nil, nil }
func (failingStore) Save(ctx context.Context, data []byte) error {
	return errors.New("read-only file system")
}
func (failingStore) Location() string { return "ro" }

func TestCoordinator_SummaryFailureIsReported(t *testing.T) {
	c := &Coordinator{Processor: &scriptedProcessor{}, Summary: failingStore{}}
	report := c.Run(context.Background(), "run-1", []model.Idea{{Name: "ok", SourceModel: "a/b"}})

	if report.SummaryErr == nil {
		t.Error("expected summary error in report")
	}
	if len(report.Results()) != 1 {
		t.Error("results must survive a summary failure")
	}
}

func TestCoordinator_CancelledRunStillWritesSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	proc := &scriptedProcessor{}
	c := &Coordinator{Processor: proc, Summary: &summary.FileStore{Path: path}}
	report := c.Run(ctx, "run-1", []model.Idea{{Name: "ok", SourceModel: "a/b"}})

	if len(proc.calls) != 0 {
		t.Error("no idea should be processed after cancellation")
	}
	if report.SummaryErr != nil {
		t.Errorf("summary error = %v", report.SummaryErr)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("summary not written: %v", err)
	}
}
