package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fpang/brainrot-studio/internal/arena"
	"github.com/fpang/brainrot-studio/internal/model"
	"github.com/fpang/brainrot-studio/internal/pipeline"
)

func TestFormatDurationShort(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{90 * time.Second, "1:30"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		if got := FormatDurationShort(tt.d); got != tt.want {
			t.Errorf("FormatDurationShort(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestPrintReport(t *testing.T) {
	report := pipeline.Report{
		RunID: "run-1",
		Outcomes: []pipeline.Outcome{
			{
				Idea:   model.Idea{SourceModel: "openai/gpt-4.1", Name: "Bombardiro"},
				Result: &model.PipelineResult{VideoPath: "public/a/a_final.mp4", VideoURL: "s3://b/a.mp4"},
			},
			{Idea: model.Idea{SourceModel: "x/y", Name: "Tung"}, Err: pipeline.ErrAbandoned, Abandoned: true},
			{Idea: model.Idea{SourceModel: "x/z", Name: "Trala"}, Err: errors.New("ffmpeg exited 1")},
		},
		SummaryTotal: 7,
	}

	var buf bytes.Buffer
	PrintReport(&buf, report)
	out := buf.String()
	for _, want := range []string{"s3://b/a.mp4", "abandoned", "failed", "ffmpeg exited 1", "1/3 videos produced", "summary has 7 entries"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	report.SummaryErr = errors.New("disk full")
	PrintReport(&buf, report)
	if !strings.Contains(buf.String(), "summary NOT updated: disk full") {
		t.Errorf("report should mention summary failure:\n%s", buf.String())
	}
}

func TestPrintLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	PrintLeaderboard(&buf, []arena.Contestant{
		{Model: "a/b", Rating: 1016, Wins: 1, TotalVotes: 1},
		{Model: "c/d", Rating: 984, Losses: 1, TotalVotes: 1},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "a/b") || !strings.Contains(lines[1], "Intermediate") || !strings.Contains(lines[1], "100.0") {
		t.Errorf("first row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "Beginner") {
		t.Errorf("second row = %q", lines[2])
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yes", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		if got := Confirm(strings.NewReader(tt.input), &out, "Overwrite?"); got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "Overwrite? [y/N]") {
			t.Errorf("prompt = %q", out.String())
		}
	}
}

func TestResolveDirectory(t *testing.T) {
	dir := t.TempDir()
	got, err := ResolveDirectory(dir)
	if err != nil || !filepath.IsAbs(got) {
		t.Errorf("ResolveDirectory() = %q, %v", got, err)
	}

	if _, err := ResolveDirectory(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing directory")
	}

	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ResolveDirectory(file); err == nil {
		t.Error("expected error for a file")
	}
}
