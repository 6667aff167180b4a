package idea

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fpang/brainrot-studio/internal/chat"
	"github.com/fpang/brainrot-studio/internal/retry"
)

const validIdea = `{"idea_name":"Bombardiro Crocodilo","audio_words":"bombardiro crocodilo","image_description":"a crocodile bomber plane"}`

// scriptedCompleter returns canned replies per model, one per call.
type scriptedCompleter struct {
	mu      sync.Mutex
	replies map[string][]string
	errs    map[string]error
	calls   map[string]int
	reqs    []chat.Request
}

func (s *scriptedCompleter) Complete(ctx context.Context, req chat.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	n := s.calls[req.Model]
	s.calls[req.Model]++
	s.reqs = append(s.reqs, req)

	if err := s.errs[req.Model]; err != nil {
		return "", err
	}
	replies := s.replies[req.Model]
	if len(replies) == 0 {
		return "", errors.New("no reply scripted")
	}
	if n >= len(replies) {
		n = len(replies) - 1
	}
	return replies[n], nil
}

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, Multiplier: 2}
}

func TestGenerate_Success(t *testing.T) {
	c := &scriptedCompleter{replies: map[string][]string{"m": {"```json\n" + validIdea + "\n```"}}}
	g := &Generator{Completer: c, Prompt: "p", ReferenceImages: DefaultReferenceImages, Retry: fastPolicy()}

	got := g.Generate(context.Background(), "m")
	if got.Failed {
		t.Fatalf("unexpected failure: %s", got.ErrorMessage)
	}
	if got.Name != "Bombardiro Crocodilo" || got.SourceModel != "m" {
		t.Errorf("idea = %+v", got)
	}
	if len(c.reqs) != 1 {
		t.Fatalf("calls = %d, want 1", len(c.reqs))
	}
	if !c.reqs[0].JSON || len(c.reqs[0].Images) != 3 {
		t.Errorf("request = %+v, want JSON with 3 reference images", c.reqs[0])
	}
}

func TestGenerate_MissingKeyRetriesThenFails(t *testing.T) {
	c := &scriptedCompleter{replies: map[string][]string{
		"m": {`{"idea_name":"x","audio_words":"y"}`},
	}}
	g := &Generator{Completer: c, Prompt: "p", Retry: fastPolicy()}

	got := g.Generate(context.Background(), "m")
	if !got.Failed {
		t.Fatal("expected failed idea")
	}
	if got.SourceModel != "m" || got.ErrorMessage == "" {
		t.Errorf("failed idea = %+v", got)
	}
	if c.calls["m"] != 2 {
		t.Errorf("attempts = %d, want 2", c.calls["m"])
	}
}

func TestGenerate_BlankFieldRetries(t *testing.T) {
	c := &scriptedCompleter{replies: map[string][]string{"m": {
		`{"idea_name":"x","audio_words":"  ","image_description":"z"}`,
		validIdea,
	}}}
	g := &Generator{Completer: c, Prompt: "p", Retry: fastPolicy()}

	got := g.Generate(context.Background(), "m")
	if got.Failed {
		t.Fatalf("expected success on retry, got %s", got.ErrorMessage)
	}
	if c.calls["m"] != 2 {
		t.Errorf("attempts = %d, want 2", c.calls["m"])
	}
}

func TestGenerate_RecoversOnSecondAttempt(t *testing.T) {
	c := &scriptedCompleter{replies: map[string][]string{"m": {"not json", validIdea}}}
	g := &Generator{Completer: c, Prompt: "p", Retry: fastPolicy()}

	if got := g.Generate(context.Background(), "m"); got.Failed {
		t.Fatalf("expected success on retry, got %s", got.ErrorMessage)
	}
}

func TestFanOut_KeepsOnlyWellFormedIdeas(t *testing.T) {
	roster := []string{"a/1", "b/2", "c/3", "d/4", "e/5", "f/6"}
	c := &scriptedCompleter{
		replies: map[string][]string{
			"a/1": {validIdea},
			"b/2": {validIdea},
			"c/3": {`{"idea_name":"x"}`},
			"d/4": {validIdea},
			"e/5": {`{"idea_name":"x","audio_words":7,"image_description":"z"}`},
		},
		errs: map[string]error{"f/6": &chat.APIError{Provider: "openrouter", StatusCode: 502}},
	}
	g := &Generator{Completer: c, Prompt: "p", Retry: fastPolicy()}

	ideas := FanOut(context.Background(), g, roster, 5)
	if len(ideas) != 3 {
		t.Fatalf("accepted = %d, want 3", len(ideas))
	}

	var models []string
	for _, idea := range ideas {
		if idea.Failed {
			t.Errorf("failed idea leaked: %+v", idea)
		}
		models = append(models, idea.SourceModel)
	}
	sort.Strings(models)
	if strings.Join(models, ",") != "a/1,b/2,d/4" {
		t.Errorf("models = %v", models)
	}
	for _, m := range []string{"c/3", "e/5", "f/6"} {
		if c.calls[m] != 2 {
			t.Errorf("%s attempts = %d, want 2", m, c.calls[m])
		}
	}
}

func TestCollect_IncludesFailures(t *testing.T) {
	c := &scriptedCompleter{errs: map[string]error{"x": errors.New("down")}}
	g := &Generator{Completer: c, Prompt: "p", Retry: retry.Policy{MaxAttempts: 1}}

	ideas := Collect(context.Background(), g, []string{"x"}, 5)
	if len(ideas) != 1 || !ideas[0].Failed {
		t.Fatalf("ideas = %+v", ideas)
	}
	if !strings.Contains(ideas[0].ErrorMessage, "down") {
		t.Errorf("error message = %q", ideas[0].ErrorMessage)
	}
	if len(Accepted(ideas)) != 0 {
		t.Error("Accepted should drop failed ideas")
	}
}
