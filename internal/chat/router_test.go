package chat

import (
	"context"
	"testing"
)

type stubCompleter struct {
	name  string
	calls []Request
}

func (s *stubCompleter) Complete(ctx context.Context, req Request) (string, error) {
	s.calls = append(s.calls, req)
	return s.name, nil
}

func TestRouter_Dispatch(t *testing.T) {
	or := &stubCompleter{name: "openrouter"}
	gm := &stubCompleter{name: "gemini"}
	r := &Router{OpenRouter: or, Gemini: gm}

	tests := []struct {
		model string
		want  string
	}{
		{ModelGPT41, "openrouter"},
		{ModelGemini25Flash, "openrouter"},
		{"gemini:gemini-2.5-flash", "gemini"},
	}
	for _, tt := range tests {
		got, err := r.Complete(context.Background(), Request{Model: tt.model})
		if err != nil {
			t.Fatalf("Complete(%s) error: %v", tt.model, err)
		}
		if got != tt.want {
			t.Errorf("Complete(%s) routed to %s, want %s", tt.model, got, tt.want)
		}
	}
}

func TestRouter_MissingBackend(t *testing.T) {
	r := &Router{OpenRouter: &stubCompleter{}}
	if _, err := r.Complete(context.Background(), Request{Model: "gemini:gemini-2.5-pro"}); err == nil {
		t.Error("expected error when Gemini backend is not configured")
	}

	r = &Router{Gemini: &stubCompleter{}}
	if _, err := r.Complete(context.Background(), Request{Model: ModelGPT41}); err == nil {
		t.Error("expected error when OpenRouter backend is not configured")
	}
}

func TestGeminiModelName(t *testing.T) {
	if got := GeminiModelName("gemini:gemini-2.5-flash"); got != "gemini-2.5-flash" {
		t.Errorf("GeminiModelName() = %q", got)
	}
	if !IsGemini("gemini:x") || IsGemini(ModelGemini25Flash) {
		t.Error("IsGemini mismatch")
	}
	if len(DefaultRoster()) != 6 {
		t.Errorf("DefaultRoster() has %d entries, want 6", len(DefaultRoster()))
	}
}
