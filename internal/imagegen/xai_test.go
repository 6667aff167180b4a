package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fpang/brainrot-studio/internal/chat"
)

func TestXAIClient_GenerateFetchesURL(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/images/generations":
			var req xaiRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			if req.Model != DefaultXAIModel || req.Prompt != "Italian brainrot meme: a shark in sneakers" {
				t.Errorf("request = %+v", req)
			}
			if r.Header.Get("Authorization") != "Bearer xai-key" {
				t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
			}
			w.Write([]byte(`{"data":[{"url":"` + srv.URL + `/files/img.jpg"}]}`))
		case "/files/img.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write([]byte("jpeg-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewXAIClient("xai-key", srv.URL, "", 0)
	data, err := c.Generate(context.Background(), Prompt(DefaultPromptPrefix, " a shark in sneakers "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("data = %q", data)
	}
}

func TestXAIClient_GenerateInlineData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b64 := base64.StdEncoding.EncodeToString([]byte("inline"))
		w.Write([]byte(`{"data":[{"b64_json":"` + b64 + `"}]}`))
	}))
	defer srv.Close()

	data, err := NewXAIClient("k", srv.URL, "", 0).Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "inline" {
		t.Errorf("data = %q", data)
	}
}

func TestXAIClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `oops`},
		{"no data", http.StatusOK, `{"data":[]}`},
		{"bad json", http.StatusOK, `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewXAIClient("k", srv.URL, "", 0).Generate(context.Background(), "p")
			if err == nil {
				t.Fatal("expected error")
			}
			var apiErr *chat.APIError
			if tt.status != http.StatusOK && !errors.As(err, &apiErr) {
				t.Errorf("error = %v, want *chat.APIError", err)
			}
		})
	}
}
