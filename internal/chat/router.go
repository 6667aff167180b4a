package chat

import (
	"context"
	"fmt"
)

// Router dispatches each request to the backend that serves its model.
type Router struct {
	OpenRouter Completer
	Gemini     Completer
}

// Complete implements Completer.
func (r *Router) Complete(ctx context.Context, req Request) (string, error) {
	backend, err := r.backend(req.Model)
	if err != nil {
		return "", err
	}
	return backend.Complete(ctx, req)
}

func (r *Router) backend(model string) (Completer, error) {
	if IsGemini(model) {
		if r.Gemini == nil {
			return nil, fmt.Errorf("model %s needs a Gemini API key", model)
		}
		return r.Gemini, nil
	}
	if r.OpenRouter == nil {
		return nil, fmt.Errorf("model %s needs an OpenRouter API key", model)
	}
	return r.OpenRouter, nil
}
