// Package jsonutil decodes the JSON objects that language models return,
// tolerating markdown code fences and surrounding prose, and validates the
// decoded value against its struct tags.
package jsonutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// ErrNoJSON is returned when the text contains no JSON object or array.
var ErrNoJSON = errors.New("no JSON content found")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("notblank", validators.NotBlank)
	})
	return validate
}

// StripMarkdownFences removes a ```json ... ``` (or bare ```) wrapper.
// Text without a leading fence is returned trimmed but otherwise unchanged.
func StripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}

	end := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			end = i
			break
		}
	}
	return strings.Join(lines[1:end], "\n")
}

// ExtractJSON returns the span from the first '{' or '[' to the last
// matching closing delimiter.
func ExtractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)

	obj := strings.Index(text, "{")
	arr := strings.Index(text, "[")
	if obj == -1 && arr == -1 {
		return "", ErrNoJSON
	}

	start, closing := obj, "}"
	if obj == -1 || (arr != -1 && arr < obj) {
		start, closing = arr, "]"
	}

	text = text[start:]
	end := strings.LastIndex(text, closing)
	if end == -1 {
		return "", fmt.Errorf("no closing %s found", closing)
	}
	return text[:end+1], nil
}

// ParseJSON extracts the JSON payload from raw model output and decodes it into T.
func ParseJSON[T any](raw string) (T, error) {
	var out T

	payload, err := ExtractJSON(StripMarkdownFences(raw))
	if err != nil {
		return out, fmt.Errorf("%w (raw length: %d)", err, len(raw))
	}

	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return out, fmt.Errorf("invalid JSON: %w (text: %s)", err, Truncate(payload, 200))
	}
	return out, nil
}

// ParseValid is ParseJSON followed by struct-tag validation, so a missing
// or empty required key is reported as a parse failure.
func ParseValid[T any](raw string) (T, error) {
	out, err := ParseJSON[T](raw)
	if err != nil {
		return out, err
	}
	if err := validatorInstance().Struct(out); err != nil {
		var zero T
		return zero, fmt.Errorf("response failed validation: %w", err)
	}
	return out, nil
}

// Truncate shortens s to at most n bytes, appending "..." when cut. The cut
// never splits a multi-byte rune.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
