// Package summary persists the cumulative list of produced videos. Each
// run loads the list, appends its own results and rewrites it in full.
// Existing entries are carried over unchanged apart from indentation,
// including fields this version does not know about.
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/fpang/brainrot-studio/internal/model"
)

// Store loads and saves the raw summary document.
type Store interface {
	// Load returns the stored document, or nil when there is none yet.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	// Location names the store in logs.
	Location() string
}

// Decode parses a summary document into its entries. A missing or empty
// document has no entries; so does one that is not a JSON array, which is
// logged and treated as empty.
func Decode(data []byte, location string) []json.RawMessage {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Warn().Err(err).Str("path", location).Msg("Summary is not a JSON array, starting a new one")
		return nil
	}
	return entries
}

// Encode renders entries as an indented JSON array.
func Encode(entries []json.RawMessage) ([]byte, error) {
	if entries == nil {
		entries = []json.RawMessage{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	return append(data, '\n'), nil
}

// Append adds results after the existing entries and rewrites the store.
// It returns the total number of entries written.
func Append(ctx context.Context, store Store, results []model.PipelineResult) (int, error) {
	data, err := store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load summary: %w", err)
	}
	entries := Decode(data, store.Location())
	existing := len(entries)

	for _, r := range results {
		raw, err := json.Marshal(r)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal result for %s: %w", r.SourceModel, err)
		}
		entries = append(entries, raw)
	}

	out, err := Encode(entries)
	if err != nil {
		return 0, err
	}
	if err := store.Save(ctx, out); err != nil {
		return 0, fmt.Errorf("save summary: %w", err)
	}

	log.Info().
		Str("path", store.Location()).
		Int("existing", existing).
		Int("added", len(results)).
		Msg("Summary updated")
	return len(entries), nil
}

// Results returns the entries that decode as pipeline results, in stored
// order. Entries that do not decode are skipped.
func Results(ctx context.Context, store Store) ([]model.PipelineResult, error) {
	data, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load summary: %w", err)
	}

	var out []model.PipelineResult
	for i, raw := range Decode(data, store.Location()) {
		var r model.PipelineResult
		if err := json.Unmarshal(raw, &r); err != nil || r.SourceModel == "" {
			log.Debug().Int("entry", i).Msg("Skipping summary entry that is not a pipeline result")
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
