// Package filehandler owns the on-disk layout of a run: one directory per
// idea under the output root, plus helpers to write artifacts into it and
// to shrink candidate images before they are sent for selection.
package filehandler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Artifact file names inside an idea directory.
const (
	IdeaFile       = "idea.json"
	AudioFile      = "audio.mp3"
	ReasoningFile  = "reasoning.txt"
	videoSuffix    = "_final.mp4"
	maxSegmentLen  = 120
	untitledSuffix = "untitled"
)

// SanitizeSegment turns a model identifier or idea name into a single safe
// path segment. Spaces and slashes become underscores, letters, digits,
// '-', '_' and '.' are kept, and anything else becomes '-'. The result is
// never empty, ".", or "..".
func SanitizeSegment(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r == ' ' || r == '/' || r == '\\':
			b.WriteRune('_')
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}

	out := b.String()
	for len(out) > maxSegmentLen {
		_, size := utf8.DecodeLastRuneInString(out)
		out = out[:len(out)-size]
	}
	if strings.Trim(out, ".") == "" {
		return untitledSuffix
	}
	return out
}

// IdeaDir returns <root>/<model>_<idea name>, both parts sanitized.
func IdeaDir(root, sourceModel, ideaName string) string {
	return filepath.Join(root, SanitizeSegment(sourceModel)+"_"+SanitizeSegment(ideaName))
}

// ImagePath returns the path of candidate i inside an idea directory.
func ImagePath(ideaDir string, i int) string {
	return filepath.Join(ideaDir, fmt.Sprintf("image_%d.jpg", i))
}

// VideoPath returns <ideaDir>/<idea name>_final.mp4.
func VideoPath(ideaDir, ideaName string) string {
	return filepath.Join(ideaDir, SanitizeSegment(ideaName)+videoSuffix)
}

// WriteFile writes data through a temporary file and renames it into place
// so readers never see a partial artifact.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s: %w", path, err)
	}
	return nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return WriteFile(path, append(data, '\n'))
}
