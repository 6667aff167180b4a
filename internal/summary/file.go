package summary

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/fpang/brainrot-studio/internal/filehandler"
)

// FileStore keeps the summary in a local JSON file.
type FileStore struct {
	Path string
}

var _ Store = (*FileStore)(nil)

// Load implements Store. A missing file is not an error.
func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	return data, nil
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, data []byte) error {
	return filehandler.WriteFile(s.Path, data)
}

// Location implements Store.
func (s *FileStore) Location() string {
	return s.Path
}
