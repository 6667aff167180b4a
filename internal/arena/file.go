package arena

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"

	"github.com/fpang/brainrot-studio/internal/filehandler"
)

// RatingsFile is the file name used by FileStore in the output directory.
const RatingsFile = "ratings.json"

// FileStore keeps contestants in a local JSON file.
type FileStore struct {
	Path string
	mu   sync.Mutex
}

var _ Store = (*FileStore)(nil)

func (s *FileStore) load() (map[string]Contestant, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]Contestant{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}

	var list []Contestant
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.Path, err)
	}
	out := make(map[string]Contestant, len(list))
	for _, c := range list {
		out[c.ID] = c
	}
	return out, nil
}

func (s *FileStore) save(all map[string]Contestant) error {
	list := make([]Contestant, 0, len(all))
	for _, c := range all {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return filehandler.WriteJSON(s.Path, list)
}

// List implements Store.
func (s *FileStore) List(ctx context.Context) ([]Contestant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load()
	if err != nil {
		return nil, err
	}
	list := make([]Contestant, 0, len(all))
	for _, c := range all {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// Get implements Store.
func (s *FileStore) Get(ctx context.Context, id string) (Contestant, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load()
	if err != nil {
		return Contestant{}, false, err
	}
	c, ok := all[id]
	return c, ok, nil
}

// Put implements Store.
func (s *FileStore) Put(ctx context.Context, c Contestant) error {
	return s.write(c)
}

// SaveMatch implements Store. Both contestants land in one file rewrite.
func (s *FileStore) SaveMatch(ctx context.Context, a, b Contestant) error {
	return s.write(a, b)
}

func (s *FileStore) write(cs ...Contestant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load()
	if err != nil {
		return err
	}
	for _, c := range cs {
		all[c.ID] = c
	}
	return s.save(all)
}
