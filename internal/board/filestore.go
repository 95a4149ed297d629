package board

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// FileStore keeps the bounty document in a pretty-printed local JSON file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) List(_ context.Context) ([]Bounty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) Replace(_ context.Context, bounties []Bounty) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(bounties)
}

// Patch holds the file lock across the whole read-modify-write.
func (s *FileStore) Patch(_ context.Context, id string, fn func(*Bounty)) (Bounty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bounties, err := s.read()
	if err != nil {
		return Bounty{}, err
	}

	for i := range bounties {
		if bounties[i].ID != id {
			continue
		}
		fn(&bounties[i])
		bounties[i].UpdatedAt = time.Now()
		if err := s.write(bounties); err != nil {
			return Bounty{}, err
		}
		return bounties[i], nil
	}

	return Bounty{}, ErrNotFound
}

func (s *FileStore) read() ([]Bounty, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Bounty{}, nil
		}
		return nil, fmt.Errorf("read bounties: %w", err)
	}

	var bounties []Bounty
	if err := json.Unmarshal(data, &bounties); err != nil {
		return nil, fmt.Errorf("decode bounties: %w", err)
	}
	return bounties, nil
}

func (s *FileStore) write(bounties []Bounty) error {
	data, err := json.MarshalIndent(bounties, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bounties: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write bounties: %w", err)
	}
	return nil
}
