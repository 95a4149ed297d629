package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
)

// FileStore keeps gallery metadata in a local JSON file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) List(_ context.Context) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Item{}, nil
		}
		return nil, fmt.Errorf("read gallery: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode gallery: %w", err)
	}
	return items, nil
}

func (s *FileStore) Replace(_ context.Context, items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode gallery: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write gallery: %w", err)
	}
	return nil
}

// BinStore keeps gallery metadata in a remote JSON-bin endpoint, same
// envelope handling as the bounty board's remote backend.
type BinStore struct {
	url    string
	apiKey string
	httpc  *http.Client
}

func NewBinStore(url, apiKey string, httpc *http.Client) *BinStore {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &BinStore{url: url, apiKey: apiKey, httpc: httpc}
}

func (s *BinStore) List(ctx context.Context) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	s.setHeaders(req)

	res, err := s.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch gallery: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch gallery: status %s", res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read gallery: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(body, &items); err == nil {
		return items, nil
	}

	var wrapped struct {
		Record []Item `json:"record"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode gallery: %w", err)
	}
	if wrapped.Record == nil {
		return []Item{}, nil
	}
	return wrapped.Record, nil
}

func (s *BinStore) Replace(ctx context.Context, items []Item) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode gallery: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	s.setHeaders(req)

	res, err := s.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("store gallery: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("store gallery: status %s", res.Status)
	}
	return nil
}

func (s *BinStore) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-Master-Key", s.apiKey)
	}
}
