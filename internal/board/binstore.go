package board

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// BinStore keeps the bounty document in a remote JSON-bin style endpoint:
// GET returns the document (possibly wrapped in a "record" envelope), PUT
// replaces it wholesale.
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

func (s *BinStore) List(ctx context.Context) ([]Bounty, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	s.setHeaders(req)

	res, err := s.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bounties: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch bounties: status %s", res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read bounties: %w", err)
	}

	return decodeDocument(body)
}

func (s *BinStore) Replace(ctx context.Context, bounties []Bounty) error {
	payload, err := json.Marshal(bounties)
	if err != nil {
		return fmt.Errorf("encode bounties: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	s.setHeaders(req)

	res, err := s.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("store bounties: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("store bounties: status %s", res.Status)
	}
	return nil
}

func (s *BinStore) Patch(ctx context.Context, id string, fn func(*Bounty)) (Bounty, error) {
	return patch(ctx, s, id, fn)
}

func (s *BinStore) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-Master-Key", s.apiKey)
	}
}

// decodeDocument tolerates both a bare array and the jsonbin.io envelope
// where the document rides in a "record" field.
func decodeDocument(body []byte) ([]Bounty, error) {
	var bounties []Bounty
	if err := json.Unmarshal(body, &bounties); err == nil {
		return bounties, nil
	}

	var wrapped struct {
		Record []Bounty `json:"record"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode bounties: %w", err)
	}
	if wrapped.Record == nil {
		return []Bounty{}, nil
	}
	return wrapped.Record, nil
}
