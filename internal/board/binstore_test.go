package board

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// binHandler fakes a jsonbin-style endpoint: GET wraps the document in a
// "record" envelope, PUT replaces it.
type binHandler struct {
	mu      sync.Mutex
	doc     []Bounty
	lastKey string
}

func (h *binHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastKey = r.Header.Get("X-Master-Key")

	switch r.Method {
	case http.MethodGet:
		json.NewEncoder(w).Encode(map[string]any{"record": h.doc})
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		var doc []Bounty
		if err := json.Unmarshal(body, &doc); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.doc = doc
		w.WriteHeader(http.StatusOK)
	default:
		http.Error(w, "method", http.StatusMethodNotAllowed)
	}
}

func TestBinStore_ListUnwrapsEnvelope(t *testing.T) {
	h := &binHandler{doc: []Bounty{{ID: "b1", BossID: "auvio", Status: "open"}}}
	srv := httptest.NewServer(h)
	defer srv.Close()

	s := NewBinStore(srv.URL, "secret", srv.Client())
	got, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].ID != "b1" {
		t.Errorf("unexpected document: %+v", got)
	}
	if h.lastKey != "secret" {
		t.Errorf("master key header %q, want %q", h.lastKey, "secret")
	}
}

func TestBinStore_PatchRoundTrips(t *testing.T) {
	h := &binHandler{doc: []Bounty{
		{ID: "b1", BossID: "igneus", Status: "open"},
		{ID: "b2", BossID: "gespents", Status: "open"},
	}}
	srv := httptest.NewServer(h)
	defer srv.Close()

	s := NewBinStore(srv.URL, "", srv.Client())
	patched, err := s.Patch(context.Background(), "b1", func(b *Bounty) {
		b.Status = "completed"
	})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if patched.Status != "completed" {
		t.Errorf("patch not applied: %+v", patched)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.doc[0].Status != "completed" || h.doc[1].Status != "open" {
		t.Errorf("stored document wrong: %+v", h.doc)
	}
}

func TestBinStore_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewBinStore(srv.URL, "", srv.Client())
	if _, err := s.List(context.Background()); err == nil {
		t.Error("expected error on non-200 response")
	}
	if err := s.Replace(context.Background(), nil); err == nil {
		t.Error("expected error on non-200 response")
	}
}

func TestDecodeDocument(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id":"b1"},{"id":"b2"}]`, 2},
		{"record envelope", `{"record":[{"id":"b1"}]}`, 1},
		{"empty envelope", `{"record":null}`, 0},
	}
	for _, tc := range cases {
		got, err := decodeDocument([]byte(tc.body))
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if len(got) != tc.want {
			t.Errorf("%s: got %d entries, want %d", tc.name, len(got), tc.want)
		}
	}

	if _, err := decodeDocument([]byte(`"garbage"`)); err == nil {
		t.Error("expected error for a non-document body")
	}
}
