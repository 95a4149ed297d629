package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"huntboard/internal/board"
	"huntboard/internal/gallery"
)

func newTestServer(t *testing.T) (*Server, board.Store) {
	t.Helper()
	dir := t.TempDir()
	bounties := board.NewFileStore(filepath.Join(dir, "bounties.json"))
	gal := gallery.NewService(gallery.NewFileStore(filepath.Join(dir, "gallery.json")), nil)
	return New(bounties, gal, nil, nil, "hunt123"), bounties
}

func doJSON(t *testing.T, h http.Handler, method, path, key, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-Guild-Key", key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGate(t *testing.T) {
	s, _ := newTestServer(t)
	r := s.Router()

	if rec := doJSON(t, r, http.MethodPost, "/api/bounties", "", "[]"); rec.Code != http.StatusForbidden {
		t.Errorf("no key: status %d, want 403", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodPost, "/api/bounties", "wrong", "[]"); rec.Code != http.StatusForbidden {
		t.Errorf("wrong key: status %d, want 403", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodPost, "/api/bounties", "hunt123", "[]"); rec.Code != http.StatusOK {
		t.Errorf("good key: status %d, want 200", rec.Code)
	}
}

func TestGate_UnsetKeyLocksWrites(t *testing.T) {
	dir := t.TempDir()
	s := New(board.NewFileStore(filepath.Join(dir, "b.json")),
		gallery.NewService(gallery.NewFileStore(filepath.Join(dir, "g.json")), nil), nil, nil, "")
	r := s.Router()

	if rec := doJSON(t, r, http.MethodPost, "/api/bounties", "", "[]"); rec.Code != http.StatusForbidden {
		t.Errorf("unset guild key must refuse writes, got %d", rec.Code)
	}
}

func TestBountyEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	r := s.Router()

	// Fresh board.
	rec := doJSON(t, r, http.MethodGet, "/api/bounties", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	var listed []board.Bounty
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("list decode: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("fresh board must be empty, got %d", len(listed))
	}

	// Replace, then patch one entry.
	seed := `[{"id":"b1","bossId":"castila","bossName":"Castila","reward":"1m spina","status":"open"}]`
	if rec := doJSON(t, r, http.MethodPost, "/api/bounties", "hunt123", seed); rec.Code != http.StatusOK {
		t.Fatalf("replace: status %d body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, r, http.MethodPatch, "/api/bounties/b1", "hunt123", `{"status":"claimed","claimedBy":"Rin"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: status %d body %s", rec.Code, rec.Body)
	}
	var patched board.Bounty
	if err := json.Unmarshal(rec.Body.Bytes(), &patched); err != nil {
		t.Fatalf("patch decode: %v", err)
	}
	if patched.Status != "claimed" || patched.ClaimedBy != "Rin" || patched.Reward != "1m spina" {
		t.Errorf("patched bounty wrong: %+v", patched)
	}

	if rec := doJSON(t, r, http.MethodPatch, "/api/bounties/ghost", "hunt123", `{"status":"claimed"}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: status %d, want 404", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodPost, "/api/bounties", "hunt123", "{not json"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad body: status %d, want 400", rec.Code)
	}
}

func TestGalleryEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	r := s.Router()

	add := `{"url":"https://host/x.png","publicId":"hunts/x","resourceType":"image","caption":"gg"}`
	rec := doJSON(t, r, http.MethodPost, "/api/gallery", "", add)
	if rec.Code != http.StatusOK {
		t.Fatalf("add: status %d body %s", rec.Code, rec.Body)
	}
	var added struct {
		Item gallery.Item `json:"item"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &added); err != nil {
		t.Fatalf("add decode: %v", err)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/gallery", "", "")
	var items []gallery.Item
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("list decode: %v", err)
	}
	if len(items) != 1 || items[0].ID != added.Item.ID {
		t.Errorf("listed items wrong: %+v", items)
	}

	// Delete is gated and wants an id in the body.
	if rec := doJSON(t, r, http.MethodDelete, "/api/gallery", "", `{"id":"x"}`); rec.Code != http.StatusForbidden {
		t.Errorf("ungated delete: status %d, want 403", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodDelete, "/api/gallery", "hunt123", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("delete without id: status %d, want 400", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodDelete, "/api/gallery", "hunt123", `{"id":"`+added.Item.ID+`"}`); rec.Code != http.StatusOK {
		t.Errorf("delete: status %d body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/gallery", "", "")
	items = nil
	json.Unmarshal(rec.Body.Bytes(), &items)
	if len(items) != 0 {
		t.Errorf("gallery must be empty after delete, got %+v", items)
	}
}

func TestSignUploadWithoutMediaHost(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.Router(), http.MethodPost, "/api/gallery/sign", "", `{"folder":"hunts"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status %d, want 503", rec.Code)
	}
}

func TestSignUpload(t *testing.T) {
	dir := t.TempDir()
	media := gallery.NewCloudinary("guildcloud", "key123", "s3cret", nil)
	s := New(board.NewFileStore(filepath.Join(dir, "b.json")),
		gallery.NewService(gallery.NewFileStore(filepath.Join(dir, "g.json")), nil), media, nil, "hunt123")

	rec := doJSON(t, s.Router(), http.MethodPost, "/api/gallery/sign", "", `{"folder":"hunts"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body)
	}

	var body struct {
		Signature string `json:"signature"`
		Timestamp int64  `json:"timestamp"`
		APIKey    string `json:"apiKey"`
		CloudName string `json:"cloudName"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Signature) != 40 || body.Timestamp == 0 {
		t.Errorf("signature payload wrong: %+v", body)
	}
	if body.APIKey != "key123" || body.CloudName != "guildcloud" {
		t.Errorf("client config wrong: %+v", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/bounties", bytes.NewReader(nil))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin %q, want *", got)
	}
}
