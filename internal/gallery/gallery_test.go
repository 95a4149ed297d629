package gallery

import (
	"context"
	"errors"
	"testing"
)

type memStore struct {
	items    []Item
	replaces int
}

func (m *memStore) List(_ context.Context) ([]Item, error) {
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *memStore) Replace(_ context.Context, items []Item) error {
	m.items = items
	m.replaces++
	return nil
}

type memHost struct {
	destroyed []string
	err       error
}

func (m *memHost) Destroy(_ context.Context, publicID, resourceType string) error {
	m.destroyed = append(m.destroyed, publicID)
	return m.err
}

func TestService_AddPrependsNewest(t *testing.T) {
	store := &memStore{items: []Item{{ID: "old"}}}
	svc := NewService(store, &memHost{})

	item, err := svc.Add(context.Background(), "https://host/x.png", "hunts/x", "image", "clutch win", "Rin")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if item.Type != "image" || item.Thumbnail != "" {
		t.Errorf("image item wrong: %+v", item)
	}
	if item.UploadedBy != "Rin" {
		t.Errorf("uploader %q, want Rin", item.UploadedBy)
	}

	if len(store.items) != 2 || store.items[0].ID != item.ID || store.items[1].ID != "old" {
		t.Errorf("new item must be first: %+v", store.items)
	}
}

func TestService_AddVideoGetsThumbnail(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, &memHost{})

	item, err := svc.Add(context.Background(), "https://host/clip.mp4", "hunts/clip", "video", "", "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if item.Type != "video" {
		t.Errorf("type %q, want video", item.Type)
	}
	if item.Thumbnail != "https://host/clip.jpg" {
		t.Errorf("thumbnail %q, want https://host/clip.jpg", item.Thumbnail)
	}
	if item.UploadedBy != "Anonymous Hunter" {
		t.Errorf("uploader %q, want the anonymous default", item.UploadedBy)
	}
}

func TestService_AddRejectsIncompleteUpload(t *testing.T) {
	svc := NewService(&memStore{}, &memHost{})

	if _, err := svc.Add(context.Background(), "", "hunts/x", "image", "", ""); err == nil {
		t.Error("missing url must be rejected")
	}
	if _, err := svc.Add(context.Background(), "https://host/x.png", "", "image", "", ""); err == nil {
		t.Error("missing publicId must be rejected")
	}
}

func TestService_RemoveDestroysBinary(t *testing.T) {
	store := &memStore{items: []Item{
		{ID: "g1", PublicID: "hunts/a", Type: "image"},
		{ID: "g2", PublicID: "hunts/b", Type: "video"},
	}}
	host := &memHost{}
	svc := NewService(store, host)

	if err := svc.Remove(context.Background(), "g2"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(host.destroyed) != 1 || host.destroyed[0] != "hunts/b" {
		t.Errorf("destroyed %v, want [hunts/b]", host.destroyed)
	}
	if len(store.items) != 1 || store.items[0].ID != "g1" {
		t.Errorf("metadata after remove: %+v", store.items)
	}
}

func TestService_RemoveSurvivesDestroyFailure(t *testing.T) {
	store := &memStore{items: []Item{{ID: "g1", PublicID: "hunts/a", Type: "image"}}}
	host := &memHost{err: errors.New("host down")}
	svc := NewService(store, host)

	if err := svc.Remove(context.Background(), "g1"); err != nil {
		t.Fatalf("Remove must swallow destroy failures, got %v", err)
	}
	if len(store.items) != 0 {
		t.Errorf("metadata must be removed anyway: %+v", store.items)
	}
}

func TestService_RemoveUnknownID(t *testing.T) {
	svc := NewService(&memStore{}, &memHost{})

	if err := svc.Remove(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestThumbnailURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://host/v1/clip.mp4", "https://host/v1/clip.jpg"},
		{"https://host/v1/clip", "https://host/v1/clip"},
		{"clip.webm", "clip.jpg"},
	}
	for _, tc := range cases {
		if got := thumbnailURL(tc.in); got != tc.want {
			t.Errorf("thumbnailURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSignParams(t *testing.T) {
	// Keys are sorted before hashing, so insertion order must not matter.
	a := signParams(map[string]string{"timestamp": "1700000000", "folder": "hunts"}, "s3cret")
	b := signParams(map[string]string{"folder": "hunts", "timestamp": "1700000000"}, "s3cret")
	if a != b {
		t.Errorf("signature depends on map order: %q vs %q", a, b)
	}
	if len(a) != 40 {
		t.Errorf("expected hex SHA-1, got %q", a)
	}

	if signParams(map[string]string{"timestamp": "1"}, "x") == signParams(map[string]string{"timestamp": "1"}, "y") {
		t.Error("secret must affect the signature")
	}
}
