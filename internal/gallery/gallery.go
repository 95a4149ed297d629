// Package gallery manages hunt screenshot/video metadata. Binaries live on
// an external media host; this package only tracks the metadata document and
// asks the host to destroy binaries when entries are removed.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "log/slog"
)

// Item is one gallery entry. Path points at the hosted binary.
type Item struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"` // image | video
	Path       string    `json:"path"`
	PublicID   string    `json:"publicId"`
	Thumbnail  string    `json:"thumbnail,omitempty"`
	Caption    string    `json:"caption"`
	UploadedBy string    `json:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt"`
}

var ErrNotFound = errors.New("gallery item not found")

// Store is the metadata document contract, same replace-the-document model
// as the bounty board.
type Store interface {
	List(ctx context.Context) ([]Item, error)
	Replace(ctx context.Context, items []Item) error
}

// MediaHost destroys hosted binaries. Destroy failures are logged and
// swallowed: stale binaries are cheaper than stuck metadata.
type MediaHost interface {
	Destroy(ctx context.Context, publicID, resourceType string) error
}

// Service applies gallery operations over a Store and a MediaHost.
type Service struct {
	store Store
	host  MediaHost
}

func NewService(store Store, host MediaHost) *Service {
	return &Service{store: store, host: host}
}

func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.store.List(ctx)
}

// Add registers an already-uploaded binary. Newest entries go first.
func (s *Service) Add(ctx context.Context, url, publicID, resourceType, caption, uploadedBy string) (Item, error) {
	if url == "" || publicID == "" {
		return Item{}, errors.New("missing url or publicId")
	}

	now := time.Now()
	item := Item{
		ID:         fmt.Sprintf("gallery_%d", now.UnixMilli()),
		Type:       "image",
		Path:       url,
		PublicID:   publicID,
		Caption:    caption,
		UploadedBy: uploadedBy,
		UploadedAt: now,
	}
	if resourceType == "video" {
		item.Type = "video"
		item.Thumbnail = thumbnailURL(url)
	}
	if item.UploadedBy == "" {
		item.UploadedBy = "Anonymous Hunter"
	}

	items, err := s.store.List(ctx)
	if err != nil {
		return Item{}, err
	}
	items = append([]Item{item}, items...)

	if err := s.store.Replace(ctx, items); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Remove deletes an entry, destroying the hosted binary first.
func (s *Service) Remove(ctx context.Context, id string) error {
	items, err := s.store.List(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i, it := range items {
		if it.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	if pub := items[idx].PublicID; pub != "" && s.host != nil {
		if err := s.host.Destroy(ctx, pub, items[idx].Type); err != nil {
			log.Warn("media host destroy failed, removing metadata anyway",
				"publicId", pub, "err", err)
		}
	}

	items = append(items[:idx], items[idx+1:]...)
	return s.store.Replace(ctx, items)
}

// thumbnailURL swaps the file extension for .jpg, which the media host
// serves as the video poster frame.
func thumbnailURL(url string) string {
	for i := len(url) - 1; i >= 0; i-- {
		switch url[i] {
		case '.':
			return url[:i] + ".jpg"
		case '/':
			return url
		}
	}
	return url
}
