// Package server exposes the bounty board, the gallery and the combat
// assistant state over HTTP for the web front-end.
package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	log "log/slog"

	"huntboard/internal/board"
	"huntboard/internal/combat"
	"huntboard/internal/gallery"
)

type Server struct {
	bounties  board.Store
	gallery   *gallery.Service
	media     *gallery.Cloudinary
	assistant *combat.Assistant
	guildKey  string
}

func New(bounties board.Store, gal *gallery.Service, media *gallery.Cloudinary, assistant *combat.Assistant, guildKey string) *Server {
	return &Server{
		bounties:  bounties,
		gallery:   gal,
		media:     media,
		assistant: assistant,
		guildKey:  guildKey,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors)

	r.Get("/api/bounties", s.listBounties)
	r.With(s.gate).Post("/api/bounties", s.replaceBounties)
	r.With(s.gate).Patch("/api/bounties/{id}", s.patchBounty)

	r.Get("/api/gallery", s.listGallery)
	r.Post("/api/gallery", s.addGalleryItem)
	r.With(s.gate).Delete("/api/gallery", s.deleteGalleryItem)
	r.Post("/api/gallery/sign", s.signUpload)

	r.Get("/api/combat/status", s.combatStatus)
	r.Get("/api/combat/feed", s.combatFeed)

	return r
}

// gate checks the shared guild key on destructive routes. A plain string
// compare, not an auth system: the key is the clubhouse door code.
func (s *Server) gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.guildKey == "" ||
			subtle.ConstantTimeCompare([]byte(r.Header.Get("X-Guild-Key")), []byte(s.guildKey)) != 1 {
			writeError(w, http.StatusForbidden, "wrong guild key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listBounties(w http.ResponseWriter, r *http.Request) {
	bounties, err := s.bounties.List(r.Context())
	if err != nil {
		log.Error("list bounties failed", "err", err)
		writeJSON(w, http.StatusOK, []board.Bounty{})
		return
	}
	writeJSON(w, http.StatusOK, bounties)
}

func (s *Server) replaceBounties(w http.ResponseWriter, r *http.Request) {
	var bounties []board.Bounty
	if err := json.NewDecoder(r.Body).Decode(&bounties); err != nil {
		writeError(w, http.StatusBadRequest, "invalid bounty list")
		return
	}
	if err := s.bounties.Replace(r.Context(), bounties); err != nil {
		log.Error("replace bounties failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to save bounties")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) patchBounty(w http.ResponseWriter, r *http.Request) {
	var patch struct {
		Status    *string `json:"status"`
		ClaimedBy *string `json:"claimedBy"`
		Reward    *string `json:"reward"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid patch")
		return
	}

	updated, err := s.bounties.Patch(r.Context(), chi.URLParam(r, "id"), func(b *board.Bounty) {
		if patch.Status != nil {
			b.Status = *patch.Status
		}
		if patch.ClaimedBy != nil {
			b.ClaimedBy = *patch.ClaimedBy
		}
		if patch.Reward != nil {
			b.Reward = *patch.Reward
		}
	})
	if errors.Is(err, board.ErrNotFound) {
		writeError(w, http.StatusNotFound, "bounty not found")
		return
	}
	if err != nil {
		log.Error("patch bounty failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to update bounty")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) listGallery(w http.ResponseWriter, r *http.Request) {
	items, err := s.gallery.List(r.Context())
	if err != nil {
		log.Error("list gallery failed", "err", err)
		writeJSON(w, http.StatusOK, []gallery.Item{})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) addGalleryItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL          string `json:"url"`
		PublicID     string `json:"publicId"`
		ResourceType string `json:"resourceType"`
		Caption      string `json:"caption"`
		UploadedBy   string `json:"uploadedBy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid gallery item")
		return
	}

	item, err := s.gallery.Add(r.Context(), body.URL, body.PublicID, body.ResourceType, body.Caption, body.UploadedBy)
	if err != nil {
		log.Error("add gallery item failed", "err", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "item": item})
}

func (s *Server) deleteGalleryItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID == "" {
		writeError(w, http.StatusBadRequest, "no id provided")
		return
	}

	err := s.gallery.Remove(r.Context(), body.ID)
	if errors.Is(err, gallery.ErrNotFound) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		log.Error("delete gallery item failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) signUpload(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		writeError(w, http.StatusServiceUnavailable, "media host not configured")
		return
	}

	var body struct {
		Folder string `json:"folder"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	signature, timestamp := s.media.SignUpload(map[string]string{"folder": body.Folder})
	writeJSON(w, http.StatusOK, map[string]any{
		"signature": signature,
		"timestamp": timestamp,
		"apiKey":    s.media.APIKey,
		"cloudName": s.media.CloudName,
	})
}

func (s *Server) combatStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.assistant.Status(true))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Guild-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
