package main

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photoswipe/internal/deck"
	"github.com/fpang/photoswipe/internal/filehandler"
	"github.com/fpang/photoswipe/internal/folder"
	"github.com/fpang/photoswipe/internal/thumbcache"
)

// photoParam resolves the uri query parameter to a loaded photo. Only photos
// of the current deck are served.
func (s *server) photoParam(w http.ResponseWriter, r *http.Request) (deck.Photo, bool) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return deck.Photo{}, false
	}
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		httpError(w, http.StatusBadRequest, "uri is required")
		return deck.Photo{}, false
	}
	p, ok := s.session.Lookup(uri)
	if !ok {
		httpError(w, http.StatusNotFound, "photo not found")
		return deck.Photo{}, false
	}
	return p, true
}

// GET /api/media/thumbnail?uri=...&size=...
func (s *server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	p, ok := s.photoParam(w, r)
	if !ok {
		return
	}

	maxDim := s.cfg.Thumbnails.MaxDimension
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 4096 {
			httpError(w, http.StatusBadRequest, "size must be between 1 and 4096")
			return
		}
		maxDim = n
	}

	key := thumbcache.Key(p.URI, p.Size, p.Modified, maxDim)
	thumb, hit := s.thumbs.Get(key)
	if !hit {
		rc, err := s.session.Source().Open(r.Context(), p.URI)
		if err != nil {
			respondError(w, err, "Failed to open photo")
			return
		}
		thumb, err = filehandler.GenerateThumbnail(rc, p.Name, maxDim)
		rc.Close()
		if err != nil {
			log.Warn().Err(err).Str("uri", p.URI).Msg("Failed to generate thumbnail")
			if errors.Is(err, filehandler.ErrThumbnailUnsupported) {
				httpError(w, http.StatusUnsupportedMediaType, err.Error())
				return
			}
			httpError(w, http.StatusUnprocessableEntity, "thumbnail generation failed")
			return
		}
		if err := s.thumbs.Put(key, thumb); err != nil {
			log.Warn().Err(err).Msg("Failed to cache thumbnail")
		}
	}

	w.Header().Set("Content-Type", thumb.MIMEType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(thumb.Data)
}

// GET /api/media/full?uri=...
func (s *server) handleFullImage(w http.ResponseWriter, r *http.Request) {
	p, ok := s.photoParam(w, r)
	if !ok {
		return
	}

	// Local files go through http.ServeFile, which handles Content-Type,
	// range requests and caching headers.
	if !folder.IsS3(p.URI) {
		http.ServeFile(w, r, p.URI)
		return
	}

	rc, err := s.session.Source().Open(r.Context(), p.URI)
	if err != nil {
		respondError(w, err, "Failed to open photo")
		return
	}
	defer rc.Close()
	if p.MIMEType != "" {
		w.Header().Set("Content-Type", p.MIMEType)
	}
	if p.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(p.Size, 10))
	}
	if _, err := io.Copy(w, rc); err != nil {
		log.Warn().Err(err).Str("uri", p.URI).Msg("Failed to stream photo")
	}
}

// GET /api/media/dimensions?uri=...
func (s *server) handleDimensions(w http.ResponseWriter, r *http.Request) {
	p, ok := s.photoParam(w, r)
	if !ok {
		return
	}
	dim, err := s.session.Source().Dimensions(r.Context(), p.URI)
	if err != nil {
		respondError(w, err, "Failed to read dimensions")
		return
	}
	respondJSON(w, http.StatusOK, dim)
}
