package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photoswipe/internal/jobs"
	"github.com/fpang/photoswipe/internal/session"
)

// GET /api/trash
func (s *server) handleTrash(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	photos := s.session.Trash()
	var bytes int64
	for _, p := range photos {
		bytes += p.Size
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"photos": photos,
		"count":  len(photos),
		"bytes":  bytes,
	})
}

// /api/trash/{clear,purge,export}?deckId=...
func (s *server) handleTrashRoutes(w http.ResponseWriter, r *http.Request) {
	action, ok := jobs.ParseAction(r.URL.Path, "/api/trash/")
	if !ok {
		httpError(w, http.StatusNotFound, "not found")
		return
	}
	if !jobs.CheckDeck(r, s.session.DeckID()) {
		httpError(w, http.StatusConflict, "deck has changed, reload it")
		return
	}

	switch action {
	case "clear":
		if r.Method != http.MethodPost {
			httpError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		respondJSON(w, http.StatusOK, s.session.ClearTrash())
	case "purge":
		if r.Method != http.MethodPost {
			httpError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handlePurge(w, r)
	case "export":
		if r.Method != http.MethodGet {
			httpError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleExport(w, r)
	default:
		httpError(w, http.StatusNotFound, "unknown action")
	}
}

// POST /api/trash/purge {"mode": "delete"|"move"}
// Photos that could not be purged are listed in the report and stay queued.
func (s *server) handlePurge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := decodeBody(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Mode == "" {
		req.Mode = s.cfg.Purge.Mode
	}
	mode, err := session.ParsePurgeMode(req.Mode)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.session.PurgeTrash(r.Context(), mode)
	if err != nil {
		respondError(w, err, "Purge failed")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// GET /api/trash/export
func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.session.DeckID() == "" {
		respondError(w, session.ErrNoFolder, "Export failed")
		return
	}
	name := fmt.Sprintf("photoswipe-trash-%s.zip", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	// Headers are sent with the first byte, so later failures can only be
	// logged.
	res, err := s.session.ExportTrash(r.Context(), w)
	if err != nil {
		log.Error().Err(err).Msg("Trash export aborted")
		return
	}
	if len(res.Failed) > 0 {
		log.Warn().Strs("failed", res.Failed).Msg("Some photos were left out of the export")
	}
}
