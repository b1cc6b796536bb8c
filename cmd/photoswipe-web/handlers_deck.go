package main

import (
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fpang/photoswipe/internal/folder"
	"github.com/fpang/photoswipe/internal/jobs"
	"github.com/fpang/photoswipe/internal/swipe"
)

// POST /api/deck/open {"folder": "..."}
func (s *server) handleDeckOpen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Folder string `json:"folder"`
	}
	if err := decodeBody(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Folder == "" {
		httpError(w, http.StatusBadRequest, "folder is required")
		return
	}

	uri := req.Folder
	if !folder.IsS3(uri) {
		if containsPathTraversal(uri) {
			httpError(w, http.StatusBadRequest, "invalid path")
			return
		}
		abs, err := filepath.Abs(uri)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid path")
			return
		}
		uri = abs
	}

	view, err := s.session.OpenFolder(r.Context(), uri)
	if err != nil {
		respondError(w, err, "Failed to open folder")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// GET /api/deck?next=n
func (s *server) handleDeck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	next := s.cfg.Deck.Preview
	if raw := r.URL.Query().Get("next"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httpError(w, http.StatusBadRequest, "next must be a non-negative integer")
			return
		}
		next = n
	}
	respondJSON(w, http.StatusOK, s.session.ViewN(next))
}

// gestureSample is one pointer position relative to the drag start, T in
// milliseconds since the drag started.
type gestureSample struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
	T  float64 `json:"t"`
}

type swipeRequest struct {
	swipe.Release
	Samples []gestureSample `json:"samples"`
}

// release returns the gesture's final state. When the client sent its
// samples, velocity is estimated from them instead of trusting vx/vy.
func (req swipeRequest) release(c *swipe.Classifier) swipe.Release {
	if len(req.Samples) < 2 {
		return req.Release
	}
	origin := time.Unix(0, 0)
	at := func(ms float64) time.Time {
		return origin.Add(time.Duration(ms * float64(time.Millisecond)))
	}
	tracker := swipe.NewGestureTracker(c)
	tracker.Begin(at(req.Samples[0].T))
	for _, sm := range req.Samples[1:] {
		tracker.Move(sm.DX, sm.DY, at(sm.T))
	}
	return tracker.Release(at(req.Samples[len(req.Samples)-1].T))
}

// POST /api/deck/{swipe,keep,delete,undo,more}?deckId=...
func (s *server) handleDeckRoutes(w http.ResponseWriter, r *http.Request) {
	action, ok := jobs.ParseAction(r.URL.Path, "/api/deck/")
	if !ok {
		httpError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !jobs.CheckDeck(r, s.session.DeckID()) {
		httpError(w, http.StatusConflict, "deck has changed, reload it")
		return
	}

	switch action {
	case "swipe":
		var req swipeRequest
		if err := decodeBody(r, &req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		respondJSON(w, http.StatusOK, s.session.Swipe(req.release(s.session.Classifier())))
	case "keep":
		respondJSON(w, http.StatusOK, s.session.Keep())
	case "delete":
		respondJSON(w, http.StatusOK, s.session.Delete())
	case "undo":
		respondJSON(w, http.StatusOK, s.session.Undo())
	case "more":
		added, err := s.session.LoadMore(r.Context())
		if err != nil {
			respondError(w, err, "Failed to load more photos")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"added": added,
			"view":  s.session.View(),
		})
	default:
		httpError(w, http.StatusNotFound, "unknown action")
	}
}

// GET /api/swipe/config
func (s *server) handleSwipeConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	respondJSON(w, http.StatusOK, s.session.Classifier().Config())
}
