package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photoswipe/internal/folder"
	"github.com/fpang/photoswipe/internal/session"
)

// containsPathTraversal returns true if the path contains directory traversal
// sequences that could escape the intended directory.
//
// We check the raw segments before filepath.Clean resolves them, because
// Clean("/tmp/../etc") silently produces "/etc" with no ".." remaining.
func containsPathTraversal(p string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(p), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Debug().Err(err).Msg("Failed to write response")
	}
}

func httpError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps collaborator errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, folder.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, folder.ErrInvalidFolder):
		return http.StatusNotFound
	case errors.Is(err, folder.ErrFetchFailed):
		return http.StatusBadGateway
	case errors.Is(err, folder.ErrOpenFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrNoFolder):
		return http.StatusConflict
	case errors.Is(err, session.ErrPurgeInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes it with the status statusFor picks.
func respondError(w http.ResponseWriter, err error, msg string) {
	status := statusFor(err)
	evt := log.Warn()
	if status == http.StatusInternalServerError {
		evt = log.Error()
	}
	evt.Err(err).Int("status", status).Msg(msg)
	httpError(w, status, err.Error())
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(v)
}
