package main

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photoswipe/internal/filehandler"
	"github.com/fpang/photoswipe/internal/folder"
)

type browseEntry struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	IsDir    bool   `json:"isDir"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mimeType,omitempty"`
}

// GET /api/browse?path=...
// Lists subfolders and images so the UI can offer a folder without the
// native dialog.
func (s *server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	dirPath := r.URL.Query().Get("path")
	if dirPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "cannot determine home directory")
			return
		}
		dirPath = home
	}

	if containsPathTraversal(dirPath) {
		httpError(w, http.StatusBadRequest, "invalid path")
		return
	}

	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid path")
		return
	}

	info, err := os.Stat(absPath)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			httpError(w, http.StatusNotFound, "path not found")
		case os.IsPermission(err):
			httpError(w, http.StatusForbidden, "permission denied")
		default:
			httpError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	if !info.IsDir() {
		httpError(w, http.StatusBadRequest, "path is not a directory")
		return
	}

	dirEntries, err := os.ReadDir(absPath)
	if err != nil {
		if os.IsPermission(err) {
			httpError(w, http.StatusForbidden, "permission denied")
			return
		}
		httpError(w, http.StatusInternalServerError, "cannot read directory")
		return
	}

	entries := make([]browseEntry, 0, len(dirEntries))
	images := 0
	for _, de := range dirEntries {
		if strings.HasPrefix(de.Name(), ".") {
			continue
		}
		mime := ""
		if !de.IsDir() {
			mime = filehandler.MIMETypeForName(de.Name())
			if mime == "" {
				continue
			}
			images++
		}
		fi, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, browseEntry{
			Name:     de.Name(),
			Path:     filepath.Join(absPath, de.Name()),
			IsDir:    de.IsDir(),
			Size:     fi.Size(),
			MIMEType: mime,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	parent := filepath.Dir(absPath)
	if parent == absPath {
		parent = ""
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"path":    absPath,
		"parent":  parent,
		"entries": entries,
		"images":  images,
	})
}

// POST /api/pick
// Opens the native folder picker and, unless cancelled, opens the folder as
// the new deck.
func (s *server) handlePick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	view, err := s.session.Pick(r.Context())
	if err != nil {
		if errors.Is(err, folder.ErrUserCancelled) {
			respondJSON(w, http.StatusOK, map[string]any{
				"canceled": true,
				"view":     view,
			})
			return
		}
		respondError(w, err, "Folder pick failed")
		return
	}

	log.Info().Str("folder", view.Folder).Int("photos", view.Total).Msg("Folder picked via native dialog")
	respondJSON(w, http.StatusOK, map[string]any{
		"canceled": false,
		"view":     view,
	})
}
