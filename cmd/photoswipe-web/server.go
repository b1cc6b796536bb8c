package main

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photoswipe/internal/config"
	"github.com/fpang/photoswipe/internal/session"
	"github.com/fpang/photoswipe/internal/thumbcache"
)

//go:embed all:frontend_dist
var frontendFS embed.FS

// server holds the single review session behind the HTTP API.
type server struct {
	session *session.Session
	thumbs  *thumbcache.Cache
	cfg     *config.Config
}

func newServer(sess *session.Session, thumbs *thumbcache.Cache, cfg *config.Config) *server {
	return &server{session: sess, thumbs: thumbs, cfg: cfg}
}

func (s *server) routes() (http.Handler, error) {
	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("/api/browse", s.handleBrowse)
	mux.HandleFunc("/api/pick", s.handlePick)
	mux.HandleFunc("/api/deck/open", s.handleDeckOpen)
	mux.HandleFunc("/api/deck", s.handleDeck)
	mux.HandleFunc("/api/deck/", s.handleDeckRoutes)
	mux.HandleFunc("/api/trash", s.handleTrash)
	mux.HandleFunc("/api/trash/", s.handleTrashRoutes)
	mux.HandleFunc("/api/media/thumbnail", s.handleThumbnail)
	mux.HandleFunc("/api/media/full", s.handleFullImage)
	mux.HandleFunc("/api/media/dimensions", s.handleDimensions)
	mux.HandleFunc("/api/swipe/config", s.handleSwipeConfig)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Frontend static files (SPA fallback)
	frontendSub, err := fs.Sub(frontendFS, "frontend_dist")
	if err != nil {
		return nil, err
	}
	fileServer := http.FileServer(http.FS(frontendSub))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Security headers
		w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' blob: data:; style-src 'self' 'unsafe-inline'; connect-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		path := r.URL.Path
		if path != "/" {
			f, err := frontendSub.Open(strings.TrimPrefix(path, "/"))
			if err != nil {
				r.URL.Path = "/"
			} else {
				f.Close()
			}
		}
		fileServer.ServeHTTP(w, r)
	})

	return withLogging(withCORS(mux)), nil
}

// --- Middleware ---

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if strings.HasPrefix(r.URL.Path, "/api/") {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("duration", time.Since(start)).
				Msg("API request")
		}
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only allow localhost origins
		origin := r.Header.Get("Origin")
		if origin != "" && (strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
