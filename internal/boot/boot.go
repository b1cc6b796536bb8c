// Package boot provides the startup composition shared by photoswipe and
// photoswipe-web: building the photo sources, the session, the thumbnail
// cache and the metrics sink from a loaded config.
package boot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photoswipe/internal/archive"
	"github.com/fpang/photoswipe/internal/config"
	"github.com/fpang/photoswipe/internal/folder"
	"github.com/fpang/photoswipe/internal/logging"
	"github.com/fpang/photoswipe/internal/session"
	"github.com/fpang/photoswipe/internal/thumbcache"
)

// Env is everything a front end needs to serve a review.
type Env struct {
	Config  *config.Config
	Session *session.Session
	Thumbs  *thumbcache.Cache
	Sources *folder.Mux

	closers []io.Closer
}

// Close flushes the review summary and releases the cache and metrics file.
func (e *Env) Close() error {
	errs := []error{e.Session.Summary()}
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i].Close())
	}
	return errors.Join(errs...)
}

// InitSources builds the local source and, when enabled, the S3 source.
func InitSources(ctx context.Context, cfg *config.Config) (*folder.Mux, error) {
	mux := &folder.Mux{
		Local: folder.NewLocal(folder.LocalOptions{
			Recursive:     cfg.Local.Recursive,
			IncludeHidden: cfg.Local.IncludeHidden,
			ReadEXIF:      cfg.Local.ReadEXIF,
			TrashDir:      cfg.Local.TrashDir,
		}),
	}
	if !cfg.S3.Enabled {
		return mux, nil
	}

	s3Start := time.Now()
	src, err := folder.NewS3FromEnv(ctx, cfg.S3.Region, folder.S3Options{
		Recursive: cfg.S3.Recursive,
		TrashDir:  cfg.Local.TrashDir,
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("region", cfg.S3.Region).Dur("elapsed", time.Since(s3Start)).Msg("S3 source initialized")
	mux.S3 = src
	return mux, nil
}

// InitMetrics opens the metrics sink: nil when disabled, stdout when no file
// is configured, otherwise the file in append mode.
func InitMetrics(cfg config.MetricsConfig) (io.Writer, io.Closer, error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}
	if cfg.File == "" {
		return os.Stdout, nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create metrics directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open metrics file: %w", err)
	}
	return f, f, nil
}

// New composes an Env. picker may be nil.
func New(ctx context.Context, cfg *config.Config, picker folder.Picker) (*Env, error) {
	env := &Env{Config: cfg}

	sources, err := InitSources(ctx, cfg)
	if err != nil {
		return nil, err
	}
	env.Sources = sources

	compression, err := archive.ParseCompression(cfg.Export.Compression)
	if err != nil {
		return nil, err
	}

	metricsOut, metricsCloser, err := InitMetrics(cfg.Metrics)
	if err != nil {
		return nil, err
	}
	if metricsCloser != nil {
		env.closers = append(env.closers, metricsCloser)
	}

	thumbs, err := thumbcache.Open(cfg.Thumbnails.CacheDir)
	if err != nil {
		// A locked or unreadable cache only costs speed.
		log.Warn().Err(err).Str("dir", cfg.Thumbnails.CacheDir).Msg("Thumbnail cache unavailable, using memory only")
		thumbs, _ = thumbcache.Open("")
	}
	env.Thumbs = thumbs
	env.closers = append(env.closers, thumbs)

	env.Session = session.New(sources, picker, session.Options{
		PageSize:          cfg.Deck.PageSize,
		PrefetchThreshold: cfg.Deck.PrefetchThreshold,
		Preview:           cfg.Deck.Preview,
		Swipe:             cfg.Swipe,
		Export: archive.Options{
			Compression: compression,
			ZstdLevel:   cfg.Export.ZstdLevel,
		},
		Metrics: metricsOut,
	})
	return env, nil
}

// StartupLog returns a startup logger describing env.
func StartupLog(name string, env *Env, initStart time.Time) *logging.StartupLogger {
	cfg := env.Config
	sl := logging.NewStartupLogger(name).
		InitDuration(time.Since(initStart)).
		Source("local", "trash="+cfg.Local.TrashDir).
		Feature("recursive", cfg.Local.Recursive).
		Feature("exif", cfg.Local.ReadEXIF).
		Feature("s3", cfg.S3.Enabled).
		Feature("metrics", cfg.Metrics.Enabled).
		Feature("thumbCache", cfg.Thumbnails.CacheDir != "").
		Config("pageSize", strconv.Itoa(cfg.Deck.PageSize)).
		Config("prefetchThreshold", strconv.Itoa(cfg.Deck.PrefetchThreshold)).
		Config("purgeMode", cfg.Purge.Mode).
		Config("exportCompression", cfg.Export.Compression).
		Config("commitThreshold", strconv.FormatFloat(cfg.Swipe.CommitThreshold, 'f', -1, 64)).
		Config("velocityThreshold", strconv.FormatFloat(cfg.Swipe.VelocityThreshold, 'f', -1, 64))
	if cfg.S3.Enabled {
		sl.Source("s3", "region="+cfg.S3.Region)
	}
	return sl
}
