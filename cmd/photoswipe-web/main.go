package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/photoswipe/internal/boot"
	"github.com/fpang/photoswipe/internal/config"
	"github.com/fpang/photoswipe/internal/folder"
	"github.com/fpang/photoswipe/internal/logging"
)

// Set at build time via -ldflags.
var (
	version    = "dev"
	commitHash = ""
	buildTime  = ""
)

func newRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "photoswipe-web [folder]",
		Short: "Swipe through a photo folder in the browser",
		Long: `photoswipe-web starts a local web server with a swipe interface for
triaging photos. Swipe right to keep, left to mark for deletion, undo
mistakes, review the trash queue and purge it when you are sure.

Folders can be local paths or s3://bucket/prefix URIs (with s3.enabled).`,
		Example: `  photoswipe-web
  photoswipe-web ~/Pictures/2025 --port 9090
  PHOTOSWIPE_S3_ENABLED=true photoswipe-web s3://my-bucket/camera-roll`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadDotEnv()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := config.New()
			err := config.BindFlags(v, cmd.Flags(), map[string]string{
				"server.host":     "host",
				"server.port":     "port",
				"logging.level":   "log-level",
				"purge.mode":      "purge-mode",
				"deck.page_size":  "page-size",
				"local.recursive": "recursive",
			})
			if err != nil {
				return err
			}
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			initial := ""
			if len(args) == 1 {
				initial = args[0]
			}
			return serve(cmd.Context(), cfg, initial)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Config file (default ~/.config/photoswipe/config.yaml)")
	cmd.Flags().String("host", "localhost", "Interface to listen on")
	cmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	cmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	cmd.Flags().String("purge-mode", config.PurgeDelete, "What purging does: delete or move")
	cmd.Flags().Int("page-size", 20, "Photos fetched per page")
	cmd.Flags().BoolP("recursive", "r", false, "Include photos in subfolders")

	return cmd
}

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config, initial string) error {
	initStart := time.Now()
	logging.Init(cfg.Logging.Level, nil)

	picker := folder.DialogPicker{Title: "Select a photo folder"}
	if initial != "" && !folder.IsS3(initial) {
		picker.Start = initial
	}
	env, err := boot.New(ctx, cfg, picker)
	if err != nil {
		return err
	}
	defer func() {
		if err := env.Close(); err != nil {
			log.Warn().Err(err).Msg("Shutdown cleanup failed")
		}
	}()

	if initial != "" {
		if _, err := env.Session.OpenFolder(ctx, initial); err != nil {
			log.Warn().Err(err).Str("folder", initial).Msg("Could not open initial folder")
		}
	}

	handler, err := newServer(env.Session, env.Thumbs, cfg).routes()
	if err != nil {
		return fmt.Errorf("failed to access embedded frontend: %w", err)
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // trash export streams the whole queue
		IdleTimeout:  60 * time.Second,
	}

	boot.StartupLog("photoswipe-web", env, initStart).
		Version(version).
		CommitHash(commitHash).
		BuildTime(buildTime).
		Config("addr", addr).
		Feature("nativePicker", zenity.IsAvailable()).
		Log()

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting web server")
		fmt.Printf("\n  PhotoSwipe: http://%s\n\n", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
			return err
		}
		log.Info().Msg("Server stopped")
		return nil
	case err := <-serverErr:
		return err
	}
}
