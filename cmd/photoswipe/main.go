package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/fang"
	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/photoswipe/internal/boot"
	"github.com/fpang/photoswipe/internal/cli"
	"github.com/fpang/photoswipe/internal/config"
	"github.com/fpang/photoswipe/internal/folder"
	"github.com/fpang/photoswipe/internal/logging"
	"github.com/fpang/photoswipe/internal/session"
	"github.com/fpang/photoswipe/internal/tui"
)

// Set at build time via -ldflags.
var (
	version    = "dev"
	commitHash = ""
	buildTime  = ""
)

func newRootCmd() *cobra.Command {
	var (
		configFile string
		exportDir  string
	)

	cmd := &cobra.Command{
		Use:   "photoswipe [folder]",
		Short: "Swipe through a photo folder in the terminal",
		Long: `photoswipe shows the photos of a folder one at a time. Drag the card
right with the mouse (or press →) to keep a photo, drag it left (or press ←)
to mark it for deletion, and press u to undo.

Nothing is deleted until you purge the trash (p). Export the trash as a zip
(x) to review it first.

Without a folder argument a native folder dialog is shown, or a prompt when
no dialog is available.`,
		Example: `  photoswipe ~/Pictures/2025
  photoswipe --recursive --purge-mode move ./camera-roll
  PHOTOSWIPE_S3_ENABLED=true photoswipe s3://my-bucket/phone`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadDotEnv()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := config.New()
			err := config.BindFlags(v, cmd.Flags(), map[string]string{
				"logging.level":   "log-level",
				"logging.file":    "log-file",
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
			folderArg := ""
			if len(args) == 1 {
				folderArg = args[0]
			}
			return run(cmd.Context(), cfg, folderArg, exportDir)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Config file (default ~/.config/photoswipe/config.yaml)")
	cmd.Flags().StringVar(&exportDir, "export-dir", ".", "Directory for trash exports")
	cmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	cmd.Flags().String("log-file", "", "Log file (default ~/.local/share/photoswipe/photoswipe.log)")
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

func run(ctx context.Context, cfg *config.Config, folderArg, exportDir string) error {
	initStart := time.Now()

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := logging.InitFile(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return err
	}
	defer logFile.Close()

	// Only the native dialog can run while the UI owns the terminal.
	var picker folder.Picker
	if zenity.IsAvailable() {
		picker = folder.DialogPicker{Title: "Select a photo folder"}
	}

	initial, err := resolveFolder(ctx, folderArg, picker)
	if err != nil {
		if errors.Is(err, folder.ErrUserCancelled) {
			return nil
		}
		return errors.New(cli.UserMessage(err))
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

	mode, err := session.ParsePurgeMode(cfg.Purge.Mode)
	if err != nil {
		return err
	}

	boot.StartupLog("photoswipe", env, initStart).
		Version(version).
		CommitHash(commitHash).
		BuildTime(buildTime).
		Config("folder", initial).
		Feature("nativePicker", picker != nil).
		Log()

	model := tui.New(env.Session, tui.Options{
		InitialFolder: initial,
		CellWidth:     cfg.TUI.CellWidth,
		CellHeight:    cfg.TUI.CellHeight,
		PurgeMode:     mode,
		ExportDir:     exportDir,
	})
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal UI failed: %w", err)
	}

	v := env.Session.View()
	if v.TrashCount > 0 {
		fmt.Printf("%d photos are still in the trash; nothing was deleted.\n", v.TrashCount)
	}
	return nil
}

// resolveFolder returns the folder to open: the argument when given,
// otherwise the user's choice from the dialog or a terminal prompt.
func resolveFolder(ctx context.Context, arg string, picker folder.Picker) (string, error) {
	switch {
	case arg != "" && folder.IsS3(arg):
		return arg, nil
	case arg != "":
		return cli.ValidateAndResolveDirectory(arg)
	case picker != nil:
		return picker.PickFolder(ctx)
	default:
		return cli.PromptPicker{}.PickFolder(ctx)
	}
}
