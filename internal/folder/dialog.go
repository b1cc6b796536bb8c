package folder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
)

// DialogPicker opens the native OS folder dialog.
type DialogPicker struct {
	Title string
	// Start is the folder the dialog opens in.
	Start string
}

// PickFolder shows the dialog and checks the chosen folder is readable.
func (p DialogPicker) PickFolder(ctx context.Context) (string, error) {
	title := p.Title
	if title == "" {
		title = "Select photo folder"
	}
	opts := []zenity.Option{
		zenity.Context(ctx),
		zenity.Directory(),
		zenity.Title(title),
	}
	if p.Start != "" {
		opts = append(opts, zenity.Filename(p.Start))
	}

	selected, err := zenity.SelectFile(opts...)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", ErrUserCancelled
		}
		log.Error().Err(err).Msg("Directory picker failed")
		return "", fmt.Errorf("directory picker failed: %w", err)
	}

	if err := CheckReadable(selected); err != nil {
		return "", err
	}
	log.Info().Str("folder", selected).Msg("Folder picked via native dialog")
	return selected, nil
}

// CheckReadable verifies that dir is a directory the process can list.
func CheckReadable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return wrap(ErrInvalidFolder, err, dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: not a directory: %s", ErrInvalidFolder, dir)
	}
	f, err := os.Open(dir)
	if err != nil {
		return wrap(ErrInvalidFolder, err, dir)
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return wrap(ErrInvalidFolder, err, dir)
	}
	return nil
}
