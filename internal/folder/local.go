package folder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photoswipe/internal/deck"
	"github.com/fpang/photoswipe/internal/filehandler"
)

// LocalOptions configures a Local source.
type LocalOptions struct {
	// Recursive also lists images in subfolders.
	Recursive bool
	// IncludeHidden lists dot-files.
	IncludeHidden bool
	// ReadEXIF fills capture time and camera for every listed photo.
	ReadEXIF bool
	// TrashDir overrides DefaultTrashDir.
	TrashDir string
}

// Local is a Source over the local file system. Photo URIs are absolute paths.
type Local struct {
	opts LocalOptions
}

// NewLocal returns a local file system source.
func NewLocal(opts LocalOptions) *Local {
	if opts.TrashDir == "" {
		opts.TrashDir = DefaultTrashDir
	}
	return &Local{opts: opts}
}

// ListImages scans folder and returns one page, newest first. The scan is
// stat-only; EXIF is read only for the photos on the returned page.
func (l *Local) ListImages(ctx context.Context, folder string, pageSize, offset int) ([]deck.Photo, error) {
	dir := localPath(folder)
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidFolder)
	}

	maxDepth := 1
	if l.opts.Recursive {
		maxDepth = 0
	}
	images, err := filehandler.ScanImages(dir, filehandler.ScanOptions{
		MaxDepth:      maxDepth,
		IncludeHidden: l.opts.IncludeHidden,
		SkipDirs:      []string{l.opts.TrashDir},
	})
	if err != nil {
		if errors.Is(err, filehandler.ErrNotDirectory) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFolder, err)
		}
		return nil, wrap(ErrFetchFailed, err, dir)
	}

	page := filehandler.Page(images, offset, pageSize)
	photos := make([]deck.Photo, 0, len(page))
	for _, img := range page {
		if err := ctx.Err(); err != nil {
			return nil, wrap(ErrFetchFailed, err, dir)
		}
		photo := deck.Photo{
			URI:      img.Path,
			Name:     img.Name,
			MIMEType: img.MIMEType,
			Size:     img.Size,
			Modified: img.Modified,
		}
		if l.opts.ReadEXIF {
			l.enrich(&photo)
		}
		photos = append(photos, photo)
	}

	log.Debug().
		Str("folder", dir).
		Int("offset", offset).
		Int("page_size", pageSize).
		Int("returned", len(photos)).
		Int("total", len(images)).
		Msg("Listed local images")

	return photos, nil
}

func (l *Local) enrich(p *deck.Photo) {
	meta, err := filehandler.ExtractImageMetadataFile(p.URI)
	if err != nil {
		log.Debug().Err(err).Str("path", p.URI).Msg("No EXIF metadata")
		return
	}
	if meta.HasDate {
		p.TakenAt = meta.DateTaken
	}
	p.Camera = meta.Camera()
}

// Open opens the photo file.
func (l *Local) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	f, err := os.Open(localPath(uri))
	if err != nil {
		return nil, wrap(ErrOpenFailed, err, uri)
	}
	return f, nil
}

// Dimensions decodes the photo header.
func (l *Local) Dimensions(_ context.Context, uri string) (filehandler.Dimensions, error) {
	dims, err := filehandler.DecodeDimensionsFile(localPath(uri))
	if err != nil {
		return filehandler.Dimensions{}, wrap(ErrOpenFailed, err, uri)
	}
	return dims, nil
}

// Delete removes the photo file.
func (l *Local) Delete(_ context.Context, uri string) error {
	path := localPath(uri)
	if err := os.Remove(path); err != nil {
		return wrap(ErrDeleteFailed, err, path)
	}
	log.Info().Str("path", path).Msg("Deleted photo")
	return nil
}

// MoveToTrash renames the photo into the trash folder next to it. An
// existing file of the same name in the trash is not overwritten.
func (l *Local) MoveToTrash(_ context.Context, uri string) error {
	path := localPath(uri)
	if _, err := os.Stat(path); err != nil {
		return wrap(ErrDeleteFailed, err, path)
	}

	trashDir := filepath.Join(filepath.Dir(path), l.opts.TrashDir)
	if err := os.MkdirAll(trashDir, 0o755); err != nil {
		return wrap(ErrDeleteFailed, err, trashDir)
	}

	dest, err := freeName(trashDir, filepath.Base(path))
	if err != nil {
		return wrap(ErrDeleteFailed, err, trashDir)
	}
	if err := os.Rename(path, dest); err != nil {
		return wrap(ErrDeleteFailed, err, path)
	}
	log.Info().Str("path", path).Str("dest", dest).Msg("Moved photo to trash")
	return nil
}

// freeName returns a path in dir for name that does not exist yet, adding a
// numeric suffix when needed.
func freeName(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := filepath.Join(dir, name)
	for i := 1; ; i++ {
		_, err := os.Lstat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
	}
}

func localPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}
