package filehandler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrNotDirectory is returned when a scan target exists but is a file.
var ErrNotDirectory = errors.New("not a directory")

// ImageFile is a supported image found by a directory scan. Only file system
// metadata is filled; EXIF is read separately for the files actually shown.
type ImageFile struct {
	Path     string
	Name     string
	MIMEType string
	Size     int64
	Modified time.Time
}

// ScanOptions configures directory scanning behavior.
type ScanOptions struct {
	// MaxDepth limits recursion depth. 0 = unlimited, 1 = top-level only.
	MaxDepth int

	// IncludeHidden also scans dot-files and dot-directories.
	IncludeHidden bool

	// SkipDirs names directories that are never entered, at any depth.
	SkipDirs []string
}

// ScanImages lists the supported images under dirPath, newest first by
// modification time (ties broken by path).
// Symlinks to files are followed; symlinks to directories are skipped to prevent infinite loops.
func ScanImages(dirPath string, opts ScanOptions) ([]ImageFile, error) {
	log.Debug().
		Str("path", dirPath).
		Int("max_depth", opts.MaxDepth).
		Msg("Scanning directory for images")

	info, err := os.Stat(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dirPath)
	}

	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	baseDepth := strings.Count(absPath, string(os.PathSeparator))

	var images []ImageFile
	err = filepath.WalkDir(absPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error accessing path, skipping")
			return nil
		}

		if path != absPath && !opts.IncludeHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != absPath && slices.Contains(opts.SkipDirs, d.Name()) {
				return fs.SkipDir
			}
			if opts.MaxDepth > 0 && path != absPath {
				depth := strings.Count(path, string(os.PathSeparator)) - baseDepth
				if depth >= opts.MaxDepth {
					return fs.SkipDir
				}
			}
			return nil
		}

		mimeType := MIMETypeForName(d.Name())
		if mimeType == "" {
			return nil
		}

		// os.Stat follows symlinks; d.Info does not.
		fi, err := os.Stat(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to stat file, skipping")
			return nil
		}
		if fi.IsDir() {
			log.Debug().Str("path", path).Msg("Skipping symlink to directory")
			return nil
		}

		images = append(images, ImageFile{
			Path:     path,
			Name:     d.Name(),
			MIMEType: mimeType,
			Size:     fi.Size(),
			Modified: fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	SortNewestFirst(images)

	log.Debug().
		Int("total_images", len(images)).
		Str("directory", dirPath).
		Msg("Directory scan complete")

	return images, nil
}

// SortNewestFirst orders images by modification time, newest first. Equal
// times are ordered by path so paging over the result is stable.
func SortNewestFirst(images []ImageFile) {
	sort.SliceStable(images, func(i, j int) bool {
		if !images[i].Modified.Equal(images[j].Modified) {
			return images[i].Modified.After(images[j].Modified)
		}
		return images[i].Path < images[j].Path
	})
}

// Page returns images[offset:offset+limit], clamped. limit <= 0 returns the
// rest of the slice.
func Page(images []ImageFile, offset, limit int) []ImageFile {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(images) {
		return nil
	}
	end := len(images)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return images[offset:end]
}
