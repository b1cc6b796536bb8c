// Package folder implements the storage collaborators behind a review deck:
// picking a folder, listing its images a page at a time, reading them and
// deleting the ones the user purged.
//
// Folders and photos are addressed by URI. Local paths are used as-is and
// S3 objects use s3://bucket/key.
package folder

import (
	"context"
	"io"
	"strings"

	"github.com/fpang/photoswipe/internal/deck"
	"github.com/fpang/photoswipe/internal/filehandler"
)

// DefaultTrashDir is the folder, next to the photo, that MoveToTrash uses.
const DefaultTrashDir = ".photoswipe-trash"

// Source lists and manipulates photos in one kind of storage.
type Source interface {
	// ListImages returns up to pageSize images of folder starting at offset,
	// newest first by modification time.
	ListImages(ctx context.Context, folder string, pageSize, offset int) ([]deck.Photo, error)
	// Open streams the photo content.
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
	// Dimensions decodes only the image header.
	Dimensions(ctx context.Context, uri string) (filehandler.Dimensions, error)
	// Delete removes the photo permanently.
	Delete(ctx context.Context, uri string) error
	// MoveToTrash moves the photo into a trash folder next to it.
	MoveToTrash(ctx context.Context, uri string) error
}

// Picker asks the user for a folder.
type Picker interface {
	PickFolder(ctx context.Context) (string, error)
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(ctx context.Context) (string, error)

// PickFolder calls f.
func (f PickerFunc) PickFolder(ctx context.Context) (string, error) {
	return f(ctx)
}

// IsS3 reports whether uri addresses an S3 object or prefix.
func IsS3(uri string) bool {
	return strings.HasPrefix(uri, s3Scheme)
}

// DisplayName returns the last path element of a folder or photo URI.
func DisplayName(uri string) string {
	trimmed := strings.TrimRight(uri, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 && i < len(trimmed)-1 {
		return trimmed[i+1:]
	}
	return trimmed
}
