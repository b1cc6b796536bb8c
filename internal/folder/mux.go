package folder

import (
	"context"
	"fmt"
	"io"

	"github.com/fpang/photoswipe/internal/deck"
	"github.com/fpang/photoswipe/internal/filehandler"
)

// Mux routes each call to the S3 source for s3:// URIs and to the local
// source otherwise.
type Mux struct {
	Local Source
	S3    Source
}

func (m *Mux) route(uri string) (Source, error) {
	if IsS3(uri) {
		if m.S3 == nil {
			return nil, fmt.Errorf("%w: s3 is not configured: %s", ErrInvalidFolder, uri)
		}
		return m.S3, nil
	}
	if m.Local == nil {
		return nil, fmt.Errorf("%w: local folders are not configured: %s", ErrInvalidFolder, uri)
	}
	return m.Local, nil
}

func (m *Mux) ListImages(ctx context.Context, folder string, pageSize, offset int) ([]deck.Photo, error) {
	src, err := m.route(folder)
	if err != nil {
		return nil, err
	}
	return src.ListImages(ctx, folder, pageSize, offset)
}

func (m *Mux) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	src, err := m.route(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}
	return src.Open(ctx, uri)
}

func (m *Mux) Dimensions(ctx context.Context, uri string) (filehandler.Dimensions, error) {
	src, err := m.route(uri)
	if err != nil {
		return filehandler.Dimensions{}, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}
	return src.Dimensions(ctx, uri)
}

func (m *Mux) Delete(ctx context.Context, uri string) error {
	src, err := m.route(uri)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	return src.Delete(ctx, uri)
}

func (m *Mux) MoveToTrash(ctx context.Context, uri string) error {
	src, err := m.route(uri)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	return src.MoveToTrash(ctx, uri)
}
