package filehandler

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Dimensions is the pixel size of an image.
type Dimensions struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// DecodeDimensions reads only the image header from r.
func DecodeDimensions(r io.Reader) (Dimensions, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to decode image header: %w", err)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// DecodeDimensionsFile is DecodeDimensions for a file on disk.
func DecodeDimensionsFile(filePath string) (Dimensions, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return DecodeDimensions(f)
}
