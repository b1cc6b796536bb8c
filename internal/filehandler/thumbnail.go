package filehandler

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

// DefaultThumbnailMaxDimension is the maximum dimension (width or height) for thumbnails.
const DefaultThumbnailMaxDimension = 1024

const thumbnailQuality = 80

// ErrThumbnailUnsupported is returned for formats that cannot be decoded
// without external tools when those tools are not installed.
var ErrThumbnailUnsupported = errors.New("thumbnail not supported for format")

// Thumbnail is an encoded preview image.
type Thumbnail struct {
	Data     []byte
	MIMEType string
}

// GenerateThumbnail creates a low-resolution JPEG preview of the image in r.
// name is used only to pick the decoder path.
//
// Strategy:
//   - JPEG/PNG/GIF/WebP/BMP/TIFF: decode and resize in pure Go (golang.org/x/image/draw)
//   - HEIC/HEIF: convert with ffmpeg when it is installed
func GenerateThumbnail(r io.Reader, name string, maxDimension int) (Thumbnail, error) {
	if maxDimension <= 0 {
		maxDimension = DefaultThumbnailMaxDimension
	}
	ext := strings.ToLower(filepath.Ext(name))

	log.Debug().
		Str("name", name).
		Int("max_dimension", maxDimension).
		Msg("Generating thumbnail")

	var img image.Image
	var err error
	method := "pure-go"

	switch ext {
	case ".heic", ".heif":
		img, err = decodeWithFFmpeg(r, ext)
		method = "ffmpeg-heic"
	default:
		img, _, err = image.Decode(r)
		if err != nil {
			err = fmt.Errorf("failed to decode image: %w", err)
		}
	}
	if err != nil {
		return Thumbnail{}, err
	}

	data, err := encodeThumbnail(img, maxDimension)
	if err != nil {
		return Thumbnail{}, err
	}

	log.Debug().
		Str("name", name).
		Int("output_size", len(data)).
		Str("method", method).
		Msg("Thumbnail generation complete")

	return Thumbnail{Data: data, MIMEType: "image/jpeg"}, nil
}

// encodeThumbnail scales img to fit maxDimension and encodes it as JPEG.
func encodeThumbnail(img image.Image, maxDimension int) ([]byte, error) {
	bounds := img.Bounds()
	newWidth, newHeight := calculateThumbnailDimensions(bounds.Dx(), bounds.Dy(), maxDimension)

	// JPEG has no alpha; draw onto an opaque canvas either way.
	canvas := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	if newWidth == bounds.Dx() && newHeight == bounds.Dy() {
		draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(canvas, canvas.Bounds(), img, bounds, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeWithFFmpeg converts a HEIC/HEIF stream to an image via ffmpeg.
func decodeWithFFmpeg(r io.Reader, ext string) (image.Image, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("%w %s: ffmpeg not found", ErrThumbnailUnsupported, ext)
	}

	src, err := os.CreateTemp("", "thumb-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(src.Name())
	if _, err := io.Copy(src, r); err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to buffer image: %w", err)
	}
	src.Close()

	// -frames:v 1: HEIC is a single image; write PNG to stdout.
	cmd := exec.Command(ffmpegPath,
		"-loglevel", "error",
		"-i", src.Name(),
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg HEIC conversion failed: %w: %s", err, stderr.String())
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode converted frame: %w", err)
	}
	return img, nil
}

// calculateThumbnailDimensions calculates new dimensions maintaining aspect ratio.
func calculateThumbnailDimensions(width, height, maxDimension int) (int, int) {
	if width <= maxDimension && height <= maxDimension {
		return width, height
	}

	if width > height {
		newWidth := maxDimension
		newHeight := max(1, int(float64(height)*float64(maxDimension)/float64(width)))
		return newWidth, newHeight
	}

	newHeight := maxDimension
	newWidth := max(1, int(float64(width)*float64(maxDimension)/float64(height)))
	return newWidth, newHeight
}
