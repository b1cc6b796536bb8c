package filehandler

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
)

// ImageMetadata contains EXIF metadata extracted from an image.
//
// It uses evanoberholster/imagemeta which supports:
//   - HEIC (parses BMFF container to find EXIF block)
//   - JPEG (standard EXIF at file start)
//   - TIFF (standard IFD structure)
//   - PNG/WebP (graceful handling of limited metadata)
//
// Only the metadata blocks are read, not the pixel data.
type ImageMetadata struct {
	// GPS coordinates (converted from EXIF Rational format to float64)
	Latitude  float64
	Longitude float64
	HasGPS    bool

	DateTaken time.Time
	HasDate   bool

	CameraMake  string
	CameraModel string
}

// Camera returns "make model", or "" when neither is known. A model that
// already starts with the make is not repeated.
func (m *ImageMetadata) Camera() string {
	mk, model := m.CameraMake, m.CameraModel
	switch {
	case mk == "":
		return model
	case model == "":
		return mk
	case strings.HasPrefix(strings.ToLower(model), strings.ToLower(mk)):
		return model
	default:
		return mk + " " + model
	}
}

// Summary returns a one-line description for status bars and card captions.
func (m *ImageMetadata) Summary() string {
	var parts []string
	if m.HasDate {
		parts = append(parts, m.DateTaken.Format("Jan 2, 2006 3:04 PM"))
	}
	if cam := m.Camera(); cam != "" {
		parts = append(parts, cam)
	}
	if m.HasGPS {
		parts = append(parts, CoordinatesToDMS(m.Latitude, m.Longitude))
	}
	return strings.Join(parts, " · ")
}

// ExtractImageMetadata decodes EXIF metadata from r. The format (JPEG, HEIC,
// TIFF) is detected from the header.
func ExtractImageMetadata(r io.ReadSeeker) (*ImageMetadata, error) {
	exifData, err := imagemeta.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode EXIF metadata: %w", err)
	}

	metadata := &ImageMetadata{}

	gps := exifData.GPS
	if gps.Latitude() != 0 || gps.Longitude() != 0 {
		metadata.Latitude = gps.Latitude()
		metadata.Longitude = gps.Longitude()
		metadata.HasGPS = true
	}

	// Priority: DateTimeOriginal > CreateDate > ModifyDate
	for _, t := range []time.Time{exifData.DateTimeOriginal(), exifData.CreateDate(), exifData.ModifyDate()} {
		if !t.IsZero() {
			metadata.DateTaken = t
			metadata.HasDate = true
			break
		}
	}

	metadata.CameraMake = strings.TrimSpace(exifData.Make)
	metadata.CameraModel = strings.TrimSpace(exifData.Model)

	return metadata, nil
}

// ExtractImageMetadataFile is ExtractImageMetadata for a file on disk.
func ExtractImageMetadataFile(filePath string) (*ImageMetadata, error) {
	log.Debug().Str("path", filePath).Msg("Extracting EXIF metadata")

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	metadata, err := ExtractImageMetadata(file)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("path", filePath).
		Bool("has_gps", metadata.HasGPS).
		Bool("has_date", metadata.HasDate).
		Msg("Image metadata extraction complete")

	return metadata, nil
}
