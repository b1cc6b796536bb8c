// Package filehandler provides image file handling for local folders: MIME
// detection, directory scanning, EXIF metadata, dimension probing and
// thumbnail generation.
//
// Metadata and dimensions are read through io.Reader so the same code serves
// files on disk and objects streamed from S3.
package filehandler

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SupportedImageExtensions maps the image extensions photoswipe reviews to
// their MIME types.
var SupportedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",
}

// GetMIMEType returns the MIME type for a given file extension.
func GetMIMEType(ext string) (string, error) {
	if mimeType, ok := SupportedImageExtensions[strings.ToLower(ext)]; ok {
		return mimeType, nil
	}
	return "", fmt.Errorf("unsupported file extension: %s", ext)
}

// MIMETypeForName returns the MIME type of a file name, or "" when the
// extension is not a supported image.
func MIMETypeForName(name string) string {
	return SupportedImageExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsImage returns true if the file extension corresponds to an image.
func IsImage(ext string) bool {
	_, ok := SupportedImageExtensions[strings.ToLower(ext)]
	return ok
}

// CoordinatesToDMS converts decimal degrees to degrees, minutes, seconds format.
func CoordinatesToDMS(lat, lon float64) string {
	latDir := "N"
	if lat < 0 {
		latDir = "S"
		lat = -lat
	}

	lonDir := "E"
	if lon < 0 {
		lonDir = "W"
		lon = -lon
	}

	latDeg, latMin, latSec := splitDegrees(lat)
	lonDeg, lonMin, lonSec := splitDegrees(lon)

	return fmt.Sprintf("%d°%d'%.2f\"%s, %d°%d'%.2f\"%s",
		latDeg, latMin, latSec, latDir,
		lonDeg, lonMin, lonSec, lonDir)
}

func splitDegrees(v float64) (deg, min int, sec float64) {
	deg = int(v)
	minutes := (v - float64(deg)) * 60
	min = int(minutes)
	sec = (minutes - float64(min)) * 60
	return deg, min, sec
}
