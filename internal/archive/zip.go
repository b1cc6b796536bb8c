// Package archive writes photo sets as zip archives, used to export the trash
// queue for review before anything is deleted.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// MethodZstd is the ZIP compression method ID for Zstandard (APPNOTE 6.3.7).
const MethodZstd uint16 = 93

// Compression selects the entry compression.
type Compression string

const (
	CompressionZstd    Compression = "zstd"
	CompressionDeflate Compression = "deflate"
	CompressionStore   Compression = "store"
)

// ParseCompression accepts zstd, deflate or store (case-insensitive).
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(strings.ToLower(s)); c {
	case CompressionZstd, CompressionDeflate, CompressionStore:
		return c, nil
	case "":
		return CompressionZstd, nil
	default:
		return "", fmt.Errorf("unknown compression %q (want zstd, deflate or store)", s)
	}
}

func (c Compression) method() uint16 {
	switch c {
	case CompressionDeflate:
		return zip.Deflate
	case CompressionStore:
		return zip.Store
	default:
		return MethodZstd
	}
}

// Entry is one file to add to the archive.
type Entry struct {
	Name     string
	Modified time.Time
	Open     func(ctx context.Context) (io.ReadCloser, error)
}

// Options configures WriteZip.
type Options struct {
	Compression Compression
	// ZstdLevel is the zstd level (1-22); 0 uses the library default.
	ZstdLevel int
}

// Result summarises a written archive.
type Result struct {
	Files  int
	Bytes  int64
	Failed []string
}

// WriteZip writes entries to w. Entries that fail to open or read are
// skipped and reported in Result.Failed; duplicate names get a numeric suffix.
func WriteZip(ctx context.Context, w io.Writer, entries []Entry, opts Options) (Result, error) {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(MethodZstd, func(out io.Writer) (io.WriteCloser, error) {
		var encOpts []zstd.EOption
		if opts.ZstdLevel > 0 {
			encOpts = append(encOpts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(opts.ZstdLevel)))
		}
		return zstd.NewWriter(out, encOpts...)
	})

	method := opts.Compression.method()
	used := make(map[string]int)
	var res Result

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			zw.Close()
			return res, err
		}

		name := uniqueName(used, path.Base(e.Name))
		n, err := addEntry(ctx, zw, e, name, method)
		if err != nil {
			log.Warn().Err(err).Str("name", e.Name).Msg("Skipping file in archive")
			res.Failed = append(res.Failed, e.Name)
			continue
		}
		res.Files++
		res.Bytes += n
	}

	if err := zw.Close(); err != nil {
		return res, fmt.Errorf("failed to finish zip: %w", err)
	}

	log.Info().
		Int("files", res.Files).
		Int64("bytes", res.Bytes).
		Int("failed", len(res.Failed)).
		Str("compression", string(opts.Compression)).
		Msg("Archive written")

	return res, nil
}

// addEntry opens the source before creating the zip header, so a source
// that cannot be opened leaves no empty entry behind.
func addEntry(ctx context.Context, zw *zip.Writer, e Entry, name string, method uint16) (int64, error) {
	rc, err := e.Open(ctx)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	hdr := &zip.FileHeader{Name: name, Method: method}
	if !e.Modified.IsZero() {
		hdr.Modified = e.Modified
	}
	fw, err := zw.CreateHeader(hdr)
	if err != nil {
		return 0, fmt.Errorf("create zip entry: %w", err)
	}
	n, err := io.Copy(fw, rc)
	if err != nil {
		return n, fmt.Errorf("copy into zip: %w", err)
	}
	return n, nil
}

func uniqueName(used map[string]int, name string) string {
	count := used[name]
	used[name] = count + 1
	if count == 0 {
		return name
	}
	ext := path.Ext(name)
	candidate := strings.TrimSuffix(name, ext) + "_" + strconv.Itoa(count) + ext
	return uniqueName(used, candidate)
}
