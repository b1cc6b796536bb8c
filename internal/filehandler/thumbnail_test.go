package filehandler

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestCalculateThumbnailDimensions(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{800, 600, 1024, 800, 600},
		{2048, 1024, 1024, 1024, 512},
		{1000, 4000, 400, 100, 400},
		{5000, 2, 100, 100, 1},
	}
	for _, tt := range tests {
		w, h := calculateThumbnailDimensions(tt.w, tt.h, tt.max)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("calculateThumbnailDimensions(%d, %d, %d) = (%d, %d), want (%d, %d)",
				tt.w, tt.h, tt.max, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestGenerateThumbnail(t *testing.T) {
	src := encodePNG(t, 200, 100)

	thumb, err := GenerateThumbnail(bytes.NewReader(src), "wide.png", 50)
	if err != nil {
		t.Fatalf("GenerateThumbnail() error = %v", err)
	}
	if thumb.MIMEType != "image/jpeg" {
		t.Errorf("MIMEType = %q, want image/jpeg", thumb.MIMEType)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(thumb.Data))
	if err != nil {
		t.Fatalf("thumbnail is not a JPEG: %v", err)
	}
	if cfg.Width != 50 || cfg.Height != 25 {
		t.Errorf("thumbnail size = %dx%d, want 50x25", cfg.Width, cfg.Height)
	}
}

func TestGenerateThumbnailSmallImageKeepsSize(t *testing.T) {
	src := encodePNG(t, 30, 20)
	thumb, err := GenerateThumbnail(bytes.NewReader(src), "small.png", 0)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(thumb.Data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 30 || cfg.Height != 20 {
		t.Errorf("thumbnail size = %dx%d, want 30x20", cfg.Width, cfg.Height)
	}
}

func TestGenerateThumbnailInvalid(t *testing.T) {
	if _, err := GenerateThumbnail(bytes.NewReader([]byte("nope")), "bad.jpg", 100); err == nil {
		t.Error("GenerateThumbnail(garbage) error = nil, want error")
	}
}

func TestDecodeDimensions(t *testing.T) {
	dims, err := DecodeDimensions(bytes.NewReader(encodePNG(t, 64, 48)))
	if err != nil {
		t.Fatalf("DecodeDimensions() error = %v", err)
	}
	if dims.Width != 64 || dims.Height != 48 || dims.Format != "png" {
		t.Errorf("DecodeDimensions() = %+v, want 64x48 png", dims)
	}

	if _, err := DecodeDimensions(bytes.NewReader([]byte("nope"))); err == nil {
		t.Error("DecodeDimensions(garbage) error = nil, want error")
	}
}
