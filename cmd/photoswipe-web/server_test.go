package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fpang/photoswipe/internal/archive"
	"github.com/fpang/photoswipe/internal/config"
	"github.com/fpang/photoswipe/internal/folder"
	"github.com/fpang/photoswipe/internal/session"
	"github.com/fpang/photoswipe/internal/thumbcache"
)

// photoDir writes n PNGs, a.png newest.
func photoDir(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, string(rune('a'+i))+".png")
		f, err := os.Create(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 40, 20))); err != nil {
			t.Fatal(err)
		}
		f.Close()
		mod := base.Add(-time.Duration(i) * time.Minute)
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newTestServer(t *testing.T, picker folder.Picker) (*httptest.Server, *session.Session) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Deck.PageSize = 2
	src := &folder.Mux{Local: folder.NewLocal(folder.LocalOptions{})}
	sess := session.New(src, picker, session.Options{
		PageSize: cfg.Deck.PageSize,
		Export:   archive.Options{Compression: archive.CompressionDeflate},
	})
	thumbs, err := thumbcache.Open("")
	if err != nil {
		t.Fatal(err)
	}
	handler, err := newServer(sess, thumbs, cfg).routes()
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts, sess
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func openDeck(t *testing.T, ts *httptest.Server, dir string) session.View {
	t.Helper()
	resp, data := do(t, ts, http.MethodPost, "/api/deck/open", map[string]string{"folder": dir})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("open deck status = %d, body %s", resp.StatusCode, data)
	}
	return decode[session.View](t, data)
}

func TestDeckFlow(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	dir := photoDir(t, 3)

	v := openDeck(t, ts, dir)
	if v.Total != 2 || v.Current == nil || v.Current.Name != "a.png" {
		t.Fatalf("open view = %+v", v)
	}
	q := "?deckId=" + v.DeckID

	resp, data := do(t, ts, http.MethodPost, "/api/deck/swipe"+q, map[string]float64{"dx": 150})
	out := decode[session.Outcome](t, data)
	if resp.StatusCode != http.StatusOK || out.Decision != "keep" || !out.Applied {
		t.Fatalf("swipe = %d %s", resp.StatusCode, data)
	}

	_, data = do(t, ts, http.MethodPost, "/api/deck/delete"+q, nil)
	out = decode[session.Outcome](t, data)
	if out.View.TrashCount != 1 || !out.View.NeedsMore {
		t.Errorf("after delete view = %+v", out.View)
	}

	_, data = do(t, ts, http.MethodPost, "/api/deck/more"+q, nil)
	more := decode[struct {
		Added int          `json:"added"`
		View  session.View `json:"view"`
	}](t, data)
	if more.Added != 1 || more.View.Total != 3 || !more.View.Exhausted {
		t.Errorf("more = %s", data)
	}

	_, data = do(t, ts, http.MethodPost, "/api/deck/undo"+q, nil)
	out = decode[session.Outcome](t, data)
	if !out.Applied || out.View.TrashCount != 0 || out.View.Cursor != 1 {
		t.Errorf("undo = %s", data)
	}

	resp, _ = do(t, ts, http.MethodGet, "/api/deck?next=5", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /api/deck status = %d", resp.StatusCode)
	}
}

func TestSwipeSamples(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	v := openDeck(t, ts, photoDir(t, 2))

	// 40 units in 40ms is 1000 units/s: a flick left with little displacement.
	body := map[string]any{
		"dx": -40,
		"samples": []map[string]float64{
			{"dx": 0, "t": 0},
			{"dx": -20, "t": 20},
			{"dx": -40, "t": 40},
		},
	}
	_, data := do(t, ts, http.MethodPost, "/api/deck/swipe?deckId="+v.DeckID, body)
	out := decode[session.Outcome](t, data)
	if out.Decision != "delete" || out.View.TrashCount != 1 {
		t.Errorf("flick = %s", data)
	}

	_, data = do(t, ts, http.MethodPost, "/api/deck/swipe?deckId="+v.DeckID, map[string]float64{"dx": -30, "vx": -100})
	out = decode[session.Outcome](t, data)
	if out.Decision != "cancel" || out.Applied || out.View.Cursor != 1 {
		t.Errorf("short drag = %s", data)
	}
}

func TestDeckErrors(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	dir := photoDir(t, 1)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"missing folder", http.MethodPost, "/api/deck/open", map[string]string{"folder": filepath.Join(dir, "nope")}, http.StatusNotFound},
		{"empty folder field", http.MethodPost, "/api/deck/open", map[string]string{}, http.StatusBadRequest},
		{"traversal", http.MethodPost, "/api/deck/open", map[string]string{"folder": dir + "/../x"}, http.StatusBadRequest},
		{"wrong method", http.MethodGet, "/api/deck/keep", nil, http.StatusMethodNotAllowed},
		{"unknown action", http.MethodPost, "/api/deck/shuffle", nil, http.StatusNotFound},
		{"stale deck", http.MethodPost, "/api/deck/keep?deckId=deck-old", nil, http.StatusConflict},
		{"purge without folder", http.MethodPost, "/api/trash/purge", nil, http.StatusConflict},
		{"bad purge mode", http.MethodPost, "/api/trash/purge", map[string]string{"mode": "shred"}, http.StatusBadRequest},
		{"export without folder", http.MethodGet, "/api/trash/export", nil, http.StatusConflict},
		{"bad next", http.MethodGet, "/api/deck?next=-1", nil, http.StatusBadRequest},
		{"unknown photo", http.MethodGet, "/api/media/full?uri=/etc/passwd", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := do(t, ts, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("%s %s = %d (%s), want %d", tt.method, tt.path, resp.StatusCode, data, tt.status)
			}
		})
	}
}

func TestTrashPurgeAndExport(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	dir := photoDir(t, 2)
	v := openDeck(t, ts, dir)
	q := "?deckId=" + v.DeckID

	do(t, ts, http.MethodPost, "/api/deck/delete"+q, nil)
	do(t, ts, http.MethodPost, "/api/deck/delete"+q, nil)

	_, data := do(t, ts, http.MethodGet, "/api/trash", nil)
	trash := decode[struct {
		Count int `json:"count"`
	}](t, data)
	if trash.Count != 2 {
		t.Fatalf("trash = %s", data)
	}

	resp, zipData := do(t, ts, http.MethodGet, "/api/trash/export"+q, nil)
	if resp.Header.Get("Content-Type") != "application/zip" {
		t.Errorf("export Content-Type = %q", resp.Header.Get("Content-Type"))
	}
	zr, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		t.Fatalf("export is not a zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Errorf("export has %d files, want 2", len(zr.File))
	}

	resp, data = do(t, ts, http.MethodPost, "/api/trash/purge"+q, map[string]string{"mode": "move"})
	report := decode[session.PurgeReport](t, data)
	if resp.StatusCode != http.StatusOK || report.Purged != 2 || report.Remaining != 0 {
		t.Fatalf("purge = %d %s", resp.StatusCode, data)
	}
	if _, err := os.Stat(filepath.Join(dir, folder.DefaultTrashDir, "a.png")); err != nil {
		t.Errorf("moved photo missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.png")); !os.IsNotExist(err) {
		t.Errorf("original still present: %v", err)
	}
}

func TestTrashClear(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	v := openDeck(t, ts, photoDir(t, 2))
	do(t, ts, http.MethodPost, "/api/deck/delete?deckId="+v.DeckID, nil)

	_, data := do(t, ts, http.MethodPost, "/api/trash/clear", nil)
	cleared := decode[session.View](t, data)
	if cleared.TrashCount != 0 || !cleared.CanUndo {
		t.Errorf("clear = %s", data)
	}
}

func TestMedia(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	dir := photoDir(t, 1)
	openDeck(t, ts, dir)
	uri := filepath.Join(dir, "a.png")

	resp, data := do(t, ts, http.MethodGet, "/api/media/thumbnail?size=10&uri="+uri, nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/jpeg" {
		t.Fatalf("thumbnail = %d %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width != 10 || cfg.Height != 5 {
		t.Errorf("thumbnail = %dx%d, %v; want 10x5", cfg.Width, cfg.Height, err)
	}

	resp, data = do(t, ts, http.MethodGet, "/api/media/dimensions?uri="+uri, nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), `"width":40`) {
		t.Errorf("dimensions = %d %s", resp.StatusCode, data)
	}

	resp, data = do(t, ts, http.MethodGet, "/api/media/full?uri="+uri, nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" || len(data) == 0 {
		t.Errorf("full = %d %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}

func TestPick(t *testing.T) {
	dir := photoDir(t, 1)
	picks := []error{folder.ErrUserCancelled, nil}
	picker := folder.PickerFunc(func(context.Context) (string, error) {
		err := picks[0]
		picks = picks[1:]
		return dir, err
	})
	ts, _ := newTestServer(t, picker)

	_, data := do(t, ts, http.MethodPost, "/api/pick", nil)
	if !strings.Contains(string(data), `"canceled":true`) {
		t.Errorf("cancelled pick = %s", data)
	}
	_, data = do(t, ts, http.MethodPost, "/api/pick", nil)
	res := decode[struct {
		Canceled bool         `json:"canceled"`
		View     session.View `json:"view"`
	}](t, data)
	if res.Canceled || res.View.Total != 1 {
		t.Errorf("pick = %s", data)
	}
}

func TestBrowse(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	dir := photoDir(t, 2)
	os.Mkdir(filepath.Join(dir, "sub"), 0o755)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)

	resp, data := do(t, ts, http.MethodGet, "/api/browse?path="+dir, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("browse = %d %s", resp.StatusCode, data)
	}
	res := decode[struct {
		Entries []browseEntry `json:"entries"`
		Images  int           `json:"images"`
	}](t, data)
	if len(res.Entries) != 3 || !res.Entries[0].IsDir || res.Images != 2 {
		t.Errorf("browse = %s, want sub/ then two images", data)
	}

	resp, _ = do(t, ts, http.MethodGet, "/api/browse?path="+dir+"/../..", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("traversal status = %d, want 400", resp.StatusCode)
	}
}

func TestSwipeConfigAndFrontend(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	_, data := do(t, ts, http.MethodGet, "/api/swipe/config", nil)
	if !strings.Contains(string(data), `"commitThreshold":120`) {
		t.Errorf("swipe config = %s", data)
	}

	resp, data := do(t, ts, http.MethodGet, "/some/client/route", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), "PhotoSwipe") {
		t.Errorf("SPA fallback = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Frame-Options") != "DENY" {
		t.Error("missing security headers")
	}
}

func TestContainsPathTraversal(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/home/user/photos", false},
		{"/home/user/../etc", true},
		{"..", true},
		{"photos/..hidden", false},
	}
	for _, tt := range tests {
		if got := containsPathTraversal(tt.path); got != tt.want {
			t.Errorf("containsPathTraversal(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
