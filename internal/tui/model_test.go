package tui

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fpang/photoswipe/internal/deck"
	"github.com/fpang/photoswipe/internal/filehandler"
	"github.com/fpang/photoswipe/internal/folder"
	"github.com/fpang/photoswipe/internal/session"
	"github.com/fpang/photoswipe/internal/swipe"
)

// memSource serves n photos from a single folder.
type memSource struct {
	photos  []deck.Photo
	deleted []string
}

func newMemSource(n int) *memSource {
	s := &memSource{}
	for i := 0; i < n; i++ {
		s.photos = append(s.photos, deck.Photo{
			URI:  fmt.Sprintf("/pics/p%d.jpg", i),
			Name: fmt.Sprintf("p%d.jpg", i),
			Size: 2048,
		})
	}
	return s
}

func (s *memSource) ListImages(_ context.Context, uri string, pageSize, offset int) ([]deck.Photo, error) {
	if uri != "/pics" {
		return nil, fmt.Errorf("%w: %s", folder.ErrInvalidFolder, uri)
	}
	if offset >= len(s.photos) {
		return nil, nil
	}
	return s.photos[offset:min(offset+pageSize, len(s.photos))], nil
}

func (s *memSource) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(uri)), nil
}

func (s *memSource) Dimensions(context.Context, string) (filehandler.Dimensions, error) {
	return filehandler.Dimensions{}, nil
}

func (s *memSource) Delete(_ context.Context, uri string) error {
	s.deleted = append(s.deleted, uri)
	return nil
}

func (s *memSource) MoveToTrash(context.Context, string) error {
	return errors.New("not supported")
}

// fakeClock advances by step on every call.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func newModel(t *testing.T, n int, opts Options) (Model, *memSource) {
	t.Helper()
	src := newMemSource(n)
	sess := session.New(src, nil, session.Options{PageSize: 3, PrefetchThreshold: 1})
	if opts.Clock == nil {
		clock := &fakeClock{t: time.Unix(0, 0), step: 10 * time.Millisecond}
		opts.Clock = clock.now
	}
	opts.InitialFolder = "/pics"
	m := New(sess, opts)
	m = run(t, m, m.Init())
	return m, src
}

// run executes cmd and feeds its message back into the model, following
// returned commands until none remain.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 10 {
			t.Fatal("command chain did not settle")
		}
		msg := cmd()
		if msg == nil {
			return m
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, cmd := m.Update(msg)
		m = run(t, next.(Model), cmd)
	}
	return m
}

func mouse(t *testing.T, m Model, action tea.MouseAction, x int) Model {
	t.Helper()
	next, cmd := m.Update(tea.MouseMsg{X: x, Y: 5, Action: action, Button: tea.MouseButtonLeft})
	return run(t, next.(Model), cmd)
}

func TestInitOpensFolder(t *testing.T) {
	m, _ := newModel(t, 5, Options{})
	if m.view.Total != 3 || m.view.Current == nil || m.view.Current.Name != "p0.jpg" {
		t.Fatalf("view = %+v", m.view)
	}
	if !strings.Contains(m.View(), "p0.jpg") {
		t.Error("View() does not show the current photo")
	}
}

func TestKeysKeepDeleteUndo(t *testing.T) {
	m, _ := newModel(t, 5, Options{})

	m = press(t, m, "right", "left")
	if m.view.Cursor != 2 || m.view.TrashCount != 1 {
		t.Errorf("after keep+delete cursor %d trash %d, want 2 1", m.view.Cursor, m.view.TrashCount)
	}
	// Reaching the prefetch threshold loaded the second page.
	if m.view.Total != 5 || !m.view.Exhausted {
		t.Errorf("total %d exhausted %v, want 5 true", m.view.Total, m.view.Exhausted)
	}

	m = press(t, m, "u")
	if m.view.Cursor != 1 || m.view.TrashCount != 0 {
		t.Errorf("after undo cursor %d trash %d, want 1 0", m.view.Cursor, m.view.TrashCount)
	}
	m = press(t, m, "u", "u")
	if m.status != "Nothing to undo" {
		t.Errorf("status = %q, want Nothing to undo", m.status)
	}
}

func TestMouseSwipe(t *testing.T) {
	tests := []struct {
		name   string
		from   int
		to     int
		cursor int
		trash  int
		status string
	}{
		// 15 cells * 10 units = 150 units right.
		{"drag right keeps", 20, 35, 1, 0, ""},
		// 15 cells left.
		{"drag left deletes", 20, 5, 1, 1, ""},
		// 2 cells over 3 ticks is well under both thresholds.
		{"short drag cancels", 20, 22, 0, 0, "Swipe cancelled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{t: time.Unix(0, 0), step: 50 * time.Millisecond}
			m, _ := newModel(t, 5, Options{Clock: clock.now})

			m = mouse(t, m, tea.MouseActionPress, tt.from)
			m = mouse(t, m, tea.MouseActionMotion, (tt.from+tt.to)/2)
			m = mouse(t, m, tea.MouseActionMotion, tt.to)
			if m.drag.feedback.Direction == swipe.DirectionNeutral && tt.to-tt.from >= 15 {
				t.Error("no live direction during a long drag")
			}
			m = mouse(t, m, tea.MouseActionRelease, tt.to)

			if m.view.Cursor != tt.cursor || m.view.TrashCount != tt.trash || m.status != tt.status {
				t.Errorf("cursor %d trash %d status %q, want %d %d %q",
					m.view.Cursor, m.view.TrashCount, m.status, tt.cursor, tt.trash, tt.status)
			}
			if m.drag.active {
				t.Error("drag still active after release")
			}
		})
	}
}

func TestMouseFlick(t *testing.T) {
	// 4 cells (40 units) in 10ms is 4000 units/s.
	clock := &fakeClock{t: time.Unix(0, 0), step: 10 * time.Millisecond}
	m, _ := newModel(t, 5, Options{Clock: clock.now})

	m = mouse(t, m, tea.MouseActionPress, 20)
	m = mouse(t, m, tea.MouseActionRelease, 24)
	if m.view.Cursor != 1 || m.view.TrashCount != 0 {
		t.Errorf("flick right: cursor %d trash %d, want 1 0", m.view.Cursor, m.view.TrashCount)
	}
}

func TestDragFeedbackRendering(t *testing.T) {
	m, _ := newModel(t, 5, Options{})
	m = mouse(t, m, tea.MouseActionPress, 20)
	m = mouse(t, m, tea.MouseActionMotion, 0)
	if !strings.Contains(m.View(), "DELETE") {
		t.Error("View() missing DELETE badge during a long left drag")
	}
}

func TestPurgeConfirm(t *testing.T) {
	m, src := newModel(t, 5, Options{})
	m = press(t, m, "left", "left")

	m = press(t, m, "p")
	if !m.confirm || !strings.Contains(m.View(), "Purge 2 photos") {
		t.Fatal("purge did not ask for confirmation")
	}
	m = press(t, m, "n")
	if m.confirm || len(src.deleted) != 0 {
		t.Fatal("denied purge deleted photos")
	}

	m = press(t, m, "p", "y")
	if len(src.deleted) != 2 || m.view.TrashCount != 0 {
		t.Errorf("deleted %v trash %d, want 2 photos purged", src.deleted, m.view.TrashCount)
	}
	if !strings.HasPrefix(m.status, "Purged 2 photos") || m.statusErr {
		t.Errorf("status = %q", m.status)
	}
}

func TestPurgeFailureKeepsTrash(t *testing.T) {
	m, _ := newModel(t, 5, Options{PurgeMode: session.PurgeMove})
	m = press(t, m, "left", "p", "y")
	if m.view.TrashCount != 1 || !m.statusErr {
		t.Errorf("trash %d statusErr %v status %q, want failed photo kept", m.view.TrashCount, m.statusErr, m.status)
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	m, _ := newModel(t, 5, Options{ExportDir: dir})

	m = press(t, m, "x")
	if m.status != "Trash is empty" {
		t.Errorf("export of empty trash status = %q", m.status)
	}

	m = press(t, m, "left", "x")
	if m.statusErr || !strings.Contains(m.status, "Exported 1 photos") {
		t.Fatalf("status = %q", m.status)
	}
	_, path, _ := strings.Cut(m.status, " to ")
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open export %s: %v", path, err)
	}
	defer zr.Close()
	if len(zr.File) != 1 || zr.File[0].Name != "p0.jpg" {
		t.Errorf("export entries = %v", zr.File)
	}
}

func TestClearAndTrashPanel(t *testing.T) {
	m, _ := newModel(t, 5, Options{})
	m = press(t, m, "left", "t")
	if !strings.Contains(m.View(), "1 photos, 2.0 KiB") {
		t.Errorf("trash panel missing from View():\n%s", m.View())
	}
	m = press(t, m, "c")
	if m.view.TrashCount != 0 || !m.view.CanUndo {
		t.Errorf("after clear trash %d canUndo %v", m.view.TrashCount, m.view.CanUndo)
	}
}

func TestOpenWithoutPicker(t *testing.T) {
	m, _ := newModel(t, 5, Options{})
	m = press(t, m, "o")
	if !m.statusErr || m.view.Total != 3 {
		t.Errorf("open without picker: statusErr %v total %d", m.statusErr, m.view.Total)
	}
}

func TestDoneDeck(t *testing.T) {
	m, _ := newModel(t, 2, Options{})
	m = press(t, m, "right", "right", "right")
	if !m.view.Done || m.status != "All photos reviewed" {
		t.Errorf("done %v status %q", m.view.Done, m.status)
	}
	if !strings.Contains(m.View(), "All photos reviewed") {
		t.Error("View() does not show the finished message")
	}
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t, 1, Options{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
