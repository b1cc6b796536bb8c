// Package tui is the terminal front end: a bubbletea program that shows one
// photo card at a time. Dragging the card with the mouse is the swipe
// gesture; the arrow keys are shortcuts for keep and delete.
package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/fpang/photoswipe/internal/cli"
	"github.com/fpang/photoswipe/internal/folder"
	"github.com/fpang/photoswipe/internal/session"
	"github.com/fpang/photoswipe/internal/swipe"
)

// Options configures the model.
type Options struct {
	// InitialFolder is opened on start when set.
	InitialFolder string
	// CellWidth and CellHeight convert a drag of one terminal cell into
	// display units for the classifier.
	CellWidth  float64
	CellHeight float64
	PurgeMode  session.PurgeMode
	// ExportDir receives trash exports; "" uses the working directory.
	ExportDir string
	// Clock drives gesture timing; nil uses time.Now.
	Clock func() time.Time
}

// dragState tracks a mouse drag on the card.
type dragState struct {
	active   bool
	x0, y0   int
	dx, dy   float64
	feedback swipe.Feedback
}

// Model is the bubbletea model for a review.
type Model struct {
	sess    *session.Session
	opts    Options
	keys    KeyMap
	help    help.Model
	tracker *swipe.GestureTracker

	view      session.View
	drag      dragState
	showTrash bool
	confirm   bool // purge confirmation pending
	busy      string
	status    string
	statusErr bool

	width, height int
}

// New returns a model driving sess.
func New(sess *session.Session, opts Options) Model {
	if opts.CellWidth <= 0 {
		opts.CellWidth = 10
	}
	if opts.CellHeight <= 0 {
		opts.CellHeight = 20
	}
	if opts.PurgeMode == "" {
		opts.PurgeMode = session.PurgeDelete
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return Model{
		sess:    sess,
		opts:    opts,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		tracker: swipe.NewGestureTracker(sess.Classifier()),
		view:    sess.View(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.opts.InitialFolder != "" {
		return openFolderCmd(m.sess, m.opts.InitialFolder)
	}
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case folderOpenedMsg:
		m.busy = ""
		if msg.Err != nil {
			if !errors.Is(msg.Err, folder.ErrUserCancelled) {
				log.Warn().Err(msg.Err).Msg("Failed to open folder")
			}
			m.setError(msg.Err)
			return m, nil
		}
		m.view = msg.View
		m.setStatus(fmt.Sprintf("Opened %s", msg.View.FolderName))
		return m, m.maybeLoadMore()

	case pageLoadedMsg:
		m.view = m.sess.View()
		if msg.Err != nil {
			m.setError(msg.Err)
		}
		return m, nil

	case purgedMsg:
		m.busy = ""
		m.view = m.sess.View()
		if msg.Err != nil {
			m.setError(msg.Err)
			return m, nil
		}
		r := msg.Report
		text := fmt.Sprintf("Purged %d photos (%s)", r.Purged, cli.FormatBytes(r.ReclaimedBytes))
		if len(r.Failed) > 0 {
			log.Warn().Err(r.Err()).Msg("Purge left photos in the trash")
			m.status = fmt.Sprintf("%s, %d failed and stay in the trash", text, len(r.Failed))
			m.statusErr = true
			return m, nil
		}
		m.setStatus(text)
		return m, nil

	case exportedMsg:
		m.busy = ""
		if msg.Err != nil {
			m.setError(msg.Err)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Exported %d photos to %s", msg.Result.Files, msg.Path))
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.confirm = false
			m.busy = "Purging..."
			return m, purgeCmd(m.sess, m.opts.PurgeMode)
		case key.Matches(msg, m.keys.Deny):
			m.confirm = false
			m.setStatus("Purge cancelled")
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Keep):
		return m.apply(m.sess.Keep())
	case key.Matches(msg, m.keys.Delete):
		return m.apply(m.sess.Delete())
	case key.Matches(msg, m.keys.Undo):
		out := m.sess.Undo()
		m.view = out.View
		if !out.Applied {
			m.setStatus("Nothing to undo")
		} else {
			m.status = ""
		}
		return m, nil
	case key.Matches(msg, m.keys.Open):
		m.busy = "Choosing folder..."
		return m, pickFolderCmd(m.sess)
	case key.Matches(msg, m.keys.Trash):
		m.showTrash = !m.showTrash
	case key.Matches(msg, m.keys.Clear):
		m.view = m.sess.ClearTrash()
		m.setStatus("Trash cleared")
	case key.Matches(msg, m.keys.Purge):
		if m.view.TrashCount == 0 {
			m.setStatus("Trash is empty")
			return m, nil
		}
		m.confirm = true
	case key.Matches(msg, m.keys.Export):
		if m.view.TrashCount == 0 {
			m.setStatus("Trash is empty")
			return m, nil
		}
		m.busy = "Exporting..."
		return m, exportCmd(m.sess, m.opts.ExportDir, m.opts.Clock())
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// handleMouse turns a left-button drag into a swipe. Cell offsets are scaled
// to display units so the classifier thresholds apply unchanged.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	now := m.opts.Clock()
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || m.view.Current == nil {
			return m, nil
		}
		m.drag = dragState{active: true, x0: msg.X, y0: msg.Y}
		m.tracker.Begin(now)
	case tea.MouseActionMotion:
		if !m.drag.active {
			return m, nil
		}
		m.drag.dx = float64(msg.X-m.drag.x0) * m.opts.CellWidth
		m.drag.dy = float64(msg.Y-m.drag.y0) * m.opts.CellHeight
		m.tracker.Move(m.drag.dx, m.drag.dy, now)
		m.drag.feedback = m.sess.Classifier().Feedback(m.drag.dx)
	case tea.MouseActionRelease:
		if !m.drag.active {
			return m, nil
		}
		dx := float64(msg.X-m.drag.x0) * m.opts.CellWidth
		dy := float64(msg.Y-m.drag.y0) * m.opts.CellHeight
		m.tracker.Move(dx, dy, now)
		release := m.tracker.Release(now)
		m.drag = dragState{}
		return m.apply(m.sess.Swipe(release))
	}
	return m, nil
}

// apply shows the outcome of a review event and prefetches when needed.
func (m Model) apply(out session.Outcome) (tea.Model, tea.Cmd) {
	m.view = out.View
	switch {
	case out.Applied:
		m.status = ""
	case out.Decision == swipe.DecisionCancel:
		m.setStatus("Swipe cancelled")
	case out.View.Done:
		m.setStatus("All photos reviewed")
	}
	return m, m.maybeLoadMore()
}

func (m Model) maybeLoadMore() tea.Cmd {
	if m.view.NeedsMore {
		return loadMoreCmd(m.sess)
	}
	return nil
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = cli.UserMessage(err)
	m.statusErr = true
}
