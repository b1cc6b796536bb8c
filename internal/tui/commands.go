package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fpang/photoswipe/internal/session"
)

// Command factories for async operations

// openFolderCmd opens uri as the new deck.
func openFolderCmd(sess *session.Session, uri string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		v, err := sess.OpenFolder(ctx, uri)
		return folderOpenedMsg{View: v, Err: err}
	}
}

// pickFolderCmd asks the session's picker for a folder and opens it.
func pickFolderCmd(sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		v, err := sess.Pick(context.Background())
		return folderOpenedMsg{View: v, Err: err}
	}
}

// loadMoreCmd fetches the next page.
func loadMoreCmd(sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		n, err := sess.LoadMore(ctx)
		return pageLoadedMsg{Added: n, Err: err}
	}
}

// purgeCmd purges the trash.
func purgeCmd(sess *session.Session, mode session.PurgeMode) tea.Cmd {
	return func() tea.Msg {
		report, err := sess.PurgeTrash(context.Background(), mode)
		return purgedMsg{Report: report, Err: err}
	}
}

// exportCmd writes the trash queue to a timestamped zip in dir.
func exportCmd(sess *session.Session, dir string, now time.Time) tea.Cmd {
	return func() tea.Msg {
		path := filepath.Join(dir, fmt.Sprintf("photoswipe-trash-%s.zip", now.Format("20060102-150405")))
		f, err := os.Create(path)
		if err != nil {
			return exportedMsg{Path: path, Err: err}
		}
		res, err := sess.ExportTrash(context.Background(), f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
		return exportedMsg{Path: path, Result: res, Err: err}
	}
}
