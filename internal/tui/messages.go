package tui

import (
	"github.com/fpang/photoswipe/internal/archive"
	"github.com/fpang/photoswipe/internal/session"
)

// Message types for the TUI

// folderOpenedMsg reports the result of opening or picking a folder.
type folderOpenedMsg struct {
	View session.View
	Err  error
}

// pageLoadedMsg reports a LoadMore result.
type pageLoadedMsg struct {
	Added int
	Err   error
}

// purgedMsg reports a finished purge.
type purgedMsg struct {
	Report session.PurgeReport
	Err    error
}

// exportedMsg reports a finished trash export.
type exportedMsg struct {
	Path   string
	Result archive.Result
	Err    error
}
