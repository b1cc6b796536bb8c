package session

import (
	"github.com/fpang/photoswipe/internal/deck"
	"github.com/fpang/photoswipe/internal/folder"
)

// View is the deck view plus the session state around it.
type View struct {
	deck.View
	DeckID     string `json:"deckId"`
	Folder     string `json:"folder"`
	FolderName string `json:"folderName"`
	Loading    bool   `json:"loading"`
	Exhausted  bool   `json:"exhausted"`
	NeedsMore  bool   `json:"needsMore"`
	LastError  string `json:"lastError,omitempty"`
}

// View snapshots the session with the configured number of upcoming photos.
func (s *Session) View() View {
	return s.ViewN(s.opts.Preview)
}

// ViewN snapshots the session with up to next upcoming photos.
func (s *Session) ViewN(next int) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewN(next)
}

// DeckID returns the ID of the current deck, or "" before a folder is opened.
func (s *Session) DeckID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deckID
}

func (s *Session) viewLocked() View {
	return s.viewN(s.opts.Preview)
}

func (s *Session) viewN(next int) View {
	v := View{
		View:      s.deck.View(next),
		DeckID:    s.deckID,
		Folder:    s.folder,
		Loading:   s.loading,
		Exhausted: s.exhausted,
		NeedsMore: s.needsMoreLocked(),
	}
	if s.folder != "" {
		v.FolderName = folder.DisplayName(s.folder)
	}
	if s.lastErr != nil {
		v.LastError = s.lastErr.Error()
	}
	return v
}
