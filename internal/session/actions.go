package session

import (
	"github.com/rs/zerolog/log"

	"github.com/fpang/photoswipe/internal/deck"
	"github.com/fpang/photoswipe/internal/swipe"
)

// Outcome is the result of a review event.
type Outcome struct {
	Decision swipe.Decision `json:"decision,omitempty"`
	// Applied is false when the event changed nothing: a cancelled swipe, a
	// finished deck or an empty undo.
	Applied bool         `json:"applied"`
	Action  *deck.Action `json:"action,omitempty"`
	View    View         `json:"view"`
}

// Swipe classifies a released gesture and records the decision for the
// current photo.
func (s *Session) Swipe(r swipe.Release) Outcome {
	decision := s.classifier.Classify(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := Outcome{Decision: decision}
	switch decision {
	case swipe.DecisionKeep:
		out.Action = s.recordLocked(deck.ActionKeep)
	case swipe.DecisionDelete:
		out.Action = s.recordLocked(deck.ActionDelete)
	}
	out.Applied = out.Action != nil
	log.Debug().
		Float64("dx", r.DX).
		Float64("vx", r.VX).
		Str("decision", string(decision)).
		Bool("applied", out.Applied).
		Msg("Swipe released")
	out.View = s.viewLocked()
	return out
}

// Keep records a keep decision for the current photo.
func (s *Session) Keep() Outcome {
	return s.decide(deck.ActionKeep, swipe.DecisionKeep)
}

// Delete marks the current photo for deletion.
func (s *Session) Delete() Outcome {
	return s.decide(deck.ActionDelete, swipe.DecisionDelete)
}

func (s *Session) decide(kind deck.ActionKind, decision swipe.Decision) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.recordLocked(kind)
	return Outcome{
		Decision: decision,
		Applied:  a != nil,
		Action:   a,
		View:     s.viewLocked(),
	}
}

// recordLocked applies kind to the current photo and returns the new ledger
// entry, or nil when there is no current photo.
func (s *Session) recordLocked(kind deck.ActionKind) *deck.Action {
	p, ok := s.deck.CurrentPhoto()
	if !ok {
		return nil
	}
	var recorded bool
	if kind == deck.ActionDelete {
		recorded = s.deck.RecordDelete(p.URI)
	} else {
		recorded = s.deck.RecordKeep(p.URI)
	}
	if !recorded {
		return nil
	}
	if kind == deck.ActionDelete {
		s.stats.deleted++
	} else {
		s.stats.kept++
	}
	a, _ := s.deck.LastAction()
	return &a
}

// Undo reverses the most recent decision.
func (s *Session) Undo() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Outcome{}
	if a, ok := s.deck.Undo(); ok {
		s.stats.undone++
		out.Applied = true
		out.Action = &a
		log.Debug().Str("photo", a.PhotoURI).Str("action", string(a.Kind)).Msg("Decision undone")
	}
	out.View = s.viewLocked()
	return out
}

// ClearTrash forgets every pending deletion without touching the files.
func (s *Session) ClearTrash() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.deck.TrashCount()
	s.deck.ClearTrash()
	if n > 0 {
		log.Info().Str("deckId", s.deckID).Int("photos", n).Msg("Trash cleared")
	}
	return s.viewLocked()
}

// Trash returns the photos pending deletion, in the order they were marked.
func (s *Session) Trash() []deck.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck.TrashList()
}

// Actions returns the ledger of the current deck, oldest first.
func (s *Session) Actions() []deck.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck.Actions()
}

// Lookup returns a loaded photo by URI. Only loaded photos are served to
// clients.
func (s *Session) Lookup(uri string) (deck.Photo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck.Lookup(uri)
}
