// Package session drives one review deck on behalf of a presentation layer.
//
// A Session owns the deck, the folder it was loaded from and the collaborator
// calls around it: paging, purging and exporting the trash. Every method is
// safe for concurrent use; mutations are serialised and only page fetches run
// outside the lock.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photoswipe/internal/archive"
	"github.com/fpang/photoswipe/internal/deck"
	"github.com/fpang/photoswipe/internal/folder"
	"github.com/fpang/photoswipe/internal/jobs"
	"github.com/fpang/photoswipe/internal/swipe"
)

// Defaults for Options fields left at zero.
const (
	DefaultPageSize          = 20
	DefaultPrefetchThreshold = 3
	DefaultPreview           = 3
)

var (
	// ErrNoFolder is returned by operations that need an open folder.
	ErrNoFolder = errors.New("no folder open")
	// ErrPurgeInProgress is returned when a purge is already running.
	ErrPurgeInProgress = errors.New("purge already in progress")
)

// Options configures a Session.
type Options struct {
	PageSize          int
	PrefetchThreshold int
	// Preview is the number of upcoming photos included in every View.
	Preview int
	Swipe   swipe.Config
	Export  archive.Options
	// Metrics receives one EMF document per purge and per Summary call.
	// Nil disables metrics.
	Metrics io.Writer
	// Clock stamps ledger entries; nil uses time.Now.
	Clock func() time.Time
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.PrefetchThreshold <= 0 {
		o.PrefetchThreshold = DefaultPrefetchThreshold
	}
	if o.Preview <= 0 {
		o.Preview = DefaultPreview
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// Session is the presentation-facing state of one review.
type Session struct {
	source     folder.Source
	picker     folder.Picker
	classifier *swipe.Classifier
	opts       Options

	mu        sync.Mutex
	deck      *deck.Deck
	deckID    string
	folder    string
	loading   bool
	exhausted bool
	purging   bool
	removed   int // photos of this deck purged from the folder
	lastErr   error
	stats     stats
}

// stats counts the decisions made on the current deck, undo included.
type stats struct {
	opened  time.Time
	kept    int
	deleted int
	undone  int
}

// New returns a session reading photos from source. picker may be nil when
// folders are only opened by URI.
func New(source folder.Source, picker folder.Picker, opts Options) *Session {
	opts = opts.withDefaults()
	return &Session{
		source:     source,
		picker:     picker,
		classifier: swipe.NewClassifier(opts.Swipe),
		opts:       opts,
		deck:       deck.New(deck.WithClock(opts.Clock)),
	}
}

// Classifier returns the classifier used by Swipe.
func (s *Session) Classifier() *swipe.Classifier {
	return s.classifier
}

// Options returns the effective options.
func (s *Session) Options() Options {
	return s.opts
}

// Source returns the collaborator photos are read from.
func (s *Session) Source() folder.Source {
	return s.source
}

// --- Folder ---

// OpenFolder lists the first page of uri and replaces the deck with it. On
// error the previous deck is left untouched.
func (s *Session) OpenFolder(ctx context.Context, uri string) (View, error) {
	start := time.Now()
	page, err := s.source.ListImages(ctx, uri, s.opts.PageSize, 0)
	if err != nil {
		log.Warn().Err(err).Str("folder", uri).Msg("Failed to open folder")
		return s.View(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.deck.SwitchFolder(page)
	s.deckID = jobs.GenerateID("deck-")
	s.folder = uri
	s.loading = false
	s.exhausted = len(page) < s.opts.PageSize
	s.removed = 0
	s.lastErr = nil
	s.stats = stats{opened: s.opts.Clock()}

	log.Info().
		Str("deckId", s.deckID).
		Str("folder", uri).
		Int("photos", len(page)).
		Bool("exhausted", s.exhausted).
		Dur("duration", time.Since(start)).
		Msg("Folder opened")
	return s.viewLocked(), nil
}

// Pick asks the picker for a folder and opens it. ErrUserCancelled leaves
// the current deck as it was.
func (s *Session) Pick(ctx context.Context) (View, error) {
	if s.picker == nil {
		return s.View(), fmt.Errorf("%w: no folder picker configured", folder.ErrInvalidFolder)
	}
	uri, err := s.picker.PickFolder(ctx)
	if err != nil {
		if errors.Is(err, folder.ErrUserCancelled) {
			log.Debug().Msg("Folder selection cancelled")
		} else {
			log.Warn().Err(err).Msg("Folder picker failed")
		}
		return s.View(), err
	}
	return s.OpenFolder(ctx, uri)
}

// LoadMore fetches the next page and merges it. It returns the number of new
// photos. Calls while a fetch is in flight, after the last page or without
// an open folder do nothing. A page that arrives after the folder was
// switched is dropped.
func (s *Session) LoadMore(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.deckID == "" || s.loading || s.exhausted {
		s.mu.Unlock()
		return 0, nil
	}
	s.loading = true
	// Purged photos no longer appear in the listing.
	deckID, uri, offset := s.deckID, s.folder, max(0, s.deck.Len()-s.removed)
	s.mu.Unlock()

	page, err := s.source.ListImages(ctx, uri, s.opts.PageSize, offset)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deckID != deckID {
		log.Debug().Str("deckId", deckID).Int("photos", len(page)).Msg("Dropping page for replaced deck")
		return 0, nil
	}
	s.loading = false
	if err != nil {
		s.lastErr = err
		log.Warn().Err(err).Str("deckId", deckID).Int("offset", offset).Msg("Failed to load page")
		return 0, err
	}
	s.lastErr = nil
	if len(page) < s.opts.PageSize {
		s.exhausted = true
	}
	added := s.deck.MergeCatalog(page)
	log.Debug().
		Str("deckId", deckID).
		Int("offset", offset).
		Int("received", len(page)).
		Int("added", added).
		Bool("exhausted", s.exhausted).
		Msg("Page loaded")
	return added, nil
}

// NeedsMore reports whether the review is close enough to the end of the
// loaded photos that the next page should be fetched.
func (s *Session) NeedsMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.needsMoreLocked()
}

func (s *Session) needsMoreLocked() bool {
	n := s.deck.Len()
	if s.deckID == "" || n == 0 || s.loading || s.exhausted {
		return false
	}
	return s.deck.Position() >= n-s.opts.PrefetchThreshold
}
