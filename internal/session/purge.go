package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photoswipe/internal/folder"
	"github.com/fpang/photoswipe/internal/metrics"
)

// PurgeMode selects what purging does with a trashed photo.
type PurgeMode string

const (
	// PurgeDelete removes photos permanently.
	PurgeDelete PurgeMode = "delete"
	// PurgeMove moves photos into the trash folder next to them.
	PurgeMove PurgeMode = "move"
)

// ParsePurgeMode accepts "delete" or "move"; "" means delete.
func ParsePurgeMode(s string) (PurgeMode, error) {
	switch m := PurgeMode(strings.ToLower(s)); m {
	case PurgeDelete, PurgeMove:
		return m, nil
	case "":
		return PurgeDelete, nil
	default:
		return "", fmt.Errorf("unknown purge mode %q (want delete or move)", s)
	}
}

// PurgeFailure is a photo that stayed in the trash.
type PurgeFailure struct {
	URI   string `json:"uri"`
	Error string `json:"error"`

	err error
}

// PurgeReport summarises a purge.
type PurgeReport struct {
	Mode           PurgeMode      `json:"mode"`
	Purged         int            `json:"purged"`
	Skipped        int            `json:"skipped"`
	Failed         []PurgeFailure `json:"failed"`
	ReclaimedBytes int64          `json:"reclaimedBytes"`
	Remaining      int            `json:"remaining"`
	Duration       time.Duration  `json:"durationNs"`
	View           View           `json:"view"`
}

// Err joins the failures, each wrapping folder.ErrDeleteFailed. It is nil
// when every photo was purged.
func (r PurgeReport) Err() error {
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, f.err)
	}
	return errors.Join(errs...)
}

// PurgeTrash deletes or moves every trashed photo through the source.
// Photos that were handled leave the trash for good; failures stay queued so
// the purge can be retried. A photo restored by undo while the purge runs is
// skipped.
func (s *Session) PurgeTrash(ctx context.Context, mode PurgeMode) (PurgeReport, error) {
	s.mu.Lock()
	if s.deckID == "" {
		s.mu.Unlock()
		return PurgeReport{}, ErrNoFolder
	}
	if s.purging {
		s.mu.Unlock()
		return PurgeReport{}, ErrPurgeInProgress
	}
	s.purging = true
	deckID := s.deckID
	pending := s.deck.TrashList()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.purging = false
		s.mu.Unlock()
	}()

	start := time.Now()
	report := PurgeReport{Mode: mode, Failed: []PurgeFailure{}}
	for _, p := range pending {
		s.mu.Lock()
		queued := s.deckID == deckID && s.deck.InTrash(p.URI)
		s.mu.Unlock()
		if !queued {
			log.Debug().Str("photo", p.URI).Msg("Photo left the trash during purge, skipping")
			report.Skipped++
			continue
		}

		var err error
		if mode == PurgeMove {
			err = s.source.MoveToTrash(ctx, p.URI)
		} else {
			err = s.source.Delete(ctx, p.URI)
		}
		if err != nil {
			if !errors.Is(err, folder.ErrDeleteFailed) {
				err = fmt.Errorf("%w: %s: %w", folder.ErrDeleteFailed, p.URI, err)
			}
			log.Warn().Err(err).Str("photo", p.URI).Str("mode", string(mode)).Msg("Failed to purge photo")
			report.Failed = append(report.Failed, PurgeFailure{URI: p.URI, Error: err.Error(), err: err})
			continue
		}

		s.mu.Lock()
		if s.deckID == deckID {
			s.deck.Settle(p.URI)
			s.removed++
		}
		s.mu.Unlock()

		report.Purged++
		report.ReclaimedBytes += p.Size
	}
	report.Duration = time.Since(start)

	s.mu.Lock()
	report.Remaining = s.deck.TrashCount()
	report.View = s.viewLocked()
	s.mu.Unlock()

	log.Info().
		Str("deckId", deckID).
		Str("mode", string(mode)).
		Int("purged", report.Purged).
		Int("failed", len(report.Failed)).
		Int("skipped", report.Skipped).
		Int64("reclaimedBytes", report.ReclaimedBytes).
		Dur("duration", report.Duration).
		Msg("Trash purged")

	s.emit(func(m *metrics.Recorder) {
		m.Dimension("Operation", "Purge").
			Dimension("Mode", string(mode)).
			Count("PurgeRuns").
			Metric("PhotosPurged", float64(report.Purged), metrics.UnitCount).
			Metric("PurgeFailures", float64(len(report.Failed)), metrics.UnitCount).
			Metric("BytesReclaimed", float64(report.ReclaimedBytes), metrics.UnitBytes).
			Duration("PurgeDuration", report.Duration).
			Property("deckId", deckID)
	})
	return report, nil
}

// Summary flushes a metrics document describing the decisions made on the
// current deck. It does nothing when metrics are disabled or no folder is
// open.
func (s *Session) Summary() error {
	s.mu.Lock()
	deckID, st := s.deckID, s.stats
	total, position, trash := s.deck.Len(), s.deck.Position(), s.deck.TrashCount()
	s.mu.Unlock()

	if deckID == "" {
		return nil
	}
	return s.emit(func(m *metrics.Recorder) {
		m.Dimension("Operation", "Review").
			Metric("PhotosKept", float64(st.kept), metrics.UnitCount).
			Metric("PhotosMarked", float64(st.deleted), metrics.UnitCount).
			Metric("DecisionsUndone", float64(st.undone), metrics.UnitCount).
			Metric("PhotosReviewed", float64(position), metrics.UnitCount).
			Metric("PhotosLoaded", float64(total), metrics.UnitCount).
			Metric("TrashPending", float64(trash), metrics.UnitCount).
			Duration("ReviewDuration", s.opts.Clock().Sub(st.opened)).
			Property("deckId", deckID)
	})
}

func (s *Session) emit(fill func(m *metrics.Recorder)) error {
	if s.opts.Metrics == nil {
		return nil
	}
	m := metrics.New(metrics.Namespace).Output(s.opts.Metrics)
	fill(m)
	if err := m.Flush(); err != nil {
		log.Warn().Err(err).Msg("Failed to write metrics")
		return err
	}
	return nil
}
