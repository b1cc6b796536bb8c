package session

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photoswipe/internal/archive"
)

// ExportTrash writes the trash queue to w as a zip archive. Photos that cannot
// be read are skipped and listed in the result; the trash is not modified.
func (s *Session) ExportTrash(ctx context.Context, w io.Writer) (archive.Result, error) {
	s.mu.Lock()
	if s.deckID == "" {
		s.mu.Unlock()
		return archive.Result{}, ErrNoFolder
	}
	deckID := s.deckID
	pending := s.deck.TrashList()
	s.mu.Unlock()

	entries := make([]archive.Entry, 0, len(pending))
	for _, p := range pending {
		uri := p.URI
		entries = append(entries, archive.Entry{
			Name:     p.Name,
			Modified: p.Modified,
			Open: func(ctx context.Context) (io.ReadCloser, error) {
				return s.source.Open(ctx, uri)
			},
		})
	}

	res, err := archive.WriteZip(ctx, w, entries, s.opts.Export)
	if err != nil {
		log.Error().Err(err).Str("deckId", deckID).Msg("Failed to export trash")
		return res, err
	}
	log.Info().
		Str("deckId", deckID).
		Int("files", res.Files).
		Int64("bytes", res.Bytes).
		Int("failed", len(res.Failed)).
		Msg("Trash exported")
	return res, nil
}
