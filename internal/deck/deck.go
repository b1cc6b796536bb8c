package deck

import "time"

// View is the read model a presentation layer renders after every event.
type View struct {
	Current    *Photo  `json:"current"`
	Next       []Photo `json:"next"`
	Done       bool    `json:"done"`
	Cursor     int     `json:"cursor"`
	Total      int     `json:"total"`
	TrashCount int     `json:"trashCount"`
	CanUndo    bool    `json:"canUndo"`
}

// Deck ties the catalog, cursor, ledger and trash together. Every mutation
// that appends to the ledger also advances the cursor, and undo reverses
// both, so the ledger never holds more entries than forward moves.
type Deck struct {
	catalog *Catalog
	cursor  *Cursor
	ledger  *Ledger
	trash   *TrashSet
	now     func() time.Time
}

// Option configures a Deck.
type Option func(*Deck)

// WithClock sets the time source used to stamp actions.
func WithClock(now func() time.Time) Option {
	return func(d *Deck) {
		d.now = now
	}
}

// New returns an empty deck.
func New(opts ...Option) *Deck {
	catalog := NewCatalog()
	d := &Deck{
		catalog: catalog,
		cursor:  NewCursor(catalog),
		ledger:  &Ledger{},
		trash:   NewTrashSet(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// --- Catalog ---

// ReplaceCatalog loads a new photo list and rewinds the cursor. The ledger
// and trash are left alone; use SwitchFolder to reset everything.
func (d *Deck) ReplaceCatalog(photos []Photo) {
	d.catalog.Replace(photos)
	d.cursor.Reset()
}

// MergeCatalog appends a page of photos, skipping URIs already loaded.
// The cursor does not move. Returns the number of photos added.
func (d *Deck) MergeCatalog(photos []Photo) int {
	return d.catalog.Merge(photos)
}

// SwitchFolder replaces the catalog and forgets every decision made on the
// previous one.
func (d *Deck) SwitchFolder(photos []Photo) {
	d.ReplaceCatalog(photos)
	d.ledger.Reset()
	d.trash.clear()
}

// --- Decisions ---

// RecordKeep logs a keep for uri and moves to the next photo. It returns
// false and changes nothing when the review is complete or uri is not in the
// catalog.
func (d *Deck) RecordKeep(uri string) bool {
	return d.record(uri, ActionKeep)
}

// RecordDelete logs a delete for uri, queues the photo in the trash and moves
// to the next photo. Deleting a photo that is already queued logs a new
// entry but leaves the trash unchanged. Same guards as RecordKeep.
func (d *Deck) RecordDelete(uri string) bool {
	return d.record(uri, ActionDelete)
}

func (d *Deck) record(uri string, kind ActionKind) bool {
	if d.cursor.IsDone() {
		return false
	}
	if _, ok := d.catalog.Index(uri); !ok {
		return false
	}
	d.ledger.Append(Action{PhotoURI: uri, Kind: kind, Timestamp: d.now()})
	d.syncTrash(uri)
	d.cursor.Advance()
	return true
}

// Undo reverses the most recent decision: the entry is popped, trash
// membership of its photo is recomputed from the remaining log and the cursor
// steps back. It returns the undone action, or false if there was none.
func (d *Deck) Undo() (Action, bool) {
	last, ok := d.ledger.Pop()
	if !ok {
		return Action{}, false
	}
	d.syncTrash(last.PhotoURI)
	d.cursor.Retreat()
	return last, true
}

// ClearTrash empties the trash. The ledger and cursor are untouched and the
// cleared deletions are not brought back by undo.
func (d *Deck) ClearTrash() {
	for _, uri := range d.trash.URIs() {
		d.ledger.Settle(uri)
	}
	d.trash.clear()
}

// Settle removes a single photo from the trash once it has been handled, for
// example after it was deleted from storage.
func (d *Deck) Settle(uri string) bool {
	if !d.trash.Contains(uri) {
		return false
	}
	d.ledger.Settle(uri)
	d.trash.remove(uri)
	return true
}

// syncTrash recomputes trash membership of uri from the ledger.
func (d *Deck) syncTrash(uri string) {
	since, pending := d.ledger.trashedSince(uri)
	if !pending {
		d.trash.remove(uri)
		return
	}
	photo, ok := d.catalog.Lookup(uri)
	if !ok {
		if it, queued := d.trash.items[uri]; queued {
			photo, ok = it.photo, true
		}
	}
	if !ok {
		return
	}
	d.trash.put(photo, since)
}

// --- Queries ---

// CurrentPhoto returns the photo under review.
func (d *Deck) CurrentPhoto() (Photo, bool) {
	return d.cursor.Current()
}

// NextPhotos returns up to n photos after the current one.
func (d *Deck) NextPhotos(n int) []Photo {
	return d.cursor.PeekNext(n)
}

// IsDone reports whether every loaded photo has been reviewed.
func (d *Deck) IsDone() bool {
	return d.cursor.IsDone()
}

// Position returns the cursor index.
func (d *Deck) Position() int {
	return d.cursor.Position()
}

// Len returns the number of loaded photos.
func (d *Deck) Len() int {
	return d.catalog.Len()
}

// Photos returns the loaded photos in order.
func (d *Deck) Photos() []Photo {
	return d.catalog.Photos()
}

// Lookup returns a loaded photo by URI.
func (d *Deck) Lookup(uri string) (Photo, bool) {
	return d.catalog.Lookup(uri)
}

// TrashList returns the photos pending deletion, oldest first.
func (d *Deck) TrashList() []Photo {
	return d.trash.List()
}

// TrashCount returns the number of photos pending deletion.
func (d *Deck) TrashCount() int {
	return d.trash.Len()
}

// InTrash reports whether uri is pending deletion.
func (d *Deck) InTrash(uri string) bool {
	return d.trash.Contains(uri)
}

// CanUndo reports whether there is a decision to undo.
func (d *Deck) CanUndo() bool {
	return d.ledger.Len() > 0
}

// LastAction returns the most recent ledger entry.
func (d *Deck) LastAction() (Action, bool) {
	return d.ledger.Last()
}

// Actions returns the ledger, oldest first.
func (d *Deck) Actions() []Action {
	return d.ledger.Entries()
}

// View snapshots the deck with up to next upcoming photos.
func (d *Deck) View(next int) View {
	v := View{
		Next:       d.NextPhotos(next),
		Done:       d.IsDone(),
		Cursor:     d.Position(),
		Total:      d.Len(),
		TrashCount: d.TrashCount(),
		CanUndo:    d.CanUndo(),
	}
	if p, ok := d.CurrentPhoto(); ok {
		v.Current = &p
	}
	if v.Next == nil {
		v.Next = []Photo{}
	}
	return v
}
