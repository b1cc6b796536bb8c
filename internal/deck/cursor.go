package deck

// Cursor is the review position within a catalog.
// Invariant: 0 <= Position() <= catalog.Len().
type Cursor struct {
	catalog *Catalog
	pos     int
}

// NewCursor returns a cursor at the start of catalog.
func NewCursor(catalog *Catalog) *Cursor {
	return &Cursor{catalog: catalog}
}

// Position returns the current index.
func (c *Cursor) Position() int {
	return c.pos
}

// Reset moves the cursor back to the first photo.
func (c *Cursor) Reset() {
	c.pos = 0
}

// Current returns the photo under the cursor.
func (c *Cursor) Current() (Photo, bool) {
	return c.catalog.At(c.pos)
}

// IsDone reports whether every photo of a non-empty catalog was reviewed.
func (c *Cursor) IsDone() bool {
	n := c.catalog.Len()
	return n > 0 && c.pos >= n
}

// PeekNext returns up to n photos after the current one, for prefetching.
func (c *Cursor) PeekNext(n int) []Photo {
	if n <= 0 {
		return nil
	}
	return c.catalog.Slice(c.pos+1, c.pos+1+n)
}

// Advance moves one photo forward, never past the end of the catalog.
func (c *Cursor) Advance() {
	c.pos = min(c.pos+1, c.catalog.Len())
}

// Retreat moves one photo back, never before the first.
func (c *Cursor) Retreat() {
	c.pos = max(c.pos-1, 0)
}
