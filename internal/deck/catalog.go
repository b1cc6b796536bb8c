package deck

// Catalog is the ordered, URI-unique list of photos loaded for a folder.
// Load order is preserved; a URI seen twice keeps its first position.
type Catalog struct {
	photos []Photo
	index  map[string]int
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{index: make(map[string]int)}
}

// Replace discards the current contents and loads photos in order.
// Duplicate URIs inside photos are dropped after their first occurrence.
func (c *Catalog) Replace(photos []Photo) {
	c.photos = make([]Photo, 0, len(photos))
	c.index = make(map[string]int, len(photos))
	c.Merge(photos)
}

// Merge appends every photo whose URI is not already present and returns
// how many were added. Existing order is never changed.
func (c *Catalog) Merge(photos []Photo) int {
	if c.index == nil {
		c.index = make(map[string]int, len(photos))
	}
	added := 0
	for _, p := range photos {
		if _, seen := c.index[p.URI]; seen {
			continue
		}
		c.index[p.URI] = len(c.photos)
		c.photos = append(c.photos, p)
		added++
	}
	return added
}

// At returns the photo at position i. ok is false when i is out of range.
func (c *Catalog) At(i int) (Photo, bool) {
	if i < 0 || i >= len(c.photos) {
		return Photo{}, false
	}
	return c.photos[i], true
}

// Index returns the position of uri in the catalog.
func (c *Catalog) Index(uri string) (int, bool) {
	i, ok := c.index[uri]
	return i, ok
}

// Lookup returns the photo with the given URI.
func (c *Catalog) Lookup(uri string) (Photo, bool) {
	i, ok := c.index[uri]
	if !ok {
		return Photo{}, false
	}
	return c.photos[i], true
}

// Len returns the number of photos.
func (c *Catalog) Len() int {
	return len(c.photos)
}

// Photos returns a copy of the catalog contents in order.
func (c *Catalog) Photos() []Photo {
	out := make([]Photo, len(c.photos))
	copy(out, c.photos)
	return out
}

// Slice returns a copy of photos[from:to], clamped to the catalog bounds.
func (c *Catalog) Slice(from, to int) []Photo {
	from = max(from, 0)
	to = min(to, len(c.photos))
	if from >= to {
		return nil
	}
	out := make([]Photo, to-from)
	copy(out, c.photos[from:to])
	return out
}
