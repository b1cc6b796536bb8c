package deck

import "sort"

type trashItem struct {
	photo Photo
	since int
}

// TrashSet holds the photos pending deletion. It is derived from the ledger
// by the Deck and never edited independently.
type TrashSet struct {
	items map[string]trashItem
}

// NewTrashSet returns an empty trash set.
func NewTrashSet() *TrashSet {
	return &TrashSet{items: make(map[string]trashItem)}
}

// put inserts or repositions a photo. since is the ledger position at which
// the photo entered the trash and defines list order.
func (t *TrashSet) put(p Photo, since int) {
	t.items[p.URI] = trashItem{photo: p, since: since}
}

func (t *TrashSet) remove(uri string) bool {
	if _, ok := t.items[uri]; !ok {
		return false
	}
	delete(t.items, uri)
	return true
}

func (t *TrashSet) clear() {
	t.items = make(map[string]trashItem)
}

// Contains reports whether uri is pending deletion.
func (t *TrashSet) Contains(uri string) bool {
	_, ok := t.items[uri]
	return ok
}

// Len returns the number of pending photos.
func (t *TrashSet) Len() int {
	return len(t.items)
}

// URIs returns the pending URIs in trash order.
func (t *TrashSet) URIs() []string {
	list := t.List()
	uris := make([]string, len(list))
	for i, p := range list {
		uris[i] = p.URI
	}
	return uris
}

// List returns the pending photos in the order they were trashed.
func (t *TrashSet) List() []Photo {
	items := make([]trashItem, 0, len(t.items))
	for _, it := range t.items {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].since < items[j].since
	})
	out := make([]Photo, len(items))
	for i, it := range items {
		out[i] = it.photo
	}
	return out
}
