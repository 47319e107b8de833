package search

import "video-grid/internal/catalog"

// Item is a catalog entry with its precomputed match key.
type Item struct {
	catalog.Entry
	// Norm is Normalize(Name + Path). Items with an empty Norm never match.
	Norm string
}

// Index is an immutable, normalized snapshot of a catalog. It is safe to
// share between sessions.
type Index struct {
	items      []Item
	generation uint64
}

// NewIndex normalizes entries once. generation identifies the catalog load
// the index was built from.
func NewIndex(entries []catalog.Entry, generation uint64) *Index {
	items := make([]Item, len(entries))
	for i, e := range entries {
		items[i] = Item{Entry: e, Norm: Normalize(e.Name + e.Path)}
	}
	return &Index{items: items, generation: generation}
}

// Items returns the normalized entries in catalog order. Callers must not
// modify the returned slice.
func (ix *Index) Items() []Item {
	return ix.items
}

// Len returns the number of entries.
func (ix *Index) Len() int {
	return len(ix.items)
}

// Generation returns the catalog generation the index belongs to.
func (ix *Index) Generation() uint64 {
	return ix.generation
}
