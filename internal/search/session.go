package search

import (
	"strings"
	"unicode/utf8"

	"video-grid/internal/catalog"
)

// MinQueryLength is the shortest trimmed term, in characters, that filters
// the catalog. Shorter terms show the directory listing.
const MinQueryLength = 3

// Mode tells a renderer what a Results value holds.
type Mode int

const (
	// ModeListing means the current directory listing, unfiltered.
	ModeListing Mode = iota
	// ModeMatches means catalog entries matching the query.
	ModeMatches
)

// Results is the outcome of one Search call.
type Results struct {
	Mode Mode
	// Query is the normalized query for ModeMatches.
	Query   string
	Listing []catalog.Entry
	Matches []Item
}

// Len returns the number of entries in the result, whichever mode.
func (r Results) Len() int {
	if r.Mode == ModeMatches {
		return len(r.Matches)
	}
	return len(r.Listing)
}

// Entries returns the result as plain catalog entries.
func (r Results) Entries() []catalog.Entry {
	if r.Mode != ModeMatches {
		return r.Listing
	}
	out := make([]catalog.Entry, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = m.Entry
	}
	return out
}

// Stats counts how a session's searches were answered.
type Stats struct {
	// FullScans filtered the entire index.
	FullScans int
	// NarrowedScans filtered the cached result of a shorter prefix.
	NarrowedScans int
	// CacheHits returned a cached result without filtering.
	CacheHits int
	// ItemsScanned is the total number of items examined by all scans.
	ItemsScanned int
}

// Session is the search state of one browser cell. It is not safe for
// concurrent use; the SharedCatalog it reads from is.
type Session struct {
	shared *SharedCatalog

	path    string
	listing []catalog.Entry
	term    string

	cache      map[string][]Item
	lastQuery  string
	generation uint64

	stats Stats
}

// NewSession creates a session over shared, positioned at the root with an
// empty listing.
func NewSession(shared *SharedCatalog) *Session {
	return &Session{
		shared: shared,
		cache:  make(map[string][]Item),
	}
}

// Navigate moves the session to path with its directory listing and starts
// a fresh cache.
func (s *Session) Navigate(path string, listing []catalog.Entry) {
	s.path = path
	s.listing = listing
	s.term = ""
	s.resetCache()
}

// Path returns the directory the session is browsing.
func (s *Session) Path() string {
	return s.path
}

// Term returns the last search term as typed, trimmed and lowercased.
func (s *Session) Term() string {
	return s.term
}

// Stats returns the scan counters.
func (s *Session) Stats() Stats {
	return s.stats
}

func (s *Session) resetCache() {
	s.cache = make(map[string][]Item)
	s.lastQuery = ""
}

func (s *Session) listingResults() Results {
	return Results{Mode: ModeListing, Listing: s.listing}
}

// Search answers raw against the whole catalog.
//
// Terms shorter than MinQueryLength, terms with nothing left after
// normalization, and searches made before the catalog has loaded all return
// the plain directory listing. A repeated query is answered from the cache;
// a longer query is filtered from the cached result of its longest cached
// prefix, since every match of the longer query also matches the prefix.
func (s *Session) Search(raw string) Results {
	term := strings.ToLower(strings.TrimSpace(raw))
	s.term = term

	if utf8.RuneCountInString(term) < MinQueryLength {
		return s.listingResults()
	}

	ix := s.shared.Peek()
	if ix == nil {
		s.shared.Prefetch()
		return s.listingResults()
	}

	if ix.Generation() != s.generation {
		s.resetCache()
		s.generation = ix.Generation()
	}

	q := Normalize(term)
	if q == "" {
		return s.listingResults()
	}

	if cached, ok := s.cache[q]; ok {
		s.stats.CacheHits++
		s.lastQuery = q
		return Results{Mode: ModeMatches, Query: q, Matches: cached}
	}

	source, narrowed := s.sourceFor(q)
	if narrowed {
		s.stats.NarrowedScans++
	} else {
		source = ix.Items()
		s.stats.FullScans++
	}
	s.stats.ItemsScanned += len(source)

	matches := make([]Item, 0, len(source)/4)
	for _, it := range source {
		if it.Norm != "" && strings.Contains(it.Norm, q) {
			matches = append(matches, it)
		}
	}

	s.cache[q] = matches
	s.lastQuery = q
	return Results{Mode: ModeMatches, Query: q, Matches: matches}
}

// sourceFor returns the cached result of the longest cached strict prefix
// of q, which includes lastQuery whenever lastQuery is such a prefix.
func (s *Session) sourceFor(q string) ([]Item, bool) {
	for end := len(q) - 1; end > 0; end-- {
		if !utf8.RuneStart(q[end]) {
			continue
		}
		if res, ok := s.cache[q[:end]]; ok {
			return res, true
		}
	}
	return nil, false
}

// Truncate bounds a result list for display. The cache keeps the full list.
func Truncate(items []Item, max int) []Item {
	if max >= 0 && len(items) > max {
		return items[:max]
	}
	return items
}
