// Package search implements incremental catalog search for browser cells.
//
// A SharedCatalog loads the catalog once (single-flight) and exposes it as an
// immutable Index of normalized entries. Each cell owns a Session that maps
// normalized queries to their results. Because a longer query can only match
// a subset of what its prefix matched, a new query is filtered from the
// cached result of its longest cached prefix rather than from the whole
// index:
//
//	shared := search.NewSharedCatalog(client.Catalog)
//	s := search.NewSession(shared)
//	s.Navigate("", listing)
//	res := s.Search("hol")  // full scan
//	res = s.Search("holi")  // scans only the results for "hol"
//
// Terms under three characters, and searches made before the catalog has
// loaded, return the directory listing instead.
package search
