// Package catalog turns the media tree into the flat records served at
// /api/catalog and /api/list.
//
// Build walks the whole tree (hidden entries skipped, files limited to the
// video allow-list) and keeps traversal order, each directory ahead of its
// contents. ListDirectory reads a single directory and sorts it directories
// first, then by name with Unicode collation. ResolveWithin is the traversal
// check shared by every handler that maps a request path onto the disk.
package catalog
