// Package mediatypes provides shared type definitions and utilities for media file
// handling across video-grid.
//
// This package exists as a dependency-free foundation that can be imported by other
// packages without creating import cycles. It contains primitive types, constants,
// and pure utility functions with no external dependencies beyond the standard library.
//
// # Entry Types
//
// Catalog and listing records carry one of two wire types:
//
//	mediatypes.EntryTypeDirectory // "directory"
//	mediatypes.EntryTypeFile      // "file" (always a recognized video)
//
// # Video Extensions
//
// One allow-list decides which files are videos, for thumbnail generation as
// well as for listings and the catalog:
//
//	exts := mediatypes.DefaultVideoExtensions()   // .avi .m4v .mkv .mov .mp4 .webm
//	exts = mediatypes.ParseExtensions("mp4,mkv")  // VIDEO_EXTENSIONS override
//
//	if exts.Match("Holiday.MP4") {
//	    // video
//	}
//
// # MIME Types
//
// Use GetMimeType to get the appropriate MIME type for HTTP responses:
//
//	ext := strings.ToLower(filepath.Ext(filename))
//	mimeType := mediatypes.GetMimeType(ext) // e.g., "video/mp4"
package mediatypes
